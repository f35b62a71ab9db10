package go2mesh

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("favor_degree_six: true\nrandomized_min_edges: 10\n"))
	require.NoError(t, err)
	require.True(t, cfg.FavorDegreeSix)
	require.Equal(t, 10, cfg.RandomizedMinEdges)

	// untouched fields keep their defaults
	require.Equal(t, 4000, cfg.RandomizedMinFaces)
	require.True(t, cfg.RandomSils)
	require.InDelta(t, 0.5, cfg.SwapDotThresh, 1e-12)
}

func TestConfigValidate(t *testing.T) {
	_, err := ParseConfig([]byte("swap_dot_thresh: 3\n"))
	require.Error(t, err)
	require.Equal(t, ErrBadConfig, errors.Cause(err))

	_, err = ParseConfig([]byte("randomized_min_edges: [1, 2]\n"))
	require.Error(t, err)
}

func TestChangeKindSeverity(t *testing.T) {
	require.True(t, TopologyChanged.Invalidates(TriangulationChanged))
	require.True(t, TopologyChanged.Invalidates(VertPositionsChanged))
	require.True(t, TriangulationChanged.Invalidates(VertPositionsChanged))
	require.False(t, VertPositionsChanged.Invalidates(TriangulationChanged))
	require.False(t, CreasesChanged.Invalidates(TopologyChanged))
}

func TestMeshTypeString(t *testing.T) {
	require.Equal(t, "EMPTY_MESH", EmptyMesh.String())
	require.Equal(t, "POINTS|CLOSED_SURFACE", (Points | ClosedSurface).String())
}
