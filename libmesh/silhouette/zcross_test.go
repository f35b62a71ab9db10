package silhouette_test

import (
	"math"
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/fine-structures/fine-mesh/libmesh/silhouette"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// loopArea returns the vector area of a closed chain of points.
func loopArea(pts []r3.Vec) r3.Vec {
	var A r3.Vec
	for i := 0; i+1 < len(pts); i++ {
		A = r3.Add(A, r3.Cross(pts[i], pts[i+1]))
	}
	return r3.Scale(0.5, A)
}

func requireWellFormed(t *testing.T, segs []silhouette.ZXSeg) {
	t.Helper()
	require.NotEmpty(t, segs)
	require.Nil(t, segs[len(segs)-1].Face)
	for i := 0; i+1 < len(segs); i++ {
		f := segs[i].Face
		if f == nil {
			continue
		}
		// consecutive points of a chain are joined within the face
		bc := f.ProjectBarycentric(segs[i+1].P)
		require.GreaterOrEqual(t, bc.X, -1e-9)
		require.GreaterOrEqual(t, bc.Y, -1e-9)
		require.GreaterOrEqual(t, bc.Z, -1e-9)
	}
}

func TestZcrossClosedLoop(t *testing.T) {
	M := libmesh.NewSphere(go2mesh.DefaultConfig(), 12, 24)
	x := silhouette.NewExtractor(M)
	eye := r3.Vec{X: 50, Y: 7, Z: 3}
	cam := go2mesh.NewCamera(eye)

	segs := x.ZcrossStrip(cam)
	requireWellFormed(t, segs)
	chains := silhouette.ZXChains(segs)
	require.Len(t, chains, 1)
	loop := chains[0]
	require.Equal(t, loop[0], loop[len(loop)-1])

	for _, p := range loop {
		cos := r3.Dot(r3.Unit(r3.Sub(eye, p)), r3.Unit(p))
		require.Less(t, math.Abs(cos), 0.15)
	}

	// counterclockwise as seen from the eye
	require.Greater(t, r3.Dot(loopArea(loop), eye), 0.0)
	require.Len(t, x.PatchZcross(M.Patches()[0]), len(segs))
	require.Equal(t, silhouette.Exact, x.ZxStats().Mode)
}

func TestZcrossOpenChain(t *testing.T) {
	M := libmesh.NewSphere(go2mesh.DefaultConfig(), 8, 16)
	var low []*libmesh.Vertex
	for _, v := range M.Verts() {
		if v.Loc().Z < -0.5 {
			low = append(low, v)
		}
	}
	require.True(t, M.RemoveVerts(low))
	require.Greater(t, M.NumBorderEdges(), 0)

	x := silhouette.NewExtractor(M)
	cam := go2mesh.NewCamera(r3.Vec{X: 100, Y: 7, Z: 3})
	segs := x.ZcrossStrip(cam)
	requireWellFormed(t, segs)

	chains := silhouette.ZXChains(segs)
	require.Len(t, chains, 1)
	chain := chains[0]
	rim := math.Cos(5 * math.Pi / 8)
	require.InDelta(t, rim, chain[0].Z, 1e-9)
	require.InDelta(t, rim, chain[len(chain)-1].Z, 1e-9)
	require.NotEqual(t, chain[0], chain[len(chain)-1])
	for _, s := range segs[:len(segs)-1] {
		require.NotNil(t, s.Face)
	}
}

func TestZcrossStopsAtCreases(t *testing.T) {
	M := libmesh.NewSphere(go2mesh.DefaultConfig(), 12, 24)
	// crease the equator
	for _, e := range M.Edges() {
		if math.Abs(e.V1().Loc().Z) < 1e-9 && math.Abs(e.V2().Loc().Z) < 1e-9 {
			e.SetCrease(libmesh.CreaseMax)
		}
	}
	x := silhouette.NewExtractor(M)
	cam := go2mesh.NewCamera(r3.Vec{X: 50, Y: 7, Z: 3})
	chains := silhouette.ZXChains(x.ZcrossStrip(cam))
	require.Len(t, chains, 2)
	for _, c := range chains {
		require.NotEqual(t, c[0], c[len(c)-1])
	}
}

func TestZcrossRandomized(t *testing.T) {
	cfg := go2mesh.DefaultConfig()
	cfg.RandomizedMinFaces = 10
	M := libmesh.NewSphere(cfg, 12, 24)
	x := silhouette.NewExtractor(M)
	x.Seed(11)

	cam := go2mesh.NewCamera(orbit(20, 0, 2))
	x.ZcrossStrip(cam)
	require.Equal(t, silhouette.Exact, x.ZxStats().Mode)

	for deg := 1.0; deg <= 10; deg++ {
		cam.MoveTo(orbit(20, deg, 2))
		segs := x.ZcrossStrip(cam)
		require.Equal(t, silhouette.Randomized, x.ZxStats().Mode)
		require.Less(t, x.ZxStats().Checked, M.NumFaces())

		fresh := silhouette.NewExtractor(M)
		want := fresh.ZcrossStrip(go2mesh.NewCamera(cam.Eye()))
		fresh.Detach()
		require.Len(t, segs, len(want))
		require.Len(t, silhouette.ZXChains(segs), 1)
	}
}
