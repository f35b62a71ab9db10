package libmesh_test

import (
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func faceSet(e *libmesh.Edge) map[*libmesh.Face]bool {
	set := map[*libmesh.Face]bool{}
	for _, f := range e.AllFaces() {
		set[f] = true
	}
	return set
}

// three faces hinged on the edge 0-1
func finMesh() *libmesh.Mesh {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	M.AddVerts([]r3.Vec{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0, Z: 0},
		{X: 0.5, Y: 1, Z: 0},
		{X: 0.5, Y: -1, Z: 0},
		{X: 0.5, Y: 0, Z: 1},
	})
	M.AddFaceByIndex(0, 1, 2, nil)
	M.AddFaceByIndex(1, 0, 3, nil)
	M.AddFaceByIndex(0, 1, 4, nil)
	return M
}

func TestOverflowSlots(t *testing.T) {
	M := finMesh()
	e := M.LookupEdgeByIndex(0, 1)
	f1 := M.LookupFaceByIndex(0, 1, 2)
	f3 := M.LookupFaceByIndex(0, 1, 4)
	require.NoError(t, M.CheckInvariants())

	require.Equal(t, 2, e.NFaces())
	require.Equal(t, 3, e.NumAllFaces())
	require.True(t, e.IsMulti())
	require.True(t, e.IsMultiFace(f3))
	faces := faceSet(e)

	require.True(t, e.Demote(f1))
	require.Equal(t, 1, e.NFaces())
	require.True(t, e.IsMultiFace(f1))
	require.Equal(t, faces, faceSet(e))

	require.True(t, e.CanPromote())
	require.True(t, e.Promote(f1))
	require.Equal(t, 2, e.NFaces())
	require.False(t, e.IsMultiFace(f1))
	require.Equal(t, faces, faceSet(e))

	// three faces labelled primary can't all have slots
	require.False(t, e.FixMulti())

	M.PushLayer([]*libmesh.Face{f3})
	require.True(t, f3.IsSecondary())
	require.True(t, e.IsMultiFace(f3))
	require.True(t, e.Demote(f1))
	require.True(t, e.FixMulti())
	require.False(t, e.IsMultiFace(f1))
	require.Equal(t, 2, e.NFaces())
	require.NoError(t, M.CheckInvariants())
}

func TestMergeVertex(t *testing.T) {
	cfg := go2mesh.DefaultConfig()

	M := libmesh.NewGrid(cfg, 2, 2, false)
	v, u, w := M.BV(4), M.BV(1), M.BV(0)
	gone := v.Loc()

	// 4-0 lands on the existing 1-0 and hands over its crease
	M.LookupEdgeByIndex(4, 0).SetCrease(5)
	require.False(t, u.LookupEdge(w).IsCrease())

	require.True(t, M.MergeVertex(v, u, false))
	require.Equal(t, 8, M.NumVerts())
	require.Equal(t, 6, M.NumFaces())
	require.NoError(t, M.CheckInvariants())
	survivor := u.LookupEdge(w)
	require.NotNil(t, survivor)
	require.True(t, survivor.IsCrease())
	require.Equal(t, uint16(5), survivor.CreaseVal())
	for _, f := range M.Faces() {
		for i := 0; i < 3; i++ {
			require.NotEqual(t, gone, f.V(i).Loc())
		}
	}
	for _, e := range M.Edges() {
		require.NotEqual(t, gone, e.V1().Loc())
		require.NotEqual(t, gone, e.V2().Loc())
	}

	M = libmesh.NewGrid(cfg, 2, 2, false)
	v, u = M.BV(4), M.BV(1)
	require.True(t, M.MergeVertex(v, u, true))
	require.Equal(t, 9, M.NumVerts())
	require.Zero(t, v.Degree())
	require.NoError(t, M.CheckInvariants())

	require.False(t, M.MergeVertex(u, u, false))
}

func TestEdgeClassification(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 1, 1, true)
	require.Equal(t, 5, M.NumEdges())

	diag := M.LookupEdgeByIndex(0, 3)
	require.NotNil(t, diag)
	require.True(t, diag.IsWeak())
	require.True(t, diag.IsInterior())
	require.True(t, diag.ConsistentOrientation())
	require.True(t, diag.IsCrossable())
	require.False(t, diag.IsPatchBoundary())

	border := 0
	for _, e := range M.Edges() {
		if e.IsBorder() {
			border++
			require.True(t, e.IsStrong())
		}
	}
	require.Equal(t, 4, border)

	diag.SetCrease(libmesh.CreaseMax)
	require.False(t, diag.IsCrossable())
	diag.SetCrease(0)

	other := M.NewPatch()
	other.Add(diag.F1())
	require.True(t, diag.IsPatchBoundary())
	require.False(t, diag.IsCrossable())
}
