package libmesh_test

import (
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestPatchMembership(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 2, 2, false)
	require.Equal(t, 1, M.NumPatches())
	p1 := M.Patches()[0]
	require.Equal(t, 8, p1.NumFaces())
	require.Len(t, p1.Verts(), 9)
	require.Len(t, p1.Edges(), 16)

	p2 := M.NewPatch()
	p2.SetName("corner")
	f := M.BF(0)
	p2.Add(f)
	require.Same(t, p2, f.Patch())
	require.Equal(t, 7, p1.NumFaces())
	require.Equal(t, 1, p2.NumFaces())
	require.Len(t, p2.Verts(), 3)
	require.Len(t, p2.Edges(), 3)
	require.Same(t, p2, M.PatchByName("corner"))
	require.Same(t, p2, M.Patch(p2.ID()))
	require.Equal(t, 1, p2.Index())

	// the two interior edges of f now separate patches
	require.Len(t, M.EdgesOf(libmesh.PatchBoundaryFilter), 2)

	// only the mesh border edge of f is on p2's border
	require.Equal(t, 1, p2.Borders().Len())
	require.Equal(t, 7, p1.Borders().Len())

	// adding a face twice is a no-op
	p2.Add(f)
	require.Equal(t, 1, p2.NumFaces())

	p1.Add(f)
	require.Equal(t, 0, p2.NumFaces())
	require.Equal(t, 1, M.CleanPatches())
	require.Equal(t, 1, M.NumPatches())
	require.Nil(t, p2.Mesh())
	require.Equal(t, -1, p2.Index())
	requireConsistent(t, M)
}

func TestRemovePatchStrandsFaces(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	p := M.Patches()[0]
	require.True(t, M.RemovePatch(p))
	require.False(t, M.RemovePatch(p))
	require.False(t, M.RemovePatch(nil))
	require.Equal(t, 0, M.NumPatches())
	for _, f := range M.Faces() {
		require.Nil(t, f.Patch())
	}

	q := M.MakePatchIfNeeded()
	require.NotNil(t, q)
	require.Equal(t, 12, q.NumFaces())
	require.Nil(t, M.MakePatchIfNeeded())
	requireConsistent(t, M)
}

func TestPatchCreases(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	M.ComputeCreases(0.5)
	p := M.Patches()[0]
	require.Equal(t, 12, p.Creases().Len())

	top := M.NewPatch()
	for _, f := range M.Faces() {
		if f.Norm().Y > 0.5 {
			top.Add(f)
		}
	}
	require.Equal(t, 2, top.NumFaces())
	require.Equal(t, 10, p.NumFaces())

	// an edge belongs to the patch of its first primary face, so the two patches split the creases between them
	require.Equal(t, 12, p.Creases().Len()+top.Creases().Len())
}

func TestPatchColor(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 1, 1, true)
	obs := &countingObserver{}
	M.AddObserver(obs)
	p := M.Patches()[0]
	require.False(t, p.HasColor())
	p.SetColor(go2mesh.Color{R: 1})
	require.True(t, p.HasColor())
	require.Equal(t, []go2mesh.ChangeKind{go2mesh.RenderingChanged}, obs.kinds)
	p.UnsetColor()
	require.False(t, p.HasColor())
}

func TestAssignComponentPatches(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	M.AddVerts([]r3.Vec{
		{}, {X: 1}, {Y: 1},
		{X: 5}, {X: 6}, {X: 5, Y: 1}, {X: 6, Y: 1},
	})
	M.AddFaceByIndex(0, 1, 2, nil)
	M.AddFaceByIndex(3, 4, 6, nil)
	M.AddFaceByIndex(3, 6, 5, nil)

	comps := M.Components()
	require.Len(t, comps, 2)
	require.Equal(t, 3, len(comps[0])+len(comps[1]))

	require.Equal(t, 2, M.AssignComponentPatches())
	require.Equal(t, 2, M.NumPatches())
	require.Same(t, M.BF(1).Patch(), M.BF(2).Patch())
	require.NotSame(t, M.BF(0).Patch(), M.BF(1).Patch())
	require.Equal(t, 0, M.AssignComponentPatches())
}

func TestMergeAndSplitComponents(t *testing.T) {
	cfg := go2mesh.DefaultConfig()
	m1 := libmesh.NewCube(cfg, false)
	m2 := libmesh.NewCube(cfg, true)
	m2.Transform(func(p r3.Vec) r3.Vec { return r3.Add(p, r3.Vec{X: 10}) })
	m2.BE(0).SetCrease(libmesh.CreaseMax)

	M := libmesh.Merge(m1, m2)
	require.Same(t, m1, M)
	require.Equal(t, 0, m2.NumVerts())
	require.Equal(t, 0, m2.NumFaces())
	require.Equal(t, 16, M.NumVerts())
	require.Equal(t, 36, M.NumEdges())
	require.Equal(t, 24, M.NumFaces())
	require.Equal(t, 2, M.NumPatches())
	require.Len(t, M.CreaseEdges(), 1)
	require.Len(t, M.EdgesOf(libmesh.WeakFilter), 6)
	require.Len(t, M.Components(), 2)
	requireConsistent(t, M)

	require.Same(t, M, libmesh.Merge(M, nil))
	require.Same(t, M, libmesh.Merge(nil, M))

	split := M.SplitComponents()
	require.Len(t, split, 1)
	for _, m := range []*libmesh.Mesh{M, split[0]} {
		require.Equal(t, 8, m.NumVerts())
		require.Equal(t, 18, m.NumEdges())
		require.Equal(t, 12, m.NumFaces())
		require.Equal(t, 1, m.NumPatches())
		require.True(t, m.IsClosedSurface())
		requireConsistent(t, m)
	}
	require.Len(t, split[0].EdgesOf(libmesh.WeakFilter), 6)
	require.Len(t, split[0].CreaseEdges(), 1)
	box := split[0].BBox()
	require.InDelta(t, 10, (box.Min.X+box.Max.X)/2, 1e-9)

	require.Nil(t, M.SplitComponents())
}

func TestKillComponent(t *testing.T) {
	cfg := go2mesh.DefaultConfig()
	M := libmesh.Merge(libmesh.NewCube(cfg, false), libmesh.NewSphere(cfg, 3, 4))
	nv := M.NumVerts()
	require.True(t, M.KillComponent(M.BV(0)))
	require.Equal(t, nv-8, M.NumVerts())
	require.Equal(t, 1, M.NumPatches())
	require.Len(t, M.Components(), 1)
	requireConsistent(t, M)

	other := libmesh.NewCube(cfg, false)
	require.False(t, M.KillComponent(other.BV(0)))
}

func TestSplitPatches(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	side := M.NewPatch()
	side.SetName("side")
	side.Add(M.BF(0))
	side.Add(M.BF(1))

	split := M.SplitPatches()
	require.Len(t, split, 1)
	m := split[0]
	require.Equal(t, 4, m.NumVerts())
	require.Equal(t, 5, m.NumEdges())
	require.Equal(t, 2, m.NumFaces())
	require.NotNil(t, m.PatchByName("side"))
	requireConsistent(t, m)

	require.Equal(t, 8, M.NumVerts())
	require.Equal(t, 17, M.NumEdges())
	require.Equal(t, 10, M.NumFaces())
	require.Equal(t, 1, M.NumPatches())
	require.Equal(t, 4, M.NumBorderEdges())
	requireConsistent(t, M)
}
