package libmesh_test

import (
	"bytes"
	"math"
	"sort"
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

type countingObserver struct {
	kinds []go2mesh.ChangeKind
}

func (obs *countingObserver) MeshChanged(M *libmesh.Mesh, kind go2mesh.ChangeKind) {
	obs.kinds = append(obs.kinds, kind)
}

func requireConsistent(t *testing.T, M *libmesh.Mesh) {
	t.Helper()
	require.NoError(t, M.CheckInvariants())
	for _, e := range M.Edges() {
		require.True(t, e.ConsistentOrientation(), "edge %v", e)
	}
}

// faceTriples returns each face's vertex indices, rotated so the smallest comes first, in sorted order.
func faceTriples(M *libmesh.Mesh) [][3]int {
	var ret [][3]int
	for _, f := range M.Faces() {
		t := [3]int{f.V(0).Index(), f.V(1).Index(), f.V(2).Index()}
		for t[0] > t[1] || t[0] > t[2] {
			t = [3]int{t[1], t[2], t[0]}
		}
		ret = append(ret, t)
	}
	sort.Slice(ret, func(i, j int) bool {
		for k := 0; k < 3; k++ {
			if ret[i][k] != ret[j][k] {
				return ret[i][k] < ret[j][k]
			}
		}
		return false
	})
	return ret
}

func TestCube(t *testing.T) {
	for _, quads := range []bool{true, false} {
		M := libmesh.NewCube(go2mesh.DefaultConfig(), quads)
		require.Equal(t, 8, M.NumVerts())
		require.Equal(t, 18, M.NumEdges())
		require.Equal(t, 12, M.NumFaces())
		require.Equal(t, go2mesh.ClosedSurface, M.Type())
		require.Equal(t, 0, M.NumBorderEdges())
		require.True(t, M.IsClosedSurface())
		requireConsistent(t, M)

		require.InDelta(t, 8, M.Volume(), 1e-9)
		require.InDelta(t, 24, M.Area(), 1e-9)

		weak := len(M.EdgesOf(libmesh.WeakFilter))
		reps := 0
		for _, f := range M.Faces() {
			if f.IsQuadRep() {
				reps++
			}
		}
		if quads {
			require.Equal(t, 6, weak)
			require.Equal(t, 6, reps)
		} else {
			require.Equal(t, 0, weak)
			require.Equal(t, 0, reps)
		}
	}
}

func TestAddIsIdempotent(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	verts := M.AddVerts([]r3.Vec{{}, {X: 1}, {Y: 1}})
	a, b, c := verts[0], verts[1], verts[2]

	e := M.AddEdge(a, b)
	require.NotNil(t, e)
	require.Same(t, e, M.AddEdge(b, a))
	require.Nil(t, M.AddEdge(a, a))

	f := M.AddFace(a, b, c, nil)
	require.NotNil(t, f)
	require.Same(t, f, M.AddFace(b, c, a, nil))
	require.Same(t, f, M.LookupFace(c, b, a))
	require.Same(t, f, M.LookupFaceByIndex(2, 0, 1))
	require.Equal(t, 1, M.NumFaces())
	require.Equal(t, 3, M.NumEdges())
	require.Nil(t, M.AddFace(a, b, b, nil))

	other := libmesh.NewMesh(go2mesh.DefaultConfig())
	x := other.AddVertex(r3.Vec{Z: 1})
	require.Nil(t, M.AddEdge(a, x))
	require.Nil(t, M.AddFace(a, b, x, nil))
	require.Equal(t, go2mesh.OpenSurface, M.Type())
	require.Equal(t, 3, M.NumBorderEdges())
}

func TestRemoveCascades(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	v := M.BV(0)
	require.Equal(t, 4, v.Degree())
	require.True(t, M.RemoveVertex(v))
	require.Nil(t, v.Mesh())

	require.Equal(t, 7, M.NumVerts())
	require.Equal(t, 14, M.NumEdges())
	require.Equal(t, 8, M.NumFaces())
	require.Equal(t, go2mesh.OpenSurface, M.Type())
	require.Equal(t, 4, M.NumBorderEdges())
	require.Equal(t, 8, M.Patches()[0].NumFaces())
	requireConsistent(t, M)

	// a batch containing a foreign element is rejected whole
	other := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	require.False(t, M.RemoveFaces([]*libmesh.Face{M.BF(0), other.BF(0)}))
	require.Equal(t, 8, M.NumFaces())
	require.Equal(t, 12, other.NumFaces())

	require.True(t, M.RemoveEdge(M.BE(0)))
	require.NoError(t, M.CheckInvariants())
}

func TestObservers(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	obs := &countingObserver{}
	M.AddObserver(obs)
	M.AddObserver(obs)

	ver := M.Version()
	v := M.AddVertex(r3.Vec{})
	require.Equal(t, []go2mesh.ChangeKind{go2mesh.TopologyChanged}, obs.kinds)
	require.Greater(t, M.Version(), ver)

	v.SetLoc(r3.Vec{X: 1})
	M.Changed(go2mesh.VertPositionsChanged)
	require.Equal(t, go2mesh.VertPositionsChanged, obs.kinds[len(obs.kinds)-1])

	M.RemoveObserver(obs)
	M.AddVertex(r3.Vec{})
	require.Len(t, obs.kinds, 2)
}

func TestSplitEdge(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	e := M.LookupEdgeByIndex(0, 1)
	require.NotNil(t, e)
	e.SetCrease(libmesh.CreaseMax)

	v := M.SplitEdge(e, e.MidPt())
	require.NotNil(t, v)
	require.Equal(t, 9, M.NumVerts())
	require.Equal(t, 21, M.NumEdges())
	require.Equal(t, 14, M.NumFaces())
	require.Equal(t, 4, v.Degree())
	require.Equal(t, go2mesh.ClosedSurface, M.Type())
	require.InDelta(t, 8, M.Volume(), 1e-9)
	requireConsistent(t, M)

	// both halves of the split edge keep the crease
	require.True(t, M.LookupEdge(v, M.BV(0)).IsCrease())
	require.True(t, M.LookupEdge(v, M.BV(1)).IsCrease())
	require.Equal(t, 14, M.Patches()[0].NumFaces())
}

func TestSplitBorderEdge(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 1, 1, false)
	require.Equal(t, 5, M.NumEdges())

	e := M.LookupEdgeByIndex(0, 1)
	v := M.SplitEdge(e, e.MidPt())
	require.NotNil(t, v)
	require.Equal(t, 5, M.NumVerts())
	require.Equal(t, 7, M.NumEdges())
	require.Equal(t, 3, M.NumFaces())
	require.Equal(t, 3, v.Degree())
	require.True(t, v.IsBorder())
	requireConsistent(t, M)
	for _, f := range M.Faces() {
		require.Greater(t, f.Norm().Z, 0.)
	}
}

func TestSplitFace(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	f := M.BF(0)
	v := M.SplitFace(f, f.Centroid())
	require.NotNil(t, v)
	require.Equal(t, 9, M.NumVerts())
	require.Equal(t, 21, M.NumEdges())
	require.Equal(t, 14, M.NumFaces())
	require.Equal(t, 3, v.Degree())
	require.Equal(t, go2mesh.ClosedSurface, M.Type())
	require.InDelta(t, 8, M.Volume(), 1e-9)
	requireConsistent(t, M)
}

func TestSplitCarriesUV(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	M.AddVerts([]r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}})
	p := M.NewPatch()
	M.AddFaceByIndexUV(0, 1, 2, go2mesh.UV{U: 0, V: 0}, go2mesh.UV{U: 1, V: 0}, go2mesh.UV{U: 1, V: 1}, p)
	M.AddFaceByIndexUV(0, 2, 3, go2mesh.UV{U: 0, V: 0}, go2mesh.UV{U: 1, V: 1}, go2mesh.UV{U: 0, V: 1}, p)

	diag := M.LookupEdgeByIndex(0, 2)
	require.False(t, diag.IsTextureSeam())
	v := M.SplitEdge(diag, diag.MidPt())
	require.NotNil(t, v)
	require.Equal(t, 4, M.NumFaces())

	uv := M.UV()
	for _, f := range v.Faces() {
		coord, ok := uv.Get(v, f)
		require.True(t, ok)
		require.InDelta(t, 0.5, coord.U, 1e-12)
		require.InDelta(t, 0.5, coord.V, 1e-12)
	}
	for _, e := range M.Edges() {
		require.True(t, uv.IsContinuous(e), "edge %v", e)
	}
	got, ok := uv.GetVert(v)
	require.True(t, ok)
	require.Equal(t, go2mesh.UV{U: 0.5, V: 0.5}, got)
}

func TestSwapRoundTrip(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 1, 1, false)
	before := faceTriples(M)

	diag := M.LookupEdgeByIndex(0, 2)
	require.True(t, diag.SwapIsLegal())
	require.True(t, diag.DoSwap())
	require.Nil(t, M.LookupEdgeByIndex(0, 2))
	require.Same(t, diag, M.LookupEdgeByIndex(1, 3))
	require.Equal(t, [][3]int{{0, 1, 3}, {1, 2, 3}}, faceTriples(M))
	requireConsistent(t, M)
	for _, f := range M.Faces() {
		require.Greater(t, f.Norm().Z, 0.)
	}

	require.True(t, diag.DoSwap())
	require.Equal(t, before, faceTriples(M))
	requireConsistent(t, M)

	// border edges can't be swapped
	require.False(t, M.LookupEdgeByIndex(0, 1).DoSwap())
}

func TestTrySwapEdge(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	a := M.AddVertex(r3.Vec{})
	c := M.AddVertex(r3.Vec{X: 10})
	b := M.AddVertex(r3.Vec{X: 5, Y: -1})
	d := M.AddVertex(r3.Vec{X: 5, Y: 1})
	f1 := M.AddFace(a, c, d, nil)
	f2 := M.AddFace(c, a, b, nil)

	// texture coordinates follow the xy position of each corner
	uvAt := func(v *libmesh.Vertex) libmesh.UV { return libmesh.UV{U: v.Loc().X, V: v.Loc().Y} }
	require.True(t, M.UV().SetFace(f1, a, c, d, uvAt(a), uvAt(c), uvAt(d)))
	require.True(t, M.UV().SetFace(f2, c, a, b, uvAt(c), uvAt(a), uvAt(b)))

	long := M.LookupEdge(a, c)
	require.True(t, long.Swapable(false))
	require.True(t, M.TrySwapEdge(long, false))
	require.Nil(t, M.LookupEdge(a, c))
	short := M.LookupEdge(b, d)
	require.NotNil(t, short)
	requireConsistent(t, M)
	for _, f := range M.Faces() {
		require.True(t, M.UV().HasUV(f))
		for i := 0; i < 3; i++ {
			uv, ok := M.UV().Get(f.V(i), f)
			require.True(t, ok)
			require.Equal(t, uvAt(f.V(i)), uv, "corner %v of face %d", f.V(i).Loc(), f.Index())
		}
	}

	// swapping back would make skinnier triangles
	require.False(t, short.Swapable(false))
	require.False(t, M.TrySwapEdge(short, false))

	// creases are never swapped
	short.SetCrease(libmesh.CreaseMax)
	require.False(t, short.SwapIsLegal())
}

func TestTrySwapEdgeKeepsQuads(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 2, 1, true)
	before := faceTriples(M)

	// the strong edge shared by the two quads
	shared := M.LookupEdgeByIndex(1, 4)
	require.NotNil(t, shared)
	require.True(t, shared.IsInterior())
	require.False(t, shared.IsWeak())
	require.False(t, shared.SwapIsLegal())
	require.False(t, shared.Swapable(false))
	require.False(t, M.TrySwapEdge(shared, false))
	require.Equal(t, before, faceTriples(M))
	for _, f := range M.Faces() {
		require.True(t, f.IsQuad())
	}
}

func TestCollapse(t *testing.T) {
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 2, 2, false)
	require.Equal(t, 9, M.NumVerts())
	require.Equal(t, 16, M.NumEdges())
	require.Equal(t, 8, M.NumFaces())

	center, right := M.BV(4), M.BV(5)
	e := M.LookupEdge(center, right)
	require.True(t, M.TryCollapseEdge(e, center))
	require.Nil(t, center.Mesh())
	require.Equal(t, 8, M.NumVerts())
	require.Equal(t, 13, M.NumEdges())
	require.Equal(t, 6, M.NumFaces())
	require.Equal(t, go2mesh.OpenSurface, M.Type())
	requireConsistent(t, M)
	for _, f := range M.Faces() {
		require.Greater(t, f.Norm().Z, 0.)
	}
}

func TestCollapseDeclined(t *testing.T) {
	// too few vertices
	M := libmesh.NewGrid(go2mesh.DefaultConfig(), 1, 1, false)
	require.False(t, M.TryCollapseEdge(M.LookupEdgeByIndex(0, 2), nil))
	require.Equal(t, 4, M.NumVerts())

	// an interior edge joining two border vertices
	M = libmesh.NewGrid(go2mesh.DefaultConfig(), 3, 1, false)
	require.False(t, M.TryCollapseEdge(M.LookupEdgeByIndex(1, 5), nil))
	require.Equal(t, 8, M.NumVerts())

	// a common neighbour that isn't opposite the edge would leave a fin
	M = libmesh.NewSphere(go2mesh.DefaultConfig(), 2, 3)
	require.Equal(t, 5, M.NumVerts())
	require.Equal(t, go2mesh.ClosedSurface, M.Type())
	require.False(t, M.TryCollapseEdge(M.LookupEdgeByIndex(1, 2), nil))
	require.Equal(t, 5, M.NumVerts())
	require.Equal(t, 6, M.NumFaces())
	requireConsistent(t, M)
}

func TestRemoveDuplicateVertices(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	M.AddVerts([]r3.Vec{{}, {X: 1}, {Y: 1}, {X: 1}, {X: 1, Y: 1}, {Y: 1}})
	M.AddFaceByIndex(0, 1, 2, nil)
	M.AddFaceByIndex(3, 4, 5, nil)
	require.Equal(t, 6, M.NumEdges())

	require.Equal(t, 2, M.RemoveDuplicateVertices(false))
	require.Equal(t, 4, M.NumVerts())
	require.Equal(t, 5, M.NumEdges())
	require.Equal(t, 2, M.NumFaces())
	require.Equal(t, 4, M.NumBorderEdges())
	requireConsistent(t, M)
}

func TestFixOrientation(t *testing.T) {
	cfg := go2mesh.DefaultConfig()
	cfg.NoFixOrientation = true
	M := libmesh.NewMesh(cfg)
	M.AddVerts([]r3.Vec{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}})
	M.AddFaceByIndex(0, 1, 2, nil)
	M.AddFaceByIndex(0, 3, 2, nil) // backwards
	require.False(t, M.LookupEdgeByIndex(0, 2).ConsistentOrientation())

	M.Type()
	require.False(t, M.LookupEdgeByIndex(0, 2).ConsistentOrientation())

	require.Equal(t, 1, M.FixOrientation())
	requireConsistent(t, M)
}

func TestBBoxAndTransform(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), true)
	box := M.BBox()
	require.Equal(t, r3.Vec{X: -1, Y: -1, Z: -1}, box.Min)
	require.Equal(t, r3.Vec{X: 1, Y: 1, Z: 1}, box.Max)
	require.InDelta(t, (12*2+6*2*math.Sqrt2)/18, M.AvgEdgeLen(), 1e-9)

	M.Transform(func(p r3.Vec) r3.Vec { return r3.Add(p, r3.Vec{X: 3}) })
	require.Equal(t, 2., M.BBox().Min.X)
	M.Recenter()
	require.Equal(t, -1., M.BBox().Min.X)

	require.Same(t, M.BV(5), M.NearestVert(r3.Vec{X: 2, Y: 2, Z: 2}))
}

func TestWriteAsString(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	var buf bytes.Buffer
	M.WriteAsString(&buf, go2mesh.DefaultPrintOpts)
	require.Contains(t, buf.String(), "v=8,e=18,f=12")
}
