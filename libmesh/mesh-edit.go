package libmesh

import (
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// MergeVertex identifies v with u: v's edges and faces are redefined onto u, dropping any that would duplicate
// an existing edge or fail to redefine.  v is then removed unless keepVert is set, in which case it is left
// isolated.
func (M *Mesh) MergeVertex(v, u *Vertex, keepVert bool) bool {
	if !M.owns(v) || !M.owns(u) || v == u {
		klog.Errorf("Mesh.MergeVertex: %v", go2mesh.ErrForeignSimplex)
		return false
	}

	starFaces := v.AllFaces()
	for _, f := range starFaces {
		f.Detach()
	}

	starEdges := v.Edges()
	for _, e := range starEdges {
		if !e.Redefine(v, u) {
			M.RemoveEdge(e)
		}
	}

	for _, f := range starFaces {
		if f.mesh == M && !f.Redefine(v, u) {
			M.RemoveFace(f)
		}
	}

	if !keepVert {
		M.RemoveVertex(v)
	}
	M.Changed(go2mesh.TopologyChanged)
	return true
}

func compareLocs(a, b interface{}) int {
	p, q := a.(r3.Vec), b.(r3.Vec)
	switch {
	case p.X > q.X:
		return 1
	case p.X < q.X:
		return -1
	case p.Y > q.Y:
		return 1
	case p.Y < q.Y:
		return -1
	case p.Z > q.Z:
		return 1
	case p.Z < q.Z:
		return -1
	}
	return 0
}

// RemoveDuplicateVertices merges vertices sharing the same location and returns how many were merged.
//
// Zero-length edges (and their faces) are removed first.  If anything was merged, face orientation is fixed.
func (M *Mesh) RemoveDuplicateVertices(keepVerts bool) int {
	for j := len(M.edgeList) - 1; j >= 0; j-- {
		if j < len(M.edgeList) && M.edgeList[j].Length() == 0 {
			M.RemoveEdge(M.edgeList[j])
		}
	}

	// sweep the vertices in lexicographic order of location
	verts := append([]*Vertex(nil), M.vertList...)
	byLoc := redblacktree.NewWith(compareLocs)
	count := 0
	for _, v := range verts {
		if prev, found := byLoc.Get(v.pos); found {
			M.MergeVertex(v, prev.(*Vertex), keepVerts)
			count++
		} else {
			byLoc.Put(v.pos, v)
		}
	}

	if count > 0 {
		M.Changed(go2mesh.TriangulationChanged)
		fixed := M.FixOrientation()
		klog.V(2).Infof("Mesh.RemoveDuplicateVertices: removed %d verts, reoriented %d faces", count, fixed)
	}
	return count
}

// SplitEdge inserts a new vertex at pos along e, splitting each primary face of e in two.
//
//	      c
//	    / | \
//	   d f1 v f2 b
//	    \ | /
//	      a
//
// For an interior edge this adds 1 vertex, 3 edges, and 2 faces.  Returns the new vertex.
func (M *Mesh) SplitEdge(edge *Edge, pos r3.Vec) *Vertex {
	if !M.owns(edge) {
		klog.Errorf("Mesh.SplitEdge: %v", go2mesh.ErrForeignSimplex)
		return nil
	}
	if edge.IsMulti() {
		klog.V(2).Infof("Mesh.SplitEdge: can't split non-manifold edge %v", edge)
		return nil
	}
	a, c := edge.V1(), edge.V2()
	f1 := edge.CCWFace(a)
	f2 := edge.OtherFace(f1)
	if f1 == nil {
		f1, f2 = nil, edge.Face()
	}

	// preserve UV coords, if any
	uv := &M.uv
	hasUV1, hasUV2 := uv.HasUV(f1), uv.HasUV(f2)
	var uv1a, uv1c, uv1d, uv2a, uv2b, uv2c UV
	if hasUV1 {
		uv1a, _ = uv.Get(a, f1)
		uv1c, _ = uv.Get(c, f1)
		uv1d, _ = uv.Get(f1.OtherVertex(a, c), f1)
	}
	if hasUV2 {
		uv2a, _ = uv.Get(a, f2)
		uv2b, _ = uv.Get(f2.OtherVertex(a, c), f2)
		uv2c, _ = uv.Get(c, f2)
	}

	if f1 != nil {
		f1.Detach()
	}
	if f2 != nil {
		f2.Detach()
	}

	v := M.AddVertex(pos)
	edge.notifySplit(v)
	edge.Redefine(a, v)
	av := M.AddEdge(v, a)
	edge.notifySplit(av)

	if f1 != nil {
		d := f1.OtherVertex(a, c)
		f1.notifySplit(M.AddEdge(v, d))
		f1.Redefine(a, v)
		avd := M.AddFace(v, d, a, f1.patch)
		f1.notifySplit(avd)
		if hasUV1 {
			uv1v := uv1a.Lerp(uv1c, 0.5)
			uv.SetFace(f1, v, c, d, uv1v, uv1c, uv1d)
			uv.SetFace(avd, v, d, a, uv1v, uv1d, uv1a)
		}
	}
	if f2 != nil {
		// f2 may have been a border face whose CCW vertex is c rather than a
		b := f2.OtherVertex(a, c)
		f2.notifySplit(M.AddEdge(v, b))
		f2.Redefine(a, v)
		var abv *Face
		if f2.NextVertCCW(v) == c {
			abv = M.AddFace(a, v, b, f2.patch)
		} else {
			abv = M.AddFace(v, a, b, f2.patch)
		}
		f2.notifySplit(abv)
		if hasUV2 {
			uv2v := uv2a.Lerp(uv2c, 0.5)
			uv.Set(v, f2, uv2v)
			uv.Set(b, f2, uv2b)
			uv.Set(c, f2, uv2c)
			uv.Set(v, abv, uv2v)
			uv.Set(a, abv, uv2a)
			uv.Set(b, abv, uv2b)
		}
	}
	M.Changed(go2mesh.TopologyChanged)
	return v
}

// SplitFace inserts a new vertex at pos inside f, replacing f with 3 faces.
// This adds 1 vertex, 3 edges, and 2 faces.  Returns the new vertex.
func (M *Mesh) SplitFace(face *Face, pos r3.Vec) *Vertex {
	if !M.owns(face) {
		klog.Errorf("Mesh.SplitFace: %v", go2mesh.ErrForeignSimplex)
		return nil
	}
	a, b, c := face.V(0), face.V(1), face.V(2)

	uv := &M.uv
	hasUV := uv.HasUV(face)
	var uva, uvb, uvc, uvp UV
	if hasUV {
		uva, _ = uv.Get(a, face)
		uvb, _ = uv.Get(b, face)
		uvc, _ = uv.Get(c, face)
		bc := face.ProjectBarycentric(pos)
		uvp = uva.Scale(bc.X).Add(uvb.Scale(bc.Y)).Add(uvc.Scale(bc.Z))
	}
	face.Detach()

	v := M.AddVertex(pos)
	av := M.AddEdge(a, v)
	bv := M.AddEdge(b, v)
	cv := M.AddEdge(c, v)

	face.Redefine(c, v)
	bcv := M.AddFace(b, c, v, face.patch)
	cav := M.AddFace(c, a, v, face.patch)

	if hasUV {
		uv.SetFace(face, a, b, v, uva, uvb, uvp)
		uv.SetFace(bcv, b, c, v, uvb, uvc, uvp)
		uv.SetFace(cav, c, a, v, uvc, uva, uvp)
	}
	for _, s := range []Simplex{v, av, bv, cv, bcv, cav} {
		face.notifySplit(s)
	}
	M.Changed(go2mesh.TopologyChanged)
	return v
}

// notifySplit propagates per-face labels to a simplex created by splitting this face.
func (f *Face) notifySplit(s Simplex) {
	if g, ok := s.(*Face); ok && g != nil {
		g.SetSecondary(f.IsSecondary())
		if f.IsSelected() {
			g.SetSelected(true)
		}
	}
}

// TrySwapEdge swaps the edge, carrying UVs over, if doing so is legal and preferable (see Edge.Swapable).
//
//	      c                 c
//	    / | \             /   \
//	   d f1|f2 b   ->   d ----- b
//	    \ | /             \   /
//	      a                 a
func (M *Mesh) TrySwapEdge(edge *Edge, favorDegreeSix bool) bool {
	if !M.owns(edge) {
		klog.Errorf("Mesh.TrySwapEdge: %v", go2mesh.ErrForeignSimplex)
		return false
	}
	if !edge.Swapable(favorDegreeSix) {
		return false
	}
	return edge.DoSwap()
}

// TryCollapseEdge collapses e by merging v into the other endpoint u.  If v is nil, e.V1() is merged into e.V2().
//
// Declined (per Hoppe et al. '93) if the mesh has fewer than 5 vertices, if both endpoints are border vertices
// but e is not a border edge, or if some vertex adjacent to both endpoints is not opposite e in one of its faces.
func (M *Mesh) TryCollapseEdge(e *Edge, v *Vertex) bool {
	if !M.owns(e) {
		klog.Errorf("Mesh.TryCollapseEdge: %v", go2mesh.ErrForeignSimplex)
		return false
	}
	var u *Vertex
	if v != nil {
		if u = e.OtherVertex(v); u == nil {
			klog.Errorf("Mesh.TryCollapseEdge: vertex not on edge %v", e)
			return false
		}
	} else {
		v, u = e.V1(), e.V2()
	}

	if len(M.vertList) < 5 {
		klog.V(2).Infof("Mesh.TryCollapseEdge: too few vertices")
		return false
	}
	if v.IsBorder() && u.IsBorder() && !e.IsBorder() {
		klog.V(2).Infof("Mesh.TryCollapseEdge: %v joins two borders", e)
		return false
	}
	if e.f1 != 0 || e.f2 != 0 {
		op1, op2 := e.OppositeVert1(), e.OppositeVert2()
		for k := v.Degree() - 1; k >= 0; k-- {
			nbr := v.Nbr(k)
			if nbr != u && u.IsAdjacent(nbr) && nbr != op1 && nbr != op2 {
				klog.V(2).Infof("Mesh.TryCollapseEdge: %v would create a fin", e)
				return false
			}
		}
	}
	return M.MergeVertex(v, u, false)
}
