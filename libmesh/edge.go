package libmesh

import (
	"fmt"
	"math"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Edge joins two vertices and is adjacent to up to two primary faces (f1, f2).
//
// Any further ("multi") faces live in a lazily allocated overflow list.
type Edge struct {
	mesh     *Mesh
	id       EdgeID
	idx      int
	v1, v2   VertID
	f1, f2   FaceID
	adj      []FaceID // overflow (non-manifold) faces
	crease   uint16
	bits     uint32
	flag     uint8
	silStamp uint64
}

const (
	edgeWeak uint32 = 1 << iota
	edgePatchBoundary
	edgeSelected
	edgeConvexValid
	edgeConvex
)

func (e *Edge) Dim() int           { return 1 }
func (e *Edge) Mesh() *Mesh        { return e.mesh }
func (e *Edge) Flag() uint8        { return e.flag }
func (e *Edge) SetFlag(flag uint8) { e.flag = flag }
func (e *Edge) ID() EdgeID         { return e.id }

// Index returns the position of this edge in its mesh's edge list, or -1 if it has been removed.
func (e *Edge) Index() int {
	if e.mesh == nil {
		return -1
	}
	return e.idx
}

func (e *Edge) V1() *Vertex { return e.mesh.verts[e.v1] }
func (e *Edge) V2() *Vertex { return e.mesh.verts[e.v2] }
func (e *Edge) F1() *Face   { return e.mesh.faces[e.f1] }
func (e *Edge) F2() *Face   { return e.mesh.faces[e.f2] }

// V returns endpoint 1 or 2.
func (e *Edge) V(k int) *Vertex {
	if k == 1 {
		return e.V1()
	}
	return e.V2()
}

func (e *Edge) setBit(bit uint32, on bool) {
	if on {
		e.bits |= bit
	} else {
		e.bits &^= bit
	}
}

func (e *Edge) Contains(v *Vertex) bool {
	return v != nil && (v.id == e.v1 || v.id == e.v2)
}

func (e *Edge) ContainsFace(f *Face) bool {
	if f == nil {
		return false
	}
	if f.id == e.f1 || f.id == e.f2 {
		return true
	}
	for _, fid := range e.adj {
		if fid == f.id {
			return true
		}
	}
	return false
}

// OtherVertex returns the endpoint that is not v, or nil if v is not an endpoint.
func (e *Edge) OtherVertex(v *Vertex) *Vertex {
	switch {
	case v == nil:
		return nil
	case v.id == e.v1:
		return e.V2()
	case v.id == e.v2:
		return e.V1()
	}
	return nil
}

// SharesVert returns the vertex shared with the given edge, or nil.
func (e *Edge) SharesVert(o *Edge) *Vertex {
	if o == nil {
		return nil
	}
	if e.v1 == o.v1 || e.v1 == o.v2 {
		return e.V1()
	}
	if e.v2 == o.v1 || e.v2 == o.v2 {
		return e.V2()
	}
	return nil
}

// NFaces returns the number of primary faces (0, 1, or 2).
func (e *Edge) NFaces() int {
	n := 0
	if e.f1 != 0 {
		n++
	}
	if e.f2 != 0 {
		n++
	}
	return n
}

// NumAllFaces includes overflow faces.
func (e *Edge) NumAllFaces() int {
	return e.NFaces() + len(e.adj)
}

// AllFaces returns the overflow faces followed by the primary faces.
func (e *Edge) AllFaces() []*Face {
	ret := make([]*Face, 0, e.NumAllFaces())
	for _, fid := range e.adj {
		ret = append(ret, e.mesh.faces[fid])
	}
	if e.f1 != 0 {
		ret = append(ret, e.F1())
	}
	if e.f2 != 0 {
		ret = append(ret, e.F2())
	}
	return ret
}

// Face returns some primary face, or nil.
func (e *Edge) Face() *Face {
	if e.f1 != 0 {
		return e.F1()
	}
	return e.F2()
}

// OtherFace returns the primary face that is not f.
func (e *Edge) OtherFace(f *Face) *Face {
	if f == nil {
		return nil
	}
	switch f.id {
	case e.f1:
		return e.F2()
	case e.f2:
		return e.F1()
	}
	return nil
}

// CCWFace returns the primary face in which this edge follows v in CCW order.
func (e *Edge) CCWFace(v *Vertex) *Face {
	if !e.Contains(v) {
		return nil
	}
	if f := e.F1(); f != nil && f.EdgeFromVert(v) == e {
		return f
	}
	if f := e.F2(); f != nil && f.EdgeFromVert(v) == e {
		return f
	}
	return nil
}

// CWFace returns the primary face in which this edge follows v in CW order.
func (e *Edge) CWFace(v *Vertex) *Face {
	return e.CCWFace(e.OtherVertex(v))
}

// LookupFace returns an adjacent face containing v, which must not be an endpoint.
func (e *Edge) LookupFace(v *Vertex) *Face {
	if v == nil || e.Contains(v) {
		return nil
	}
	for _, f := range e.AllFaces() {
		if f.Contains(v) {
			return f
		}
	}
	return nil
}

// OppositeVert1 returns the vertex of f1 that is not on this edge.
func (e *Edge) OppositeVert1() *Vertex {
	if f := e.F1(); f != nil {
		return f.OtherVertexOfEdge(e)
	}
	return nil
}

func (e *Edge) OppositeVert2() *Vertex {
	if f := e.F2(); f != nil {
		return f.OtherVertexOfEdge(e)
	}
	return nil
}

func (e *Edge) Vec() r3.Vec {
	return r3.Sub(e.V2().pos, e.V1().pos)
}

func (e *Edge) Length() float64 {
	return r3.Norm(e.Vec())
}

func (e *Edge) MidPt() r3.Vec {
	return midpoint(e.V1().pos, e.V2().pos)
}

// Dot returns the dot product of the two primary face normals (1 if there are fewer than 2).
func (e *Edge) Dot() float64 {
	if e.f1 == 0 || e.f2 == 0 {
		return 1
	}
	return r3.Dot(e.F1().Norm(), e.F2().Norm())
}

// Normal is the average of the primary face normals.
func (e *Edge) Normal() r3.Vec {
	var n r3.Vec
	for _, f := range [2]*Face{e.F1(), e.F2()} {
		if f != nil {
			n = r3.Add(n, f.Norm())
		}
	}
	return unit(n)
}

// NearestPt returns the point on this edge nearest to p.
func (e *Edge) NearestPt(p r3.Vec) r3.Vec {
	return segmentNearest(e.V1().pos, e.V2().pos, p)
}

// Patch returns the patch of some primary face, or nil.
func (e *Edge) Patch() *Patch {
	if f := e.Face(); f != nil {
		return f.patch
	}
	return nil
}

// --------------------------------------------------------------------------------------------------------------------
// classification

func (e *Edge) CreaseVal() uint16 { return e.crease }
func (e *Edge) IsCrease() bool    { return e.crease > 0 }

// SetCrease sets the crease value; CreaseMax is infinitely sharp and 0 clears the crease.
func (e *Edge) SetCrease(c uint16) {
	if e.crease == c {
		return
	}
	e.crease = c
	if e.mesh != nil {
		e.mesh.Changed(go2mesh.CreasesChanged)
	}
}

// IncCrease raises the crease value by one, jumping to CreaseMax once it reaches maxVal.
func (e *Edge) IncCrease(maxVal uint16) {
	c := e.crease
	switch {
	case c == CreaseMax:
		return
	case c >= maxVal:
		c = CreaseMax
	default:
		c++
	}
	e.SetCrease(c)
}

// DecCrease lowers the crease value by one, dropping to maxVal if it was above it.
func (e *Edge) DecCrease(maxVal uint16) {
	c := e.crease
	switch {
	case c == 0:
		return
	case c <= maxVal:
		c--
	default:
		c = maxVal
	}
	e.SetCrease(c)
}

// ComputeCrease marks this edge as an infinitely sharp crease if its dihedral dot is less than d.
func (e *Edge) ComputeCrease(d float64) {
	if e.Dot() < d {
		e.SetCrease(CreaseMax)
	} else {
		e.SetCrease(0)
	}
}

func (e *Edge) IsBorder() bool   { return e.NFaces() == 1 }
func (e *Edge) IsPolyline() bool { return e.NFaces() == 0 && len(e.adj) == 0 }
func (e *Edge) IsInterior() bool { return e.NFaces() == 2 }
func (e *Edge) IsMulti() bool    { return len(e.adj) > 0 }

// IsMultiFace reports if f is one of this edge's overflow faces.
func (e *Edge) IsMultiFace(f *Face) bool {
	if f == nil {
		return false
	}
	for _, fid := range e.adj {
		if fid == f.id {
			return true
		}
	}
	return false
}

// IsWeak reports if this edge is the diagonal of a quad.
func (e *Edge) IsWeak() bool   { return e.bits&edgeWeak != 0 }
func (e *Edge) IsStrong() bool { return !e.IsWeak() }

func (e *Edge) SetWeak(weak bool) {
	e.setBit(edgeWeak, weak)
}

func (e *Edge) IsSelected() bool     { return e.bits&edgeSelected != 0 }
func (e *Edge) SetSelected(sel bool) { e.setBit(edgeSelected, sel) }

func (e *Edge) SetPatchBoundary(on bool) {
	e.setBit(edgePatchBoundary, on)
}

// IsPatchBoundary reports if the two primary faces are in different patches, the edge was explicitly marked,
// or texture coordinates are discontinuous across it.
func (e *Edge) IsPatchBoundary() bool {
	if e.f1 != 0 && e.f2 != 0 && e.F1().patch != e.F2().patch {
		return true
	}
	if e.bits&edgePatchBoundary != 0 {
		return true
	}
	return e.mesh != nil && !e.mesh.uv.IsContinuous(e)
}

// IsTextureSeam reports a UV discontinuity across this edge.
func (e *Edge) IsTextureSeam() bool {
	return e.mesh != nil && !e.mesh.uv.IsContinuous(e)
}

// IsPrimary reports if this edge has a primary face, or has no faces at all.
func (e *Edge) IsPrimary() bool {
	if e.NumAllFaces() == 0 {
		return true
	}
	for _, f := range e.AllFaces() {
		if f.IsPrimary() {
			return true
		}
	}
	return false
}

func (e *Edge) IsSecondary() bool { return !e.IsPrimary() }

// ConsistentOrientation reports if the two primary faces induce opposite directions on this edge.
func (e *Edge) ConsistentOrientation() bool {
	if e.NFaces() < 2 {
		return true
	}
	return e.F1().Orientation(e)*e.F2().Orientation(e) == -1
}

// IsCrossable reports if a strip may continue across this edge.
func (e *Edge) IsCrossable() bool {
	return e.ConsistentOrientation() && !(e.IsCrease() || e.IsPatchBoundary() || e.IsTextureSeam())
}

// IsStressed reports a non-crease edge folded back on itself.
func (e *Edge) IsStressed() bool {
	return !e.IsCrease() && e.f1 != 0 && e.f2 != 0 && r3.Dot(e.F1().Norm(), e.F2().Norm()) < -0.5
}

func (e *Edge) IsPolylineEnd() bool {
	return e.IsPolyline() && (e.V1().IsPolylineEnd() || e.V2().IsPolylineEnd())
}

func (e *Edge) IsCreaseEnd() bool {
	return e.IsCrease() && (e.V1().IsCreaseEnd() || e.V2().IsCreaseEnd())
}

// IsChainTip reports if this edge is accepted by the filter and starts or ends a chain of such edges.
func (e *Edge) IsChainTip(filter SimplexFilter) bool {
	return filter.Accept(e) && (e.V1().DegreeOf(filter) != 2 || e.V2().DegreeOf(filter) != 2)
}

// IsConvex reports if the dihedral angle at this edge is convex (border edges count as convex).
func (e *Edge) IsConvex() bool {
	if e.bits&edgeConvexValid == 0 {
		convex := e.f1 == 0 || e.f2 == 0
		if !convex {
			f1 := e.F1()
			n := r3.Add(f1.Norm(), e.F2().Norm())
			convex = r3.Dot(n, r3.Sub(f1.OtherVertexOfEdge(e).pos, e.V1().pos)) < 0
		}
		e.setBit(edgeConvexValid, true)
		e.setBit(edgeConvex, convex)
	}
	return e.bits&edgeConvex != 0
}

// IsSil reports if this edge lies on the silhouette as seen from eye.
func (e *Edge) IsSil(eye r3.Vec) bool {
	if e.IsBorder() {
		return true
	}
	if e.f1 == 0 && e.f2 == 0 {
		return false
	}
	f1, f2 := e.F1(), e.F2()
	n1, n2 := f1.Norm(), f2.Norm()
	if !isNull(n1) && !isNull(n2) {
		return f1.FrontFacing(eye) != f2.FrontFacing(eye)
	}
	if isNull(n1) && isNull(n2) {
		return false
	}

	// One face has zero area, which happens with quads that are trying to look like triangles.
	if e.IsWeak() {
		return false
	}
	good, null := f1, f2
	if isNull(n1) {
		good, null = f2, f1
	}
	if null.IsQuad() {
		if partner := null.QuadPartner(); partner != nil && !isNull(partner.Norm()) {
			return good.FrontFacing(eye) != partner.FrontFacing(eye)
		}
	}
	return false
}

// FrontFacingFace returns a primary face that faces the eye, or nil.
func (e *Edge) FrontFacingFace(eye r3.Vec) *Face {
	if f := e.F1(); f != nil && f.FrontFacing(eye) {
		return f
	}
	if f := e.F2(); f != nil && f.FrontFacing(eye) {
		return f
	}
	return nil
}

func (e *Edge) SilStamp() uint64         { return e.silStamp }
func (e *Edge) SetSilStamp(stamp uint64) { e.silStamp = stamp }

// NumQuads returns the number of primary faces of this edge that are part of a quad.
func (e *Edge) NumQuads() int {
	n := 0
	for _, f := range [2]*Face{e.F1(), e.F2()} {
		if f != nil && f.IsQuad() {
			n++
		}
	}
	return n
}

// OppositeQuadEdge returns the edge across the quad (adjacent to this edge) from this edge.
func (e *Edge) OppositeQuadEdge() *Edge {
	if e.IsWeak() {
		return nil
	}
	for _, f := range [2]*Face{e.F1(), e.F2()} {
		if f == nil || !f.IsQuad() {
			continue
		}
		q := f.QuadPartner()
		if q == nil {
			continue
		}
		// the vertices of the quad not on e
		a, w := f.OtherVertexOfEdge(e), f.WeakEdge()
		if a == nil || w == nil {
			continue
		}
		if b := q.OtherVertex(a, w.OtherVertex(a)); b != nil {
			return a.LookupEdge(b)
		}
	}
	return nil
}

// --------------------------------------------------------------------------------------------------------------------
// face slots

// addFace records f as adjacent to this edge.
//
// A free primary slot is used if available; otherwise a secondary primary face is demoted to make room;
// otherwise f goes to the overflow list.
func (e *Edge) addFace(f *Face) bool {
	if f == nil || !f.ContainsEdge(e) {
		klog.Errorf("Edge.addFace: face doesn't contain edge %d", e.id)
		return false
	}
	if e.ContainsFace(f) {
		return true
	}
	if e.f1 != 0 && e.f2 != 0 {
		if e.F2().IsSecondary() {
			e.Demote(e.F2())
		} else if e.F1().IsSecondary() {
			e.Demote(e.F1())
		}
	}
	if e.f1 != 0 && e.f2 != 0 {
		e.addMulti(f)
	} else if e.f1 != 0 {
		e.f2 = f.id
	} else {
		e.f1 = f.id
	}
	e.facesChanged()
	return true
}

// removeFace drops f from either a primary slot or the overflow list.
func (e *Edge) removeFace(f *Face) bool {
	switch {
	case f == nil:
		return false
	case f.id == e.f1:
		e.f1 = 0
	case f.id == e.f2:
		e.f2 = 0
	case e.IsMultiFace(f):
		e.adj = removeFaceID(e.adj, f.id)
	default:
		klog.Errorf("Edge.removeFace: unknown face %d on edge %d", f.id, e.id)
		return false
	}
	e.facesChanged()
	return true
}

func removeFaceID(ids []FaceID, id FaceID) []FaceID {
	for i, fid := range ids {
		if fid == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func (e *Edge) facesChanged() {
	e.silStamp = 0
	e.bits &^= edgeConvexValid
	if e.mesh != nil {
		e.mesh.geomStamp++
	}
}

func (e *Edge) addMulti(f *Face) bool {
	if f == nil || !f.ContainsEdge(e) {
		return false
	}
	if f.id == e.f1 || f.id == e.f2 {
		return e.Demote(f)
	}
	if !e.IsMultiFace(f) {
		e.adj = append(e.adj, f.id)
	}
	e.facesChanged()
	return true
}

// Demote moves f from a primary slot to the overflow list.
func (e *Edge) Demote(f *Face) bool {
	if f == nil || !f.ContainsEdge(e) {
		klog.Errorf("Edge.Demote: face not on edge %d", e.id)
		return false
	}
	switch f.id {
	case e.f1:
		e.f1 = 0
	case e.f2:
		e.f2 = 0
	default:
		// already demoted
		return true
	}
	return e.addMulti(f)
}

// CanPromote reports if a primary slot is free or held by a secondary face.
func (e *Edge) CanPromote() bool {
	return e.f1 == 0 || e.F1().IsSecondary() || e.f2 == 0 || e.F2().IsSecondary()
}

// Promote moves f from the overflow list to a primary slot.
// Callers should check CanPromote() first.
func (e *Edge) Promote(f *Face) bool {
	if f == nil || !f.ContainsEdge(e) {
		klog.Errorf("Edge.Promote: face not on edge %d", e.id)
		return false
	}
	if !e.IsMultiFace(f) {
		// already primary
		return f.id == e.f1 || f.id == e.f2
	}
	e.adj = removeFaceID(e.adj, f.id)
	if !e.addPrimary(f) {
		e.adj = append(e.adj, f.id)
		return false
	}
	e.facesChanged()
	return true
}

func (e *Edge) addPrimary(f *Face) bool {
	switch {
	case e.f1 == 0:
		e.f1 = f.id
	case e.f2 == 0:
		e.f2 = f.id
	case e.F1().IsSecondary():
		e.Demote(e.F1())
		e.f1 = f.id
	case e.F2().IsSecondary():
		e.Demote(e.F2())
		e.f2 = f.id
	default:
		return false
	}
	return true
}

// FixMulti moves overflow faces labelled primary into primary slots.
//
// Used after loading, since primary/secondary labels are only known once all faces exist.
func (e *Edge) FixMulti() bool {
	if len(e.adj) == 0 {
		return true
	}
	numPrimary := 0
	for _, f := range e.AllFaces() {
		if f.IsPrimary() {
			numPrimary++
		}
	}
	if numPrimary > 2 {
		klog.Errorf("Edge.FixMulti: %v (edge %d)", go2mesh.ErrTooManyPrimaries, e.id)
		return false
	}
	for i := len(e.adj) - 1; i >= 0; i-- {
		if i >= len(e.adj) {
			continue
		}
		if f := e.mesh.faces[e.adj[i]]; f.IsPrimary() {
			e.Promote(f)
		}
	}
	return true
}

// --------------------------------------------------------------------------------------------------------------------
// redefinition

// Redefine replaces endpoint v with u.  The edge must have no faces attached.
//
// Returns false if the result would duplicate an existing edge; in that case a crease value is copied onto the
// existing edge so it isn't lost.
func (e *Edge) Redefine(v, u *Vertex) bool {
	if !e.Contains(v) || e.NumAllFaces() != 0 {
		klog.Errorf("Edge.Redefine: edge %d must be detached and contain v", e.id)
		return false
	}
	if e.Contains(u) {
		return false
	}
	keep := e.OtherVertex(v)
	if dup := u.LookupEdge(keep); dup != nil {
		if e.IsCrease() {
			dup.SetCrease(e.crease)
		}
		if e.mesh.cfg.DebugMeshOps {
			klog.V(2).Infof("Edge.Redefine: %v (%d-%d)", go2mesh.ErrDuplicateEdge, u.idx, keep.idx)
		}
		return false
	}
	v.removeEdge(e)
	if v.id == e.v1 {
		e.v1 = u.id
	} else {
		e.v2 = u.id
	}
	u.addEdge(e)
	e.mesh.geomStamp++
	return true
}

// setNewVertices re-points both endpoints; used by edge swap.
func (e *Edge) setNewVertices(v1, v2 *Vertex) bool {
	if e.NumAllFaces() != 0 || v1.LookupEdge(v2) != nil {
		klog.Errorf("Edge.setNewVertices: edge %d is attached or would duplicate", e.id)
		return false
	}
	e.V1().removeEdge(e)
	e.V2().removeEdge(e)
	e.v1, e.v2 = v1.id, v2.id
	v1.addEdge(e)
	v2.addEdge(e)
	e.mesh.geomStamp++
	return true
}

// notifySplit propagates per-edge tags to a simplex created by splitting this edge.
func (e *Edge) notifySplit(s Simplex) {
	if ne, ok := s.(*Edge); ok && e.IsCrease() {
		ne.SetCrease(e.crease)
	}
	if v, ok := s.(*Vertex); ok && e.IsSelected() {
		v.SetSelected(true)
	}
}

// --------------------------------------------------------------------------------------------------------------------
// swap

const swapHandicapUnit = 8.0 / 180.0 * math.Pi

// SwapIsLegal reports if swapping this edge preserves the topology.
func (e *Edge) SwapIsLegal() bool {
	debug := e.mesh.cfg.DebugEdgeSwap
	if !e.IsInterior() || e.IsPatchBoundary() || e.IsCrease() || e.IsMulti() {
		if debug {
			klog.V(2).Infof("Edge.SwapIsLegal: bad edge type (edge %d)", e.id)
		}
		return false
	}
	if !e.IsWeak() && (e.F1().IsQuad() || e.F2().IsQuad()) {
		if debug {
			klog.V(2).Infof("Edge.SwapIsLegal: swap would wreck quad-ness (edge %d)", e.id)
		}
		return false
	}
	uv := &e.mesh.uv
	if (uv.HasUV(e.F1()) || uv.HasUV(e.F2())) && !uv.IsContinuous(e) {
		if debug {
			klog.V(2).Infof("Edge.SwapIsLegal: uv-discontinuous (edge %d)", e.id)
		}
		return false
	}
	o1, o2 := e.OppositeVert1(), e.OppositeVert2()
	return o1 != nil && o2 != nil && o1.LookupEdge(o2) == nil
}

// swapQuad names the two faces and four vertices involved in a swap.
//
//	            c
//	          / | \
//	        /   |   \
//	      d   f1|f2   b
//	        \   |   /
//	          \ | /
//	            a
//
// This edge goes from a to c; swapping replaces it with an edge from d to b.
type swapQuad struct {
	f1, f2     *Face
	a, b, c, d *Vertex
}

// Swapable reports if a swap of this edge is both legal (see SwapIsLegal) and preferable: it increases the
// minimum angle.
//
// If favorDegreeSix is set, each unit of degree badness penalizes the swapped min angle by 8 degrees.
func (e *Edge) Swapable(favorDegreeSix bool) bool {
	debug := e.mesh.cfg.DebugEdgeSwap
	decline := func(reason string) bool {
		if debug {
			klog.V(2).Infof("Edge.Swapable: %s (edge %d)", reason, e.id)
		}
		return false
	}
	if !e.SwapIsLegal() {
		return decline("illegal")
	}

	var sq swapQuad
	sq.a, sq.c = e.V1(), e.V2()
	sq.f1 = e.CCWFace(sq.a)
	sq.f2 = e.OtherFace(sq.f1)
	if sq.f1 == nil || sq.f2 == nil {
		return decline("need 2 faces")
	}

	thresh := e.mesh.cfg.SwapDotThresh
	if r3.Dot(sq.f1.Norm(), sq.f2.Norm()) < thresh {
		return decline("too sharp")
	}

	sq.b = sq.f2.OtherVertex(sq.a, sq.c)
	sq.d = sq.f1.OtherVertex(sq.a, sq.c)
	if sq.b == nil || sq.d == nil {
		return decline("topology violation")
	}

	a, b, c, d := sq.a.pos, sq.b.pos, sq.c.pos, sq.d.pos
	if r3.Dot(unit(r3.Cross(r3.Sub(a, d), r3.Sub(b, d))), unit(r3.Cross(r3.Sub(b, d), r3.Sub(c, d)))) <= thresh {
		return decline("new edge too sharp")
	}

	ca := unit(r3.Sub(c, a))
	ba := unit(r3.Sub(b, a))
	da := unit(r3.Sub(d, a))
	bc := unit(r3.Sub(b, c))
	dc := unit(r3.Sub(d, c))
	bd := unit(r3.Sub(b, d))

	// bigger dot means teenier angle
	curMaxDot := math.Max(math.Max(r3.Dot(ca, ba), r3.Dot(ca, da)), math.Max(-r3.Dot(ca, bc), -r3.Dot(ca, dc)))
	swapMaxDot := math.Max(math.Max(-r3.Dot(bd, da), -r3.Dot(bd, dc)), math.Max(r3.Dot(bd, ba), r3.Dot(bd, bc)))

	curMinAngle := acos(curMaxDot)
	swapMinAngle := acos(swapMaxDot)

	// k measures how bad the swap is w.r.t. vertex degrees (positive is worse)
	k := 0
	if favorDegreeSix {
		k += degreeVote(sq.a.Degree() <= 6)
		k += degreeVote(sq.c.Degree() <= 6)
		k += degreeVote(sq.d.Degree() >= 6)
		k += degreeVote(sq.b.Degree() >= 6)
	}
	return swapMinAngle > curMinAngle+float64(k)*swapHandicapUnit
}

func degreeVote(bad bool) int {
	if bad {
		return 1
	}
	return -1
}

// DoSwap replaces this edge with the one joining the two opposite vertices, carrying UVs over.
//
//	      v2                v2
//	     / | \             /   \
//	   o1 g1|g2 o2  ->   o1 - - o2
//	     \ | /             \ g1/
//	      v1                v1
func (e *Edge) DoSwap() bool {
	if !e.SwapIsLegal() {
		if e.mesh.cfg.DebugMeshOps {
			klog.V(2).Infof("Edge.DoSwap: illegal (edge %d)", e.id)
		}
		return false
	}
	v1, v2 := e.V1(), e.V2()
	g1 := e.CCWFace(v1)
	g2 := e.CWFace(v1)
	if g1 == nil || g2 == nil {
		return false
	}
	o1 := g1.OtherVertexOfEdge(e)
	o2 := g2.OtherVertexOfEdge(e)

	uv := &e.mesh.uv
	doUV := uv.HasUV(g1) || uv.HasUV(g2)
	var uvo1, uvo2, uvv1, uvv2 UV
	if doUV {
		uvo1, _ = uv.Get(o1, g1)
		uvo2, _ = uv.Get(o2, g2)
		uvv1, _ = uv.Get(v1, g1)
		uvv2, _ = uv.Get(v2, g1)
	}

	g1.Detach()
	g2.Detach()
	e.setNewVertices(o2, o1)
	g1.Redefine(v2, o2)
	g2.Redefine(v1, o1)

	if doUV {
		uv.Set(o1, g1, uvo1)
		uv.Set(v1, g1, uvv1)
		uv.Set(o2, g1, uvo2)
		uv.Set(o2, g2, uvo2)
		uv.Set(v2, g2, uvv2)
		uv.Set(o1, g2, uvo1)
	}
	e.mesh.Changed(go2mesh.TriangulationChanged)
	return true
}

func (e *Edge) String() string {
	if e.mesh == nil {
		return "Edge(removed)"
	}
	return fmt.Sprintf("Edge(%d,%d)", e.V1().idx, e.V2().idx)
}
