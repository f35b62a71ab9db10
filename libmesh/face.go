package libmesh

import (
	"fmt"

	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Face is a triangle with vertices in CCW order; edge e[i] joins v[i] and v[(i+1)%3].
type Face struct {
	mesh    *Mesh
	id      FaceID
	idx     int
	v       [3]VertID
	e       [3]EdgeID
	patch   *Patch
	pidx    int // index within patch.faces
	bits    uint32
	flag    uint8
	orient  VertID // tri-strip orientation vertex
	zxStamp uint64 // zero-crossing visit stamp
}

const (
	faceSecondary uint32 = 1 << iota
	faceBad
	faceSelected
)

func (f *Face) Dim() int           { return 2 }
func (f *Face) Mesh() *Mesh        { return f.mesh }
func (f *Face) Flag() uint8        { return f.flag }
func (f *Face) SetFlag(flag uint8) { f.flag = flag }
func (f *Face) ID() FaceID         { return f.id }
func (f *Face) Patch() *Patch      { return f.patch }

// Index returns the position of this face in its mesh's face list, or -1 if it has been removed.
func (f *Face) Index() int {
	if f.mesh == nil {
		return -1
	}
	return f.idx
}

// V returns vertex i (0..2) in CCW order.
func (f *Face) V(i int) *Vertex { return f.mesh.verts[f.v[i]] }

// E returns edge i (0..2), which joins V(i) and V(i+1).
func (f *Face) E(i int) *Edge { return f.mesh.edges[f.e[i]] }

func (f *Face) Verts() [3]*Vertex {
	return [3]*Vertex{f.V(0), f.V(1), f.V(2)}
}

func (f *Face) Edges() [3]*Edge {
	return [3]*Edge{f.E(0), f.E(1), f.E(2)}
}

func (f *Face) setBit(bit uint32, on bool) {
	if on {
		f.bits |= bit
	} else {
		f.bits &^= bit
	}
}

func (f *Face) IsSecondary() bool { return f.bits&faceSecondary != 0 }
func (f *Face) IsPrimary() bool   { return f.bits&faceSecondary == 0 }

// SetSecondary labels this face secondary (or primary); it does not move the face between edge slots.
func (f *Face) SetSecondary(secondary bool) { f.setBit(faceSecondary, secondary) }

func (f *Face) IsBad() bool          { return f.bits&faceBad != 0 }
func (f *Face) SetBad(bad bool)      { f.setBit(faceBad, bad) }
func (f *Face) IsSelected() bool     { return f.bits&faceSelected != 0 }
func (f *Face) SetSelected(sel bool) { f.setBit(faceSelected, sel) }

// vertIndex returns the slot (0..2) holding v, or -1.
func (f *Face) vertIndex(v *Vertex) int {
	if v != nil {
		for i, vid := range f.v {
			if vid == v.id {
				return i
			}
		}
	}
	return -1
}

func (f *Face) Contains(v *Vertex) bool {
	return f.vertIndex(v) >= 0
}

func (f *Face) ContainsEdge(e *Edge) bool {
	return e != nil && (f.e[0] == e.id || f.e[1] == e.id || f.e[2] == e.id)
}

// NextVertCCW returns the vertex following v in CCW order.
func (f *Face) NextVertCCW(v *Vertex) *Vertex {
	i := f.vertIndex(v)
	if i < 0 {
		return nil
	}
	return f.V((i + 1) % 3)
}

// PrevVertCCW returns the vertex preceding v in CCW order.
func (f *Face) PrevVertCCW(v *Vertex) *Vertex {
	i := f.vertIndex(v)
	if i < 0 {
		return nil
	}
	return f.V((i + 2) % 3)
}

// EdgeFromVert returns the edge leading from v to the next vertex in CCW order.
func (f *Face) EdgeFromVert(v *Vertex) *Edge {
	i := f.vertIndex(v)
	if i < 0 {
		return nil
	}
	return f.E(i)
}

// EdgeBeforeVert returns the edge leading into v in CCW order.
func (f *Face) EdgeBeforeVert(v *Vertex) *Edge {
	i := f.vertIndex(v)
	if i < 0 {
		return nil
	}
	return f.E((i + 2) % 3)
}

// OppositeEdge returns the edge not containing v.
func (f *Face) OppositeEdge(v *Vertex) *Edge {
	i := f.vertIndex(v)
	if i < 0 {
		return nil
	}
	return f.E((i + 1) % 3)
}

// OppositeFace returns the face across the edge opposite v.
func (f *Face) OppositeFace(v *Vertex) *Face {
	if e := f.OppositeEdge(v); e != nil {
		return e.OtherFace(f)
	}
	return nil
}

// OtherVertex returns the vertex that is neither a nor b.
func (f *Face) OtherVertex(a, b *Vertex) *Vertex {
	if a == nil || b == nil {
		return nil
	}
	for i, vid := range f.v {
		if vid != a.id && vid != b.id {
			return f.V(i)
		}
	}
	return nil
}

// OtherVertexOfEdge returns the vertex not on the given edge.
func (f *Face) OtherVertexOfEdge(e *Edge) *Vertex {
	if e == nil || !f.ContainsEdge(e) {
		return nil
	}
	return f.OtherVertex(e.V1(), e.V2())
}

// SharedEdge returns the edge shared with g, or nil.
func (f *Face) SharedEdge(g *Face) *Edge {
	if g == nil {
		return nil
	}
	for _, eid := range f.e {
		if g.e[0] == eid || g.e[1] == eid || g.e[2] == eid {
			return f.mesh.edges[eid]
		}
	}
	return nil
}

// Orientation returns +1 if e runs v1->v2 in this face's CCW order, -1 if it runs backwards, and 0 if e is not
// an edge of this face.
func (f *Face) Orientation(e *Edge) int {
	if !f.ContainsEdge(e) {
		return 0
	}
	if f.NextVertCCW(e.V1()) == e.V2() {
		return 1
	}
	return -1
}

// --------------------------------------------------------------------------------------------------------------------
// geometry

// Norm returns the unit normal, or the zero vector for a degenerate face.
func (f *Face) Norm() r3.Vec {
	a, b, c := f.V(0).pos, f.V(1).pos, f.V(2).pos
	return unit(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

func (f *Face) Area() float64 {
	a, b, c := f.V(0).pos, f.V(1).pos, f.V(2).pos
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

func (f *Face) Centroid() r3.Vec {
	sum := r3.Add(r3.Add(f.V(0).pos, f.V(1).pos), f.V(2).pos)
	return r3.Scale(1./3., sum)
}

// AngleAt returns the interior angle at v.
func (f *Face) AngleAt(v *Vertex) float64 {
	i := f.vertIndex(v)
	if i < 0 {
		return 0
	}
	p := v.pos
	return angle(r3.Sub(f.V((i+1)%3).pos, p), r3.Sub(f.V((i+2)%3).pos, p))
}

// FrontFacing reports if the eye lies on the positive side of this face's plane.
func (f *Face) FrontFacing(eye r3.Vec) bool {
	return r3.Dot(r3.Sub(eye, f.V(0).pos), f.Norm()) > 0
}

// Bc2Pos converts barycentric coordinates to a location.
func (f *Face) Bc2Pos(bc r3.Vec) r3.Vec {
	p := r3.Scale(bc.X, f.V(0).pos)
	p = r3.Add(p, r3.Scale(bc.Y, f.V(1).pos))
	return r3.Add(p, r3.Scale(bc.Z, f.V(2).pos))
}

// ProjectBarycentric returns the barycentric coordinates of p projected into this face's plane.
func (f *Face) ProjectBarycentric(p r3.Vec) r3.Vec {
	a, b, c := f.V(0).pos, f.V(1).pos, f.V(2).pos
	v0, v1, v2 := r3.Sub(b, a), r3.Sub(c, a), r3.Sub(p, a)
	d00, d01, d11 := r3.Dot(v0, v0), r3.Dot(v0, v1), r3.Dot(v1, v1)
	d20, d21 := r3.Dot(v2, v0), r3.Dot(v2, v1)
	denom := d00*d11 - d01*d01
	if denom == 0 {
		return r3.Vec{X: 1}
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return r3.Vec{X: 1 - v - w, Y: v, Z: w}
}

// VertNormal returns the normal at v as seen from this face: the average over the fan of faces around v reachable
// from this face without crossing a crease or border.
func (f *Face) VertNormal(v *Vertex) r3.Vec {
	if !f.Contains(v) {
		return r3.Vec{}
	}
	if !v.IsCrease() {
		return v.Normal()
	}
	fan := []*Face{f}
	for _, e := range [2]*Edge{f.EdgeFromVert(v), f.EdgeBeforeVert(v)} {
		for cur := f; e != nil && !e.IsCrease() && !e.IsBorder() && len(fan) <= v.Degree(); {
			if cur = e.OtherFace(cur); cur == nil || cur == f {
				break
			}
			fan = appendFaceUniquely(fan, cur)
			e = cur.edgeAt(v, e)
		}
	}
	return computeNormal(v, fan)
}

// edgeAt returns the edge of this face containing v other than the one given.
func (f *Face) edgeAt(v *Vertex, not *Edge) *Edge {
	for _, e := range f.Edges() {
		if e != not && e.Contains(v) {
			return e
		}
	}
	return nil
}

// --------------------------------------------------------------------------------------------------------------------
// quads

// WeakEdge returns this face's quad diagonal, if any.
func (f *Face) WeakEdge() *Edge {
	for i := range f.e {
		if e := f.E(i); e.IsWeak() {
			return e
		}
	}
	return nil
}

func (f *Face) weakSlot() int {
	for i := range f.e {
		if f.E(i).IsWeak() {
			return i
		}
	}
	return -1
}

// QuadPartner returns the face sharing this face's weak edge.
func (f *Face) QuadPartner() *Face {
	if w := f.WeakEdge(); w != nil {
		return w.OtherFace(f)
	}
	return nil
}

func (f *Face) IsQuad() bool {
	return f.QuadPartner() != nil
}

// QuadRep returns the face that represents the quad this face belongs to.
func (f *Face) QuadRep() *Face {
	q := f.QuadPartner()
	if q == nil {
		return nil
	}
	fk, qk := f.weakSlot(), q.weakSlot()
	switch {
	case fk == 2 && qk != 2:
		return f
	case qk == 2 && fk != 2:
		return q
	case f.id < q.id:
		return f
	}
	return q
}

// IsQuadRep reports if this face represents its quad.
func (f *Face) IsQuadRep() bool {
	return f.QuadRep() == f
}

// QuadVert returns the vertex of the quad partner not in this face.
func (f *Face) QuadVert() *Vertex {
	q := f.QuadPartner()
	if q == nil {
		return nil
	}
	w := f.WeakEdge()
	return q.OtherVertex(w.V1(), w.V2())
}

// QuadVerts returns the quad's corners (a, b, c, d) in CCW order such that the weak edge joins a and c.
func (f *Face) QuadVerts() (a, b, c, d *Vertex) {
	k := f.weakSlot()
	if k < 0 || f.QuadPartner() == nil {
		return nil, nil, nil, nil
	}
	return f.V((k + 1) % 3), f.V((k + 2) % 3), f.V(k), f.QuadVert()
}

// QuadOppositeVert returns the corner of the quad opposite v.
func (f *Face) QuadOppositeVert(v *Vertex) *Vertex {
	a, b, c, d := f.QuadVerts()
	switch v {
	case nil:
		return nil
	case a:
		return c
	case b:
		return d
	case c:
		return a
	case d:
		return b
	}
	return nil
}

// QuadCentroid returns the average of the four quad corners (or the face centroid if not a quad).
func (f *Face) QuadCentroid() r3.Vec {
	a, b, c, d := f.QuadVerts()
	if a == nil {
		return f.Centroid()
	}
	sum := r3.Add(r3.Add(a.pos, b.pos), r3.Add(c.pos, d.pos))
	return r3.Scale(0.25, sum)
}

// --------------------------------------------------------------------------------------------------------------------
// strips

func (f *Face) Orient() *Vertex { return f.mesh.verts[f.orient] }

// OrientStrip records the vertex a tri strip enters this face at.
func (f *Face) OrientStrip(v *Vertex) {
	if v == nil {
		f.orient = 0
	} else {
		f.orient = v.id
	}
}

// NextStripFace returns the face a strip continues into, crossing the edge opposite the orientation vertex.
func (f *Face) NextStripFace() *Face {
	e := f.OppositeEdge(f.Orient())
	if e == nil || !e.IsCrossable() {
		return nil
	}
	return e.OtherFace(f)
}

func (f *Face) ZxStamp() uint64         { return f.zxStamp }
func (f *Face) SetZxStamp(stamp uint64) { f.zxStamp = stamp }

// --------------------------------------------------------------------------------------------------------------------
// topology edits

// attach records this face with each of its edges.
func (f *Face) attach() {
	for i := range f.e {
		f.E(i).addFace(f)
	}
}

// Detach removes this face from its edges.  The face stays in the mesh until redefined or removed.
func (f *Face) Detach() {
	for i := range f.e {
		if e := f.E(i); e != nil && e.ContainsFace(f) {
			e.removeFace(f)
		}
	}
}

// Redefine replaces vertex v with u.  The face must have been detached.
//
// Fails (leaving the face untouched) if u is already a vertex or the needed edges don't exist.
func (f *Face) Redefine(v, u *Vertex) bool {
	i := f.vertIndex(v)
	if i < 0 || u == nil {
		klog.Errorf("Face.Redefine: bad vertex (face %d)", f.id)
		return false
	}
	if f.Contains(u) {
		return false
	}
	for k := range f.e {
		if e := f.E(k); e != nil && e.ContainsFace(f) {
			klog.Errorf("Face.Redefine: face %d is attached", f.id)
			return false
		}
	}
	verts := f.Verts()
	verts[i] = u
	var edges [3]*Edge
	for k := range edges {
		if edges[k] = verts[k].LookupEdge(verts[(k+1)%3]); edges[k] == nil {
			return false
		}
	}
	for k := range f.v {
		f.v[k] = verts[k].id
		f.e[k] = edges[k].id
	}
	f.attach()
	return true
}

// Reverse flips the orientation of this face.
func (f *Face) Reverse() {
	f.v[1], f.v[2] = f.v[2], f.v[1]
	f.e[0], f.e[2] = f.e[2], f.e[0]
	f.mesh.uv.reverse(f)
	f.mesh.geomStamp++
}

// Check reports if the stored edges match the vertices and record this face.
func (f *Face) Check() error {
	for k := range f.e {
		a, b := f.V(k), f.V((k+1)%3)
		e := f.E(k)
		if e == nil || e != a.LookupEdge(b) {
			return fmt.Errorf("face %d: edge %d doesn't join v%d and v%d", f.id, k, a.idx, b.idx)
		}
		if !e.ContainsFace(f) {
			return fmt.Errorf("face %d: edge %v doesn't record the face", f.id, e)
		}
	}
	return nil
}

func (f *Face) String() string {
	if f.mesh == nil {
		return "Face(removed)"
	}
	return fmt.Sprintf("Face(%d,%d,%d)", f.V(0).idx, f.V(1).idx, f.V(2).idx)
}
