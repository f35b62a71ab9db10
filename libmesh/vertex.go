package libmesh

import (
	"github.com/fine-structures/fine-mesh/go2mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vertex is a point of a Mesh plus its star, the set of edges incident to it.
type Vertex struct {
	mesh     *Mesh
	id       VertID
	idx      int
	pos      r3.Vec
	color    go2mesh.Color
	hasColor bool
	star     []EdgeID
	flag     uint8
	bits     uint32

	normStamp uint64 // geometry stamp of the cached normal
	norm      r3.Vec
}

const (
	vertSelected uint32 = 1 << iota
	vertCorner
)

func (v *Vertex) Dim() int            { return 0 }
func (v *Vertex) Mesh() *Mesh         { return v.mesh }
func (v *Vertex) Flag() uint8         { return v.flag }
func (v *Vertex) SetFlag(flag uint8)  { v.flag = flag }
func (v *Vertex) ID() VertID          { return v.id }
func (v *Vertex) Loc() r3.Vec         { return v.pos }
func (v *Vertex) Color() go2mesh.Color { return v.color }
func (v *Vertex) HasColor() bool      { return v.hasColor }

// Index returns the position of this vertex in its mesh's vertex list, or -1 if it has been removed.
func (v *Vertex) Index() int {
	if v.mesh == nil {
		return -1
	}
	return v.idx
}

// SetLoc moves this vertex.
//
// Callers moving many vertices should follow up with Mesh.Changed(VertPositionsChanged).
func (v *Vertex) SetLoc(p r3.Vec) {
	v.pos = p
	if v.mesh != nil {
		v.mesh.geomStamp++
	}
}

func (v *Vertex) SetColor(c go2mesh.Color) {
	v.color = c
	v.hasColor = true
}

func (v *Vertex) IsSelected() bool { return v.bits&vertSelected != 0 }
func (v *Vertex) SetSelected(sel bool) {
	v.setBit(vertSelected, sel)
}

// IsCorner reports if this vertex was explicitly marked as a subdivision corner.
func (v *Vertex) IsCorner() bool { return v.bits&vertCorner != 0 }
func (v *Vertex) SetCorner(corner bool) {
	v.setBit(vertCorner, corner)
	if v.mesh != nil {
		v.mesh.Changed(go2mesh.CreasesChanged)
	}
}

func (v *Vertex) setBit(bit uint32, on bool) {
	if on {
		v.bits |= bit
	} else {
		v.bits &^= bit
	}
}

// Degree returns the number of edges in this vertex's star.
func (v *Vertex) Degree() int { return len(v.star) }

// DegreeOf returns the number of star edges accepted by the given filter.
func (v *Vertex) DegreeOf(filter SimplexFilter) int {
	n := 0
	for _, eid := range v.star {
		if filter.Accept(v.mesh.edges[eid]) {
			n++
		}
	}
	return n
}

// E returns the i-th edge of this vertex's star.
func (v *Vertex) E(i int) *Edge { return v.mesh.edges[v.star[i]] }

// Nbr returns the vertex at the other end of the i-th star edge.
func (v *Vertex) Nbr(i int) *Vertex { return v.E(i).OtherVertex(v) }

// Edges returns the star of this vertex.
func (v *Vertex) Edges() []*Edge {
	ret := make([]*Edge, len(v.star))
	for i, eid := range v.star {
		ret[i] = v.mesh.edges[eid]
	}
	return ret
}

func (v *Vertex) EdgesOf(filter SimplexFilter) []*Edge {
	var ret []*Edge
	for _, eid := range v.star {
		e := v.mesh.edges[eid]
		if filter.Accept(e) {
			ret = append(ret, e)
		}
	}
	return ret
}

// Nbrs returns the vertices adjacent to this one.
func (v *Vertex) Nbrs() []*Vertex {
	return nbrsOf(v, v.Edges())
}

func nbrsOf(v *Vertex, edges []*Edge) []*Vertex {
	ret := make([]*Vertex, len(edges))
	for i, e := range edges {
		ret[i] = e.OtherVertex(v)
	}
	return ret
}

// LookupEdge returns the edge joining this vertex and u, or nil.
func (v *Vertex) LookupEdge(u *Vertex) *Edge {
	if u == nil || u == v {
		return nil
	}
	for _, eid := range v.star {
		e := v.mesh.edges[eid]
		if e.v1 == u.id || e.v2 == u.id {
			return e
		}
	}
	return nil
}

func (v *Vertex) IsAdjacent(u *Vertex) bool {
	return v.LookupEdge(u) != nil
}

func (v *Vertex) addEdge(e *Edge) {
	for _, eid := range v.star {
		if eid == e.id {
			return
		}
	}
	v.star = append(v.star, e.id)
	v.normStamp = 0
}

func (v *Vertex) removeEdge(e *Edge) bool {
	for i, eid := range v.star {
		if eid == e.id {
			v.star = append(v.star[:i], v.star[i+1:]...)
			v.normStamp = 0
			return true
		}
	}
	return false
}

// IsBorder reports if any star edge is a border edge.
func (v *Vertex) IsBorder() bool {
	for _, eid := range v.star {
		if v.mesh.edges[eid].IsBorder() {
			return true
		}
	}
	return false
}

// IsCrease reports if any star edge is a crease.
func (v *Vertex) IsCrease() bool {
	for _, eid := range v.star {
		if v.mesh.edges[eid].IsCrease() {
			return true
		}
	}
	return false
}

func (v *Vertex) IsPolylineEnd() bool {
	return v.DegreeOf(PolylineFilter) == 1
}

func (v *Vertex) IsCreaseEnd() bool {
	return v.DegreeOf(CreaseFilter) == 1
}

// IsManifold reports if no star edge carries overflow faces.
func (v *Vertex) IsManifold() bool {
	for _, eid := range v.star {
		if v.mesh.edges[eid].IsMulti() {
			return false
		}
	}
	return true
}

// ManifoldEdges returns the star edges belonging to the primary layer.
//
// At a non-manifold vertex, faces fanning out from overflow faces are excluded and only edges adjacent to a
// remaining primary face are returned.
func (v *Vertex) ManifoldEdges() []*Edge {
	if v.IsManifold() {
		return v.Edges()
	}
	M := v.mesh
	pushed := make(map[FaceID]bool)
	for _, eid := range v.star {
		e := M.edges[eid]
		for _, fid := range e.adj {
			// sweep the fan of non-primary faces starting at <v,e,f>
			ei, f := e, M.faces[fid]
			for f != nil && !pushed[f.id] {
				pushed[f.id] = true
				if ei = f.OppositeEdge(ei.OtherVertex(v)); ei == nil {
					break
				}
				f = ei.OtherFace(f)
			}
		}
	}
	var ret []*Edge
	for _, eid := range v.star {
		e := M.edges[eid]
		if (e.f1 != 0 && !pushed[e.f1]) || (e.f2 != 0 && !pushed[e.f2]) {
			ret = append(ret, e)
		}
	}
	return ret
}

// PDegree returns the number of manifold (primary layer) edges.
func (v *Vertex) PDegree() int {
	return len(v.ManifoldEdges())
}

// PNbrs returns the neighbors across manifold edges.
func (v *Vertex) PNbrs() []*Vertex {
	return nbrsOf(v, v.ManifoldEdges())
}

// Faces returns the distinct primary faces in this vertex's star.
func (v *Vertex) Faces() []*Face {
	var edges []*Edge
	if v.IsManifold() {
		edges = v.Edges()
	} else {
		edges = v.ManifoldEdges()
	}
	var ret []*Face
	for _, e := range edges {
		ret = appendFaceUniquely(ret, e.F1())
		ret = appendFaceUniquely(ret, e.F2())
	}
	return ret
}

// AllFaces returns every face incident to this vertex, including overflow faces.
func (v *Vertex) AllFaces() []*Face {
	ret := v.Faces()
	for _, eid := range v.star {
		e := v.mesh.edges[eid]
		for _, fid := range e.adj {
			ret = appendFaceUniquely(ret, v.mesh.faces[fid])
		}
	}
	return ret
}

func appendFaceUniquely(faces []*Face, f *Face) []*Face {
	if f == nil {
		return faces
	}
	for _, fi := range faces {
		if fi == f {
			return faces
		}
	}
	return append(faces, f)
}

// QuadFaces returns the distinct quads (by quad representative) in the star.
func (v *Vertex) QuadFaces() []*Face {
	var ret []*Face
	for _, e := range v.ManifoldEdges() {
		if e.IsWeak() {
			continue
		}
		for _, f := range [2]*Face{e.F1(), e.F2()} {
			if f != nil && f.IsQuad() {
				ret = appendFaceUniquely(ret, f.QuadRep())
			}
		}
	}
	return ret
}

func (v *Vertex) NumQuads() int { return len(v.QuadFaces()) }

func (v *Vertex) NumTris() int {
	n := 0
	for _, f := range v.Faces() {
		if !f.IsQuad() {
			n++
		}
	}
	return n
}

// QNbrs returns the vertices sharing a quad with this vertex, positioned at the opposite corner.
func (v *Vertex) QNbrs() []*Vertex {
	var ret []*Vertex
	for _, e := range v.ManifoldEdges() {
		if !e.IsStrong() {
			continue
		}
		if f := e.CCWFace(v); f != nil && f.IsQuad() {
			if q := f.QuadOppositeVert(v); q != nil {
				ret = append(ret, q)
			}
		}
	}
	return ret
}

// Face returns some face adjacent to this vertex, or nil.
func (v *Vertex) Face() *Face {
	for _, eid := range v.star {
		if f := v.mesh.edges[eid].Face(); f != nil {
			return f
		}
	}
	return nil
}

// CCWEdges returns the star ordered counter-clockwise, starting at the leading border edge if there is one.
// Returns nil if the star is not a single fan or ring.
func (v *Vertex) CCWEdges() []*Edge {
	if len(v.star) == 0 {
		return nil
	}
	borderDegree := v.DegreeOf(BorderFilter)
	if borderDegree > 0 && borderDegree != 2 {
		return nil
	}
	var start *Edge
	if borderDegree == 2 {
		for _, e := range v.Edges() {
			if e.IsBorder() && e.CCWFace(v) != nil {
				start = e
				break
			}
		}
	} else {
		start = v.E(0)
	}
	if start == nil {
		return nil
	}
	ret := make([]*Edge, 0, len(v.star))
	ret = append(ret, start)
	for e := start; len(ret) <= len(v.star); {
		f := e.CCWFace(v)
		if f == nil {
			break
		}
		if e = f.OppositeEdge(e.OtherVertex(v)); e == nil || e == start {
			break
		}
		ret = append(ret, e)
	}
	if len(ret) != len(v.star) {
		return nil
	}
	return ret
}

// CCWNbrs returns the neighbors of this vertex in CCW order (see CCWEdges).
func (v *Vertex) CCWNbrs() []*Vertex {
	return nbrsOf(v, v.CCWEdges())
}

// Normal returns the angle-weighted average of the primary star face normals.
func (v *Vertex) Normal() r3.Vec {
	if v.mesh != nil && v.normStamp == v.mesh.geomStamp && v.normStamp != 0 {
		return v.norm
	}
	v.norm = computeNormal(v, v.Faces())
	if v.mesh != nil {
		v.normStamp = v.mesh.geomStamp
	}
	return v.norm
}

// NormalOf returns the normal computed from the star faces accepted by the given filter.
func (v *Vertex) NormalOf(filter SimplexFilter) r3.Vec {
	var faces []*Face
	for _, f := range v.AllFaces() {
		if filter.Accept(f) {
			faces = append(faces, f)
		}
	}
	return computeNormal(v, faces)
}

func computeNormal(v *Vertex, faces []*Face) r3.Vec {
	var sum r3.Vec
	for _, f := range faces {
		sum = r3.Add(sum, r3.Scale(f.AngleAt(v), f.Norm()))
	}
	return unit(sum)
}

// Centroid returns the average location of the neighbors.
func (v *Vertex) Centroid() r3.Vec {
	if len(v.star) == 0 {
		return v.pos
	}
	var sum r3.Vec
	for i := range v.star {
		sum = r3.Add(sum, v.Nbr(i).pos)
	}
	return r3.Scale(1/float64(len(v.star)), sum)
}

// StarArea returns the total area of the primary star faces.
func (v *Vertex) StarArea() float64 {
	area := 0.
	for _, f := range v.Faces() {
		area += f.Area()
	}
	return area
}

// FrontFacing reports if the eye sees the front side of this vertex.
func (v *Vertex) FrontFacing(eye r3.Vec) bool {
	return r3.Dot(r3.Sub(eye, v.pos), v.Normal()) > 0
}
