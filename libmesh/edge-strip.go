package libmesh

import (
	"github.com/emirpasic/gods/stacks/arraystack"
)

// EdgeStrip is a sequence of line strips stored as (vertex, edge) pairs.
//
// Each edge is traversed starting from its paired vertex.  A "break" occurs at i when verts[i] is not the far end
// of edges[i-1], i.e. a new line strip begins there.
type EdgeStrip struct {
	verts []*Vertex
	edges []*Edge
}

func NewEdgeStrip() *EdgeStrip { return &EdgeStrip{} }

func (s *EdgeStrip) Reset() {
	s.verts = s.verts[:0]
	s.edges = s.edges[:0]
}

func (s *EdgeStrip) Empty() bool       { return len(s.edges) == 0 }
func (s *EdgeStrip) Len() int          { return len(s.edges) }
func (s *EdgeStrip) Vert(i int) *Vertex { return s.verts[i] }
func (s *EdgeStrip) Edge(i int) *Edge   { return s.edges[i] }
func (s *EdgeStrip) Verts() []*Vertex  { return s.verts }
func (s *EdgeStrip) Edges() []*Edge    { return s.edges }

// NextVert returns the far end of edge i.
func (s *EdgeStrip) NextVert(i int) *Vertex { return s.edges[i].OtherVertex(s.verts[i]) }

// Add appends edge e, traversed starting from v.
func (s *EdgeStrip) Add(v *Vertex, e *Edge) {
	s.verts = append(s.verts, v)
	s.edges = append(s.edges, e)
}

// Append adds all of other to the end of this strip.
func (s *EdgeStrip) Append(other *EdgeStrip) {
	if other == nil {
		return
	}
	s.verts = append(s.verts, other.verts...)
	s.edges = append(s.edges, other.edges...)
}

// HasBreak reports if a new line strip starts at position i.
func (s *EdgeStrip) HasBreak(i int) bool {
	return i <= 0 || s.NextVert(i-1) != s.verts[i]
}

// NumLineStrips returns the number of connected runs in this strip.
func (s *EdgeStrip) NumLineStrips() int {
	n := 0
	for i := range s.edges {
		if s.HasBreak(i) {
			n++
		}
	}
	return n
}

// Reverse reverses the order of the strip and the direction of each run.
func (s *EdgeStrip) Reverse() {
	n := len(s.edges)
	verts := make([]*Vertex, n)
	edges := make([]*Edge, n)
	for i := 0; i < n; i++ {
		j := n - 1 - i
		verts[i] = s.NextVert(j)
		edges[i] = s.edges[j]
	}
	s.verts, s.edges = verts, edges
}

// GetChains returns the vertex sequence of each line strip.
func (s *EdgeStrip) GetChains() [][]*Vertex {
	var chains [][]*Vertex
	var cur []*Vertex
	for i := range s.edges {
		if s.HasBreak(i) {
			if cur != nil {
				chains = append(chains, cur)
			}
			cur = []*Vertex{s.verts[i]}
		}
		cur = append(cur, s.NextVert(i))
	}
	if cur != nil {
		chains = append(chains, cur)
	}
	return chains
}

// Draw sends each line strip to cb, bracketed by BeginEdges/EndEdges.
func (s *EdgeStrip) Draw(cb StripCB) {
	n := len(s.edges)
	for i := 0; i < n; i++ {
		if s.HasBreak(i) {
			if i > 0 {
				cb.EndEdges(s)
			}
			cb.BeginEdges(s)
		}
		cb.EdgeCB(s.verts[i], s.edges[i])
		if i == n-1 || s.HasBreak(i+1) {
			cb.EdgeCB(s.NextVert(i), s.edges[i])
		}
	}
	if n > 0 {
		cb.EndEdges(s)
	}
}

// nextEdge returns an edge around v accepted by the filter.  If v may have more such edges, v is pushed so it
// can be revisited.
func nextEdge(v *Vertex, stack *arraystack.Stack, filter SimplexFilter) *Edge {
	for i := v.Degree() - 1; i >= 0; i-- {
		if e := v.E(i); filter.Accept(e) {
			if i > 0 {
				stack.Push(v)
			}
			return e
		}
	}
	return nil
}

func (s *EdgeStrip) buildLineStrip(v *Vertex, e *Edge, filter SimplexFilter, stack *arraystack.Stack) {
	for e != nil {
		s.Add(v, e)
		v = e.OtherVertex(v)
		e = nextEdge(v, stack, filter)
	}
}

// BuildFrom adds e (if the filter accepts it) and every edge reachable from it through accepted edges.
// The first run starts at v, or at e.V1() if v is not an endpoint of e.
//
// The filter must accept each edge at most once (e.g. by including UnreachedFilter or NewSilFilter).
func (s *EdgeStrip) BuildFrom(v *Vertex, e *Edge, filter SimplexFilter) {
	if e == nil || !filter.Accept(e) {
		return
	}
	if v == nil || !e.Contains(v) {
		v = e.V1()
	}
	stack := arraystack.New()
	s.buildLineStrip(v, e, filter, stack)
	for !stack.Empty() {
		top, _ := stack.Pop()
		v = top.(*Vertex)
		if e = nextEdge(v, stack, filter); e != nil {
			s.buildLineStrip(v, e, filter, stack)
		}
	}
}

// Build adds the given edges accepted by filter, each once, connecting them into as few runs as it can find.
func (s *EdgeStrip) Build(edges []*Edge, filter SimplexFilter) {
	clearEdgeFlags(edges)
	once := And(filter, UnreachedFilter)
	for _, e := range edges {
		s.BuildFrom(nil, e, once)
	}
}

// BuildWithTips is Build except that runs start at chain tips (vertices where the accepted degree isn't 2)
// where possible, so open chains come out as single runs.
func (s *EdgeStrip) BuildWithTips(edges []*Edge, filter SimplexFilter) {
	clearEdgeFlags(edges)
	tipFilter := ChainTipFilter(filter)
	once := And(filter, UnreachedFilter)
	for _, e := range edges {
		if e.flag != 0 || !tipFilter.Accept(e) {
			continue
		}
		v := e.V1()
		if e.V2().DegreeOf(filter) != 2 {
			v = e.V2()
		}
		s.BuildFrom(v, e, once)
	}
	for _, e := range edges {
		s.BuildFrom(nil, e, once)
	}
}

// BuildCCWBoundaries adds the boundary edges of the faces accepted by faceFilter, each run oriented so the
// enclosed faces lie to its left.
func (s *EdgeStrip) BuildCCWBoundaries(edges []*Edge, faceFilter SimplexFilter) {
	clearEdgeFlags(edges)
	boundary := BoundaryFilter(faceFilter)

	// the inside face of boundary edge e, and the vertex where e leaves v in that face's CCW order
	leads := func(v *Vertex, e *Edge) bool {
		for _, f := range []*Face{e.F1(), e.F2()} {
			if f != nil && faceFilter.Accept(f) {
				return f.EdgeFromVert(v) == e
			}
		}
		return false
	}
	next := func(v *Vertex) *Edge {
		for i := 0; i < v.Degree(); i++ {
			if e := v.E(i); e.flag == 0 && boundary.Accept(e) && leads(v, e) {
				return e
			}
		}
		return nil
	}
	for _, e := range edges {
		if e.flag != 0 || !boundary.Accept(e) {
			continue
		}
		v := e.V1()
		if !leads(v, e) {
			v = e.V2()
		}
		for e != nil {
			e.flag = 1
			s.Add(v, e)
			v = e.OtherVertex(v)
			e = next(v)
		}
	}
}

func clearEdgeFlags(edges []*Edge) {
	for _, e := range edges {
		e.flag = 0
	}
}

// --------------------------------------------------------------------------------------------------------------------

// VertStrip is a list of vertices drawn as points.
type VertStrip struct {
	verts []*Vertex
}

func (s *VertStrip) Reset()            { s.verts = s.verts[:0] }
func (s *VertStrip) Empty() bool       { return len(s.verts) == 0 }
func (s *VertStrip) Len() int          { return len(s.verts) }
func (s *VertStrip) Verts() []*Vertex  { return s.verts }
func (s *VertStrip) Add(v *Vertex)     { s.verts = append(s.verts, v) }

// Build adds the given vertices accepted by filter.
func (s *VertStrip) Build(verts []*Vertex, filter SimplexFilter) {
	for _, v := range verts {
		if filter.Accept(v) {
			s.Add(v)
		}
	}
}

func (s *VertStrip) Draw(cb StripCB) {
	if s.Empty() {
		return
	}
	cb.BeginVerts(s)
	for _, v := range s.verts {
		cb.VertCB(v)
	}
	cb.EndVerts(s)
}

// --------------------------------------------------------------------------------------------------------------------
// cached mesh strips

// Creases returns the crease edges of this mesh as an edge strip, rebuilt after the triangulation or creases
// change.
func (M *Mesh) Creases() *EdgeStrip {
	if M.creases == nil {
		M.creases = NewEdgeStrip()
		M.creases.BuildWithTips(M.edgeList, CreaseFilter)
	}
	return M.creases
}

// Borders returns the border edges of this mesh as an edge strip.
func (M *Mesh) Borders() *EdgeStrip {
	if M.borders == nil {
		M.borders = NewEdgeStrip()
		M.borders.BuildWithTips(M.edgeList, BorderFilter)
	}
	return M.borders
}

// PolylineStrip returns the edges with no faces as an edge strip.
func (M *Mesh) PolylineStrip() *EdgeStrip {
	if M.polylines == nil {
		M.polylines = NewEdgeStrip()
		M.polylines.BuildWithTips(M.edgeList, PolylineFilter)
	}
	return M.polylines
}

// VertStrips returns the isolated vertices of this mesh.
func (M *Mesh) VertStrips() *VertStrip {
	if M.loneVerts == nil {
		M.loneVerts = &VertStrip{}
		M.loneVerts.Build(M.vertList, FilterFunc(func(s Simplex) bool {
			return s.(*Vertex).Degree() == 0
		}))
	}
	return M.loneVerts
}
