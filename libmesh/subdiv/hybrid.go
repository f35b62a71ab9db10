package subdiv

import (
	"math"

	"github.com/fine-structures/fine-mesh/libmesh"
)

// Hybrid uses Loop masks in regions of triangles and Catmull-Clark masks in regions of quads.  Vertices where
// the two meet blend the weights of both, and edges along the boundary between them get a mask of their own.
type Hybrid[T any] struct {
	calc[T]
	loop *Loop[T]
	cc   *CatmullClark[T]
}

func NewHybrid[T any](ops Ops[T], get Getter[T]) *Hybrid[T] {
	return &Hybrid[T]{
		calc: calc[T]{ops, get},
		loop: NewLoop(ops, get),
		cc:   NewCatmullClark(ops, get),
	}
}

func (s *Hybrid[T]) Name() string { return "hybrid" }

// Neighbor weights by the number of quads on the edge leading to them; quad corners weigh least.
const (
	hybridQuadQuad = 6
	hybridCorner   = 1
	hybridQuadTri  = 5
	hybridTriTri   = 4
)

func (s *Hybrid[T]) centroid(v *libmesh.Vertex) T {
	sum, net := s.ops.Zero, 0.0
	add := func(u *libmesh.Vertex, w float64) {
		sum = s.ops.Add(sum, s.ops.Scale(w, s.val(u)))
		net += w
	}
	for _, e := range v.ManifoldEdges() {
		if !e.IsStrong() {
			continue
		}
		switch e.NumQuads() {
		case 1:
			add(e.OtherVertex(v), hybridQuadTri)
		case 2:
			add(e.OtherVertex(v), hybridQuadQuad)
		default:
			add(e.OtherVertex(v), hybridTriTri)
		}
	}
	for _, u := range v.QNbrs() {
		add(u, hybridCorner)
	}
	if net == 0 {
		return s.val(v)
	}
	return s.ops.Scale(1/net, sum)
}

func (s *Hybrid[T]) SubdivVert(v *libmesh.Vertex) T {
	if v.PDegree() < 2 {
		return s.val(v)
	}
	switch sharpDegree(v) {
	case 0, 1:
		quads, tris := v.NumQuads(), v.NumTris()
		if quads == 0 {
			return s.loop.SubdivVert(v)
		}
		if tris == 0 {
			return s.cc.SubdivVert(v)
		}
		n := float64(tris) + 1.5*float64(quads)
		k := 2 * n / 3
		c := 3 + 2*math.Cos(2*math.Pi/n)
		b := 5.0/8 - c*c/64

		loopW := 1 - b
		ccW := 1 - 7/(4*k)
		scaling := float64(tris) / n
		w := loopW*scaling + ccW*(1-scaling)
		return s.interp(s.centroid(v), s.val(v), w)
	case 2:
		return s.loop.creaseVert(v)
	}
	return s.val(v)
}

func (s *Hybrid[T]) SubdivEdge(e *libmesh.Edge) T {
	if libmesh.PolyCreaseFilter.Accept(e) {
		return s.loop.SubdivEdge(e)
	}
	switch e.NumQuads() {
	case 0:
		return s.loop.SubdivEdge(e)
	case 2:
		return s.cc.SubdivEdge(e)
	}

	// one side is a quad, the other a triangle:
	// 3/8 each end, 1/8 the triangle's far corner, 1/16 each end of the quad's far edge
	quad, tri := e.F1(), e.F2()
	if !quad.IsQuad() {
		quad, tri = tri, quad
	}
	e2 := e.OppositeQuadEdge()
	if e2 == nil || tri == nil {
		return s.loop.SubdivEdge(e)
	}
	sum := s.ops.Scale(0.5, s.ops.Add(s.val(e2.V1()), s.val(e2.V2())))
	sum = s.ops.Add(sum, s.ops.Scale(3, s.ops.Add(s.val(e.V1()), s.val(e.V2()))))
	sum = s.ops.Add(sum, s.val(tri.OtherVertexOfEdge(e)))
	return s.ops.Scale(1.0/8, sum)
}

func (s *Hybrid[T]) LimitVert(v *libmesh.Vertex) T {
	return s.loop.LimitVert(v)
}
