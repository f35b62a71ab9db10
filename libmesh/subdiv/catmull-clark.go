package subdiv

import (
	"github.com/fine-structures/fine-mesh/libmesh"
)

var strongPolyCrease = libmesh.And(libmesh.StrongFilter, libmesh.PolyCreaseFilter)

// sharpDegree counts v's strong crease, border, and polyline edges among its manifold edges.
func sharpDegree(v *libmesh.Vertex) int {
	n := 0
	for _, e := range v.ManifoldEdges() {
		if strongPolyCrease.Accept(e) {
			n++
		}
	}
	return n
}

// CatmullClark is Catmull-Clark subdivision over quads, each stored as two triangles joined by a weak edge.
type CatmullClark[T any] struct {
	calc[T]
}

func NewCatmullClark[T any](ops Ops[T], get Getter[T]) *CatmullClark[T] {
	return &CatmullClark[T]{calc[T]{ops, get}}
}

func (s *CatmullClark[T]) Name() string { return "catmull-clark" }

// vcentroid averages the neighbors across strong edges.
func (s *CatmullClark[T]) vcentroid(v *libmesh.Vertex) T {
	return s.avg(nbrsAlong(v, libmesh.StrongFilter))
}

// fcentroid averages the corners of f's quad, or of f if it isn't part of one.
func (s *CatmullClark[T]) fcentroid(f *libmesh.Face) T {
	if a, b, c, d := f.QuadVerts(); a != nil {
		return s.avg([]*libmesh.Vertex{a, b, c, d})
	}
	vs := f.Verts()
	return s.avg(vs[:])
}

// smoothCentroid averages the vertex centroid with the mean of the surrounding quad centroids.
func (s *CatmullClark[T]) smoothCentroid(v *libmesh.Vertex) T {
	vc := s.vcentroid(v)
	quads := v.QuadFaces()
	if len(quads) == 0 {
		return vc
	}
	fc := s.ops.Zero
	for _, f := range quads {
		fc = s.ops.Add(fc, s.fcentroid(f))
	}
	fc = s.ops.Scale(1/float64(len(quads)), fc)
	return s.interp(vc, fc, 0.5)
}

func (s *CatmullClark[T]) creaseCentroid(v *libmesh.Vertex) T {
	return s.avg(nbrsAlong(v, strongPolyCrease))
}

func (s *CatmullClark[T]) smoothVert(v *libmesh.Vertex) T {
	n := float64(v.DegreeOf(libmesh.StrongFilter))
	if !v.IsManifold() {
		n = float64(len(nbrsAlong(v, libmesh.StrongFilter)))
	}
	return s.interp(s.smoothCentroid(v), s.val(v), (n-2)/n)
}

func (s *CatmullClark[T]) creaseVert(v *libmesh.Vertex) T {
	return s.interp(s.creaseCentroid(v), s.val(v), 0.75)
}

func (s *CatmullClark[T]) SubdivVert(v *libmesh.Vertex) T {
	if v.PDegree() < 2 {
		return s.val(v)
	}
	switch sharpDegree(v) {
	case 0, 1:
		return s.smoothVert(v)
	case 2:
		return s.creaseVert(v)
	}
	return s.val(v)
}

func (s *CatmullClark[T]) SubdivEdge(e *libmesh.Edge) T {
	if libmesh.PolyCreaseFilter.Accept(e) {
		return s.midpoint(e)
	}
	if e.IsWeak() {
		return s.fcentroid(e.Face())
	}
	f1, f2 := e.F1(), e.F2()
	if f1 == nil || f2 == nil {
		return s.midpoint(e)
	}
	sum := s.ops.Add(s.val(e.V1()), s.val(e.V2()))
	sum = s.ops.Add(sum, s.fcentroid(f1))
	sum = s.ops.Add(sum, s.fcentroid(f2))
	return s.ops.Scale(0.25, sum)
}

// LimitVert uses the limit masks for bicubic B-splines, extended to any valence:
// (n*n*v + 4*sum(edge nbrs) + sum(quad corners)) / (n*(n+5)) at smooth vertices and the cubic B-spline limit
// (a + 4v + b) / 6 along creases.
func (s *CatmullClark[T]) LimitVert(v *libmesh.Vertex) T {
	if v.PDegree() < 2 {
		return s.val(v)
	}
	switch sharpDegree(v) {
	case 0, 1:
		nbrs := nbrsAlong(v, libmesh.StrongFilter)
		corners := v.QNbrs()
		n := float64(len(nbrs))
		sum := s.ops.Scale(n*n, s.val(v))
		for _, u := range nbrs {
			sum = s.ops.Add(sum, s.ops.Scale(4, s.val(u)))
		}
		for _, u := range corners {
			sum = s.ops.Add(sum, s.val(u))
		}
		return s.ops.Scale(1/(n*n+4*n+float64(len(corners))), sum)
	case 2:
		return s.interp(s.creaseCentroid(v), s.val(v), 2.0/3)
	}
	return s.val(v)
}
