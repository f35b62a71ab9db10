package subdiv

import (
	"math"

	"github.com/fine-structures/fine-mesh/libmesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Loop is Loop subdivision with the crease, dart, and corner rules of Hoppe et al. (1994).
type Loop[T any] struct {
	calc[T]
}

func NewLoop[T any](ops Ops[T], get Getter[T]) *Loop[T] {
	return &Loop[T]{calc[T]{ops, get}}
}

func (s *Loop[T]) Name() string { return "loop" }

// centroid returns the average of the neighbors that the vertex rule for mask uses.
func (s *Loop[T]) centroid(v *libmesh.Vertex, mask VertMask) T {
	switch {
	case mask == SmoothVert || mask == DartVert:
		return s.avg(v.PNbrs())
	case mask.IsCrease():
		return s.avg(nbrsAlong(v, libmesh.PolyCreaseFilter))
	}
	return s.val(v)
}

func (s *Loop[T]) SubdivVert(v *libmesh.Vertex) T {
	mask := VertMaskOf(v)
	switch {
	case mask == SmoothVert || mask == DartVert:
		n := float64(v.PDegree())
		a := LoopAlpha(v.PDegree())
		return s.interp(s.centroid(v, mask), s.val(v), a/(a+n))
	case mask.IsCrease():
		return s.creaseVert(v)
	}
	return s.val(v)
}

// creaseVert is the crease rule: 3/4 of the vertex and 1/8 of each crease neighbor.
func (s *Loop[T]) creaseVert(v *libmesh.Vertex) T {
	return s.interp(s.avg(nbrsAlong(v, libmesh.PolyCreaseFilter)), s.val(v), 0.75)
}

func (s *Loop[T]) SubdivEdge(e *libmesh.Edge) T {
	if EdgeMaskOf(e) == RegularCreaseEdge {
		return s.midpoint(e)
	}
	a, b := e.OppositeVert1(), e.OppositeVert2()
	if a == nil || b == nil {
		return s.midpoint(e)
	}
	ends := s.ops.Add(s.val(e.V1()), s.val(e.V2()))
	opps := s.ops.Add(s.val(a), s.val(b))
	return s.ops.Add(s.ops.Scale(3.0/8, ends), s.ops.Scale(1.0/8, opps))
}

func (s *Loop[T]) LimitVert(v *libmesh.Vertex) T {
	mask := VertMaskOf(v)
	switch {
	case mask == SmoothVert || mask == DartVert:
		n := float64(v.PDegree())
		b := loopBeta(n)
		o := 3 * n / (8 * b)
		return s.interp(s.centroid(v, mask), s.val(v), o/(o+n))
	case mask.IsCrease():
		return s.interp(s.centroid(v, mask), s.val(v), 2.0/3)
	}
	return s.val(v)
}

// LimitNormal returns the normal at v of the Loop limit surface of v's mesh, computed from the two limit
// tangent masks over v's counterclockwise neighbors.  Returns the zero vector if v has no faces, and v's fan
// normal if its star isn't a single fan or ring.
func LimitNormal(v *libmesh.Vertex) r3.Vec {
	if v.Face() == nil {
		return r3.Vec{}
	}
	nbrs := v.CCWNbrs()
	n := len(nbrs)
	if n < 2 {
		return v.Normal()
	}
	p := v.Loc()

	var t1, t2 r3.Vec
	switch v.DegreeOf(libmesh.BorderFilter) {
	case 0:
		for k, u := range nbrs {
			a := 2 * math.Pi * float64(k) / float64(n)
			t1 = r3.Add(t1, r3.Scale(math.Cos(a), u.Loc()))
			t2 = r3.Add(t2, r3.Scale(math.Sin(a), u.Loc()))
		}
	case 2:
		front, back := nbrs[0].Loc(), nbrs[n-1].Loc()
		t1 = r3.Sub(front, back)
		switch n {
		case 2:
			t2 = r3.Sub(r3.Add(front, back), r3.Scale(2, p))
		case 3:
			t2 = r3.Sub(nbrs[1].Loc(), p)
		case 4:
			t2 = r3.Scale(-2, p)
			t2 = r3.Sub(t2, nbrs[0].Loc())
			t2 = r3.Add(t2, r3.Scale(2, nbrs[1].Loc()))
			t2 = r3.Add(t2, r3.Scale(2, nbrs[2].Loc()))
			t2 = r3.Sub(t2, nbrs[3].Loc())
		default:
			theta := math.Pi / float64(n-1)
			c := 2 - 2*math.Cos(theta)
			t2 = r3.Scale(-math.Sin(theta), r3.Add(front, back))
			for i := 1; i < n-1; i++ {
				t2 = r3.Add(t2, r3.Scale(c*math.Sin(float64(i)*theta), nbrs[i].Loc()))
			}
		}
	default:
		return v.Normal()
	}

	norm := r3.Cross(t1, t2)
	if r3.Norm(norm) == 0 {
		return v.Normal()
	}
	return r3.Unit(norm)
}
