package libmesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// FilterFunc adapts an ordinary func to a SimplexFilter.
type FilterFunc func(s Simplex) bool

func (fn FilterFunc) Accept(s Simplex) bool { return fn(s) }

// EdgeFilterFunc rejects anything that isn't an *Edge.
type EdgeFilterFunc func(e *Edge) bool

func (fn EdgeFilterFunc) Accept(s Simplex) bool {
	e, ok := s.(*Edge)
	return ok && e != nil && fn(e)
}

// FaceFilterFunc rejects anything that isn't a *Face.
type FaceFilterFunc func(f *Face) bool

func (fn FaceFilterFunc) Accept(s Simplex) bool {
	f, ok := s.(*Face)
	return ok && f != nil && fn(f)
}

var (
	CreaseFilter        = EdgeFilterFunc((*Edge).IsCrease)
	BorderFilter        = EdgeFilterFunc((*Edge).IsBorder)
	PolylineFilter      = EdgeFilterFunc((*Edge).IsPolyline)
	WeakFilter          = EdgeFilterFunc((*Edge).IsWeak)
	StrongFilter        = EdgeFilterFunc((*Edge).IsStrong)
	MultiFilter         = EdgeFilterFunc((*Edge).IsMulti)
	InteriorFilter      = EdgeFilterFunc((*Edge).IsInterior)
	PatchBoundaryFilter = EdgeFilterFunc((*Edge).IsPatchBoundary)
	PrimaryEdgeFilter   = EdgeFilterFunc((*Edge).IsPrimary)
	SecondaryEdgeFilter = EdgeFilterFunc((*Edge).IsSecondary)
	StressedFilter      = EdgeFilterFunc((*Edge).IsStressed)

	// PolyCreaseFilter accepts crease, border, and polyline edges: the edges subdivision treats as sharp.
	PolyCreaseFilter = EdgeFilterFunc(func(e *Edge) bool {
		return e.IsCrease() || e.IsBorder() || e.IsPolyline()
	})

	PrimaryFaceFilter   = FaceFilterFunc((*Face).IsPrimary)
	SecondaryFaceFilter = FaceFilterFunc((*Face).IsSecondary)
	QuadFilter          = FaceFilterFunc((*Face).IsQuad)

	// ReachedFilter accepts simplices with a non-zero flag.
	ReachedFilter = FilterFunc(func(s Simplex) bool { return s.Flag() != 0 })

	// UnreachedFilter accepts simplices with a zero flag, setting the flag so each is accepted only once.
	UnreachedFilter = FilterFunc(func(s Simplex) bool {
		if s.Flag() != 0 {
			return false
		}
		s.SetFlag(1)
		return true
	})
)

// SilFilter accepts silhouette edges as seen from the given eye point.
func SilFilter(eye r3.Vec) SimplexFilter {
	return EdgeFilterFunc(func(e *Edge) bool { return e.IsSil(eye) })
}

// NewSilFilter accepts silhouette edges whose silhouette stamp differs from the given one.
// Every edge it examines is stamped, so each edge is accepted at most once per stamp.
func NewSilFilter(eye r3.Vec, stamp uint64, skipSecondary bool) SimplexFilter {
	return EdgeFilterFunc(func(e *Edge) bool {
		if e.silStamp == stamp {
			return false
		}
		e.silStamp = stamp
		return e.IsSil(eye) && !(skipSecondary && e.IsSecondary())
	})
}

// FaceInPatchFilter accepts faces belonging to the given patch.
func FaceInPatchFilter(p *Patch) SimplexFilter {
	return FaceFilterFunc(func(f *Face) bool { return f.patch == p })
}

// ChainTipFilter accepts edges that begin or end a chain of edges accepted by the given filter.
func ChainTipFilter(filter SimplexFilter) SimplexFilter {
	return EdgeFilterFunc(func(e *Edge) bool { return e.IsChainTip(filter) })
}

// BoundaryFilter accepts edges with exactly one primary face accepted by the given face filter.
func BoundaryFilter(faceFilter SimplexFilter) SimplexFilter {
	return EdgeFilterFunc(func(e *Edge) bool {
		n := 0
		if f := e.F1(); f != nil && faceFilter.Accept(f) {
			n++
		}
		if f := e.F2(); f != nil && faceFilter.Accept(f) {
			n++
		}
		return n == 1
	})
}

// And accepts what all the given filters accept, evaluating them in order and stopping at the first rejection.
func And(filters ...SimplexFilter) SimplexFilter {
	return FilterFunc(func(s Simplex) bool {
		for _, f := range filters {
			if !f.Accept(s) {
				return false
			}
		}
		return true
	})
}

// Or accepts what any of the given filters accept.
func Or(filters ...SimplexFilter) SimplexFilter {
	return FilterFunc(func(s Simplex) bool {
		for _, f := range filters {
			if f.Accept(s) {
				return true
			}
		}
		return false
	})
}

func Not(filter SimplexFilter) SimplexFilter {
	return FilterFunc(func(s Simplex) bool { return !filter.Accept(s) })
}
