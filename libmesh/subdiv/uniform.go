package subdiv

import (
	"github.com/fine-structures/fine-mesh/libmesh"
)

// Uniform interpolates: old vertices keep their values and new edge vertices take the midpoint.
// The new vertex on a weak edge (the diagonal of a quad) goes to the quad's center.
type Uniform[T any] struct {
	calc[T]
}

func NewUniform[T any](ops Ops[T], get Getter[T]) *Uniform[T] {
	return &Uniform[T]{calc[T]{ops, get}}
}

func (s *Uniform[T]) Name() string { return "uniform" }

func (s *Uniform[T]) SubdivVert(v *libmesh.Vertex) T { return s.val(v) }

func (s *Uniform[T]) LimitVert(v *libmesh.Vertex) T { return s.val(v) }

func (s *Uniform[T]) SubdivEdge(e *libmesh.Edge) T {
	if e.IsWeak() {
		if f := e.Face(); f != nil {
			if a, b, c, d := f.QuadVerts(); a != nil {
				return s.avg([]*libmesh.Vertex{a, b, c, d})
			}
		}
	}
	return s.midpoint(e)
}
