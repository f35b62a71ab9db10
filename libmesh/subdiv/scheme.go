package subdiv

import (
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Scheme computes subdivided values of type T: the refined value at each old vertex, the value at the new
// vertex inserted on each edge, and the limit value at a vertex.
type Scheme[T any] interface {
	Name() string
	SubdivVert(v *libmesh.Vertex) T
	SubdivEdge(e *libmesh.Edge) T
	LimitVert(v *libmesh.Vertex) T
}

// Ops is the arithmetic a scheme needs on the values it subdivides.
type Ops[T any] struct {
	Add   func(a, b T) T
	Scale func(s float64, a T) T
	Zero  T
}

// Interp returns a + w(b - a).
func (ops Ops[T]) Interp(a, b T, w float64) T {
	return ops.Add(ops.Scale(1-w, a), ops.Scale(w, b))
}

// Sum returns the weighted sum of vals.
func (ops Ops[T]) Sum(vals []T, weights ...float64) T {
	sum := ops.Zero
	for i, val := range vals {
		if i < len(weights) {
			val = ops.Scale(weights[i], val)
		}
		sum = ops.Add(sum, val)
	}
	return sum
}

// Getter returns the value a scheme subdivides at a vertex.
type Getter[T any] func(v *libmesh.Vertex) T

var PositionOps = Ops[r3.Vec]{
	Add:   r3.Add,
	Scale: r3.Scale,
}

var ColorOps = Ops[go2mesh.Color]{
	Add: func(a, b go2mesh.Color) go2mesh.Color {
		return go2mesh.Color{R: a.R + b.R, G: a.G + b.G, B: a.B + b.B}
	},
	Scale: func(s float64, a go2mesh.Color) go2mesh.Color {
		return go2mesh.Color{R: s * a.R, G: s * a.G, B: s * a.B}
	},
}

// Positions and Colors read vertex locations and colors.
var (
	Positions Getter[r3.Vec]         = (*libmesh.Vertex).Loc
	Colors    Getter[go2mesh.Color] = (*libmesh.Vertex).Color
)

// calc holds what every scheme shares: how to read values and how to combine them.
type calc[T any] struct {
	ops Ops[T]
	get Getter[T]
}

func (c calc[T]) val(v *libmesh.Vertex) T { return c.get(v) }

func (c calc[T]) interp(a, b T, w float64) T { return c.ops.Interp(a, b, w) }

func (c calc[T]) midpoint(e *libmesh.Edge) T {
	return c.interp(c.val(e.V1()), c.val(e.V2()), 0.5)
}

// avg returns the average value over verts, or the zero value if there are none.
func (c calc[T]) avg(verts []*libmesh.Vertex) T {
	if len(verts) == 0 {
		return c.ops.Zero
	}
	sum := c.ops.Zero
	for _, v := range verts {
		sum = c.ops.Add(sum, c.val(v))
	}
	return c.ops.Scale(1/float64(len(verts)), sum)
}

// nbrsAlong returns the neighbors of v across its manifold edges accepted by filter.
func nbrsAlong(v *libmesh.Vertex, filter libmesh.SimplexFilter) []*libmesh.Vertex {
	var ret []*libmesh.Vertex
	for _, e := range v.ManifoldEdges() {
		if filter.Accept(e) {
			ret = append(ret, e.OtherVertex(v))
		}
	}
	return ret
}

// SubdivideAll applies s to every vertex and edge of M, in index order.
func SubdivideAll[T any](M *libmesh.Mesh, s Scheme[T]) (verts []T, edges []T) {
	verts = make([]T, 0, M.NumVerts())
	for _, v := range M.Verts() {
		verts = append(verts, s.SubdivVert(v))
	}
	edges = make([]T, 0, M.NumEdges())
	for _, e := range M.Edges() {
		edges = append(edges, s.SubdivEdge(e))
	}
	return verts, edges
}

// New returns the named scheme ("uniform", "loop", "catmull-clark", or "hybrid") or nil if unknown.
func New[T any](name string, ops Ops[T], get Getter[T]) Scheme[T] {
	switch name {
	case "uniform", "simple":
		return NewUniform(ops, get)
	case "loop":
		return NewLoop(ops, get)
	case "catmull-clark", "cc":
		return NewCatmullClark(ops, get)
	case "hybrid":
		return NewHybrid(ops, get)
	}
	return nil
}
