package subdiv

import (
	"math"

	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/plan-systems/klog"
)

// VertMask classifies how a vertex is treated by crease-aware subdivision.
type VertMask uint8

const (
	SmoothVert VertMask = iota
	DartVert
	RegularCreaseVert
	NonRegularCreaseVert
	CornerVert
)

var vertMaskNames = []string{
	"smooth",
	"dart",
	"regular crease",
	"non-regular crease",
	"corner",
}

func (m VertMask) String() string {
	if int(m) < len(vertMaskNames) {
		return vertMaskNames[m]
	}
	return "unknown"
}

// IsCrease reports if the mask selects the crease rule.
func (m VertMask) IsCrease() bool {
	return m == RegularCreaseVert || m == NonRegularCreaseVert
}

// EdgeMask classifies how an edge is treated by crease-aware subdivision.
type EdgeMask uint8

const (
	RegularSmoothEdge EdgeMask = iota
	RegularCreaseEdge
)

func (m EdgeMask) String() string {
	if m == RegularCreaseEdge {
		return "regular crease"
	}
	return "regular smooth"
}

// VertMaskOf classifies v from its manifold edges.
//
// Explicit corners and vertices with fewer than two edges are corners.  On a polyline, a vertex with exactly two
// polyline edges is a crease vertex and any other is a corner.  Otherwise the crease and border edges are
// counted: none is smooth, one is a dart, two is a crease, more is a corner.  A crease vertex is regular when its
// degree matches the regular crease stencil (4 on a border, 6 inside).
func VertMaskOf(v *libmesh.Vertex) VertMask {
	edges := v.ManifoldEdges()
	if v.IsCorner() || len(edges) < 2 {
		return CornerVert
	}

	s := 0
	for _, e := range edges {
		if e.IsPolyline() {
			s++
		}
	}
	if s > 0 {
		if s == 2 {
			return RegularCreaseVert
		}
		return CornerVert
	}

	border := false
	for _, e := range edges {
		if e.IsCrease() || e.IsBorder() {
			s++
			border = border || e.IsBorder()
		}
	}
	switch s {
	case 0:
		return SmoothVert
	case 1:
		return DartVert
	case 2:
		n := len(edges)
		if (border && n == 4) || (!border && n == 6) {
			return RegularCreaseVert
		}
		return NonRegularCreaseVert
	}
	return CornerVert
}

// EdgeMaskOf classifies e: crease, border, and polyline edges are crease edges.
func EdgeMaskOf(e *libmesh.Edge) EdgeMask {
	if libmesh.PolyCreaseFilter.Accept(e) {
		return RegularCreaseEdge
	}
	return RegularSmoothEdge
}

var loopAlphaTable = [32]float64{
	1.000000, 1.000000, 1.282051, 2.333333, 4.258065, 6.891565, 10.000000, 13.397789,
	16.957691, 20.598919, 24.272687, 27.950704, 31.617293, 35.264345, 38.888210, 42.487807,
	46.063495, 49.616397, 53.148004, 56.659946, 60.153856, 63.631303, 67.093752, 70.542553,
	73.978934, 77.404006, 80.818773, 84.224136, 87.620905, 91.009809, 94.391503, 97.766576,
}

// loopBeta is Loop's weight given to the neighbors of a degree-n smooth vertex.
func loopBeta(n float64) float64 {
	c := 3 + 2*math.Cos(2*math.Pi/n)
	return 5.0/8 - c*c/64
}

// LoopAlpha returns the weight Loop subdivision gives a smooth vertex of degree n, relative to a weight of 1
// for each neighbor.
func LoopAlpha(n int) float64 {
	if n < 2 {
		klog.Errorf("subdiv.LoopAlpha: bad degree %d", n)
		return 1
	}
	if n < len(loopAlphaTable) {
		return loopAlphaTable[n]
	}
	b := loopBeta(float64(n))
	return float64(n) * (1 - b) / b
}
