package libmesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// unit returns v normalized, or the zero vector if v has zero length.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n == 0 {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

func isNull(v r3.Vec) bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

func midpoint(a, b r3.Vec) r3.Vec {
	return r3.Scale(0.5, r3.Add(a, b))
}

// lerp returns a + t*(b-a).
func lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// acos clamps its argument to [-1,1].
func acos(d float64) float64 {
	if d > 1 {
		d = 1
	} else if d < -1 {
		d = -1
	}
	return math.Acos(d)
}

// angle returns the angle between two vectors in radians.
func angle(a, b r3.Vec) float64 {
	return acos(r3.Dot(unit(a), unit(b)))
}

func distSq(a, b r3.Vec) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

// segmentNearest returns the point on segment ab nearest p.
func segmentNearest(a, b, p r3.Vec) r3.Vec {
	ab := r3.Sub(b, a)
	l2 := r3.Norm2(ab)
	if l2 == 0 {
		return a
	}
	t := r3.Dot(r3.Sub(p, a), ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return r3.Add(a, r3.Scale(t, ab))
}
