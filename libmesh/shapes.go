package libmesh

import (
	"math"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

var cubeQuads = [6][4]int{
	{0, 1, 3, 2},
	{2, 3, 5, 4},
	{4, 5, 7, 6},
	{6, 7, 1, 0},
	{6, 0, 2, 4},
	{5, 3, 1, 7},
}

// NewCube returns the cube [-1,1]^3 in a single patch.  If quads is set each side is a quad, otherwise each
// side is two plain triangles.
func NewCube(cfg go2mesh.Config, quads bool) *Mesh {
	M := NewMesh(cfg)
	M.SetName("cube")
	M.AddVerts([]r3.Vec{
		{X: -1, Y: -1, Z: -1},
		{X: 1, Y: -1, Z: -1},
		{X: -1, Y: -1, Z: 1},
		{X: 1, Y: -1, Z: 1},
		{X: -1, Y: 1, Z: 1},
		{X: 1, Y: 1, Z: 1},
		{X: -1, Y: 1, Z: -1},
		{X: 1, Y: 1, Z: -1},
	})
	p := M.NewPatch()
	for _, q := range cubeQuads {
		if quads {
			M.AddQuadByIndex(q[0], q[1], q[2], q[3], p)
		} else {
			M.AddFaceByIndex(q[0], q[1], q[2], p)
			M.AddFaceByIndex(q[0], q[2], q[3], p)
		}
	}
	return M
}

// NewGrid returns an nx by ny grid of unit squares in the z=0 plane, facing +z.
func NewGrid(cfg go2mesh.Config, nx, ny int, quads bool) *Mesh {
	M := NewMesh(cfg)
	M.SetName("grid")
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			M.AddVertex(r3.Vec{X: float64(i), Y: float64(j)})
		}
	}
	idx := func(i, j int) int { return j*(nx+1) + i }
	p := M.NewPatch()
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			if quads {
				M.AddQuadByIndex(a, b, c, d, p)
			} else {
				M.AddFaceByIndex(a, b, c, p)
				M.AddFaceByIndex(a, c, d, p)
			}
		}
	}
	return M
}

// NewSphere returns a closed, outward-facing triangulated unit sphere with the given number of stacks (>= 2)
// and slices (>= 3).
func NewSphere(cfg go2mesh.Config, stacks, slices int) *Mesh {
	if stacks < 2 {
		stacks = 2
	}
	if slices < 3 {
		slices = 3
	}
	M := NewMesh(cfg)
	M.SetName("sphere")
	top := M.AddVertex(r3.Vec{Z: 1})
	rings := make([][]*Vertex, stacks-1)
	for i := range rings {
		theta := math.Pi * float64(i+1) / float64(stacks)
		z, s := math.Cos(theta), math.Sin(theta)
		rings[i] = make([]*Vertex, slices)
		for j := range rings[i] {
			phi := 2 * math.Pi * float64(j) / float64(slices)
			rings[i][j] = M.AddVertex(r3.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z})
		}
	}
	bot := M.AddVertex(r3.Vec{Z: -1})

	p := M.NewPatch()
	for j := 0; j < slices; j++ {
		k := (j + 1) % slices
		M.AddFace(top, rings[0][j], rings[0][k], p)
		for i := 0; i+1 < len(rings); i++ {
			a, b, c, d := rings[i][j], rings[i+1][j], rings[i+1][k], rings[i][k]
			M.AddFace(a, b, c, p)
			M.AddFace(a, c, d, p)
		}
		last := rings[len(rings)-1]
		M.AddFace(bot, last[k], last[j], p)
	}
	return M
}
