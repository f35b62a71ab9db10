package silhouette_test

import (
	"math"
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/fine-structures/fine-mesh/libmesh/silhouette"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func silSet(strip *libmesh.EdgeStrip) map[*libmesh.Edge]bool {
	set := make(map[*libmesh.Edge]bool, strip.Len())
	for _, e := range strip.Edges() {
		set[e] = true
	}
	return set
}

func bruteForce(M *libmesh.Mesh, eye r3.Vec) map[*libmesh.Edge]bool {
	set := map[*libmesh.Edge]bool{}
	for _, e := range M.Edges() {
		if e.IsSil(eye) {
			set[e] = true
		}
	}
	return set
}

// orbit returns a point at distance r from the origin, at the given angle (degrees) around z and height z.
func orbit(r, deg, z float64) r3.Vec {
	a := deg * math.Pi / 180
	return r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
}

func TestCubeSils(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	x := silhouette.NewExtractor(M)
	cam := go2mesh.NewCamera(r3.Vec{X: 10})

	strip := x.SilStrip(cam)
	require.Equal(t, 4, strip.Len())
	require.Equal(t, 1, strip.NumLineStrips())
	for _, e := range strip.Edges() {
		require.True(t, e.IsSil(cam.Eye()))
		require.InDelta(t, 1, e.MidPt().X, 1e-12)
	}
	require.Equal(t, silhouette.Exact, x.SilStats().Mode)
	require.Equal(t, 4, x.SilStats().Found)

	// same frame: cached
	require.Same(t, strip, x.SilStrip(cam))
	require.Equal(t, 4, x.PatchSils(M.Patches()[0]).Len())
}

func TestSilsMatchBruteForce(t *testing.T) {
	M := libmesh.NewSphere(go2mesh.DefaultConfig(), 12, 24)
	x := silhouette.NewExtractor(M)
	cam := go2mesh.NewCamera(orbit(5, 0, 0))
	for _, eye := range []r3.Vec{orbit(5, 10, 1), orbit(3, 77, -2), orbit(8, 200, 0.5), {Z: 4}} {
		cam.MoveTo(eye)
		got := silSet(x.SilStrip(cam))
		require.Equal(t, bruteForce(M, eye), got)
		require.Equal(t, silhouette.Exact, x.SilStats().Mode)
	}
}

func TestRandomizedSilsConverge(t *testing.T) {
	cfg := go2mesh.DefaultConfig()
	cfg.RandomizedMinEdges = 10
	M := libmesh.NewSphere(cfg, 16, 32)
	x := silhouette.NewExtractor(M)
	x.Seed(7)

	cam := go2mesh.NewCamera(orbit(6, 0, 1))
	require.Equal(t, bruteForce(M, cam.Eye()), silSet(x.SilStrip(cam)))
	require.Equal(t, silhouette.Exact, x.SilStats().Mode)

	for deg := 2.0; deg <= 40; deg += 2 {
		cam.MoveTo(orbit(6, deg, 1+deg/20))
		x.SilStrip(cam)
		require.Equal(t, silhouette.Randomized, x.SilStats().Mode)
		require.Less(t, x.SilStats().Checked, M.NumEdges())

		// on a static view, extraction converges to the exact set
		want := bruteForce(M, cam.Eye())
		got := silSet(x.SilStrip(cam))
		for i := 0; i < 20 && len(got) != len(want); i++ {
			cam.Tick()
			got = silSet(x.SilStrip(cam))
		}
		require.Equal(t, want, got, "eye at %v", cam.Eye())
	}

	// skipping a frame forces an exact pass
	cam.Tick()
	cam.Tick()
	x.SilStrip(cam)
	require.Equal(t, silhouette.Exact, x.SilStats().Mode)
}

func TestSilsResetOnTopologyChange(t *testing.T) {
	cfg := go2mesh.DefaultConfig()
	cfg.RandomizedMinEdges = 10
	M := libmesh.NewSphere(cfg, 8, 16)
	x := silhouette.NewExtractor(M)
	cam := go2mesh.NewCamera(orbit(6, 30, 0.3))
	x.SilStrip(cam)

	cam.Tick()
	M.BV(3).SetLoc(r3.Scale(1.01, M.BV(3).Loc()))
	M.Changed(go2mesh.VertPositionsChanged)
	x.SilStrip(cam)
	require.Equal(t, silhouette.Randomized, x.SilStats().Mode)

	cam.Tick()
	require.NotNil(t, M.SplitEdge(M.BE(5), M.BE(5).MidPt()))
	got := silSet(x.SilStrip(cam))
	require.Equal(t, silhouette.Exact, x.SilStats().Mode)
	require.Equal(t, bruteForce(M, cam.Eye()), got)
}

func TestFreeze(t *testing.T) {
	M := libmesh.NewSphere(go2mesh.DefaultConfig(), 8, 16)
	x := silhouette.NewExtractor(M)
	cam := go2mesh.NewCamera(orbit(6, 0, 0))
	before := silSet(x.SilStrip(cam))

	x.Freeze(true)
	require.True(t, x.IsFrozen())
	cam.MoveTo(r3.Vec{Z: 6})
	require.Equal(t, before, silSet(x.SilStrip(cam)))
	require.Equal(t, silhouette.Frozen, x.SilStats().Mode)

	x.Freeze(false)
	require.Equal(t, bruteForce(M, cam.Eye()), silSet(x.SilStrip(cam)))

	x.Detach()
	require.Nil(t, x.Mesh())
}

func TestSilsByPatch(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	top := M.NewPatch()
	for _, f := range M.Faces() {
		if f.Norm().Y > 0.5 {
			top.Add(f)
		}
	}
	x := silhouette.NewExtractor(M)

	// looking down from above and off to the side: +x and +y sides face the eye
	cam := go2mesh.NewCamera(r3.Vec{X: 10, Y: 10})
	strip := x.SilStrip(cam)
	require.Equal(t, 6, strip.Len())

	rest := M.Patches()[0]
	require.Equal(t, 6, x.PatchSils(rest).Len()+x.PatchSils(top).Len())
	require.Equal(t, 3, x.PatchSils(top).Len())
	for _, e := range x.PatchSils(top).Edges() {
		require.Same(t, top, e.FrontFacingFace(cam.Eye()).Patch())
	}
}
