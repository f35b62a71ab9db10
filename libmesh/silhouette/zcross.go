package silhouette

import (
	"math"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// ZXSeg is one point of a zero-crossing silhouette path.
//
// Face is the face the path runs through from P to the next point.  A nil Face ends a chain; a closed chain ends
// with a copy of its first point.
type ZXSeg struct {
	Face *libmesh.Face
	P    r3.Vec
	Grad bool // the view-dependent scalar increases toward the eye across this segment
}

// ZXChains splits a path into its chains of points.
func ZXChains(segs []ZXSeg) [][]r3.Vec {
	var chains [][]r3.Vec
	var cur []r3.Vec
	for _, s := range segs {
		cur = append(cur, s.P)
		if s.Face == nil {
			chains = append(chains, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		chains = append(chains, cur)
	}
	return chains
}

// g is the view-dependent scalar at v as seen from f: the cosine between the view vector and the normal at v.
// It is never exactly zero so every crossing is strict.
func (x *Extractor) g(f *libmesh.Face, v *libmesh.Vertex) float64 {
	val := r3.Dot(r3.Unit(r3.Sub(x.eye, v.Loc())), f.VertNormal(v))
	if val == 0 || math.IsNaN(val) {
		val = -1e-8
	}
	return val
}

func (x *Extractor) faceG(f *libmesh.Face) (g [3]float64) {
	for i := 0; i < 3; i++ {
		g[i] = x.g(f, f.V(i))
	}
	return g
}

// crossings returns the face slots of the two edges where g changes sign, if any.
// Edge slot i joins vertex slots i and i+1.
func crossings(g [3]float64) (a, b int, ok bool) {
	n := 0
	var slots [3]int
	for i := 0; i < 3; i++ {
		if (g[i] > 0) != (g[(i+1)%3] > 0) {
			slots[n] = i
			n++
		}
	}
	if n != 2 {
		return 0, 0, false
	}
	return slots[0], slots[1], true
}

// crossPoint returns where g vanishes along e, interpolating in the edge's own vertex order so both faces of a
// smooth edge agree on the point.
func (x *Extractor) crossPoint(f *libmesh.Face, e *libmesh.Edge) r3.Vec {
	a, b := e.V1(), e.V2()
	ga, gb := x.g(f, a), x.g(f, b)
	t := ga / (ga - gb)
	return r3.Add(a.Loc(), r3.Scale(t, r3.Sub(b.Loc(), a.Loc())))
}

// gradDir returns the direction in f's plane, perpendicular to the segment p->q, in which g increases.
func gradDir(f *libmesh.Face, g [3]float64, p, q r3.Vec) r3.Vec {
	gmax := 0
	for i := 1; i < 3; i++ {
		if g[i] > g[gmax] {
			gmax = i
		}
	}
	d := r3.Sub(f.V(gmax).Loc(), p)
	iso := r3.Sub(q, p)
	if l2 := r3.Dot(iso, iso); l2 > 0 {
		d = r3.Sub(d, r3.Scale(r3.Dot(d, iso)/l2, iso))
	}
	return d
}

func (x *Extractor) seg(f *libmesh.Face, g [3]float64, p, q r3.Vec) ZXSeg {
	grad := gradDir(f, g, p, q)
	return ZXSeg{
		Face: f,
		P:    p,
		Grad: r3.Dot(r3.Sub(x.eye, p), grad) > 0,
	}
}

func (x *Extractor) visited(f *libmesh.Face) bool { return f.ZxStamp() == x.pass }

// hasSil marks f visited and reports if a zero crossing passes through it.  A face already visited this pass
// reports false.
func (x *Extractor) hasSil(f *libmesh.Face) bool {
	if f == nil || x.visited(f) {
		return false
	}
	f.SetZxStamp(x.pass)
	if f.IsSecondary() && !x.cfg.ShowSecondaryFaces {
		return false
	}
	_, _, ok := crossings(x.faceG(f))
	return ok
}

// across returns the face a path may continue into from f over e, or nil at a crease, border, or
// non-manifold edge.
func (x *Extractor) across(f *libmesh.Face, e *libmesh.Edge) *libmesh.Face {
	if e.IsCrease() || e.IsBorder() || e.IsMulti() {
		return nil
	}
	return e.OtherFace(f)
}

// exitEdge returns the crossing edge of f other than entry, or nil if entry isn't a crossing edge of f.
func exitEdge(f *libmesh.Face, g [3]float64, entry *libmesh.Edge) *libmesh.Edge {
	a, b, ok := crossings(g)
	if !ok {
		return nil
	}
	switch entry {
	case f.E(a):
		return f.E(b)
	case f.E(b):
		return f.E(a)
	}
	return nil
}

// startSil traces the zero-crossing path through f, if f has one and hasn't been visited.
//
// Paths are oriented so the region where g > 0 (facing the eye) lies to the left, looking down on the surface.
// A path is followed forward until it closes or stops at a crease or border; if it stops, the part behind f is
// traced too and put in front.
func (x *Extractor) startSil(f *libmesh.Face) {
	if !x.hasSil(f) {
		return
	}
	g := x.faceG(f)
	a, b, _ := crossings(g)
	entry, exit := f.E(a), f.E(b)
	p, q := x.crossPoint(f, entry), x.crossPoint(f, exit)
	if r3.Dot(r3.Cross(r3.Sub(q, p), gradDir(f, g, p, q)), f.Norm()) < 0 {
		entry, exit = exit, entry
		p, q = q, p
	}

	start := len(x.zx)
	x.zx = append(x.zx, x.seg(f, g, p, q))

	// forward
	cur, e, pt := f, exit, q
	for {
		next := x.across(cur, e)
		if next == f {
			x.zx = append(x.zx, ZXSeg{P: x.zx[start].P})
			return
		}
		if next == nil || x.visited(next) {
			x.zx = append(x.zx, ZXSeg{P: pt})
			break
		}
		next.SetZxStamp(x.pass)
		ng := x.faceG(next)
		out := exitEdge(next, ng, e)
		if out == nil {
			x.zx = append(x.zx, ZXSeg{P: pt})
			break
		}
		npt := x.crossPoint(next, out)
		x.zx = append(x.zx, x.seg(next, ng, pt, npt))
		cur, e, pt = next, out, npt
	}

	// backward, collected in reverse
	stack := arraystack.New()
	cur, e, pt = f, entry, p
	for {
		prev := x.across(cur, e)
		if prev == nil || x.visited(prev) {
			break
		}
		prev.SetZxStamp(x.pass)
		pg := x.faceG(prev)
		out := exitEdge(prev, pg, e)
		if out == nil {
			break
		}
		ppt := x.crossPoint(prev, out)
		stack.Push(x.seg(prev, pg, ppt, pt))
		cur, e, pt = prev, out, ppt
	}
	if stack.Empty() {
		return
	}
	chain := make([]ZXSeg, 0, stack.Size()+len(x.zx)-start)
	for !stack.Empty() {
		top, _ := stack.Pop()
		chain = append(chain, top.(ZXSeg))
	}
	chain = append(chain, x.zx[start:]...)
	x.zx = append(x.zx[:start], chain...)
}

// ZcrossStrip returns the zero-crossing silhouette paths of the mesh as seen from view.
//
// Unlike SilStrip, whose silhouettes run along mesh edges, these paths cross faces where the interpolated cosine
// between the view vector and the vertex normals vanishes, giving smooth silhouettes of the surface the mesh
// approximates.  The exact / randomized choice follows SilStrip, using face counts.
func (x *Extractor) ZcrossStrip(view go2mesh.View) []ZXSeg {
	M := x.mesh
	stamp := view.Stamp()
	if M == nil || x.frozen {
		x.zxStats.Mode = Frozen
		return x.zx
	}
	if x.zxValid && x.zxStamp == stamp {
		return x.zx
	}

	var old []*libmesh.Face
	for _, s := range x.zx {
		if s.Face != nil && s.Face.Mesh() == M {
			old = append(old, s.Face)
		}
	}
	x.zx = x.zx[:0]
	x.eye = view.Eye()
	x.pass = nextPass()

	faces := M.Faces()
	stats := Stats{Stamp: stamp}
	if !x.cfg.RandomSils ||
		len(faces) < x.cfg.RandomizedMinFaces ||
		x.zxStamp+1 != stamp ||
		len(old) == 0 {
		stats.Mode = Exact
		for _, f := range faces {
			x.startSil(f)
		}
		stats.Checked = len(faces)
	} else {
		stats.Mode = Randomized
		seedEdges := func(edges []*libmesh.Edge) {
			for _, e := range edges {
				stats.Checked += 2
				x.startSil(e.F1())
				x.startSil(e.F2())
			}
		}
		seedEdges(M.Creases().Edges())
		seedEdges(M.Borders().Edges())
		for _, f := range old {
			stats.Checked++
			x.startSil(f)
		}
		stats.Checked += x.randomSample(len(faces), func(i int) {
			x.startSil(faces[i])
		})
	}
	stats.Found = len(x.zx)
	x.zxStats = stats

	x.distributeZx()
	x.zxStamp = stamp
	x.zxValid = true

	if x.cfg.DebugSils {
		klog.Infof("Extractor.ZcrossStrip: %q frame %d: %v, checked %d, found %d", M.Name(), stamp, stats.Mode, stats.Checked, stats.Found)
	}
	return x.zx
}

// distributeZx splits the paths among the patches of the faces they cross.  Where a path passes from one patch
// into another, the first patch's part is ended at the shared point.
func (x *Extractor) distributeZx() {
	for p := range x.patchZx {
		x.patchZx[p] = x.patchZx[p][:0]
	}
	var last *libmesh.Patch
	for _, s := range x.zx {
		if s.Face == nil {
			if last != nil {
				x.patchZx[last] = append(x.patchZx[last], s)
			}
			last = nil
			continue
		}
		p := s.Face.Patch()
		if last != nil && p != last {
			x.patchZx[last] = append(x.patchZx[last], ZXSeg{P: s.P, Grad: s.Grad})
		}
		if p != nil {
			x.patchZx[p] = append(x.patchZx[p], s)
		}
		last = p
	}
}

// PatchZcross returns the part of the last zero-crossing paths belonging to p.
func (x *Extractor) PatchZcross(p *libmesh.Patch) []ZXSeg {
	return x.patchZx[p]
}
