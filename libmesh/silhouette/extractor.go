package silhouette

import (
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// lastPass hands out extraction passes.  Passes are unique across extractors so one extractor's stamps are
// never mistaken for another's.
var lastPass uint64

func nextPass() uint64 { return atomic.AddUint64(&lastPass, 1) }

// Mode says how the last extraction was done.
type Mode int

const (
	NotExtracted Mode = iota
	Exact
	Randomized
	Frozen
)

func (m Mode) String() string {
	switch m {
	case Exact:
		return "exact"
	case Randomized:
		return "randomized"
	case Frozen:
		return "frozen"
	}
	return "none"
}

// Stats describes the most recent extraction.
type Stats struct {
	Mode    Mode
	Stamp   uint64 // view stamp extracted for
	Checked int    // seeds examined
	Found   int    // edges or segments produced
}

// Extractor finds the silhouette of one mesh, incrementally from frame to frame.
//
// An Extractor observes its mesh: structural changes discard the previous frame's silhouette so the next
// extraction is exact.
type Extractor struct {
	mesh   *libmesh.Mesh
	cfg    go2mesh.Config
	rng    *rand.Rand
	frozen bool
	pass   uint64 // stamps the edges and faces visited by the current extraction

	eye r3.Vec

	sils      *libmesh.EdgeStrip
	silStamp  uint64
	silValid  bool
	silStats  Stats
	patchSils map[*libmesh.Patch]*libmesh.EdgeStrip

	zx      []ZXSeg
	zxStamp uint64
	zxValid bool
	zxStats Stats
	patchZx map[*libmesh.Patch][]ZXSeg
}

// NewExtractor returns an extractor for M using M's config, registered as an observer of M.
func NewExtractor(M *libmesh.Mesh) *Extractor {
	x := &Extractor{
		mesh:      M,
		cfg:       *M.Config(),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		sils:      libmesh.NewEdgeStrip(),
		patchSils: make(map[*libmesh.Patch]*libmesh.EdgeStrip),
		patchZx:   make(map[*libmesh.Patch][]ZXSeg),
	}
	M.AddObserver(x)
	return x
}

// Detach stops observing the mesh.
func (x *Extractor) Detach() {
	if x.mesh != nil {
		x.mesh.RemoveObserver(x)
		x.mesh = nil
	}
}

func (x *Extractor) Mesh() *libmesh.Mesh     { return x.mesh }
func (x *Extractor) Config() *go2mesh.Config { return &x.cfg }

// Seed makes the randomized sampling repeatable.
func (x *Extractor) Seed(seed int64) {
	x.rng = rand.New(rand.NewSource(seed))
}

// Freeze stops (or resumes) silhouette updates; while frozen the last results are returned as-is.
func (x *Extractor) Freeze(freeze bool) { x.frozen = freeze }
func (x *Extractor) IsFrozen() bool     { return x.frozen }

func (x *Extractor) SilStats() Stats { return x.silStats }
func (x *Extractor) ZxStats() Stats  { return x.zxStats }

// MeshChanged implements libmesh.MeshObserver.
func (x *Extractor) MeshChanged(M *libmesh.Mesh, kind go2mesh.ChangeKind) {
	switch kind {
	case go2mesh.TopologyChanged, go2mesh.TriangulationChanged, go2mesh.PatchesChanged:
		// old results may refer to removed simplices
		x.sils.Reset()
		x.zx = x.zx[:0]
		x.silStamp, x.zxStamp = 0, 0
		x.silValid, x.zxValid = false, false
		x.resetPatches()
	case go2mesh.VertPositionsChanged, go2mesh.CreasesChanged:
		x.silValid, x.zxValid = false, false
	}
}

func (x *Extractor) resetPatches() {
	for p := range x.patchSils {
		delete(x.patchSils, p)
	}
	for p := range x.patchZx {
		delete(x.patchZx, p)
	}
}

// randomSample returns int(2*sqrt(n)) uniformly chosen indices in [0, n).
func (x *Extractor) randomSample(n int, visit func(i int)) int {
	k := int(2 * math.Sqrt(float64(n)))
	for i := 0; i < k; i++ {
		visit(x.rng.Intn(n))
	}
	return k
}

// SilStrip returns the silhouette edges of the mesh as seen from view, as connected runs.
//
// The first extraction, and any extraction after a structural change or a skipped frame, checks every edge.
// Otherwise, on a large enough mesh, only crease and border edges, last frame's silhouette, and a random sample
// of about 2*sqrt(n) edges seed the search, which finds the whole silhouette with high probability when it
// changes little between frames.
func (x *Extractor) SilStrip(view go2mesh.View) *libmesh.EdgeStrip {
	M := x.mesh
	stamp := view.Stamp()
	if M == nil || x.frozen {
		x.silStats.Mode = Frozen
		return x.sils
	}
	if x.silValid && x.silStamp == stamp {
		return x.sils
	}

	var old []*libmesh.Edge
	for _, e := range x.sils.Edges() {
		if e.Mesh() == M {
			old = append(old, e)
		}
	}
	x.sils.Reset()
	x.eye = view.Eye()
	x.pass = nextPass()
	filter := libmesh.NewSilFilter(x.eye, x.pass, !x.cfg.ShowSecondaryFaces)

	edges := M.Edges()
	stats := Stats{Stamp: stamp}
	if !x.cfg.RandomSils ||
		len(edges) < x.cfg.RandomizedMinEdges ||
		x.silStamp+1 != stamp ||
		len(old) == 0 {
		stats.Mode = Exact
		for _, e := range edges {
			x.sils.BuildFrom(nil, e, filter)
		}
		stats.Checked = len(edges)
	} else {
		stats.Mode = Randomized
		seed := func(e *libmesh.Edge) {
			stats.Checked++
			x.sils.BuildFrom(nil, e, filter)
		}
		for _, e := range M.Creases().Edges() {
			seed(e)
		}
		for _, e := range M.Borders().Edges() {
			seed(e)
		}
		for _, e := range old {
			seed(e)
		}
		stats.Checked += x.randomSample(len(edges), func(i int) {
			x.sils.BuildFrom(nil, edges[i], filter)
		})
	}
	stats.Found = x.sils.Len()
	x.silStats = stats

	x.distributeSils()
	x.silStamp = stamp
	x.silValid = true

	if x.cfg.DebugSils {
		klog.Infof("Extractor.SilStrip: %q frame %d: %v, checked %d, found %d", M.Name(), stamp, stats.Mode, stats.Checked, stats.Found)
	}
	return x.sils
}

// distributeSils hands each silhouette edge to the patch of its front-facing face (or its only face).
func (x *Extractor) distributeSils() {
	for _, strip := range x.patchSils {
		strip.Reset()
	}
	for k := 0; k < x.sils.Len(); k++ {
		e := x.sils.Edge(k)
		f := e.FrontFacingFace(x.eye)
		if f == nil {
			f = e.Face()
		}
		if f == nil || f.Patch() == nil {
			continue
		}
		strip := x.patchSils[f.Patch()]
		if strip == nil {
			strip = libmesh.NewEdgeStrip()
			x.patchSils[f.Patch()] = strip
		}
		strip.Add(x.sils.Vert(k), e)
	}
}

// PatchSils returns the part of the last silhouette belonging to p.
func (x *Extractor) PatchSils(p *libmesh.Patch) *libmesh.EdgeStrip {
	if strip := x.patchSils[p]; strip != nil {
		return strip
	}
	return libmesh.NewEdgeStrip()
}
