package libmesh

import (
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/plan-systems/klog"
)

// Patch is a named group of faces of a Mesh, drawn as a unit.
type Patch struct {
	mesh     *Mesh
	id       PatchID
	name     string
	color    go2mesh.Color
	hasColor bool
	faces    []*Face

	triStrips   []*TriStrip
	stripsDirty bool
	creases     *EdgeStrip
	borders     *EdgeStrip
}

func (p *Patch) Mesh() *Mesh          { return p.mesh }
func (p *Patch) ID() PatchID          { return p.id }
func (p *Patch) Name() string         { return p.name }
func (p *Patch) SetName(name string)  { p.name = name }
func (p *Patch) Color() go2mesh.Color { return p.color }
func (p *Patch) HasColor() bool       { return p.hasColor }
func (p *Patch) NumFaces() int        { return len(p.faces) }

// Faces returns the faces of this patch.  The slice is owned by the patch.
func (p *Patch) Faces() []*Face { return p.faces }

func (p *Patch) SetColor(c go2mesh.Color) {
	p.color, p.hasColor = c, true
	if p.mesh != nil {
		p.mesh.notify(go2mesh.RenderingChanged)
	}
}

func (p *Patch) UnsetColor() {
	p.hasColor = false
}

// Index returns the position of this patch in its mesh's patch list, or -1.
func (p *Patch) Index() int {
	if p.mesh != nil {
		for i, q := range p.mesh.patches {
			if q == p {
				return i
			}
		}
	}
	return -1
}

// Add moves f into this patch, taking it out of its current patch if any.
func (p *Patch) Add(f *Face) {
	if f == nil || f.patch == p {
		return
	}
	if f.mesh != p.mesh {
		klog.Errorf("Patch.Add: %v", go2mesh.ErrForeignSimplex)
		return
	}
	if f.patch != nil {
		f.patch.Remove(f)
	}
	f.pidx = len(p.faces)
	f.patch = p
	p.faces = append(p.faces, f)
	p.triangulationChanged()
}

// Remove takes f out of this patch.
func (p *Patch) Remove(f *Face) {
	if f == nil || f.patch != p {
		klog.Errorf("Patch.Remove: face is nil or not owned by this patch")
		return
	}
	last := p.faces[len(p.faces)-1]
	p.faces[f.pidx] = last
	last.pidx = f.pidx
	p.faces = p.faces[:len(p.faces)-1]
	f.pidx = -1
	f.patch = nil
	p.triangulationChanged()
}

// Verts returns the vertices of the faces of this patch.
func (p *Patch) Verts() []*Vertex {
	if p.mesh != nil && len(p.faces) == p.mesh.NumFaces() && !p.mesh.Type().IsPoints() {
		return p.mesh.vertList
	}
	seen := make(map[VertID]struct{}, len(p.faces))
	var verts []*Vertex
	for _, f := range p.faces {
		for _, v := range f.Verts() {
			if _, dup := seen[v.id]; !dup {
				seen[v.id] = struct{}{}
				verts = append(verts, v)
			}
		}
	}
	return verts
}

// Edges returns the edges of the faces of this patch.
func (p *Patch) Edges() []*Edge {
	if p.mesh != nil && len(p.faces) == p.mesh.NumFaces() && !p.mesh.Type().IsPolylines() {
		return p.mesh.edgeList
	}
	seen := make(map[EdgeID]struct{}, len(p.faces)*2)
	var edges []*Edge
	for _, f := range p.faces {
		for _, e := range f.Edges() {
			if _, dup := seen[e.id]; !dup {
				seen[e.id] = struct{}{}
				edges = append(edges, e)
			}
		}
	}
	return edges
}

func (p *Patch) triangulationChanged() {
	p.stripsDirty = true
	p.triStrips = nil
	p.creasesChanged()
	p.borders = nil
}

func (p *Patch) creasesChanged() {
	p.creases = nil
}

// TriStrips returns the triangle strips covering this patch, rebuilding them if the triangulation changed.
// Secondary faces are left out unless Config.ShowSecondaryFaces is set.
func (p *Patch) TriStrips() []*TriStrip {
	if !p.stripsDirty && p.triStrips != nil {
		return p.triStrips
	}
	p.stripsDirty = false
	p.triStrips = p.triStrips[:0]
	for _, f := range p.faces {
		f.flag = FlagCleared
		f.orient = 0
	}
	if p.mesh != nil && !p.mesh.cfg.ShowSecondaryFaces {
		for _, f := range p.faces {
			if f.IsSecondary() {
				f.flag = FlagMarked
			}
		}
	}
	for _, f := range p.faces {
		if f.flag == FlagCleared {
			p.triStrips = GetStrips(f, p.triStrips)
		}
	}
	if p.mesh != nil && p.mesh.cfg.DebugPatches && len(p.triStrips) > 0 {
		klog.Infof("Patch %q: %.1f tris/strip", p.name, float64(len(p.faces))/float64(len(p.triStrips)))
	}
	return p.triStrips
}

// DrawTriStrips sends the tri strips of this patch to cb and returns the number of faces in the patch.
func (p *Patch) DrawTriStrips(cb StripCB) int {
	for _, strip := range p.TriStrips() {
		strip.Draw(cb)
	}
	return len(p.faces)
}

// Creases returns the crease edges of this patch as an edge strip.
func (p *Patch) Creases() *EdgeStrip {
	if p.creases == nil {
		p.creases = p.buildEdgeStrip(CreaseFilter)
	}
	return p.creases
}

// Borders returns the border edges of this patch as an edge strip.
func (p *Patch) Borders() *EdgeStrip {
	if p.borders == nil {
		p.borders = p.buildEdgeStrip(BorderFilter)
	}
	return p.borders
}

func (p *Patch) buildEdgeStrip(filter SimplexFilter) *EdgeStrip {
	strip := NewEdgeStrip()
	inPatch := EdgeFilterFunc(func(e *Edge) bool { return e.Patch() == p })
	strip.BuildWithTips(p.Edges(), And(filter, inPatch))
	return strip
}

// --------------------------------------------------------------------------------------------------------------------
// mesh patch upkeep

// NewPatch adds an empty patch to this mesh.
func (M *Mesh) NewPatch() *Patch {
	M.nextPatch++
	p := &Patch{
		mesh:        M,
		id:          M.nextPatch,
		stripsDirty: true,
	}
	M.patches = append(M.patches, p)
	M.notify(go2mesh.PatchesChanged)
	return p
}

// Patches returns the patches of this mesh.  The slice is owned by the mesh.
func (M *Mesh) Patches() []*Patch { return M.patches }

func (M *Mesh) NumPatches() int { return len(M.patches) }

// Patch returns the patch with the given ID, or nil.
func (M *Mesh) Patch(id PatchID) *Patch {
	for _, p := range M.patches {
		if p.id == id {
			return p
		}
	}
	return nil
}

// PatchByName returns the first patch with the given name, or nil.
func (M *Mesh) PatchByName(name string) *Patch {
	for _, p := range M.patches {
		if p.name == name {
			return p
		}
	}
	return nil
}

// MakePatchIfNeeded puts every face that has no patch into a single new patch.
func (M *Mesh) MakePatchIfNeeded() *Patch {
	var p *Patch
	for _, f := range M.faceList {
		if f.patch == nil {
			if p == nil {
				p = M.NewPatch()
			}
			p.Add(f)
		}
	}
	return p
}

// RemovePatch removes p from this mesh.  Any faces still in p are left without a patch.
func (M *Mesh) RemovePatch(p *Patch) bool {
	k := -1
	if p != nil && p.mesh == M {
		k = p.Index()
	}
	if k < 0 {
		klog.Errorf("Mesh.RemovePatch: not in the list of patches")
		return false
	}
	if len(p.faces) != 0 {
		klog.Warningf("Mesh.RemovePatch: removed patch, %d faces left stranded", len(p.faces))
		for _, f := range p.faces {
			f.patch = nil
			f.pidx = -1
		}
		p.faces = nil
	}
	M.patches = append(M.patches[:k], M.patches[k+1:]...)
	p.mesh = nil
	M.Changed(go2mesh.PatchesChanged)
	return true
}

// CleanPatches removes empty patches and returns how many were removed.
func (M *Mesh) CleanPatches() int {
	n := 0
	for i := len(M.patches) - 1; i >= 0; i-- {
		if p := M.patches[i]; len(p.faces) == 0 && M.RemovePatch(p) {
			n++
		}
	}
	if n > 0 && M.cfg.DebugPatches {
		klog.Infof("Mesh.CleanPatches: removed %d", n)
	}
	return n
}
