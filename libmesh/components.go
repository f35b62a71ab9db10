package libmesh

import (
	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/plan-systems/klog"
)

// Components returns the faces of each edge-connected component of this mesh.
func (M *Mesh) Components() [][]*Face {
	for _, f := range M.faceList {
		f.flag = 0
	}
	var comps [][]*Face
	queue := linkedlistqueue.New()
	for _, seed := range M.faceList {
		if seed.flag != 0 {
			continue
		}
		var comp []*Face
		seed.flag = 1
		queue.Enqueue(seed)
		for !queue.Empty() {
			item, _ := queue.Dequeue()
			f := item.(*Face)
			comp = append(comp, f)
			for _, e := range f.Edges() {
				for _, g := range e.AllFaces() {
					if g.flag == 0 {
						g.flag = 1
						queue.Enqueue(g)
					}
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}

// component holds the elements reachable from a vertex.
type component struct {
	verts []*Vertex
	edges []*Edge
	faces []*Face
}

// growComponent collects everything reachable from v.  Flags of visited elements are set; the caller clears them.
func growComponent(v *Vertex) *component {
	c := &component{}
	if v.flag != 0 {
		return c
	}
	queue := linkedlistqueue.New()
	v.flag = 1
	c.verts = append(c.verts, v)
	queue.Enqueue(v)
	for !queue.Empty() {
		item, _ := queue.Dequeue()
		u := item.(*Vertex)
		for i := 0; i < u.Degree(); i++ {
			e := u.E(i)
			if e.flag == 0 {
				e.flag = 1
				c.edges = append(c.edges, e)
				for _, f := range e.AllFaces() {
					if f.flag == 0 {
						f.flag = 1
						c.faces = append(c.faces, f)
					}
				}
			}
			if nbr := e.OtherVertex(u); nbr.flag == 0 {
				nbr.flag = 1
				c.verts = append(c.verts, nbr)
				queue.Enqueue(nbr)
			}
		}
	}
	return c
}

// copyInto adds copies of the given elements to dst, keeping creases, weak edges, secondary faces, UVs, colors,
// and patch membership.  Source patches map to new patches in dst.
func (M *Mesh) copyInto(dst *Mesh, c *component) {
	vmap := make(map[VertID]*Vertex, len(c.verts))
	for _, v := range c.verts {
		u := dst.AddVertex(v.pos)
		u.color, u.hasColor = v.color, v.hasColor
		u.bits = v.bits
		vmap[v.id] = u
	}
	for _, e := range c.edges {
		d := dst.AddEdge(vmap[e.v1], vmap[e.v2])
		if d == nil {
			continue
		}
		d.crease = e.crease
		d.bits = e.bits &^ (edgeConvexValid | edgeConvex)
	}
	pmap := make(map[*Patch]*Patch)
	var secondary []*Face
	for _, f := range c.faces {
		var p *Patch
		if f.patch != nil {
			if p = pmap[f.patch]; p == nil {
				p = dst.NewPatch()
				p.name = f.patch.name
				p.color, p.hasColor = f.patch.color, f.patch.hasColor
				pmap[f.patch] = p
			}
		}
		a, b, cc := vmap[f.v[0]], vmap[f.v[1]], vmap[f.v[2]]
		g := dst.AddFace(a, b, cc, p)
		if g == nil {
			continue
		}
		if corners := M.uv.corners(f, false); corners != nil {
			dst.uv.SetFace(g, a, b, cc, corners[0], corners[1], corners[2])
		}
		if f.IsSecondary() {
			secondary = append(secondary, g)
		}
		g.bits |= f.bits &^ faceSecondary
	}
	if len(secondary) > 0 {
		dst.PushLayer(secondary)
	}
	dst.Changed(go2mesh.TopologyChanged)
}

// SplitComponents moves every connected component after the first into a new mesh of its own and returns the
// new meshes.
func (M *Mesh) SplitComponents() []*Mesh {
	M.ClearFlags()
	var comps []*component
	for _, v := range M.vertList {
		if v.flag == 0 {
			comps = append(comps, growComponent(v))
		}
	}
	M.ClearFlags()
	if len(comps) < 2 {
		return nil
	}

	var meshes []*Mesh
	for _, c := range comps[1:] {
		m := NewMesh(M.cfg)
		M.copyInto(m, c)
		meshes = append(meshes, m)
		M.RemoveVerts(c.verts)
	}
	M.CleanPatches()
	M.Changed(go2mesh.TopologyChanged)
	return meshes
}

// SplitPatches moves every patch after the first into a new mesh of its own and returns the new meshes.
//
// Vertices shared by patches are duplicated; edges of a moved patch that no remaining face uses are removed.
func (M *Mesh) SplitPatches() []*Mesh {
	if len(M.patches) < 2 {
		return nil
	}
	var meshes []*Mesh
	for _, p := range append([]*Patch(nil), M.patches[1:]...) {
		c := &component{faces: append([]*Face(nil), p.faces...)}
		seenV := make(map[VertID]bool)
		seenE := make(map[EdgeID]bool)
		for _, f := range c.faces {
			for k := 0; k < 3; k++ {
				if v := f.V(k); !seenV[v.id] {
					seenV[v.id] = true
					c.verts = append(c.verts, v)
				}
				if e := f.E(k); !seenE[e.id] {
					seenE[e.id] = true
					c.edges = append(c.edges, e)
				}
			}
		}
		m := NewMesh(M.cfg)
		M.copyInto(m, c)
		meshes = append(meshes, m)

		M.RemoveFaces(c.faces)
		for _, e := range c.edges {
			if e.mesh == M && e.NumAllFaces() == 0 {
				M.RemoveEdge(e)
			}
		}
		for _, v := range c.verts {
			if v.mesh == M && v.Degree() == 0 {
				M.RemoveVertex(v)
			}
		}
	}
	M.CleanPatches()
	return meshes
}

// AssignComponentPatches gives each connected component made of faces without a patch a new patch of its own.
func (M *Mesh) AssignComponentPatches() int {
	n := 0
	for _, comp := range M.Components() {
		var p *Patch
		for _, f := range comp {
			if f.patch == nil {
				if p == nil {
					p = M.NewPatch()
					n++
				}
				p.Add(f)
			}
		}
	}
	if n > 0 {
		M.Changed(go2mesh.PatchesChanged)
	}
	return n
}

// KillComponent removes everything connected to v.
func (M *Mesh) KillComponent(v *Vertex) bool {
	if !M.owns(v) {
		klog.Errorf("Mesh.KillComponent: %v", go2mesh.ErrForeignSimplex)
		return false
	}
	M.ClearFlags()
	c := growComponent(v)
	M.ClearFlags()
	klog.V(2).Infof("Mesh.KillComponent: removing %d faces, %d edges, %d verts", len(c.faces), len(c.edges), len(c.verts))
	M.RemoveVerts(c.verts)
	M.CleanPatches()
	return true
}

// Merge moves the contents of m2 into m1, leaving m2 empty, and returns m1.
// If either mesh is nil the other is returned.
func Merge(m1, m2 *Mesh) *Mesh {
	switch {
	case m1 == nil:
		return m2
	case m2 == nil || m1 == m2:
		return m1
	case len(m2.vertList) == 0:
		klog.V(2).Infof("Merge: mesh %q is empty", m2.name)
		return m1
	}
	c := &component{
		verts: m2.vertList,
		edges: m2.edgeList,
		faces: m2.faceList,
	}
	m2.copyInto(m1, c)
	m2.Init(m2.cfg)
	return m1
}
