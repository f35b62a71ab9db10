package libmesh

import (
	"fmt"
	"math"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mesh owns a set of vertices, edges, faces, and patches.
//
// Elements live in arenas addressed by one-based handles.  Handles are never reused within a Mesh, so a stale
// handle resolves to nil rather than to some other element.  Each element type is also kept in a dense list,
// which defines the element indices used by files and allows uniform random sampling; removing an element
// moves the last element of its list into the vacated position.
type Mesh struct {
	cfg  go2mesh.Config
	name string

	verts []*Vertex // arena indexed by VertID (slot 0 is always nil)
	edges []*Edge
	faces []*Face

	vertList []*Vertex
	edgeList []*Edge
	faceList []*Face

	patches   []*Patch
	nextPatch PatchID
	uv        UVData
	observers []MeshObserver

	version   uint64
	geomStamp uint64

	meshType       MeshType
	typeValid      bool
	numBorderEdges int

	bbox       r3.Box
	bboxValid  bool
	avgLen     float64
	avgLenValid bool

	creases   *EdgeStrip
	borders   *EdgeStrip
	polylines *EdgeStrip
	loneVerts *VertStrip
}

// NewMesh returns an empty Mesh using the given config.
func NewMesh(cfg go2mesh.Config) *Mesh {
	M := &Mesh{}
	M.Init(cfg)
	return M
}

// Init resets this mesh to empty.
func (M *Mesh) Init(cfg go2mesh.Config) {
	for _, f := range M.faceList {
		f.mesh = nil
	}
	for _, e := range M.edgeList {
		e.mesh = nil
	}
	for _, v := range M.vertList {
		v.mesh = nil
	}
	for _, p := range M.patches {
		p.mesh = nil
	}
	*M = Mesh{
		cfg:       cfg,
		name:      M.name,
		verts:     []*Vertex{nil},
		edges:     []*Edge{nil},
		faces:     []*Face{nil},
		observers: M.observers,
		version:   M.version + 1,
		geomStamp: 1,
	}
	M.notify(go2mesh.TopologyChanged)
}

func (M *Mesh) Config() *go2mesh.Config { return &M.cfg }
func (M *Mesh) Name() string            { return M.name }
func (M *Mesh) SetName(name string)     { M.name = name }

// UV returns the texture-coordinate side table.
func (M *Mesh) UV() *UVData { return &M.uv }

// Version increases with every call to Changed().
func (M *Mesh) Version() uint64 { return M.version }

func (M *Mesh) NumVerts() int { return len(M.vertList) }
func (M *Mesh) NumEdges() int { return len(M.edgeList) }
func (M *Mesh) NumFaces() int { return len(M.faceList) }

// BV returns the vertex at index i, or nil.
func (M *Mesh) BV(i int) *Vertex {
	if i < 0 || i >= len(M.vertList) {
		return nil
	}
	return M.vertList[i]
}

func (M *Mesh) BE(i int) *Edge {
	if i < 0 || i >= len(M.edgeList) {
		return nil
	}
	return M.edgeList[i]
}

func (M *Mesh) BF(i int) *Face {
	if i < 0 || i >= len(M.faceList) {
		return nil
	}
	return M.faceList[i]
}

// Vert returns the vertex with the given handle, or nil.
func (M *Mesh) Vert(id VertID) *Vertex {
	if int(id) >= len(M.verts) {
		return nil
	}
	return M.verts[id]
}

func (M *Mesh) Edge(id EdgeID) *Edge {
	if int(id) >= len(M.edges) {
		return nil
	}
	return M.edges[id]
}

func (M *Mesh) Face(id FaceID) *Face {
	if int(id) >= len(M.faces) {
		return nil
	}
	return M.faces[id]
}

// Verts returns the vertex list in index order.  The slice is owned by the mesh.
func (M *Mesh) Verts() []*Vertex { return M.vertList }
func (M *Mesh) Edges() []*Edge   { return M.edgeList }
func (M *Mesh) Faces() []*Face   { return M.faceList }

func (M *Mesh) validVertIndices(idx ...int) bool {
	for _, i := range idx {
		if i < 0 || i >= len(M.vertList) {
			return false
		}
	}
	return true
}

func (M *Mesh) owns(s Simplex) bool {
	return s != nil && s.Mesh() == M
}

// --------------------------------------------------------------------------------------------------------------------
// adding

func (M *Mesh) AddVertex(pos r3.Vec) *Vertex {
	v := &Vertex{
		mesh: M,
		id:   VertID(len(M.verts)),
		idx:  len(M.vertList),
		pos:  pos,
	}
	M.verts = append(M.verts, v)
	M.vertList = append(M.vertList, v)
	M.Changed(go2mesh.TopologyChanged)
	return v
}

func (M *Mesh) AddVerts(pts []r3.Vec) []*Vertex {
	ret := make([]*Vertex, len(pts))
	for i, p := range pts {
		ret[i] = M.AddVertex(p)
	}
	return ret
}

// AddEdge returns the edge joining u and v, creating it if needed.
// Returns nil if either vertex is nil or foreign, or u == v.
func (M *Mesh) AddEdge(u, v *Vertex) *Edge {
	switch {
	case u == nil || v == nil:
		klog.Errorf("Mesh.AddEdge: %v", go2mesh.ErrNilMesh)
		return nil
	case u == v:
		klog.Errorf("Mesh.AddEdge: %v", go2mesh.ErrSelfLoop)
		return nil
	case u.mesh != M || v.mesh != M:
		klog.Errorf("Mesh.AddEdge: %v", go2mesh.ErrForeignSimplex)
		return nil
	}
	if e := u.LookupEdge(v); e != nil {
		return e
	}
	e := &Edge{
		mesh: M,
		id:   EdgeID(len(M.edges)),
		idx:  len(M.edgeList),
		v1:   u.id,
		v2:   v.id,
	}
	M.edges = append(M.edges, e)
	M.edgeList = append(M.edgeList, e)
	u.addEdge(e)
	v.addEdge(e)
	M.Changed(go2mesh.TopologyChanged)
	return e
}

func (M *Mesh) AddEdgeByIndex(i, j int) *Edge {
	if !M.validVertIndices(i, j) {
		klog.Errorf("Mesh.AddEdgeByIndex: %v (%d,%d)", go2mesh.ErrBadVertIndex, i, j)
		return nil
	}
	return M.AddEdge(M.vertList[i], M.vertList[j])
}

// LookupEdge returns the edge joining u and v, or nil.
func (M *Mesh) LookupEdge(u, v *Vertex) *Edge {
	if u == nil || v == nil {
		return nil
	}
	return u.LookupEdge(v)
}

func (M *Mesh) LookupEdgeByIndex(i, j int) *Edge {
	if !M.validVertIndices(i, j) {
		return nil
	}
	return M.vertList[i].LookupEdge(M.vertList[j])
}

// LookupFace returns the face on vertices u, v, and w (in any order), or nil.
func (M *Mesh) LookupFace(u, v, w *Vertex) *Face {
	if u == nil || v == nil || w == nil {
		return nil
	}
	if e := u.LookupEdge(v); e != nil {
		return e.LookupFace(w)
	}
	return nil
}

func (M *Mesh) LookupFaceByIndex(i, j, k int) *Face {
	if !M.validVertIndices(i, j, k) {
		klog.Errorf("Mesh.LookupFaceByIndex: %v (%d,%d,%d)", go2mesh.ErrBadVertIndex, i, j, k)
		return nil
	}
	return M.LookupFace(M.vertList[i], M.vertList[j], M.vertList[k])
}

// AddFace returns the face (u, v, w) in CCW order, creating it and any missing edges as needed.
//
// If p is non-nil, the new face is added to that patch.  Returns nil if any vertex is nil, foreign, or repeated.
func (M *Mesh) AddFace(u, v, w *Vertex, p *Patch) *Face {
	switch {
	case u == nil || v == nil || w == nil:
		klog.Errorf("Mesh.AddFace: nil vertex")
		return nil
	case u == v || u == w || v == w:
		klog.Errorf("Mesh.AddFace: %v", go2mesh.ErrDegenerateFace)
		return nil
	case u.mesh != M || v.mesh != M || w.mesh != M:
		klog.Errorf("Mesh.AddFace: %v", go2mesh.ErrForeignSimplex)
		return nil
	}
	if f := M.LookupFace(u, v, w); f != nil {
		return f
	}
	e1, e2, e3 := M.AddEdge(u, v), M.AddEdge(v, w), M.AddEdge(w, u)
	if e1 == nil || e2 == nil || e3 == nil {
		klog.Errorf("Mesh.AddFace: can't create edges")
		return nil
	}
	f := &Face{
		mesh: M,
		id:   FaceID(len(M.faces)),
		idx:  len(M.faceList),
		v:    [3]VertID{u.id, v.id, w.id},
		e:    [3]EdgeID{e1.id, e2.id, e3.id},
	}
	M.faces = append(M.faces, f)
	M.faceList = append(M.faceList, f)
	f.attach()

	if p != nil {
		if p.mesh != M {
			klog.Errorf("Mesh.AddFace: patch belongs to a different mesh")
		} else {
			p.Add(f)
		}
	}
	M.Changed(go2mesh.TopologyChanged)
	return f
}

func (M *Mesh) AddFaceByIndex(i, j, k int, p *Patch) *Face {
	if !M.validVertIndices(i, j, k) {
		klog.Errorf("Mesh.AddFaceByIndex: %v (%d,%d,%d)", go2mesh.ErrBadVertIndex, i, j, k)
		return nil
	}
	return M.AddFace(M.vertList[i], M.vertList[j], M.vertList[k], p)
}

// AddFaceUV is AddFace that also assigns texture coordinates a, b, c to u, v, w.
func (M *Mesh) AddFaceUV(u, v, w *Vertex, a, b, c UV, p *Patch) *Face {
	f := M.AddFace(u, v, w, p)
	if f != nil {
		M.uv.SetFace(f, u, v, w, a, b, c)
	}
	return f
}

func (M *Mesh) AddFaceByIndexUV(i, j, k int, a, b, c UV, p *Patch) *Face {
	f := M.AddFaceByIndex(i, j, k, p)
	if f != nil {
		M.uv.SetFace(f, f.V(0), f.V(1), f.V(2), a, b, c)
	}
	return f
}

// AddQuad creates the quad (u, v, w, x) as faces (u, v, w) and (u, w, x), marking the diagonal u-w weak.
// Returns the quad representative.
//
//	x --- w
//	|   / |
//	| /   |
//	u --- v
func (M *Mesh) AddQuad(u, v, w, x *Vertex, p *Patch) *Face {
	f1 := M.AddFace(u, v, w, p)
	f2 := M.AddFace(u, w, x, p)
	if f1 == nil || f2 == nil {
		if f1 != nil || f2 != nil {
			klog.Errorf("Mesh.AddQuad: created one face, not the other")
		} else {
			klog.Errorf("Mesh.AddQuad: couldn't create either face")
		}
		return nil
	}
	u.LookupEdge(w).SetWeak(true)
	return f1.QuadRep()
}

func (M *Mesh) AddQuadByIndex(i, j, k, l int, p *Patch) *Face {
	if !M.validVertIndices(i, j, k, l) {
		klog.Errorf("Mesh.AddQuadByIndex: %v (%d,%d,%d,%d)", go2mesh.ErrBadVertIndex, i, j, k, l)
		return nil
	}
	return M.AddQuad(M.vertList[i], M.vertList[j], M.vertList[k], M.vertList[l], p)
}

// AddQuadUV is AddQuad that also assigns texture coordinates to the corners.
func (M *Mesh) AddQuadUV(u, v, w, x *Vertex, a, b, c, d UV, p *Patch) *Face {
	f := M.AddQuad(u, v, w, x, p)
	if f != nil && !M.uv.SetQuad(u, v, w, x, a, b, c, d) {
		klog.Errorf("Mesh.AddQuadUV: could not set UV coordinates")
	}
	return f
}

// --------------------------------------------------------------------------------------------------------------------
// removing

// RemoveFace removes f from its edges, its patch, and the mesh.
func (M *Mesh) RemoveFace(f *Face) bool {
	if !M.owns(f) {
		klog.Errorf("Mesh.RemoveFace: %v", go2mesh.ErrForeignSimplex)
		return false
	}
	f.Detach()
	if f.patch != nil {
		f.patch.Remove(f)
	}
	M.uv.remove(f)

	last := M.faceList[len(M.faceList)-1]
	M.faceList[f.idx] = last
	last.idx = f.idx
	M.faceList = M.faceList[:len(M.faceList)-1]
	M.faces[f.id] = nil
	f.mesh = nil
	M.Changed(go2mesh.TopologyChanged)
	return true
}

// RemoveEdge removes e and, with it, all faces adjacent to e.
func (M *Mesh) RemoveEdge(e *Edge) bool {
	if !M.owns(e) {
		klog.Errorf("Mesh.RemoveEdge: %v", go2mesh.ErrForeignSimplex)
		return false
	}
	for _, f := range e.AllFaces() {
		M.RemoveFace(f)
	}
	e.V1().removeEdge(e)
	e.V2().removeEdge(e)

	last := M.edgeList[len(M.edgeList)-1]
	M.edgeList[e.idx] = last
	last.idx = e.idx
	M.edgeList = M.edgeList[:len(M.edgeList)-1]
	M.edges[e.id] = nil
	e.mesh = nil
	M.Changed(go2mesh.TopologyChanged)
	return true
}

// RemoveVertex removes v and, with it, all edges (and so faces) adjacent to v.
func (M *Mesh) RemoveVertex(v *Vertex) bool {
	if !M.owns(v) {
		klog.Errorf("Mesh.RemoveVertex: %v", go2mesh.ErrForeignSimplex)
		return false
	}
	for len(v.star) > 0 {
		M.RemoveEdge(M.edges[v.star[len(v.star)-1]])
	}
	last := M.vertList[len(M.vertList)-1]
	M.vertList[v.idx] = last
	last.idx = v.idx
	M.vertList = M.vertList[:len(M.vertList)-1]
	M.verts[v.id] = nil
	v.mesh = nil
	M.Changed(go2mesh.TopologyChanged)
	return true
}

// RemoveFaces removes the given faces, or none of them if any belongs to another mesh.
func (M *Mesh) RemoveFaces(faces []*Face) bool {
	for _, f := range faces {
		if !M.owns(f) {
			klog.Errorf("Mesh.RemoveFaces: %v", go2mesh.ErrForeignSimplex)
			return false
		}
	}
	for _, f := range faces {
		if f.mesh == M {
			M.RemoveFace(f)
		}
	}
	return true
}

// RemoveEdges removes the given edges (and their faces), or none of them if any belongs to another mesh.
func (M *Mesh) RemoveEdges(edges []*Edge) bool {
	for _, e := range edges {
		if !M.owns(e) {
			klog.Errorf("Mesh.RemoveEdges: %v", go2mesh.ErrForeignSimplex)
			return false
		}
	}
	for _, e := range edges {
		if e.mesh == M {
			M.RemoveEdge(e)
		}
	}
	return true
}

// RemoveVerts removes the given vertices (and their stars), or none of them if any belongs to another mesh.
func (M *Mesh) RemoveVerts(verts []*Vertex) bool {
	for _, v := range verts {
		if !M.owns(v) {
			klog.Errorf("Mesh.RemoveVerts: %v", go2mesh.ErrForeignSimplex)
			return false
		}
	}
	for _, v := range verts {
		if v.mesh == M {
			M.RemoveVertex(v)
		}
	}
	return true
}

// --------------------------------------------------------------------------------------------------------------------
// change notification

func (M *Mesh) AddObserver(obs MeshObserver) {
	for _, o := range M.observers {
		if o == obs {
			return
		}
	}
	M.observers = append(M.observers, obs)
}

func (M *Mesh) RemoveObserver(obs MeshObserver) {
	for i, o := range M.observers {
		if o == obs {
			M.observers = append(M.observers[:i], M.observers[i+1:]...)
			return
		}
	}
}

// Changed discards whatever derived data the given kind of change invalidates, notifies observers, and bumps
// Version().
func (M *Mesh) Changed(kind ChangeKind) {
	if kind.Invalidates(go2mesh.TopologyChanged) {
		M.typeValid = false
	}
	if kind.Invalidates(go2mesh.TriangulationChanged) {
		M.creases = nil
		M.borders = nil
		M.polylines = nil
		M.loneVerts = nil
		for _, p := range M.patches {
			p.triangulationChanged()
		}
	}
	if kind.Invalidates(go2mesh.VertPositionsChanged) {
		M.bboxValid = false
		M.avgLenValid = false
		M.geomStamp++
	}
	switch kind {
	case go2mesh.CreasesChanged:
		M.creases = nil
		for _, p := range M.patches {
			p.creasesChanged()
		}
	case go2mesh.PatchesChanged:
		for _, p := range M.patches {
			p.triangulationChanged()
		}
	}
	M.notify(kind)
}

func (M *Mesh) notify(kind ChangeKind) {
	M.version++
	for _, o := range M.observers {
		o.MeshChanged(M, kind)
	}
}

// --------------------------------------------------------------------------------------------------------------------
// classification

// Type returns the (possibly cached) classification of this mesh.
func (M *Mesh) Type() MeshType {
	if !M.typeValid {
		M.CheckType()
	}
	return M.meshType
}

// NumBorderEdges returns the border edge count found by the last classification.
func (M *Mesh) NumBorderEdges() int {
	M.Type()
	return M.numBorderEdges
}

func (M *Mesh) IsSurface() bool       { return M.Type().IsSurface() }
func (M *Mesh) IsClosedSurface() bool { return M.Type().IsClosedSurface() }

// CheckType classifies this mesh as some combination of POINTS, POLYLINES, and OPEN_SURFACE or CLOSED_SURFACE.
//
// Faces found to be inconsistently oriented are fixed unless Config.NoFixOrientation is set.
func (M *Mesh) CheckType() MeshType {
	var t MeshType
	numBorder, numBad := 0, 0
	for _, v := range M.vertList {
		if v.Degree() == 0 {
			t |= go2mesh.Points
		}
	}
	for _, e := range M.edgeList {
		switch e.NFaces() {
		case 0:
			if !e.IsMulti() {
				t |= go2mesh.Polylines
			}
		case 1:
			numBorder++
		case 2:
			if !e.ConsistentOrientation() {
				numBad++
			}
		}
	}
	if numBorder > 0 {
		t |= go2mesh.OpenSurface
	} else if len(M.faceList) > 0 {
		t |= go2mesh.ClosedSurface
	}
	M.meshType = t
	M.numBorderEdges = numBorder
	M.typeValid = true

	if numBad > 0 {
		if M.cfg.NoFixOrientation {
			klog.V(2).Infof("Mesh.CheckType: %d inconsistently oriented edges", numBad)
		} else {
			klog.V(2).Infof("Mesh.CheckType: fixing orientation (%d inconsistent edges)", numBad)
			M.FixOrientation()
			M.meshType = t
			M.numBorderEdges = numBorder
			M.typeValid = true
		}
	}
	return t
}

type orientEntry struct {
	f    *Face
	sign int
}

// FixOrientation makes face orientation consistent within each connected component by reversing the smaller
// of the two oppositely oriented groups.  Returns the number of faces reversed.
func (M *Mesh) FixOrientation() int {
	for _, f := range M.faceList {
		f.flag = 0
	}
	stack := arraystack.New()
	reversed := 0
	for _, seed := range M.faceList {
		if seed.flag != 0 {
			continue
		}
		var pos, neg []*Face
		seed.flag = 1
		stack.Push(orientEntry{seed, 1})
		for !stack.Empty() {
			top, _ := stack.Pop()
			entry := top.(orientEntry)
			if entry.sign > 0 {
				pos = append(pos, entry.f)
			} else {
				neg = append(neg, entry.f)
			}
			for _, e := range entry.f.Edges() {
				g := e.OtherFace(entry.f)
				if g == nil || g.flag != 0 {
					continue
				}
				sign := entry.sign
				if entry.f.Orientation(e)*g.Orientation(e) != -1 {
					sign = -sign
				}
				g.flag = 1
				stack.Push(orientEntry{g, sign})
			}
		}
		flip := neg
		if len(neg) > len(pos) {
			flip = pos
		}
		for _, f := range flip {
			f.Reverse()
		}
		reversed += len(flip)
	}
	for _, f := range M.faceList {
		f.flag = 0
	}
	if reversed > 0 {
		M.Changed(go2mesh.TriangulationChanged)
	}
	return reversed
}

// CheckInvariants returns the first structural violation found, if any.
func (M *Mesh) CheckInvariants() error {
	for i, f := range M.faceList {
		if f.idx != i || M.faces[f.id] != f {
			return fmt.Errorf("face %d: bad index", i)
		}
		if err := f.Check(); err != nil {
			return err
		}
	}
	for i, e := range M.edgeList {
		if e.idx != i || M.edges[e.id] != e {
			return fmt.Errorf("edge %d: bad index", i)
		}
		v1, v2 := e.V1(), e.V2()
		if v1 == nil || v2 == nil || v1 == v2 {
			return fmt.Errorf("edge %d: bad endpoints", i)
		}
		if !containsEdgeID(v1.star, e.id) || !containsEdgeID(v2.star, e.id) {
			return fmt.Errorf("edge %v: %v", e, go2mesh.ErrBrokenStar)
		}
		if e.f1 != 0 && e.f1 == e.f2 {
			return fmt.Errorf("edge %v: face recorded twice", e)
		}
		for _, f := range e.AllFaces() {
			if f == nil || !f.ContainsEdge(e) {
				return fmt.Errorf("edge %v: %v", e, go2mesh.ErrBrokenFace)
			}
		}
	}
	for i, v := range M.vertList {
		if v.idx != i || M.verts[v.id] != v {
			return fmt.Errorf("vertex %d: bad index", i)
		}
		for _, eid := range v.star {
			if e := M.edges[eid]; e == nil || !e.Contains(v) {
				return fmt.Errorf("vertex %d: %v", i, go2mesh.ErrBrokenStar)
			}
		}
	}
	return nil
}

func containsEdgeID(ids []EdgeID, id EdgeID) bool {
	for _, eid := range ids {
		if eid == id {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------------------------------------------------------------
// geometry

// Area returns the total face area.
func (M *Mesh) Area() float64 {
	area := 0.
	for _, f := range M.faceList {
		area += f.Area()
	}
	return area
}

// Volume returns the signed volume enclosed by the faces (meaningful for closed surfaces).
func (M *Mesh) Volume() float64 {
	vol := 0.
	for _, f := range M.faceList {
		vol += r3.Dot(f.V(0).pos, r3.Cross(f.V(1).pos, f.V(2).pos))
	}
	return vol / 6
}

// BBox returns the bounding box of all vertices.
func (M *Mesh) BBox() r3.Box {
	if !M.bboxValid {
		var box r3.Box
		for i, v := range M.vertList {
			if i == 0 {
				box = r3.Box{Min: v.pos, Max: v.pos}
				continue
			}
			box.Min = r3.Vec{X: math.Min(box.Min.X, v.pos.X), Y: math.Min(box.Min.Y, v.pos.Y), Z: math.Min(box.Min.Z, v.pos.Z)}
			box.Max = r3.Vec{X: math.Max(box.Max.X, v.pos.X), Y: math.Max(box.Max.Y, v.pos.Y), Z: math.Max(box.Max.Z, v.pos.Z)}
		}
		M.bbox = box
		M.bboxValid = true
	}
	return M.bbox
}

// AvgEdgeLen returns the average edge length.
func (M *Mesh) AvgEdgeLen() float64 {
	if !M.avgLenValid {
		sum := 0.
		for _, e := range M.edgeList {
			sum += e.Length()
		}
		M.avgLen = 0
		if len(M.edgeList) > 0 {
			M.avgLen = sum / float64(len(M.edgeList))
		}
		M.avgLenValid = true
	}
	return M.avgLen
}

// Transform moves every vertex through the given function.
func (M *Mesh) Transform(xform func(p r3.Vec) r3.Vec) {
	for _, v := range M.vertList {
		v.pos = xform(v.pos)
	}
	M.Changed(go2mesh.VertPositionsChanged)
}

// Recenter translates the mesh so its bounding box is centered at the origin.
func (M *Mesh) Recenter() {
	box := M.BBox()
	c := midpoint(box.Min, box.Max)
	M.Transform(func(p r3.Vec) r3.Vec { return r3.Sub(p, c) })
}

// NearestVert returns the vertex nearest p.
func (M *Mesh) NearestVert(p r3.Vec) *Vertex {
	var best *Vertex
	bestD := math.Inf(1)
	for _, v := range M.vertList {
		if d := distSq(v.pos, p); d < bestD {
			best, bestD = v, d
		}
	}
	return best
}

// NearestEdge returns the edge nearest p.
func (M *Mesh) NearestEdge(p r3.Vec) *Edge {
	var best *Edge
	bestD := math.Inf(1)
	for _, e := range M.edgeList {
		if d := distSq(e.NearestPt(p), p); d < bestD {
			best, bestD = e, d
		}
	}
	return best
}

// ClearFlags zeros the scratch flag of every vertex, edge, and face.
func (M *Mesh) ClearFlags() {
	for _, v := range M.vertList {
		v.flag = 0
	}
	for _, e := range M.edgeList {
		e.flag = 0
	}
	for _, f := range M.faceList {
		f.flag = 0
	}
}

// ComputeCreases marks edges whose dihedral dot product is below d as creases.
func (M *Mesh) ComputeCreases(d float64) {
	for _, e := range M.edgeList {
		if e.IsInterior() && e.Dot() < d {
			e.SetCrease(CreaseMax)
		}
	}
}

// CreaseEdges returns all crease edges.
func (M *Mesh) CreaseEdges() []*Edge {
	return M.EdgesOf(CreaseFilter)
}

// EdgesOf returns the edges accepted by the given filter.
func (M *Mesh) EdgesOf(filter SimplexFilter) []*Edge {
	var ret []*Edge
	for _, e := range M.edgeList {
		if filter.Accept(e) {
			ret = append(ret, e)
		}
	}
	return ret
}

// FacesOf returns the faces accepted by the given filter.
func (M *Mesh) FacesOf(filter SimplexFilter) []*Face {
	var ret []*Face
	for _, f := range M.faceList {
		if filter.Accept(f) {
			ret = append(ret, f)
		}
	}
	return ret
}

// FixMulti runs Edge.FixMulti on every edge.
func (M *Mesh) FixMulti() {
	for _, e := range M.edgeList {
		e.FixMulti()
	}
}

// PushLayer labels the given faces secondary and moves them out of the primary slots of their edges.
func (M *Mesh) PushLayer(faces []*Face) {
	for _, f := range faces {
		if f == nil || f.mesh != M {
			continue
		}
		f.SetSecondary(true)
		for _, e := range f.Edges() {
			e.Demote(f)
		}
	}
	M.Changed(go2mesh.TriangulationChanged)
}

// UnpushLayer labels the given faces primary and promotes them where a slot is available.
func (M *Mesh) UnpushLayer(faces []*Face) {
	for _, f := range faces {
		if f == nil || f.mesh != M {
			continue
		}
		f.SetSecondary(false)
		for _, e := range f.Edges() {
			if e.CanPromote() {
				e.Promote(f)
			}
		}
	}
	M.Changed(go2mesh.TriangulationChanged)
}
