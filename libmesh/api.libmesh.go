package libmesh

import (
	"github.com/fine-structures/fine-mesh/go2mesh"
)

type (
	VertID     = go2mesh.VertID
	EdgeID     = go2mesh.EdgeID
	FaceID     = go2mesh.FaceID
	PatchID    = go2mesh.PatchID
	ChangeKind = go2mesh.ChangeKind
	MeshType   = go2mesh.MeshType
	Config     = go2mesh.Config
	UV         = go2mesh.UV
)

// Simplex is implemented by *Vertex, *Edge, and *Face.
type Simplex interface {
	// Dim returns 0 for a vertex, 1 for an edge, and 2 for a face.
	Dim() int

	// Mesh returns the owning mesh, or nil if this simplex has been removed.
	Mesh() *Mesh

	// Flag is a scratch byte used by traversals (strips, flood fills, filters).
	Flag() uint8
	SetFlag(flag uint8)
}

// SimplexFilter is a predicate over simplices.
//
// Some filters (e.g. UnreachedFilter, NewSilFilter) mark the simplices they accept so that each is accepted once.
type SimplexFilter interface {
	Accept(s Simplex) bool
}

// MeshObserver is notified after a mesh calls Changed().
type MeshObserver interface {
	MeshChanged(M *Mesh, kind ChangeKind)
}

// StripCB is the seam between strip traversal and whatever consumes it (e.g. a renderer).
//
// A strip calls Begin*, then the per-element callback once per element in strip order, then End*.
type StripCB interface {
	BeginFaces(strip *TriStrip)
	FaceCB(v *Vertex, f *Face)
	EndFaces(strip *TriStrip)

	BeginEdges(strip *EdgeStrip)
	EdgeCB(v *Vertex, e *Edge)
	EndEdges(strip *EdgeStrip)

	BeginVerts(strip *VertStrip)
	VertCB(v *Vertex)
	EndVerts(strip *VertStrip)
}

// NopStripCB is a StripCB that does nothing; embed it to implement only the callbacks of interest.
type NopStripCB struct{}

func (NopStripCB) BeginFaces(strip *TriStrip)  {}
func (NopStripCB) FaceCB(v *Vertex, f *Face)   {}
func (NopStripCB) EndFaces(strip *TriStrip)    {}
func (NopStripCB) BeginEdges(strip *EdgeStrip) {}
func (NopStripCB) EdgeCB(v *Vertex, e *Edge)   {}
func (NopStripCB) EndEdges(strip *EdgeStrip)   {}
func (NopStripCB) BeginVerts(strip *VertStrip) {}
func (NopStripCB) VertCB(v *Vertex)            {}
func (NopStripCB) EndVerts(strip *VertStrip)   {}

// Simplex flag values used by strip builders.
const (
	FlagCleared uint8 = 0
	FlagMarked  uint8 = 1
	FlagClaimed uint8 = 2
)

// CreaseMax denotes an infinitely sharp crease.
const CreaseMax = ^uint16(0)
