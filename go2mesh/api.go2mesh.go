package go2mesh

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// VertID is a one-based handle identifying a vertex within its mesh (0 denotes nil).
type VertID uint32

// EdgeID is a one-based handle identifying an edge within its mesh (0 denotes nil).
type EdgeID uint32

// FaceID is a one-based handle identifying a face within its mesh (0 denotes nil).
type FaceID uint32

// PatchID is a one-based handle identifying a Patch within its mesh (0 denotes nil).
type PatchID uint32

// ChangeKind tells mesh observers what changed so they know which derived data to discard.
//
// TopologyChanged, TriangulationChanged and VertPositionsChanged form a severity ordering:
// each of those invalidates everything the tiers below it invalidate.
type ChangeKind int32

const (
	NoChange ChangeKind = iota
	TopologyChanged
	PatchesChanged
	TriangulationChanged
	VertPositionsChanged
	VertColorsChanged
	CreasesChanged
	RenderingChanged
)

var kChangeKindNames = [...]string{
	"NoChange",
	"TopologyChanged",
	"PatchesChanged",
	"TriangulationChanged",
	"VertPositionsChanged",
	"VertColorsChanged",
	"CreasesChanged",
	"RenderingChanged",
}

func (kind ChangeKind) String() string {
	if kind >= 0 && int(kind) < len(kChangeKindNames) {
		return kChangeKindNames[kind]
	}
	return "ChangeKind(?)"
}

// Invalidates reports if a change of this kind implies a change of the given kind.
func (kind ChangeKind) Invalidates(other ChangeKind) bool {
	if kind == other {
		return true
	}
	switch kind {
	case TopologyChanged:
		return other == TriangulationChanged || other == VertPositionsChanged
	case TriangulationChanged:
		return other == VertPositionsChanged
	}
	return false
}

// MeshType classifies a mesh as some combination of points, polylines and surfaces.
// OpenSurface and ClosedSurface are mutually exclusive.
type MeshType int32

const (
	EmptyMesh     MeshType = 0
	Points        MeshType = 1 << 0 // has isolated vertices
	Polylines     MeshType = 1 << 1 // has edges w/ no faces
	OpenSurface   MeshType = 1 << 2 // has edges adjacent to just 1 face
	ClosedSurface MeshType = 1 << 3 // has faces and no border edges
)

func (t MeshType) IsPoints() bool        { return t&Points != 0 }
func (t MeshType) IsPolylines() bool     { return t&Polylines != 0 }
func (t MeshType) IsOpenSurface() bool   { return t&OpenSurface != 0 }
func (t MeshType) IsClosedSurface() bool { return t&ClosedSurface != 0 }
func (t MeshType) IsSurface() bool       { return t&(OpenSurface|ClosedSurface) != 0 }

func (t MeshType) String() string {
	if t == EmptyMesh {
		return "EMPTY_MESH"
	}
	str := ""
	add := func(s string) {
		if len(str) > 0 {
			str += "|"
		}
		str += s
	}
	if t.IsPoints() {
		add("POINTS")
	}
	if t.IsPolylines() {
		add("POLYLINES")
	}
	if t.IsOpenSurface() {
		add("OPEN_SURFACE")
	}
	if t.IsClosedSurface() {
		add("CLOSED_SURFACE")
	}
	return str
}

// View is the camera a mesh is viewed from.
//
// Stamp() increases monotonically (e.g. once per frame) and is what silhouette caches compare against.
// Eye() is given in the mesh's local (object) space.
type View interface {
	Eye() r3.Vec
	Stamp() uint64
}

// UV is a texture coordinate.
type UV struct {
	U, V float64
}

func (uv UV) Add(b UV) UV             { return UV{uv.U + b.U, uv.V + b.V} }
func (uv UV) Scale(s float64) UV      { return UV{uv.U * s, uv.V * s} }
func (uv UV) Lerp(b UV, t float64) UV { return UV{uv.U + t*(b.U-uv.U), uv.V + t*(b.V-uv.V)} }

// Color is an RGB triple with components in [0,1].
type Color struct {
	R, G, B float64
}

// PrintOpts specifies what is printed when printing a mesh
type PrintOpts struct {
	Label   string // Prefix label
	Type    bool   // If set, prints the mesh type classification
	Counts  bool   // If set, prints vertex, edge, and face counts
	Patches bool   // If set, prints each patch and its face count
	Verts   bool   // If set, prints each vertex position
	Faces   bool   // If set, prints each face as vertex indices
}

// DefaultPrintOpts{}
var DefaultPrintOpts = PrintOpts{
	Type:   true,
	Counts: true,
}
