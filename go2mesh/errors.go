package go2mesh

import "errors"

// Errors
var (
	ErrNilMesh          = errors.New("nil mesh")
	ErrForeignSimplex   = errors.New("simplex belongs to a different mesh")
	ErrBadVertIndex     = errors.New("bad vertex index")
	ErrBadFaceIndex     = errors.New("bad face index")
	ErrSelfLoop         = errors.New("edge endpoints coincide")
	ErrDegenerateFace   = errors.New("face vertices coincide")
	ErrDuplicateEdge    = errors.New("would duplicate an existing edge")
	ErrTooManyPrimaries = errors.New("edge has more than 2 primary faces")
	ErrBrokenFace       = errors.New("face edges are inconsistent with its vertices")
	ErrBrokenStar       = errors.New("edge missing from a vertex star")
	ErrBadHeader        = errors.New("unreadable mesh header")
	ErrBadPolygon       = errors.New("unsupported polygon arity")
	ErrBadConfig        = errors.New("bad config")
	ErrMeshNotFound     = errors.New("mesh not found")
	ErrReadOnly         = errors.New("catalog is read-only")
	ErrBadCatalogParam  = errors.New("bad catalog param")
)
