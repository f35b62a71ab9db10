// Package pymesh registers the gpython module "_pymesh", exposing meshes, silhouettes, subdivision and
// catalogs to scripts.
package pymesh

import (
	"strings"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/fine-structures/fine-mesh/libmesh/catalog"
	"github.com/fine-structures/fine-mesh/libmesh/silhouette"
	smfile "github.com/fine-structures/fine-mesh/libmesh/sm-file"
	"github.com/fine-structures/fine-mesh/libmesh/subdiv"
	"github.com/go-python/gpython/py"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	LIB_VERSION = "v1.2024.1"
)

var (
	pyMeshType    = py.NewType("Mesh", "a triangle mesh with optional quads, creases, polylines and patches")
	pyCatalogType = py.NewType("Catalog", "a badger-backed store of meshes")
)

type pyMesh struct {
	*libmesh.Mesh
	sils *silhouette.Extractor
}

func (M *pyMesh) Type() *py.Type {
	return pyMeshType
}

func (M *pyMesh) M__str__() (py.Object, error) {
	writer := strings.Builder{}
	M.WriteAsString(&writer, go2mesh.DefaultPrintOpts)
	return py.String(writer.String()), nil
}

func (M *pyMesh) M__repr__() (py.Object, error) {
	return M.M__str__()
}

func wrapMesh(M *libmesh.Mesh) py.Object {
	return py.Object(&pyMesh{Mesh: M})
}

func getMesh(obj py.Object) (*pyMesh, error) {
	M, ok := obj.(*pyMesh)
	if !ok {
		return nil, py.ExceptionNewf(py.TypeError, "expected Mesh object (got %v)", obj.Type().Name)
	}
	return M, nil
}

func toFloat(obj py.Object) (float64, error) {
	switch x := obj.(type) {
	case py.Float:
		return float64(x), nil
	case py.Int:
		return float64(x), nil
	}
	return 0, py.ExceptionNewf(py.TypeError, "expected a number (got %v)", obj.Type().Name)
}

// toVec accepts either three numbers or a single 3-tuple.
func toVec(args py.Tuple) (p r3.Vec, err error) {
	if len(args) == 1 {
		if t, ok := args[0].(py.Tuple); ok {
			args = t
		}
	}
	if len(args) != 3 {
		return p, py.ExceptionNewf(py.TypeError, "expected x, y, z")
	}
	if p.X, err = toFloat(args[0]); err != nil {
		return
	}
	if p.Y, err = toFloat(args[1]); err != nil {
		return
	}
	p.Z, err = toFloat(args[2])
	return
}

func vecTuple(p r3.Vec) py.Tuple {
	return py.Tuple{py.Float(p.X), py.Float(p.Y), py.Float(p.Z)}
}

func indices(args py.Tuple, n int) ([]int, error) {
	if len(args) != n {
		return nil, py.ExceptionNewf(py.TypeError, "expected %d vertex indices (got %d)", n, len(args))
	}
	idx := make([]int, n)
	for i, arg := range args {
		v, err := py.GetInt(arg)
		if err != nil {
			return nil, err
		}
		idx[i] = int(v)
	}
	return idx, nil
}

func lookupEdge(M *pyMesh, args py.Tuple) (*libmesh.Edge, error) {
	idx, err := indices(args, 2)
	if err != nil {
		return nil, err
	}
	e := M.LookupEdgeByIndex(idx[0], idx[1])
	if e == nil {
		return nil, py.ExceptionNewf(py.IndexError, "no edge %d-%d", idx[0], idx[1])
	}
	return e, nil
}

func faceIndexOrNone(f *libmesh.Face) py.Object {
	if f == nil {
		return py.None
	}
	return py.Int(f.Index())
}

func py_NewMesh(module py.Object, args py.Tuple) (py.Object, error) {
	return wrapMesh(libmesh.NewMesh(go2mesh.DefaultConfig())), nil
}

func py_Cube(module py.Object, args py.Tuple) (py.Object, error) {
	quads := false
	if err := py.LoadTuple(args, []interface{}{&quads}); err != nil {
		return nil, err
	}
	return wrapMesh(libmesh.NewCube(go2mesh.DefaultConfig(), quads)), nil
}

func py_Load(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}
	M, err := smfile.ReadFile(pathname, go2mesh.DefaultConfig())
	if err != nil {
		return nil, py.ExceptionNewf(py.OSError, "%v", err)
	}
	return wrapMesh(M), nil
}

func py_Mesh_NumVerts(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyMesh).NumVerts()), nil
}

func py_Mesh_NumEdges(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyMesh).NumEdges()), nil
}

func py_Mesh_NumFaces(self py.Object, args py.Tuple) (py.Object, error) {
	return py.Int(self.(*pyMesh).NumFaces()), nil
}

func py_Mesh_AddVertex(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	p, err := toVec(args)
	if err != nil {
		return nil, err
	}
	return py.Int(M.AddVertex(p).Index()), nil
}

func py_Mesh_AddFace(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	idx, err := indices(args, 3)
	if err != nil {
		return nil, err
	}
	return faceIndexOrNone(M.AddFaceByIndex(idx[0], idx[1], idx[2], nil)), nil
}

func py_Mesh_AddQuad(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	idx, err := indices(args, 4)
	if err != nil {
		return nil, err
	}
	return faceIndexOrNone(M.AddQuadByIndex(idx[0], idx[1], idx[2], idx[3], nil)), nil
}

func py_Mesh_CheckType(self py.Object, args py.Tuple) (py.Object, error) {
	return py.String(self.(*pyMesh).CheckType().String()), nil
}

func py_Mesh_Save(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	var pathname string
	if err := py.LoadTuple(args, []interface{}{&pathname}); err != nil {
		return nil, err
	}
	if err := smfile.WriteFile(pathname, M.Mesh); err != nil {
		return nil, py.ExceptionNewf(py.OSError, "%v", err)
	}
	return py.None, nil
}

// SplitEdge(i, j) splits edge i-j at its midpoint and returns the new vertex's index.
func py_Mesh_SplitEdge(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	e, err := lookupEdge(M, args)
	if err != nil {
		return nil, err
	}
	v := M.SplitEdge(e, e.MidPt())
	if v == nil {
		return py.None, nil
	}
	return py.Int(v.Index()), nil
}

func py_Mesh_SwapEdge(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	e, err := lookupEdge(M, args)
	if err != nil {
		return nil, err
	}
	return py.NewBool(M.TrySwapEdge(e, M.Config().FavorDegreeSix)), nil
}

// CollapseEdge(i, j) collapses edge i-j into vertex j.
func py_Mesh_CollapseEdge(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	e, err := lookupEdge(M, args)
	if err != nil {
		return nil, err
	}
	return py.NewBool(M.TryCollapseEdge(e, e.V2())), nil
}

// scriptView is a view whose stamp the script supplies.
type scriptView struct {
	eye   r3.Vec
	stamp uint64
}

func (v scriptView) Eye() r3.Vec   { return v.eye }
func (v scriptView) Stamp() uint64 { return v.stamp }

// Silhouettes(eye, stamp) returns the silhouette edges seen from eye as (i, j) vertex index pairs.
func py_Mesh_Silhouettes(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "expected eye point")
	}
	eye, err := toVec(args[:1])
	if err != nil {
		return nil, err
	}
	stamp := int32(1)
	if err := py.LoadTuple(args[1:], []interface{}{&stamp}); err != nil {
		return nil, err
	}
	if M.sils == nil {
		M.sils = silhouette.NewExtractor(M.Mesh)
	}
	strip := M.sils.SilStrip(scriptView{eye, uint64(stamp)})

	var edges []py.Object
	for _, e := range strip.Edges() {
		edges = append(edges, py.Tuple{py.Int(e.V1().Index()), py.Int(e.V2().Index())})
	}
	return py.NewListFromItems(edges), nil
}

// Components returns the face indices of each connected component.
func py_Mesh_Components(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	var comps []py.Object
	for _, faces := range M.Components() {
		idx := make(py.Tuple, len(faces))
		for i, f := range faces {
			idx[i] = py.Int(f.Index())
		}
		comps = append(comps, idx)
	}
	return py.NewListFromItems(comps), nil
}

// Subdivide(scheme) returns the refined positions of the vertices and edges, in index order.
func py_Mesh_Subdivide(self py.Object, args py.Tuple) (py.Object, error) {
	M := self.(*pyMesh)
	name := "loop"
	if err := py.LoadTuple(args, []interface{}{&name}); err != nil {
		return nil, err
	}
	scheme := subdiv.New(name, subdiv.PositionOps, subdiv.Positions)
	if scheme == nil {
		return nil, py.ExceptionNewf(py.ValueError, "unknown subdivision scheme %q", name)
	}
	verts, edges := subdiv.SubdivideAll(M.Mesh, scheme)
	toList := func(pts []r3.Vec) py.Object {
		items := make([]py.Object, len(pts))
		for i, p := range pts {
			items[i] = vecTuple(p)
		}
		return py.NewListFromItems(items)
	}
	return py.Tuple{toList(verts), toList(edges)}, nil
}

/////////////////////////////////////////////////////////////////////////////////////////////////////////////
// Catalog

const (
	READ_ONLY = 0x01
)

type pyCatalog struct {
	*catalog.Catalog
}

func (cat pyCatalog) Type() *py.Type {
	return pyCatalogType
}

func py_OpenCatalog(module py.Object, args py.Tuple) (py.Object, error) {
	var pathname string
	var flags int32
	if err := py.LoadTuple(args, []interface{}{&pathname, &flags}); err != nil {
		return nil, err
	}
	cat, err := catalog.Open(catalog.Opts{
		DbPathName: pathname,
		ReadOnly:   (flags & READ_ONLY) != 0,
	})
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.Object(pyCatalog{cat}), nil
}

// Put(mesh [, name]) stores mesh and returns its ID.
func py_Catalog_Put(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if len(args) < 1 {
		return nil, py.ExceptionNewf(py.TypeError, "expected Mesh object")
	}
	M, err := getMesh(args[0])
	if err != nil {
		return nil, err
	}
	var name string
	if err := py.LoadTuple(args[1:], []interface{}{&name}); err != nil {
		return nil, err
	}
	if cat.IsReadOnly() {
		return nil, py.ExceptionNewf(py.PermissionError, "catalog is in read-only mode")
	}
	id, err := cat.Put(name, M.Mesh)
	if err != nil {
		return nil, py.ExceptionNewf(py.RuntimeError, "%v", err)
	}
	return py.String(id.String()), nil
}

// Get(id_or_name) restores a stored mesh.
func py_Catalog_Get(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	var key string
	if err := py.LoadTuple(args, []interface{}{&key}); err != nil {
		return nil, err
	}
	var M *libmesh.Mesh
	var err error
	if id, perr := uuid.Parse(key); perr == nil {
		M, err = cat.Get(id)
	} else {
		M, err = cat.GetByName(key)
	}
	if err != nil {
		return nil, py.ExceptionNewf(py.KeyError, "%v", err)
	}
	return wrapMesh(M), nil
}

func py_Catalog_Close(self py.Object, args py.Tuple) (py.Object, error) {
	cat := self.(pyCatalog)
	if cat.Catalog != nil {
		cat.Close()
	}
	return py.None, nil
}

func init() {

	/////////////////////////////////
	// Mesh
	{
		pyMeshType.Dict["NumVerts"] = py.MustNewMethod("NumVerts", py_Mesh_NumVerts, 0, "")
		pyMeshType.Dict["NumEdges"] = py.MustNewMethod("NumEdges", py_Mesh_NumEdges, 0, "")
		pyMeshType.Dict["NumFaces"] = py.MustNewMethod("NumFaces", py_Mesh_NumFaces, 0, "")
		pyMeshType.Dict["AddVertex"] = py.MustNewMethod("AddVertex", py_Mesh_AddVertex, 0, "adds a vertex at (x, y, z) and returns its index")
		pyMeshType.Dict["AddFace"] = py.MustNewMethod("AddFace", py_Mesh_AddFace, 0, "adds the CCW triangle (i, j, k)")
		pyMeshType.Dict["AddQuad"] = py.MustNewMethod("AddQuad", py_Mesh_AddQuad, 0, "adds the CCW quad (i, j, k, l) as two triangles")
		pyMeshType.Dict["CheckType"] = py.MustNewMethod("CheckType", py_Mesh_CheckType, 0, "")
		pyMeshType.Dict["Save"] = py.MustNewMethod("Save", py_Mesh_Save, 0, "writes this mesh as a .sm file")
		pyMeshType.Dict["SplitEdge"] = py.MustNewMethod("SplitEdge", py_Mesh_SplitEdge, 0, "")
		pyMeshType.Dict["SwapEdge"] = py.MustNewMethod("SwapEdge", py_Mesh_SwapEdge, 0, "")
		pyMeshType.Dict["CollapseEdge"] = py.MustNewMethod("CollapseEdge", py_Mesh_CollapseEdge, 0, "")
		pyMeshType.Dict["Silhouettes"] = py.MustNewMethod("Silhouettes", py_Mesh_Silhouettes, 0, "")
		pyMeshType.Dict["Components"] = py.MustNewMethod("Components", py_Mesh_Components, 0, "")
		pyMeshType.Dict["Subdivide"] = py.MustNewMethod("Subdivide", py_Mesh_Subdivide, 0, "one of 'uniform', 'loop', 'catmull-clark', or 'hybrid'")
	}

	/////////////////////////////////
	// Catalog
	{
		pyCatalogType.Dict["Put"] = py.MustNewMethod("Put", py_Catalog_Put, 0, "")
		pyCatalogType.Dict["Get"] = py.MustNewMethod("Get", py_Catalog_Get, 0, "")
		pyCatalogType.Dict["Close"] = py.MustNewMethod("Close", py_Catalog_Close, 0, "")
	}

	{
		methods := []*py.Method{
			py.MustNewMethod("NewMesh", py_NewMesh, 0, ""),
			py.MustNewMethod("Cube", py_Cube, 0, ""),
			py.MustNewMethod("Load", py_Load, 0, "reads a .sm file"),
			py.MustNewMethod("OpenCatalog", py_OpenCatalog, 0, ""),
		}

		globals := py.StringDict{
			"LIB_VERSION": py.String(LIB_VERSION),
			"READ_ONLY":   py.Int(READ_ONLY),
		}

		py.RegisterModule(&py.ModuleImpl{
			Info: py.ModuleInfo{
				Name: "_pymesh",
				Doc:  "mesh kernel gpython module",
			},
			Methods: methods,
			Globals: globals,
		})
	}
}
