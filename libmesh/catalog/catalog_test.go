package catalog_test

import (
	"path/filepath"
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/fine-structures/fine-mesh/libmesh/catalog"
	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func labeledCube() *libmesh.Mesh {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), true)
	M.SetName("cube")
	M.BE(0).SetCrease(7)
	lid := M.NewPatch()
	lid.SetName("lid")
	lid.SetColor(go2mesh.Color{R: 0.5, G: 0.5, B: 1})
	lid.Add(M.BF(0))
	lid.Add(M.BF(0).QuadPartner())
	for _, v := range M.Verts() {
		v.SetColor(go2mesh.Color{R: 1, G: 0, B: 0})
	}
	return M
}

func TestMeshDefWire(t *testing.T) {
	def := catalog.Snapshot(labeledCube())
	buf, err := proto.Marshal(def)
	require.NoError(t, err)

	var got catalog.MeshDef
	require.NoError(t, proto.Unmarshal(buf, &got))
	require.Equal(t, def, &got)

	var state catalog.CatalogState
	require.Error(t, proto.Unmarshal([]byte{0x0a, 0x05, 0x01}, &state))
}

func TestSnapshotRestore(t *testing.T) {
	M := labeledCube()
	R, err := catalog.Restore(catalog.Snapshot(M), go2mesh.DefaultConfig())
	require.NoError(t, err)

	require.Equal(t, "cube", R.Name())
	require.Equal(t, M.NumVerts(), R.NumVerts())
	require.Equal(t, M.NumEdges(), R.NumEdges())
	require.Equal(t, M.NumFaces(), R.NumFaces())
	require.NoError(t, R.CheckInvariants())
	for _, f := range R.Faces() {
		require.True(t, f.IsQuad())
	}
	e := M.BE(0)
	require.Equal(t, uint16(7), R.LookupEdgeByIndex(e.V1().Index(), e.V2().Index()).CreaseVal())
	require.Equal(t, go2mesh.Color{R: 1, G: 0, B: 0}, R.BV(3).Color())

	require.Equal(t, M.NumPatches(), R.NumPatches())
	lid := R.PatchByName("lid")
	require.NotNil(t, lid)
	require.Equal(t, 2, lid.NumFaces())
	require.Equal(t, go2mesh.Color{R: 0.5, G: 0.5, B: 1}, lid.Color())
	require.Equal(t, lid, R.BF(0).Patch())
}

func TestRestoreRejectsBadDefs(t *testing.T) {
	_, err := catalog.Restore(&catalog.MeshDef{Coords: []float64{1, 2}}, go2mesh.DefaultConfig())
	require.ErrorIs(t, err, go2mesh.ErrBadVertIndex)

	_, err = catalog.Restore(&catalog.MeshDef{
		Coords: []float64{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Faces:  []uint32{0, 1, 9},
	}, go2mesh.DefaultConfig())
	require.ErrorIs(t, err, go2mesh.ErrBadFaceIndex)
}

func TestCatalogBasics(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	id, err := cat.Put("", labeledCube())
	require.NoError(t, err)
	require.Equal(t, 1, cat.NumMeshes())

	tri := libmesh.NewGrid(go2mesh.DefaultConfig(), 2, 2, false)
	id2, err := cat.Put("grid", tri)
	require.NoError(t, err)
	require.NotEqual(t, id, id2)

	M, err := cat.Get(id)
	require.NoError(t, err)
	require.Equal(t, "cube", M.Name())
	require.Equal(t, 12, M.NumFaces())

	G, err := cat.GetByName("grid")
	require.NoError(t, err)
	require.Equal(t, tri.NumFaces(), G.NumFaces())

	_, err = cat.Get(uuid.New())
	require.ErrorIs(t, err, go2mesh.ErrMeshNotFound)
	_, err = cat.GetByName("nope")
	require.ErrorIs(t, err, go2mesh.ErrMeshNotFound)

	names := map[uuid.UUID]string{}
	require.NoError(t, cat.List(func(id uuid.UUID, name string) bool {
		names[id] = name
		return true
	}))
	require.Equal(t, map[uuid.UUID]string{id: "cube", id2: "grid"}, names)

	require.NoError(t, cat.Delete(id))
	require.Equal(t, 1, cat.NumMeshes())
	_, err = cat.GetByName("cube")
	require.ErrorIs(t, err, go2mesh.ErrMeshNotFound)
	require.ErrorIs(t, cat.Delete(id), go2mesh.ErrMeshNotFound)

	_, err = cat.Put("", nil)
	require.ErrorIs(t, err, go2mesh.ErrNilMesh)
}

func TestNameRepointsToNewest(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	old, err := cat.Put("shape", libmesh.NewCube(go2mesh.DefaultConfig(), false))
	require.NoError(t, err)
	_, err = cat.Put("shape", libmesh.NewGrid(go2mesh.DefaultConfig(), 1, 1, false))
	require.NoError(t, err)

	M, err := cat.GetByName("shape")
	require.NoError(t, err)
	require.Equal(t, 2, M.NumFaces())

	// deleting the older mesh leaves the name alone
	require.NoError(t, cat.Delete(old))
	_, err = cat.GetByName("shape")
	require.NoError(t, err)
}

func TestMeshStreamIntoCatalog(t *testing.T) {
	cat, err := catalog.Open(catalog.Opts{})
	require.NoError(t, err)
	defer cat.Close()

	a := libmesh.NewCube(go2mesh.DefaultConfig(), true)
	a.SetName("a")
	b := libmesh.NewGrid(go2mesh.DefaultConfig(), 3, 3, true)
	b.SetName("b")
	libmesh.StreamMeshes(a, b).AddTo(cat, libmesh.AddMeshOpts{}).PullAll()
	require.Equal(t, 2, cat.NumMeshes())

	onHit := make(chan *libmesh.Mesh)
	done := make(chan struct{})
	var selErr error
	go func() {
		selErr = cat.Select("b", onHit, done)
		close(onHit)
	}()
	var got []string
	for M := range onHit {
		got = append(got, M.Name())
	}
	close(done)
	require.NoError(t, selErr)
	require.Equal(t, []string{"b"}, got)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	opts := catalog.Opts{DbPathName: filepath.Join(dir, "meshes")}

	cat, err := catalog.Open(opts)
	require.NoError(t, err)
	id, err := cat.Put("cube", libmesh.NewCube(go2mesh.DefaultConfig(), true))
	require.NoError(t, err)
	require.NoError(t, cat.Close())

	opts.ReadOnly = true
	cat, err = catalog.Open(opts)
	require.NoError(t, err)
	defer cat.Close()
	require.Equal(t, 1, cat.NumMeshes())

	M, err := cat.Get(id)
	require.NoError(t, err)
	require.Equal(t, 12, M.NumFaces())

	_, err = cat.Put("more", M)
	require.ErrorIs(t, err, go2mesh.ErrReadOnly)

	_, err = catalog.Open(catalog.Opts{ReadOnly: true})
	require.ErrorIs(t, err, go2mesh.ErrBadCatalogParam)
}
