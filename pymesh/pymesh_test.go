package pymesh_test

import (
	"path/filepath"
	"testing"

	_ "github.com/fine-structures/fine-mesh/pymesh"
	"github.com/go-python/gpython/py"
	_ "github.com/go-python/gpython/stdlib"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, src string) py.StringDict {
	t.Helper()
	ctx := py.NewContext(py.DefaultContextOpts())
	defer func() {
		ctx.Close()
		<-ctx.Done()
	}()

	mod, err := py.RunSrc(ctx, src, "<test>", nil)
	if err != nil {
		py.TracebackDump(err)
	}
	require.NoError(t, err)
	return mod.Globals
}

func TestScriptMeshOps(t *testing.T) {
	globals := runScript(t, `
import _pymesh

M = _pymesh.NewMesh()
for p in [(0, 0, 0), (1, 0, 0), (1, 1, 0), (0, 1, 0)]:
    M.AddVertex(p)
M.AddQuad(0, 1, 2, 3)
kind = M.CheckType()
mid = M.SplitEdge(0, 1)
nverts = M.NumVerts()

cube = _pymesh.Cube(True)
sils = cube.Silhouettes((5.0, 0.5, 0.5), 1)
comps = len(cube.Components())
verts, edges = cube.Subdivide("catmull-clark")
nsub = len(verts) + len(edges)
`)
	require.Equal(t, py.String("OPEN_SURFACE"), globals["kind"])
	require.Equal(t, py.Int(4), globals["mid"])
	require.Equal(t, py.Int(5), globals["nverts"])
	require.Equal(t, py.Int(1), globals["comps"])
	require.Equal(t, py.Int(8+18), globals["nsub"])

	sils, ok := globals["sils"].(*py.List)
	require.True(t, ok)
	require.NotZero(t, len(sils.Items))
}

func TestScriptSaveAndCatalog(t *testing.T) {
	dir := t.TempDir()
	src := `
import _pymesh

cube = _pymesh.Cube(False)
cube.Save("` + filepath.ToSlash(filepath.Join(dir, "box.sm")) + `")
again = _pymesh.Load("` + filepath.ToSlash(filepath.Join(dir, "box.sm")) + `")
nfaces = again.NumFaces()

cat = _pymesh.OpenCatalog("")
meshID = cat.Put(again, "box")
byName = cat.Get("box").NumVerts()
byID = cat.Get(meshID).NumEdges()
cat.Close()
`
	globals := runScript(t, src)
	require.Equal(t, py.Int(12), globals["nfaces"])
	require.Equal(t, py.Int(8), globals["byName"])
	require.Equal(t, py.Int(18), globals["byID"])
}
