package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/fine-structures/fine-mesh/libmesh/catalog"
	smfile "github.com/fine-structures/fine-mesh/libmesh/sm-file"
	"github.com/go-python/gpython/py"
	"github.com/stretchr/testify/require"
)

func TestImportFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := go2mesh.DefaultConfig()

	var pathnames []string
	for _, name := range []string{"cube", "grid"} {
		M := libmesh.NewCube(cfg, true)
		if name == "grid" {
			M = libmesh.NewGrid(cfg, 2, 3, false)
		}
		pathname := filepath.Join(dir, name+".sm")
		require.NoError(t, smfile.WriteFile(pathname, M))
		pathnames = append(pathnames, pathname)
	}

	catDir := filepath.Join(dir, "catalog")
	require.NoError(t, importFiles("", catDir, pathnames))

	cat, err := catalog.Open(catalog.Opts{DbPathName: catDir, ReadOnly: true})
	require.NoError(t, err)
	defer cat.Close()
	require.Equal(t, 2, cat.NumMeshes())

	M, err := cat.GetByName("grid")
	require.NoError(t, err)
	require.Equal(t, 12, M.NumFaces())
	M, err = cat.GetByName("cube")
	require.NoError(t, err)
	require.Equal(t, 8, M.NumVerts())

	err = importFiles("", catDir, []string{filepath.Join(dir, "missing.sm")})
	require.ErrorIs(t, err, os.ErrNotExist)

	badCfg := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badCfg, []byte("swap_dot_thresh: 4\n"), 0644))
	require.ErrorIs(t, importFiles(badCfg, catDir, pathnames), go2mesh.ErrBadConfig)
}

func TestScriptOutput(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "count.py")
	require.NoError(t, os.WriteFile(script, []byte(`
import _pymesh
M = _pymesh.Cube(False)
print(M.NumVerts(), M.NumEdges(), M.NumFaces())
print(M.CheckType())
`), 0644))

	ctx := py.NewContext(py.DefaultContextOpts())
	outPath := filepath.Join(dir, "count.txt")
	out, err := os.Create(outPath)
	require.NoError(t, err)

	sys := ctx.Store().MustGetModule("sys")
	sys.Globals["stdout"] = &py.File{
		File:     out,
		FileMode: py.FileWrite,
	}
	_, err = py.RunFile(ctx, script, py.CompileOpts{}, nil)
	ctx.Close()
	<-ctx.Done()
	require.NoError(t, err)
	require.NoError(t, out.Close())

	buf, err := os.ReadFile(outPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(buf)), "\n")
	require.Equal(t, []string{"8 18 12", "CLOSED_SURFACE"}, lines)
}

func TestRunPython(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.py")
	require.NoError(t, os.WriteFile(good, []byte("import _pymesh\nassert _pymesh.Cube(True).NumFaces() == 12\n"), 0644))
	require.NoError(t, runPython(good, ""))

	bad := filepath.Join(dir, "bad.py")
	require.NoError(t, os.WriteFile(bad, []byte("import _pymesh\n_pymesh.Cube(True).Subdivide(\"butterfly\")\n"), 0644))
	require.Error(t, runPython(bad, ""))
}
