package smfile_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	smfile "github.com/fine-structures/fine-mesh/libmesh/sm-file"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func readString(t *testing.T, src string) *libmesh.Mesh {
	t.Helper()
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	require.NoError(t, smfile.Read(strings.NewReader(src), M, go2mesh.DefaultConfig()))
	return M
}

func roundTrip(t *testing.T, M *libmesh.Mesh) *libmesh.Mesh {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, smfile.Write(&buf, M))
	require.True(t, strings.HasPrefix(buf.String(), "LMESH {"))
	return readString(t, buf.String())
}

// patchFaces returns the sorted vertex-index triples of p's faces.
func patchFaces(p *libmesh.Patch) []string {
	var ret []string
	for _, f := range p.Faces() {
		t := [3]int{f.V(0).Index(), f.V(1).Index(), f.V(2).Index()}
		for t[0] > t[1] || t[0] > t[2] {
			t = [3]int{t[1], t[2], t[0]}
		}
		ret = append(ret, fmt.Sprint(t))
	}
	sort.Strings(ret)
	return ret
}

func TestRoundTripQuadCube(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), true)
	require.Equal(t, 1, M.NumPatches())
	M.Patches()[0].SetName("body")

	// move one quad into its own patch
	lid := M.NewPatch()
	lid.SetName("lid")
	lid.SetColor(go2mesh.Color{R: 1, G: 0.5, B: 0})
	f := M.BF(0)
	lid.Add(f)
	lid.Add(f.QuadPartner())

	e := M.BE(0)
	e.SetCrease(3)
	M.BE(1).SetCrease(libmesh.CreaseMax)

	R := roundTrip(t, M)
	require.Equal(t, 8, R.NumVerts())
	require.Equal(t, 12, R.NumFaces())
	require.Equal(t, M.NumEdges(), R.NumEdges())
	for _, f := range R.Faces() {
		require.True(t, f.IsQuad(), "face %v", f)
	}
	for i, v := range M.Verts() {
		require.Equal(t, v.Loc(), R.BV(i).Loc())
	}

	e2 := R.LookupEdgeByIndex(e.V1().Index(), e.V2().Index())
	require.NotNil(t, e2)
	require.Equal(t, uint16(3), e2.CreaseVal())
	e1 := R.LookupEdgeByIndex(M.BE(1).V1().Index(), M.BE(1).V2().Index())
	require.Equal(t, libmesh.CreaseMax, e1.CreaseVal())
	require.Len(t, R.Creases().Edges(), 2)

	require.Equal(t, 2, R.NumPatches())
	body, rlid := R.PatchByName("body"), R.PatchByName("lid")
	require.NotNil(t, body)
	require.NotNil(t, rlid)
	require.Equal(t, 10, body.NumFaces())
	require.Equal(t, 2, rlid.NumFaces())
	require.True(t, rlid.HasColor())
	require.Equal(t, go2mesh.Color{R: 1, G: 0.5, B: 0}, rlid.Color())
	require.Equal(t, patchFaces(lid), patchFaces(rlid))
}

func TestWriteOmitsUnclaimedFaceList(t *testing.T) {
	M := libmesh.NewCube(go2mesh.DefaultConfig(), false)
	var buf bytes.Buffer
	require.NoError(t, smfile.Write(&buf, M))
	require.Contains(t, buf.String(), "patch {")
	require.NotRegexp(t, `patch \{.* faces \{`, buf.String())
	require.NotContains(t, buf.String(), "weak_edges")

	R := readString(t, buf.String())
	require.Equal(t, 1, R.NumPatches())
	require.Equal(t, 12, R.Patches()[0].NumFaces())
}

func TestRoundTripColorsAndUVs(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	M.AddVertex(r3.Vec{X: 0, Y: 0})
	M.AddVertex(r3.Vec{X: 1, Y: 0})
	M.AddVertex(r3.Vec{X: 1, Y: 1})
	M.AddVertex(r3.Vec{X: 0, Y: 1})
	M.AddVertex(r3.Vec{X: 2, Y: 0})
	q := M.AddQuadByIndex(0, 1, 2, 3, nil)
	require.NotNil(t, q)
	require.True(t, M.UV().SetQuad(M.BV(0), M.BV(1), M.BV(2), M.BV(3),
		libmesh.UV{U: 0, V: 0}, libmesh.UV{U: 1, V: 0}, libmesh.UV{U: 1, V: 1}, libmesh.UV{U: 0, V: 1}))
	tri := M.AddFaceByIndex(1, 4, 2, nil)
	require.NotNil(t, tri)
	for i, v := range M.Verts() {
		v.SetColor(go2mesh.Color{R: float64(i) / 4, G: 0.25, B: 1})
	}
	M.MakePatchIfNeeded()

	R := roundTrip(t, M)
	require.Equal(t, 5, R.NumVerts())
	require.Equal(t, 3, R.NumFaces())
	for i, v := range R.Verts() {
		require.True(t, v.HasColor())
		require.Equal(t, go2mesh.Color{R: float64(i) / 4, G: 0.25, B: 1}, v.Color())
	}

	rq := R.LookupFaceByIndex(0, 1, 2)
	require.NotNil(t, rq)
	require.True(t, R.UV().QuadHasUV(rq))
	uv, ok := R.UV().Get(R.BV(2), rq)
	require.True(t, ok)
	require.Equal(t, libmesh.UV{U: 1, V: 1}, uv)

	rt := R.LookupFaceByIndex(1, 4, 2)
	require.NotNil(t, rt)
	require.False(t, rt.IsQuad())
	require.False(t, R.UV().HasUV(rt))
}

const legacySquare = `#mesh
4
0 0 0
1 0 0
1 1 0
0 1 0
2
0 1 2
0 2 3
1
0 1
0
#BEGIN COLORS
1 0 0
0 1 0
0 0 1
1 1 1
#END COLORS
#BEGIN WEAK_EDGES
1
0 2
#END WEAK_EDGES
#BEGIN PATCH
1
1
#END PATCH
#BEGIN MYSTERY
1 2 3 stuff
#END MYSTERY
`

func TestReadLegacy(t *testing.T) {
	M := readString(t, legacySquare)
	require.Equal(t, 4, M.NumVerts())
	require.Equal(t, 2, M.NumFaces())
	require.True(t, M.BF(0).IsQuad())
	require.True(t, M.LookupEdgeByIndex(0, 1).IsCrease())
	require.Equal(t, go2mesh.Color{R: 0, G: 0, B: 1}, M.BV(2).Color())

	// the PATCH block claims face 1; face 0 lands in a patch of its own
	require.Equal(t, 2, M.NumPatches())
	require.Equal(t, M.Patches()[0], M.BF(1).Patch())
	require.NotNil(t, M.BF(0).Patch())
	require.NotEqual(t, M.BF(0).Patch(), M.BF(1).Patch())
}

func TestReadLegacyTexCoords(t *testing.T) {
	M := readString(t, `3
0 0 0
1 0 0
0 1 0
1
0 1 2
0
0
#BEGIN TEX_COORDS2
1
0 0 0 1 0 0 1
#END TEX_COORDS2
`)
	require.Equal(t, 1, M.NumFaces())
	uv, ok := M.UV().Get(M.BV(1), M.BF(0))
	require.True(t, ok)
	require.Equal(t, libmesh.UV{U: 1, V: 0}, uv)
}

func TestReadLegacySkipsMalformedRecords(t *testing.T) {
	M := readString(t, `5
0 0 0
1 0 0
1 1 0
0 1 0
1 two 0
3
0 1 2
0 2 oops
0 2 3
1
0 1
0
#BEGIN TEX_COORDS2
1
2 0 0 1 1 0 1
#END TEX_COORDS2
`)
	require.Equal(t, 4, M.NumVerts())
	require.Equal(t, 2, M.NumFaces())
	require.True(t, M.LookupEdgeByIndex(0, 1).IsCrease())

	// face 2 in the file is still face 2 once the bad record is dropped
	f := M.LookupFaceByIndex(0, 2, 3)
	require.NotNil(t, f)
	uv, ok := M.UV().Get(M.BV(3), f)
	require.True(t, ok)
	require.Equal(t, libmesh.UV{U: 0, V: 1}, uv)
}

func TestBadHeaders(t *testing.T) {
	M := libmesh.NewMesh(go2mesh.DefaultConfig())
	err := smfile.Read(strings.NewReader("#jot\n3\n"), M, go2mesh.DefaultConfig())
	require.ErrorIs(t, err, go2mesh.ErrBadHeader)

	err = smfile.Read(strings.NewReader("TEXBODY { }"), M, go2mesh.DefaultConfig())
	require.ErrorIs(t, err, go2mesh.ErrBadHeader)

	err = smfile.Read(strings.NewReader("   "), M, go2mesh.DefaultConfig())
	require.ErrorIs(t, err, go2mesh.ErrBadHeader)

	require.ErrorIs(t, smfile.Read(strings.NewReader("LMESH { }"), nil, go2mesh.DefaultConfig()), go2mesh.ErrNilMesh)
}

func TestReadTagged(t *testing.T) {
	M := readString(t, `
BMESH {
  // faces may come before their vertices
  faces { {0 1} {0 1 2} {0 2 3} }
  vertices { {0 0 0} {1 0 0} {1 1 0} {0 1 0} }
  polylines { {3 1} }
  secondary_faces { {0 2 3} }
  patch { patchname "first" faces { 0 } }
  patch { }
}`)
	require.Equal(t, 4, M.NumVerts())
	require.Equal(t, 2, M.NumFaces())
	require.NotNil(t, M.LookupEdgeByIndex(3, 1))
	require.True(t, M.LookupEdgeByIndex(3, 1).IsPolyline())

	sec := M.FacesOf(libmesh.SecondaryFaceFilter)
	require.Len(t, sec, 1)
	require.Equal(t, M.LookupFaceByIndex(0, 2, 3), sec[0])

	// the empty patch takes the face the first left unclaimed
	require.Equal(t, 2, M.NumPatches())
	first := M.PatchByName("first")
	require.NotNil(t, first)
	require.Equal(t, first, M.BF(0).Patch())
	require.NotEqual(t, first, M.BF(1).Patch())
}

func TestEmptyDefaultPatchDropped(t *testing.T) {
	M := readString(t, `
LMESH {
  vertices { {0 0 0} {1 0 0} {1 1 0} {0 1 0} }
  faces { {0 1 2} {0 2 3} }
  patch { patchname "all" faces { 0 1 } }
  patch { patchname "rest" }
}`)
	require.Equal(t, 1, M.NumPatches())
	require.Nil(t, M.PatchByName("rest"))
	all := M.PatchByName("all")
	require.NotNil(t, all)
	require.Equal(t, 2, all.NumFaces())

	// same for the legacy form: the 0-face PATCH block finds nothing left to claim
	M = readString(t, `4
0 0 0
1 0 0
1 1 0
0 1 0
2
0 1 2
0 2 3
0
0
#BEGIN PATCH
2
0 1
#END PATCH
#BEGIN PATCH
0
#END PATCH
`)
	require.Equal(t, 1, M.NumPatches())
	require.Equal(t, 2, M.Patches()[0].NumFaces())
}

func TestReadNoPatch(t *testing.T) {
	M := readString(t, `LMESH { vertices { {0 0 0} {1 0 0} {0 1 0} } faces { {0 1 2} } }`)
	require.Equal(t, 1, M.NumPatches())
	require.Equal(t, 1, M.Patches()[0].NumFaces())
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	pathname := filepath.Join(dir, "cube.sm")
	require.NoError(t, smfile.WriteFile(pathname, libmesh.NewCube(go2mesh.DefaultConfig(), true)))

	M, err := smfile.ReadFile(pathname, go2mesh.DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, "cube", M.Name())
	require.Equal(t, 12, M.NumFaces())

	_, err = smfile.ReadFile(filepath.Join(dir, "missing.sm"), go2mesh.DefaultConfig())
	require.ErrorIs(t, err, os.ErrNotExist)
}
