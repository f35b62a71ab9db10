// Package smfile reads and writes meshes in the .sm format, in both its tagged and legacy forms.
package smfile

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"
)

// ReadFile loads the .sm file at pathname into a new mesh named after the file.
func ReadFile(pathname string, cfg go2mesh.Config) (*libmesh.Mesh, error) {
	file, err := os.Open(pathname)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", pathname)
	}
	defer file.Close()

	M := libmesh.NewMesh(cfg)
	if err := read(pathname, bufio.NewReader(file), M, cfg); err != nil {
		return nil, errors.Wrapf(err, "reading %q", pathname)
	}
	if M.Name() == "" {
		M.SetName(meshName(pathname))
	}
	return M, nil
}

// Read replaces the contents of M with the mesh read from r, telling the tagged and legacy forms apart by the
// first non-space character: a digit or '#' starts the legacy form.
func Read(r io.Reader, M *libmesh.Mesh, cfg go2mesh.Config) error {
	return read("", r, M, cfg)
}

func read(filename string, r io.Reader, M *libmesh.Mesh, cfg go2mesh.Config) error {
	if M == nil {
		return go2mesh.ErrNilMesh
	}
	buf, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	src := bytes.TrimLeftFunc(buf, unicode.IsSpace)
	if len(src) == 0 {
		return errors.Wrap(go2mesh.ErrBadHeader, "empty input")
	}

	var file *smFile
	switch c := rune(src[0]); {
	case c == '#' || c == '-' || c == '+' || c == '.' || unicode.IsDigit(c):
		file, err = parseLegacy(filename, bytes.NewReader(src))
	case unicode.IsLetter(c):
		file, err = parseSM.ParseBytes(filename, src)
		if err == nil && file.Header != "BMESH" && file.Header != "LMESH" {
			err = errors.Wrapf(go2mesh.ErrBadHeader, "unknown mesh class %q", file.Header)
		}
	default:
		err = errors.Wrapf(go2mesh.ErrBadHeader, "unreadable first character %q", c)
	}
	if err != nil {
		return err
	}

	M.Init(cfg)
	load(M, file)
	return nil
}

// load builds M from a parsed file.  Sections are applied in dependency order no matter how the file orders
// them; bad records are logged and skipped.
func load(M *libmesh.Mesh, file *smFile) {
	var all section
	var patches []*patchDef
	for _, sec := range file.Sections {
		all.Vertices = append(all.Vertices, sec.Vertices...)
		all.Faces = append(all.Faces, sec.Faces...)
		all.UVFaces = append(all.UVFaces, sec.UVFaces...)
		all.Creases = append(all.Creases, sec.Creases...)
		all.Polylines = append(all.Polylines, sec.Polylines...)
		all.WeakEdges = append(all.WeakEdges, sec.WeakEdges...)
		all.Secondary = append(all.Secondary, sec.Secondary...)
		all.Colors = append(all.Colors, sec.Colors...)
		if sec.Patch != nil {
			patches = append(patches, sec.Patch)
		}
	}

	for _, p := range all.Vertices {
		M.AddVertex(r3.Vec{X: p.X, Y: p.Y, Z: p.Z})
	}

	for _, t := range all.Faces {
		switch len(t.Idx) {
		case 3:
			M.AddFaceByIndex(t.Idx[0], t.Idx[1], t.Idx[2], nil)
		case 4:
			M.AddQuadByIndex(t.Idx[0], t.Idx[1], t.Idx[2], t.Idx[3], nil)
		case 0:
			// reported when parsed
		default:
			klog.Warningf("smfile: face %v: %v", t.Idx, go2mesh.ErrBadPolygon)
		}
	}

	for _, uvf := range all.UVFaces {
		loadUVFace(M, uvf)
	}
	if res := M.Config().UVResolution; res > 0 {
		M.UV().Round(res)
	}

	for _, t := range all.Creases {
		if len(t.Idx) < 2 {
			continue
		}
		e := M.LookupEdgeByIndex(t.Idx[0], t.Idx[1])
		if e == nil {
			klog.Warningf("smfile: crease %v: no such edge", t.Idx)
			continue
		}
		crease := libmesh.CreaseMax
		if len(t.Idx) > 2 && t.Idx[2] > 0 && t.Idx[2] < int(libmesh.CreaseMax) {
			crease = uint16(t.Idx[2])
		}
		e.SetCrease(crease)
	}

	for _, t := range all.Polylines {
		if len(t.Idx) == 2 {
			M.AddEdgeByIndex(t.Idx[0], t.Idx[1])
		}
	}

	for _, t := range all.WeakEdges {
		if len(t.Idx) != 2 {
			continue
		}
		if e := M.LookupEdgeByIndex(t.Idx[0], t.Idx[1]); e != nil {
			e.SetWeak(true)
		} else {
			klog.Warningf("smfile: weak edge %v: no such edge", t.Idx)
		}
	}

	if len(all.Secondary) > 0 {
		var layer []*libmesh.Face
		for _, t := range all.Secondary {
			if len(t.Idx) != 3 {
				continue
			}
			if f := M.LookupFaceByIndex(t.Idx[0], t.Idx[1], t.Idx[2]); f != nil {
				layer = append(layer, f)
			}
		}
		M.PushLayer(layer)
		M.FixMulti()
	}

	for i, c := range all.Colors {
		if v := M.BV(i); v != nil {
			v.SetColor(go2mesh.Color{R: c.X, G: c.Y, B: c.Z})
		}
	}
	if len(all.Colors) > 0 {
		M.Changed(go2mesh.VertColorsChanged)
	}

	for _, def := range patches {
		loadPatch(M, def)
	}

	M.Changed(go2mesh.TopologyChanged)
	if M.Config().BuildVertStrips && M.Type().IsPoints() {
		M.VertStrips()
	}
	M.MakePatchIfNeeded()
	M.CleanPatches()
}

func loadUVFace(M *libmesh.Mesh, uvf *uvFace) {
	if uvf.Verts == nil || len(uvf.Verts.Idx) != len(uvf.UVs) {
		klog.Warningf("smfile: uvface: vertex and uv counts differ")
		return
	}
	idx := uvf.Verts.Idx
	uv := make([]libmesh.UV, len(uvf.UVs))
	for i, c := range uvf.UVs {
		uv[i] = libmesh.UV{U: c.U, V: c.V}
	}
	if len(idx) != 3 && len(idx) != 4 {
		klog.Warningf("smfile: uvface %v: %v", idx, go2mesh.ErrBadPolygon)
		return
	}
	// legacy texture blocks refer to faces already added
	f := M.LookupFaceByIndex(idx[0], idx[1], idx[2])
	switch len(idx) {
	case 3:
		if f == nil {
			f = M.AddFaceByIndex(idx[0], idx[1], idx[2], nil)
		}
		if f != nil {
			M.UV().SetFace(f, M.BV(idx[0]), M.BV(idx[1]), M.BV(idx[2]), uv[0], uv[1], uv[2])
		}
	case 4:
		if f != nil || M.AddQuadByIndex(idx[0], idx[1], idx[2], idx[3], nil) != nil {
			M.UV().SetQuad(M.BV(idx[0]), M.BV(idx[1]), M.BV(idx[2]), M.BV(idx[3]), uv[0], uv[1], uv[2], uv[3])
		}
	}
}

// loadPatch creates a patch from its definition.  A patch listing no faces takes every face not yet in a patch.
func loadPatch(M *libmesh.Mesh, def *patchDef) {
	p := M.NewPatch()
	var faces *tuple
	for _, tag := range def.Tags {
		switch {
		case tag.Name != nil:
			p.SetName(*tag.Name)
		case tag.Color != nil:
			p.SetColor(go2mesh.Color{R: tag.Color.X, G: tag.Color.Y, B: tag.Color.Z})
		case tag.Faces != nil:
			faces = tag.Faces
		}
	}
	if faces == nil || len(faces.Idx) == 0 {
		for _, f := range M.Faces() {
			if f.Patch() == nil {
				p.Add(f)
			}
		}
		return
	}
	for _, k := range faces.Idx {
		if f := M.BF(k); f != nil {
			p.Add(f)
		} else {
			klog.Warningf("smfile: patch %q: %v %d", p.Name(), go2mesh.ErrBadFaceIndex, k)
		}
	}
}

func meshName(pathname string) string {
	base := filepath.Base(pathname)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
