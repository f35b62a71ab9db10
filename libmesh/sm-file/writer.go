package smfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/pkg/errors"
)

// WriteFile writes M to pathname in the tagged form.
func WriteFile(pathname string, M *libmesh.Mesh) error {
	file, err := os.Create(pathname)
	if err != nil {
		return errors.Wrapf(err, "creating %q", pathname)
	}
	err = Write(file, M)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return errors.Wrapf(err, "writing %q", pathname)
}

type smWriter struct {
	*bufio.Writer
	M *libmesh.Mesh

	// index each face will have when the file is read back; quads are written once but load as two faces
	reload map[*libmesh.Face]int
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}

func (w *smWriter) vec(x, y, z float64) {
	fmt.Fprintf(w, "{%s %s %s}", fmtFloat(x), fmtFloat(y), fmtFloat(z))
}

func (w *smWriter) idx(vals ...int) {
	w.WriteByte('{')
	for i, v := range vals {
		if i > 0 {
			w.WriteByte(' ')
		}
		w.WriteString(strconv.Itoa(v))
	}
	w.WriteByte('}')
}

// Write emits M in the tagged form:
//
//	LMESH {
//	  vertices { {x y z} ... }
//	  faces { {i j k} {i j k l} ... }
//	  ...
//	}
//
// Quads are written as 4-tuples.  A patch whose faces are exactly those not claimed by the patches written
// before it is written without a face list.
func Write(out io.Writer, M *libmesh.Mesh) error {
	w := &smWriter{
		Writer: bufio.NewWriter(out),
		M:      M,
		reload: make(map[*libmesh.Face]int, M.NumFaces()),
	}
	w.WriteString("LMESH {\n")

	w.WriteString("  vertices {")
	for _, v := range M.Verts() {
		w.WriteString("\n    ")
		p := v.Loc()
		w.vec(p.X, p.Y, p.Z)
	}
	w.WriteString("\n  }\n")

	uv := M.UV()
	w.writeFaces("faces", func(f *libmesh.Face) bool {
		if f.IsQuad() {
			return !uv.QuadHasUV(f)
		}
		return !uv.HasUV(f)
	})
	w.writeFaces("uvfaces", func(f *libmesh.Face) bool {
		if f.IsQuad() {
			return uv.QuadHasUV(f)
		}
		return uv.HasUV(f)
	})

	w.writeEdges("creases", libmesh.CreaseFilter, true)
	w.writeEdges("polylines", libmesh.PolylineFilter, false)
	w.writeEdges("weak_edges", looseWeakFilter, false)

	if secondary := M.FacesOf(libmesh.SecondaryFaceFilter); len(secondary) > 0 {
		w.WriteString("  secondary_faces {")
		for _, f := range secondary {
			w.WriteString(" ")
			w.idx(f.V(0).Index(), f.V(1).Index(), f.V(2).Index())
		}
		w.WriteString(" }\n")
	}

	if M.NumVerts() > 0 && M.BV(0).HasColor() {
		w.WriteString("  colors {")
		for _, v := range M.Verts() {
			w.WriteString("\n    ")
			c := v.Color()
			w.vec(c.R, c.G, c.B)
		}
		w.WriteString("\n  }\n")
	}

	w.writePatches()
	w.WriteString("}\n")
	return w.Flush()
}

// writeFaces writes the faces accepted by include, assigning each its reload index.
func (w *smWriter) writeFaces(tag string, include func(f *libmesh.Face) bool) {
	var faces []*libmesh.Face
	for _, f := range w.M.Faces() {
		if f.IsQuad() && !f.IsQuadRep() {
			continue
		}
		if include(f) {
			faces = append(faces, f)
		}
	}
	if len(faces) == 0 {
		return
	}
	uv := w.M.UV()
	fmt.Fprintf(w, "  %s {", tag)
	for _, f := range faces {
		w.WriteString("\n    ")
		if tag == "uvfaces" {
			w.WriteByte('{')
		}
		var verts []*libmesh.Vertex
		if a, b, c, d := f.QuadVerts(); f.IsQuad() && a != nil {
			verts = []*libmesh.Vertex{a, b, c, d}
			w.reload[f] = len(w.reload)
			w.reload[f.QuadPartner()] = len(w.reload)
		} else {
			verts = []*libmesh.Vertex{f.V(0), f.V(1), f.V(2)}
			w.reload[f] = len(w.reload)
		}
		idx := make([]int, len(verts))
		for i, v := range verts {
			idx[i] = v.Index()
		}
		w.idx(idx...)
		if tag == "uvfaces" {
			w.WriteString(" {")
			for i, v := range verts {
				face := f
				if i == 3 {
					face = f.QuadPartner()
				}
				c, _ := uv.Get(v, face)
				fmt.Fprintf(w, "{%s %s}", fmtFloat(c.U), fmtFloat(c.V))
			}
			w.WriteString("}}")
		}
	}
	w.WriteString("\n  }\n")
}

// looseWeakFilter accepts weak edges that are not the diagonal of a quad, since quads are written whole.
var looseWeakFilter = libmesh.EdgeFilterFunc(func(e *libmesh.Edge) bool {
	return e.IsWeak() && (e.F1() == nil || !e.F1().IsQuad())
})

func (w *smWriter) writeEdges(tag string, filter libmesh.SimplexFilter, withCrease bool) {
	edges := w.M.EdgesOf(filter)
	if len(edges) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s {", tag)
	for _, e := range edges {
		w.WriteString(" ")
		if withCrease && e.CreaseVal() != libmesh.CreaseMax {
			w.idx(e.V1().Index(), e.V2().Index(), int(e.CreaseVal()))
		} else {
			w.idx(e.V1().Index(), e.V2().Index())
		}
	}
	w.WriteString(" }\n")
}

func (w *smWriter) writePatches() {
	claimed := make(map[*libmesh.Face]bool, w.M.NumFaces())
	for _, p := range w.M.Patches() {
		if p.NumFaces() == 0 {
			continue
		}
		w.WriteString("  patch {")
		if p.Name() != "" {
			fmt.Fprintf(w, " patchname %q", p.Name())
		}
		if p.HasColor() {
			c := p.Color()
			w.WriteString(" color ")
			w.vec(c.R, c.G, c.B)
		}

		rest := 0
		for _, f := range w.M.Faces() {
			if !claimed[f] {
				rest++
			}
		}
		if p.NumFaces() != rest {
			idx := make([]int, 0, p.NumFaces())
			for _, f := range p.Faces() {
				idx = append(idx, w.reload[f])
			}
			w.WriteString(" faces ")
			w.idx(idx...)
		}
		for _, f := range p.Faces() {
			claimed[f] = true
		}
		w.WriteString(" }\n")
	}
}
