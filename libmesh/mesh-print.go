package libmesh

import (
	"fmt"
	"io"

	"github.com/fine-structures/fine-mesh/go2mesh"
)

var (
	comma   = []byte(",")
	newline = []byte("\n")
)

type PrintOpts = go2mesh.PrintOpts

// WriteAsString writes a one-line summary of this mesh followed by whatever detail opts asks for.
func (M *Mesh) WriteAsString(out io.Writer, opts PrintOpts) {
	if len(opts.Label) > 0 {
		fmt.Fprintf(out, "%s,", opts.Label)
	}
	fmt.Fprintf(out, "%q", M.name)
	if opts.Type {
		fmt.Fprintf(out, ",%v", M.Type())
	}
	if opts.Counts {
		fmt.Fprintf(out, ",v=%d,e=%d,f=%d,p=%d", len(M.vertList), len(M.edgeList), len(M.faceList), len(M.patches))
	}
	out.Write(newline)

	if opts.Patches {
		for i, p := range M.patches {
			fmt.Fprintf(out, "  patch %d %q: %d faces\n", i, p.name, len(p.faces))
		}
	}
	if opts.Verts {
		for i, v := range M.vertList {
			fmt.Fprintf(out, "  v%d %g %g %g\n", i, v.pos.X, v.pos.Y, v.pos.Z)
		}
	}
	if opts.Faces {
		for i, f := range M.faceList {
			fmt.Fprintf(out, "  f%d %d %d %d", i, f.V(0).idx, f.V(1).idx, f.V(2).idx)
			if f.IsSecondary() {
				out.Write(comma)
				io.WriteString(out, "secondary")
			}
			out.Write(newline)
		}
	}
}

func (M *Mesh) String() string {
	return fmt.Sprintf("Mesh(%q v=%d e=%d f=%d)", M.name, len(M.vertList), len(M.edgeList), len(M.faceList))
}
