package catalog

import (
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/fine-structures/fine-mesh/libmesh"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

func appendEdgeVerts(dst []uint32, edges []*libmesh.Edge) []uint32 {
	for _, e := range edges {
		dst = append(dst, uint32(e.V1().Index()), uint32(e.V2().Index()))
	}
	return dst
}

// Snapshot captures M's vertices, faces, edge labels, patches, and vertex colors.
func Snapshot(M *libmesh.Mesh) *MeshDef {
	def := &MeshDef{
		Name:   M.Name(),
		Coords: make([]float64, 0, 3*M.NumVerts()),
		Faces:  make([]uint32, 0, 3*M.NumFaces()),
	}
	for _, v := range M.Verts() {
		p := v.Loc()
		def.Coords = append(def.Coords, p.X, p.Y, p.Z)
	}
	for _, f := range M.Faces() {
		def.Faces = append(def.Faces, uint32(f.V(0).Index()), uint32(f.V(1).Index()), uint32(f.V(2).Index()))
	}

	creases := M.EdgesOf(libmesh.CreaseFilter)
	def.Creases = appendEdgeVerts(def.Creases, creases)
	for _, e := range creases {
		def.CreaseVals = append(def.CreaseVals, uint32(e.CreaseVal()))
	}
	def.WeakEdges = appendEdgeVerts(def.WeakEdges, M.EdgesOf(libmesh.WeakFilter))
	def.Polylines = appendEdgeVerts(def.Polylines, M.EdgesOf(libmesh.PolylineFilter))
	for _, f := range M.FacesOf(libmesh.SecondaryFaceFilter) {
		def.Secondary = append(def.Secondary, uint32(f.Index()))
	}

	for _, p := range M.Patches() {
		pdef := &PatchDef{
			Name:  p.Name(),
			Faces: make([]uint32, 0, p.NumFaces()),
		}
		for _, f := range p.Faces() {
			pdef.Faces = append(pdef.Faces, uint32(f.Index()))
		}
		if p.HasColor() {
			c := p.Color()
			pdef.Color = []float64{c.R, c.G, c.B}
		}
		def.Patches = append(def.Patches, pdef)
	}

	if M.NumVerts() > 0 && M.BV(0).HasColor() {
		def.Colors = make([]float64, 0, 3*M.NumVerts())
		for _, v := range M.Verts() {
			c := v.Color()
			def.Colors = append(def.Colors, c.R, c.G, c.B)
		}
	}
	return def
}

// Restore builds a new mesh from a snapshot.
func Restore(def *MeshDef, cfg go2mesh.Config) (*libmesh.Mesh, error) {
	if len(def.Coords)%3 != 0 || len(def.Faces)%3 != 0 {
		return nil, errors.Wrapf(go2mesh.ErrBadVertIndex, "mesh %q: ragged coordinate or face list", def.Name)
	}
	M := libmesh.NewMesh(cfg)
	M.SetName(def.Name)

	for i := 0; i < len(def.Coords); i += 3 {
		M.AddVertex(r3.Vec{X: def.Coords[i], Y: def.Coords[i+1], Z: def.Coords[i+2]})
	}
	for i := 0; i < len(def.Faces); i += 3 {
		if M.AddFaceByIndex(int(def.Faces[i]), int(def.Faces[i+1]), int(def.Faces[i+2]), nil) == nil {
			return nil, errors.Wrapf(go2mesh.ErrBadFaceIndex, "mesh %q: face %d", def.Name, i/3)
		}
	}

	for i := 0; i+1 < len(def.Creases); i += 2 {
		if e := M.LookupEdgeByIndex(int(def.Creases[i]), int(def.Creases[i+1])); e != nil {
			crease := libmesh.CreaseMax
			if k := i / 2; k < len(def.CreaseVals) {
				crease = uint16(def.CreaseVals[k])
			}
			e.SetCrease(crease)
		}
	}
	for i := 0; i+1 < len(def.WeakEdges); i += 2 {
		if e := M.LookupEdgeByIndex(int(def.WeakEdges[i]), int(def.WeakEdges[i+1])); e != nil {
			e.SetWeak(true)
		}
	}
	for i := 0; i+1 < len(def.Polylines); i += 2 {
		M.AddEdgeByIndex(int(def.Polylines[i]), int(def.Polylines[i+1]))
	}

	if len(def.Secondary) > 0 {
		layer := make([]*libmesh.Face, 0, len(def.Secondary))
		for _, k := range def.Secondary {
			layer = append(layer, M.BF(int(k)))
		}
		M.PushLayer(layer)
		M.FixMulti()
	}

	if len(def.Colors) == 3*M.NumVerts() {
		for i, v := range M.Verts() {
			v.SetColor(go2mesh.Color{R: def.Colors[3*i], G: def.Colors[3*i+1], B: def.Colors[3*i+2]})
		}
		M.Changed(go2mesh.VertColorsChanged)
	}

	for _, pdef := range def.Patches {
		p := M.NewPatch()
		p.SetName(pdef.Name)
		if len(pdef.Color) == 3 {
			p.SetColor(go2mesh.Color{R: pdef.Color[0], G: pdef.Color[1], B: pdef.Color[2]})
		}
		for _, k := range pdef.Faces {
			if f := M.BF(int(k)); f != nil {
				p.Add(f)
			}
		}
	}

	M.Changed(go2mesh.TopologyChanged)
	M.MakePatchIfNeeded()
	M.CleanPatches()
	return M, nil
}
