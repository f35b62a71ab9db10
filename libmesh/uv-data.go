package libmesh

import "math"

// UVData is the texture-coordinate side table of a mesh, keyed by (face, vertex).
//
// Coordinates are stored per face corner, so a vertex may carry different coordinates in different faces.
// Where adjacent faces disagree, the shared edge is a texture seam.
type UVData struct {
	faces map[FaceID]*[3]UV
}

func (uv *UVData) corners(f *Face, create bool) *[3]UV {
	if f == nil {
		return nil
	}
	c := uv.faces[f.id]
	if c == nil && create {
		if uv.faces == nil {
			uv.faces = make(map[FaceID]*[3]UV)
		}
		c = &[3]UV{}
		uv.faces[f.id] = c
	}
	return c
}

// HasUV reports if the face has texture coordinates.
func (uv *UVData) HasUV(f *Face) bool {
	return f != nil && uv.faces[f.id] != nil
}

// Set assigns the texture coordinate of v within f.
func (uv *UVData) Set(v *Vertex, f *Face, coord UV) bool {
	i := -1
	if f != nil {
		i = f.vertIndex(v)
	}
	if i < 0 {
		return false
	}
	uv.corners(f, true)[i] = coord
	return true
}

// SetFace assigns coordinates to the face corners holding u, v, and w respectively.
func (uv *UVData) SetFace(f *Face, u, v, w *Vertex, a, b, c UV) bool {
	return uv.Set(u, f, a) && uv.Set(v, f, b) && uv.Set(w, f, c)
}

// SetQuad assigns coordinates to both faces of the quad (u,v,w,x).
func (uv *UVData) SetQuad(u, v, w, x *Vertex, a, b, c, d UV) bool {
	e := u.LookupEdge(w)
	if e == nil {
		return false
	}
	f1 := e.LookupFace(v)
	f2 := e.LookupFace(x)
	if f1 == nil || f2 == nil {
		return false
	}
	return uv.SetFace(f1, u, v, w, a, b, c) && uv.SetFace(f2, u, w, x, a, c, d)
}

// Get returns the texture coordinate of v within f.
func (uv *UVData) Get(v *Vertex, f *Face) (UV, bool) {
	c := uv.corners(f, false)
	if c == nil {
		return UV{}, false
	}
	i := f.vertIndex(v)
	if i < 0 {
		return UV{}, false
	}
	return c[i], true
}

// GetVert returns the texture coordinate of v if all its faces agree on one.
func (uv *UVData) GetVert(v *Vertex) (UV, bool) {
	if uv.DiscontinuityDegree(v) > 0 {
		return UV{}, false
	}
	return uv.Get(v, v.Face())
}

// IsContinuous reports if both primary faces of e agree on the coordinates of its endpoints.
func (uv *UVData) IsContinuous(e *Edge) bool {
	if e == nil || len(uv.faces) == 0 {
		return true
	}
	f1, f2 := e.F1(), e.F2()
	has1, has2 := uv.HasUV(f1), uv.HasUV(f2)
	switch {
	case !has1 && !has2:
		return true
	case has1 && has2:
		a1, _ := uv.Get(e.V1(), f1)
		a2, _ := uv.Get(e.V1(), f2)
		b1, _ := uv.Get(e.V2(), f1)
		b2, _ := uv.Get(e.V2(), f2)
		return a1 == a2 && b1 == b2
	}
	// uv on one side only: a discontinuity only if both faces are present
	return f1 == nil || f2 == nil
}

// DiscontinuityDegree returns the number of texture seams adjacent to v.
func (uv *UVData) DiscontinuityDegree(v *Vertex) int {
	n := 0
	for i := 0; i < v.Degree(); i++ {
		if !uv.IsContinuous(v.E(i)) {
			n++
		}
	}
	return n
}

// QuadHasUV reports if f is a quad with texture coordinates continuous across its diagonal.
func (uv *UVData) QuadHasUV(f *Face) bool {
	return f != nil && f.IsQuad() && uv.HasUV(f) && uv.HasUV(f.QuadPartner()) && uv.IsContinuous(f.WeakEdge())
}

func (uv *UVData) remove(f *Face) {
	delete(uv.faces, f.id)
}

// reverse keeps corners matched to vertices after Face.Reverse.
func (uv *UVData) reverse(f *Face) {
	if c := uv.corners(f, false); c != nil {
		c[1], c[2] = c[2], c[1]
	}
}

// Round snaps all coordinates to multiples of the given resolution.
func (uv *UVData) Round(res float64) {
	if res <= 0 {
		return
	}
	snap := func(x float64) float64 {
		return res * math.Round(x/res)
	}
	for _, c := range uv.faces {
		for i := range c {
			c[i] = UV{U: snap(c[i].U), V: snap(c[i].V)}
		}
	}
}
