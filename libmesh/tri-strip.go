package libmesh

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/plan-systems/klog"
)

// TriStrip is a sequence of faces where each face after the first shares an edge with its predecessor.
//
// verts[i] is the vertex added along with faces[i]; the first face contributes three vertices.  Faces alternate
// CCW and CW, so when orientation is set the first vertex is sent twice to keep the winding right.
type TriStrip struct {
	verts       []*Vertex
	faces       []*Face
	orientation bool
}

func (s *TriStrip) reset() {
	s.verts = s.verts[:0]
	s.faces = s.faces[:0]
	s.orientation = false
}

func (s *TriStrip) add(v *Vertex, f *Face) {
	s.verts = append(s.verts, v)
	s.faces = append(s.faces, f)
}

func (s *TriStrip) Empty() bool        { return len(s.verts) == 0 }
func (s *TriStrip) Len() int           { return len(s.verts) }
func (s *TriStrip) Verts() []*Vertex   { return s.verts }
func (s *TriStrip) Faces() []*Face     { return s.faces }
func (s *TriStrip) Orientation() bool  { return s.orientation }

// NumFaces returns the number of distinct faces in the strip.
func (s *TriStrip) NumFaces() int {
	if len(s.verts) < 3 {
		return 0
	}
	return len(s.verts) - 2
}

// BackupStrip walks backward from f (entered at vertex a) across crossable, consistently oriented edges to find
// the face where a longer strip can start.  Visited faces are marked.  On return a holds the entry vertex of the
// returned face.
func (s *TriStrip) BackupStrip(f *Face, a **Vertex) *Face {
	f.flag = FlagMarked

	ret := f
	va := *a
	vb := f.NextVertCCW(va)
	i := 0
	for {
		from := va
		if i%2 == 1 {
			from = vb
		}
		e := f.EdgeFromVert(from)
		if e == nil || !e.ConsistentOrientation() || !e.IsCrossable() {
			break
		}
		if f = e.OtherFace(f); f == nil || f.flag != FlagCleared {
			break
		}
		f.flag = FlagMarked
		ret = f
		d := f.OtherVertex(va, vb)
		vb = va
		va = d
		i++
	}
	s.orientation = i%2 != 0
	*a = va
	return ret
}

// Build starts a new strip at start, claiming each face it adds.  Same-patch neighbours suitable for starting a
// parallel strip are pushed onto stack.
func (s *TriStrip) Build(start *Face, stack *arraystack.Stack) bool {
	s.reset()

	if start.orient == 0 {
		start.OrientStrip(start.V(0))
	}
	a := start.Orient()
	start = s.BackupStrip(start, &a)
	if start == nil {
		klog.Errorf("TriStrip.Build: backup failed; check mesh for inconsistently oriented faces")
		return false
	}
	start.flag = FlagClaimed
	start.OrientStrip(a)

	var b, c *Vertex
	if s.orientation {
		c = start.NextVertCCW(a)
		b = start.NextVertCCW(c)
	} else {
		b = start.NextVertCCW(a)
		c = start.NextVertCCW(b)
	}
	s.add(a, start)
	s.add(b, start)
	s.add(c, start)

	if opp := start.OppositeFace(b); opp != nil && opp.flag == FlagCleared && opp.patch == start.patch {
		if s.orientation {
			opp.OrientStrip(a)
		} else {
			opp.OrientStrip(c)
		}
		stack.Push(opp)
	}

	i := 0
	if s.orientation {
		i = 1
	}
	// Only claimed faces stop the walk: the faces BackupStrip marked lie ahead of start and belong to this strip.
	for cur := start.NextStripFace(); cur != nil && cur.flag != FlagClaimed; cur = cur.NextStripFace() {
		cur.flag = FlagClaimed
		i++
		a, b = b, c
		c = cur.OtherVertex(a, b)
		cur.OrientStrip(a)

		if opp := cur.OppositeFace(b); opp != nil && opp.flag == FlagCleared && opp.patch == start.patch {
			if i%2 == 1 {
				opp.OrientStrip(a)
			} else {
				opp.OrientStrip(c)
			}
			stack.Push(opp)
		}
		s.add(c, cur)
	}
	return true
}

// GetStrips builds strips starting from start and its neighbours, appending them to strips.
// Does nothing if start was already visited.
func GetStrips(start *Face, strips []*TriStrip) []*TriStrip {
	if start.flag != FlagCleared {
		return strips
	}
	stack := arraystack.New()
	stack.Push(start)
	for !stack.Empty() {
		top, _ := stack.Pop()
		f := top.(*Face)
		if f.flag == FlagCleared {
			strip := &TriStrip{}
			if strip.Build(f, stack) {
				strips = append(strips, strip)
			}
		}
	}
	return strips
}

// Draw sends the strip to cb.
func (s *TriStrip) Draw(cb StripCB) {
	if s.Empty() {
		return
	}
	cb.BeginFaces(s)
	if s.orientation {
		cb.FaceCB(s.verts[0], s.faces[0])
	}
	for i, v := range s.verts {
		cb.FaceCB(v, s.faces[i])
	}
	cb.EndFaces(s)
}
