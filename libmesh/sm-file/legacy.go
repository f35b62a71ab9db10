package smfile

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fine-structures/fine-mesh/go2mesh"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

var (
	legacySymbols = legacyLexer.Symbols()
	tokDirective  = legacySymbols["Directive"]
	tokNumber     = legacySymbols["Number"]
)

var tokSpace, hasSpaceTok = legacySymbols["whitespace"]

// errBadRecord marks a record whose tokens were all consumed but didn't parse; the read goes on past it.
var errBadRecord = errors.New("malformed record")

// tokens is a cursor over the legacy token stream.
type tokens struct {
	lx   lexer.Lexer
	peek *lexer.Token
	err  error
}

func (ts *tokens) next() lexer.Token {
	if ts.peek != nil {
		tok := *ts.peek
		ts.peek = nil
		return tok
	}
	for {
		tok, err := ts.lx.Next()
		if err != nil {
			ts.err = err
			return lexer.EOFToken(tok.Pos)
		}
		if hasSpaceTok && tok.Type == tokSpace {
			continue
		}
		return tok
	}
}

func (ts *tokens) look() lexer.Token {
	if ts.peek == nil {
		tok := ts.next()
		ts.peek = &tok
	}
	return *ts.peek
}

func (ts *tokens) atNumber() bool {
	return ts.look().Type == tokNumber
}

func (ts *tokens) float() (float64, error) {
	tok := ts.next()
	if tok.EOF() {
		return 0, io.ErrUnexpectedEOF
	}
	val, err := strconv.ParseFloat(tok.Value, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "at %v", tok.Pos)
	}
	return val, nil
}

func (ts *tokens) int() (int, error) {
	tok := ts.next()
	if tok.EOF() {
		return 0, io.ErrUnexpectedEOF
	}
	val, err := strconv.Atoi(tok.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "at %v", tok.Pos)
	}
	return val, nil
}

// tuple reads n ints.  A token that fails to parse still consumes its slot, so the next record stays aligned.
func (ts *tokens) tuple(n int) (*tuple, error) {
	t := &tuple{Idx: make([]int, n)}
	var bad error
	for i := range t.Idx {
		var err error
		if t.Idx[i], err = ts.int(); err == io.ErrUnexpectedEOF {
			return nil, err
		} else if err != nil && bad == nil {
			bad = err
		}
	}
	if bad != nil {
		return nil, errors.Wrap(errBadRecord, bad.Error())
	}
	return t, nil
}

func (ts *tokens) vec3() (*vec3, error) {
	var p [3]float64
	var bad error
	for i := range p {
		var err error
		if p[i], err = ts.float(); err == io.ErrUnexpectedEOF {
			return nil, err
		} else if err != nil && bad == nil {
			bad = err
		}
	}
	if bad != nil {
		return nil, errors.Wrap(errBadRecord, bad.Error())
	}
	return &vec3{p[0], p[1], p[2]}, nil
}

// tuples reads a count followed by that many n-tuples.  A malformed tuple is logged and kept as an empty
// placeholder so later blocks that refer to records by position still line up.
func (ts *tokens) tuples(n int) ([]*tuple, error) {
	count, err := ts.int()
	if err != nil {
		return nil, err
	}
	ret := make([]*tuple, 0, count)
	for i := 0; i < count; i++ {
		t, err := ts.tuple(n)
		if errors.Is(err, errBadRecord) {
			klog.Warningf("smfile: record %d: %v", i, err)
			t = &tuple{}
		} else if err != nil {
			return ret, err
		}
		ret = append(ret, t)
	}
	return ret, nil
}

// skipBlock consumes tokens through the #END closing the current block.
func (ts *tokens) skipBlock() {
	for {
		tok := ts.next()
		if tok.EOF() {
			return
		}
		if tok.Type == tokDirective && tok.Value == "#END" {
			ts.next() // block name
			return
		}
	}
}

// parseLegacy reads the old numeric .sm form.
func parseLegacy(filename string, r io.Reader) (*smFile, error) {
	lx, err := legacyLexer.Lex(filename, r)
	if err != nil {
		return nil, err
	}
	ts := &tokens{lx: lx}

	if tok := ts.look(); tok.Type == tokDirective && tok.Value != "#BEGIN" {
		ts.next()
		if strings.Contains(tok.Value, "jot") {
			return nil, errors.Wrapf(go2mesh.ErrBadHeader, "%q header", tok.Value)
		}
		klog.Infof("smfile: reading file with %s header", tok.Value)
	}

	file := &smFile{Header: "LMESH"}
	sec := &section{}
	file.Sections = append(file.Sections, sec)

	nverts, err := ts.int()
	if err != nil {
		return nil, errors.Wrap(err, "vertex count")
	}
	for i := 0; i < nverts; i++ {
		p, err := ts.vec3()
		if errors.Is(err, errBadRecord) {
			klog.Warningf("smfile: vertex %d: %v", i, err)
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "vertex %d", i)
		}
		sec.Vertices = append(sec.Vertices, p)
	}

	if sec.Faces, err = ts.tuples(3); err != nil {
		return nil, errors.Wrap(err, "faces")
	}

	// creases and polylines are optional, and errors there don't abort the read
	if ts.atNumber() {
		if sec.Creases, err = ts.tuples(2); err != nil {
			klog.Warningf("smfile: creases: %v", err)
		}
	}
	if ts.atNumber() {
		if sec.Polylines, err = ts.tuples(2); err != nil {
			klog.Warningf("smfile: polylines: %v", err)
		}
	}

	for {
		tok := ts.next()
		if tok.EOF() {
			break
		}
		if tok.Type != tokDirective || tok.Value != "#BEGIN" {
			klog.Warningf("smfile: %v: skipping %q", tok.Pos, tok.Value)
			continue
		}
		name := ts.next().Value
		if err := readBlock(ts, file, sec, name, nverts); err != nil {
			klog.Warningf("smfile: block %s: %v", name, err)
		}
		ts.skipBlock()
	}
	if ts.err != nil {
		return nil, ts.err
	}
	return file, nil
}

func readBlock(ts *tokens, file *smFile, sec *section, name string, nverts int) error {
	switch name {
	case "COLORS":
		for i := 0; i < nverts; i++ {
			c, err := ts.vec3()
			if err != nil {
				return err
			}
			sec.Colors = append(sec.Colors, c)
		}

	case "TEX_COORDS2":
		count, err := ts.int()
		if err != nil {
			return err
		}
		for ; count > 0; count-- {
			k, err := ts.int()
			if err != nil {
				return err
			}
			uvf := &uvFace{}
			for i := 0; i < 3; i++ {
				u, err := ts.float()
				if err != nil {
					return err
				}
				v, err := ts.float()
				if err != nil {
					return err
				}
				uvf.UVs = append(uvf.UVs, &uv2{u, v})
			}
			if k < 0 || k >= len(sec.Faces) {
				klog.Warningf("smfile: TEX_COORDS2: %v %d", go2mesh.ErrBadFaceIndex, k)
				continue
			}
			uvf.Verts = sec.Faces[k]
			sec.UVFaces = append(sec.UVFaces, uvf)
		}

	case "WEAK_EDGES":
		weak, err := ts.tuples(2)
		sec.WeakEdges = append(sec.WeakEdges, weak...)
		return err

	case "PATCH":
		count, err := ts.int()
		if err != nil {
			return err
		}
		p := &section{}
		faces := &tuple{}
		for ; count > 0; count-- {
			f, err := ts.int()
			if err != nil {
				return err
			}
			faces.Idx = append(faces.Idx, f)
		}
		p.Patch = &patchDef{Tags: []*patchTag{{Faces: faces}}}
		file.Sections = append(file.Sections, p)

	case "INCLUDE":
		klog.Warningf("smfile: skipping INCLUDE block")

	default:
		klog.Warningf("smfile: skipping unknown block %q", name)
	}
	return nil
}
