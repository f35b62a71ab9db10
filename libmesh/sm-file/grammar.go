package smfile

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// smFile is a parsed .sm file.  The legacy reader fills in the same structure.
type smFile struct {
	Header   string     `parser:"@Ident \"{\""`
	Sections []*section `parser:"@@* \"}\""`
}

type section struct {
	Vertices  []*vec3   `parser:"  \"vertices\" \"{\" @@* \"}\""`
	Faces     []*tuple  `parser:"| \"faces\" \"{\" @@* \"}\""`
	UVFaces   []*uvFace `parser:"| \"uvfaces\" \"{\" @@* \"}\""`
	Creases   []*tuple  `parser:"| \"creases\" \"{\" @@* \"}\""`
	Polylines []*tuple  `parser:"| \"polylines\" \"{\" @@* \"}\""`
	WeakEdges []*tuple  `parser:"| \"weak_edges\" \"{\" @@* \"}\""`
	Secondary []*tuple  `parser:"| \"secondary_faces\" \"{\" @@* \"}\""`
	Colors    []*vec3   `parser:"| \"colors\" \"{\" @@* \"}\""`
	Patch     *patchDef `parser:"| \"patch\" @@"`
}

type vec3 struct {
	X float64 `parser:"\"{\" @Number"`
	Y float64 `parser:"@Number"`
	Z float64 `parser:"@Number \"}\""`
}

// tuple is a brace-enclosed list of indices (and, for creases, an optional crease value).
type tuple struct {
	Idx []int `parser:"\"{\" @Number* \"}\""`
}

type uv2 struct {
	U float64 `parser:"\"{\" @Number"`
	V float64 `parser:"@Number \"}\""`
}

type uvFace struct {
	Verts *tuple `parser:"\"{\" @@"`
	UVs   []*uv2 `parser:"\"{\" @@* \"}\" \"}\""`
}

type patchDef struct {
	Tags []*patchTag `parser:"\"{\" @@* \"}\""`
}

type patchTag struct {
	Name  *string `parser:"  \"patchname\" @(Ident | String | Number)"`
	Color *vec3   `parser:"| \"color\" @@"`
	Faces *tuple  `parser:"| \"faces\" @@"`
}

var smLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_.\-]*`},
	{Name: "Punct", Pattern: `[{}]`},
	{Name: "whitespace", Pattern: `\s+`},
})

var parseSM = participle.MustBuild[smFile](
	participle.Lexer(smLexer),
	participle.Unquote("String"),
)

// legacyLexer tokenizes the old numeric form: counts, coordinates and indices, then #BEGIN / #END blocks.
var legacyLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Directive", Pattern: `#[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`},
	{Name: "Word", Pattern: `[^\s#]+`},
	{Name: "whitespace", Pattern: `\s+`},
})
