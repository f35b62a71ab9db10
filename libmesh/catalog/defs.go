package catalog

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

// Wire layout of the stored messages (proto3, packed repeated scalars):
//
//	message MeshDef {
//	    string            Name       = 1;
//	    repeated double   Coords     = 2;  // x y z per vertex
//	    repeated uint32   Faces      = 3;  // vertex index triples
//	    repeated uint32   Creases    = 4;  // vertex index pairs
//	    repeated uint32   CreaseVals = 5;  // one per crease
//	    repeated uint32   WeakEdges  = 6;  // vertex index pairs
//	    repeated uint32   Polylines  = 7;  // vertex index pairs
//	    repeated uint32   Secondary  = 8;  // face indices
//	    repeated PatchDef Patches    = 9;
//	    repeated double   Colors     = 10; // r g b per vertex
//	}
//
//	message PatchDef {
//	    string          Name  = 1;
//	    repeated uint32 Faces = 2;
//	    repeated double Color = 3;  // empty or r g b
//	}
//
//	message CatalogState {
//	    uint32 MajorVers = 1;
//	    uint32 MinorVers = 2;
//	    uint64 NumMeshes = 3;
//	}

var (
	errBadWireType = errors.New("unexpected wire type")
	errTruncated   = errors.New("truncated field")
)

const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
)

// MeshDef is a storable snapshot of a mesh's topology and attributes.
type MeshDef struct {
	Name       string
	Coords     []float64
	Faces      []uint32
	Creases    []uint32
	CreaseVals []uint32
	WeakEdges  []uint32
	Polylines  []uint32
	Secondary  []uint32
	Patches    []*PatchDef
	Colors     []float64
}

type PatchDef struct {
	Name  string
	Faces []uint32
	Color []float64
}

// CatalogState is stored once per catalog.
type CatalogState struct {
	MajorVers uint32
	MinorVers uint32
	NumMeshes uint64
}

var (
	_ proto.Message = (*MeshDef)(nil)
	_ proto.Message = (*PatchDef)(nil)
	_ proto.Message = (*CatalogState)(nil)
)

func (def *MeshDef) Reset()        { *def = MeshDef{} }
func (def *MeshDef) ProtoMessage() {}
func (def *MeshDef) String() string {
	return fmt.Sprintf("MeshDef{%q verts:%d faces:%d patches:%d}", def.Name, len(def.Coords)/3, len(def.Faces)/3, len(def.Patches))
}

func (def *PatchDef) Reset()        { *def = PatchDef{} }
func (def *PatchDef) ProtoMessage() {}
func (def *PatchDef) String() string {
	return fmt.Sprintf("PatchDef{%q faces:%d}", def.Name, len(def.Faces))
}

func (st *CatalogState) Reset()        { *st = CatalogState{} }
func (st *CatalogState) ProtoMessage() {}
func (st *CatalogState) String() string {
	return fmt.Sprintf("CatalogState{v%d.%d meshes:%d}", st.MajorVers, st.MinorVers, st.NumMeshes)
}

/////////////////////////////////////////////////////////////////////////////////////////////////////////////
// encoding

type encoder struct {
	*proto.Buffer
}

func newEncoder() encoder {
	return encoder{proto.NewBuffer(nil)}
}

func (enc encoder) tag(field int, wire int) {
	enc.EncodeVarint(uint64(field<<3 | wire))
}

func (enc encoder) varint(field int, x uint64) {
	if x != 0 {
		enc.tag(field, wireVarint)
		enc.EncodeVarint(x)
	}
}

func (enc encoder) str(field int, s string) {
	if s != "" {
		enc.tag(field, wireBytes)
		enc.EncodeStringBytes(s)
	}
}

func (enc encoder) bytes(field int, b []byte) {
	enc.tag(field, wireBytes)
	enc.EncodeRawBytes(b)
}

func (enc encoder) uint32s(field int, vals []uint32) {
	if len(vals) == 0 {
		return
	}
	packed := proto.NewBuffer(nil)
	for _, v := range vals {
		packed.EncodeVarint(uint64(v))
	}
	enc.bytes(field, packed.Bytes())
}

func (enc encoder) doubles(field int, vals []float64) {
	if len(vals) == 0 {
		return
	}
	packed := proto.NewBuffer(make([]byte, 0, 8*len(vals)))
	for _, v := range vals {
		packed.EncodeFixed64(math.Float64bits(v))
	}
	enc.bytes(field, packed.Bytes())
}

func (def *MeshDef) Marshal() ([]byte, error) {
	enc := newEncoder()
	enc.str(1, def.Name)
	enc.doubles(2, def.Coords)
	enc.uint32s(3, def.Faces)
	enc.uint32s(4, def.Creases)
	enc.uint32s(5, def.CreaseVals)
	enc.uint32s(6, def.WeakEdges)
	enc.uint32s(7, def.Polylines)
	enc.uint32s(8, def.Secondary)
	for _, p := range def.Patches {
		buf, err := p.Marshal()
		if err != nil {
			return nil, err
		}
		enc.bytes(9, buf)
	}
	enc.doubles(10, def.Colors)
	return enc.Bytes(), nil
}

func (def *PatchDef) Marshal() ([]byte, error) {
	enc := newEncoder()
	enc.str(1, def.Name)
	enc.uint32s(2, def.Faces)
	enc.doubles(3, def.Color)
	return enc.Bytes(), nil
}

func (st *CatalogState) Marshal() ([]byte, error) {
	enc := newEncoder()
	enc.varint(1, uint64(st.MajorVers))
	enc.varint(2, uint64(st.MinorVers))
	enc.varint(3, st.NumMeshes)
	return enc.Bytes(), nil
}

/////////////////////////////////////////////////////////////////////////////////////////////////////////////
// decoding

type decoder struct {
	buf []byte
}

func (dec *decoder) more() bool {
	return len(dec.buf) > 0
}

func (dec *decoder) uvarint() (uint64, error) {
	x, n := proto.DecodeVarint(dec.buf)
	if n == 0 {
		return 0, errTruncated
	}
	dec.buf = dec.buf[n:]
	return x, nil
}

func (dec *decoder) field() (field int, wire int, err error) {
	key, err := dec.uvarint()
	if err != nil {
		return 0, 0, err
	}
	return int(key >> 3), int(key & 7), nil
}

func (dec *decoder) bytes(wire int) ([]byte, error) {
	if wire != wireBytes {
		return nil, errBadWireType
	}
	n, err := dec.uvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(dec.buf)) {
		return nil, errTruncated
	}
	b := dec.buf[:n]
	dec.buf = dec.buf[n:]
	return b, nil
}

func (dec *decoder) skip(wire int) error {
	switch wire {
	case wireVarint:
		_, err := dec.uvarint()
		return err
	case wireFixed64:
		if len(dec.buf) < 8 {
			return errTruncated
		}
		dec.buf = dec.buf[8:]
		return nil
	case wireBytes:
		_, err := dec.bytes(wire)
		return err
	case 5:
		if len(dec.buf) < 4 {
			return errTruncated
		}
		dec.buf = dec.buf[4:]
		return nil
	}
	return errBadWireType
}

func (dec *decoder) uint32s(wire int, dst []uint32) ([]uint32, error) {
	b, err := dec.bytes(wire)
	if err != nil {
		return dst, err
	}
	packed := decoder{b}
	for packed.more() {
		x, err := packed.uvarint()
		if err != nil {
			return dst, err
		}
		dst = append(dst, uint32(x))
	}
	return dst, nil
}

func (dec *decoder) doubles(wire int, dst []float64) ([]float64, error) {
	b, err := dec.bytes(wire)
	if err != nil {
		return dst, err
	}
	if len(b)%8 != 0 {
		return dst, errors.New("packed doubles not a multiple of 8 bytes")
	}
	for ; len(b) > 0; b = b[8:] {
		dst = append(dst, math.Float64frombits(binary.LittleEndian.Uint64(b)))
	}
	return dst, nil
}

func (def *MeshDef) Unmarshal(buf []byte) error {
	def.Reset()
	dec := decoder{buf}
	for dec.more() {
		field, wire, err := dec.field()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			var b []byte
			b, err = dec.bytes(wire)
			def.Name = string(b)
		case 2:
			def.Coords, err = dec.doubles(wire, def.Coords)
		case 3:
			def.Faces, err = dec.uint32s(wire, def.Faces)
		case 4:
			def.Creases, err = dec.uint32s(wire, def.Creases)
		case 5:
			def.CreaseVals, err = dec.uint32s(wire, def.CreaseVals)
		case 6:
			def.WeakEdges, err = dec.uint32s(wire, def.WeakEdges)
		case 7:
			def.Polylines, err = dec.uint32s(wire, def.Polylines)
		case 8:
			def.Secondary, err = dec.uint32s(wire, def.Secondary)
		case 9:
			var b []byte
			if b, err = dec.bytes(wire); err == nil {
				p := &PatchDef{}
				err = p.Unmarshal(b)
				def.Patches = append(def.Patches, p)
			}
		case 10:
			def.Colors, err = dec.doubles(wire, def.Colors)
		default:
			err = dec.skip(wire)
		}
		if err != nil {
			return errors.Wrapf(err, "MeshDef field %d", field)
		}
	}
	return nil
}

func (def *PatchDef) Unmarshal(buf []byte) error {
	def.Reset()
	dec := decoder{buf}
	for dec.more() {
		field, wire, err := dec.field()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			var b []byte
			b, err = dec.bytes(wire)
			def.Name = string(b)
		case 2:
			def.Faces, err = dec.uint32s(wire, def.Faces)
		case 3:
			def.Color, err = dec.doubles(wire, def.Color)
		default:
			err = dec.skip(wire)
		}
		if err != nil {
			return errors.Wrapf(err, "PatchDef field %d", field)
		}
	}
	return nil
}

func (st *CatalogState) Unmarshal(buf []byte) error {
	st.Reset()
	dec := decoder{buf}
	for dec.more() {
		field, wire, err := dec.field()
		if err != nil {
			return err
		}
		if wire != wireVarint {
			if err = dec.skip(wire); err != nil {
				return err
			}
			continue
		}
		x, err := dec.uvarint()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			st.MajorVers = uint32(x)
		case 2:
			st.MinorVers = uint32(x)
		case 3:
			st.NumMeshes = x
		}
	}
	return nil
}
