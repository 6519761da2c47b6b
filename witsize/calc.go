package witsize

import (
	"go/token"
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/nopad/errors"
)

// Info is the Canonical ABI layout of one record or tuple.
type Info struct {
	Name      string
	Fields    []FieldInfo
	Size      uint32
	Align     uint32
	NoPadding uint32
}

// Wasted is the number of padding bytes the Canonical ABI layout inserts.
func (i Info) Wasted() uint32 {
	return i.Size - i.NoPadding
}

// FieldInfo is the placement of one field.
type FieldInfo struct {
	Name      string
	Type      string
	Offset    uint32
	Size      uint32
	NoPadding uint32
	Padding   uint32 // gap between this field and the next one (or the record end)
}

type layout struct {
	size  uint32
	align uint32
}

type Calculator struct {
	cache map[*wit.TypeDef]layout
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*wit.TypeDef]layout),
	}
}

// Calculate returns the layout and no-padding size of a record or tuple.
func (c *Calculator) Calculate(t wit.Type) (Info, error) {
	name := TypeName(t)

	td, ok := t.(*wit.TypeDef)
	if !ok {
		return Info{}, errors.SumType(errors.PhaseWIT, noPos, name, "non-record "+name)
	}
	var types []wit.Type
	var names []string
	switch kind := td.Kind.(type) {
	case *wit.Record:
		for _, f := range kind.Fields {
			types = append(types, f.Type)
			names = append(names, f.Name)
		}
	case *wit.Tuple:
		for i, typ := range kind.Types {
			types = append(types, typ)
			names = append(names, strconv.Itoa(i))
		}
	case *wit.Variant:
		return Info{}, errors.SumType(errors.PhaseWIT, noPos, name, "variant")
	case *wit.Enum:
		return Info{}, errors.SumType(errors.PhaseWIT, noPos, name, "enum")
	case *wit.Option:
		return Info{}, errors.SumType(errors.PhaseWIT, noPos, name, "option")
	case *wit.Result:
		return Info{}, errors.SumType(errors.PhaseWIT, noPos, name, "result")
	case wit.Type:
		info, err := c.Calculate(kind)
		if err == nil && td.Name != nil {
			info.Name = *td.Name
		}
		return info, err
	default:
		return Info{}, errors.SumType(errors.PhaseWIT, noPos, name, "non-record "+kindName(td.Kind))
	}
	if len(types) == 0 {
		return Info{}, errors.Degenerate(errors.PhaseWIT, noPos, name)
	}

	info := Info{Name: name, Align: 1}
	offset := uint32(0)
	for i, typ := range types {
		l := c.layout(typ)
		offset = alignTo(offset, l.align)
		if n := len(info.Fields); n > 0 {
			prev := &info.Fields[n-1]
			prev.Padding = offset - prev.Offset - prev.Size
		}
		info.Fields = append(info.Fields, FieldInfo{
			Name:      names[i],
			Type:      TypeName(typ),
			Offset:    offset,
			Size:      l.size,
			NoPadding: c.noPadding(typ),
		})
		info.NoPadding += info.Fields[i].NoPadding
		info.Align = max(info.Align, l.align)
		offset += l.size
	}
	info.Size = alignTo(offset, info.Align)
	last := &info.Fields[len(info.Fields)-1]
	last.Padding = info.Size - last.Offset - last.Size
	return info, nil
}

// WIT JSON carries no source positions.
var noPos token.Position

// noPadding is the size of t with padding removed from every nested record
// and tuple. Other types count their full size.
func (c *Calculator) noPadding(t wit.Type) uint32 {
	td, ok := t.(*wit.TypeDef)
	if !ok {
		return c.layout(t).size
	}
	switch kind := td.Kind.(type) {
	case *wit.Record:
		var n uint32
		for _, f := range kind.Fields {
			n += c.noPadding(f.Type)
		}
		return n
	case *wit.Tuple:
		var n uint32
		for _, typ := range kind.Types {
			n += c.noPadding(typ)
		}
		return n
	case wit.Type:
		return c.noPadding(kind)
	}
	return c.layout(t).size
}

func (c *Calculator) layout(t wit.Type) layout {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return layout{1, 1}
	case wit.U16, wit.S16:
		return layout{2, 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return layout{4, 4}
	case wit.U64, wit.S64, wit.F64:
		return layout{8, 8}
	case wit.String:
		return layout{8, 4} // [ptr: u32, len: u32]
	case *wit.TypeDef:
		return c.typeDef(typ)
	default:
		return layout{0, 1}
	}
}

func (c *Calculator) typeDef(t *wit.TypeDef) layout {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var l layout
	switch kind := t.Kind.(type) {
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		l = c.sequence(types)
	case *wit.Tuple:
		l = c.sequence(kind.Types)
	case *wit.Variant:
		var cases []wit.Type
		for _, cs := range kind.Cases {
			cases = append(cases, cs.Type)
		}
		l = c.tagged(len(kind.Cases), cases...)
	case *wit.Enum:
		size := discriminantSize(len(kind.Cases))
		l = layout{size, size}
	case *wit.Option:
		l = c.tagged(2, kind.Type)
	case *wit.Result:
		l = c.tagged(2, kind.OK, kind.Err)
	case *wit.Flags:
		l = flags(len(kind.Flags))
	case *wit.List:
		l = layout{8, 4} // [ptr: u32, len: u32]
	case *wit.Own, *wit.Borrow:
		l = layout{4, 4}
	case wit.Type:
		l = c.layout(kind)
	default:
		l = layout{0, 1}
	}

	c.cache[t] = l
	return l
}

// sequence lays out types one after another, as records and tuples do.
func (c *Calculator) sequence(types []wit.Type) layout {
	if len(types) == 0 {
		return layout{0, 1}
	}
	align := uint32(1)
	offset := uint32(0)
	for _, typ := range types {
		l := c.layout(typ)
		offset = alignTo(offset, l.align) + l.size
		align = max(align, l.align)
	}
	return layout{alignTo(offset, align), align}
}

// tagged lays out a discriminant followed by the largest payload.
func (c *Calculator) tagged(cases int, payloads ...wit.Type) layout {
	disc := discriminantSize(cases)
	align := disc
	size := uint32(0)
	for _, p := range payloads {
		if p == nil {
			continue
		}
		l := c.layout(p)
		align = max(align, l.align)
		size = max(size, l.size)
	}
	return layout{alignTo(alignTo(disc, align)+size, align), align}
}

func flags(n int) layout {
	switch {
	case n == 0:
		return layout{0, 1}
	case n <= 8:
		return layout{1, 1}
	case n <= 16:
		return layout{2, 2}
	default:
		// more than 32 flags use one u32 per 32 flags
		return layout{uint32((n+31)/32) * 4, 4}
	}
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func discriminantSize(cases int) uint32 {
	switch {
	case cases <= 256:
		return 1
	case cases <= 65536:
		return 2
	}
	return 4
}

// TypeName renders t the way WIT source spells it.
func TypeName(t wit.Type) string {
	switch typ := t.(type) {
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if typ.Name != nil {
			return *typ.Name
		}
		return kindName(typ.Kind)
	case nil:
		return "_"
	}
	return "unknown"
}

func kindName(kind wit.TypeDefKind) string {
	switch k := kind.(type) {
	case *wit.Record:
		return "record"
	case *wit.Variant:
		return "variant"
	case *wit.Enum:
		return "enum"
	case *wit.Flags:
		return "flags"
	case *wit.Resource:
		return "resource"
	case *wit.List:
		return "list<" + TypeName(k.Type) + ">"
	case *wit.Option:
		return "option<" + TypeName(k.Type) + ">"
	case *wit.Result:
		return "result<" + TypeName(k.OK) + ", " + TypeName(k.Err) + ">"
	case *wit.Tuple:
		names := make([]string, len(k.Types))
		for i, t := range k.Types {
			names[i] = TypeName(t)
		}
		return "tuple<" + strings.Join(names, ", ") + ">"
	case *wit.Own:
		return "own<" + TypeName(k.Type) + ">"
	case *wit.Borrow:
		return "borrow<" + TypeName(k.Type) + ">"
	case wit.Type:
		return TypeName(k)
	}
	return "unknown"
}
