package gen

import (
	"testing"
)

const treeSrc = `package p

type number interface{ ~int32 | ~float64 }

type sizer interface{ SizeOfNoPaddingAny() uintptr }

//nopad:dynamic
type Leaf struct {
	id   uint32
	name string
}

//nopad:dynamic
type Tree[T number, S sizer, A any] struct {
	flag   bool
	label  string
	ptr    *Leaf
	fn     func()
	iface  any
	vals   []T
	sized  []S
	one    T
	sz     S
	a      A
	leaves []Leaf
	ptrs   []*Leaf
	grid   [2][3]uint16
	names  [2]string
	byKey  map[string]uint32
	set    map[uint8]struct{}
	nested struct {
		a uint8
		b []byte
	}
	_ uint16
}
`

func TestDynamic_Terms(t *testing.T) {
	pkg, out := generate(t, treeSrc, Config{})

	assertContains(t, out,
		"func (v Leaf) SizeOfNoPaddingAny() uintptr { var size uintptr size += unsafe.Sizeof(v.id) size += nopad.String(v.name) return size }",
		"func (v Tree[T, S, A]) SizeOfNoPaddingAny() uintptr {",
		"size += unsafe.Sizeof(v.flag)",
		"size += nopad.String(v.label)",
		"size += unsafe.Sizeof(v.ptr)",
		"size += unsafe.Sizeof(v.fn)",
		"size += unsafe.Sizeof(v.iface)",
		"size += nopad.Slice(v.vals)",
		"size += nopad.SliceAny(v.sized)",
		"size += unsafe.Sizeof(v.one)",
		"size += v.sz.SizeOfNoPaddingAny()",
		"size += nopad.Any(v.a)",
		"size += nopad.SliceAny(v.leaves)",
		"size += uintptr(len(v.ptrs)) * unsafe.Sizeof(v.ptrs[0])",
		"size += unsafe.Sizeof(v.grid)",
		"for i := range v.names { size += nopad.String(v.names[i]) }",
		"for key, elem := range v.byKey { size += nopad.String(key) size += unsafe.Sizeof(elem) }",
		"for key1 := range v.set { size += unsafe.Sizeof(key1) }",
		"size += unsafe.Sizeof(v.nested.a)",
		"size += nopad.Slice(v.nested.b)",
		"size += unsafe.Sizeof(*new(uint16))",
		"_ nopad.SizeOfAny = Leaf{}",
	)
	assertNotContains(t, out,
		"SizeOfNoPadding()",
		"_ nopad.SizeOf = Leaf{}",
	)
	compile(t, pkg, out)
}

func TestDynamic_BothModes(t *testing.T) {
	pkg, out := generate(t, abcSrc, Config{Types: []string{"Abc"}, Mode: ModeDynamic})

	assertContains(t, out,
		"func (Abc) SizeOfNoPadding() uintptr",
		"func (v Abc) SizeOfNoPaddingAny() uintptr { var size uintptr size += unsafe.Sizeof(v.a)",
	)
	assertNotContains(t, out, "return v.SizeOfNoPadding()")
	compile(t, pkg, out)
}

func TestDynamic_NestedLoops(t *testing.T) {
	src := `package p

type point struct {
	x, y int16
	tag  string
}

//nopad:dynamic
type Shape struct {
	rings  [][]point
	byName map[string][]string
	fixed  [3]point
	empty  []struct{}
}
`
	pkg, out := generate(t, src, Config{})

	assertContains(t, out,
		"for i := range v.rings { for i1 := range v.rings[i] {",
		"size += unsafe.Sizeof(v.rings[i][i1].x)",
		"size += nopad.String(v.rings[i][i1].tag)",
		"for key, elem := range v.byName { size += nopad.String(key) for i2 := range elem { size += nopad.String(elem[i2]) } }",
		"for i3 := range v.fixed {",
		"size += unsafe.Sizeof(v.fixed[i3].y)",
	)
	assertNotContains(t, out, "v.empty")
	compile(t, pkg, out)
}

func TestDynamic_ForeignStruct(t *testing.T) {
	src := `package p

import (
	"go/token"
	"time"
)

//nopad:static
//nopad:dynamic
type Stamp struct {
	n  uint8
	at time.Time
}

//nopad:dynamic
type Where struct {
	pos token.Position
}
`
	pkg, out := generate(t, src, Config{})

	assertContains(t, out,
		"at [unsafe.Sizeof(Stamp{}.at)]byte",
		"size += nopad.Any(v.at)",
		"size += nopad.String(v.pos.Filename)",
		"size += unsafe.Sizeof(v.pos.Line)",
	)
	compile(t, pkg, out)
}

func TestDynamic_ParamNameCollision(t *testing.T) {
	src := `package p

//nopad:static
//nopad:dynamic
type Box[v any, size any, zero any] struct {
	a v
	b size
	c zero
	d [2]uint8
}
`
	pkg, out := generate(t, src, Config{})

	assertContains(t, out,
		"func (Box[v, size, zero]) SizeOfNoPadding() uintptr { var zero1 Box[v, size, zero]",
		"func (v1 Box[v, size, zero]) SizeOfNoPaddingAny() uintptr { var size1 uintptr",
		"size1 += nopad.Any(v1.a)",
		"size1 += unsafe.Sizeof(v1.d)",
	)
	compile(t, pkg, out)
}

func TestDynamic_Self(t *testing.T) {
	src := `package p

//nopad:dynamic
type Node struct {
	value int64
	kids  []Node
	next  *Node
}
`
	pkg, out := generate(t, src, Config{})
	assertContains(t, out, "size += nopad.SliceAny(v.kids)")
	compile(t, pkg, out)
}

func TestDynamic_RecursiveInline(t *testing.T) {
	src := `package p

type Item struct {
	id       uint32
	children []Item
	index    map[string]Item
}

//nopad:dynamic
type List struct {
	items []Item
}
`
	pkg, out := generate(t, src, Config{})

	assertContains(t, out,
		"for i := range v.items {",
		"size += unsafe.Sizeof(v.items[i].id)",
		"size += nopad.Any(v.items[i].children[i1])",
		"size += nopad.String(key)",
		"size += nopad.Any(elem)",
	)
	compile(t, pkg, out)
}
