package layout

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"
)

const src = `package p

type Abc struct {
	a uint8
	b uint32
	c uint8
}

type Wide struct {
	a uint8
	b uint64
}

type Outer struct {
	inner struct {
		a uint32
		b uint64
	}
	flag bool
}

type Arr struct {
	items [3]Abc
	none  [0]uint64
}

type Empty struct{}
`

func checkStructs(t *testing.T) map[string]*types.Struct {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", src, 0)
	if err != nil {
		t.Fatal(err)
	}
	conf := types.Config{Importer: importer.Default()}
	pkg, err := conf.Check("p", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]*types.Struct)
	for _, name := range pkg.Scope().Names() {
		if st, ok := pkg.Scope().Lookup(name).Type().Underlying().(*types.Struct); ok {
			out[name] = st
		}
	}
	return out
}

func TestCalculateStruct(t *testing.T) {
	structs := checkStructs(t)
	c := NewCalculator(types.SizesFor("gc", "amd64"))

	t.Run("mixed_alignment", func(t *testing.T) {
		info := c.Struct(structs["Abc"])

		wantOffs := []int64{0, 4, 8}
		wantPad := []int64{3, 0, 3}
		for i, f := range info.Fields {
			if f.Offset != wantOffs[i] {
				t.Errorf("field %s offset: got %d, want %d", f.Name, f.Offset, wantOffs[i])
			}
			if f.Padding != wantPad[i] {
				t.Errorf("field %s padding: got %d, want %d", f.Name, f.Padding, wantPad[i])
			}
		}
		if info.Size != 12 {
			t.Errorf("size: got %d, want 12", info.Size)
		}
		if info.Align != 4 {
			t.Errorf("align: got %d, want 4", info.Align)
		}
		if info.NoPadding != 6 {
			t.Errorf("no-padding size: got %d, want 6", info.NoPadding)
		}
		if info.Wasted() != 6 {
			t.Errorf("wasted: got %d, want 6", info.Wasted())
		}
	})

	t.Run("u64_alignment", func(t *testing.T) {
		info := c.Struct(structs["Wide"])
		if info.Fields[1].Offset != 8 {
			t.Errorf("field b offset: got %d, want 8", info.Fields[1].Offset)
		}
		if info.Size != 16 {
			t.Errorf("size: got %d, want 16", info.Size)
		}
		if info.Align != 8 {
			t.Errorf("align: got %d, want 8", info.Align)
		}
		if info.NoPadding != 9 {
			t.Errorf("no-padding size: got %d, want 9", info.NoPadding)
		}
	})

	t.Run("nested", func(t *testing.T) {
		info := c.Struct(structs["Outer"])
		if info.Fields[1].Offset != 16 {
			t.Errorf("flag offset: got %d, want 16", info.Fields[1].Offset)
		}
		if info.Size != 24 {
			t.Errorf("size: got %d, want 24", info.Size)
		}
		if info.Fields[0].NoPadding != 12 {
			t.Errorf("inner no-padding: got %d, want 12", info.Fields[0].NoPadding)
		}
		if info.NoPadding != 13 {
			t.Errorf("no-padding size: got %d, want 13", info.NoPadding)
		}
	})

	t.Run("arrays", func(t *testing.T) {
		info := c.Struct(structs["Arr"])
		if info.Fields[0].NoPadding != 18 {
			t.Errorf("items no-padding: got %d, want 18", info.Fields[0].NoPadding)
		}
		if info.Fields[1].NoPadding != 0 {
			t.Errorf("empty array no-padding: got %d, want 0", info.Fields[1].NoPadding)
		}
	})

	t.Run("empty", func(t *testing.T) {
		info := c.Struct(structs["Empty"])
		if info.Size != 0 || info.NoPadding != 0 || len(info.Fields) != 0 {
			t.Errorf("got %+v, want zero layout", info)
		}
	})
}

func TestNoPaddingNeverExceedsSize(t *testing.T) {
	c := NewCalculator(nil)
	for name, st := range checkStructs(t) {
		info := c.Struct(st)
		if info.NoPadding > info.Size {
			t.Errorf("%s: no-padding %d exceeds size %d", name, info.NoPadding, info.Size)
		}
	}
}

func TestCaching(t *testing.T) {
	structs := checkStructs(t)
	c := NewCalculator(nil)

	info1 := c.Struct(structs["Abc"])
	info2 := c.Struct(structs["Abc"])

	if info1.Size != info2.Size || len(c.cache) == 0 {
		t.Error("cached results should be identical")
	}
	if info1.Size != 12 {
		t.Errorf("default sizes: Size = %d, want 12", info1.Size)
	}
}
