package gen

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"regexp"
	"strings"
	"testing"
)

// nopadStub declares the root package API so generated files type-check
// without resolving the module.
const nopadStub = `package nopad

import "unsafe"

type SizeOf interface{ SizeOfNoPadding() uintptr }

type SizeOfAny interface{ SizeOfNoPaddingAny() uintptr }

type Primitive interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~complex64 | ~complex128 | ~bool
}

func Slice[T Primitive](s []T) uintptr {
	var zero T
	return uintptr(len(s)) * unsafe.Sizeof(zero)
}

func SliceAny[T SizeOfAny](s []T) uintptr { return 0 }

func String[T ~string](s T) uintptr { return uintptr(len(s)) }

func Any(v any) uintptr { return 0 }

func StaticOf[T any]() uintptr { return 0 }
`

type stubImporter struct {
	std   types.Importer
	nopad *types.Package
}

func (i *stubImporter) Import(path string) (*types.Package, error) {
	if path == nopadPath {
		return i.nopad, nil
	}
	return i.std.Import(path)
}

func newStubImporter(t *testing.T, fset *token.FileSet) *stubImporter {
	t.Helper()
	f, err := parser.ParseFile(fset, "nopad.go", nopadStub, 0)
	if err != nil {
		t.Fatalf("parse stub failed: %v", err)
	}
	std := importer.ForCompiler(fset, "source", nil)
	conf := types.Config{Importer: std}
	pkg, err := conf.Check(nopadPath, fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatalf("check stub failed: %v", err)
	}
	return &stubImporter{std: std, nopad: pkg}
}

// load type-checks src as package p.
func load(t *testing.T, src string) *Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "src.go", src, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	pkg, err := Check("example.com/p", fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatalf("Check failed: %v", err)
	}
	return pkg
}

// generate runs the generator over src and fails the test on error.
func generate(t *testing.T, src string, cfg Config) (*Package, string) {
	t.Helper()
	pkg := load(t, src)
	out, err := New(cfg).Generate(pkg)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return pkg, string(out)
}

// generateErr runs the generator over src and expects an error.
func generateErr(t *testing.T, src string, cfg Config) error {
	t.Helper()
	pkg := load(t, src)
	out, err := New(cfg).Generate(pkg)
	if err == nil {
		t.Fatalf("expected error, got output:\n%s", out)
	}
	if out != nil {
		t.Errorf("output = %d bytes, want none on error", len(out))
	}
	return err
}

// compile type-checks the source together with the generated file.
func compile(t *testing.T, pkg *Package, out string) *types.Package {
	t.Helper()
	gen, err := parser.ParseFile(pkg.Fset, "src_nopad.go", out, parser.ParseComments)
	if err != nil {
		t.Fatalf("parse generated failed: %v\n%s", err, out)
	}
	var errs []string
	conf := types.Config{
		Importer: newStubImporter(t, pkg.Fset),
		Sizes:    pkg.Sizes,
		Error:    func(err error) { errs = append(errs, err.Error()) },
	}
	files := append(append([]*ast.File(nil), pkg.Files...), gen)
	checked, _ := conf.Check(pkg.Path, pkg.Fset, files, nil)
	if len(errs) > 0 {
		t.Fatalf("generated code does not compile:\n%s\n%s", strings.Join(errs, "\n"), out)
	}
	return checked
}

// sizeOf returns the platform size of the named package-level type.
func sizeOf(t *testing.T, pkg *types.Package, sizes types.Sizes, name string) int64 {
	t.Helper()
	obj, ok := pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok {
		t.Fatalf("type %s not declared", name)
	}
	return sizes.Sizeof(obj.Type())
}

var spaces = regexp.MustCompile(`\s+`)

// contains reports whether out holds want, ignoring whitespace differences
// introduced by gofmt alignment.
func contains(out, want string) bool {
	return strings.Contains(spaces.ReplaceAllString(out, " "), spaces.ReplaceAllString(want, " "))
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, unwanted ...string) {
	t.Helper()
	for _, s := range unwanted {
		if contains(out, s) {
			t.Errorf("output contains %q\n%s", s, out)
		}
	}
}
