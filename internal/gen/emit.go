package gen

import (
	"bytes"
	"fmt"
	"go/types"
	"sort"
	"strconv"
	"strings"
)

const nopadPath = "github.com/wippyai/nopad"

// writer accumulates generated source. Indentation is cosmetic; the final
// file goes through go/format.
type writer struct {
	bytes.Buffer
	indent int
}

func (w *writer) line(format string, args ...any) {
	for range w.indent {
		w.WriteByte('\t')
	}
	fmt.Fprintf(w, format, args...)
	w.WriteByte('\n')
}

func (w *writer) open(format string, args ...any) {
	w.line(format, args...)
	w.indent++
}

func (w *writer) close(s string) {
	w.indent--
	w.line("%s", s)
}

// importSet records the packages generated code refers to.
type importSet struct {
	self  *types.Package
	paths map[string]string // path -> name
}

func newImportSet(self *types.Package) *importSet {
	return &importSet{self: self, paths: make(map[string]string)}
}

func (s *importSet) use(path, name string) string {
	s.paths[path] = name
	return name
}

func (s *importSet) unsafe() string {
	return s.use("unsafe", "unsafe")
}

func (s *importSet) nopad() string {
	return s.use(nopadPath, "nopad")
}

// qualifier renders types from other packages by package name and records
// the import.
func (s *importSet) qualifier(p *types.Package) string {
	if p == s.self {
		return ""
	}
	return s.use(p.Path(), p.Name())
}

// write emits the import block: standard library first, then the rest.
func (s *importSet) write(w *writer) {
	if len(s.paths) == 0 {
		return
	}
	var std, other []string
	for path := range s.paths {
		if strings.Contains(strings.SplitN(path, "/", 2)[0], ".") {
			other = append(other, path)
		} else {
			std = append(std, path)
		}
	}
	sort.Strings(std)
	sort.Strings(other)

	w.open("import (")
	for _, path := range std {
		w.line("%s", s.spec(path))
	}
	if len(std) > 0 && len(other) > 0 {
		w.line("")
	}
	for _, path := range other {
		w.line("%s", s.spec(path))
	}
	w.close(")")
}

func (s *importSet) spec(path string) string {
	name := s.paths[path]
	if name == lastElem(path) {
		return strconv.Quote(path)
	}
	return name + " " + strconv.Quote(path)
}

func lastElem(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// localNames hands out identifiers for generated locals that cannot
// collide with type parameters, package-level names or imports.
type localNames struct {
	taken map[string]bool
}

func newLocalNames(pkg *types.Package, params typeParams) *localNames {
	n := &localNames{taken: make(map[string]bool)}
	for _, name := range pkg.Scope().Names() {
		n.taken[name] = true
	}
	for _, imp := range pkg.Imports() {
		n.taken[imp.Name()] = true
	}
	for _, name := range params.names {
		n.taken[name] = true
	}
	n.taken["unsafe"] = true
	n.taken["nopad"] = true
	return n
}

func (n *localNames) fresh(base string) string {
	name := base
	for i := 1; n.taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	n.taken[name] = true
	return name
}

func siblingName(typeName string) string {
	return "_" + typeName + "SizeOfNoPadding"
}
