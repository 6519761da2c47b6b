package gen

import (
	"go/token"
	"go/types"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/nopad/errors"
)

const (
	staticMethod   = "SizeOfNoPadding"
	contractMethod = "SizeOfNoPaddingAny"
)

// typeGen generates the methods of one requested type.
type typeGen struct {
	*run
	req    *Request
	params typeParams
	names  *localNames
	phase  errors.Phase
	size   string
	out    writer
	res    *result

	// inlining holds the struct types whose fields dyn is expanding.
	inlining map[*types.TypeName]bool
}

func (t *typeGen) emit() error {
	if t.req.Mode&ModeStatic != 0 {
		if err := t.static(); err != nil {
			return err
		}
	}
	if t.req.Mode&ModeDynamic != 0 {
		return t.dynamic()
	}
	t.forwardAny()
	return nil
}

// self is the receiver type: the declared name with its full parameter list.
func (t *typeGen) self() string {
	return t.params.Receiver(t.req.Name())
}

func (t *typeGen) typeExpr(typ types.Type) string {
	return types.TypeString(typ, t.imports.qualifier)
}

func (t *typeGen) position(m Member) token.Position {
	return t.pkg.Fset.Position(m.Var.Pos())
}

// newAccess is an addressable expression of type typ that needs no value,
// used for blank fields which cannot be selected.
func (t *typeGen) newAccess(typ types.Type) string {
	return "(*new(" + t.typeExpr(typ) + "))"
}

func (t *typeGen) memberAccess(root string, m Member) string {
	if m.Blank() {
		return t.newAccess(m.Type())
	}
	return root + "." + m.Name()
}

func (t *typeGen) fieldAccess(access string, f *types.Var) string {
	if f.Name() == "_" {
		return t.newAccess(f.Type())
	}
	return access + "." + f.Name()
}

// sizeof renders unsafe.Sizeof of access.
func (t *typeGen) sizeof(access string) string {
	if strings.HasPrefix(access, "(*new(") {
		access = access[1 : len(access)-1]
	}
	return t.imports.unsafe() + ".Sizeof(" + access + ")"
}

// depend records typ as a dependency when it is another request of this run.
func (t *typeGen) depend(typ types.Type, path []string) *Request {
	n, ok := typ.(*types.Named)
	if !ok {
		return nil
	}
	req := t.byObj[n.Origin().Obj()]
	if req != nil {
		t.res.deps = append(t.res.deps, dependency{obj: req.Obj, phase: t.phase, path: path})
	}
	return req
}

func (t *typeGen) requested(typ types.Type) *Request {
	if n, ok := typ.(*types.Named); ok {
		return t.byObj[n.Origin().Obj()]
	}
	return nil
}

// accessible reports whether every field of st can be named from the
// generated file.
func (t *typeGen) accessible(st *types.Struct) bool {
	for i := range st.NumFields() {
		f := st.Field(i)
		if f.Pkg() != t.pkg.Types && !f.Exported() {
			return false
		}
	}
	return true
}

// hasContract reports whether values of typ can be asked for their
// no-padding size by method call.
func (t *typeGen) hasContract(typ types.Type) bool {
	switch typ := typ.(type) {
	case *types.TypeParam:
		return constrained(typ, contractMethod)
	case *types.Named:
		if t.requested(typ) != nil {
			return true
		}
		if isHandle(typ) {
			return false
		}
		// Promoted methods report only the embedded value.
		obj, index, _ := types.LookupFieldOrMethod(typ, false, typ.Obj().Pkg(), contractMethod)
		fn, ok := obj.(*types.Func)
		return ok && len(index) == 1 && isSizeMethod(fn, contractMethod) && !t.stale(fn)
	}
	return false
}

// constrained reports whether the constraint of tp requires the size method
// name.
func constrained(tp *types.TypeParam, name string) bool {
	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok {
		return false
	}
	for i := range iface.NumMethods() {
		if isSizeMethod(iface.Method(i), name) {
			return true
		}
	}
	return false
}

func isSizeMethod(fn *types.Func, name string) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || fn.Name() != name {
		return false
	}
	return sig.Params().Len() == 0 &&
		sig.Results().Len() == 1 &&
		types.Identical(sig.Results().At(0).Type(), types.Typ[types.Uintptr])
}

// isHandle reports whether typ is a fixed-size reference to storage that is
// not counted: pointers, functions, channels and interfaces.
func isHandle(typ types.Type) bool {
	if _, ok := typ.(*types.TypeParam); ok {
		return false
	}
	switch u := typ.Underlying().(type) {
	case *types.Pointer, *types.Signature, *types.Chan, *types.Interface:
		return true
	case *types.Basic:
		return u.Kind() == types.UnsafePointer
	}
	return false
}

// isPrimitive reports whether typ is numeric or boolean, or a type parameter
// whose type set holds only such types.
func isPrimitive(typ types.Type) bool {
	if tp, ok := typ.(*types.TypeParam); ok {
		iface, ok := tp.Constraint().Underlying().(*types.Interface)
		if !ok {
			return false
		}
		found, ok := basicTerms(iface)
		return found && ok
	}
	b, ok := typ.Underlying().(*types.Basic)
	return ok && primitiveBasic(b)
}

func primitiveBasic(b *types.Basic) bool {
	return b.Info()&(types.IsNumeric|types.IsBoolean) != 0 && b.Info()&types.IsUntyped == 0
}

// basicTerms reports whether iface restricts its type set (found) and
// whether every type in it is primitive.
func basicTerms(iface *types.Interface) (found, ok bool) {
	ok = true
	for i := range iface.NumEmbeddeds() {
		f, o := basicTerm(iface.EmbeddedType(i))
		if f {
			found = true
			ok = ok && o
		}
	}
	return found, ok
}

func basicTerm(typ types.Type) (found, ok bool) {
	switch u := typ.Underlying().(type) {
	case *types.Union:
		ok = true
		for i := range u.Len() {
			f, o := basicTerm(u.Term(i).Type())
			if !f {
				return true, false
			}
			ok = ok && o
		}
		return true, ok
	case *types.Interface:
		return basicTerms(u)
	case *types.Basic:
		return true, primitiveBasic(u)
	}
	return true, false
}

// opaque warns when a static leaf hides padding inside a struct whose
// fields cannot be reached.
func (t *typeGen) opaque(typ types.Type, path []string) {
	for {
		switch u := typ.Underlying().(type) {
		case *types.Array:
			typ = u.Elem()
			continue
		case *types.Struct:
			if !t.accessible(u) {
				Logger().Warn("member counted at platform size, fields are not accessible",
					zap.String("type", t.req.Name()),
					zap.String("member", strings.Join(path, ".")),
					zap.String("go_type", t.pkg.typeString(typ)))
			}
		}
		return
	}
}

func extend(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

// index marks the last path element as indexed: arr becomes arr[0].
func index(path []string, marker string) []string {
	out := make([]string, len(path))
	copy(out, path)
	if len(out) > 0 {
		out[len(out)-1] += marker
	}
	return out
}
