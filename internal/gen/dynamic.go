package gen

import (
	"go/token"
	"go/types"
	"strings"

	"github.com/wippyai/nopad/errors"
)

// dynamic emits SizeOfNoPaddingAny, summing one term per member. Layout
// annotations are kept: they are zero-size and contribute nothing.
func (t *typeGen) dynamic() error {
	t.phase = errors.PhaseDynamic
	members, err := t.pkg.Enumerate(t.req.Obj, t.phase, false)
	if err != nil {
		return err
	}

	v := t.names.fresh("v")
	t.size = t.names.fresh("size")

	body := writer{indent: t.out.indent + 1}
	for _, m := range members {
		typ := types.Unalias(m.Type())
		path := []string{m.Ident()}
		if m.Blank() {
			t.blank(&body, typ, path, t.position(m))
			continue
		}
		if err := t.dyn(&body, typ, v+"."+m.Name(), path, t.position(m)); err != nil {
			return err
		}
	}

	t.out.line("// SizeOfNoPaddingAny implements nopad.SizeOfAny.")
	if body.Len() == 0 {
		t.out.open("func (%s) SizeOfNoPaddingAny() uintptr {", t.self())
		t.out.line("return 0")
		t.out.close("}")
		t.out.line("")
		return nil
	}
	t.out.open("func (%s %s) SizeOfNoPaddingAny() uintptr {", v, t.self())
	t.out.line("var %s uintptr", t.size)
	t.out.Write(body.Bytes())
	t.out.line("return %s", t.size)
	t.out.close("}")
	t.out.line("")
	return nil
}

// blank adds the static size of a field that cannot be read.
func (t *typeGen) blank(w *writer, typ types.Type, path []string, pos token.Position) {
	// Variable-length members count their header, so this cannot fail.
	terms, _ := t.staticTerms(typ, t.newAccess(typ), path, pos, true)
	if len(terms) > 0 {
		w.line("%s += %s", t.size, strings.Join(terms, " + "))
	}
}

// dyn adds the terms for the value x of type typ.
func (t *typeGen) dyn(w *writer, typ types.Type, x string, path []string, pos token.Position) error {
	typ = types.Unalias(typ)
	t.depend(typ, path)

	if _, ok := typ.(*types.TypeParam); ok {
		switch {
		case isPrimitive(typ):
			w.line("%s += %s.Sizeof(%s)", t.size, t.imports.unsafe(), x)
		case t.hasContract(typ):
			w.line("%s += %s.%s()", t.size, x, contractMethod)
		default:
			w.line("%s += %s.Any(%s)", t.size, t.imports.nopad(), x)
		}
		return nil
	}
	if isHandle(typ) {
		w.line("%s += %s.Sizeof(%s)", t.size, t.imports.unsafe(), x)
		return nil
	}
	if t.hasContract(typ) {
		w.line("%s += %s.%s()", t.size, x, contractMethod)
		return nil
	}

	switch u := typ.Underlying().(type) {
	case *types.Basic:
		if u.Info()&types.IsString != 0 {
			w.line("%s += %s.String(%s)", t.size, t.imports.nopad(), x)
			return nil
		}
	case *types.Array:
		if u.Len() == 0 {
			return nil
		}
		if !t.flat(u.Elem()) {
			return t.loop(w, u.Elem(), x, path, pos)
		}
	case *types.Slice:
		elem := types.Unalias(u.Elem())
		switch {
		case t.hasContract(elem) && !isHandle(elem):
			w.line("%s += %s.SliceAny(%s)", t.size, t.imports.nopad(), x)
		case isPrimitive(elem):
			w.line("%s += %s.Slice(%s)", t.size, t.imports.nopad(), x)
		case t.flat(elem):
			w.line("%s += uintptr(len(%s)) * %s.Sizeof(%s[0])", t.size, x, t.imports.unsafe(), x)
		default:
			return t.loop(w, elem, x, path, pos)
		}
		return nil
	case *types.Map:
		return t.mapLoop(w, u, x, path, pos)
	case *types.Struct:
		if !t.accessible(u) {
			w.line("%s += %s.Any(%s)", t.size, t.imports.nopad(), x)
			return nil
		}
		// Re-entered types are sized at run time.
		if n, ok := typ.(*types.Named); ok {
			origin := n.Origin().Obj()
			if t.inlining[origin] {
				w.line("%s += %s.Any(%s)", t.size, t.imports.nopad(), x)
				return nil
			}
			t.inlining[origin] = true
			defer delete(t.inlining, origin)
		}
		for i := range u.NumFields() {
			f := u.Field(i)
			ftyp := types.Unalias(f.Type())
			if f.Name() == "_" {
				t.blank(w, ftyp, extend(path, "_"), pos)
				continue
			}
			if err := t.dyn(w, ftyp, x+"."+f.Name(), extend(path, f.Name()), pos); err != nil {
				return err
			}
		}
		return nil
	}

	w.line("%s += %s.Sizeof(%s)", t.size, t.imports.unsafe(), x)
	return nil
}

// flat reports whether the no-padding size of typ is its platform size.
func (t *typeGen) flat(typ types.Type) bool {
	typ = types.Unalias(typ)
	if _, ok := typ.(*types.TypeParam); ok {
		return isPrimitive(typ)
	}
	if isHandle(typ) {
		return true
	}
	if t.hasContract(typ) {
		return false
	}
	switch u := typ.Underlying().(type) {
	case *types.Basic:
		return u.Info()&types.IsString == 0
	case *types.Array:
		return t.flat(u.Elem())
	}
	return false
}

// loop sums the elements of the array or slice x.
func (t *typeGen) loop(w *writer, elem types.Type, x string, path []string, pos token.Position) error {
	i := t.names.fresh("i")
	body := writer{indent: w.indent + 1}
	if err := t.dyn(&body, elem, x+"["+i+"]", index(path, "[i]"), pos); err != nil {
		return err
	}
	if body.Len() == 0 {
		return nil
	}
	w.open("for %s := range %s {", i, x)
	w.Write(body.Bytes())
	w.close("}")
	return nil
}

func (t *typeGen) mapLoop(w *writer, m *types.Map, x string, path []string, pos token.Position) error {
	key, elem := t.names.fresh("key"), t.names.fresh("elem")

	keys := writer{indent: w.indent + 1}
	if err := t.dyn(&keys, m.Key(), key, index(path, "[key]"), pos); err != nil {
		return err
	}
	elems := writer{indent: w.indent + 1}
	if err := t.dyn(&elems, m.Elem(), elem, index(path, "[elem]"), pos); err != nil {
		return err
	}

	switch {
	case keys.Len() == 0 && elems.Len() == 0:
		return nil
	case elems.Len() == 0:
		w.open("for %s := range %s {", key, x)
	case keys.Len() == 0:
		w.open("for _, %s := range %s {", elem, x)
	default:
		w.open("for %s, %s := range %s {", key, elem, x)
	}
	w.Write(keys.Bytes())
	w.Write(elems.Bytes())
	w.close("}")
	return nil
}
