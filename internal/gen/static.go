package gen

import (
	"fmt"
	"go/token"
	"go/types"
	"strings"

	"github.com/wippyai/nopad/errors"
)

func (t *typeGen) static() error {
	t.phase = errors.PhaseStatic
	members, err := t.pkg.Enumerate(t.req.Obj, t.phase, true)
	if err != nil {
		return err
	}
	if t.params.Generic() {
		return t.staticSum(members)
	}
	return t.sibling(members)
}

// sibling emits _TSizeOfNoPadding, a struct with T's members in order where
// every leaf is a byte array of the member's size. Byte arrays align to 1,
// so the sibling's size is T's size without padding, as a constant.
func (t *typeGen) sibling(members []Member) error {
	name := siblingName(t.req.Name())
	root := t.req.Name() + "{}"

	var fields []string
	for _, m := range members {
		typ := types.Unalias(m.Type())
		// A zero-size last field would make the compiler pad the sibling.
		if t.pkg.zeroSize(typ) {
			continue
		}
		expr, err := t.siblingType(typ, t.memberAccess(root, m), []string{m.Ident()}, t.position(m))
		if err != nil {
			return err
		}
		fields = append(fields, m.Name()+" "+expr)
	}
	if len(fields) == 0 {
		return errors.Degenerate(t.phase, t.req.Pos, t.req.Name())
	}

	unsafe := t.imports.unsafe()
	t.out.line("// %s is %s with every member stored at byte alignment.", name, t.req.Name())
	t.out.open("type %s struct {", name)
	for _, f := range fields {
		t.out.line("%s", f)
	}
	t.out.close("}")
	t.out.line("")
	t.out.line("// SizeOfNoPadding implements nopad.SizeOf.")
	t.out.open("func (%s) SizeOfNoPadding() uintptr {", t.self())
	t.out.line("return %s.Sizeof(%s{})", unsafe, name)
	t.out.close("}")
	t.out.line("")
	return nil
}

// siblingType renders the sibling member for a value of typ reachable as
// access.
func (t *typeGen) siblingType(typ types.Type, access string, path []string, pos token.Position) (string, error) {
	typ = types.Unalias(typ)
	t.depend(typ, path)
	if err := t.fixed(typ, path, pos); err != nil {
		return "", err
	}
	if sib, ok := t.siblingOf(typ); ok {
		return sib, nil
	}

	switch u := typ.Underlying().(type) {
	case *types.Struct:
		if !t.accessible(u) {
			break
		}
		var b strings.Builder
		b.WriteString("struct {\n")
		for i := range u.NumFields() {
			f := u.Field(i)
			if t.pkg.zeroSize(f.Type()) {
				continue
			}
			inner, err := t.siblingType(f.Type(), t.fieldAccess(access, f), extend(path, f.Name()), pos)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "%s %s\n", f.Name(), inner)
		}
		b.WriteString("}")
		return b.String(), nil
	case *types.Array:
		if u.Len() > 0 && t.recurses(u.Elem()) {
			inner, err := t.siblingType(u.Elem(), access+"[0]", index(path, "[0]"), pos)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("[%d]%s", u.Len(), inner), nil
		}
	}

	t.opaque(typ, path)
	return "[" + t.sizeof(access) + "]byte", nil
}

// staticSum emits the generic form: array lengths cannot depend on type
// parameters, so the size is the sum of every leaf's unsafe.Sizeof.
func (t *typeGen) staticSum(members []Member) error {
	zero := t.names.fresh("zero")

	var terms []string
	for _, m := range members {
		typ := types.Unalias(m.Type())
		if t.pkg.zeroSize(typ) {
			continue
		}
		sub, err := t.staticTerms(typ, t.memberAccess(zero, m), []string{m.Ident()}, t.position(m), false)
		if err != nil {
			return err
		}
		terms = append(terms, sub...)
	}
	if len(terms) == 0 {
		return errors.Degenerate(t.phase, t.req.Pos, t.req.Name())
	}

	sum := strings.Join(terms, " +\n")
	t.out.line("// SizeOfNoPadding implements nopad.SizeOf.")
	t.out.open("func (%s) SizeOfNoPadding() uintptr {", t.self())
	if strings.Contains(sum, zero+".") {
		t.out.line("var %s %s", zero, t.self())
	}
	t.out.line("return %s", sum)
	t.out.close("}")
	t.out.line("")
	return nil
}

// staticTerms returns the unsafe.Sizeof terms summing to the no-padding size
// of typ reachable as access. With headers set, variable-length members
// count their header instead of failing.
func (t *typeGen) staticTerms(typ types.Type, access string, path []string, pos token.Position, headers bool) ([]string, error) {
	typ = types.Unalias(typ)
	req := t.depend(typ, path)
	if !headers {
		if err := t.fixed(typ, path, pos); err != nil {
			return nil, err
		}
	}
	if sib, ok := t.siblingOf(typ); ok {
		return []string{t.imports.unsafe() + ".Sizeof(" + sib + "{})"}, nil
	}
	if req != nil && req.Mode&ModeStatic != 0 {
		return []string{access + "." + staticMethod + "()"}, nil
	}
	if tp, ok := typ.(*types.TypeParam); ok {
		switch {
		case isPrimitive(tp):
			return []string{t.sizeof(access)}, nil
		case constrained(tp, staticMethod):
			return []string{access + "." + staticMethod + "()"}, nil
		}
		return []string{t.imports.nopad() + ".StaticOf[" + t.typeExpr(tp) + "]()"}, nil
	}

	switch u := typ.Underlying().(type) {
	case *types.Struct:
		if !t.accessible(u) {
			break
		}
		var terms []string
		for i := range u.NumFields() {
			f := u.Field(i)
			if t.pkg.zeroSize(f.Type()) {
				continue
			}
			sub, err := t.staticTerms(f.Type(), t.fieldAccess(access, f), extend(path, f.Name()), pos, headers)
			if err != nil {
				return nil, err
			}
			terms = append(terms, sub...)
		}
		return terms, nil
	case *types.Array:
		if u.Len() > 0 && t.recurses(u.Elem()) {
			sub, err := t.staticTerms(u.Elem(), access+"[0]", index(path, "[0]"), pos, headers)
			if err != nil || len(sub) == 0 {
				return nil, err
			}
			return []string{fmt.Sprintf("%d * %s", u.Len(), group(sub))}, nil
		}
	}

	t.opaque(typ, path)
	return []string{t.sizeof(access)}, nil
}

func group(terms []string) string {
	if len(terms) == 1 {
		return terms[0]
	}
	return "(" + strings.Join(terms, " + ") + ")"
}

// fixed rejects members whose size depends on live data.
func (t *typeGen) fixed(typ types.Type, path []string, pos token.Position) error {
	switch u := typ.Underlying().(type) {
	case *types.Basic:
		if u.Info()&types.IsString == 0 {
			return nil
		}
	case *types.Slice, *types.Map:
	case *types.Array:
		return t.fixed(types.Unalias(u.Elem()), index(path, "[0]"), pos)
	default:
		return nil
	}
	return errors.VariableLength(pos, t.req.Name(), path, t.pkg.typeString(typ))
}

// siblingOf returns the sibling of a same-package, non-generic type
// requested for static synthesis.
func (t *typeGen) siblingOf(typ types.Type) (string, bool) {
	req := t.requested(typ)
	if req == nil || req.Mode&ModeStatic == 0 || req.Named.TypeParams().Len() > 0 {
		return "", false
	}
	return siblingName(req.Name()), true
}

// recurses reports whether an array of elem must be split per element
// rather than sized as a whole.
func (t *typeGen) recurses(elem types.Type) bool {
	elem = types.Unalias(elem)
	if tp, ok := elem.(*types.TypeParam); ok {
		return !isPrimitive(tp)
	}
	if _, ok := t.siblingOf(elem); ok {
		return true
	}
	if req := t.requested(elem); req != nil && req.Mode&ModeStatic != 0 {
		return true
	}
	switch u := elem.Underlying().(type) {
	case *types.Struct:
		return t.accessible(u) && !t.pkg.zeroSize(elem)
	case *types.Array:
		return u.Len() > 0 && t.recurses(u.Elem())
	}
	return false
}

// forwardAny gives a static-only type the dynamic contract: without
// variable-length members both sizes agree.
func (t *typeGen) forwardAny() {
	v := t.names.fresh("v")
	t.out.line("// SizeOfNoPaddingAny implements nopad.SizeOfAny.")
	t.out.open("func (%s %s) SizeOfNoPaddingAny() uintptr {", v, t.self())
	t.out.line("return %s.SizeOfNoPadding()", v)
	t.out.close("}")
	t.out.line("")
}
