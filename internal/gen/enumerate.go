package gen

import (
	"go/types"
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/nopad/errors"
)

// Member is one storage-relevant field of a struct declaration.
type Member struct {
	Var   *types.Var
	Tag   string
	Index int
}

// Name is the declared field name ("_" for blank fields, the type name for
// embedded ones).
func (m Member) Name() string { return m.Var.Name() }

func (m Member) Type() types.Type { return m.Var.Type() }

func (m Member) Blank() bool { return m.Var.Name() == "_" }

func (m Member) Embedded() bool { return m.Var.Embedded() }

// Ident identifies the member in diagnostics: its name, or a positional
// token for blank fields which cannot be selected.
func (m Member) Ident() string {
	if m.Blank() {
		return "_" + strconv.Itoa(m.Index)
	}
	return m.Var.Name()
}

// Enumerate returns the members of the struct declared by obj in declaration
// order. With strip set, layout annotations are removed: zero-size blank
// fields (alignment markers such as structs.HostLayout or [0]uint64) are
// dropped and tags are cleared.
func (p *Package) Enumerate(obj *types.TypeName, phase errors.Phase, strip bool) ([]Member, error) {
	pos := p.Fset.Position(obj.Pos())

	if obj.IsAlias() {
		return nil, errors.SumType(phase, pos, obj.Name(), "alias")
	}

	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, errors.SumType(phase, pos, obj.Name(), p.shapeOf(obj))
	}
	if st.NumFields() == 0 {
		return nil, errors.Degenerate(phase, pos, obj.Name())
	}

	members := make([]Member, 0, st.NumFields())
	for i := range st.NumFields() {
		m := Member{Var: st.Field(i), Tag: st.Tag(i), Index: i}
		if strip {
			if m.Blank() && p.zeroSize(m.Type()) {
				Logger().Debug("stripped layout annotation",
					zap.String("type", obj.Name()),
					zap.String("member", m.Ident()),
					zap.String("annotation", p.typeString(m.Type())))
				continue
			}
			if m.Tag != "" {
				Logger().Debug("stripped member tag",
					zap.String("type", obj.Name()),
					zap.String("member", m.Ident()),
					zap.String("tag", m.Tag))
				m.Tag = ""
			}
		}
		members = append(members, m)
	}

	if len(members) == 0 {
		return nil, errors.Degenerate(phase, pos, obj.Name())
	}
	return members, nil
}

// shapeOf describes a non-struct declaration for diagnostics.
func (p *Package) shapeOf(obj *types.TypeName) string {
	switch u := obj.Type().Underlying().(type) {
	case *types.Interface:
		return "interface"
	case *types.Basic:
		if p.hasConstants(obj) {
			return "enum-like " + u.Name()
		}
		return u.Name()
	default:
		return "non-struct " + types.TypeString(u, types.RelativeTo(p.Types))
	}
}

// hasConstants reports whether the package declares constants of obj's type.
func (p *Package) hasConstants(obj *types.TypeName) bool {
	scope := p.Types.Scope()
	for _, name := range scope.Names() {
		if c, ok := scope.Lookup(name).(*types.Const); ok && types.Identical(c.Type(), obj.Type()) {
			return true
		}
	}
	return false
}

// zeroSize reports whether t occupies no storage. Zero-length arrays and
// structs of zero-size fields qualify even when they mention type parameters;
// anything else depending on a type parameter does not.
func (p *Package) zeroSize(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Array:
		return u.Len() == 0 || p.zeroSize(u.Elem())
	case *types.Struct:
		for i := range u.NumFields() {
			if !p.zeroSize(u.Field(i).Type()) {
				return false
			}
		}
		return true
	}
	if hasTypeParam(t) {
		return false
	}
	return p.Sizes.Sizeof(t) == 0
}

// hasTypeParam reports whether t mentions a type parameter.
func hasTypeParam(t types.Type) bool {
	switch t := t.(type) {
	case *types.TypeParam:
		return true
	case *types.Named:
		args := t.TypeArgs()
		for i := range args.Len() {
			if hasTypeParam(args.At(i)) {
				return true
			}
		}
		return false
	case *types.Pointer:
		return hasTypeParam(t.Elem())
	case *types.Slice:
		return hasTypeParam(t.Elem())
	case *types.Array:
		return hasTypeParam(t.Elem())
	case *types.Map:
		return hasTypeParam(t.Key()) || hasTypeParam(t.Elem())
	case *types.Chan:
		return hasTypeParam(t.Elem())
	case *types.Struct:
		for i := range t.NumFields() {
			if hasTypeParam(t.Field(i).Type()) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
