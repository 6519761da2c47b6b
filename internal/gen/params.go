package gen

import (
	"go/types"
	"strings"
)

// typeParams is the ordered type parameter list of a declaration. Every
// generated receiver and zero value repeats it verbatim; dropping or
// reordering a parameter would not resolve.
type typeParams struct {
	names       []string
	constraints []string
}

func paramsOf(named *types.Named, qual types.Qualifier) typeParams {
	if named == nil {
		return typeParams{}
	}
	list := named.TypeParams()
	tp := typeParams{
		names:       make([]string, list.Len()),
		constraints: make([]string, list.Len()),
	}
	for i := range list.Len() {
		p := list.At(i)
		tp.names[i] = p.Obj().Name()
		tp.constraints[i] = types.TypeString(p.Constraint(), qual)
	}
	return tp
}

func (tp typeParams) Generic() bool {
	return len(tp.names) > 0
}

// Receiver instantiates name with the parameters: Abc[T, K].
func (tp typeParams) Receiver(name string) string {
	if !tp.Generic() {
		return name
	}
	return name + "[" + strings.Join(tp.names, ", ") + "]"
}

// Decl renders the declaration form: [T any, K nopad.Primitive].
func (tp typeParams) Decl() string {
	if !tp.Generic() {
		return ""
	}
	parts := make([]string, len(tp.names))
	for i := range tp.names {
		parts[i] = tp.names[i] + " " + tp.constraints[i]
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
