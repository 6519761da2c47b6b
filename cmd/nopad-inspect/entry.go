package main

import (
	"go/types"
	"sort"

	"github.com/wippyai/nopad/internal/gen"
	"github.com/wippyai/nopad/internal/layout"
	"github.com/wippyai/nopad/witsize"
)

// entry is one inspected type, from Go or WIT.
type entry struct {
	name      string
	size      int64
	align     int64
	noPadding int64
	fields    []field
}

type field struct {
	name    string
	typ     string
	offset  int64
	size    int64
	padding int64
}

func (e entry) wasted() int64 {
	return e.size - e.noPadding
}

// goEntries lists the non-generic struct types declared in pkgs.
func goEntries(pkgs []*gen.Package) []entry {
	var out []entry
	for _, pkg := range pkgs {
		calc := layout.NewCalculator(pkg.Sizes)
		scope := pkg.Types.Scope()

		var objs []*types.TypeName
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || obj.IsAlias() {
				continue
			}
			objs = append(objs, obj)
		}
		sort.Slice(objs, func(i, j int) bool { return objs[i].Pos() < objs[j].Pos() })

		for _, obj := range objs {
			named, ok := obj.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				continue
			}
			st, ok := named.Underlying().(*types.Struct)
			if !ok || st.NumFields() == 0 {
				continue
			}
			out = append(out, fromLayout(pkg.Name+"."+obj.Name(), calc.Struct(st)))
		}
	}
	return out
}

func fromLayout(name string, info layout.Info) entry {
	e := entry{
		name:      name,
		size:      info.Size,
		align:     info.Align,
		noPadding: info.NoPadding,
	}
	for _, f := range info.Fields {
		e.fields = append(e.fields, field{
			name:    f.Name,
			typ:     f.Type,
			offset:  f.Offset,
			size:    f.Size,
			padding: f.Padding,
		})
	}
	return e
}

func fromWIT(info witsize.Info) entry {
	e := entry{
		name:      info.Name,
		size:      int64(info.Size),
		align:     int64(info.Align),
		noPadding: int64(info.NoPadding),
	}
	for _, f := range info.Fields {
		e.fields = append(e.fields, field{
			name:    f.Name,
			typ:     f.Type,
			offset:  int64(f.Offset),
			size:    int64(f.Size),
			padding: int64(f.Padding),
		})
	}
	return e
}
