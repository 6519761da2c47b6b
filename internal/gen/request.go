package gen

import (
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/wippyai/nopad/errors"
)

// Mode selects the strategies generated for a type.
type Mode uint8

const (
	ModeStatic Mode = 1 << iota
	ModeDynamic

	ModeBoth = ModeStatic | ModeDynamic
)

// ParseMode parses the -mode flag value.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "static":
		return ModeStatic, nil
	case "dynamic":
		return ModeDynamic, nil
	case "both", "":
		return ModeBoth, nil
	}
	return 0, errors.InvalidInput(errors.PhaseLoad, "unknown mode "+s+" (want static, dynamic or both)")
}

func (m Mode) String() string {
	switch m {
	case ModeStatic:
		return "static"
	case ModeDynamic:
		return "dynamic"
	case ModeBoth:
		return "both"
	}
	return "none"
}

const (
	directivePrefix  = "//nopad:"
	directiveStatic  = directivePrefix + "static"
	directiveDynamic = directivePrefix + "dynamic"
)

// Request asks for size methods on one type declaration.
type Request struct {
	Obj   *types.TypeName
	Named *types.Named
	Mode  Mode
	Pos   token.Position
}

func (r *Request) Name() string { return r.Obj.Name() }

// requests collects directive and configured requests, ordered by source
// position.
func (g *Generator) requests(pkg *Package) ([]*Request, error) {
	var diags errors.Diagnostics
	byObj := make(map[*types.TypeName]*Request)

	add := func(obj *types.TypeName, mode Mode) {
		if r, ok := byObj[obj]; ok {
			r.Mode |= mode
			return
		}
		named, _ := obj.Type().(*types.Named)
		byObj[obj] = &Request{
			Obj:   obj,
			Named: named,
			Mode:  mode,
			Pos:   pkg.Fset.Position(obj.Pos()),
		}
	}

	for _, file := range pkg.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				doc := ts.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}
				mode, err := directives(pkg.Fset, ts.Name.Name, doc)
				if err != nil {
					diags.Add(err)
					continue
				}
				if mode == 0 {
					continue
				}
				obj, ok := pkg.Types.Scope().Lookup(ts.Name.Name).(*types.TypeName)
				if !ok {
					continue
				}
				add(obj, mode)
			}
		}
	}

	mode := g.cfg.Mode
	if mode == 0 {
		mode = ModeBoth
	}
	for _, name := range g.cfg.Types {
		obj, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName)
		if !ok {
			diags.Add(errors.NotFound(errors.PhaseLoad, "type", pkg.Path+"."+name))
			continue
		}
		add(obj, mode)
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}

	reqs := make([]*Request, 0, len(byObj))
	for _, r := range byObj {
		reqs = append(reqs, r)
	}
	sort.Slice(reqs, func(i, j int) bool {
		a, b := reqs[i].Pos, reqs[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		return a.Offset < b.Offset
	})
	return reqs, nil
}

// directives reads the nopad directives of one type's doc comment.
func directives(fset *token.FileSet, typeName string, doc *ast.CommentGroup) (Mode, error) {
	if doc == nil {
		return 0, nil
	}
	var mode Mode
	for _, c := range doc.List {
		text := strings.TrimRight(c.Text, " \t")
		if !strings.HasPrefix(text, directivePrefix) {
			continue
		}
		switch text {
		case directiveStatic:
			mode |= ModeStatic
		case directiveDynamic:
			mode |= ModeDynamic
		default:
			return 0, errors.New(errors.PhaseLoad, errors.KindMalformedAnnotation).
				Pos(fset.Position(c.Pos())).
				Type(typeName).
				Detail("unknown directive %s (want %s or %s)", text, directiveStatic, directiveDynamic).
				Build()
		}
	}
	return mode, nil
}
