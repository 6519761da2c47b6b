package gen

import (
	"go/ast"
	"go/importer"
	"go/token"
	"go/types"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/wippyai/nopad/errors"
)

// Package is one type-checked Go package as the generator sees it.
type Package struct {
	Fset  *token.FileSet
	Types *types.Package
	Sizes types.Sizes
	Name  string
	Path  string
	Dir   string
	Files []*ast.File
}

func (p *Package) typeString(t types.Type) string {
	return types.TypeString(t, types.RelativeTo(p.Types))
}

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedTypesSizes

// Load parses and type-checks the packages matching patterns.
// Errors in files whose name ends with ignore (the generator's own previous
// output) are expected while that file is stale and only logged.
func Load(patterns []string, tags []string, ignore string) ([]*Package, error) {
	cfg := &packages.Config{
		Mode:  loadMode,
		Tests: false,
	}
	if len(tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(tags, ",")}
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "load packages")
	}
	if len(pkgs) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "no packages matched")
	}

	var diags errors.Diagnostics
	out := make([]*Package, 0, len(pkgs))
	for _, pkg := range pkgs {
		for _, perr := range pkg.Errors {
			if ignore != "" && strings.HasSuffix(errorFile(perr), filepath.Base(ignore)) {
				Logger().Debug("ignoring error in previous output")
				continue
			}
			if perr.Kind == packages.TypeError {
				Logger().Sugar().Warnf("%s: %s", perr.Pos, perr.Msg)
				continue
			}
			diags.Add(errors.New(errors.PhaseLoad, errors.KindInvalidInput).
				Detail("%s: %s", perr.Pos, perr.Msg).
				Build())
		}
		if pkg.Types == nil || len(pkg.Syntax) == 0 {
			continue
		}

		dir := ""
		if len(pkg.GoFiles) > 0 {
			dir = filepath.Dir(pkg.GoFiles[0])
		}
		out = append(out, &Package{
			Fset:  pkg.Fset,
			Types: pkg.Types,
			Sizes: pkg.TypesSizes,
			Name:  pkg.Name,
			Path:  pkg.PkgPath,
			Dir:   dir,
			Files: pkg.Syntax,
		})
	}

	if err := diags.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// errorFile extracts the file name from a packages.Error position
// ("file:line:col").
func errorFile(e packages.Error) string {
	pos := e.Pos
	for range 2 {
		i := strings.LastIndexByte(pos, ':')
		if i < 0 {
			break
		}
		pos = pos[:i]
	}
	return pos
}

// Check type-checks already parsed files importing only the standard library.
func Check(path string, fset *token.FileSet, files []*ast.File, sizes types.Sizes) (*Package, error) {
	if sizes == nil {
		sizes = types.SizesFor("gc", "amd64")
	}
	conf := types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Sizes:    sizes,
	}
	pkg, err := conf.Check(path, fset, files, nil)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "type-check "+path)
	}
	return &Package{
		Fset:  fset,
		Types: pkg,
		Sizes: sizes,
		Name:  pkg.Name(),
		Path:  path,
		Files: files,
	}, nil
}
