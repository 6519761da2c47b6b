package gen

import (
	"go/format"
	"go/types"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/nopad/errors"
	"github.com/wippyai/nopad/internal/layout"
)

// Config controls one generator run.
type Config struct {
	// Types are requested in addition to directive-annotated ones.
	Types []string
	// Mode applies to Types. Zero means ModeBoth.
	Mode Mode
	// Output is the generated file name. Methods declared in it are stale
	// and never trusted as existing size contracts.
	Output string
	// Args are the command-line arguments echoed in the file header.
	Args []string
}

// Generator emits size methods for the requested types of a package.
type Generator struct {
	cfg Config
}

func New(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// dependency is a member whose type is another request of the same run.
type dependency struct {
	obj   *types.TypeName
	phase errors.Phase
	path  []string
}

type result struct {
	req  *Request
	code []byte
	err  error
	deps []dependency
}

// run is the state of one Generate call. Nothing is shared between runs.
type run struct {
	cfg      Config
	pkg      *Package
	byObj    map[*types.TypeName]*Request
	imports  *importSet
	layout   *layout.Calculator
	asserted []*Request
}

// Generate produces the source file for every request in pkg. It returns
// nil, nil when nothing is requested. Any diagnostic discards the whole file.
func (g *Generator) Generate(pkg *Package) ([]byte, error) {
	reqs, err := g.requests(pkg)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		Logger().Debug("no types requested", zap.String("package", pkg.Path))
		return nil, nil
	}

	r := &run{
		cfg:     g.cfg,
		pkg:     pkg,
		byObj:   make(map[*types.TypeName]*Request, len(reqs)),
		imports: newImportSet(pkg.Types),
		layout:  layout.NewCalculator(pkg.Sizes),
	}
	for _, req := range reqs {
		r.byObj[req.Obj] = req
	}

	results := make([]*result, len(reqs))
	for i, req := range reqs {
		results[i] = r.generate(req)
	}
	propagate(results)

	var diags errors.Diagnostics
	for _, res := range results {
		diags.Add(res.err)
	}
	if err := diags.Err(); err != nil {
		return nil, err
	}
	return r.assemble(results)
}

func (r *run) generate(req *Request) *result {
	t := &typeGen{
		run:    r,
		req:    req,
		params: paramsOf(req.Named, r.imports.qualifier),
		res:    &result{req: req},

		inlining: make(map[*types.TypeName]bool),
	}
	t.names = newLocalNames(r.pkg.Types, t.params)

	log := Logger().With(zap.String("type", req.Name()), zap.Stringer("mode", req.Mode))
	if t.params.Generic() {
		log = log.With(zap.String("params", t.params.Decl()))
	}

	if err := t.emit(); err != nil {
		log.Debug("generation failed", zap.Error(err))
		t.res.err = err
		return t.res
	}
	t.res.code = t.out.Bytes()

	if !t.params.Generic() {
		r.asserted = append(r.asserted, req)
		if st, ok := req.Named.Underlying().(*types.Struct); ok {
			info := r.layout.Struct(st)
			log.Debug("generated",
				zap.Int64("size", info.Size),
				zap.Int64("no_padding", info.NoPadding),
				zap.Int64("saved", info.Wasted()))
			return t.res
		}
	}
	log.Debug("generated")
	return t.res
}

// propagate fails every result whose member types failed, until no more
// failures appear.
func propagate(results []*result) {
	failed := make(map[*types.TypeName]error)
	for _, res := range results {
		if res.err != nil {
			failed[res.req.Obj] = res.err
		}
	}

	for changed := true; changed; {
		changed = false
		for _, res := range results {
			if res.err != nil {
				continue
			}
			for _, dep := range res.deps {
				cause, ok := failed[dep.obj]
				if !ok || dep.obj == res.req.Obj {
					continue
				}
				res.err = errors.Dependency(dep.phase, res.req.Pos, res.req.Name(), dep.path, cause)
				failed[res.req.Obj] = res.err
				changed = true
				break
			}
		}
	}
}

func (r *run) assemble(results []*result) ([]byte, error) {
	var w writer
	w.line("// Code generated by %q; DO NOT EDIT.", strings.TrimSpace("nopadgen "+strings.Join(r.cfg.Args, " ")))
	w.line("")
	w.line("package %s", r.pkg.Name)
	w.line("")

	// Assertions reference nopad, so record them before writing imports.
	var assertions writer
	if len(r.asserted) > 0 {
		nopad := r.imports.nopad()
		assertions.open("var (")
		for _, req := range r.asserted {
			if req.Mode&ModeStatic != 0 {
				assertions.line("_ %s.SizeOf = %s{}", nopad, req.Name())
			}
			assertions.line("_ %s.SizeOfAny = %s{}", nopad, req.Name())
		}
		assertions.close(")")
	}

	r.imports.write(&w)
	w.line("")
	if assertions.Len() > 0 {
		w.Write(assertions.Bytes())
		w.line("")
	}
	for _, res := range results {
		w.Write(res.code)
	}

	src, err := format.Source(w.Bytes())
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEmit, errors.KindFormat, err, "format generated source")
	}
	return src, nil
}

// stale reports whether fn was declared in the generator's previous output.
func (r *run) stale(fn *types.Func) bool {
	if r.cfg.Output == "" {
		return false
	}
	pos := r.pkg.Fset.Position(fn.Pos())
	return filepath.Base(pos.Filename) == filepath.Base(r.cfg.Output)
}
