// Nopadgen generates no-padding size methods for Go struct types.
//
// Usage:
//
//	//go:generate nopadgen
//	//go:generate nopadgen -type=Header,Frame -mode=static
//
// Types are selected by //nopad:static and //nopad:dynamic directives in
// their doc comments, and by -type. The output is written to
// <package>_nopad.go in the package directory unless -output is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/nopad/internal/gen"
)

const suffix = "_nopad.go"

func main() {
	var (
		typeNames = flag.String("type", "", "Comma-separated list of type names to generate for")
		mode      = flag.String("mode", "both", "Strategy for -type: static, dynamic or both")
		output    = flag.String("output", "", "Output file name (default srcdir/<package>_nopad.go)")
		buildTags = flag.String("tags", "", "Comma-separated list of build tags to apply")
		watch     = flag.Bool("watch", false, "Regenerate whenever a Go file in the package changes")
		verbose   = flag.Bool("v", false, "Verbose logging")
	)
	flag.Usage = usage
	flag.Parse()

	log := newLogger(*verbose)
	defer func() { _ = log.Sync() }()
	gen.SetLogger(log)

	m, err := gen.ParseMode(*mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	patterns := flag.Args()
	if len(patterns) == 0 {
		patterns = []string{"."}
	}

	g := &generator{
		cfg: gen.Config{
			Types: splitList(*typeNames),
			Mode:  m,
			Args:  os.Args[1:],
		},
		patterns: patterns,
		tags:     splitList(*buildTags),
		output:   *output,
		log:      log,
	}

	if *watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := g.watch(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if _, err := g.run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: nopadgen [flags] [packages]")
	fmt.Fprintln(os.Stderr, "       nopadgen -type T[,T...] [-mode static|dynamic|both] [packages]")
	fmt.Fprintln(os.Stderr, "       nopadgen -watch [packages]")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.DisableStacktrace = true
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

type generator struct {
	cfg      gen.Config
	patterns []string
	tags     []string
	output   string
	log      *zap.Logger
}

// run loads the packages and writes one file per package. It returns the
// directories of the loaded packages.
func (g *generator) run() ([]string, error) {
	ignore := suffix
	if g.output != "" {
		ignore = g.output
	}
	pkgs, err := gen.Load(g.patterns, g.tags, ignore)
	if err != nil {
		return nil, err
	}
	if g.output != "" && len(pkgs) > 1 {
		return nil, fmt.Errorf("-output names one file but %d packages matched", len(pkgs))
	}

	dirs := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		dirs = append(dirs, pkg.Dir)

		path := g.outputPath(pkg)
		cfg := g.cfg
		cfg.Output = path

		src, err := gen.New(cfg).Generate(pkg)
		if err != nil {
			return dirs, fmt.Errorf("%s: %w", pkg.Path, err)
		}
		if src == nil {
			g.log.Info("nothing to generate", zap.String("package", pkg.Path))
			continue
		}
		if err := os.WriteFile(path, src, 0o644); err != nil {
			return dirs, fmt.Errorf("write output: %w", err)
		}
		g.log.Info("generated", zap.String("package", pkg.Path), zap.String("file", path))
	}
	return dirs, nil
}

func (g *generator) outputPath(pkg *gen.Package) string {
	if g.output != "" {
		if filepath.IsAbs(g.output) || pkg.Dir == "" {
			return g.output
		}
		return filepath.Join(pkg.Dir, g.output)
	}
	return filepath.Join(pkg.Dir, strings.ToLower(pkg.Name)+suffix)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
