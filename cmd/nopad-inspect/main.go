// Nopad-inspect reports the platform layout of struct types next to their
// no-padding size.
//
// Usage:
//
//	nopad-inspect [-tags t1,t2] [packages]
//	nopad-inspect -wit resolve.json
//	nopad-inspect -i [packages]
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	nopaderrors "github.com/wippyai/nopad/errors"
	"github.com/wippyai/nopad/internal/gen"
	"github.com/wippyai/nopad/witsize"
)

func main() {
	var (
		witFile     = flag.String("wit", "", "WIT JSON resolution to inspect instead of Go packages (- for stdin)")
		buildTags   = flag.String("tags", "", "Comma-separated list of build tags to apply")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	log := newLogger(*verbose)
	defer func() { _ = log.Sync() }()
	gen.SetLogger(log)
	witsize.SetLogger(log)

	title, entries, err := load(*witFile, *buildTags, flag.Args(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *interactive {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if err := runInteractive(title, entries); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}
		log.Warn("stdout is not a terminal, printing the report instead")
	}

	if err := report(os.Stdout, title, entries); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
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

// load collects the entries to show from a WIT file or Go packages.
func load(witFile, tags string, patterns []string, log *zap.Logger) (string, []entry, error) {
	if witFile != "" {
		res, err := witsize.Load(witFile)
		if err != nil {
			return "", nil, err
		}
		infos, err := witsize.NewCalculator().CalculateAll(res)
		var diags *nopaderrors.Diagnostics
		if errors.As(err, &diags) {
			// Records that cannot be sized are skipped, not fatal.
			for _, e := range diags.Errors {
				log.Warn("skipped record", zap.Error(e))
			}
		} else if err != nil {
			return "", nil, err
		}
		entries := make([]entry, len(infos))
		for i, info := range infos {
			entries[i] = fromWIT(info)
		}
		return witFile, entries, nil
	}

	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	var tagList []string
	if tags != "" {
		tagList = strings.Split(tags, ",")
	}
	pkgs, err := gen.Load(patterns, tagList, "")
	if err != nil {
		return "", nil, err
	}
	return strings.Join(patterns, " "), goEntries(pkgs), nil
}
