package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle is how long the package must stay quiet before regenerating, so an
// editor's burst of writes triggers a single run.
const settle = 200 * time.Millisecond

// watch regenerates on every change to a Go source file of the loaded
// packages until ctx is done. Generation errors are logged, not fatal.
func (g *generator) watch(ctx context.Context) error {
	dirs, err := g.run()
	if err != nil {
		g.log.Error("generation failed", zap.Error(err))
	}
	if len(dirs) == 0 {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return err
		}
		g.log.Debug("watching", zap.String("dir", dir))
	}

	timer := time.NewTimer(settle)
	timer.Stop()

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !g.relevant(ev) {
				continue
			}
			g.log.Debug("source changed", zap.String("file", ev.Name), zap.Stringer("op", ev.Op))
			timer.Reset(settle)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			g.log.Warn("watch error", zap.Error(err))
		case <-timer.C:
			if _, err := g.run(); err != nil {
				g.log.Error("generation failed", zap.Error(err))
			}
		case <-ctx.Done():
			return nil
		}
	}
}

// relevant reports whether ev touches a Go source file other than the
// generator's own output.
func (g *generator) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(ev.Name)
	if !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
		return false
	}
	if g.output != "" {
		return name != filepath.Base(g.output)
	}
	return !strings.HasSuffix(name, suffix)
}
