// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package watch turns a directory into a conversion hot folder. Files
// dropped into it are picked up once they settle and run through the
// executor with a fixed operation.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// defaultExtensions are the sources a hot folder picks up when the
// configuration does not say otherwise.
var defaultExtensions = []string{".pdf", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}

// Watcher converts files appearing in one directory.
type Watcher struct {
	ex        *pipeline.Executor
	cfg       types.WatchConfig
	exts      map[string]bool
	log       *slog.Logger
	notifiers []pipeline.Notifier
}

// New builds a Watcher. Outputs land in cfg.OutputDir, by default a
// converted/ subdirectory of the watched directory, which the watch never
// descends into.
func New(ex *pipeline.Executor, cfg types.WatchConfig, log *slog.Logger, notifiers ...pipeline.Notifier) (*Watcher, error) {
	if cfg.Dir == "" {
		return nil, errors.New("no watch directory configured")
	}
	if cfg.Op == "" {
		return nil, errors.New("no watch operation configured")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = 2 * time.Second
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join(cfg.Dir, "converted")
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = defaultExtensions
	}
	allow := make(map[string]bool, len(exts))
	for _, e := range exts {
		allow["."+strings.TrimPrefix(strings.ToLower(e), ".")] = true
	}
	if log == nil {
		log = slog.Default()
	}
	return &Watcher{ex: ex, cfg: cfg, exts: allow, log: log, notifiers: notifiers}, nil
}

// Run watches until ctx is cancelled. Files already present are converted
// first, then each changed file converts once its own debounce window
// passes without further writes, so half-written files are not picked up
// and a steady stream of new files cannot defer the ones already settled.
// Conversion failures go through the notifiers without stopping the watch.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fsw.Close()
	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.cfg.Dir, err)
	}

	w.log.Info("watching",
		"dir", w.cfg.Dir,
		"op", string(w.cfg.Op),
		"output_dir", w.cfg.OutputDir,
		"debounce", w.cfg.Debounce.String(),
	)

	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", w.cfg.Dir, err)
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil
		}
		if entry.IsDir() {
			continue
		}
		if path := filepath.Join(w.cfg.Dir, entry.Name()); w.allowed(path) {
			w.convert(ctx, path)
		}
	}

	// pending maps each changed file to its own settle deadline. The single
	// timer always aims at the earliest one.
	pending := make(map[string]time.Time)
	var timer *time.Timer
	var timerC <-chan time.Time

	rearm := func() {
		if timer != nil {
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer, timerC = nil, nil
		}
		var next time.Time
		for _, due := range pending {
			if next.IsZero() || due.Before(next) {
				next = due
			}
		}
		if next.IsZero() {
			return
		}
		timer = time.NewTimer(time.Until(next))
		timerC = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 || !w.allowed(ev.Name) {
				continue
			}
			pending[ev.Name] = time.Now().Add(w.cfg.Debounce)
			rearm()

		case <-timerC:
			timer, timerC = nil, nil
			now := time.Now()
			for path, due := range pending {
				if due.After(now) {
					continue
				}
				delete(pending, path)
				w.convert(ctx, path)
			}
			rearm()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) allowed(path string) bool {
	return w.exts[strings.ToLower(filepath.Ext(path))]
}

// convert runs one settled file through the executor.
func (w *Watcher) convert(ctx context.Context, path string) {
	// The file can vanish between the event and the debounce window closing.
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}

	output := filepath.Join(w.cfg.OutputDir, filepath.Base(types.DefaultOutput(w.cfg.Op, path)))
	job := types.NewJob(w.cfg.Op, []string{path}, output, types.JobOptions{})
	w.log.Info("picked up", "path", path, "op", string(w.cfg.Op), "job_id", job.ID)

	res := w.ex.Execute(ctx, job)
	for _, n := range w.notifiers {
		n.Notify(res)
	}
}
