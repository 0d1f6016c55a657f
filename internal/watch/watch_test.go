// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package watch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/internal/pipeline"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// chanNotifier hands results to the test goroutine.
type chanNotifier struct{ ch chan types.JobResult }

func (n chanNotifier) Notify(res types.JobResult) { n.ch <- res }

func newNotifier() chanNotifier {
	return chanNotifier{ch: make(chan types.JobResult, 8)}
}

func waitResult(t *testing.T, ch <-chan types.JobResult) types.JobResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a conversion result")
		return types.JobResult{}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newCopyExecutor wires an executor whose compress handler copies the source
// to the output path.
func newCopyExecutor(t *testing.T) *pipeline.Executor {
	t.Helper()
	d := dispatch.New()
	d.Register(types.OpCompress, func(_ context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
		data, err := os.ReadFile(job.Source())
		if err != nil {
			return dispatch.Artifact{}, err
		}
		if err := os.WriteFile(job.Output, data, 0o644); err != nil {
			return dispatch.Artifact{}, err
		}
		return dispatch.Artifact{Path: job.Output, Pages: 1}, nil
	})
	return pipeline.NewExecutor(d, 0)
}

func TestNewValidation(t *testing.T) {
	ex := newCopyExecutor(t)
	if _, err := New(ex, types.WatchConfig{Op: types.OpCompress}, nil); err == nil || !strings.Contains(err.Error(), "watch directory") {
		t.Errorf("missing dir: err = %v", err)
	}
	if _, err := New(ex, types.WatchConfig{Dir: t.TempDir()}, nil); err == nil || !strings.Contains(err.Error(), "watch operation") {
		t.Errorf("missing op: err = %v", err)
	}
}

func TestNewDefaults(t *testing.T) {
	dir := t.TempDir()
	w, err := New(newCopyExecutor(t), types.WatchConfig{Dir: dir, Op: types.OpCompress}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if w.cfg.Debounce != 2*time.Second {
		t.Errorf("debounce = %s, want 2s", w.cfg.Debounce)
	}
	if want := filepath.Join(dir, "converted"); w.cfg.OutputDir != want {
		t.Errorf("output dir = %q, want %q", w.cfg.OutputDir, want)
	}
	for _, path := range []string{"a.pdf", "B.PDF", "scan.jpeg", "x.tif"} {
		if !w.allowed(path) {
			t.Errorf("%s rejected by default extensions", path)
		}
	}
	for _, path := range []string{"notes.txt", "a.docx", "noext"} {
		if w.allowed(path) {
			t.Errorf("%s allowed by default extensions", path)
		}
	}
}

func TestNewCustomExtensions(t *testing.T) {
	cfg := types.WatchConfig{
		Dir:        t.TempDir(),
		Op:         types.OpCompressImage,
		Extensions: []string{"PNG", ".Jpg"},
	}
	w, err := New(newCopyExecutor(t), cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !w.allowed("shot.png") || !w.allowed("photo.JPG") {
		t.Error("configured extensions rejected")
	}
	if w.allowed("doc.pdf") {
		t.Error("pdf allowed despite image-only configuration")
	}
}

func TestRunConvertsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	notify := newNotifier()
	w, err := New(newCopyExecutor(t), types.WatchConfig{
		Dir:      dir,
		Op:       types.OpCompress,
		Debounce: 20 * time.Millisecond,
	}, quietLogger(), notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	res := waitResult(t, notify.ch)
	if res.Status != types.StatusSucceeded {
		t.Fatalf("status = %s (%s)", res.Status, res.Error)
	}
	want := filepath.Join(dir, "converted", "report_compressed.pdf")
	if res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("artifact missing: %v", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestRunPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	outDir := t.TempDir()

	notify := newNotifier()
	w, err := New(newCopyExecutor(t), types.WatchConfig{
		Dir:       dir,
		Op:        types.OpCompress,
		OutputDir: outDir,
		Debounce:  20 * time.Millisecond,
	}, quietLogger(), notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watch a moment to register before dropping the file.
	time.Sleep(100 * time.Millisecond)
	src := filepath.Join(dir, "scan.pdf")
	if err := os.WriteFile(src, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	res := waitResult(t, notify.ch)
	if res.Status != types.StatusSucceeded {
		t.Fatalf("status = %s (%s)", res.Status, res.Error)
	}
	if res.Source != src {
		t.Errorf("source = %q, want %q", res.Source, src)
	}
	if want := filepath.Join(outDir, "scan_compressed.pdf"); res.Output != want {
		t.Errorf("output = %q, want %q", res.Output, want)
	}
}

func TestRunIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("plain"), 0o644); err != nil {
		t.Fatal(err)
	}

	notify := newNotifier()
	w, err := New(newCopyExecutor(t), types.WatchConfig{
		Dir:      dir,
		Op:       types.OpCompress,
		Debounce: 20 * time.Millisecond,
	}, quietLogger(), notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "more.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case res := <-notify.ch:
		t.Fatalf("unexpected conversion of %s", res.Source)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRunDebouncesPerFile(t *testing.T) {
	dir := t.TempDir()

	notify := chanNotifier{ch: make(chan types.JobResult, 64)}
	w, err := New(newCopyExecutor(t), types.WatchConfig{
		Dir:      dir,
		Op:       types.OpCompress,
		Debounce: 450 * time.Millisecond,
	}, quietLogger(), notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	// Keep dropping fresh files faster than the debounce window. The first
	// file must convert once its own window closes instead of waiting for
	// the stream to stop.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 30; i++ {
			select {
			case <-stop:
				return
			case <-time.After(150 * time.Millisecond):
			}
			name := fmt.Sprintf("drip_%02d.pdf", i)
			if err := os.WriteFile(filepath.Join(dir, name), []byte("%PDF-1.4"), 0o644); err != nil {
				return
			}
		}
	}()

	start := time.Now()
	res := waitResult(t, notify.ch)
	elapsed := time.Since(start)
	close(stop)
	wg.Wait()

	if res.Status != types.StatusSucceeded {
		t.Fatalf("first result = %s (%s)", res.Status, res.Error)
	}
	if elapsed > 2*time.Second {
		t.Fatalf("first conversion took %s with new files still arriving", elapsed)
	}
}

func TestRunContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(bad, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	d := dispatch.New()
	d.Register(types.OpCompress, func(_ context.Context, job types.JobDescriptor) (dispatch.Artifact, error) {
		if strings.HasPrefix(filepath.Base(job.Source()), "broken") {
			return dispatch.Artifact{}, types.Failf(types.CodeConversionFailure, "engine crashed")
		}
		if err := os.WriteFile(job.Output, []byte("ok"), 0o644); err != nil {
			return dispatch.Artifact{}, err
		}
		return dispatch.Artifact{Path: job.Output, Pages: 1}, nil
	})
	ex := pipeline.NewExecutor(d, 0)

	notify := newNotifier()
	w, err := New(ex, types.WatchConfig{
		Dir:      dir,
		Op:       types.OpCompress,
		Debounce: 20 * time.Millisecond,
	}, quietLogger(), notify)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	first := waitResult(t, notify.ch)
	if first.Status != types.StatusFailed || first.Code != types.CodeConversionFailure {
		t.Fatalf("first result = %s/%s, want failed/conversion_failure", first.Status, first.Code)
	}

	time.Sleep(100 * time.Millisecond)
	good := filepath.Join(dir, "fine.pdf")
	if err := os.WriteFile(good, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	second := waitResult(t, notify.ch)
	if second.Status != types.StatusSucceeded {
		t.Fatalf("second result = %s (%s), want success after earlier failure", second.Status, second.Error)
	}
}
