// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify renders terminal job results: plain progress lines for
// humans, JSON lines for machines, structured log records for daemons.
package notify

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Writer emits one progress line per result:
//
//	converted: report.pdf -> report.docx (12 pages, 3.4s)
//	failed:  scan.pdf (ocr_unavailable: tesseract: not installed)
//
// Safe for concurrent use by batch workers.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter builds a line notifier over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify writes the result's progress line.
func (n *Writer) Notify(res types.JobResult) {
	n.mu.Lock()
	defer n.mu.Unlock()

	src := filepath.Base(res.Source)
	if res.Succeeded() {
		dur := res.Duration.Round(10 * time.Millisecond)
		if res.Pages > 0 {
			fmt.Fprintf(n.w, "converted: %s -> %s (%d pages, %s)\n", src, res.Output, res.Pages, dur)
		} else {
			fmt.Fprintf(n.w, "converted: %s -> %s (%s)\n", src, res.Output, dur)
		}
		return
	}
	fmt.Fprintf(n.w, "failed:  %s (%s: %s)\n", src, res.Code, res.Error)
}

// JSON emits one JSON object per result, the same shape worker processes
// publish on the result subject.
type JSON struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSON builds a JSON-lines notifier over w.
func NewJSON(w io.Writer) *JSON {
	return &JSON{enc: json.NewEncoder(w)}
}

// Notify encodes the result as one JSON line.
func (n *JSON) Notify(res types.JobResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_ = n.enc.Encode(res)
}

// Slog routes results through the structured logger, for the watch and
// worker daemons whose stdout is not an operator terminal.
type Slog struct {
	l *slog.Logger
}

// NewSlog builds a logging notifier. A nil logger uses slog.Default.
func NewSlog(l *slog.Logger) *Slog {
	if l == nil {
		l = slog.Default()
	}
	return &Slog{l: l}
}

// Notify logs the result at info level on success, warn on failure.
func (n *Slog) Notify(res types.JobResult) {
	if res.Succeeded() {
		n.l.Info("job succeeded",
			"job_id", res.JobID,
			"op", string(res.Op),
			"source", res.Source,
			"output", res.Output,
			"pages", res.Pages,
			"duration_ms", res.Duration.Milliseconds(),
		)
		return
	}
	n.l.Warn("job failed",
		"job_id", res.JobID,
		"op", string(res.Op),
		"source", res.Source,
		"code", string(res.Code),
		"error", res.Error,
	)
}
