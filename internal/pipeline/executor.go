// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs conversion jobs: one at a time through the Executor,
// in bulk through a bounded worker pool, and from YAML batch manifests.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/pdf-toolkit/internal/dispatch"
	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Stager resolves remote sources to local files before execution.
type Stager interface {
	Stage(ctx context.Context, job types.JobDescriptor) (types.JobDescriptor, error)
}

// Executor runs one job end to end: source staging and validation, handler
// resolution, execution, failure classification, and partial-output cleanup.
type Executor struct {
	dispatcher *dispatch.Dispatcher
	stager     Stager

	// timeout bounds a single job, 0 means unbounded.
	timeout time.Duration
}

// NewExecutor builds an Executor over the given dispatch table.
func NewExecutor(d *dispatch.Dispatcher, timeout time.Duration) *Executor {
	return &Executor{dispatcher: d, timeout: timeout}
}

// SetStager installs the remote source resolver. Without one, URL sources
// fail validation like any other missing path.
func (e *Executor) SetStager(s Stager) {
	e.stager = s
}

// Execute runs job to completion and returns its terminal result. Execute
// never returns an error: every failure is folded into a failed JobResult
// with a human-readable message and a taxonomy code.
//
// The output contract holds on every path: a succeeded result names exactly
// one artifact that exists; a failed result leaves nothing behind that the
// job created. Files that existed at the output path before the job ran are
// never deleted.
func (e *Executor) Execute(ctx context.Context, job types.JobDescriptor) types.JobResult {
	res := types.JobResult{
		JobID:     job.ID,
		Op:        job.Op,
		Source:    job.Source(),
		StartedAt: time.Now().UTC(),
	}

	fail := func(err error) types.JobResult {
		res.Status = types.StatusFailed
		res.Code = types.ClassifyError(err)
		res.Error = err.Error()
		res.Output = ""
		res.FinishedAt = time.Now().UTC()
		res.Duration = res.FinishedAt.Sub(res.StartedAt)
		return res
	}

	if len(job.Sources) == 0 {
		return fail(types.Failf(types.CodeFileNotFound, "no source files given"))
	}
	if e.stager != nil {
		staged, err := e.stager.Stage(ctx, job)
		if err != nil {
			return fail(err)
		}
		job = staged
	}
	var bytesIn int64
	for _, src := range job.Sources {
		info, err := os.Stat(src)
		if err != nil {
			return fail(types.Failf(types.CodeFileNotFound, "source not found: %s", src))
		}
		if info.IsDir() {
			return fail(types.Failf(types.CodeFileNotFound, "source is a directory: %s", src))
		}
		bytesIn += info.Size()
	}
	res.BytesIn = bytesIn

	handler, err := e.dispatcher.Resolve(job.Op)
	if err != nil {
		return fail(err)
	}

	if job.Output == "" {
		return fail(types.Failf(types.CodeConversionFailure, "no output path resolved"))
	}
	outExisted := pathExists(job.Output)
	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fail(types.Failf(types.CodeConversionFailure, "creating output directory: %v", err))
		}
	}

	runCtx := ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	artifact, err := handler(runCtx, job)
	if err != nil {
		removeIfCreated(job.Output, outExisted)
		if errors.Is(err, context.DeadlineExceeded) {
			return fail(types.Failf(types.CodeConversionFailure, "%s timed out after %s", job.Op, e.timeout))
		}
		return fail(err)
	}

	info, statErr := os.Stat(artifact.Path)
	if statErr != nil {
		return fail(types.Failf(types.CodeConversionFailure, "converter reported success but produced no output at %s", artifact.Path))
	}

	res.Status = types.StatusSucceeded
	res.Output = artifact.Path
	res.Pages = artifact.Pages
	if info.IsDir() {
		res.BytesOut = dirSize(artifact.Path)
	} else {
		res.BytesOut = info.Size()
	}
	res.FinishedAt = time.Now().UTC()
	res.Duration = res.FinishedAt.Sub(res.StartedAt)
	return res
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// removeIfCreated deletes the job's partial output after a failure, but only
// when the path did not exist before the job ran.
func removeIfCreated(path string, existed bool) {
	if existed {
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		return
	}
	if info.IsDir() {
		os.RemoveAll(path)
		return
	}
	os.Remove(path)
}

// dirSize sums regular file sizes under root. Page-burst artifacts report
// their total this way.
func dirSize(root string) int64 {
	var total int64
	filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
