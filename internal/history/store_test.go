// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func result(jobID string, op types.OpKind, status types.JobStatus, finished time.Time) types.JobResult {
	res := types.JobResult{
		JobID:      jobID,
		Op:         op,
		Status:     status,
		StartedAt:  finished.Add(-time.Second),
		FinishedAt: finished,
		Duration:   time.Second,
		BytesIn:    1000,
	}
	if status == types.StatusSucceeded {
		res.Output = "/out/" + jobID + ".pdf"
		res.Pages = 2
		res.BytesOut = 600
	} else {
		res.Error = "engine crashed"
		res.Code = types.CodeConversionFailure
	}
	return res
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
}

func TestLifecycle(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	job := types.NewJob(types.OpCompress, []string{"/in/report.pdf"}, "/out/report_compressed.pdf", types.JobOptions{})
	if err := s.RecordSubmitted(ctx, job); err != nil {
		t.Fatal(err)
	}
	if err := s.MarkRunning(ctx, job.ID, time.Now()); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Status != types.StatusRunning {
		t.Errorf("status = %q, want running", entries[0].Status)
	}
	if len(entries[0].Sources) != 1 || entries[0].Sources[0] != "/in/report.pdf" {
		t.Errorf("sources = %v", entries[0].Sources)
	}

	res := result(job.ID, job.Op, types.StatusSucceeded, time.Now())
	if err := s.RecordResult(ctx, res); err != nil {
		t.Fatal(err)
	}

	entries, err = s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("result duplicated the row: %d entries", len(entries))
	}
	e := entries[0]
	if e.Status != types.StatusSucceeded || e.Pages != 2 || e.BytesOut != 600 {
		t.Errorf("entry = %+v", e)
	}
	if len(e.Sources) != 1 {
		t.Errorf("submission sources lost on result update: %v", e.Sources)
	}
	if e.Duration != time.Second {
		t.Errorf("duration = %s", e.Duration)
	}
}

func TestRecordResultWithoutSubmission(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	res := result("orphan-1", types.OpMerge, types.StatusFailed, time.Now())
	if err := s.RecordResult(ctx, res); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != "orphan-1" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Code != types.CodeConversionFailure {
		t.Errorf("code = %q", entries[0].Code)
	}
}

func TestRecentOrderAndLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"first", "second", "third"} {
		res := result(id, types.OpCompress, types.StatusSucceeded, base.Add(time.Duration(i)*time.Minute))
		if err := s.RecordResult(ctx, res); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].ID != "third" || entries[1].ID != "second" {
		t.Errorf("order = %s, %s; want third, second", entries[0].ID, entries[1].ID)
	}
}

func TestStats(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	now := time.Now()
	for _, r := range []types.JobResult{
		result("a", types.OpCompress, types.StatusSucceeded, now),
		result("b", types.OpCompress, types.StatusSucceeded, now),
		result("c", types.OpMerge, types.StatusFailed, now),
	} {
		if err := s.RecordResult(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Total != 3 || st.Succeeded != 2 || st.Failed != 1 {
		t.Errorf("stats = %+v", st)
	}
	if st.BytesIn != 3000 || st.BytesOut != 1200 {
		t.Errorf("bytes = in %d out %d", st.BytesIn, st.BytesOut)
	}
	if st.ByOp[types.OpCompress] != 2 || st.ByOp[types.OpMerge] != 1 {
		t.Errorf("by op = %v", st.ByOp)
	}
}

func TestNotifyRecords(t *testing.T) {
	s := openStore(t)

	s.Notify(result("notified", types.OpSplit, types.StatusSucceeded, time.Now()))

	entries, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != "notified" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestResubmitResetsRow(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	job := types.NewJob(types.OpSplit, []string{"/in/a.pdf"}, "/out/a.pdf", types.JobOptions{})
	if err := s.RecordSubmitted(ctx, job); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordResult(ctx, result(job.ID, job.Op, types.StatusFailed, time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordSubmitted(ctx, job); err != nil {
		t.Fatal(err)
	}

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].Status != types.StatusSubmitted {
		t.Errorf("status = %q, want submitted after resubmission", entries[0].Status)
	}
	if entries[0].Error != "" || entries[0].Code != "" {
		t.Errorf("stale failure fields survive resubmission: %+v", entries[0])
	}
}
