// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists job outcomes in a local SQLite database so past
// runs can be listed and summarized after the process exits.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Store manages the job history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the schema
// and parent directory when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			op TEXT NOT NULL,
			sources TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			error TEXT,
			code TEXT,
			pages INTEGER NOT NULL DEFAULT 0,
			bytes_in INTEGER NOT NULL DEFAULT 0,
			bytes_out INTEGER NOT NULL DEFAULT 0,
			submitted_at TEXT,
			started_at TEXT,
			finished_at TEXT,
			duration_ms INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_finished_at ON jobs(finished_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordSubmitted inserts the job in the submitted state. Resubmitting an
// id resets its row to a fresh submission.
func (s *Store) RecordSubmitted(ctx context.Context, job types.JobDescriptor) error {
	sourcesJSON, _ := json.Marshal(job.Sources)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, op, sources, output, status, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			op=excluded.op, sources=excluded.sources, output=excluded.output,
			status=excluded.status, submitted_at=excluded.submitted_at,
			error=NULL, code=NULL, pages=0, bytes_in=0, bytes_out=0,
			started_at=NULL, finished_at=NULL, duration_ms=0`,
		job.ID, string(job.Op), string(sourcesJSON), job.Output,
		string(types.StatusSubmitted), formatTime(job.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("recording submission: %w", err)
	}
	return nil
}

// MarkRunning flips the job to running once a worker picks it up.
func (s *Store) MarkRunning(ctx context.Context, jobID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, started_at = ? WHERE id = ?`,
		string(types.StatusRunning), formatTime(at), jobID,
	)
	if err != nil {
		return fmt.Errorf("marking running: %w", err)
	}
	return nil
}

// RecordResult writes the terminal state for a job. Results arriving for an
// unknown id get a row of their own, so worker processes that never saw the
// submission still leave a trace.
func (s *Store) RecordResult(ctx context.Context, res types.JobResult) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, op, sources, output, status, error, code,
			pages, bytes_in, bytes_out, started_at, finished_at, duration_ms)
		 VALUES (?, ?, '[]', ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, output=excluded.output, error=excluded.error,
			code=excluded.code, pages=excluded.pages, bytes_in=excluded.bytes_in,
			bytes_out=excluded.bytes_out, started_at=excluded.started_at,
			finished_at=excluded.finished_at, duration_ms=excluded.duration_ms`,
		res.JobID, string(res.Op), res.Output, string(res.Status),
		res.Error, string(res.Code), res.Pages, res.BytesIn, res.BytesOut,
		formatTime(res.StartedAt), formatTime(res.FinishedAt), res.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording result: %w", err)
	}
	return nil
}

// Notify records the result, logging rather than failing when the write
// does not land. Satisfies the batch runner's notifier contract.
func (s *Store) Notify(res types.JobResult) {
	if err := s.RecordResult(context.Background(), res); err != nil {
		slog.Warn("history write failed", "job_id", res.JobID, "error", err)
	}
}

// Entry is one job row read back from the database.
type Entry struct {
	ID          string            `json:"id"`
	Op          types.OpKind      `json:"op"`
	Sources     []string          `json:"sources"`
	Output      string            `json:"output,omitempty"`
	Status      types.JobStatus   `json:"status"`
	Error       string            `json:"error,omitempty"`
	Code        types.FailureCode `json:"code,omitempty"`
	Pages       int               `json:"pages,omitempty"`
	BytesIn     int64             `json:"bytes_in,omitempty"`
	BytesOut    int64             `json:"bytes_out,omitempty"`
	SubmittedAt time.Time         `json:"submitted_at"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	Duration    time.Duration     `json:"duration"`
}

// Recent returns up to limit entries, most recently finished first. Jobs
// that never finished sort by submission time.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, op, sources, COALESCE(output, ''), status,
			COALESCE(error, ''), COALESCE(code, ''), pages, bytes_in, bytes_out,
			COALESCE(submitted_at, ''), COALESCE(started_at, ''), COALESCE(finished_at, ''), duration_ms
		 FROM jobs
		 ORDER BY COALESCE(finished_at, submitted_at) DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var op, status, code, sourcesJSON string
		var submittedAt, startedAt, finished string
		var durationMS int64
		if err := rows.Scan(&e.ID, &op, &sourcesJSON, &e.Output, &status,
			&e.Error, &code, &e.Pages, &e.BytesIn, &e.BytesOut,
			&submittedAt, &startedAt, &finished, &durationMS); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		e.Op = types.OpKind(op)
		e.Status = types.JobStatus(status)
		e.Code = types.FailureCode(code)
		e.SubmittedAt = parseTime(submittedAt)
		e.StartedAt = parseTime(startedAt)
		e.FinishedAt = parseTime(finished)
		e.Duration = time.Duration(durationMS) * time.Millisecond
		_ = json.Unmarshal([]byte(sourcesJSON), &e.Sources)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarizes every recorded run.
type Stats struct {
	Total     int                  `json:"total"`
	Succeeded int                  `json:"succeeded"`
	Failed    int                  `json:"failed"`
	BytesIn   int64                `json:"bytes_in"`
	BytesOut  int64                `json:"bytes_out"`
	ByOp      map[types.OpKind]int `json:"by_op"`
}

// Stats aggregates counts and byte totals across the whole history.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	st := Stats{ByOp: make(map[types.OpKind]int)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(bytes_in), 0), COALESCE(SUM(bytes_out), 0)
		 FROM jobs`,
		string(types.StatusSucceeded), string(types.StatusFailed),
	).Scan(&st.Total, &st.Succeeded, &st.Failed, &st.BytesIn, &st.BytesOut)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregating history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT op, COUNT(*) FROM jobs GROUP BY op`)
	if err != nil {
		return Stats{}, fmt.Errorf("aggregating ops: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var op string
		var n int
		if err := rows.Scan(&op, &n); err != nil {
			return Stats{}, fmt.Errorf("scanning op row: %w", err)
		}
		st.ByOp[types.OpKind(op)] = n
	}
	return st, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
