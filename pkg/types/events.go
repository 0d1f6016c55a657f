// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// JobEvent is the bus message carrying one submitted job. Published to the
// jobs subject by `pdf-toolkit submit`, consumed by worker queue groups.
type JobEvent struct {
	Job JobDescriptor `json:"job"`

	// EnqueuedAt is the publish timestamp, distinct from Job.SubmittedAt
	// when a manifest is replayed.
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// ResultEvent is the bus message carrying one terminal job result.
type ResultEvent struct {
	Result JobResult `json:"result"`

	// WorkerID identifies the worker process that executed the job
	// (hostname-pid).
	WorkerID string `json:"worker_id"`
}
