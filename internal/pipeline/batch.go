// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"sync"

	"github.com/pdiddy/pdf-toolkit/pkg/types"
)

// Notifier receives each terminal job result as it lands. Implementations
// are presentational: they must not influence execution.
type Notifier interface {
	Notify(res types.JobResult)
}

// Summary aggregates the outcome of a batch run.
type Summary struct {
	Succeeded int
	Failed    int

	// Results holds every terminal result in completion order, which is not
	// submission order when workers > 1.
	Results []types.JobResult
}

// Total returns the number of jobs that reached a terminal state.
func (s Summary) Total() int { return s.Succeeded + s.Failed }

// HasFailures reports whether any job failed.
func (s Summary) HasFailures() bool { return s.Failed > 0 }

// Run executes jobs on a bounded worker pool and returns the aggregate
// summary. Jobs are independent: each owns its output path and no state is
// shared between workers. Cancelling ctx stops dispatching queued jobs;
// jobs already running finish (their handlers observe the cancellation).
// Every terminal result is fanned out to the notifiers before Run returns.
func Run(ctx context.Context, ex *Executor, jobs []types.JobDescriptor, workers int, notifiers ...Notifier) Summary {
	if len(jobs) == 0 {
		return Summary{}
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan types.JobDescriptor)
	resCh := make(chan types.JobResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resCh <- ex.Execute(ctx, job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resCh)
	}()

	var sum Summary
	for res := range resCh {
		if res.Succeeded() {
			sum.Succeeded++
		} else {
			sum.Failed++
		}
		sum.Results = append(sum.Results, res)
		for _, n := range notifiers {
			n.Notify(res)
		}
	}
	return sum
}
