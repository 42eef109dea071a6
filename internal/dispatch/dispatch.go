// Package dispatch feeds input items into the worker pool, honoring
// cooperative cancellation between submissions.
package dispatch

import (
	"context"
	"log/slog"

	"github.com/objtools/bulks3/internal/input"
	"github.com/objtools/bulks3/internal/job"
)

// Submitter accepts jobs for execution. Satisfied by *pool.Pool.
type Submitter interface {
	Submit(j job.Job)
}

// Builder turns one input item into a job. The item is an object key for
// get and delete runs, a local file path for put runs.
type Builder func(item string) job.Job

// Run drains src into sub, building one job per item. Cancellation is
// checked before every submission: once ctx is done no further job is
// enqueued, but nothing already submitted is touched. The stop is logged
// once so an interrupted run explains its shorter summary.
//
// Returns the number of jobs submitted and whether the loop stopped on
// cancellation rather than source exhaustion.
func Run(ctx context.Context, src input.Source, sub Submitter, build Builder, logger *slog.Logger) (int, bool) {
	if logger == nil {
		logger = slog.Default()
	}

	submitted := 0
	for {
		select {
		case <-ctx.Done():
			logger.Warn("cancellation received, no new jobs will be submitted",
				"submitted", submitted)
			return submitted, true
		default:
		}

		item, ok := src.Next()
		if !ok {
			return submitted, false
		}

		sub.Submit(build(item))
		submitted++
	}
}
