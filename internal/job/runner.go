package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/objtools/bulks3/errors"
)

// Outcome is the terminal state a job reaches after execution.
type Outcome int

const (
	// OutcomeSucceeded means one attempt completed cleanly.
	OutcomeSucceeded Outcome = iota

	// OutcomeTerminalFailed means the service rejected the request and
	// retrying cannot help (authorization, not-found).
	OutcomeTerminalFailed

	// OutcomeRetriesExhausted means every attempt in the budget failed
	// with a transient error.
	OutcomeRetriesExhausted
)

// String returns the outcome name used in log lines.
func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeTerminalFailed:
		return "failed"
	case OutcomeRetriesExhausted:
		return "retries exhausted"
	default:
		return "unknown"
	}
}

// Runner executes jobs with per-job retry and bounded exponential backoff.
// One Runner is shared by all workers; it holds no per-job state.
type Runner struct {
	logger  *slog.Logger
	backoff BackoffConfig

	// sleep is swappable so tests can observe delays without waiting.
	sleep func(time.Duration)
}

// NewRunner creates a Runner logging through logger with the given
// backoff bounds.
func NewRunner(logger *slog.Logger, cfg BackoffConfig) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		logger:  logger,
		backoff: cfg.withDefaults(),
		sleep:   time.Sleep,
	}
}

// WithSleep overrides the inter-attempt sleep function. Tests use this to
// record the delay sequence instead of blocking.
func (r *Runner) WithSleep(sleep func(time.Duration)) *Runner {
	r.sleep = sleep
	return r
}

// Run drives one job through its retry state machine against the worker's
// toolbox and returns the terminal outcome.
//
// The operation is attempted at most j.Retries times. A clean attempt ends
// the job. A server-rejected attempt ends the job immediately; for Get the
// local target is removed since the download may have created a partial
// file. A transient failure sleeps for the next backoff delay and tries
// again; when the budget runs out the job ends in OutcomeRetriesExhausted
// with its own log line rather than vanishing silently.
func (r *Runner) Run(ctx context.Context, tb *Toolbox, j Job) Outcome {
	bo := newBackOff(r.backoff)

	for attempt := 1; attempt <= j.Retries; attempt++ {
		err := r.attempt(ctx, tb, j)
		if err == nil {
			r.logger.Debug("job succeeded",
				"job", j.ID, "op", j.Op.String(), "key", j.Key, "attempt", attempt)
			return OutcomeSucceeded
		}

		if !errors.IsRetryable(err) {
			r.logger.Error("job failed",
				"job", j.ID, "op", j.Op.String(), "key", j.Key,
				"attempt", attempt, "error", err)
			r.cleanup(tb, j)
			return OutcomeTerminalFailed
		}

		if attempt < j.Retries {
			delay := bo.NextBackOff()
			r.logger.Warn("transient failure, retrying",
				"job", j.ID, "op", j.Op.String(), "key", j.Key,
				"attempt", attempt, "delay", delay, "error", err)
			r.sleep(delay)
		}
	}

	r.logger.Error("job abandoned, retry budget exhausted",
		"job", j.ID, "op", j.Op.String(), "key", j.Key, "attempts", j.Retries)
	r.cleanup(tb, j)
	return OutcomeRetriesExhausted
}

// attempt performs a single operation attempt against the toolbox.
func (r *Runner) attempt(ctx context.Context, tb *Toolbox, j Job) error {
	switch j.Op {
	case OpGet:
		return tb.Store.GetFile(ctx, tb.Bucket, j.Key, j.LocalPath)
	case OpPut:
		return tb.Store.PutFile(ctx, tb.Bucket, j.Key, j.LocalPath, j.ACL)
	case OpDelete:
		return tb.Store.Delete(ctx, tb.Bucket, j.Key)
	default:
		return errors.NewError(j.Op.String(), errors.ErrUnsupportedOperation)
	}
}

// cleanup removes the local target of a failed Get. Even a rejected
// download can leave an empty or partial file behind.
func (r *Runner) cleanup(tb *Toolbox, j Job) {
	if j.Op == OpGet && j.LocalPath != "" {
		tb.Store.RemoveLocal(j.LocalPath)
	}
}
