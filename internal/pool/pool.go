package pool

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/objtools/bulks3/errors"
	"github.com/objtools/bulks3/internal/job"
)

// maxWorkers is a sanity bound on worker count.
const maxWorkers = 512

// Runner executes one job against a toolbox and reports its outcome.
// Satisfied by *job.Runner; the indirection keeps pool tests free of
// store-client setup.
type Runner interface {
	Run(ctx context.Context, tb *job.Toolbox, j job.Job) job.Outcome
}

// Pool is a fixed set of workers consuming jobs from a bounded FIFO
// queue. The queue capacity is always twice the worker count: enough to
// absorb bursts from the dispatch loop without unbounded memory growth,
// with Submit blocking as the sole backpressure mechanism.
type Pool struct {
	queue   chan job.Job
	wg      sync.WaitGroup
	runner  Runner
	logger  *slog.Logger
	closing sync.Once

	stats Stats
}

// Stats holds atomic counters for the run summary.
type Stats struct {
	Submitted atomic.Int64
	Succeeded atomic.Int64
	Failed    atomic.Int64
	Exhausted atomic.Int64
}

// New constructs a pool of workerCount workers, each owning one Toolbox
// obtained from factory. The factory runs synchronously here so a
// resource-allocation failure aborts startup before any job is accepted;
// such a failure is fatal for the whole run.
func New(workerCount int, factory job.ToolboxFactory, runner Runner, logger *slog.Logger) (*Pool, error) {
	if workerCount < 1 {
		return nil, errors.NewError("pool", errors.ErrStartup).
			WithMessage(fmt.Sprintf("worker count must be at least 1, got %d", workerCount))
	}
	if workerCount > maxWorkers {
		return nil, errors.NewError("pool", errors.ErrStartup).
			WithMessage(fmt.Sprintf("worker count too high: %d (max %d)", workerCount, maxWorkers))
	}
	if factory == nil {
		return nil, errors.NewError("pool", errors.ErrStartup).
			WithMessage("toolbox factory cannot be nil")
	}
	if runner == nil {
		return nil, errors.NewError("pool", errors.ErrStartup).
			WithMessage("runner cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		queue:  make(chan job.Job, 2*workerCount),
		runner: runner,
		logger: logger,
	}

	toolboxes := make([]*job.Toolbox, 0, workerCount)
	for i := 0; i < workerCount; i++ {
		tb, err := factory()
		if err != nil {
			return nil, errors.NewError("pool", errors.ErrStartup).
				WithMessage(fmt.Sprintf("worker %d toolbox: %v", i, err))
		}
		toolboxes = append(toolboxes, tb)
	}

	for i, tb := range toolboxes {
		p.wg.Add(1)
		go p.worker(i, tb)
	}

	return p, nil
}

// Submit enqueues a job, blocking the caller while the queue is full.
// A job is never dropped silently: Submit returns only once the job is in
// the queue. Submit must not be called after Shutdown.
func (p *Pool) Submit(j job.Job) {
	p.stats.Submitted.Add(1)
	p.queue <- j
}

// Shutdown stops accepting submissions, waits for the queue to drain and
// every in-flight job to reach a terminal outcome, then joins all
// workers. Safe to call exactly once; no job that was submitted is ever
// abandoned mid-execution.
func (p *Pool) Shutdown() {
	p.closing.Do(func() {
		close(p.queue)
	})
	p.wg.Wait()
}

// QueueCapacity returns the bounded queue's capacity (2 x worker count).
func (p *Pool) QueueCapacity() int {
	return cap(p.queue)
}

// Counts returns the submitted/succeeded/failed/exhausted totals so far.
func (p *Pool) Counts() (submitted, succeeded, failed, exhausted int64) {
	return p.stats.Submitted.Load(),
		p.stats.Succeeded.Load(),
		p.stats.Failed.Load(),
		p.stats.Exhausted.Load()
}

// worker is the per-worker loop: dequeue, execute, repeat, exiting when
// the queue is closed and empty. Jobs run on a background context on
// purpose: cancellation stops dispatch, never in-flight transfers.
func (p *Pool) worker(id int, tb *job.Toolbox) {
	defer p.wg.Done()

	ctx := context.Background()
	for j := range p.queue {
		switch p.runner.Run(ctx, tb, j) {
		case job.OutcomeSucceeded:
			p.stats.Succeeded.Add(1)
		case job.OutcomeTerminalFailed:
			p.stats.Failed.Add(1)
		case job.OutcomeRetriesExhausted:
			p.stats.Exhausted.Add(1)
		}
	}

	p.logger.Debug("worker exiting", "worker", id)
}
