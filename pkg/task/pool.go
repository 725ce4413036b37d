package task

// pool.go is the compute-bound work-stealing pool of spec.md §4.I: a
// fixed set of workers pulling from one shared queue, so no task is
// pinned to a worker. Grounded on the fixed-worker-over-one-channel
// pattern in distr1-distri's internal/batch scheduler.run, using
// errgroup for worker lifecycle and panic containment instead of raw
// sync.WaitGroup bookkeeping. Critical-tier concurrency is additionally
// bounded by a semaphore.Weighted, distinct from the general worker
// count, so a caller can reserve headroom for critical work rather than
// let it compete one-for-one with everything else in the queue.

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type poolJob struct {
	priority Priority
	fn       func()
}

// Pool runs submitted jobs on a fixed number of worker goroutines, all
// pulling from the same channel. Implements world.Dispatcher
// structurally (Submit(func())) without importing that package.
type Pool struct {
	jobs        chan poolJob
	group       *errgroup.Group
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *zap.Logger
	criticalSem *semaphore.Weighted
}

// NewPool starts workers goroutines draining a shared job queue of the
// given backlog capacity. maxCritical bounds how many Critical-priority
// jobs may run at once, independent of workers; pass workers itself for
// no extra restriction.
func NewPool(workers, backlog, maxCritical int, logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	if maxCritical < 1 {
		maxCritical = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	p := &Pool{
		jobs:        make(chan poolJob, backlog),
		group:       group,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
		criticalSem: semaphore.NewWeighted(int64(maxCritical)),
	}

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case job, ok := <-p.jobs:
					if !ok {
						return nil
					}
					p.runJob(job)
				}
			}
		})
	}

	return p
}

// runJob executes job, recovering from a panic so that one broken task
// never takes down the worker that ran it. Critical-priority jobs
// additionally acquire the pool's critical semaphore first, so a flood
// of critical work can't starve the workers handling everything else
// beyond the reserved slots.
func (p *Pool) runJob(job poolJob) {
	if job.priority == Critical {
		if err := p.criticalSem.Acquire(p.ctx, 1); err != nil {
			return // pool shutting down
		}
		defer p.criticalSem.Release(1)
	}

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked", zap.Any("recover", r))
		}
	}()
	job.fn()
}

// Submit hands fn to whichever worker becomes free next, at Normal
// priority. Blocks only if the backlog is full. Satisfies the
// world.Dispatcher interface.
func (p *Pool) Submit(fn func()) {
	p.SubmitPriority(Normal, fn)
}

// SubmitPriority hands fn to whichever worker becomes free next, tagged
// with priority so Critical-tier work is bounded by the pool's
// dedicated semaphore rather than sharing the plain worker count. A
// submit arriving after Close is a no-op: the pool never sends on a
// closed channel, which would panic a concurrent caller instead of
// cleanly dropping the job.
func (p *Pool) SubmitPriority(priority Priority, fn func()) {
	select {
	case p.jobs <- poolJob{priority: priority, fn: fn}:
	case <-p.ctx.Done():
	}
}

// Close stops accepting new work and waits for in-flight jobs to
// finish. Queued-but-not-started jobs are discarded. The job channel is
// deliberately never closed, since a Submit racing with Close would
// otherwise panic on a send to a closed channel; ctx cancellation is
// the sole shutdown signal both sides observe.
func (p *Pool) Close() error {
	p.cancel()
	return p.group.Wait()
}
