// Package asyncio is the isolated I/O executor of spec.md §4.M: a
// small, dedicated pool of OS threads reserved for blocking I/O (disk
// reads/writes, network sockets, asset loads), kept disjoint from the
// compute pool and the interactive thread so a slow disk never starves
// CPU-bound work.
//
// Grounded on the teacher's loaderGroup.loadAsync (pkg/loader.go): job
// completion and caller cancellation race on a two-case select, so a
// cancelled caller never blocks waiting on a job it no longer needs.
// Submit generalizes that shape from a single cache load to an
// arbitrary I/O closure.
package asyncio

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrShutdownTimeout is returned by Shutdown when workers have not
// finished draining within the bounded shutdown window.
var ErrShutdownTimeout = errors.New("asyncio: shutdown window exceeded, in-flight jobs abandoned")

// ErrRuntimeClosed is delivered through a Submit result when the
// runtime was already shut down before the job could be queued.
var ErrRuntimeClosed = errors.New("asyncio: runtime is shut down")

// rawJob is a unit of blocking I/O work. It receives a context carrying
// the runtime's lifetime, for honoring cancellation mid-operation.
type rawJob func(ctx context.Context)

// Runtime runs I/O jobs on a small fixed set of dedicated goroutines,
// separate from the task.Pool used for CPU-bound work.
type Runtime struct {
	jobs    chan rawJob
	group   *errgroup.Group
	ctx     context.Context
	cancel  context.CancelFunc
	logger  *zap.Logger
	timeout time.Duration
}

// NewRuntime starts workers goroutines (typically 2-4) waiting on a
// shared job queue of the given backlog capacity. shutdownTimeout
// bounds how long Shutdown waits for in-flight jobs before giving up.
func NewRuntime(workers, backlog int, shutdownTimeout time.Duration, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	rt := &Runtime{
		jobs:    make(chan rawJob, backlog),
		group:   group,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
		timeout: shutdownTimeout,
	}

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case job, ok := <-rt.jobs:
					if !ok {
						return nil
					}
					rt.run(job)
				}
			}
		})
	}

	return rt
}

func (rt *Runtime) run(job rawJob) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("asyncio job panicked", zap.Any("recover", r))
		}
	}()
	job(rt.ctx)
}

// submit blocks until job is accepted into the queue or the runtime's
// context is cancelled, matching back-pressure semantics reserved for
// the I/O runtime (spec.md §4.J: blocking send, unlike the interactive
// thread's try-send). Returns false if the runtime has been shut down.
func (rt *Runtime) submit(job rawJob) bool {
	if rt.ctx.Err() != nil {
		return false
	}
	select {
	case rt.jobs <- job:
		return true
	case <-rt.ctx.Done():
		return false
	}
}

// Result is the outcome of a job submitted through Submit.
type Result[T any] struct {
	Value T
	Err   error
}

// Submit runs job on the runtime and returns a channel delivering its
// result. The channel fires with job's own result, or with ctx's error
// if ctx is cancelled first — the same two-case-select shape as the
// teacher's loaderGroup.loadAsync, generalized from a single cache load
// to an arbitrary typed I/O closure. A free function rather than a
// *Runtime method, since Go methods cannot carry their own type
// parameters.
func Submit[T any](rt *Runtime, ctx context.Context, job func(context.Context) (T, error)) <-chan Result[T] {
	out := make(chan Result[T], 1)

	inner := make(chan Result[T], 1)
	if !rt.submit(func(jobCtx context.Context) {
		v, err := job(jobCtx)
		inner <- Result[T]{Value: v, Err: err}
	}) {
		out <- Result[T]{Err: ErrRuntimeClosed}
		close(out)
		return out
	}

	go func() {
		defer close(out)
		select {
		case res := <-inner:
			out <- res
		case <-ctx.Done():
			var zero T
			out <- Result[T]{Value: zero, Err: ctx.Err()}
		}
	}()
	return out
}

// Shutdown cancels outstanding work and waits up to the runtime's
// configured timeout for workers to drain. Jobs still in the queue when
// the timeout fires are abandoned; their goroutines are left to exit on
// their own schedule, since Go cannot forcibly kill a goroutine.
func (rt *Runtime) Shutdown() error {
	rt.cancel()

	done := make(chan error, 1)
	go func() { done <- rt.group.Wait() }()

	if rt.timeout <= 0 {
		return <-done
	}
	select {
	case err := <-done:
		return err
	case <-time.After(rt.timeout):
		return ErrShutdownTimeout
	}
}
