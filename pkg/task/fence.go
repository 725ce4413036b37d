package task

// fence.go implements the per-frame synchronization point of spec.md
// §4.K: critical tasks (ones a frame cannot present without) register
// themselves, and the interactive thread blocks on WaitForCritical
// before it may proceed to present, up to a bounded timeout.

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fence tracks outstanding critical work for the current frame.
type Fence struct {
	mu      sync.Mutex
	cond    *sync.Cond
	frame   uint64
	pending int
	logger  *zap.Logger
	timeout time.Duration
}

// NewFence builds a Fence with the given default wait timeout. A zero
// timeout disables the bound (WaitForCritical blocks until pending
// drops to zero).
func NewFence(timeout time.Duration, logger *zap.Logger) *Fence {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := &Fence{timeout: timeout, logger: logger}
	f.cond = sync.NewCond(&f.mu)
	return f
}

// BeginFrame advances the frame counter and clears the pending-critical
// count. Returns the new frame number, used to tag dispatched tasks.
func (f *Fence) BeginFrame() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame++
	f.pending = 0
	return f.frame
}

// Frame returns the current frame number.
func (f *Fence) Frame() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame
}

// RegisterCritical marks one more piece of critical work outstanding
// for the current frame.
func (f *Fence) RegisterCritical() {
	f.mu.Lock()
	f.pending++
	f.mu.Unlock()
}

// CompleteCritical marks one piece of critical work done, waking any
// waiter if this was the last one outstanding.
func (f *Fence) CompleteCritical() {
	f.mu.Lock()
	if f.pending > 0 {
		f.pending--
	}
	if f.pending == 0 {
		f.cond.Broadcast()
	}
	f.mu.Unlock()
}

// WaitForCritical blocks until every critical task registered for the
// current frame has completed, or until the fence's timeout elapses. A
// timed-out wait logs a warning and returns, letting the caller proceed
// with stale data rather than stall the frame indefinitely.
func (f *Fence) WaitForCritical() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.pending == 0 {
		return
	}
	if f.timeout <= 0 {
		for f.pending > 0 {
			f.cond.Wait()
		}
		return
	}

	done := make(chan struct{})
	timer := time.AfterFunc(f.timeout, func() {
		f.mu.Lock()
		close(done)
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer timer.Stop()

	for f.pending > 0 {
		select {
		case <-done:
			f.logger.Warn("frame fence timed out waiting for critical tasks",
				zap.Uint64("frame", f.frame), zap.Int("pending", f.pending))
			return
		default:
		}
		f.cond.Wait()
	}
}
