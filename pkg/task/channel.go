package task

// channel.go implements the bounded, typed inter-thread channel of
// spec.md §4.J: a non-blocking try-send for the interactive hot path
// (drop-with-warning on a full channel) and a blocking send reserved for
// the async I/O runtime, where back-pressure is the intended signal.

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Channel is a named, bounded, typed queue between threads. It is safe
// for concurrent use by any number of senders and receivers.
type Channel[T any] struct {
	name    string
	ch      chan T
	dropped atomic.Uint64
	logger  *zap.Logger
	metrics hubMetricsSink
}

// NewChannel builds a Channel with the given name (used only for
// diagnostics) and buffer capacity.
func NewChannel[T any](name string, capacity int, logger *zap.Logger) *Channel[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel[T]{name: name, ch: make(chan T, capacity), logger: logger, metrics: noopHubMetrics{}}
}

// Name returns the channel's diagnostic tag.
func (c *Channel[T]) Name() string { return c.name }

// TrySend attempts a non-blocking send, for the interactive thread's hot
// path. On a full channel the value is dropped and counted; the caller
// is never blocked.
func (c *Channel[T]) TrySend(v T) bool {
	select {
	case c.ch <- v:
		return true
	default:
		c.dropped.Add(1)
		c.metrics.incDropped(c.name)
		c.logger.Warn("channel full, dropping message", zap.String("channel", c.name))
		return false
	}
}

// Send blocks until v is accepted or ctx is done. Reserved for the
// async I/O runtime, where a full channel is meant to apply
// back-pressure rather than drop work.
func (c *Channel[T]) Send(ctx context.Context, v T) error {
	select {
	case c.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Drain pulls every value currently buffered without blocking. Typical
// use is once per frame, at the start of a tick.
func (c *Channel[T]) Drain() []T {
	var out []T
	for {
		select {
		case v := <-c.ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

// Dropped returns the number of values discarded by TrySend so far.
func (c *Channel[T]) Dropped() uint64 { return c.dropped.Load() }

// Len reports the number of values currently buffered.
func (c *Channel[T]) Len() int { return len(c.ch) }
