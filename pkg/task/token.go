// Package task implements the four-tier priority scheduler, work-stealing
// dispatch pool, channel hub, frame fence, and cancellation tree of
// spec.md §4.I-L.
package task

import (
	"sync"
	"sync/atomic"
	"weak"
)

// Token is a node in the cancellation forest of spec.md §4.L: a shared
// atomic boolean plus a list of children. Tokens form a forest rooted in
// a process-wide shutdown token, with planet, face, and chunk tokens
// nested beneath (spec.md §5).
//
// Children are held by weak.Pointer (Go 1.24's weak package), not a
// strong slice: a child stays alive exactly as long as some task still
// holds its own *Token, matching "prune_children removes child entries
// whose strong-reference count indicates no task still holds them"
// without this package having to implement its own reference counting.
// This is deliberately not a context.Context: a context cannot be born
// already-cancelled, but spec.md §4.L requires exactly that when a child
// is created under an already-cancelled parent.
type Token struct {
	cancelled atomic.Bool
	label     string

	mu       sync.Mutex
	children []weak.Pointer[Token]
}

// NewRoot returns a fresh, uncancelled root token.
func NewRoot(label string) *Token {
	return &Token{label: label}
}

// Label returns the token's diagnostic name.
func (t *Token) Label() string { return t.label }

// IsCancelled is a relaxed load of the cancellation flag.
func (t *Token) IsCancelled() bool { return t.cancelled.Load() }

// Cancel marks t cancelled and propagates to every live child.
func (t *Token) Cancel() {
	t.cancelled.Store(true)

	t.mu.Lock()
	children := make([]weak.Pointer[Token], len(t.children))
	copy(children, t.children)
	t.mu.Unlock()

	for _, wp := range children {
		if c := wp.Value(); c != nil {
			c.Cancel()
		}
	}
}

// Child creates a new token nested under t. If t is already cancelled at
// creation time, the child is born cancelled (spec.md §4.L).
func (t *Token) Child(label string) *Token {
	child := &Token{label: label}
	if t.IsCancelled() {
		child.cancelled.Store(true)
	}

	t.mu.Lock()
	t.children = append(t.children, weak.Make(child))
	t.mu.Unlock()

	return child
}

// PruneChildren drops every child entry whose token has already been
// garbage collected (no task holds a strong reference to it anymore).
// Safe to call periodically; it never affects live children.
func (t *Token) PruneChildren() {
	t.mu.Lock()
	defer t.mu.Unlock()

	alive := t.children[:0]
	for _, wp := range t.children {
		if wp.Value() != nil {
			alive = append(alive, wp)
		}
	}
	t.children = alive
}

// ChildCount returns the number of child entries currently tracked,
// including ones PruneChildren would still remove. Mostly useful for
// tests and diagnostics.
func (t *Token) ChildCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.children)
}
