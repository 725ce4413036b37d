// Package world implements the chunk manager (spec.md §4.F), the
// radius-hysteresis loader (§4.G), and the double-buffered event stream
// (§4.H) that sit above chunk storage and the coordinate model.
package world

import (
	"sync"

	"github.com/Voskan/voxelcore/pkg/chunk"
)

// Manager owns the address -> chunk map (spec.md §4.F). It performs no I/O
// and knows nothing about terrain generation: chunks arrive from external
// producers and are placed here by the Loader.
//
// Safe for concurrent use: a single RWMutex guards the map, matching the
// teacher's shard-level locking discipline (pkg/shard.go) scaled down to
// one shard, since chunk addresses are not hashed/sharded by this package.
type Manager struct {
	mu     sync.RWMutex
	chunks map[chunk.Address]*chunk.Chunk
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{chunks: make(map[chunk.Address]*chunk.Chunk)}
}

// Load inserts or replaces the chunk at c.Addr. Replacement is idempotent:
// no error, the old handle is simply dropped (spec.md §4.F).
func (m *Manager) Load(c *chunk.Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[c.Addr] = c
}

// Unload removes and returns the chunk at addr, or (nil, false) if absent.
// The caller is responsible for persisting it first if save-dirty.
func (m *Manager) Unload(addr chunk.Address) (*chunk.Chunk, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[addr]
	if !ok {
		return nil, false
	}
	delete(m.chunks, addr)
	return c, true
}

// Get returns the chunk at addr for read access, or (nil, false).
func (m *Manager) Get(addr chunk.Address) (*chunk.Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chunks[addr]
	return c, ok
}

// GetMut returns the chunk at addr for mutation. Chunk itself is safe for
// concurrent reads, but concurrent writes to one Chunk must be serialised
// by the caller; GetMut only guarantees the handle is not concurrently
// unloaded out from under the caller mid-lookup.
func (m *Manager) GetMut(addr chunk.Address) (*chunk.Chunk, bool) {
	return m.Get(addr)
}

// Count returns the number of currently loaded chunks.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Iter calls fn for every loaded chunk. fn must not call back into the
// Manager (Load/Unload) from within the callback.
func (m *Manager) Iter(fn func(*chunk.Chunk)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.chunks {
		fn(c)
	}
}

// IterMut is Iter's mutation-intent counterpart: identical locking, present
// so callers can express intent the way spec.md §4.F names both.
func (m *Manager) IterMut(fn func(*chunk.Chunk)) { m.Iter(fn) }

// IterDirty calls fn for every loaded chunk carrying at least one of the
// bits in flag.
func (m *Manager) IterDirty(flag chunk.DirtyFlags, fn func(*chunk.Chunk)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.chunks {
		if c.Dirty()&flag != 0 {
			fn(c)
		}
	}
}
