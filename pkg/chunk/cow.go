package chunk

import "sync/atomic"

// shared is the copy-on-write unit: one storage owned exclusively or
// jointly by any number of Chunk wrappers (spec.md §4.D). refCount reaching
// 1 means the holding Chunk is the sole owner and may mutate data in
// place; above 1, a write must duplicate first.
type shared struct {
	refCount atomic.Int32
	data     *storage
}

// airBacking is the process-wide singleton backing every freshly created
// empty chunk, collapsing N empty chunks down to one allocation plus N
// lightweight handles (spec.md §4.D).
var airBacking = &shared{data: newEmpty()}

func init() { airBacking.refCount.Store(1) }

// Chunk wraps chunk storage with address, dirty flags, a monotonic version
// counter, and the shared-storage CoW discipline. Reading is always
// zero-cost; writing triggers "make mutable" (spec.md §4.D).
//
// Concurrent reads of a shared Chunk are safe. Concurrent writes to the
// same Chunk must be externally serialised (spec.md §5: the chunk manager
// enforces single-writer-at-a-time via the caller's ECS schedule).
type Chunk struct {
	Addr    Address
	backing atomic.Pointer[shared]
	version atomic.Uint64
	dirty   atomic.Uint32
}

// New returns a fresh, uniform, all-air chunk sharing the process-wide air
// backing. No dirty flags are set (spec.md §4: "new chunks carry no dirty
// flags").
func New(addr Address) *Chunk {
	airBacking.refCount.Add(1)
	c := &Chunk{Addr: addr}
	c.backing.Store(airBacking)
	return c
}

// Share returns a new Chunk wrapper at the same address, referencing the
// same backing storage as c (joint ownership). Used to model "observers
// retain the original" scenarios such as property P11.
func (c *Chunk) Share() *Chunk {
	b := c.backing.Load()
	b.refCount.Add(1)
	cp := &Chunk{Addr: c.Addr}
	cp.backing.Store(b)
	cp.version.Store(c.version.Load())
	cp.dirty.Store(c.dirty.Load())
	return cp
}

// makeMutable returns a *storage this Chunk may freely mutate in place: if
// ownership is already sole, the existing storage is returned unchanged;
// if shared, the storage is duplicated, the wrapper rebound to the
// duplicate, and the old backing's refcount decremented (spec.md §4.D).
func (c *Chunk) makeMutable() *storage {
	b := c.backing.Load()
	if b.refCount.Load() == 1 {
		return b.data
	}
	dup := &shared{data: b.data.clone()}
	dup.refCount.Store(1)
	c.backing.Store(dup)
	b.refCount.Add(-1)
	return dup.data
}

// storageView returns the current storage for read-only access. Safe to
// call concurrently with reads on other Chunk handles sharing the backing.
func (c *Chunk) storageView() *storage { return c.backing.Load().data }

// Version returns the chunk's monotonic write counter (spec.md §4: u64,
// starts at 0, increments by 1 per logical write, never decrements,
// survives serialization). Reads never change it (property P5).
func (c *Chunk) Version() uint64 { return c.version.Load() }

// DirtyFlags is a set over {mesh, save, network}, one bit per downstream
// consumer (spec.md §4 "Dirty flags").
type DirtyFlags uint32

const (
	DirtyMesh DirtyFlags = 1 << iota
	DirtySave
	DirtyNetwork
	dirtyAll = DirtyMesh | DirtySave | DirtyNetwork
)

// Dirty returns the currently-set flags.
func (c *Chunk) Dirty() DirtyFlags { return DirtyFlags(c.dirty.Load()) }

// ClearDirty clears flag independently of any other consumer's flags,
// matching "each downstream consumer clears independently".
func (c *Chunk) ClearDirty(flag DirtyFlags) {
	for {
		old := c.dirty.Load()
		next := old &^ uint32(flag)
		if c.dirty.CompareAndSwap(old, next) {
			return
		}
	}
}

func (c *Chunk) markDirtyAndBumpVersion() {
	c.dirty.Store(uint32(dirtyAll))
	c.version.Add(1)
}

// IsUniform reports whether the chunk is currently a single-value (tier 0)
// chunk, with no packed index storage.
func (c *Chunk) IsUniform() bool { return c.storageView().isUniform() }
