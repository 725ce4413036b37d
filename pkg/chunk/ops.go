package chunk

import "github.com/Voskan/voxelcore/pkg/voxel"

// Get returns the voxel id at chunk-local (x,y,z). Out-of-range coordinates
// return air; callers that want the debug-assertion behaviour of spec.md
// §6 should build with the debugassert build tag (see assert.go).
func (c *Chunk) Get(x, y, z int) voxel.ID {
	if !InBounds(x, y, z) {
		assertf(false, "chunk: Get out of range (%d,%d,%d)", x, y, z)
		return voxel.Air
	}
	return c.storageView().read(LinearIndex(x, y, z))
}

// Set writes id at chunk-local (x,y,z). Per spec.md §6:
//   - out of range is reported via ok=false, for the caller to warn+no-op;
//   - a write where the new id equals the old id is suppressed: no event,
//     no version bump, no data touched (property P6);
//   - an in-range, id-changing write touches palette, packed indices, dirty
//     flags and version, and returns the Event to publish.
func (c *Chunk) Set(x, y, z int, id voxel.ID) (ev Event, emitted bool, ok bool) {
	if !InBounds(x, y, z) {
		return Event{}, false, false
	}
	i := LinearIndex(x, y, z)
	data := c.storageView()
	if data.read(i) == id {
		return Event{}, false, true
	}

	data = c.makeMutable()
	old := data.read(i)
	if !data.write(i, id) {
		return Event{}, false, true
	}
	c.markDirtyAndBumpVersion()
	return Event{
		ChunkAddr: c.Addr,
		Local:     LocalPos{uint8(x), uint8(y), uint8(z)},
		OldID:     old,
		NewID:     id,
	}, true, true
}

// Fill resets the entire chunk to a single uniform value, distinct from
// 32768 individual writes (spec.md §4.C). Always marks dirty and bumps
// version, and returns the BatchEvent to publish.
func (c *Chunk) Fill(id voxel.ID) BatchEvent {
	data := c.makeMutable()
	data.fill(id)
	c.markDirtyAndBumpVersion()
	return BatchEvent{ChunkAddr: c.Addr, Count: Volume}
}

// Compact scans usage and shrinks the palette/tier accordingly. Explicit
// and opt-in (e.g. pre-serialization); never invoked implicitly by Set.
func (c *Chunk) Compact() {
	c.makeMutable().compact()
}

// PaletteLen returns the number of distinct ids currently in the palette,
// mostly useful for diagnostics and tests asserting tier-minimality (P3).
func (c *Chunk) PaletteLen() int { return len(c.storageView().palette) }

// BitWidth returns the active packing tier (0, 2, 4, 8 or 16).
func (c *Chunk) BitWidth() int { return int(c.storageView().bits) }
