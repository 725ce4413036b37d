// Package chunk implements palette-compressed bit-packed voxel storage
// (spec.md §4.C), the copy-on-write chunk wrapper (§4.D), and the bit-exact
// binary serialization format (§4.E).
package chunk

import (
	"github.com/Voskan/voxelcore/internal/bitpack"
	"github.com/Voskan/voxelcore/pkg/voxel"
)

// Size is the edge length of a chunk in voxels (32^3 = 32768 cells).
const Size = 32

// Volume is the total number of addressable voxels in a chunk.
const Volume = Size * Size * Size

// MaxPaletteLen is the hard cap on distinct ids a palette may hold, imposed
// by the 16-bit palette-index type (spec.md §4.C: "a programmer error is
// to insert beyond 65,535 distinct ids").
const MaxPaletteLen = 1 << 16

// storage is the palette + bit-packed index array for one chunk. It is the
// unit shared (copy-on-write) by chunk.Chunk; see cow.go.
//
// Invariants (spec.md §4.C): palette length <= 2^16 (I1); every packed
// index is < len(palette) (I2); linear index of (x,y,z) is
// x + y*32 + z*1024 (I3); a uniform chunk's single palette entry is
// returned for every position (I4).
type storage struct {
	palette []voxel.ID
	bits    bitpack.Bits
	packed  bitpack.Array // zero value when bits == 0 (uniform chunk)
}

// newEmpty returns a fresh, uniform, all-air chunk: palette = [air], tier 0.
func newEmpty() *storage {
	return &storage{palette: []voxel.ID{voxel.Air}}
}

// clone deep-copies the storage, used by the copy-on-write "make mutable"
// path when ownership is shared (spec.md §4.D).
func (s *storage) clone() *storage {
	pal := make([]voxel.ID, len(s.palette))
	copy(pal, s.palette)
	cp := &storage{palette: pal, bits: s.bits}
	if s.bits != 0 {
		cp.packed = s.packed.Clone()
	}
	return cp
}

// LinearIndex converts chunk-local coordinates to the flat storage index,
// per spec.md invariant I3.
func LinearIndex(x, y, z int) int { return x + y*Size + z*Size*Size }

// InBounds reports whether (x,y,z) addresses a cell within the chunk.
func InBounds(x, y, z int) bool {
	return x >= 0 && x < Size && y >= 0 && y < Size && z >= 0 && z < Size
}

// paletteLookup returns the palette index of id, or -1 if absent.
func (s *storage) paletteLookup(id voxel.ID) int {
	for i, v := range s.palette {
		if v == id {
			return i
		}
	}
	return -1
}

// read returns the voxel id at linear index i. Callers must have already
// bounds-checked (x,y,z); storage has no concept of out-of-range.
func (s *storage) read(i int) voxel.ID {
	if s.bits == 0 {
		return s.palette[0]
	}
	idx := s.packed.Get(i)
	return s.palette[idx]
}

// write sets the voxel id at linear index i, growing the palette and/or
// upgrading the packing tier as needed (spec.md §4.C write steps 1-3).
// It reports whether the stored value actually changed, so callers can
// implement the same-id suppression rule (property P6) without a redundant
// read.
func (s *storage) write(i int, id voxel.ID) bool {
	if s.bits == 0 {
		if s.palette[0] == id {
			return false
		}
		// First divergence from the uniform value: materialise a real
		// index array sized for a 2-entry palette.
		s.growToTier(bitpack.Bits2)
	}

	if s.read(i) == id {
		return false
	}

	idx := s.paletteLookup(id)
	if idx < 0 {
		s.palette = append(s.palette, id)
		idx = len(s.palette) - 1
		if need := bitpack.TierFor(len(s.palette)); need > s.bits {
			s.growToTier(need)
		}
	}
	s.packed.Set(i, uint16(idx))
	return true
}

// growToTier repacks the index array to a wider tier, preserving every
// existing value (spec.md §4.C write step 2).
func (s *storage) growToTier(newBits bitpack.Bits) {
	if s.bits == 0 {
		// No existing index data: every cell currently reads palette[0].
		s.packed = bitpack.New(newBits, Volume)
		s.bits = newBits
		return
	}
	s.packed = s.packed.Repack(newBits)
	s.bits = newBits
}

// fill resets the chunk to a single uniform value, discarding the index
// array entirely (spec.md §4.C Fill; distinct from 32768 individual writes).
func (s *storage) fill(id voxel.ID) {
	s.palette = []voxel.ID{id}
	s.bits = 0
	s.packed = bitpack.Array{}
}

// isUniform reports whether the chunk is currently tier 0.
func (s *storage) isUniform() bool { return s.bits == 0 }

// compact scans the index array's usage, drops unreferenced palette
// entries, renumbers the survivors, and potentially downgrades the tier.
// Explicit and opt-in, never invoked implicitly by write (spec.md §4.C).
func (s *storage) compact() {
	if s.bits == 0 || len(s.palette) <= 1 {
		return
	}

	used := make([]bool, len(s.palette))
	for i := 0; i < Volume; i++ {
		used[s.packed.Get(i)] = true
	}

	newPalette := make([]voxel.ID, 0, len(s.palette))
	remap := make([]int, len(s.palette))
	for old, keep := range used {
		if !keep {
			remap[old] = -1
			continue
		}
		remap[old] = len(newPalette)
		newPalette = append(newPalette, s.palette[old])
	}

	if len(newPalette) == len(s.palette) {
		return // nothing to drop
	}

	newBits := bitpack.TierFor(len(newPalette))
	if len(newPalette) <= 1 {
		s.palette = newPalette
		s.bits = 0
		s.packed = bitpack.Array{}
		return
	}

	newPacked := bitpack.New(newBits, Volume)
	for i := 0; i < Volume; i++ {
		old := int(s.packed.Get(i))
		newPacked.Set(i, uint16(remap[old]))
	}
	s.palette = newPalette
	s.bits = newBits
	s.packed = newPacked
}
