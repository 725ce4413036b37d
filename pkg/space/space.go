// Package space implements the five-level coordinate hierarchy that lets the
// voxel world span astronomical distances without losing sub-millimetre
// precision near the observer: Universe -> Sector -> Planet -> Chunk -> Local.
//
// Go has no native 128-bit integer, so Int128 and Int96 below represent
// signed two's-complement values as a (Hi, Lo) pair the way the standard
// library's math/bits helpers expect: Lo holds the low 64 bits, Hi holds the
// (sign-extended) high bits. All arithmetic is widening-safe per spec.md's
// overflow discipline: index/offset decomposition is pure bit manipulation,
// never multiplication, so there is nothing to overflow.
package space

import "math/bits"

// Int128 is a signed 128-bit integer: value = Hi*2^64 + Lo.
type Int128 struct {
	Hi int64
	Lo uint64
}

// Int96 is a signed 96-bit integer: value = int64(Hi)*2^64 + Lo. Hi only
// ever carries 32 meaningful bits; it is int32 so the zero value round-trips
// through sign extension without surprises.
type Int96 struct {
	Hi int32
	Lo uint64
}

// Int128FromInt64 sign-extends a 64-bit value into 128 bits.
func Int128FromInt64(v int64) Int128 {
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	return Int128{Hi: hi, Lo: uint64(v)}
}

// Add returns a+b with two's-complement wraparound across the 128-bit word.
func (a Int128) Add(b Int128) Int128 {
	lo, carry := bits.Add64(a.Lo, b.Lo, 0)
	hi := a.Hi + b.Hi + int64(carry)
	return Int128{Hi: hi, Lo: lo}
}

// Sub returns a-b with two's-complement borrow across the 128-bit word.
func (a Int128) Sub(b Int128) Int128 {
	lo, borrow := bits.Sub64(a.Lo, b.Lo, 0)
	hi := a.Hi - b.Hi - int64(borrow)
	return Int128{Hi: hi, Lo: lo}
}

// Neg returns -a.
func (a Int128) Neg() Int128 { return Int128{}.Sub(a) }

// IsNegative reports whether a < 0.
func (a Int128) IsNegative() bool { return a.Hi < 0 }

// ShiftRight32 computes the arithmetic (sign-preserving) right shift of a by
// 32 bits, which per spec.md §4.A is exactly the Universe->Sector index:
// the top 96 bits of the 128-bit value, sign-extended through Hi.
func (a Int128) ShiftRight32() Int96 {
	hi := int32(a.Hi >> 32)
	lo := (uint64(a.Hi) << 32) | (a.Lo >> 32)
	return Int96{Hi: hi, Lo: lo}
}

// LowUint32 returns the low 32 bits of a, interpreted as the non-negative
// sector offset in [0, 2^32) per spec.md §4.A.
func (a Int128) LowUint32() uint32 { return uint32(a.Lo) }

// Widen128 sign-extends a 96-bit value to 128 bits.
func (a Int96) Widen128() Int128 { return Int128{Hi: int64(a.Hi), Lo: a.Lo} }

// AddOffset returns a+delta for a small signed delta, with the same
// sign-extend-then-carry discipline as Int128FromInt64/Add. Used by
// pkg/spatialindex to step a sector index by a handful of neighbouring
// sectors in each direction.
func (a Int96) AddOffset(delta int64) Int96 {
	signExt := int32(0)
	if delta < 0 {
		signExt = -1
	}
	lo, carry := bits.Add64(a.Lo, uint64(delta), 0)
	hi := a.Hi + signExt + int32(carry)
	return Int96{Hi: hi, Lo: lo}
}

// TruncateTo64 drops everything above bit 63. Per spec.md §4.A (Sector->Planet)
// this "fails silently" when the true value does not fit in 64 bits; callers
// must not invoke the Sector->Planet transition outside a planet's influence.
func (a Int128) TruncateTo64() int64 { return int64(a.Lo) }

// FromSectorParts reassembles a 128-bit value from its sector index and
// offset, the exact inverse of Int128.ShiftRight32/LowUint32 composed
// together. Used both by Sector->Universe round-trips and by tests checking
// property P1.
func FromSectorParts(index Int96, offset uint32) Int128 {
	hi := (int64(index.Hi) << 32) | int64(index.Lo>>32)
	lo := (index.Lo << 32) | uint64(offset)
	return Int128{Hi: hi, Lo: lo}
}

/* -------------------------------------------------------------------------
   Per-space storage types (space tags are a compile-time property: which
   Transition[In,Out] you hold, not a runtime field on these structs).
   ------------------------------------------------------------------------- */

// UniverseSpace is a tagged position in Universe space: signed 128-bit mm,
// origin arbitrary, exact and round-trip-preserving under every conversion.
type UniverseSpace struct{ X, Y, Z Int128 }

// SectorSpace is a tagged position in Sector space: a sector index (96-bit
// signed per axis) plus an in-sector offset (32-bit unsigned per axis).
type SectorSpace struct {
	Index  [3]Int96
	Offset [3]uint32
}

// PlanetSpace is a tagged position in Planet space: 64-bit signed mm
// relative to the planet's center.
type PlanetSpace struct{ X, Y, Z int64 }

// ChunkSpace is a tagged position in Chunk space: 32-bit unsigned mm within a
// 32 m chunk (ChunkSizeMM on a side).
type ChunkSpace struct{ X, Y, Z uint32 }

// LocalSpace is a tagged position in Local space: 32-bit float metres
// relative to the camera.
type LocalSpace struct{ X, Y, Z float32 }

// ChunkSizeMM is the edge length of one chunk in millimetres (32 m).
const ChunkSizeMM = 32_000

// MMToMetres converts a millimetre quantity to metres for Chunk->Local scaling.
const MMToMetres = 0.001

/* -------------------------------------------------------------------------
   Universe <-> Sector: pure bitwise, stateless, always exact.
   ------------------------------------------------------------------------- */

// UniverseToSectorCoord decomposes a Universe position into its Sector
// representation. Pure bit manipulation, per spec.md §4.A: no data beyond
// the position itself is required, and it never fails.
func UniverseToSectorCoord(p UniverseSpace) SectorSpace {
	var s SectorSpace
	axes := [3]Int128{p.X, p.Y, p.Z}
	for i, a := range axes {
		idx := a.ShiftRight32()
		s.Index[i] = idx
		s.Offset[i] = a.LowUint32()
	}
	return s
}

// SectorCoordToUniverse reassembles a Universe position from its Sector
// representation. Exact inverse of UniverseToSectorCoord for every input,
// which is property P1 (sector round-trip).
func SectorCoordToUniverse(s SectorSpace) UniverseSpace {
	var p UniverseSpace
	out := [3]*Int128{&p.X, &p.Y, &p.Z}
	for i := range out {
		*out[i] = FromSectorParts(s.Index[i], s.Offset[i])
	}
	return p
}
