package world

import (
	"math/bits"

	"github.com/Voskan/voxelcore/pkg/chunk"
	"github.com/Voskan/voxelcore/pkg/space"
)

// AddressOf derives a chunk.Address from a Universe-space position by
// flooring each axis to its containing 32 m chunk. This is the default,
// flat-grid conversion (Face = chunk.FaceNonPlanetary). Loader always uses
// it; there is no option to substitute a cubesphere face projection.
func AddressOf(p space.UniverseSpace) chunk.Address {
	return chunk.Address{
		X:    floorDiv(p.X.TruncateTo64(), space.ChunkSizeMM),
		Y:    floorDiv(p.Y.TruncateTo64(), space.ChunkSizeMM),
		Z:    floorDiv(p.Z.TruncateTo64(), space.ChunkSizeMM),
		Face: chunk.FaceNonPlanetary,
	}
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// centerMM returns the millimetre coordinates of addr's chunk centre.
func centerMM(addr chunk.Address) (x, y, z int64) {
	half := int64(space.ChunkSizeMM / 2)
	return addr.X*space.ChunkSizeMM + half, addr.Y*space.ChunkSizeMM + half, addr.Z*space.ChunkSizeMM + half
}

// squaredDistanceMM computes the saturating squared distance, in mm^2,
// between two points expressed as plain int64 millimetre coordinates
// (camera-relative, so always well within 64-bit range in practice). Mirrors
// pkg/spatialindex's saturating 128-bit product discipline, scaled down
// since these deltas never approach the full 128-bit Universe-space range.
func squaredDistanceMM(ax, ay, az, bx, by, bz int64) (hi, lo uint64) {
	dx := absDelta(ax, bx)
	dy := absDelta(ay, by)
	dz := absDelta(az, bz)

	hx, lx := bits.Mul64(dx, dx)
	hy, ly := bits.Mul64(dy, dy)
	hz, lz := bits.Mul64(dz, dz)

	h1, l1, overflow := add128(hx, lx, hy, ly)
	if overflow {
		return ^uint64(0), ^uint64(0)
	}
	h2, l2, overflow := add128(h1, l1, hz, lz)
	if overflow {
		return ^uint64(0), ^uint64(0)
	}
	return h2, l2
}

// add128 adds two unsigned 128-bit values (each as hi,lo) and reports
// whether the true sum overflowed 128 bits.
func add128(ah, al, bh, bl uint64) (hi, lo uint64, overflow bool) {
	lo, c := bits.Add64(al, bl, 0)
	hi, c2 := bits.Add64(ah, bh, c)
	return hi, lo, c2 != 0
}

func absDelta(a, b int64) uint64 {
	d := a - b
	if d < 0 {
		d = -d
	}
	return uint64(d)
}

// lessEq128 reports whether (ahi,alo) <= (bhi,blo) as unsigned 128-bit values.
func lessEq128(ahi, alo, bhi, blo uint64) bool {
	if ahi != bhi {
		return ahi < bhi
	}
	return alo <= blo
}
