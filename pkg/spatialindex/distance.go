package spatialindex

import (
	"math/bits"

	"github.com/Voskan/voxelcore/pkg/space"
)

// u128 is an unsigned 128-bit magnitude used only for squared-distance
// accumulation (spec.md §4.B: "squared-distance arithmetic uses 128-bit
// products; overflow is saturated"). It never appears outside this file.
type u128 struct {
	hi, lo uint64
}

var maxU128 = u128{hi: ^uint64(0), lo: ^uint64(0)}

func (a u128) lessOrEqual(b u128) bool {
	if a.hi != b.hi {
		return a.hi < b.hi
	}
	return a.lo <= b.lo
}

// addSaturating returns a+b, clamped to maxU128 on overflow.
func (a u128) addSaturating(b u128) u128 {
	lo, carry := bits.Add64(a.lo, b.lo, 0)
	hi, carry2 := bits.Add64(a.hi, b.hi, carry)
	if carry2 != 0 {
		return maxU128
	}
	return u128{hi: hi, lo: lo}
}

// squareU64 returns mag*mag as an exact 128-bit product (always exact: the
// product of two 64-bit values never exceeds 128 bits).
func squareU64(mag uint64) u128 {
	hi, lo := bits.Mul64(mag, mag)
	return u128{hi: hi, lo: lo}
}

// axisSquaredMagnitude returns (a-b)^2 as a u128, saturating to maxU128 if
// the true 128-bit delta's magnitude does not fit in 64 bits (in which case
// its square could not fit in 128 bits either).
func axisSquaredMagnitude(a, b space.Int128) u128 {
	delta := a.Sub(b)
	if delta.IsNegative() {
		delta = delta.Neg()
	}
	if delta.Hi != 0 {
		return maxU128
	}
	return squareU64(delta.Lo)
}

// squaredDistance computes the saturating 128-bit squared Euclidean
// distance between two Universe-space positions, summing three
// per-axis squared magnitudes with saturating addition.
func squaredDistance(a, b space.UniverseSpace) u128 {
	dx := axisSquaredMagnitude(a.X, b.X)
	dy := axisSquaredMagnitude(a.Y, b.Y)
	dz := axisSquaredMagnitude(a.Z, b.Z)
	return dx.addSaturating(dy).addSaturating(dz)
}
