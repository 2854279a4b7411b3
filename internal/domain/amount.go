package domain

import (
	"math"
	"math/bits"
)

// Amounts are unsigned integers in the asset's smallest unit. Additions
// and the rate multiplication saturate at the maximum representable
// value instead of wrapping.

// SatAdd returns a+b, clamped to math.MaxUint64.
func SatAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// SatMul returns a*b, clamped to math.MaxUint64.
func SatMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
