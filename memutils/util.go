package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint | ~uint32 | ~uint64
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

// AlignUp rounds value up to a multiple of alignment, which must be a power of two
func AlignUp(value int, alignment uint) int {
	DebugCheckPow2(alignment, "alignment")
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

// CeilDiv divides value by divisor, rounding any remainder up. Both must be positive.
func CeilDiv(value, divisor int) int {
	return (value + divisor - 1) / divisor
}

// NearestPow2 rounds val up to the next power of two by smearing the highest set bit
// into every lower position. Powers of two are returned unchanged; 0 stays 0.
func NearestPow2(val uint32) uint32 {
	val--
	val |= val >> 1
	val |= val >> 2
	val |= val >> 4
	val |= val >> 8
	val |= val >> 16
	val++

	return val
}
