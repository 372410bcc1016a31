package util

import "golang.org/x/exp/constraints"

// Clamp pins v into [lo, hi]. lo must not exceed hi.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
