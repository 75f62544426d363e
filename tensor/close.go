// SPDX-License-Identifier: MIT
package tensor

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// CloseScalar reports whether a and b are within eps of each other,
// treating mismatched finiteness as unequal: if exactly one of a, b is
// finite, or both are infinite with different signs, CloseScalar returns
// false regardless of eps. Two NaNs are never close. Delegates the
// finite/finite comparison to gonum's EqualWithinAbs.
func CloseScalar(a, b, eps float64) bool {
	aFinite, bFinite := !math.IsInf(a, 0) && !math.IsNaN(a), !math.IsInf(b, 0) && !math.IsNaN(b)
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if aFinite != bFinite {
		return false
	}
	if !aFinite {
		// both infinite: equal only if same signed infinity
		return math.Signbit(a) == math.Signbit(b)
	}
	return scalar.EqualWithinAbs(a, b, eps)
}

// Close reports whether a and b have the same shape and are CloseScalar in
// every position.
func Close(a, b *Tensor[float64], eps float64) bool {
	if !a.dims.Equal(b.dims) {
		return false
	}
	for i := range a.data {
		if !CloseScalar(a.data[i], b.data[i], eps) {
			return false
		}
	}
	return true
}
