// SPDX-License-Identifier: MIT
package stats

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the q-th quantile (q in [0,1]) of values using the
// empirical CDF, matching matrix/impl_statistics.go's percentile contract
// but delegating the interpolation itself to gonum/stat.
func Percentile(values []float64, q float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyInput
	}
	if q < 0 || q > 1 {
		return 0, ErrBadQuantile
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(q, stat.Empirical, sorted, nil), nil
}

// Median returns Percentile(values, 0.5).
func Median(values []float64) (float64, error) {
	return Percentile(values, 0.5)
}
