// SPDX-License-Identifier: MIT
package stats

import "errors"

var (
	// ErrNotFinalized indicates a finalized-only accessor (Mean, StdDev,
	// InvRange, InvStdev) was called before Done.
	ErrNotFinalized = errors.New("stats: ScalarStats not finalized; call Done first")

	// ErrDimensionMismatch indicates Scale/Upscale received a row whose
	// length does not match the accumulator count.
	ErrDimensionMismatch = errors.New("stats: dimension count mismatch")

	// ErrEmptyInput indicates Percentile/Median was called with no values.
	ErrEmptyInput = errors.New("stats: empty input")

	// ErrBadQuantile indicates a quantile outside [0,1].
	ErrBadQuantile = errors.New("stats: quantile must be in [0,1]")

	// ErrDivideByZero indicates IntDiv was asked to divide by zero.
	ErrDivideByZero = errors.New("stats: integer division by zero")
)
