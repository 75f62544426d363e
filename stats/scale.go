// SPDX-License-Identifier: MIT
package stats

import (
	"math"

	"github.com/katalvlaran/nanogo/tensor"
)

// ScaleType selects which per-dimension transform Scale/Upscale applies.
type ScaleType int

const (
	// MeanRange maps x to (x-mean) * invRange.
	MeanRange ScaleType = iota
	// MinRange maps x to (x-min) * invRange.
	MinRange
	// Standard maps x to (x-mean) * invStdev.
	Standard
)

// String implements fmt.Stringer.
func (k ScaleType) String() string {
	switch k {
	case MeanRange:
		return "MeanRange"
	case MinRange:
		return "MinRange"
	case Standard:
		return "Standard"
	default:
		return "ScaleType(?)"
	}
}

// Table is a finalized per-column accumulator set, one ScalarStats per
// column of the 2-D data the table was built from.
type Table []*ScalarStats

// NewTable returns cols empty accumulators.
func NewTable(cols int) Table {
	t := make(Table, cols)
	for i := range t {
		t[i] = NewScalarStats()
	}
	return t
}

// Fit folds every row of rows (rows x len(t)) into the accumulators and
// finalizes them.
func (t Table) Fit(rows *tensor.Tensor[float64]) error {
	if rows.Rank() != 2 || rows.Cols() != len(t) {
		return ErrDimensionMismatch
	}
	for i := 0; i < rows.Rows(); i++ {
		row, err := rows.Row(i)
		if err != nil {
			return err
		}
		for j, v := range row.Raw() {
			t[j].Add(v)
		}
	}
	for _, s := range t {
		s.Done()
	}
	return nil
}

// Scale applies kind's transform to rows in place: rows is rows x len(t).
// Any non-finite input value scales to exactly 0, so downstream dense
// models never see a NaN or Inf. A constant column (zero range, or zero
// stdev for Standard) is left unchanged.
func (t Table) Scale(kind ScaleType, rows *tensor.Tensor[float64]) error {
	return t.transform(kind, rows, false)
}

// Upscale inverts Scale's transform in place.
func (t Table) Upscale(kind ScaleType, rows *tensor.Tensor[float64]) error {
	return t.transform(kind, rows, true)
}

func (t Table) transform(kind ScaleType, rows *tensor.Tensor[float64], invert bool) error {
	if rows.Rank() != 2 || rows.Cols() != len(t) {
		return ErrDimensionMismatch
	}
	for i := 0; i < rows.Rows(); i++ {
		row, err := rows.Row(i)
		if err != nil {
			return err
		}
		data := row.Raw()
		for j, x := range data {
			center, scale, err := t[j].centerAndScale(kind)
			if err != nil {
				return err
			}
			var out float64
			if !invert && !finiteVal(x) {
				out = 0
			} else if invert {
				out = x/scale + center
			} else {
				out = (x - center) * scale
			}
			if !finiteVal(out) {
				out = 0
			}
			data[j] = out
		}
	}
	return nil
}

// centerAndScale returns (center, scale) such that Scale computes
// (x-center)*scale and Upscale computes x/scale+center. A degenerate
// dimension (range, or for Standard the stdev, below epsFloor) returns
// (0, 1), so its values pass through unchanged.
func (s *ScalarStats) centerAndScale(kind ScaleType) (center, scale float64, err error) {
	if !s.done {
		return 0, 0, ErrNotFinalized
	}
	switch kind {
	case MeanRange:
		if s.max-s.min < epsFloor {
			return 0, 1, nil
		}
		return s.mean, s.invRange, nil
	case MinRange:
		if s.max-s.min < epsFloor {
			return 0, 1, nil
		}
		return s.min, s.invRange, nil
	case Standard:
		if s.stdev < epsFloor {
			return 0, 1, nil
		}
		return s.mean, s.invStdev, nil
	default:
		return 0, 0, ErrDimensionMismatch
	}
}

func finiteVal(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
