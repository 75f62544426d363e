// SPDX-License-Identifier: MIT
//
// matrix.go adapts rank-2 float64 Tensors into the narrow set of dense
// matrix operations the solvers need directly (gemv, row/col access,
// identity). Bigger factorizations live in the packages that need them
// (program, for its KKT solve) rather than here, keeping this file a
// small, audited gemv-level surface.
package tensor

import "fmt"

// NewMatrix allocates a zero Owning rows x cols tensor.
func NewMatrix(rows, cols int) (*Tensor[float64], error) {
	return New[float64](Dims{rows, cols})
}

// Identity returns an n x n Owning identity matrix.
func Identity(n int) (*Tensor[float64], error) {
	m, err := NewMatrix(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		_ = m.Set(1, i, i)
	}
	return m, nil
}

// Rows returns dim 0 of a rank-2 tensor.
func (t *Tensor[T]) Rows() int {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("tensor: Rows: rank %d tensor is not a matrix", t.Rank()))
	}
	return t.dims[0]
}

// Cols returns dim 1 of a rank-2 tensor.
func (t *Tensor[T]) Cols() int {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("tensor: Cols: rank %d tensor is not a matrix", t.Rank()))
	}
	return t.dims[1]
}

// Row returns a view of row i (rank-1, length Cols()).
func (t *Tensor[T]) Row(i int) (*Tensor[T], error) {
	return t.Index(i)
}

// Gemv computes y = alpha*A*x + beta*y in place, where A is rows x cols,
// x has length cols, and y has length rows. y must not be a ConstView.
// Complexity: O(rows*cols).
func Gemv(y *Tensor[float64], alpha float64, a *Tensor[float64], x *Tensor[float64], beta float64) error {
	if a.Rank() != 2 {
		return fmt.Errorf("tensor: Gemv: %w", ErrRankMismatch)
	}
	rows, cols := a.Rows(), a.Cols()
	if x.Len() != cols || y.Len() != rows {
		return fmt.Errorf("tensor: Gemv: %w", ErrSizeMismatch)
	}
	if y.kind == ConstView {
		return fmt.Errorf("tensor: Gemv: %w", ErrWriteConstView)
	}
	ad, xd, yd := a.data, x.data, y.data
	for i := 0; i < rows; i++ {
		var s float64
		base := i * cols
		for j := 0; j < cols; j++ {
			s += ad[base+j] * xd[j]
		}
		yd[i] = beta*yd[i] + alpha*s
	}
	return nil
}

// OuterAddScaled performs A += alpha * x * y^T in place (a symmetric-update
// building block used by the quasi-Newton Hessian-approximation updates).
// A is rows x cols, x has length rows, y has length cols.
func OuterAddScaled(a *Tensor[float64], alpha float64, x, y *Tensor[float64]) error {
	if a.Rank() != 2 {
		return fmt.Errorf("tensor: OuterAddScaled: %w", ErrRankMismatch)
	}
	rows, cols := a.Rows(), a.Cols()
	if x.Len() != rows || y.Len() != cols {
		return fmt.Errorf("tensor: OuterAddScaled: %w", ErrSizeMismatch)
	}
	if a.kind == ConstView {
		return fmt.Errorf("tensor: OuterAddScaled: %w", ErrWriteConstView)
	}
	ad, xd, yd := a.data, x.data, y.data
	for i := 0; i < rows; i++ {
		xi := alpha * xd[i]
		base := i * cols
		for j := 0; j < cols; j++ {
			ad[base+j] += xi * yd[j]
		}
	}
	return nil
}
