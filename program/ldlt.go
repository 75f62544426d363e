// SPDX-License-Identifier: MIT
package program

import (
	"math"

	"github.com/katalvlaran/nanogo/tensor"
)

// ldlt is a symmetric indefinite LDL' factorization with symmetric
// maximal-diagonal pivoting, sized for the quasi-definite saddle systems
// the interior-point iteration produces (the driver regularizes the KKT
// matrix to +delta/-delta on the two diagonal blocks, which guarantees
// nonzero pivots under any symmetric permutation).
type ldlt struct {
	n    int
	ld   []float64 // unit-lower L below the diagonal, D on the diagonal
	perm []int
	// rcond is the crude reciprocal condition estimate min|d|/max|d|,
	// logged by the solver to flag near-breakdown systems.
	rcond float64
}

// factorize computes P*K*P' = L*D*L'. K is read, not modified. Returns
// ErrLDLT when a pivot (the largest remaining diagonal in magnitude) is at
// most tol times the largest pivot so far, with that scale floored at 1.
func (f *ldlt) factorize(k *tensor.Tensor[float64], tol float64) error {
	n := k.Rows()
	f.n = n
	f.ld = append(f.ld[:0], k.Raw()...)
	f.perm = f.perm[:0]
	for i := 0; i < n; i++ {
		f.perm = append(f.perm, i)
	}
	a := f.ld

	minPivot, maxPivot := math.Inf(1), 0.0
	for j := 0; j < n; j++ {
		// pick the largest remaining diagonal as the pivot
		p := j
		for i := j + 1; i < n; i++ {
			if math.Abs(a[i*n+i]) > math.Abs(a[p*n+p]) {
				p = i
			}
		}
		if p != j {
			f.swap(j, p)
		}

		d := a[j*n+j]
		scale := math.Abs(d)
		if scale > maxPivot {
			maxPivot = scale
		}
		if scale < minPivot {
			minPivot = scale
		}
		if scale <= tol*math.Max(1, maxPivot) {
			f.rcond = 0
			return ErrLDLT
		}

		// eliminate column j: L[i,j] = A[i,j]/d, trailing update
		for i := j + 1; i < n; i++ {
			lij := a[i*n+j] / d
			a[i*n+j] = lij
			for m := j + 1; m <= i; m++ {
				a[i*n+m] -= lij * a[m*n+j] * d
			}
		}
		// keep the upper triangle mirrored for the remaining diagonal
		// search and elimination reads
		for i := j + 1; i < n; i++ {
			for m := i + 1; m < n; m++ {
				a[i*n+m] = a[m*n+i]
			}
		}
	}
	f.rcond = minPivot / maxPivot
	return nil
}

// swap applies the symmetric row/column interchange j <-> p in place.
func (f *ldlt) swap(j, p int) {
	n := f.n
	a := f.ld
	f.perm[j], f.perm[p] = f.perm[p], f.perm[j]
	for m := 0; m < n; m++ {
		a[j*n+m], a[p*n+m] = a[p*n+m], a[j*n+m]
	}
	for m := 0; m < n; m++ {
		a[m*n+j], a[m*n+p] = a[m*n+p], a[m*n+j]
	}
}

// solve overwrites x (length n) with K^{-1}*rhs using the factors.
func (f *ldlt) solve(rhs, x []float64) {
	n := f.n
	a := f.ld
	// x = P*rhs
	for i := 0; i < n; i++ {
		x[i] = rhs[f.perm[i]]
	}
	// forward substitution with unit L
	for i := 0; i < n; i++ {
		for j := 0; j < i; j++ {
			x[i] -= a[i*n+j] * x[j]
		}
	}
	// diagonal
	for i := 0; i < n; i++ {
		x[i] /= a[i*n+i]
	}
	// backward substitution with L'
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			x[i] -= a[j*n+i] * x[j]
		}
	}
	// undo the permutation
	tmp := make([]float64, n)
	for i := 0; i < n; i++ {
		tmp[f.perm[i]] = x[i]
	}
	copy(x, tmp)
}
