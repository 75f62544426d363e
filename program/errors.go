// SPDX-License-Identifier: MIT
package program

import "errors"

var (
	// ErrDimension indicates inconsistent shapes among Q, c, A, b, G, h.
	ErrDimension = errors.New("program: dimension mismatch")

	// ErrNotSymmetric indicates a Q that is not symmetric.
	ErrNotSymmetric = errors.New("program: Q must be symmetric")

	// ErrLDLT indicates the KKT factorization broke down (pivot collapse
	// even after regularization).
	ErrLDLT = errors.New("program: LDL' factorization breakdown")
)
