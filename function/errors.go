// SPDX-License-Identifier: MIT
package function

import "errors"

// Sentinel errors for the function package, errors.Is-checkable by callers
// per the module-wide error convention.
var (
	// ErrDimension indicates a vector or constraint whose dimension does
	// not match the function's Size.
	ErrDimension = errors.New("function: dimension mismatch")

	// ErrConvexity indicates a constraint that would silently break the
	// function's declared convexity.
	ErrConvexity = errors.New("function: constraint breaks declared convexity")

	// ErrNilGradient indicates ValueGrad was called without a writable
	// gradient destination.
	ErrNilGradient = errors.New("function: gradient destination is nil")
)
