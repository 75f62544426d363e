// SPDX-License-Identifier: MIT
package bundle

import "errors"

var (
	// ErrSubproblem indicates the interior-point solve of the bundle
	// subproblem did not converge.
	ErrSubproblem = errors.New("bundle: subproblem solve failed")
)
