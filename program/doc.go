// Package program solves linear and convex quadratic programs
//
//	minimize    0.5*x'Qx + c.x
//	subject to  A*x = b,  G*x <= h
//
// with a primal-dual interior-point method: Mehrotra-style
// predictor-corrector steps on the perturbed KKT conditions, the reduced
// saddle system factorized by a pivoted LDL' with quasi-definite
// regularization. An LP is the Q = 0 special case. The package also
// provides the transformations from free-variable/inequality form to the
// nonnegative standard form.
package program
