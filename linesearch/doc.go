// Package linesearch implements the 1-D minimization subsystem: step-size
// initializers that seed the search (Unit, Linear, Quadratic, CGDescent)
// and the searches themselves (Backtracking for Armijo, Lemarechal for
// weak Wolfe, MoreThuente and Fletcher for strong Wolfe, CGDescent for
// Wolfe-or-approximate-Wolfe). All searches clamp the step to
// [StepMin, StepMax], run a bounded number of iterations, and mutate the
// caller's state in place to the accepted point or report failure.
package linesearch
