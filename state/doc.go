// Package state holds the mutable per-minimization record every solver
// drives: the current point, value, gradient, constraint residuals, call
// counts, a bounded improvement history feeding the stopping tests, and
// the terminal Status. A State is created once from (function, x0) —
// evaluating f and g exactly once — mutated only by the owning solver,
// and returned to the caller when the solver finishes.
package state
