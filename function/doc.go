// Package function provides the objective-function model every solver in
// nanogo minimizes against (Function), the Base embeddable every concrete
// function reuses for fcalls/gcalls bookkeeping, the Constraint model
// (linear equality/inequality, box, ball, convex quadratic, user-supplied
// functional), and a small bank of classic test functions used throughout
// the solver test suites.
package function
