// Package solver implements the unconstrained minimizers: nonlinear
// conjugate gradient (CGD, ten beta formulas), quasi-Newton (SR1, DFP,
// BFGS, Hoshino, Fletcher updates), the universal gradient methods (PGM,
// DGM, FGM) for Holder-smooth objectives, the accelerated subgradient
// methods ASGA-2/ASGA-4, and the ellipsoid method for convex nonsmooth
// problems. Every solver follows the same contract: Minimize(function,
// x0) evaluates once to build the state, iterates direction -> line
// search -> update -> stopping test, and always hands back a state whose
// Status records why the iteration ended.
package solver
