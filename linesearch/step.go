// SPDX-License-Identifier: MIT
package linesearch

import "math"

// Step is one probe of the 1-D function phi(t) = f(x0 + t*d): the step
// length, the value there, and the directional derivative g(x0+t*d).d.
type Step struct {
	T float64 // step length
	F float64 // phi(t)
	G float64 // phi'(t)
}

// Quadratic returns the minimizer of the quadratic interpolant through
// (u.T, u.F, u.G) and (v.T, v.F), reporting through convex whether the
// interpolant is convex (a trustworthy minimizer).
func Quadratic(u, v Step, convex *bool) float64 {
	dt := v.T - u.T
	a := (v.F - u.F - u.G*dt) / (dt * dt)
	if convex != nil {
		*convex = a > 0
	}
	return u.T - 0.5*u.G/a
}

// Cubic returns the minimizer of the cubic interpolant through
// (u.T, u.F, u.G) and (v.T, v.F, v.G); see formula 3.59, "Numerical
// optimization", Nocedal & Wright, 2nd edition. Returns NaN when the
// interpolant has no interior minimizer.
func Cubic(u, v Step) float64 {
	d1 := u.G + v.G - 3*(u.F-v.F)/(u.T-v.T)
	d2 := math.Sqrt(d1*d1 - u.G*v.G)
	if v.T < u.T {
		d2 = -d2
	}
	return v.T - (v.T-u.T)*(v.G+d2-d1)/(v.G-u.G+2*d2)
}

// Secant returns the root of the secant through the two derivative
// samples, (u.T*v.G - v.T*u.G) / (v.G - u.G).
func Secant(u, v Step) float64 {
	return (u.T*v.G - v.T*u.G) / (v.G - u.G)
}

// Interpolate picks the most trustworthy of the three interpolants for a
// bracketing pair: cubic when finite and inside the bracket, then secant,
// then bisection.
func Interpolate(u, v Step) float64 {
	lo, hi := math.Min(u.T, v.T), math.Max(u.T, v.T)

	if tc := Cubic(u, v); !math.IsNaN(tc) && !math.IsInf(tc, 0) && tc > lo && tc < hi {
		return tc
	}
	if ts := Secant(u, v); !math.IsNaN(ts) && !math.IsInf(ts, 0) && ts > lo && ts < hi {
		return ts
	}
	return 0.5 * (lo + hi)
}
