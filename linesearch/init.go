// SPDX-License-Identifier: MIT
package linesearch

import (
	"math"

	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// Initializer produces the positive trial step t0 that seeds a 1-D
// search, given the current solver state, the descent direction, and the
// iteration index (0 for the first search). Initializers may keep
// per-minimization memory (previous value, previous slope), so one
// instance serves exactly one solver run.
type Initializer interface {
	Make(s *state.State, d *tensor.Tensor[float64], iter int) float64
}

// UnitInit always proposes t0 = 1, the natural seed for quasi-Newton
// directions which are well-scaled near a solution.
type UnitInit struct{}

// Make implements Initializer.
func (UnitInit) Make(*state.State, *tensor.Tensor[float64], int) float64 { return 1 }

// LinearInit proposes t0 = t_prev * (g_prev.d_prev) / (g.d), carrying the
// previous slope across iterations; the first iteration uses t0 = 1.
type LinearInit struct {
	prevDG float64
}

// Make implements Initializer.
func (li *LinearInit) Make(s *state.State, d *tensor.Tensor[float64], iter int) float64 {
	dg := s.DG(d)
	var t0 float64
	if iter == 0 {
		t0 = 1
	} else {
		t0 = s.StepSize() * li.prevDG / dg
	}
	li.prevDG = dg
	return t0
}

// QuadraticInit proposes t0 = 1.01 * 2 * (f - f_prev) / (g.d), the
// minimizer of the quadratic model through the last two values, inflated
// slightly so the Armijo test can accept the model minimizer itself; the
// first iteration uses t0 = 1.
type QuadraticInit struct {
	prevF float64
}

// Make implements Initializer.
func (qi *QuadraticInit) Make(s *state.State, d *tensor.Tensor[float64], iter int) float64 {
	var t0 float64
	if iter == 0 {
		t0 = 1
	} else {
		t0 = 1.01 * 2 * (s.FX() - qi.prevF) / s.DG(d)
	}
	qi.prevF = s.FX()
	return t0
}

// CGDescentInit is the three-phase rule from CG_DESCENT: the first
// iteration scales by Phi0 against |x|_inf or |f|, later iterations probe
// t_prev*Phi1 and accept the quadratic interpolant when it certifies a
// convex decrease, falling back to t_prev*Phi2 expansion.
type CGDescentInit struct {
	// Phi0, Phi1 in (0,1); Phi2 > 1.
	Phi0 float64
	Phi1 float64
	Phi2 float64

	// Epsilon holds the decaying epsilon_k of the companion CG-DESCENT
	// search as an explicit field instead of outer solver state. Make
	// does not read it, and no solver in this module sets it.
	Epsilon float64
}

// NewCGDescentInit returns the initializer with the reference parameter
// values phi0 = 0.01, phi1 = 0.1, phi2 = 2.
func NewCGDescentInit() *CGDescentInit {
	return &CGDescentInit{Phi0: 0.01, Phi1: 0.1, Phi2: 2}
}

// Make implements Initializer. The quadratic-interpolation probe costs
// one extra function evaluation on iterations past the first.
func (ci *CGDescentInit) Make(s *state.State, d *tensor.Tensor[float64], iter int) float64 {
	if iter == 0 {
		xnorm := tensor.NormInf(s.X())
		fnorm := math.Abs(s.FX())
		switch {
		case xnorm > 0:
			return ci.Phi0 * xnorm / tensor.NormInf(s.GX())
		case fnorm > 0:
			g2, _ := tensor.Dot(s.GX(), s.GX())
			return ci.Phi0 * fnorm / g2
		default:
			return 1
		}
	}

	step0 := Step{T: 0, F: s.FX(), G: s.DG(d)}

	// probe phi(t_prev * phi1) with a value-only evaluation
	tp := s.StepSize() * ci.Phi1
	probe := s.X().Clone()
	_ = tensor.AddScaled(probe, tp, d)
	fp := function.Value(s.Function(), probe)

	convex := false
	tq := Quadratic(step0, Step{T: tp, F: fp}, &convex)
	if fp < step0.F && convex {
		return tq
	}
	return s.StepSize() * ci.Phi2
}
