// SPDX-License-Identifier: MIT
package linesearch

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// MoreThuente accepts strong Wolfe using the safeguarded
// cubic/secant/quadratic interpolation of the original MINPACK dcsrch /
// dcstep routines: the step is the interpolant predicting the largest
// decrease, trimmed to stay within a Delta fraction of the bracketing
// interval [stx, sty].
type MoreThuente struct {
	c1      float64
	c2      float64
	delta   float64
	maxIter int
}

// NewMoreThuente builds the search from lsearchk::tolerance,
// lsearchk::max_iterations and lsearchk::morethuente::delta (defaults
// c1 = 1e-4, c2 = 0.9, delta = 0.66).
func NewMoreThuente(p *config.Params) *MoreThuente {
	c1, c2, maxIter := tolerances(p, 1e-4, 0.9)
	return &MoreThuente{c1: c1, c2: c2, delta: p.GetFloat(config.KeyMoreThuenteDelta, 0.66), maxIter: maxIter}
}

// dcstep advances the bracketing triple (stx, sty, stp) one safeguarded
// interpolation, following the MINPACK routine of the same name. All
// slots are (t, f, g) samples of phi; brackt flips to true once the
// minimizer is bracketed.
func dcstep(stx, sty, stp *Step, fp, dp float64, brackt *bool, stpmin, stpmax, delta float64) {
	var stpf float64
	probe := Step{T: stp.T, F: fp, G: dp}
	sgnd := dp * (stx.G / math.Abs(stx.G))

	switch {
	case fp > stx.F:
		// higher value: minimizer bracketed between stx and stp
		stpc := Cubic(*stx, probe)
		stpq := Quadratic(*stx, Step{T: stp.T, F: fp}, nil)
		if math.Abs(stpc-stx.T) < math.Abs(stpq-stx.T) {
			stpf = stpc
		} else {
			stpf = stpc + (stpq-stpc)/2
		}
		*brackt = true

	case sgnd < 0:
		// opposite slopes: minimizer bracketed between stp and stx
		stpc := Cubic(*stx, probe)
		stpq := Secant(*stx, probe)
		if math.Abs(stpc-stp.T) > math.Abs(stpq-stp.T) {
			stpf = stpc
		} else {
			stpf = stpq
		}
		*brackt = true

	case math.Abs(dp) < math.Abs(stx.G):
		// same slope sign, decreasing magnitude: the cubic may point
		// beyond the step, so trust it only when it extrapolates forward
		stpc := Cubic(*stx, probe)
		stpq := Secant(*stx, probe)
		if !(isFinite(stpc) && (stp.T-stx.T)*(stpc-stp.T) > 0) {
			if stp.T > stx.T {
				stpc = stpmax
			} else {
				stpc = stpmin
			}
		}
		if *brackt {
			if math.Abs(stpc-stp.T) < math.Abs(stpq-stp.T) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			if stp.T > stx.T {
				stpf = math.Min(stpf, stp.T+(sty.T-stp.T)*delta)
			} else {
				stpf = math.Max(stpf, stp.T+(sty.T-stp.T)*delta)
			}
		} else {
			if math.Abs(stpc-stp.T) > math.Abs(stpq-stp.T) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			stpf = math.Min(stpmax, stpf)
			stpf = math.Max(stpmin, stpf)
		}

	default:
		// same slope sign, non-decreasing magnitude
		if *brackt {
			stpf = Cubic(probe, *sty)
		} else if stp.T > stx.T {
			stpf = stpmax
		} else {
			stpf = stpmin
		}
	}

	// shuffle the endpoints per the bracketing outcome
	if fp > stx.F {
		*sty = probe
	} else {
		if sgnd < 0 {
			*sty = *stx
		}
		*stx = probe
	}
	stp.T = stpf
}

// Get implements Search.
func (mt *MoreThuente) Get(s *state.State, d *tensor.Tensor[float64], t0 float64) bool {
	origin := s.Clone()
	finit := origin.FX()
	ginit := origin.DG(d)
	gtest := mt.c1 * ginit
	xtol := 2.220446049250313e-16

	s.Move(origin, d, t0)
	stp := t0
	f, g := s.FX(), s.DG(d)

	stage := 1
	brackt := false
	stmin, stmax := 0.0, stp+stp*4
	width := StepMax - StepMin
	width1 := 2 * width

	stx := Step{T: 0, F: finit, G: ginit}
	sty := Step{T: 0, F: finit, G: ginit}

	for i := 0; i < mt.maxIter; i++ {
		if !s.Valid() {
			return false
		}

		ftest := finit + stp*gtest
		if stage == 1 && f <= ftest && g >= 0 {
			stage = 2
		}

		// no further progress possible: the search settles for the best
		// bracketed point, which still satisfies Armijo
		if brackt && (stp <= stmin || stp >= stmax) {
			return true
		}
		if brackt && stmax-stmin <= xtol*stmax {
			return true
		}
		if stp >= StepMax && f <= ftest && g <= gtest {
			return true
		}
		if stp <= StepMin && (f > ftest || g >= gtest) {
			return true
		}

		// strong Wolfe convergence
		if f <= ftest && math.Abs(g) <= mt.c2*(-ginit) {
			return true
		}

		cur := Step{T: stp, F: f, G: g}
		if stage == 1 && f <= stx.F && f > ftest {
			// work on the auxiliary function psi(t) = phi(t) - f0 - t*gtest
			fm := Step{T: cur.T, F: cur.F - stp*gtest, G: cur.G - gtest}
			stxm := Step{T: stx.T, F: stx.F - stx.T*gtest, G: stx.G - gtest}
			stym := Step{T: sty.T, F: sty.F - sty.T*gtest, G: sty.G - gtest}
			stpm := Step{T: stp}

			dcstep(&stxm, &stym, &stpm, fm.F, fm.G, &brackt, stmin, stmax, mt.delta)

			stx = Step{T: stxm.T, F: stxm.F + stxm.T*gtest, G: stxm.G + gtest}
			sty = Step{T: stym.T, F: stym.F + stym.T*gtest, G: stym.G + gtest}
			stp = stpm.T
		} else {
			stpS := Step{T: stp}
			dcstep(&stx, &sty, &stpS, cur.F, cur.G, &brackt, stmin, stmax, mt.delta)
			stp = stpS.T
		}

		if brackt {
			// force sufficient bracket shrinkage with a bisection fallback
			if math.Abs(sty.T-stx.T) >= 0.66*width1 {
				stp = stx.T + 0.5*(sty.T-stx.T)
			}
			width1 = width
			width = math.Abs(sty.T - stx.T)
			stmin = math.Min(stx.T, sty.T)
			stmax = math.Max(stx.T, sty.T)
		} else {
			stmin = stp + 1.1*(stp-stx.T)
			stmax = stp + 4.0*(stp-stx.T)
		}

		stp = clampStep(stp)
		if (brackt && (stp <= stmin || stp >= stmax)) || (brackt && stmax-stmin <= xtol*stmax) {
			stp = stx.T
		}

		s.Move(origin, d, stp)
		f, g = s.FX(), s.DG(d)
	}
	return false
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
