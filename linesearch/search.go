// SPDX-License-Identifier: MIT
package linesearch

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// Step-length bounds every search enforces.
const (
	// StepMin is the smallest step any search will probe.
	StepMin = 1e-16
	// StepMax is the largest step any search will probe.
	StepMax = 1e+10
)

// Search mutates s in place to a point x0 + t*d satisfying the search's
// acceptance condition, starting the probe at t0. d must be a descent
// direction at s. Returns false when no acceptable step was found within
// the iteration budget (s is left at the last probed point; callers
// branch on the return value and s.Valid()).
type Search interface {
	Get(s *state.State, d *tensor.Tensor[float64], t0 float64) bool
}

// Lsearch pairs an Initializer with a Search the way solvers consume
// them: one Get per outer iteration.
type Lsearch struct {
	Init   Initializer
	Search Search
}

// Get seeds the step from the initializer and drives the search.
func (l *Lsearch) Get(s *state.State, d *tensor.Tensor[float64], iter int) bool {
	t0 := l.Init.Make(s, d, iter)
	if math.IsNaN(t0) || math.IsInf(t0, 0) || t0 <= 0 {
		t0 = 1
	}
	return l.Search.Get(s, d, clampStep(t0))
}

func clampStep(t float64) float64 {
	return math.Min(math.Max(t, StepMin), StepMax)
}

// tolerances reads the shared (c1, c2) pair and iteration budget the way
// every search does; def holds the per-search defaults.
func tolerances(p *config.Params, defC1, defC2 float64) (c1, c2 float64, maxIter int) {
	pair := p.GetPair(config.KeyLSearchTolerance, config.Pair{A: defC1, B: defC2})
	return pair.A, pair.B, p.GetInt(config.KeyLSearchMaxIterations, 100)
}

// Backtracking accepts the first Armijo step found by shrinking t0,
// preferring the quadratic-interpolation candidate over plain halving
// when the interpolant is convex and lands well inside the current step.
type Backtracking struct {
	c1      float64
	c2      float64
	maxIter int
}

// NewBacktracking builds the search from lsearchk::tolerance and
// lsearchk::max_iterations (defaults c1 = 1e-4, c2 = 0.9).
func NewBacktracking(p *config.Params) *Backtracking {
	c1, c2, maxIter := tolerances(p, 1e-4, 0.9)
	return &Backtracking{c1: c1, c2: c2, maxIter: maxIter}
}

// Get implements Search.
func (bs *Backtracking) Get(s *state.State, d *tensor.Tensor[float64], t0 float64) bool {
	origin := s.Clone()
	step0 := Step{T: 0, F: origin.FX(), G: origin.DG(d)}

	t := t0
	for i := 0; i < bs.maxIter; i++ {
		s.Move(origin, d, t)
		if s.Valid() && s.HasArmijo(origin, d, t, bs.c1) {
			return true
		}
		if t <= StepMin {
			return false
		}
		next := t / 2
		if s.Valid() {
			convex := false
			tq := Quadratic(step0, Step{T: t, F: s.FX()}, &convex)
			if convex && tq > 0.1*t && tq < 0.9*t {
				next = tq
			}
		}
		t = clampStep(next)
	}
	return false
}

// Lemarechal accepts the (weak) Wolfe conditions by maintaining a
// bracket [tL, tR]: an Armijo failure tightens tR, a curvature failure
// tightens tL, and the next probe interpolates inside the bracket or
// extrapolates by Rho while tR is still unbounded.
type Lemarechal struct {
	c1      float64
	c2      float64
	rho     float64
	maxIter int
}

// NewLemarechal builds the search (defaults c1 = 1e-4, c2 = 0.9, and an
// extrapolation factor of 3 while the bracket is open).
func NewLemarechal(p *config.Params) *Lemarechal {
	c1, c2, maxIter := tolerances(p, 1e-4, 0.9)
	return &Lemarechal{c1: c1, c2: c2, rho: 3, maxIter: maxIter}
}

// Get implements Search.
func (ls *Lemarechal) Get(s *state.State, d *tensor.Tensor[float64], t0 float64) bool {
	origin := s.Clone()
	stepL := Step{T: 0, F: origin.FX(), G: origin.DG(d)}
	stepR := Step{T: math.Inf(1)}

	t := t0
	for i := 0; i < ls.maxIter; i++ {
		s.Move(origin, d, t)
		if !s.Valid() {
			return false
		}
		cur := Step{T: t, F: s.FX(), G: s.DG(d)}
		switch {
		case !s.HasArmijo(origin, d, t, ls.c1):
			stepR = cur
		case !s.HasWolfe(origin, d, ls.c2):
			stepL = cur
		default:
			return true
		}
		if math.IsInf(stepR.T, 1) {
			t = clampStep(t * ls.rho)
		} else {
			t = clampStep(Interpolate(stepL, stepR))
		}
		if stepR.T-stepL.T < StepMin {
			return false
		}
	}
	return false
}

// Fletcher accepts strong Wolfe via the classic bracket-then-zoom scheme
// (algorithms 3.5/3.6, "Numerical optimization", Nocedal & Wright, 2nd
// edition): expand until the minimizer is bracketed, then shrink the
// bracket with safeguarded interpolation.
type Fletcher struct {
	c1      float64
	c2      float64
	rho     float64
	maxIter int
}

// NewFletcher builds the search (defaults c1 = 1e-4, c2 = 0.1, expansion
// factor 3).
func NewFletcher(p *config.Params) *Fletcher {
	c1, c2, maxIter := tolerances(p, 1e-4, 0.1)
	return &Fletcher{c1: c1, c2: c2, rho: 3, maxIter: maxIter}
}

// Get implements Search.
func (fs *Fletcher) Get(s *state.State, d *tensor.Tensor[float64], t0 float64) bool {
	origin := s.Clone()
	prev := Step{T: 0, F: origin.FX(), G: origin.DG(d)}

	t := t0
	for i := 0; i < fs.maxIter; i++ {
		s.Move(origin, d, t)
		if !s.Valid() {
			return false
		}
		cur := Step{T: t, F: s.FX(), G: s.DG(d)}

		if !s.HasArmijo(origin, d, t, fs.c1) || (i > 0 && cur.F >= prev.F) {
			return fs.zoom(s, origin, d, prev, cur)
		}
		if s.HasStrongWolfe(origin, d, fs.c2) {
			return true
		}
		if cur.G >= 0 {
			return fs.zoom(s, origin, d, cur, prev)
		}
		prev = cur
		if t >= StepMax {
			return false
		}
		t = clampStep(t * fs.rho)
	}
	return false
}

// zoom shrinks [lo, hi] (lo always the endpoint with the lesser value
// satisfying Armijo) until a strong-Wolfe point is found.
func (fs *Fletcher) zoom(s *state.State, origin *state.State, d *tensor.Tensor[float64], lo, hi Step) bool {
	for i := 0; i < fs.maxIter; i++ {
		t := Interpolate(lo, hi)
		s.Move(origin, d, t)
		if !s.Valid() {
			return false
		}
		cur := Step{T: t, F: s.FX(), G: s.DG(d)}

		if !s.HasArmijo(origin, d, t, fs.c1) || cur.F >= lo.F {
			hi = cur
		} else {
			if s.HasStrongWolfe(origin, d, fs.c2) {
				return true
			}
			if cur.G*(hi.T-lo.T) >= 0 {
				hi = lo
			}
			lo = cur
		}
		if math.Abs(hi.T-lo.T) < StepMin {
			return false
		}
	}
	return false
}
