// SPDX-License-Identifier: MIT
package linesearch

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// CGDescent accepts either the exact Wolfe conditions or the approximate
// Wolfe pair (approximate Armijo f <= f0 + eps_k plus the two-sided slope
// test), following the CG_DESCENT line search of Hager & Zhang: an
// expansion/bisection bracketing phase, then repeated secant refinement
// of the bracket with a Gamma-guarded bisection fallback.
type CGDescent struct {
	c1      float64
	c2      float64
	epsilon float64
	theta   float64
	gamma   float64
	rho     float64
	maxIter int
}

// NewCGDescent builds the search from lsearchk::tolerance,
// lsearchk::max_iterations and lsearchk::cgdescent::{epsilon,theta,
// gamma,rho} (defaults c1 = 1e-4, c2 = 0.1, epsilon = 1e-6, theta = 0.5,
// gamma = 0.66, rho = 5).
func NewCGDescent(p *config.Params) *CGDescent {
	c1, c2, maxIter := tolerances(p, 1e-4, 0.1)
	return &CGDescent{
		c1:      c1,
		c2:      c2,
		epsilon: p.GetFloat(config.KeyCGDescentEpsilon, 1e-6),
		theta:   p.GetFloat(config.KeyCGDescentTheta, 0.5),
		gamma:   p.GetFloat(config.KeyCGDescentGamma, 0.66),
		rho:     p.GetFloat(config.KeyCGDescentRho, 5),
		maxIter: maxIter,
	}
}

// cgdInterval is the bracketing state: [a, b] straddles an acceptable
// step, c is the most recent probe.
type cgdInterval struct {
	a, b, c Step
	cvalid  bool
}

// Get implements Search.
func (cg *CGDescent) Get(s *state.State, d *tensor.Tensor[float64], t0 float64) bool {
	origin := s.Clone()
	f0, dg0 := origin.FX(), origin.DG(d)
	if dg0 >= 0 {
		return false
	}
	epsk := cg.epsilon * math.Abs(f0)

	move := func(iv *cgdInterval, t float64) {
		s.Move(origin, d, clampStep(t))
		iv.c = Step{T: s.StepSize(), F: s.FX(), G: s.DG(d)}
		iv.cvalid = s.Valid()
	}
	accepted := func(c Step) bool {
		armijo := c.F <= f0+cg.c1*c.T*dg0
		wolfe := c.G >= cg.c2*dg0
		approxArmijo := c.F <= f0+epsk
		approxWolfe := (2*cg.c1-1)*dg0 >= c.G && c.G >= cg.c2*dg0
		return (armijo && wolfe) || (approxArmijo && approxWolfe)
	}

	iv := &cgdInterval{a: Step{T: 0, F: f0, G: dg0}}
	move(iv, t0)
	iv.b = iv.c
	if !iv.cvalid {
		return false
	}
	if accepted(iv.c) {
		return true
	}

	step0 := iv.a
	cg.bracket(iv, move, step0, epsk)
	if !iv.cvalid {
		return false
	}
	if accepted(iv.c) {
		return true
	}
	// bracketing diverged: a no longer supports the approximate Armijo
	// bound or b fails to close the interval from the right
	if iv.a.F > f0+epsk || iv.b.G < 0 {
		return false
	}

	moveUpdateCheck := func(t float64) (done, ok bool) {
		if !isFinite(t) {
			return false, false
		}
		move(iv, t)
		if !iv.cvalid {
			return true, false
		}
		if accepted(iv.c) {
			return true, true
		}
		cg.update(iv, move, step0, epsk)
		if !iv.cvalid {
			return true, false
		}
		return accepted(iv.c), accepted(iv.c)
	}

	for i := 0; i < cg.maxIter && iv.b.T-iv.a.T > StepMin; i++ {
		a0, b0 := iv.a, iv.b
		prevWidth := b0.T - a0.T

		tc := Secant(a0, b0)
		if done, ok := moveUpdateCheck(tc); done {
			return ok
		}
		// a repeated secant sharpens whichever endpoint the first secant
		// landed on
		if math.Abs(tc-iv.a.T) < 2.220446049250313e-16 {
			if done, ok := moveUpdateCheck(Secant(a0, iv.a)); done {
				return ok
			}
		} else if math.Abs(tc-iv.b.T) < 2.220446049250313e-16 {
			if done, ok := moveUpdateCheck(Secant(b0, iv.b)); done {
				return ok
			}
		}

		// insufficient shrinkage: bisect
		if iv.b.T-iv.a.T > cg.gamma*prevWidth {
			if done, ok := moveUpdateCheck((iv.a.T + iv.b.T) / 2); done {
				return ok
			}
		}
	}
	return false
}

// bracket expands c by Rho until the interval [a, b] straddles an
// acceptable step: a keeps the last probe supporting the approximate
// Armijo bound with negative slope, b the first probe that does not.
func (cg *CGDescent) bracket(iv *cgdInterval, move func(*cgdInterval, float64), step0 Step, epsk float64) {
	lastA := iv.a
	f0eps := step0.F + epsk
	for i := 0; i < cg.maxIter && iv.cvalid; i++ {
		switch {
		case iv.c.G >= 0:
			iv.a = lastA
			iv.b = iv.c
			return
		case iv.c.F > f0eps:
			iv.a = step0
			iv.b = iv.c
			cg.updateU(iv, move, step0, epsk)
			return
		default:
			lastA = iv.c
			move(iv, cg.rho*iv.c.T)
		}
	}
}

// updateU restores the bracket invariant (a acceptable, b not) by
// Theta-bisection once a probe inside [a, b] violated the approximate
// Armijo bound with negative slope.
func (cg *CGDescent) updateU(iv *cgdInterval, move func(*cgdInterval, float64), step0 Step, epsk float64) {
	f0eps := step0.F + epsk
	for i := 0; i < cg.maxIter && iv.b.T-iv.a.T > StepMin; i++ {
		move(iv, (1-cg.theta)*iv.a.T+cg.theta*iv.b.T)
		switch {
		case !iv.cvalid:
			return
		case iv.c.G >= 0:
			iv.b = iv.c
			return
		case iv.c.F <= f0eps:
			iv.a = iv.c
		default:
			iv.b = iv.c
		}
	}
}

// update folds the latest probe c into the bracket.
func (cg *CGDescent) update(iv *cgdInterval, move func(*cgdInterval, float64), step0 Step, epsk float64) {
	if iv.c.T <= iv.a.T || iv.c.T >= iv.b.T {
		return
	}
	f0eps := step0.F + epsk
	switch {
	case iv.c.G >= 0:
		iv.b = iv.c
	case iv.c.F <= f0eps:
		iv.a = iv.c
	default:
		iv.b = iv.c
		cg.updateU(iv, move, step0, epsk)
	}
}
