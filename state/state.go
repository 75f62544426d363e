// SPDX-License-Identifier: MIT
package state

import (
	"fmt"
	"math"

	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/tensor"
)

// historyCap bounds the improvement history; stopping tests only ever
// look back a patience window, so older entries are dropped.
const historyCap = 1000

// State is the mutable record of one minimization run. See the package
// comment for the lifecycle contract.
type State struct {
	fn     function.Function
	x      *tensor.Tensor[float64]
	g      *tensor.Tensor[float64]
	fx     float64
	ceq    []float64
	cineq  []float64
	status Status

	// t is the most recent accepted line-search step length; the linear,
	// quadratic and CG-DESCENT initializers seed the next search from it.
	t float64

	historyDF []float64
	historyDX []float64
}

// New evaluates f and its gradient at x0 exactly once and returns the
// initial State. x0 must have f.Size() elements.
func New(f function.Function, x0 *tensor.Tensor[float64]) (*State, error) {
	if x0.Len() != f.Size() {
		return nil, fmt.Errorf("state: New: len(x0)=%d size=%d: %w", x0.Len(), f.Size(), function.ErrDimension)
	}
	g, err := tensor.NewVector(f.Size())
	if err != nil {
		return nil, err
	}
	s := &State{
		fn:    f,
		x:     x0.Clone(),
		g:     g,
		ceq:   make([]float64, countEq(f)),
		cineq: make([]float64, len(f.Constraints())-countEq(f)),
	}
	s.fx, err = function.ValueGrad(f, s.x, s.g)
	if err != nil {
		return nil, err
	}
	s.updateConstraints()
	return s, nil
}

func countEq(f function.Function) int {
	n := 0
	for _, c := range f.Constraints() {
		if c.Equality() {
			n++
		}
	}
	return n
}

// Function returns the objective this state minimizes.
func (s *State) Function() function.Function { return s.fn }

// X returns the current point (live, owned by the state).
func (s *State) X() *tensor.Tensor[float64] { return s.x }

// GX returns the gradient at the current point (live, owned by the state).
func (s *State) GX() *tensor.Tensor[float64] { return s.g }

// FX returns the value at the current point.
func (s *State) FX() float64 { return s.fx }

// CEq returns the equality-constraint residuals at the current point.
func (s *State) CEq() []float64 { return s.ceq }

// CIneq returns the inequality-constraint residuals at the current point.
func (s *State) CIneq() []float64 { return s.cineq }

// Status returns the terminal status (Running until a solver finishes).
func (s *State) Status() Status { return s.status }

// SetStatus records the terminal status.
func (s *State) SetStatus(status Status) { s.status = status }

// StepSize returns the most recent accepted line-search step length
// (0 before the first accepted step).
func (s *State) StepSize() float64 { return s.t }

// SetStepSize records an accepted line-search step length.
func (s *State) SetStepSize(t float64) { s.t = t }

// FCalls returns the objective's value-evaluation count.
func (s *State) FCalls() int { return s.fn.Counters().FCalls() }

// GCalls returns the objective's gradient-evaluation count.
func (s *State) GCalls() int { return s.fn.Counters().GCalls() }

// DG returns g(x).d, the directional derivative along d.
func (s *State) DG(d *tensor.Tensor[float64]) float64 {
	dot, _ := tensor.Dot(s.g, d)
	return dot
}

// HasDescent reports whether d is a descent direction at the current point.
func (s *State) HasDescent(d *tensor.Tensor[float64]) bool { return s.DG(d) < 0 }

// CopyFrom overwrites the receiver with other's point, value, gradient,
// residuals, step size and status (sharing other's function). The two
// states must be over the same function.
func (s *State) CopyFrom(other *State) {
	s.fn = other.fn
	_ = tensor.CopyValues(s.x, other.x)
	_ = tensor.CopyValues(s.g, other.g)
	s.fx = other.fx
	copy(s.ceq, other.ceq)
	copy(s.cineq, other.cineq)
	s.status = other.status
	s.t = other.t
}

// Clone returns an independent deep copy (history included).
func (s *State) Clone() *State {
	c := &State{
		fn:        s.fn,
		x:         s.x.Clone(),
		g:         s.g.Clone(),
		fx:        s.fx,
		ceq:       append([]float64(nil), s.ceq...),
		cineq:     append([]float64(nil), s.cineq...),
		status:    s.status,
		t:         s.t,
		historyDF: append([]float64(nil), s.historyDF...),
		historyDX: append([]float64(nil), s.historyDX...),
	}
	return c
}

// Move sets the state to origin.x + t*d, re-evaluating value, gradient and
// constraint residuals. Non-finite results are recorded as-is; callers
// branch on Valid(). The state's step size is updated to t.
func (s *State) Move(origin *State, d *tensor.Tensor[float64], t float64) {
	xd, od, dd := s.x.Raw(), origin.x.Raw(), d.Raw()
	for i := range xd {
		xd[i] = od[i] + t*dd[i]
	}
	s.fx, _ = function.ValueGrad(s.fn, s.x, s.g)
	s.t = t
	s.updateConstraints()
}

func (s *State) updateConstraints() {
	ieq, iineq := 0, 0
	for _, c := range s.fn.Constraints() {
		if c.Equality() {
			s.ceq[ieq] = c.Residual(s.x)
			ieq++
		} else {
			s.cineq[iineq] = c.Residual(s.x)
			iineq++
		}
	}
}

// UpdateIfBetter replaces the current point with (x, gx, fx) when fx is a
// strict improvement, recording the (df, dx) pair in the history either
// way. A non-finite fx records a sentinel worst entry and never updates.
// Returns whether the state moved.
func (s *State) UpdateIfBetter(x, gx *tensor.Tensor[float64], fx float64) bool {
	if !isFinite(fx) {
		s.pushHistory(-math.MaxFloat64, -math.MaxFloat64)
		return false
	}
	df := s.fx - fx
	var dx float64
	xd, cd := x.Raw(), s.x.Raw()
	for i := range xd {
		if d := math.Abs(xd[i] - cd[i]); d > dx {
			dx = d
		}
	}
	better := df > 0
	if better {
		_ = tensor.CopyValues(s.x, x)
		_ = tensor.CopyValues(s.g, gx)
		s.fx = fx
		s.updateConstraints()
	}
	s.pushHistory(df, dx)
	return better
}

func (s *State) pushHistory(df, dx float64) {
	if len(s.historyDF) >= historyCap {
		s.historyDF = s.historyDF[1:]
		s.historyDX = s.historyDX[1:]
	}
	s.historyDF = append(s.historyDF, df)
	s.historyDX = append(s.historyDX, dx)
}

// GradientTest returns |g|_inf / max(1, |f|), the unconstrained smooth
// stopping measure.
func (s *State) GradientTest() float64 {
	return tensor.NormInf(s.g) / math.Max(1, math.Abs(s.fx))
}

// ValueTest scans the improvement history: it returns the most recent
// positive improvement max(df, dx) when one happened within the last
// patience updates, and 0 when the recent window shows no progress (the
// caller then stops with a convergence decision). With no improvement
// recorded at all it returns math.MaxFloat64 until patience updates have
// accumulated.
func (s *State) ValueTest(patience int) float64 {
	last := -1
	dd := math.MaxFloat64
	for i := len(s.historyDF) - 1; i >= 0; i-- {
		if s.historyDF[i] > 0 {
			dd = math.Max(s.historyDF[i], s.historyDX[i])
			last = i
			break
		}
	}
	switch {
	case last < 0:
		// no improvement ever recorded
		if len(s.historyDF) >= patience {
			return 0
		}
		return dd
	case last+patience >= len(s.historyDF):
		return dd
	default:
		return 0
	}
}

// ConstraintTest returns |ceq|_inf + |max(cineq, 0)|_inf, the total
// feasibility violation at the current point.
func (s *State) ConstraintTest() float64 {
	var test float64
	var eq float64
	for _, v := range s.ceq {
		if av := math.Abs(v); av > eq {
			eq = av
		}
	}
	test += eq
	var ineq float64
	for _, v := range s.cineq {
		if v > ineq {
			ineq = v
		}
	}
	test += ineq
	return test
}

// Valid reports whether value, gradient and constraint residuals are all
// finite.
func (s *State) Valid() bool {
	if !isFinite(s.fx) || !tensor.AllFinite(s.g) {
		return false
	}
	for _, v := range s.ceq {
		if !isFinite(v) {
			return false
		}
	}
	for _, v := range s.cineq {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// HasArmijo checks f(x) <= f0 + t*c1*g0.d against the origin state.
func (s *State) HasArmijo(origin *State, d *tensor.Tensor[float64], t, c1 float64) bool {
	return s.fx <= origin.fx+t*c1*origin.DG(d)
}

// HasApproxArmijo checks f(x) <= f0 + eps, the CG-DESCENT relaxation.
func (s *State) HasApproxArmijo(origin *State, eps float64) bool {
	return s.fx <= origin.fx+eps
}

// HasWolfe checks the (weak) curvature condition g.d >= c2*g0.d.
func (s *State) HasWolfe(origin *State, d *tensor.Tensor[float64], c2 float64) bool {
	return s.DG(d) >= c2*origin.DG(d)
}

// HasStrongWolfe checks |g.d| <= c2*|g0.d|.
func (s *State) HasStrongWolfe(origin *State, d *tensor.Tensor[float64], c2 float64) bool {
	return math.Abs(s.DG(d)) <= c2*math.Abs(origin.DG(d))
}

// HasApproxWolfe checks (2c1-1)*g0.d >= g.d >= c2*g0.d, CG-DESCENT's
// numerically robust acceptance test; requires 0 < c1 < 1/2 and c1 < c2 < 1.
func (s *State) HasApproxWolfe(origin *State, d *tensor.Tensor[float64], c1, c2 float64) bool {
	dg0 := origin.DG(d)
	dg := s.DG(d)
	return (2*c1-1)*dg0 >= dg && dg >= c2*dg0
}

// String renders the state the way solver logs print it.
func (s *State) String() string {
	return fmt.Sprintf("calls=%d|%d,f=%g,g=%g[%s]", s.FCalls(), s.GCalls(), s.fx, s.GradientTest(), s.status)
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
