// SPDX-License-Identifier: MIT
package solver

import (
	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// Solver minimizes a function from a starting point, returning the final
// state. Runtime numerical trouble never surfaces as a Go error — it ends
// the iteration with state.Failed; the error return covers configuration
// problems only (dimension mismatch between f and x0).
type Solver interface {
	Name() string
	Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error)
}

// monitor bundles the stopping machinery every solver shares: the
// epsilon/budget parameters, the improvement-history patience, and the
// logger whose false return requests an early stop.
type monitor struct {
	epsilon  float64
	maxEvals int
	patience int
	logger   optlog.Logger
}

func newMonitor(p *config.Params, logger optlog.Logger) monitor {
	return monitor{
		epsilon:  p.GetFloat(config.KeyEpsilon, 1e-6),
		maxEvals: p.GetInt(config.KeyMaxEvals, 1000),
		patience: 100,
		logger:   optlog.OrNop(logger),
	}
}

// budget reports whether another iteration fits the evaluation budget.
func (m monitor) budget(f function.Function) bool {
	return f.Counters().Total() < m.maxEvals
}

// doneGradientTest applies the smooth stopping policy: failure ends with
// Failed, a small normalized gradient with Converged, an exhausted budget
// with MaxIters, and a logger veto with Stopped.
func (m monitor) doneGradientTest(s *state.State, iterOK bool) bool {
	if !m.logger.Log(optlog.Info, "%s", s) {
		s.SetStatus(state.Stopped)
		return true
	}
	switch {
	case !iterOK || !s.Valid():
		s.SetStatus(state.Failed)
		return true
	case s.GradientTest() < m.epsilon:
		s.SetStatus(state.Converged)
		return true
	case s.FCalls()+s.GCalls() >= m.maxEvals:
		s.SetStatus(state.MaxIters)
		return true
	default:
		return false
	}
}

// doneValueTest is the nonsmooth counterpart: convergence is decided from
// the recent improvement history instead of the gradient norm, and a
// failed inner step only ends the run when the state is itself broken
// (subgradient methods recover from rejected trial steps).
func (m monitor) doneValueTest(s *state.State, iterOK bool) bool {
	if !m.logger.Log(optlog.Info, "%s", s) {
		s.SetStatus(state.Stopped)
		return true
	}
	switch {
	case !s.Valid():
		s.SetStatus(state.Failed)
		return true
	case iterOK && s.ValueTest(m.patience) < m.epsilon:
		s.SetStatus(state.Converged)
		return true
	case s.FCalls()+s.GCalls() >= m.maxEvals:
		s.SetStatus(state.MaxIters)
		return true
	default:
		return false
	}
}

// forwardTolerance resolves the (c1, c2) pair a line search will see:
// an explicit lsearchk::tolerance wins, then solver::tolerance, then the
// solver family's default.
func forwardTolerance(p *config.Params, defC1, defC2 float64) *config.Params {
	if p.Has(config.KeyLSearchTolerance) {
		return p
	}
	pair := p.GetPair(config.KeyTolerance, config.Pair{A: defC1, B: defC2})
	return config.Merge(p, config.MustBuild(config.WithLSearchTolerance(pair.A, pair.B)))
}

// finish stamps MaxIters on a state the iteration abandoned without a
// terminal decision (the while-budget loop ran dry).
func finish(s *state.State) {
	if s.Status() == state.Running {
		s.SetStatus(state.MaxIters)
	}
}

// pickBest returns cur when it is numerically sound, otherwise prev — the
// "return the best state found so far" half of the failure contract.
func pickBest(cur, prev *state.State) *state.State {
	if cur.Valid() {
		return cur
	}
	prev.SetStatus(cur.Status())
	return prev
}
