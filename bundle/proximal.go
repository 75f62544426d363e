// SPDX-License-Identifier: MIT
package bundle

import (
	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// FPBA is the proximal bundle solver: a cutting-plane bundle around the
// proximity center, the curve search as inner loop, serious steps moving
// the center on descent and null steps enriching the model otherwise.
type FPBA struct {
	// Miu is the proximity parameter handed to the curve search.
	Miu float64

	params  *config.Params
	epsilon float64
	maxEval int
	logger  optlog.Logger
}

// NewFPBA builds the solver. Recognized options:
// solver::{epsilon,max_evals}, ::bundle::max_size, ::csearch::*.
func NewFPBA(p *config.Params, logger optlog.Logger) *FPBA {
	return &FPBA{
		Miu:     1,
		params:  p,
		epsilon: p.GetFloat(config.KeyEpsilon, 1e-6),
		maxEval: p.GetInt(config.KeyMaxEvals, 1000),
		logger:  optlog.OrNop(logger),
	}
}

// Name implements the solver naming convention.
func (f *FPBA) Name() string { return "fpba" }

// Minimize drives the curve search to a terminal state.
func (f *FPBA) Minimize(fn function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(fn, x0)
	if err != nil {
		return nil, err
	}
	b, err := NewFromParams(st, f.params, f.logger)
	if err != nil {
		return nil, err
	}
	cs := NewCSearch(fn, f.params, f.logger)

	for fn.Counters().Total() < f.maxEval {
		point := cs.Search(b, f.Miu, f.maxEval, f.epsilon)

		if !f.logger.Log(optlog.Info, "fpba: %s,csearch=%s,t=%g,bsize=%d", st, point.Status, point.T, b.Size()) {
			st.SetStatus(state.Stopped)
			break
		}

		switch point.Status {
		case CSearchConverged:
			st.UpdateIfBetter(point.Y, point.GY, point.FY)
			st.SetStatus(state.Converged)
		case CSearchFailed:
			st.SetStatus(state.Failed)
		case CSearchMaxIters:
			st.UpdateIfBetter(point.Y, point.GY, point.FY)
			st.SetStatus(state.MaxIters)
		case CSearchDescentStep, CSearchCuttingPlaneStep:
			// serious step: the proximity center follows the trial point
			b.Moveto(point.Y, point.GY, point.FY)
			st.UpdateIfBetter(point.Y, point.GY, point.FY)
		case CSearchNullStep:
			// null step: the model gains the cut, the center stays
			b.Append(point.Y, point.GY, point.FY)
			st.UpdateIfBetter(point.Y, point.GY, point.FY)
		}
		if st.Status() != state.Running {
			break
		}
	}
	if st.Status() == state.Running {
		st.SetStatus(state.MaxIters)
	}
	return st, nil
}
