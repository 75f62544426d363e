// SPDX-License-Identifier: MIT
package solver

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// Ellipsoid is the ellipsoid method for convex (possibly nonsmooth)
// functions: it maintains an ellipsoid (c, P) guaranteed to contain the
// optimum and, at each iteration, replaces it with the minimum-volume
// ellipsoid containing the half-space {x : g.(x - c) <= 0} cut by the
// subgradient at the center. Convergence is declared when the
// subgradient-weighted radius sqrt(g'Pg) drops under epsilon.
type Ellipsoid struct {
	// R0 is the radius of the initial ball around x0; it must be large
	// enough for the ball to contain the optimum.
	R0 float64

	mon monitor
}

// NewEllipsoid builds the solver. Recognized options:
// solver::{epsilon,max_evals}; the initial radius defaults to 10 and can
// be widened through the R0 field before Minimize.
func NewEllipsoid(p *config.Params, logger optlog.Logger) *Ellipsoid {
	return &Ellipsoid{R0: 10, mon: newMonitor(p, logger)}
}

// Name implements Solver.
func (e *Ellipsoid) Name() string { return "ellipsoid" }

// Minimize implements Solver.
func (e *Ellipsoid) Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	n := f.Size()

	c := x0.Clone()
	g, _ := tensor.NewVector(n)
	_ = tensor.CopyValues(g, st.GX())
	fc := st.FX()

	// P starts as R0^2 * I
	p, err := tensor.Identity(n)
	if err != nil {
		return nil, err
	}
	_ = tensor.ScaleInPlace(p, e.R0*e.R0)

	pg, _ := tensor.NewVector(n)
	for e.mon.budget(f) {
		// radius of the ellipsoid along the cut normal
		_ = tensor.Gemv(pg, 1, p, g, 0)
		gpg, _ := tensor.Dot(g, pg)
		if !isFinite(gpg) {
			st.SetStatus(state.Failed)
			break
		}
		radius := math.Sqrt(math.Max(gpg, 0))
		if !e.mon.logger.Log(optlog.Info, "%s,r=%g", st, radius) {
			st.SetStatus(state.Stopped)
			break
		}
		if radius < e.mon.epsilon {
			st.SetStatus(state.Converged)
			break
		}
		if gpg <= 0 {
			st.SetStatus(state.Failed)
			break
		}

		if n == 1 {
			// the 1-D ellipsoid is an interval: keep the half the cut
			// allows and rebuild P from the halved radius
			r := math.Sqrt(p.Raw()[0])
			if g.Raw()[0] > 0 {
				c.Raw()[0] -= r / 2
			} else {
				c.Raw()[0] += r / 2
			}
			p.Raw()[0] = r * r / 4
		} else {
			// c <- c - (1/(n+1)) * P*g/radius
			nn := float64(n)
			_ = tensor.AddScaled(c, -1/((nn+1)*radius), pg)

			// P <- n^2/(n^2-1) * (P - (2/(n+1)) * (P*g)(P*g)'/(g'Pg))
			_ = tensor.OuterAddScaled(p, -2/((nn+1)*gpg), pg, pg)
			_ = tensor.ScaleInPlace(p, nn*nn/(nn*nn-1))
		}

		fc, err = function.ValueGrad(f, c, g)
		if err != nil {
			return nil, err
		}
		if !isFinite(fc) || !tensor.AllFinite(g) {
			st.SetStatus(state.Failed)
			break
		}
		st.UpdateIfBetter(c, g, fc)
	}
	finish(st)
	return st, nil
}
