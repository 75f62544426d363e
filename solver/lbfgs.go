// SPDX-License-Identifier: MIT
package solver

import (
	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/linesearch"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// LBFGS is the limited-memory BFGS solver: the inverse-Hessian product
// H*g is reconstructed from the last History (dx, dg) pairs by the
// two-loop recursion, so only O(History*n) memory is held instead of the
// dense n x n approximation Quasi maintains.
type LBFGS struct {
	// History is the number of stored correction pairs (default 10).
	History int

	mon     monitor
	lsearch func() *linesearch.Lsearch
}

// NewLBFGS builds the solver. Recognized options:
// solver::{epsilon,max_evals,tolerance} and the lsearchk::* family
// (default search More-Thuente with tolerances (1e-4, 9e-1), default
// initializer unit).
func NewLBFGS(p *config.Params, logger optlog.Logger) *LBFGS {
	searchParams := forwardTolerance(p, 1e-4, 9e-1)
	return &LBFGS{
		History: 10,
		mon:     newMonitor(p, logger),
		lsearch: func() *linesearch.Lsearch {
			return &linesearch.Lsearch{
				Init:   linesearch.UnitInit{},
				Search: linesearch.NewMoreThuente(searchParams),
			}
		},
	}
}

// SetLsearch overrides the line-search factory (one fresh Lsearch per
// Minimize call, since initializers carry per-run memory).
func (l *LBFGS) SetLsearch(mk func() *linesearch.Lsearch) { l.lsearch = mk }

// Name implements Solver.
func (l *LBFGS) Name() string { return "lbfgs" }

// Minimize implements Solver.
func (l *LBFGS) Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	cstate, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	pstate := cstate.Clone()
	lsearch := l.lsearch()

	n := f.Size()
	descent, err := tensor.NewVector(n)
	if err != nil {
		return nil, err
	}

	hist := l.History
	if hist < 1 {
		hist = 1
	}
	dxs := make([][]float64, 0, hist)
	dgs := make([][]float64, 0, hist)
	rhos := make([]float64, 0, hist)
	alphas := make([]float64, hist)

	for iter := 0; l.mon.budget(f); iter++ {
		l.twoLoop(descent, cstate.GX(), dxs, dgs, rhos, alphas)
		if !cstate.HasDescent(descent) {
			// degenerate curvature history: drop it and restart steepest
			dxs, dgs, rhos = dxs[:0], dgs[:0], rhos[:0]
			steepest(descent, cstate.GX())
		}

		pstate.CopyFrom(cstate)
		iterOK := lsearch.Get(cstate, descent, iter)
		if l.mon.doneGradientTest(cstate, iterOK) {
			break
		}

		dx := make([]float64, n)
		dg := make([]float64, n)
		cx, px := cstate.X().Raw(), pstate.X().Raw()
		cg, pg := cstate.GX().Raw(), pstate.GX().Raw()
		var dxdg float64
		for i := 0; i < n; i++ {
			dx[i] = cx[i] - px[i]
			dg[i] = cg[i] - pg[i]
			dxdg += dx[i] * dg[i]
		}
		// skip pairs without positive curvature; they would break the
		// positive definiteness of the implicit H
		if dxdg <= 0 {
			continue
		}
		if len(dxs) == hist {
			dxs = dxs[1:]
			dgs = dgs[1:]
			rhos = rhos[1:]
		}
		dxs = append(dxs, dx)
		dgs = append(dgs, dg)
		rhos = append(rhos, 1/dxdg)
	}
	finish(cstate)
	return pickBest(cstate, pstate), nil
}

// twoLoop writes -H*g into d using the stored correction pairs, seeding
// H0 with the Barzilai-Borwein scaling (dx.dg)/(dg.dg) of the newest pair.
func (l *LBFGS) twoLoop(d, g *tensor.Tensor[float64], dxs, dgs [][]float64, rhos, alphas []float64) {
	dd, gd := d.Raw(), g.Raw()
	for i := range dd {
		dd[i] = -gd[i]
	}
	k := len(dxs)
	if k == 0 {
		return
	}
	for i := k - 1; i >= 0; i-- {
		var q float64
		for j := range dd {
			q += dxs[i][j] * dd[j]
		}
		alphas[i] = rhos[i] * q
		for j := range dd {
			dd[j] -= alphas[i] * dgs[i][j]
		}
	}
	var dgdg float64
	for _, v := range dgs[k-1] {
		dgdg += v * v
	}
	gamma := 1 / (rhos[k-1] * dgdg)
	for j := range dd {
		dd[j] *= gamma
	}
	for i := 0; i < k; i++ {
		var beta float64
		for j := range dd {
			beta += dgs[i][j] * dd[j]
		}
		beta *= rhos[i]
		for j := range dd {
			dd[j] += (alphas[i] - beta) * dxs[i][j]
		}
	}
}
