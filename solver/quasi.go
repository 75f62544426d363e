// SPDX-License-Identifier: MIT
package solver

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/linesearch"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// QuasiVariant selects the inverse-Hessian update formula.
type QuasiVariant int

const (
	// QuasiSR1 is the symmetric rank-one update with a curvature guard.
	QuasiSR1 QuasiVariant = iota
	// QuasiDFP is Davidon-Fletcher-Powell.
	QuasiDFP
	// QuasiBFGS is Broyden-Fletcher-Goldfarb-Shanno.
	QuasiBFGS
	// QuasiHoshino blends DFP and BFGS by the Hoshino convex combination.
	QuasiHoshino
	// QuasiFletcher switches between DFP, SR1 and BFGS on phi.
	QuasiFletcher
)

var quasiNames = map[QuasiVariant]string{
	QuasiSR1:      "sr1",
	QuasiDFP:      "dfp",
	QuasiBFGS:     "bfgs",
	QuasiHoshino:  "hoshino",
	QuasiFletcher: "fletcher",
}

// String implements fmt.Stringer.
func (v QuasiVariant) String() string {
	if s, ok := quasiNames[v]; ok {
		return s
	}
	return "quasi-unknown"
}

// Quasi is the quasi-Newton solver family: direction d = -H*g from a
// dense inverse-Hessian approximation H, reset to the identity whenever
// the direction fails the descent test.
type Quasi struct {
	variant QuasiVariant
	init    config.QuasiInit
	sr1r    float64
	mon     monitor
	lsearch func() *linesearch.Lsearch
}

// NewQuasi builds a quasi-Newton solver. Recognized options:
// solver::{epsilon,max_evals,quasi::initialization,quasi::sr1::r} and the
// lsearchk::* family (default search More-Thuente with tolerances
// (1e-4, 9e-1), default initializer unit).
func NewQuasi(variant QuasiVariant, p *config.Params, logger optlog.Logger) *Quasi {
	searchParams := forwardTolerance(p, 1e-4, 9e-1)
	return &Quasi{
		variant: variant,
		init:    p.GetQuasiInit(config.KeyQuasiInit, config.QuasiInitIdentity),
		sr1r:    p.GetFloat(config.KeyQuasiSR1R, 1e-8),
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
func (q *Quasi) SetLsearch(mk func() *linesearch.Lsearch) { q.lsearch = mk }

// Name implements Solver.
func (q *Quasi) Name() string { return q.variant.String() }

// Minimize implements Solver.
func (q *Quasi) Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	cstate, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	pstate := cstate.Clone()
	lsearch := q.lsearch()

	n := f.Size()
	h, err := tensor.Identity(n)
	if err != nil {
		return nil, err
	}
	descent, err := tensor.NewVector(n)
	if err != nil {
		return nil, err
	}
	dx, _ := tensor.NewVector(n)
	dg, _ := tensor.NewVector(n)

	first := true
	for iter := 0; q.mon.budget(f); iter++ {
		// d = -H*g; on a failed descent test restart from the identity
		_ = tensor.Gemv(descent, -1, h, cstate.GX(), 0)
		if !cstate.HasDescent(descent) {
			resetIdentity(h)
			steepest(descent, cstate.GX())
		}

		pstate.CopyFrom(cstate)
		iterOK := lsearch.Get(cstate, descent, iter)
		if q.mon.doneGradientTest(cstate, iterOK) {
			break
		}

		diff(dx, cstate.X(), pstate.X())
		diff(dg, cstate.GX(), pstate.GX())

		if first && q.init == config.QuasiInitScaled {
			dxdg, _ := tensor.Dot(dx, dg)
			dgdg, _ := tensor.Dot(dg, dg)
			resetIdentity(h)
			_ = tensor.ScaleInPlace(h, dxdg/dgdg)
		}
		first = false

		q.update(h, dx, dg)
	}
	finish(cstate)
	return pickBest(cstate, pstate), nil
}

func (q *Quasi) update(h, dx, dg *tensor.Tensor[float64]) {
	switch q.variant {
	case QuasiSR1:
		updateSR1(h, dx, dg, q.sr1r)
	case QuasiDFP:
		updateDFP(h, dx, dg)
	case QuasiBFGS:
		updateBFGS(h, dx, dg)
	case QuasiHoshino:
		updateHoshino(h, dx, dg)
	case QuasiFletcher:
		updateFletcher(h, dx, dg)
	}
}

// updateSR1 applies H += v*v'/(v.dg) with v = dx - H*dg, skipping the
// update when the curvature denominator falls under r*|dx|*|v|.
func updateSR1(h, dx, dg *tensor.Tensor[float64], r float64) {
	v := hDgResidual(h, dx, dg)
	denom, _ := tensor.Dot(v, dg)
	if math.Abs(denom) < r*tensor.Norm2(dx)*tensor.Norm2(v) {
		return
	}
	_ = tensor.OuterAddScaled(h, 1/denom, v, v)
}

// updateSR1Unguarded is the Fletcher-switch branch of SR1.
func updateSR1Unguarded(h, dx, dg *tensor.Tensor[float64]) {
	v := hDgResidual(h, dx, dg)
	denom, _ := tensor.Dot(v, dg)
	_ = tensor.OuterAddScaled(h, 1/denom, v, v)
}

func updateDFP(h, dx, dg *tensor.Tensor[float64]) {
	hdg := applyH(h, dg)
	dxdg, _ := tensor.Dot(dx, dg)
	dghdg, _ := tensor.Dot(dg, hdg)
	_ = tensor.OuterAddScaled(h, 1/dxdg, dx, dx)
	_ = tensor.OuterAddScaled(h, -1/dghdg, hdg, hdg)
}

func updateBFGS(h, dx, dg *tensor.Tensor[float64]) {
	hdg := applyH(h, dg)
	dxdg, _ := tensor.Dot(dx, dg)
	dghdg, _ := tensor.Dot(dg, hdg)
	rho := 1 / dxdg
	_ = tensor.OuterAddScaled(h, -rho, dx, hdg)
	_ = tensor.OuterAddScaled(h, -rho, hdg, dx)
	_ = tensor.OuterAddScaled(h, rho*rho*dghdg+rho, dx, dx)
}

// updateHoshino blends the DFP and BFGS updates with
// phi = dx.dg / (dx.dg + dg.H.dg).
func updateHoshino(h, dx, dg *tensor.Tensor[float64]) {
	hdg := applyH(h, dg)
	dxdg, _ := tensor.Dot(dx, dg)
	dghdg, _ := tensor.Dot(dg, hdg)
	phi := dxdg / (dxdg + dghdg)

	dfp := h.Clone()
	updateDFP(dfp, dx, dg)
	bfgs := h.Clone()
	updateBFGS(bfgs, dx, dg)

	hd, dd, bd := h.Raw(), dfp.Raw(), bfgs.Raw()
	for i := range hd {
		hd[i] = (1-phi)*dd[i] + phi*bd[i]
	}
}

// updateFletcher switches on phi = dx.dg / (dx.dg - dg.H.dg): DFP for
// phi < 0, BFGS for phi > 1, SR1 in between.
func updateFletcher(h, dx, dg *tensor.Tensor[float64]) {
	hdg := applyH(h, dg)
	dxdg, _ := tensor.Dot(dx, dg)
	dghdg, _ := tensor.Dot(dg, hdg)
	phi := dxdg / (dxdg - dghdg)
	switch {
	case phi < 0:
		updateDFP(h, dx, dg)
	case phi > 1:
		updateBFGS(h, dx, dg)
	default:
		updateSR1Unguarded(h, dx, dg)
	}
}

// applyH returns H*v as a fresh vector.
func applyH(h, v *tensor.Tensor[float64]) *tensor.Tensor[float64] {
	out, _ := tensor.NewVector(v.Len())
	_ = tensor.Gemv(out, 1, h, v, 0)
	return out
}

// hDgResidual returns dx - H*dg as a fresh vector.
func hDgResidual(h, dx, dg *tensor.Tensor[float64]) *tensor.Tensor[float64] {
	v := applyH(h, dg)
	vd, xd := v.Raw(), dx.Raw()
	for i := range vd {
		vd[i] = xd[i] - vd[i]
	}
	return v
}

// diff writes a - b into dst.
func diff(dst, a, b *tensor.Tensor[float64]) {
	dd, ad, bd := dst.Raw(), a.Raw(), b.Raw()
	for i := range dd {
		dd[i] = ad[i] - bd[i]
	}
}

// resetIdentity rewrites h to the identity in place.
func resetIdentity(h *tensor.Tensor[float64]) {
	hd := h.Raw()
	n := h.Rows()
	for i := range hd {
		hd[i] = 0
	}
	for i := 0; i < n; i++ {
		hd[i*n+i] = 1
	}
}
