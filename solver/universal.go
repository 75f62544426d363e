// SPDX-License-Identifier: MIT
//
// universal.go implements Nesterov's universal gradient methods: the
// primal (PGM), dual (DGM) and fast (FGM) variants. Each iteration
// doubles a local Lipschitz estimate M until an epsilon/2-relaxed
// sufficient-decrease test holds, and the next iteration starts from the
// accepted M: the estimate is not halved between iterations, so it never
// decreases. The methods need no knowledge of the Holder smoothness level.
package solver

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// UniversalVariant selects among PGM, DGM and FGM.
type UniversalVariant int

const (
	// UniversalPGM is the universal primal gradient method.
	UniversalPGM UniversalVariant = iota
	// UniversalDGM is the universal dual gradient method.
	UniversalDGM
	// UniversalFGM is the universal fast gradient method.
	UniversalFGM
)

var universalNames = map[UniversalVariant]string{
	UniversalPGM: "pgm",
	UniversalDGM: "dgm",
	UniversalFGM: "fgm",
}

// String implements fmt.Stringer.
func (v UniversalVariant) String() string {
	if s, ok := universalNames[v]; ok {
		return s
	}
	return "universal-unknown"
}

// Universal is the universal gradient solver family.
type Universal struct {
	variant    UniversalVariant
	l0         float64
	lsearchMax int
	mon        monitor
}

// NewUniversal builds a universal gradient solver. Recognized options:
// solver::{epsilon,max_evals,universal::L0,universal::lsearch_max_iters}.
func NewUniversal(variant UniversalVariant, p *config.Params, logger optlog.Logger) *Universal {
	return &Universal{
		variant:    variant,
		l0:         p.GetFloat(config.KeyUniversalL0, 1),
		lsearchMax: p.GetInt(config.KeyUniversalLSearchMax, 100),
		mon:        newMonitor(p, logger),
	}
}

// Name implements Solver.
func (u *Universal) Name() string { return u.variant.String() }

// Minimize implements Solver.
func (u *Universal) Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	switch u.variant {
	case UniversalDGM:
		return u.minimizeDGM(f, x0)
	case UniversalFGM:
		return u.minimizeFGM(f, x0)
	default:
		return u.minimizePGM(f, x0)
	}
}

func (u *Universal) minimizePGM(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	n := f.Size()

	l := u.l0
	xk := st.X().Clone()
	xk1, _ := tensor.NewVector(n)
	gxk := st.GX().Clone()
	gxk1, _ := tensor.NewVector(n)
	fxk := st.FX()
	fxk1 := st.FX()

	for u.mon.budget(f) {
		m := l
		iterOK := false
		for k := 0; k < u.lsearchMax && !iterOK && isFinite(fxk1); k++ {
			// x_{k+1} = x_k - g_k/M, accepted under the relaxed
			// sufficient-decrease bound
			axpyInto(xk1, xk, gxk, -1/m)
			fxk1, err = function.ValueGrad(f, xk1, gxk1)
			if err != nil {
				return nil, err
			}
			iterOK = isFinite(fxk1) && fxk1 <= fxk+dotDiff(gxk, xk1, xk)+0.5*m*sqDist(xk1, xk)+0.5*u.mon.epsilon
			m *= 2
		}

		if iterOK {
			l = 0.5 * m
			_ = tensor.CopyValues(xk, xk1)
			_ = tensor.CopyValues(gxk, gxk1)
			fxk = fxk1
			st.UpdateIfBetter(xk1, gxk1, fxk1)
		}
		if u.mon.doneValueTest(st, iterOK) {
			break
		}
	}
	finish(st)
	return st, nil
}

func (u *Universal) minimizeDGM(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	n := f.Size()

	l := u.l0
	yk, _ := tensor.NewVector(n)
	xk1, _ := tensor.NewVector(n)
	gxk := st.GX().Clone()
	gxk1, _ := tensor.NewVector(n)
	gphi := x0.Clone()
	fxk1 := st.FX()

	for u.mon.budget(f) {
		m := l
		iterOK := false
		for k := 0; k < u.lsearchMax && !iterOK && isFinite(fxk1); k++ {
			axpyInto(xk1, gphi, gxk, -1/m)
			fxk1, err = function.ValueGrad(f, xk1, gxk1)
			if err != nil {
				return nil, err
			}
			axpyInto(yk, xk1, gxk1, -1/m)
			fy := function.Value(f, yk)
			g2, _ := tensor.Dot(gxk1, gxk1)
			iterOK = isFinite(fxk1) && fy <= fxk1-0.5*g2/m+0.5*u.mon.epsilon
			m *= 2
		}

		if iterOK {
			_ = tensor.AddScaled(gphi, -1/m, gxk)
			l = 0.5 * m
			_ = tensor.CopyValues(gxk, gxk1)
			st.UpdateIfBetter(xk1, gxk1, fxk1)
		}
		if u.mon.doneValueTest(st, iterOK) {
			break
		}
	}
	finish(st)
	return st, nil
}

func (u *Universal) minimizeFGM(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	n := f.Size()

	l := u.l0
	ak := 0.0
	vk := x0.Clone()
	yk := x0.Clone()
	yk1, _ := tensor.NewVector(n)
	xk1, _ := tensor.NewVector(n)
	gxk1, _ := tensor.NewVector(n)
	gyk1, _ := tensor.NewVector(n)
	fxk1 := st.FX()
	fyk1 := st.FX()

	var ak1 float64
	for u.mon.budget(f) {
		m := l
		iterOK := false
		for k := 0; k < u.lsearchMax && !iterOK && isFinite(fxk1) && isFinite(fyk1); k++ {
			ak1 = (1 + math.Sqrt(1+4*m*ak)) / (2 * m)
			tau := ak1 / (ak + ak1)

			// x_{k+1} = tau*v_k + (1-tau)*y_k
			blendInto(xk1, tau, vk, yk)
			fxk1, err = function.ValueGrad(f, xk1, gxk1)
			if err != nil {
				return nil, err
			}

			// y_{k+1} = tau*(v_k - a_{k+1}*g_{k+1}) + (1-tau)*y_k
			y1, v, y, g := yk1.Raw(), vk.Raw(), yk.Raw(), gxk1.Raw()
			for i := range y1 {
				y1[i] = tau*(v[i]-ak1*g[i]) + (1-tau)*y[i]
			}
			fyk1, err = function.ValueGrad(f, yk1, gyk1)
			if err != nil {
				return nil, err
			}

			iterOK = isFinite(fxk1) && isFinite(fyk1) &&
				fyk1 <= fxk1+dotDiff(gxk1, yk1, xk1)+0.5*m*sqDist(yk1, xk1)+0.5*u.mon.epsilon*tau
			m *= 2
		}

		if iterOK {
			_ = tensor.CopyValues(yk, yk1)
			ak += ak1
			l = 0.5 * m
			_ = tensor.AddScaled(vk, -ak1, gxk1)
			st.UpdateIfBetter(yk1, gyk1, fyk1)
		}
		if u.mon.doneValueTest(st, iterOK) {
			break
		}
	}
	finish(st)
	return st, nil
}

// axpyInto writes base + alpha*v into dst.
func axpyInto(dst, base, v *tensor.Tensor[float64], alpha float64) {
	dd, bd, vd := dst.Raw(), base.Raw(), v.Raw()
	for i := range dd {
		dd[i] = bd[i] + alpha*vd[i]
	}
}

// blendInto writes tau*a + (1-tau)*b into dst.
func blendInto(dst *tensor.Tensor[float64], tau float64, a, b *tensor.Tensor[float64]) {
	dd, ad, bd := dst.Raw(), a.Raw(), b.Raw()
	for i := range dd {
		dd[i] = tau*ad[i] + (1-tau)*bd[i]
	}
}

// dotDiff returns g.(a - b).
func dotDiff(g, a, b *tensor.Tensor[float64]) float64 {
	gd, ad, bd := g.Raw(), a.Raw(), b.Raw()
	var s float64
	for i := range gd {
		s += gd[i] * (ad[i] - bd[i])
	}
	return s
}

// sqDist returns |a - b|^2.
func sqDist(a, b *tensor.Tensor[float64]) float64 {
	ad, bd := a.Raw(), b.Raw()
	var s float64
	for i := range ad {
		d := ad[i] - bd[i]
		s += d * d
	}
	return s
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
