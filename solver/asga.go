// SPDX-License-Identifier: MIT
//
// asga.go implements the accelerated subgradient algorithms ASGA-2 and
// ASGA-4 for convex, possibly strongly convex (mu >= 0) objectives. Each
// iteration backtracks a Lipschitz estimate L_k between the Gamma1/Gamma2
// growth bounds, derives the step s_{k+1} from mu and the running sum
// S_k, and advances two (ASGA-2) or three (ASGA-4) point sequences.
package solver

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// ASGAVariant selects ASGA-2 or ASGA-4.
type ASGAVariant int

const (
	// ASGA2 maintains the (x, z) sequences.
	ASGA2 ASGAVariant = iota
	// ASGA4 maintains the (v, y, u) sequences.
	ASGA4
)

var asgaNames = map[ASGAVariant]string{
	ASGA2: "asga2",
	ASGA4: "asga4",
}

// String implements fmt.Stringer.
func (v ASGAVariant) String() string {
	if s, ok := asgaNames[v]; ok {
		return s
	}
	return "asga-unknown"
}

// ASGA is the accelerated subgradient solver family.
type ASGA struct {
	variant    ASGAVariant
	l0         float64
	gamma1     float64
	gamma2     float64
	lsearchMax int
	mon        monitor
}

// NewASGA builds an ASGA solver. Recognized options:
// solver::{epsilon,max_evals,asga::L0,asga::gamma1,asga::gamma2,
// asga::lsearch_max_iters}.
func NewASGA(variant ASGAVariant, p *config.Params, logger optlog.Logger) *ASGA {
	return &ASGA{
		variant:    variant,
		l0:         p.GetFloat(config.KeyASGAL0, 1),
		gamma1:     p.GetFloat(config.KeyASGAGamma1, 4),
		gamma2:     p.GetFloat(config.KeyASGAGamma2, 0.9),
		lsearchMax: p.GetInt(config.KeyASGALSearchMax, 100),
		mon:        newMonitor(p, logger),
	}
}

// Name implements Solver.
func (a *ASGA) Name() string { return a.variant.String() }

// solveStep returns s_{k+1} solving s^2*L = (1 + S_k*mu)*(s + S_k), the
// step equation coupling the Lipschitz estimate with strong convexity.
func solveStep(mu, sk, lk1 float64) float64 {
	r := 1 + sk*mu
	return (r + math.Sqrt(r*r+4*lk1*sk*r)) / (2 * lk1)
}

// lsearchDone checks the backtracking acceptance bound
// f(y) <= f(x) + g.(y-x) + L/2*|y-x|^2 + alpha*eps/2.
func lsearchDone(y *tensor.Tensor[float64], fy float64, x *tensor.Tensor[float64], fx float64,
	gx *tensor.Tensor[float64], lk, alphak, epsilon float64) bool {
	return fy <= fx+dotDiff(gx, y, x)+0.5*lk*sqDist(y, x)+0.5*alphak*epsilon
}

// Minimize implements Solver.
func (a *ASGA) Minimize(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	if a.variant == ASGA4 {
		return a.minimize4(f, x0)
	}
	return a.minimize2(f, x0)
}

func (a *ASGA) minimize2(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	if a.mon.doneGradientTest(st, true) {
		return st, nil
	}
	n := f.Size()
	mu := f.StrongConvexity()

	lk := a.l0
	sk := 0.0
	fxk := math.MaxFloat64

	xk := x0.Clone()
	xk1, _ := tensor.NewVector(n)
	gxk1, _ := tensor.NewVector(n)
	zk := x0.Clone()
	zk1, _ := tensor.NewVector(n)
	yk, _ := tensor.NewVector(n)
	gyk, _ := tensor.NewVector(n)
	sumSkGyk, _ := tensor.NewVector(n)

	for a.mon.budget(f) {
		var sk1 float64
		lk1 := lk / a.gamma1
		sk1Sum := sk
		fxk1 := fxk
		iterOK := false
		for p := 0; p < a.lsearchMax && !iterOK; p++ {
			lk1 *= a.gamma1
			sk1 = solveStep(mu, sk, lk1)
			sk1Sum = sk + sk1

			alphak := sk1 / sk1Sum
			blendInto(yk, alphak, zk, xk)
			fyk, err := function.ValueGrad(f, yk, gyk)
			if err != nil {
				return nil, err
			}

			// z_{k+1} = (x0 + sum s_j*(mu*y_j - g_j) + s_{k+1}*(mu*y_k - g_yk)) / (1 + mu*S_{k+1})
			z1, x0d, sd, yd, gd := zk1.Raw(), x0.Raw(), sumSkGyk.Raw(), yk.Raw(), gyk.Raw()
			for i := range z1 {
				z1[i] = (x0d[i] + sd[i] + sk1*(mu*yd[i]-gd[i])) / (1 + mu*sk1Sum)
			}
			blendInto(xk1, alphak, zk1, xk)
			fxk1, err = function.ValueGrad(f, xk1, gxk1)
			if err != nil {
				return nil, err
			}

			iterOK = isFinite(lk1) && isFinite(fxk1) && isFinite(fyk) &&
				lsearchDone(xk1, fxk1, yk, fyk, gyk, lk1, alphak, a.mon.epsilon)
		}

		st.UpdateIfBetter(xk1, gxk1, fxk1)
		if a.mon.doneValueTest(st, iterOK) {
			break
		}

		_ = tensor.CopyValues(xk, xk1)
		_ = tensor.CopyValues(zk, zk1)
		sk = sk1Sum
		fxk = fxk1
		lk = a.gamma2 * lk1
		sd, yd, gd := sumSkGyk.Raw(), yk.Raw(), gyk.Raw()
		for i := range sd {
			sd[i] += sk1 * (mu*yd[i] - gd[i])
		}
	}
	finish(st)
	return st, nil
}

func (a *ASGA) minimize4(f function.Function, x0 *tensor.Tensor[float64]) (*state.State, error) {
	st, err := state.New(f, x0)
	if err != nil {
		return nil, err
	}
	if a.mon.doneGradientTest(st, true) {
		return st, nil
	}
	n := f.Size()
	mu := f.StrongConvexity()

	lk := a.l0
	sk := 0.0
	fyk := math.MaxFloat64

	vk := x0.Clone()
	yk := x0.Clone()
	xk1, _ := tensor.NewVector(n)
	yk1, _ := tensor.NewVector(n)
	uk1, _ := tensor.NewVector(n)
	gxk1, _ := tensor.NewVector(n)
	gyk1, _ := tensor.NewVector(n)
	sumSkGk, _ := tensor.NewVector(n)

	for a.mon.budget(f) {
		var sk1 float64
		sk1Sum := sk
		lk1 := lk / a.gamma1
		fyk1 := fyk
		iterOK := false
		for p := 0; p < a.lsearchMax && !iterOK; p++ {
			lk1 *= a.gamma1
			sk1 = solveStep(mu, sk, lk1)
			sk1Sum = sk + sk1

			alphak := sk1 / sk1Sum
			blendInto(xk1, alphak, vk, yk)
			fxk1, err := function.ValueGrad(f, xk1, gxk1)
			if err != nil {
				return nil, err
			}

			// u_{k+1} = (v_k + s_{k+1}*(mu*x_{k+1} - g_{k+1})) / (1 + mu*s_{k+1})
			u1, vd, xd, gd := uk1.Raw(), vk.Raw(), xk1.Raw(), gxk1.Raw()
			for i := range u1 {
				u1[i] = (vd[i] + sk1*(mu*xd[i]-gd[i])) / (1 + mu*sk1)
			}
			blendInto(yk1, alphak, uk1, yk)
			fyk1, err = function.ValueGrad(f, yk1, gyk1)
			if err != nil {
				return nil, err
			}

			iterOK = isFinite(lk1) && isFinite(fxk1) && isFinite(fyk1) &&
				lsearchDone(yk1, fyk1, xk1, fxk1, gxk1, lk1, alphak, a.mon.epsilon)
		}

		st.UpdateIfBetter(yk1, gyk1, fyk1)
		if a.mon.doneValueTest(st, iterOK) {
			break
		}

		_ = tensor.CopyValues(yk, yk1)
		sk = sk1Sum
		fyk = fyk1
		lk = a.gamma2 * lk1

		sd, xd, gd := sumSkGk.Raw(), xk1.Raw(), gxk1.Raw()
		for i := range sd {
			sd[i] += sk1 * (mu*xd[i] - gd[i])
		}
		vd, x0d := vk.Raw(), x0.Raw()
		for i := range vd {
			vd[i] = (x0d[i] + sd[i]) / (1 + mu*sk)
		}
	}
	finish(st)
	return st, nil
}
