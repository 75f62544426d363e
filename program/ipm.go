// SPDX-License-Identifier: MIT
package program

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
)

// Solution is the terminal record of one interior-point run.
type Solution struct {
	X      *tensor.Tensor[float64] // primal point
	S      *tensor.Tensor[float64] // inequality slacks (m)
	Lambda *tensor.Tensor[float64] // inequality multipliers (m)
	Nu     *tensor.Tensor[float64] // equality multipliers (p)
	FX     float64                 // objective at X
	RDual  float64                 // |r_dual|_inf at exit
	RPrim  float64                 // |r_prim|_inf at exit (both blocks)
	Mu     float64                 // duality measure s.lambda/m at exit
	Iters  int
	Status state.Status
}

// Gap returns the duality gap s.lambda.
func (s *Solution) Gap() float64 {
	if s.S == nil {
		return 0
	}
	g, _ := tensor.Dot(s.S, s.Lambda)
	return g
}

// Solver is the primal-dual interior-point method for Problem. One Solver
// value is reusable across Solve calls.
type Solver struct {
	epsilon  float64
	maxIters int
	// eta is the fraction-to-the-boundary step reduction keeping
	// (s, lambda) strictly positive.
	eta    float64
	logger optlog.Logger
}

// NewSolver builds the solver. Recognized options: solver::epsilon
// (default 1e-10); the iteration cap defaults to 100.
func NewSolver(p *config.Params, logger optlog.Logger) *Solver {
	return &Solver{
		epsilon:  p.GetFloat(config.KeyEpsilon, 1e-10),
		maxIters: 100,
		eta:      0.995,
		logger:   optlog.OrNop(logger),
	}
}

// Solve runs the predictor-corrector iteration on prob. The returned
// Solution always carries the last iterate; callers inspect Status.
func (sv *Solver) Solve(prob *Problem) *Solution {
	n := prob.Dims()
	p := prob.Equalities()
	m := prob.Inequalities()

	sol := &Solution{Status: state.Failed}
	x, _ := tensor.NewVector(n)
	s, lambda := initPositive(prob, x, m)
	nuv := make([]float64, p)

	fac := &ldlt{}
	kdim := n + p
	kkt, _ := tensor.NewMatrix(kdim, kdim)
	rhs := make([]float64, kdim)
	sol1 := make([]float64, kdim)
	sol2 := make([]float64, kdim)

	gx := make([]float64, m)   // G*x
	rd := make([]float64, n)   // dual residual
	rp := make([]float64, p)   // equality residual
	rg := make([]float64, m)   // inequality residual G*x + s - h
	dsAff := make([]float64, m)
	dlAff := make([]float64, m)
	ds := make([]float64, m)
	dl := make([]float64, m)

	for iter := 0; iter <= sv.maxIters; iter++ {
		residuals(prob, x, s, lambda, nuv, gx, rd, rp, rg)
		mu := 0.0
		if m > 0 {
			for i := 0; i < m; i++ {
				mu += s[i] * lambda[i]
			}
			mu /= float64(m)
		}
		rdual := normInf(rd)
		rprim := math.Max(normInf(rp), normInf(rg))

		if !sv.logger.Log(optlog.Info, "ipm: i=%d,f=%g,rdual=%g,rprim=%g,mu=%g,rcond=%g",
			iter, prob.Value(x), rdual, rprim, mu, fac.rcond) {
			sol.Status = state.Stopped
			break
		}
		if math.Max(rdual, rprim) < sv.epsilon && mu < sv.epsilon {
			sol.Status = state.Converged
			sol.Iters = iter
			break
		}
		if iter == sv.maxIters {
			sol.Status = state.MaxIters
			sol.Iters = iter
			break
		}

		// reduced KKT matrix [[Q + G'*diag(lambda/s)*G, A'], [A, 0]],
		// regularized to a quasi-definite (+delta, -delta) pair
		if !sv.assembleAndFactor(prob, s, lambda, kkt, fac) {
			sol.Status = state.Failed
			sol.Iters = iter
			break
		}

		// predictor: affine scaling direction (sigma = 0)
		assembleRHS(prob, s, lambda, rd, rp, rg, nil, 0, rhs)
		fac.solve(rhs, sol1)
		alphaAff := stepLengths(prob, s, lambda, rg, sol1, dsAff, dlAff, nil, 0, 1)

		sigma := 0.0
		if m > 0 {
			muAff := 0.0
			for i := 0; i < m; i++ {
				muAff += (s[i] + alphaAff*dsAff[i]) * (lambda[i] + alphaAff*dlAff[i])
			}
			muAff /= float64(m)
			ratio := muAff / mu
			sigma = ratio * ratio * ratio
		}

		// corrector: recenter with sigma*mu and the Mehrotra
		// second-order term ds_aff*dl_aff
		corr := make([]float64, m)
		for i := 0; i < m; i++ {
			corr[i] = dsAff[i] * dlAff[i]
		}
		assembleRHS(prob, s, lambda, rd, rp, rg, corr, sigma*mu, rhs)
		fac.solve(rhs, sol2)
		alpha := stepLengths(prob, s, lambda, rg, sol2, ds, dl, corr, sigma*mu, sv.eta)

		if !allFinite(sol2) || !isFiniteF(alpha) {
			sol.Status = state.Failed
			sol.Iters = iter
			break
		}

		for i := 0; i < n; i++ {
			x.Raw()[i] += alpha * sol2[i]
		}
		for i := 0; i < p; i++ {
			nuv[i] += alpha * sol2[n+i]
		}
		for i := 0; i < m; i++ {
			s[i] += alpha * ds[i]
			lambda[i] += alpha * dl[i]
		}
		sol.Iters = iter + 1
	}

	sol.X = x
	sol.FX = prob.Value(x)
	if m > 0 {
		sol.S, _ = tensor.NewVector(m)
		copy(sol.S.Raw(), s)
		sol.Lambda, _ = tensor.NewVector(m)
		copy(sol.Lambda.Raw(), lambda)
	}
	if p > 0 {
		sol.Nu, _ = tensor.NewVector(p)
		copy(sol.Nu.Raw(), nuv)
	}
	residuals(prob, x, s, lambda, nuv, gx, rd, rp, rg)
	sol.RDual = normInf(rd)
	sol.RPrim = math.Max(normInf(rp), normInf(rg))
	if m > 0 {
		mu := 0.0
		for i := 0; i < m; i++ {
			mu += s[i] * lambda[i]
		}
		sol.Mu = mu / float64(m)
	}
	return sol
}

// initPositive seeds (s, lambda) strictly positive, pushing s toward the
// slack of the zero point when that is already positive.
func initPositive(prob *Problem, x *tensor.Tensor[float64], m int) (s, lambda []float64) {
	s = make([]float64, m)
	lambda = make([]float64, m)
	if m == 0 {
		return
	}
	gx := make([]float64, m)
	gemvRaw(prob.G, x.Raw(), gx)
	hd := prob.H.Raw()
	for i := 0; i < m; i++ {
		s[i] = math.Max(1, hd[i]-gx[i])
		lambda[i] = 1
	}
	return
}

// residuals fills gx = G*x, rd = Qx + c + A'nu + G'lambda,
// rp = Ax - b, rg = Gx + s - h.
func residuals(prob *Problem, x *tensor.Tensor[float64], s, lambda, nu, gx, rd, rp, rg []float64) {
	n := prob.Dims()
	p := len(rp)
	m := len(rg)
	xd := x.Raw()

	// rd = Qx + c
	if prob.Q != nil {
		gemvRaw(prob.Q, xd, rd)
	} else {
		zero(rd)
	}
	for i := 0; i < n; i++ {
		rd[i] += prob.C.Raw()[i]
	}
	// + A'nu
	if p > 0 {
		ad := prob.A.Raw()
		for i := 0; i < p; i++ {
			for j := 0; j < n; j++ {
				rd[j] += ad[i*n+j] * nu[i]
			}
		}
		gemvRaw(prob.A, xd, rp)
		for i := 0; i < p; i++ {
			rp[i] -= prob.B.Raw()[i]
		}
	}
	// + G'lambda
	if m > 0 {
		gd := prob.G.Raw()
		gemvRaw(prob.G, xd, gx)
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				rd[j] += gd[i*n+j] * lambda[i]
			}
			rg[i] = gx[i] + s[i] - prob.H.Raw()[i]
		}
	}
}

// assembleAndFactor builds the reduced saddle matrix and factorizes it,
// escalating the quasi-definite regularization until the pivots hold.
func (sv *Solver) assembleAndFactor(prob *Problem, s, lambda []float64, kkt *tensor.Tensor[float64], fac *ldlt) bool {
	n := prob.Dims()
	p := prob.Equalities()
	m := prob.Inequalities()
	kd := kkt.Raw()
	kdim := n + p
	zero(kd)

	if prob.Q != nil {
		qd := prob.Q.Raw()
		for i := 0; i < n; i++ {
			copy(kd[i*kdim:i*kdim+n], qd[i*n:i*n+n])
		}
	}
	if m > 0 {
		gd := prob.G.Raw()
		for r := 0; r < m; r++ {
			w := lambda[r] / s[r]
			for i := 0; i < n; i++ {
				gri := gd[r*n+i]
				if gri == 0 {
					continue
				}
				for j := 0; j < n; j++ {
					kd[i*kdim+j] += w * gri * gd[r*n+j]
				}
			}
		}
	}
	if p > 0 {
		ad := prob.A.Raw()
		for i := 0; i < p; i++ {
			for j := 0; j < n; j++ {
				kd[(n+i)*kdim+j] = ad[i*n+j]
				kd[j*kdim+n+i] = ad[i*n+j]
			}
		}
	}

	for _, delta := range []float64{1e-12, 1e-10, 1e-8, 1e-6} {
		for i := 0; i < n; i++ {
			kd[i*kdim+i] += delta
		}
		for i := n; i < kdim; i++ {
			kd[i*kdim+i] -= delta
		}
		if err := fac.factorize(kkt, 1e-14); err == nil {
			return true
		}
	}
	sv.logger.Log(optlog.Error, "ipm: %v", ErrLDLT)
	return false
}

// assembleRHS fills the reduced right-hand side
// (-r_d - G'*S^{-1}*(Lambda*r_g - r_cent), -r_p). With corr = nil the
// centrality residual is the affine r_cent = S*Lambda*1; on the
// corrector pass corr carries the second-order dsAff*dlAff term and
// sigmaMu the recentering target.
func assembleRHS(prob *Problem, s, lambda, rd, rp, rg, corr []float64, sigmaMu float64, rhs []float64) {
	n := prob.Dims()
	p := len(rp)
	m := len(rg)

	for i := 0; i < n; i++ {
		rhs[i] = -rd[i]
	}
	if m > 0 {
		gd := prob.G.Raw()
		for r := 0; r < m; r++ {
			rc := s[r]*lambda[r] - sigmaMu
			if corr != nil {
				rc += corr[r]
			}
			w := (lambda[r]*rg[r] - rc) / s[r]
			for j := 0; j < n; j++ {
				rhs[j] -= gd[r*n+j] * w
			}
		}
	}
	for i := 0; i < p; i++ {
		rhs[n+i] = -rp[i]
	}
}

// stepLengths recovers (ds, dl) from the reduced solution and returns
// the fraction-to-the-boundary step alpha.
func stepLengths(prob *Problem, s, lambda, rg, red []float64, ds, dl, corr []float64, sigmaMu, eta float64) float64 {
	n := prob.Dims()
	m := len(rg)
	alpha := 1.0
	if m == 0 {
		return alpha
	}
	gd := prob.G.Raw()
	for r := 0; r < m; r++ {
		var gdx float64
		for j := 0; j < n; j++ {
			gdx += gd[r*n+j] * red[j]
		}
		ds[r] = -rg[r] - gdx
		rc := s[r]*lambda[r] - sigmaMu
		if corr != nil {
			rc += corr[r]
		}
		dl[r] = -(rc + lambda[r]*ds[r]) / s[r]

		if ds[r] < 0 {
			alpha = math.Min(alpha, -s[r]/ds[r])
		}
		if dl[r] < 0 {
			alpha = math.Min(alpha, -lambda[r]/dl[r])
		}
	}
	return math.Min(1, eta*alpha)
}

func gemvRaw(a *tensor.Tensor[float64], x, y []float64) {
	rows, cols := a.Rows(), a.Cols()
	ad := a.Raw()
	for i := 0; i < rows; i++ {
		var sum float64
		base := i * cols
		for j := 0; j < cols; j++ {
			sum += ad[base+j] * x[j]
		}
		y[i] = sum
	}
}

func zero(v []float64) {
	for i := range v {
		v[i] = 0
	}
}

func normInf(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func isFiniteF(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
