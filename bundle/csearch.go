// SPDX-License-Identifier: MIT
package bundle

import (
	"math"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/tensor"
)

// CSearchStatus classifies the outcome of one curve search.
type CSearchStatus int

const (
	// CSearchFailed means a non-finite value or a broken subproblem.
	CSearchFailed CSearchStatus = iota
	// CSearchMaxIters means the evaluation budget ran out mid-search.
	CSearchMaxIters
	// CSearchConverged means the smeared error and aggregate gradient
	// both dropped under epsilon*sqrt(n).
	CSearchConverged
	// CSearchNullStep means the trial point only improves the model:
	// append it, keep the center.
	CSearchNullStep
	// CSearchDescentStep means the trial point sufficiently decreases f:
	// move the center.
	CSearchDescentStep
	// CSearchCuttingPlaneStep means an unbounded-tR descent step accepted
	// through the cutting-plane test.
	CSearchCuttingPlaneStep
)

var csearchNames = map[CSearchStatus]string{
	CSearchFailed:           "failed",
	CSearchMaxIters:         "max_iters",
	CSearchConverged:        "converged",
	CSearchNullStep:         "null step",
	CSearchDescentStep:      "descent step",
	CSearchCuttingPlaneStep: "cutting plane step",
}

// String implements fmt.Stringer.
func (s CSearchStatus) String() string {
	if name, ok := csearchNames[s]; ok {
		return name
	}
	return "unknown"
}

// Point is the value-typed result of a curve search: the trial point,
// its value and subgradient, the accepted proximity step t, and the
// classification. The solver decides serious versus null from Status and
// reissues calls; the search itself never mutates solver state.
type Point struct {
	Status CSearchStatus
	Y      *tensor.Tensor[float64]
	GY     *tensor.Tensor[float64]
	FY     float64
	T      float64
}

// CSearch is the proximal curve search: it probes bundle subproblems at
// varying t inside the bracket [tL, tR], classifying each trial with the
// four m1..m4 tests until a descent, null, cutting-plane, converged or
// failed outcome emerges.
type CSearch struct {
	fn       function.Function
	m1       float64
	m2       float64
	m3       float64
	m4       float64
	interpol float64
	extrapol float64
	logger   optlog.Logger
	point    Point
}

// NewCSearch builds the search for fn. Recognized options:
// ::csearch::{m1m2,m3,m4,interpol,extrapol} with defaults
// (0.5, 0.9), 1, 1, 0.3, 5.
func NewCSearch(fn function.Function, p *config.Params, logger optlog.Logger) *CSearch {
	m12 := p.GetPair(config.KeyCSearchM1M2, config.Pair{A: 0.5, B: 0.9})
	n := fn.Size()
	y, _ := tensor.NewVector(n)
	gy, _ := tensor.NewVector(n)
	return &CSearch{
		fn:       fn,
		m1:       m12.A,
		m2:       m12.B,
		m3:       p.GetFloat(config.KeyCSearchM3, 1),
		m4:       p.GetFloat(config.KeyCSearchM4, 1),
		interpol: p.GetFloat(config.KeyCSearchInterpol, 0.3),
		extrapol: p.GetFloat(config.KeyCSearchExtrapol, 5),
		logger:   optlog.OrNop(logger),
		point:    Point{Y: y, GY: gy},
	}
}

// Search runs the curve search against b with proximity parameter miu,
// stopping once fcalls+gcalls reaches maxEvals. The returned Point is
// owned by the CSearch and overwritten by the next call.
func (cs *CSearch) Search(b *Bundle, miu float64, maxEvals int, epsilon float64) *Point {
	n := cs.fn.Size()
	sqrtN := math.Sqrt(float64(n))

	t := 1.0
	tL := 0.0
	tR := math.Inf(1)

	newTrial := func() float64 {
		if math.IsInf(tR, 1) {
			return t * cs.extrapol
		}
		return (1-cs.interpol)*tL + cs.interpol*tR
	}

	cs.point.Status = CSearchMaxIters
	for cs.fn.Counters().Total() < maxEvals {
		proxim, err := b.Solve(t/miu, math.Inf(1))
		if err != nil {
			cs.point.Status = CSearchFailed
			break
		}

		_ = tensor.CopyValues(cs.point.Y, proxim.X)
		fy, err := function.ValueGrad(cs.fn, cs.point.Y, cs.point.GY)
		if err != nil {
			cs.point.Status = CSearchFailed
			break
		}
		cs.point.FY = fy
		cs.point.T = t

		x := b.X()
		fx := b.FX()
		ghatDotDy := dotDiff(proxim.GHat, cs.point.Y, x)
		delta := fx - proxim.FHat + 0.5*ghatDotDy
		errLin := fx - fy + dotDiff(cs.point.GY, cs.point.Y, x)
		epsil := fx - proxim.FHat + ghatDotDy
		gnorm := proxim.GNorm

		econv := epsil <= epsilon*sqrtN
		gconv := gnorm <= epsilon*sqrtN

		cs.logger.Log(optlog.Debug,
			"csearch: calls=%d|%d,fx=%g,fy=%g,delta=%g,error=%g,epsil=%g,gnorm=%g,bsize=%d,miu=%g,t=%g[%g,%g]",
			cs.fn.Counters().FCalls(), cs.fn.Counters().GCalls(), fx, fy, delta, errLin, epsil, gnorm,
			b.Size(), miu, t, tL, tR)

		testConverged := econv && gconv
		testDescent := fy <= fx-cs.m1*delta
		testNullStep := errLin <= cs.m3*delta
		testCuttingPlane := gconv || ghatDotDy >= -cs.m4*epsil
		testSufficient := dotDiff(cs.point.GY, cs.point.Y, x) >= -cs.m2*delta

		switch {
		case !isFinite(fy):
			cs.point.Status = CSearchFailed
			return &cs.point
		case testConverged:
			cs.point.Status = CSearchConverged
			return &cs.point
		case testDescent:
			tL = t
			if testSufficient {
				cs.point.Status = CSearchDescentStep
				return &cs.point
			}
			if math.IsInf(tR, 1) && testCuttingPlane {
				cs.point.Status = CSearchCuttingPlaneStep
				return &cs.point
			}
			t = newTrial()
		default:
			tR = t
			if tL < machEps && testNullStep {
				cs.point.Status = CSearchNullStep
				return &cs.point
			}
			t = newTrial()
		}
	}
	return &cs.point
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
