package solver_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/linesearch"
	"github.com/katalvlaran/nanogo/optlog"
	"github.com/katalvlaran/nanogo/solver"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
	"github.com/stretchr/testify/require"
)

func vec(t *testing.T, vs ...float64) *tensor.Tensor[float64] {
	t.Helper()
	v, err := tensor.NewVector(len(vs))
	require.NoError(t, err)
	copy(v.Raw(), vs)
	return v
}

func TestCGDPR_SphereConvergesFast(t *testing.T) {
	// CGD-PR on sphere(n=4) from (1,1,1,1) reaches f = 0 at the origin
	// within 25 evaluations
	p := config.MustBuild(config.WithEpsilon(1e-8), config.WithMaxEvals(200))
	f := function.NewSphere(4)
	s, err := solver.NewCGD(solver.CGDPR, p, nil).Minimize(f, vec(t, 1, 1, 1, 1))
	require.NoError(t, err)

	require.Equal(t, state.Converged, s.Status())
	require.LessOrEqual(t, f.Counters().Total(), 25)
	require.InDelta(t, 0.0, s.FX(), 1e-12)
	for _, xi := range s.X().Raw() {
		require.InDelta(t, 0.0, xi, 1e-6)
	}
}

func TestBFGS_RosenbrockReachesMinimum(t *testing.T) {
	// BFGS on Rosenbrock n=2 from (-1.2, 1.0) with strong Wolfe reaches
	// (1, 1) with f < 1e-10
	p := config.MustBuild(config.WithEpsilon(1e-6), config.WithMaxEvals(2000))
	f := function.NewRosenbrock(2)
	s, err := solver.NewQuasi(solver.QuasiBFGS, p, nil).Minimize(f, vec(t, -1.2, 1.0))
	require.NoError(t, err)

	require.Equal(t, state.Converged, s.Status())
	require.Less(t, s.FX(), 1e-10)
	require.InDelta(t, 1.0, s.X().Raw()[0], 1e-4)
	require.InDelta(t, 1.0, s.X().Raw()[1], 1e-4)
}

func TestLBFGS_Rosenbrock(t *testing.T) {
	p := config.MustBuild(config.WithEpsilon(1e-6), config.WithMaxEvals(2000))
	f := function.NewRosenbrock(2)
	s, err := solver.NewLBFGS(p, nil).Minimize(f, vec(t, -1.2, 1.0))
	require.NoError(t, err)

	require.Equal(t, state.Converged, s.Status())
	require.Less(t, s.FX(), 1e-10)
	require.InDelta(t, 1.0, s.X().Raw()[0], 1e-4)
	require.InDelta(t, 1.0, s.X().Raw()[1], 1e-4)
}

func TestCGDVariants_AgreeOnConvexQuadratic(t *testing.T) {
	q, err := tensor.NewMatrix(3, 3)
	require.NoError(t, err)
	copy(q.Raw(), []float64{4, 1, 0, 1, 3, 1, 0, 1, 2})
	c, err := tensor.NewVector(3)
	require.NoError(t, err)
	copy(c.Raw(), []float64{-1, 0, 2})

	variants := []solver.CGDVariant{
		solver.CGDHS, solver.CGDFR, solver.CGDPR, solver.CGDCD, solver.CGDLS,
		solver.CGDDY, solver.CGDN, solver.CGDDYCD, solver.CGDDYHS, solver.CGDFRPR,
	}

	const eps = 1e-7
	p := config.MustBuild(config.WithEpsilon(eps), config.WithMaxEvals(500))

	var best []float64
	for _, v := range variants {
		f := function.NewQuadraticBowl(q.Clone(), c.Clone())
		s, err := solver.NewCGD(v, p, nil).Minimize(f, vec(t, 1, 1, 1))
		require.NoError(t, err, v.String())
		require.Equalf(t, state.Converged, s.Status(), "%s: %s", v, s)
		require.Lessf(t, s.GradientTest(), eps, v.String())

		if best == nil {
			best = append([]float64(nil), s.X().Raw()...)
		} else {
			for i, xi := range s.X().Raw() {
				require.InDeltaf(t, best[i], xi, 1e-4, v.String())
			}
		}
	}
}

func TestQuasiVariants_AgreeOnConvexQuadratic(t *testing.T) {
	q, err := tensor.NewMatrix(2, 2)
	require.NoError(t, err)
	copy(q.Raw(), []float64{6, 2, 2, 5})
	c, err := tensor.NewVector(2)
	require.NoError(t, err)
	copy(c.Raw(), []float64{-8, -3})

	variants := []solver.QuasiVariant{
		solver.QuasiSR1, solver.QuasiDFP, solver.QuasiBFGS, solver.QuasiHoshino, solver.QuasiFletcher,
	}

	const eps = 1e-7
	for _, init := range []config.QuasiInit{config.QuasiInitIdentity, config.QuasiInitScaled} {
		p := config.MustBuild(
			config.WithEpsilon(eps),
			config.WithMaxEvals(500),
			config.WithQuasiInit(init),
		)
		var best []float64
		for _, v := range variants {
			f := function.NewQuadraticBowl(q.Clone(), c.Clone())
			s, err := solver.NewQuasi(v, p, nil).Minimize(f, vec(t, 0, 0))
			require.NoError(t, err, v.String())
			require.Equalf(t, state.Converged, s.Status(), "%s init=%d: %s", v, init, s)
			require.Lessf(t, s.GradientTest(), eps, v.String())

			if best == nil {
				best = append([]float64(nil), s.X().Raw()...)
			} else {
				for i, xi := range s.X().Raw() {
					require.InDeltaf(t, best[i], xi, 1e-4, v.String())
				}
			}
		}
	}
}

// Every (solver, initializer, search) combination with Wolfe-capable
// acceptance must drive |g|_inf/max(1,|f|) under epsilon on a smooth
// convex function, and all configurations must agree on the best value.
func TestSolverInitSearchMatrix_AgreeOnConvex(t *testing.T) {
	q, err := tensor.NewMatrix(3, 3)
	require.NoError(t, err)
	copy(q.Raw(), []float64{4, 1, 0, 1, 3, 1, 0, 1, 2})
	c, err := tensor.NewVector(3)
	require.NoError(t, err)
	copy(c.Raw(), []float64{-1, 0, 2})

	const eps = 1e-7
	p := config.MustBuild(config.WithEpsilon(eps), config.WithMaxEvals(1000))

	inits := map[string]func() linesearch.Initializer{
		"unit":      func() linesearch.Initializer { return linesearch.UnitInit{} },
		"linear":    func() linesearch.Initializer { return &linesearch.LinearInit{} },
		"quadratic": func() linesearch.Initializer { return &linesearch.QuadraticInit{} },
		"cgdescent": func() linesearch.Initializer { return linesearch.NewCGDescentInit() },
	}
	searches := map[string]func() linesearch.Search{
		"lemarechal":  func() linesearch.Search { return linesearch.NewLemarechal(p) },
		"morethuente": func() linesearch.Search { return linesearch.NewMoreThuente(p) },
		"fletcher":    func() linesearch.Search { return linesearch.NewFletcher(p) },
		"cgdescent":   func() linesearch.Search { return linesearch.NewCGDescent(p) },
	}
	type configurable interface {
		solver.Solver
		SetLsearch(func() *linesearch.Lsearch)
	}
	solvers := map[string]func() configurable{
		"cgd-pr": func() configurable { return solver.NewCGD(solver.CGDPR, p, nil) },
		"lbfgs":  func() configurable { return solver.NewLBFGS(p, nil) },
		"bfgs":   func() configurable { return solver.NewQuasi(solver.QuasiBFGS, p, nil) },
	}

	best := math.Inf(1)
	var results []float64
	for sname, mkSolver := range solvers {
		for iname, mkInit := range inits {
			for lname, mkSearch := range searches {
				f := function.NewQuadraticBowl(q.Clone(), c.Clone())
				sv := mkSolver()
				mi, ms := mkInit, mkSearch
				sv.SetLsearch(func() *linesearch.Lsearch {
					return &linesearch.Lsearch{Init: mi(), Search: ms()}
				})
				s, err := sv.Minimize(f, vec(t, 1, 1, 1))
				require.NoErrorf(t, err, "%s/%s/%s", sname, iname, lname)
				require.Equalf(t, state.Converged, s.Status(), "%s/%s/%s: %s", sname, iname, lname, s)
				require.Lessf(t, s.GradientTest(), eps, "%s/%s/%s", sname, iname, lname)
				require.Less(t, f.Counters().Total(), 1000)
				results = append(results, s.FX())
				if s.FX() < best {
					best = s.FX()
				}
			}
		}
	}
	for _, fx := range results {
		require.InDelta(t, best, fx, 1e-6)
	}
}

func TestUniversal_SphereAllVariants(t *testing.T) {
	p := config.MustBuild(config.WithEpsilon(1e-8), config.WithMaxEvals(3000))
	for _, v := range []solver.UniversalVariant{solver.UniversalPGM, solver.UniversalDGM, solver.UniversalFGM} {
		f := function.NewSphere(3)
		s, err := solver.NewUniversal(v, p, nil).Minimize(f, vec(t, 1, -2, 0.5))
		require.NoError(t, err, v.String())
		require.NotEqual(t, state.Failed, s.Status(), v.String())
		require.Lessf(t, s.FX(), 1e-5, "%s: %s", v, s)
	}
}

func TestASGA_ConvexNonsmooth(t *testing.T) {
	p := config.MustBuild(config.WithEpsilon(1e-7), config.WithMaxEvals(4000))
	k := vec(t, 0.5, -0.5)
	for _, v := range []solver.ASGAVariant{solver.ASGA2, solver.ASGA4} {
		f := function.NewL1Distance(k)
		s, err := solver.NewASGA(v, p, nil).Minimize(f, vec(t, 2, 2))
		require.NoError(t, err, v.String())
		require.NotEqual(t, state.Failed, s.Status(), v.String())
		require.Lessf(t, s.FX(), 1e-2, "%s: %s", v, s)
	}
}

func TestEllipsoid_NonsmoothConvex(t *testing.T) {
	p := config.MustBuild(config.WithEpsilon(1e-9), config.WithMaxEvals(2000))
	k := vec(t, 1, -1)
	f := function.NewL1Distance(k)

	e := solver.NewEllipsoid(p, nil)
	e.R0 = 8
	s, err := e.Minimize(f, vec(t, 3, 3))
	require.NoError(t, err)
	require.Equal(t, state.Converged, s.Status())
	require.Less(t, s.FX(), 1e-6)
	require.InDelta(t, 1.0, s.X().Raw()[0], 1e-5)
	require.InDelta(t, -1.0, s.X().Raw()[1], 1e-5)
}

func TestSolvers_BudgetExhaustionReportsMaxIters(t *testing.T) {
	// a budget too small to converge must end in MaxIters, never panic
	p := config.MustBuild(config.WithEpsilon(1e-14), config.WithMaxEvals(8))
	f := function.NewRosenbrock(2)
	s, err := solver.NewQuasi(solver.QuasiBFGS, p, nil).Minimize(f, vec(t, -1.2, 1.0))
	require.NoError(t, err)
	require.Equal(t, state.MaxIters, s.Status())
	require.True(t, s.Valid())
}

// stopLogger vetoes every message, exercising the user-stop path.
type stopLogger struct{}

func (stopLogger) Log(optlog.Level, string, ...interface{}) bool { return false }

func TestSolvers_LoggerStop(t *testing.T) {
	p := config.MustBuild(config.WithEpsilon(1e-12), config.WithMaxEvals(1000))
	f := function.NewSphere(2)
	s, err := solver.NewCGD(solver.CGDPR, p, stopLogger{}).Minimize(f, vec(t, 1, 1))
	require.NoError(t, err)
	require.Equal(t, state.Stopped, s.Status())
}
