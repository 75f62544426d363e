package linesearch_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/function"
	"github.com/katalvlaran/nanogo/linesearch"
	"github.com/katalvlaran/nanogo/rng"
	"github.com/katalvlaran/nanogo/state"
	"github.com/katalvlaran/nanogo/tensor"
	"github.com/stretchr/testify/require"
)

func steepest(t *testing.T, s *state.State) *tensor.Tensor[float64] {
	t.Helper()
	d := s.GX().Clone()
	require.NoError(t, tensor.ScaleInPlace(d, -1))
	return d
}

func convexStart(t *testing.T, src *rng.Source, f function.Function) (*state.State, *tensor.Tensor[float64]) {
	t.Helper()
	x0, err := tensor.NewVector(f.Size())
	require.NoError(t, err)
	src.Vector(x0.Raw(), 1)
	s, err := state.New(f, x0)
	require.NoError(t, err)
	return s, steepest(t, s)
}

func TestInterpolants(t *testing.T) {
	// phi(t) = (t-2)^2: quadratic/cubic/secant all recover the minimizer
	phi := func(tt float64) linesearch.Step {
		return linesearch.Step{T: tt, F: (tt - 2) * (tt - 2), G: 2 * (tt - 2)}
	}
	u, v := phi(0), phi(1)

	convex := false
	tq := linesearch.Quadratic(u, linesearch.Step{T: v.T, F: v.F}, &convex)
	require.True(t, convex)
	require.InDelta(t, 2.0, tq, 1e-12)
	require.InDelta(t, 2.0, linesearch.Cubic(u, v), 1e-12)
	require.InDelta(t, 2.0, linesearch.Secant(u, v), 1e-12)
	require.InDelta(t, 2.0, linesearch.Interpolate(phi(1), phi(5)), 1e-12)
}

func TestInitializers(t *testing.T) {
	f := function.NewSphere(2)
	x0, err := tensor.NewVector(2)
	require.NoError(t, err)
	copy(x0.Raw(), []float64{1, 1})
	s, err := state.New(f, x0)
	require.NoError(t, err)
	d := steepest(t, s)

	require.Equal(t, 1.0, linesearch.UnitInit{}.Make(s, d, 0))
	require.Equal(t, 1.0, linesearch.UnitInit{}.Make(s, d, 7))

	li := &linesearch.LinearInit{}
	require.Equal(t, 1.0, li.Make(s, d, 0))
	s.SetStepSize(0.25)
	// same slope on both iterations: t0 = t_prev * dg/dg = t_prev
	require.InDelta(t, 0.25, li.Make(s, d, 1), 1e-15)

	qi := &linesearch.QuadraticInit{}
	require.Equal(t, 1.0, qi.Make(s, d, 0))

	ci := linesearch.NewCGDescentInit()
	t0 := ci.Make(s, d, 0)
	// phi0 * |x|_inf / |g|_inf = 0.01 * 1/2
	require.InDelta(t, 0.005, t0, 1e-15)
	require.Positive(t, t0)
}

func allSearches(p *config.Params) map[string]linesearch.Search {
	return map[string]linesearch.Search{
		"backtracking": linesearch.NewBacktracking(p),
		"lemarechal":   linesearch.NewLemarechal(p),
		"morethuente":  linesearch.NewMoreThuente(p),
		"fletcher":     linesearch.NewFletcher(p),
		"cgdescent":    linesearch.NewCGDescent(p),
	}
}

// Every search must return a positive step whose declared acceptance
// condition holds literally on the returned state.
func TestSearches_AcceptanceConditionsHold(t *testing.T) {
	p := config.MustBuild(config.WithLSearchTolerance(1e-4, 0.1))
	src := rng.NewSeeded(1234)

	bank := []func() function.Function{
		func() function.Function { return function.NewSphere(4) },
		func() function.Function {
			q, _ := tensor.NewMatrix(2, 2)
			copy(q.Raw(), []float64{4, 1, 1, 3})
			c, _ := tensor.NewVector(2)
			copy(c.Raw(), []float64{-1, 2})
			return function.NewQuadraticBowl(q, c)
		},
	}

	const c1, c2 = 1e-4, 0.1
	for name, search := range allSearches(p) {
		for _, mk := range bank {
			for trial := 0; trial < 5; trial++ {
				f := mk()
				s, d := convexStart(t, src, f)
				if !s.HasDescent(d) {
					continue // x0 landed on the optimum
				}
				origin := s.Clone()

				ok := search.Get(s, d, 1)
				require.Truef(t, ok, "%s on %s trial %d", name, f.Name(), trial)
				tt := s.StepSize()
				require.Positivef(t, tt, "%s on %s", name, f.Name())

				// Armijo holds for every variant
				require.True(t, s.HasArmijo(origin, d, tt, c1), name)
				switch name {
				case "lemarechal":
					require.True(t, s.HasWolfe(origin, d, c2), name)
				case "morethuente", "fletcher":
					require.True(t, s.HasStrongWolfe(origin, d, c2), name)
				case "cgdescent":
					wolfe := s.HasWolfe(origin, d, c2)
					approx := s.HasApproxWolfe(origin, d, c1, c2) && s.HasApproxArmijo(origin, 1e-6*math.Abs(origin.FX()))
					require.True(t, wolfe || approx, name)
				}
			}
		}
	}
}

func TestSearches_RosenbrockStrongWolfe(t *testing.T) {
	p := config.MustBuild(config.WithLSearchTolerance(1e-4, 0.9))
	f := function.NewRosenbrock(2)
	x0, err := tensor.NewVector(2)
	require.NoError(t, err)
	copy(x0.Raw(), []float64{-1.2, 1.0})
	s, err := state.New(f, x0)
	require.NoError(t, err)
	d := steepest(t, s)
	origin := s.Clone()

	mt := linesearch.NewMoreThuente(p)
	require.True(t, mt.Get(s, d, 1))
	require.True(t, s.HasArmijo(origin, d, s.StepSize(), 1e-4))
	require.True(t, s.HasStrongWolfe(origin, d, 0.9))
	require.Less(t, s.FX(), origin.FX())
}

func TestLsearch_CombinesInitAndSearch(t *testing.T) {
	p := config.MustBuild()
	f := function.NewSphere(3)
	x0, err := tensor.NewVector(3)
	require.NoError(t, err)
	copy(x0.Raw(), []float64{1, -2, 3})
	s, err := state.New(f, x0)
	require.NoError(t, err)
	d := steepest(t, s)

	ls := &linesearch.Lsearch{Init: linesearch.UnitInit{}, Search: linesearch.NewBacktracking(p)}
	origin := s.Clone()
	require.True(t, ls.Get(s, d, 0))
	require.Less(t, s.FX(), origin.FX())
}

func TestBacktracking_FailsOnAscentBudget(t *testing.T) {
	p := config.MustBuild(config.WithLSearchMaxIterations(3))
	f := function.NewSphere(1)
	x0, err := tensor.NewVector(1)
	require.NoError(t, err)
	x0.Raw()[0] = 1
	s, err := state.New(f, x0)
	require.NoError(t, err)

	// an ascent direction can never satisfy Armijo with a positive slope
	d, err := tensor.NewVector(1)
	require.NoError(t, err)
	d.Raw()[0] = 1

	bt := linesearch.NewBacktracking(p)
	require.False(t, bt.Get(s, d, 1))
}
