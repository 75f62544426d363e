package program_test

import (
	"testing"

	"github.com/katalvlaran/nanogo/config"
	"github.com/katalvlaran/nanogo/program"
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

func mat(t *testing.T, rows, cols int, vs ...float64) *tensor.Tensor[float64] {
	t.Helper()
	m, err := tensor.NewMatrix(rows, cols)
	require.NoError(t, err)
	require.Len(t, vs, rows*cols)
	copy(m.Raw(), vs)
	return m
}

func newSolver(t *testing.T, eps float64) *program.Solver {
	t.Helper()
	p, err := config.Build(config.WithEpsilon(eps))
	require.NoError(t, err)
	return program.NewSolver(p, nil)
}

func TestLP_Halfspace(t *testing.T) {
	// min x1 + x2 s.t. x1 + 2*x2 <= 5, x1 >= 0, x2 >= 0: optimum (0,0)
	prob := program.NewLinear(vec(t, 1, 1))
	_, err := prob.WithInequality(
		mat(t, 3, 2, 1, 2, -1, 0, 0, -1),
		vec(t, 5, 0, 0),
	)
	require.NoError(t, err)

	const eps = 1e-8
	sol := newSolver(t, eps).Solve(prob)
	require.Equal(t, state.Converged, sol.Status)
	require.Less(t, sol.Iters, 10)
	require.InDelta(t, 0.0, sol.FX, 1e-6)
	require.InDelta(t, 0.0, sol.X.Raw()[0], 1e-6)
	require.InDelta(t, 0.0, sol.X.Raw()[1], 1e-6)
	require.True(t, prob.Feasible(sol.X, 10*eps))
	require.LessOrEqual(t, sol.Gap(), float64(len(sol.S.Raw()))*eps)
}

func TestQP_EqualityConstrained(t *testing.T) {
	// example 16.2, "Numerical optimization", Nocedal & Wright, 2nd
	// edition: optimum (2, -1, 1)
	q := mat(t, 3, 3,
		6, 2, 1,
		2, 5, 2,
		1, 2, 4,
	)
	prob, err := program.NewQuadratic(q, vec(t, -8, -3, -3))
	require.NoError(t, err)
	_, err = prob.WithEquality(
		mat(t, 2, 3, 1, 0, 1, 0, 1, 1),
		vec(t, 3, 0),
	)
	require.NoError(t, err)

	sol := newSolver(t, 1e-10).Solve(prob)
	require.Equal(t, state.Converged, sol.Status)
	require.Less(t, sol.Iters, 20)
	require.InDelta(t, 2.0, sol.X.Raw()[0], 1e-7)
	require.InDelta(t, -1.0, sol.X.Raw()[1], 1e-7)
	require.InDelta(t, 1.0, sol.X.Raw()[2], 1e-7)
	require.InDelta(t, -3.5, sol.FX, 1e-6)
	require.True(t, prob.Feasible(sol.X, 1e-8))
}

func TestQP_InequalityConstrained(t *testing.T) {
	// example p.467, "Numerical optimization": min x1^2 + x2^2 + 2*x2
	// over the nonnegative orthant: optimum (0, 0)
	q := mat(t, 2, 2, 2, 0, 0, 2)
	prob, err := program.NewQuadratic(q, vec(t, 0, 2))
	require.NoError(t, err)
	_, err = prob.WithInequality(mat(t, 2, 2, -1, 0, 0, -1), vec(t, 0, 0))
	require.NoError(t, err)

	const eps = 1e-10
	sol := newSolver(t, eps).Solve(prob)
	require.Equal(t, state.Converged, sol.Status)
	require.InDelta(t, 0.0, sol.X.Raw()[0], 1e-7)
	require.InDelta(t, 0.0, sol.X.Raw()[1], 1e-7)
	require.True(t, prob.Feasible(sol.X, 10*eps))
	require.LessOrEqual(t, sol.Gap(), 1e-8)
}

func TestQP_ActiveInequalities(t *testing.T) {
	// example 16.4, "Numerical optimization": optimum (1.4, 1.7)
	q := mat(t, 2, 2, 2, 0, 0, 2)
	prob, err := program.NewQuadratic(q, vec(t, -2, -5))
	require.NoError(t, err)
	_, err = prob.WithInequality(
		mat(t, 5, 2,
			-1, 2,
			1, 2,
			1, -2,
			-1, 0,
			0, -1,
		),
		vec(t, 2, 6, 2, 0, 0),
	)
	require.NoError(t, err)

	sol := newSolver(t, 1e-10).Solve(prob)
	require.Equal(t, state.Converged, sol.Status)
	require.InDelta(t, 1.4, sol.X.Raw()[0], 1e-6)
	require.InDelta(t, 1.7, sol.X.Raw()[1], 1e-6)
	require.True(t, prob.Feasible(sol.X, 1e-8))
}

func TestLP_StandardFormRoundTrip(t *testing.T) {
	// the halfspace LP solved in standard form must recover the same
	// optimum through the split-variable mapping
	prob := program.NewLinear(vec(t, 1, 1))
	_, err := prob.WithInequality(
		mat(t, 3, 2, 1, 2, -1, 0, 0, -1),
		vec(t, 5, 0, 0),
	)
	require.NoError(t, err)

	sf, err := program.ToStandardForm(prob)
	require.NoError(t, err)
	// z = (xp, xm, s): 2n + m variables, p + m equality rows
	require.Equal(t, 2*2+3, sf.Prob.Dims())
	require.Equal(t, 3, sf.Prob.Equalities())

	sol := newSolver(t, 1e-8).Solve(sf.Prob)
	require.Equal(t, state.Converged, sol.Status)

	x, err := sf.Recover(sol.X)
	require.NoError(t, err)
	require.InDelta(t, 0.0, x.Raw()[0], 1e-5)
	require.InDelta(t, 0.0, x.Raw()[1], 1e-5)
	require.True(t, prob.Feasible(x, 1e-5))
}

func TestNewQuadratic_RejectsAsymmetricQ(t *testing.T) {
	q := mat(t, 2, 2, 1, 2, 3, 4)
	_, err := program.NewQuadratic(q, vec(t, 0, 0))
	require.ErrorIs(t, err, program.ErrNotSymmetric)
}

func TestProblem_DimensionChecks(t *testing.T) {
	prob := program.NewLinear(vec(t, 1, 1))
	_, err := prob.WithEquality(mat(t, 1, 3, 1, 1, 1), vec(t, 1))
	require.ErrorIs(t, err, program.ErrDimension)
	_, err = prob.WithInequality(mat(t, 2, 2, 1, 0, 0, 1), vec(t, 1))
	require.ErrorIs(t, err, program.ErrDimension)
}

func TestFeasible(t *testing.T) {
	prob := program.NewLinear(vec(t, 1, 1))
	_, err := prob.WithEquality(mat(t, 1, 2, 1, 1), vec(t, 1))
	require.NoError(t, err)
	_, err = prob.WithInequality(mat(t, 1, 2, 1, 0), vec(t, 0.75))
	require.NoError(t, err)

	require.True(t, prob.Feasible(vec(t, 0.5, 0.5), 1e-12))
	require.False(t, prob.Feasible(vec(t, 1, 1), 1e-6))   // violates equality
	require.False(t, prob.Feasible(vec(t, 1, 0), 1e-6))   // violates inequality
	require.True(t, prob.Feasible(vec(t, 0.75, 0.25), 1e-9))
}
