package state_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nanogo/function"
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

func TestNew_EvaluatesOnce(t *testing.T) {
	f := function.NewSphere(2)
	s, err := state.New(f, vec(t, 1, 2))
	require.NoError(t, err)

	require.Equal(t, 1, f.Counters().FCalls())
	require.Equal(t, 1, f.Counters().GCalls())
	require.InDelta(t, 5.0, s.FX(), 1e-15)
	require.Equal(t, []float64{2, 4}, s.GX().Raw())
	require.Equal(t, state.Running, s.Status())
	require.True(t, s.Valid())
}

func TestNew_RejectsDimensionMismatch(t *testing.T) {
	f := function.NewSphere(3)
	_, err := state.New(f, vec(t, 1, 2))
	require.ErrorIs(t, err, function.ErrDimension)
}

func TestMove_FollowsDirection(t *testing.T) {
	f := function.NewSphere(2)
	origin, err := state.New(f, vec(t, 1, 0))
	require.NoError(t, err)

	s := origin.Clone()
	d := vec(t, -1, 0) // steepest descent up to scale
	s.Move(origin, d, 0.5)

	require.Equal(t, []float64{0.5, 0}, s.X().Raw())
	require.InDelta(t, 0.25, s.FX(), 1e-15)
	require.InDelta(t, 0.5, s.StepSize(), 1e-15)
}

func TestUpdateIfBetter_AcceptsOnlyImprovements(t *testing.T) {
	f := function.NewSphere(2)
	s, err := state.New(f, vec(t, 2, 0))
	require.NoError(t, err)

	require.True(t, s.UpdateIfBetter(vec(t, 1, 0), vec(t, 2, 0), 1.0))
	require.InDelta(t, 1.0, s.FX(), 1e-15)

	// worse value: rejected, point unchanged
	require.False(t, s.UpdateIfBetter(vec(t, 3, 0), vec(t, 6, 0), 9.0))
	require.Equal(t, []float64{1, 0}, s.X().Raw())

	// non-finite value: rejected
	require.False(t, s.UpdateIfBetter(vec(t, 0, 0), vec(t, 0, 0), math.NaN()))
	require.True(t, s.Valid())
}

func TestValueTest_ReportsRecentProgress(t *testing.T) {
	f := function.NewSphere(1)
	s, err := state.New(f, vec(t, 4))
	require.NoError(t, err)

	// one real improvement, then a long dry stretch
	require.True(t, s.UpdateIfBetter(vec(t, 1), vec(t, 2), 1.0))
	require.Greater(t, s.ValueTest(5), 0.0)

	for i := 0; i < 10; i++ {
		s.UpdateIfBetter(vec(t, 2), vec(t, 4), 4.0)
	}
	require.Zero(t, s.ValueTest(5))
}

func TestGradientTest_Normalizes(t *testing.T) {
	f := function.NewSphere(2)
	s, err := state.New(f, vec(t, 3, 4))
	require.NoError(t, err)

	// f = 25, |g|_inf = 8 -> 8/25
	require.InDelta(t, 8.0/25.0, s.GradientTest(), 1e-15)
}

func TestConstraintResidualsTrackMoves(t *testing.T) {
	f := function.NewSphere(2)
	require.NoError(t, f.Constrain(function.LinearEquality{A: vec(t, 1, 1), B: 1}))
	require.NoError(t, f.Constrain(function.BoxUpper{I: 0, Upper: 0.5}))

	s, err := state.New(f, vec(t, 1, 1))
	require.NoError(t, err)
	require.Len(t, s.CEq(), 1)
	require.Len(t, s.CIneq(), 1)
	require.InDelta(t, 1.0, s.CEq()[0], 1e-15)
	require.InDelta(t, 0.5, s.CIneq()[0], 1e-15)
	require.InDelta(t, 1.5, s.ConstraintTest(), 1e-15)

	other := s.Clone()
	other.Move(s, vec(t, -1, -1), 0.5)
	require.InDelta(t, 0.0, other.CEq()[0], 1e-15)
	require.InDelta(t, 0.0, other.CIneq()[0], 1e-15)
}

func TestConditionChecks(t *testing.T) {
	f := function.NewSphere(1)
	origin, err := state.New(f, vec(t, 1))
	require.NoError(t, err)
	d := vec(t, -1)

	// f(1-t) = (1-t)^2; at t = 0.5: f = 0.25, g.d = -1
	s := origin.Clone()
	s.Move(origin, d, 0.5)

	require.True(t, s.HasArmijo(origin, d, 0.5, 1e-4))
	require.True(t, s.HasApproxArmijo(origin, 1e-6))
	require.True(t, s.HasWolfe(origin, d, 0.9))
	// |g.d| = 1 vs c2*|g0.d| = 0.9*2: strong Wolfe holds at t = 0.5
	require.True(t, s.HasStrongWolfe(origin, d, 0.9))
	require.True(t, s.HasApproxWolfe(origin, d, 1e-4, 0.9))

	// a tiny step fails the curvature conditions
	tiny := origin.Clone()
	tiny.Move(origin, d, 1e-6)
	require.False(t, tiny.HasWolfe(origin, d, 0.9))
	require.True(t, tiny.HasArmijo(origin, d, 1e-6, 1e-4))
}

func TestStatusStrings(t *testing.T) {
	require.Equal(t, "converged", state.Converged.String())
	require.Equal(t, "max_iters", state.MaxIters.String())
	require.Equal(t, "failed", state.Failed.String())
	require.Equal(t, "stopped", state.Stopped.String())
}
