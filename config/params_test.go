package config_test

import (
	"errors"
	"testing"

	"github.com/katalvlaran/nanogo/config"
	"github.com/stretchr/testify/require"
)

func TestBuild_AppliesOptionsInOrder(t *testing.T) {
	p, err := config.Build(
		config.WithMaxEvals(100),
		config.WithEpsilon(1e-6),
		config.WithTolerance(1e-4, 0.9),
	)
	require.NoError(t, err)
	require.Equal(t, 100, p.GetInt(config.KeyMaxEvals, -1))
	require.InDelta(t, 1e-6, p.GetFloat(config.KeyEpsilon, -1), 0)
	pair := p.GetPair(config.KeyTolerance, config.Pair{})
	require.Equal(t, 1e-4, pair.A)
	require.Equal(t, 0.9, pair.B)
}

func TestBuild_LastWriterWins(t *testing.T) {
	p, err := config.Build(config.WithMaxEvals(10), config.WithMaxEvals(20))
	require.NoError(t, err)
	require.Equal(t, 20, p.GetInt(config.KeyMaxEvals, -1))
}

func TestGet_MissingKeyReturnsDefault(t *testing.T) {
	p, err := config.Build()
	require.NoError(t, err)
	require.Equal(t, 42, p.GetInt("nope", 42))
	require.False(t, p.Has("nope"))
}

func TestWithEpsilon_RejectsNonPositive(t *testing.T) {
	for _, v := range []float64{0, -1, -1e-9} {
		_, err := config.Build(config.WithEpsilon(v))
		require.Error(t, err)
		require.True(t, errors.Is(err, config.ErrInvalidValue))
	}
}

func TestWithTolerance_RejectsOutOfRange(t *testing.T) {
	cases := []struct{ c1, c2 float64 }{
		{0, 0.9},
		{0.5, 0.4},
		{0.1, 1.0},
		{-0.1, 0.9},
	}
	for _, c := range cases {
		_, err := config.Build(config.WithTolerance(c.c1, c.c2))
		require.Errorf(t, err, "c1=%v c2=%v", c.c1, c.c2)
	}
}

func TestWithBundleMaxSize_RequiresAtLeastTwo(t *testing.T) {
	_, err := config.Build(config.WithBundleMaxSize(1))
	require.Error(t, err)
	p, err := config.Build(config.WithBundleMaxSize(2))
	require.NoError(t, err)
	require.Equal(t, 2, p.GetInt(config.KeyBundleMaxSize, -1))
}

func TestMerge_SecondOverridesFirst(t *testing.T) {
	a, _ := config.Build(config.WithMaxEvals(10), config.WithEpsilon(1e-3))
	b, _ := config.Build(config.WithMaxEvals(20))
	merged := config.Merge(a, b)
	require.Equal(t, 20, merged.GetInt(config.KeyMaxEvals, -1))
	require.InDelta(t, 1e-3, merged.GetFloat(config.KeyEpsilon, -1), 0)
}

func TestWithCGDescentParams_ValidatesAllFour(t *testing.T) {
	_, err := config.Build(config.WithCGDescentParams(0.1, 0.5, 0.5, 5))
	require.NoError(t, err)
	_, err = config.Build(config.WithCGDescentParams(0.1, 0.5, 0.5, 0.5))
	require.Error(t, err)
}
