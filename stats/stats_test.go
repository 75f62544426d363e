package stats_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nanogo/stats"
	"github.com/katalvlaran/nanogo/tensor"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"
)

func TestScalarStats_ZeroCountCollapsesToIdentity(t *testing.T) {
	s := stats.NewScalarStats()
	s.Done()
	mean, err := s.Mean()
	require.NoError(t, err)
	require.Zero(t, mean)
	invRange, _ := s.InvRange()
	require.Equal(t, 1.0, invRange)
	invStdev, _ := s.InvStdev()
	require.Equal(t, 1.0, invStdev)
}

func TestScalarStats_AccessorsRequireDone(t *testing.T) {
	s := stats.NewScalarStats()
	s.Add(1)
	_, err := s.Mean()
	require.ErrorIs(t, err, stats.ErrNotFinalized)
}

func TestScalarStats_MeanAndStdev(t *testing.T) {
	s := stats.NewScalarStats()
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		s.Add(v)
	}
	s.Done()
	mean, _ := s.Mean()
	require.InDelta(t, 5.0, mean, 1e-9)
	stdev, _ := s.StdDev()
	require.InDelta(t, 2.13809, stdev, 1e-4)
}

func TestScalarStats_MatchesGonum(t *testing.T) {
	values := []float64{0.5, -1.25, 3, 7.5, 2, -0.75, 4.25, 1}
	s := stats.NewScalarStats()
	for _, v := range values {
		s.Add(v)
	}
	s.Done()

	mean, _ := s.Mean()
	require.InDelta(t, stat.Mean(values, nil), mean, 1e-12)
	stdev, _ := s.StdDev()
	require.InDelta(t, stat.StdDev(values, nil), stdev, 1e-12)
}

func TestTable_ScaleUpscaleRoundTrip(t *testing.T) {
	data, err := tensor.New[float64](tensor.Dims{4, 2})
	require.NoError(t, err)
	rows := [][2]float64{{1, 10}, {2, 20}, {3, 30}, {4, 40}}
	for i, r := range rows {
		require.NoError(t, data.Set(r[0], i, 0))
		require.NoError(t, data.Set(r[1], i, 1))
	}

	table := stats.NewTable(2)
	require.NoError(t, table.Fit(data))

	scaled := data.Clone()
	require.NoError(t, table.Scale(stats.Standard, scaled))
	require.NoError(t, table.Upscale(stats.Standard, scaled))
	require.True(t, tensor.Close(data, scaled, 1e-6))
}

func TestTable_ConstantColumnIsIdentityScale(t *testing.T) {
	data, err := tensor.New[float64](tensor.Dims{3, 1})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, data.Set(7, i, 0))
	}
	table := stats.NewTable(1)
	require.NoError(t, table.Fit(data))

	scaled := data.Clone()
	require.NoError(t, table.Scale(stats.Standard, scaled))
	require.True(t, tensor.Close(data, scaled, 1e-12))
}

func TestTable_NonFiniteInputBecomesZero(t *testing.T) {
	data, err := tensor.New[float64](tensor.Dims{2, 1})
	require.NoError(t, err)
	require.NoError(t, data.Set(1, 0, 0))
	require.NoError(t, data.Set(3, 1, 0))
	table := stats.NewTable(1)
	require.NoError(t, table.Fit(data))

	probe, err := tensor.New[float64](tensor.Dims{1, 1})
	require.NoError(t, err)
	require.NoError(t, probe.Set(math.Inf(1), 0, 0))
	require.NoError(t, table.Scale(stats.MeanRange, probe))
	v, err := probe.At(0, 0)
	require.NoError(t, err)
	require.Zero(t, v)
}

func TestPercentile_Median(t *testing.T) {
	med, err := stats.Median([]float64{3, 1, 2})
	require.NoError(t, err)
	require.InDelta(t, 2.0, med, 1e-9)
}

func TestPercentile_RejectsEmptyAndBadQuantile(t *testing.T) {
	_, err := stats.Percentile(nil, 0.5)
	require.ErrorIs(t, err, stats.ErrEmptyInput)

	_, err = stats.Percentile([]float64{1}, 1.5)
	require.ErrorIs(t, err, stats.ErrBadQuantile)
}

func TestIntDiv_RejectsZero(t *testing.T) {
	_, err := stats.IntDiv(4, 0)
	require.ErrorIs(t, err, stats.ErrDivideByZero)

	q, err := stats.IntDiv(7, 2)
	require.NoError(t, err)
	require.Equal(t, 3, q)
}
