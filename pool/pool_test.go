package pool_test

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/katalvlaran/nanogo/pool"
	"github.com/stretchr/testify/require"
)

func TestMap_MatchesSequentialSum(t *testing.T) {
	for _, workers := range []int{1, runtime.GOMAXPROCS(0) - 1, runtime.GOMAXPROCS(0), runtime.GOMAXPROCS(0) + 1} {
		p := pool.New(workers)

		const n = 1000
		var total int64
		err := p.Map(n, func(i, _ int) error {
			atomic.AddInt64(&total, int64(i))
			return nil
		})
		require.NoError(t, err)

		var want int64
		for i := 0; i < n; i++ {
			want += int64(i)
		}
		require.Equal(t, want, total)
		p.Close()
	}
}

func TestMap_WorkerIDsStayInRange(t *testing.T) {
	p := pool.New(4)
	defer p.Close()

	var bad int32
	err := p.Map(256, func(_, worker int) error {
		if worker < 0 || worker >= p.Size() {
			atomic.AddInt32(&bad, 1)
		}
		return nil
	})
	require.NoError(t, err)
	require.Zero(t, bad)
}

func TestMap_ReturnsFirstError(t *testing.T) {
	p := pool.New(2)
	defer p.Close()

	sentinel := errors.New("boom")
	err := p.Map(5, func(i, _ int) error {
		if i == 3 {
			return sentinel
		}
		return nil
	})
	require.ErrorIs(t, err, sentinel)
}

func TestMapChunk_CoversEveryIndexExactlyOnce(t *testing.T) {
	p := pool.New(3)
	defer p.Close()

	const n = 97
	seen := make([]int32, n)
	err := p.MapChunk(n, 10, func(lo, hi, _ int) error {
		require.Less(t, lo, hi)
		require.LessOrEqual(t, hi-lo, 10)
		for i := lo; i < hi; i++ {
			atomic.AddInt32(&seen[i], 1)
		}
		return nil
	})
	require.NoError(t, err)
	for i, c := range seen {
		require.Equalf(t, int32(1), c, "index %d covered %d times", i, c)
	}
}

func TestMapChunk_SinSumMatchesSequential(t *testing.T) {
	const n = 1024

	var want float64
	for j := 0; j < n; j++ {
		want += math.Sin(float64(j))
	}

	for _, workers := range []int{1, 4, 8} {
		p := pool.New(workers)

		partial := make([]float64, p.Size())
		err := p.MapChunk(n, 7, func(lo, hi, worker int) error {
			var s float64
			for j := lo; j < hi; j++ {
				s += math.Sin(float64(j))
			}
			partial[worker] += s
			return nil
		})
		require.NoError(t, err)

		var got float64
		for _, s := range partial {
			got += s
		}
		require.InDelta(t, want, got, 1e-12)
		p.Close()
	}
}

func TestMapChunk_RejectsBadChunkSize(t *testing.T) {
	p := pool.New(1)
	defer p.Close()
	require.ErrorIs(t, p.MapChunk(10, 0, func(int, int, int) error { return nil }), pool.ErrBadChunkSize)
}

func TestPool_SizeSaturatesToHardwareConcurrency(t *testing.T) {
	p := pool.New(runtime.GOMAXPROCS(0) + 5)
	defer p.Close()
	require.Equal(t, runtime.GOMAXPROCS(0), p.Size())
}

func TestPool_EnqueueAfterCloseFails(t *testing.T) {
	p := pool.New(1)
	p.Close()
	_, err := p.Enqueue(func() (interface{}, error) { return nil, nil })
	require.ErrorIs(t, err, pool.ErrPoolClosed)
}

func TestSection_FirstErrorWins(t *testing.T) {
	sentinel := errors.New("boom")
	sec := pool.NewSection(context.Background())
	sec.Go(func(ctx context.Context) error { return sentinel })
	sec.Go(func(ctx context.Context) error { return nil })
	require.ErrorIs(t, sec.Block(true), sentinel)
}

func TestSection_PanicSurfacesAsError(t *testing.T) {
	sec := pool.NewSection(context.Background())
	sec.Go(func(ctx context.Context) error { panic("kaboom") })
	err := sec.Block(true)
	require.Error(t, err)
	require.Contains(t, err.Error(), "kaboom")
}

func TestSection_BlockWithoutRaiseSwallowsError(t *testing.T) {
	sec := pool.NewSection(context.Background())
	sec.Go(func(ctx context.Context) error { return errors.New("boom") })
	require.NoError(t, sec.Block(false))
}
