package tensor_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/nanogo/tensor"
	"github.com/stretchr/testify/require"
)

func TestNew_ZeroInitialized(t *testing.T) {
	m, err := tensor.New[float64](tensor.Dims{2, 3})
	require.NoError(t, err)
	require.Equal(t, 6, m.Size())
	for _, v := range m.Raw() {
		require.Zero(t, v)
	}
}

func TestNew_RejectsBadDims(t *testing.T) {
	_, err := tensor.New[float64](tensor.Dims{2, 0})
	require.Error(t, err)
}

func TestSetAt_RoundTrip(t *testing.T) {
	m, err := tensor.New[float64](tensor.Dims{2, 2})
	require.NoError(t, err)
	require.NoError(t, m.Set(4.0, 1, 1))
	v, err := m.At(1, 1)
	require.NoError(t, err)
	require.Equal(t, 4.0, v)
	_, err = m.At(5, 0)
	require.Error(t, err)
}

func TestConstView_RejectsSet(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	v, err := tensor.NewConstView(data, tensor.Dims{4})
	require.NoError(t, err)
	err = v.Set(9, 0)
	require.ErrorIs(t, err, tensor.ErrWriteConstView)
}

func TestMutView_SharesBackingArray(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	v, err := tensor.NewMutView(data, tensor.Dims{4})
	require.NoError(t, err)
	require.NoError(t, v.Set(99, 2))
	require.Equal(t, 99.0, data[2])
}

func TestResize_OnlyOwning(t *testing.T) {
	data := []float64{1, 2}
	v, _ := tensor.NewMutView(data, tensor.Dims{2})
	require.ErrorIs(t, v.Resize(tensor.Dims{3}), tensor.ErrResizeView)

	o, _ := tensor.New[float64](tensor.Dims{2})
	require.NoError(t, o.Resize(tensor.Dims{5}))
	require.Equal(t, 5, o.Size())
}

func TestAssignFrom_OwningResizesAndCopies(t *testing.T) {
	dst, _ := tensor.New[float64](tensor.Dims{2})
	src, _ := tensor.New[float64](tensor.Dims{3})
	_ = src.FillWith(7)
	require.NoError(t, dst.AssignFrom(src))
	require.Equal(t, 3, dst.Size())
	for _, v := range dst.Raw() {
		require.Equal(t, 7.0, v)
	}
}

func TestAssignFrom_MutViewRequiresEqualSize(t *testing.T) {
	buf := make([]float64, 2)
	dst, _ := tensor.NewMutView(buf, tensor.Dims{2})
	src, _ := tensor.New[float64](tensor.Dims{3})
	require.ErrorIs(t, dst.AssignFrom(src), tensor.ErrSizeMismatch)
}

func TestAssignFrom_SelfIsNoop(t *testing.T) {
	buf := make([]float64, 2)
	v, _ := tensor.NewMutView(buf, tensor.Dims{2})
	require.NoError(t, v.AssignFrom(v))
}

func TestAssignFrom_ConstViewRebindsOnlyFromConstView(t *testing.T) {
	a := []float64{1, 2}
	b := []float64{3, 4, 5}
	dst, _ := tensor.NewConstView(a, tensor.Dims{2})
	src, _ := tensor.NewConstView(b, tensor.Dims{3})
	require.NoError(t, dst.AssignFrom(src))
	require.Equal(t, 3, dst.Size())

	owning, _ := tensor.New[float64](tensor.Dims{2})
	require.ErrorIs(t, dst.AssignFrom(owning), tensor.ErrWriteConstView)
}

func TestIndex_ProducesLowerRankView(t *testing.T) {
	m, _ := tensor.New[float64](tensor.Dims{2, 3})
	_ = m.Set(1, 0, 0)
	_ = m.Set(2, 0, 1)
	_ = m.Set(3, 0, 2)
	row, err := m.Index(0)
	require.NoError(t, err)
	require.Equal(t, tensor.Dims{3}, row.Dims())
	require.Equal(t, []float64{1, 2, 3}, row.Raw())

	// Mutating through the view mutates the owner.
	require.NoError(t, row.Set(99, 0))
	v, _ := m.At(0, 0)
	require.Equal(t, 99.0, v)
}

func TestSlice_ContiguousSubrange(t *testing.T) {
	m, _ := tensor.New[float64](tensor.Dims{4})
	for i := 0; i < 4; i++ {
		_ = m.Set(float64(i), i)
	}
	s, err := m.Slice(1, 3)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2}, s.Raw())
}

func TestExpr_AddSubScale(t *testing.T) {
	a, _ := tensor.VectorFrom([]float64{1, 2, 3})
	b, _ := tensor.VectorFrom([]float64{10, 20, 30})
	sum, err := tensor.Eval(tensor.Add(a, b))
	require.NoError(t, err)
	require.Equal(t, []float64{11, 22, 33}, sum.Raw())

	diff, err := tensor.Eval(tensor.Sub(b, a))
	require.NoError(t, err)
	require.Equal(t, []float64{9, 18, 27}, diff.Raw())

	scaled, err := tensor.Eval(tensor.Scale(a, 2))
	require.NoError(t, err)
	require.Equal(t, []float64{2, 4, 6}, scaled.Raw())
}

func TestExpr_ShapeMismatch(t *testing.T) {
	a, _ := tensor.VectorFrom([]float64{1, 2})
	b, _ := tensor.VectorFrom([]float64{1, 2, 3})
	_, err := tensor.Eval(tensor.Add(a, b))
	require.ErrorIs(t, err, tensor.ErrShapeMismatch)
}

func TestClose_ReflexiveOnFiniteTensors(t *testing.T) {
	a, _ := tensor.VectorFrom([]float64{1, 2, 3})
	require.True(t, tensor.Close(a, a, 1e-12))
}

func TestClose_MismatchedFiniteness(t *testing.T) {
	a, _ := tensor.VectorFrom([]float64{1, 2})
	b, _ := tensor.VectorFrom([]float64{1, math.Inf(1)})
	require.False(t, tensor.Close(a, b, 1e9))
}

func TestScaleRoundTrip(t *testing.T) {
	a, _ := tensor.VectorFrom([]float64{3, -4, 5})
	scaled, _ := tensor.Eval(tensor.Scale(a, 2))
	back, _ := tensor.Eval(tensor.Scale(scaled, 0.5))
	require.True(t, tensor.Close(a, back, 1e-12))
}

func TestDotAndNorms(t *testing.T) {
	a, _ := tensor.VectorFrom([]float64{3, 4})
	require.Equal(t, 5.0, tensor.Norm2(a))
	require.Equal(t, 4.0, tensor.NormInf(a))
	dot, err := tensor.Dot(a, a)
	require.NoError(t, err)
	require.Equal(t, 25.0, dot)
}

func TestGemv(t *testing.T) {
	a, _ := tensor.New[float64](tensor.Dims{2, 2})
	_ = a.Set(1, 0, 0)
	_ = a.Set(2, 0, 1)
	_ = a.Set(3, 1, 0)
	_ = a.Set(4, 1, 1)
	x, _ := tensor.VectorFrom([]float64{1, 1})
	y, _ := tensor.NewVector(2)
	require.NoError(t, tensor.Gemv(y, 1, a, x, 0))
	require.Equal(t, []float64{3, 7}, y.Raw())
}
