package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorpxam/einops-go/numeric"
	"github.com/dorpxam/einops-go/tensor"
)

func newTestBackend() *Backend[float64] {
	return New[float64](numeric.Float64Ops{}, true)
}

func TestReshapeReinterpretsRowMajorData(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out, err := bk.Reshape(in, []int{3, 2})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, out.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, out.Data())
}

func TestPermuteTransposesMatrix(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out, err := bk.Permute(in, []int{1, 0})
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, out.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestReduceSum(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out, err := bk.Reduce(in, Sum, []int{0})
	require.NoError(t, err)

	assert.Equal(t, []int{3}, out.Shape())
	assert.Equal(t, []float64{5, 7, 9}, out.Data())
}

func TestReduceMean(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 5})
	require.NoError(t, err)

	out, err := bk.Reduce(in, Mean, []int{0})
	require.NoError(t, err)

	assert.Equal(t, []float64{2, 3.5}, out.Data())
}

func TestReduceMinMax(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{3}, []float64{4, 1, 7})
	require.NoError(t, err)

	minOut, err := bk.Reduce(in, Min, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, minOut.Data())

	maxOut, err := bk.Reduce(in, Max, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, maxOut.Data())
}

func TestReduceAnyAll(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 2}, []float64{0, 1, 0, 0})
	require.NoError(t, err)

	anyOut, err := bk.Reduce(in, Any, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, anyOut.Data())

	allOut, err := bk.Reduce(in, All, []int{0})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, allOut.Data())
}

func TestReduceMeanRejectsNonFloat(t *testing.T) {
	bk := New[float64](numeric.Float64Ops{}, false)

	in, err := tensor.New([]int{2}, []float64{1, 2})
	require.NoError(t, err)

	_, err = bk.Reduce(in, Mean, []int{0})
	require.Error(t, err)
}

func TestExpandWithAxesInsertsNewAxis(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2}, []float64{1, 2})
	require.NoError(t, err)

	out, err := bk.ExpandWithAxes(in, 2, map[int]int{1: 3})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, out.Shape())
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, out.Data())
}

func TestConcatAlongAxis(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	b, err := tensor.New([]int{2, 1}, []float64{5, 6})
	require.NoError(t, err)

	out, err := bk.Concat([]*tensor.TensorNumeric[float64]{a, b}, 1)
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, out.Shape())
	assert.Equal(t, []float64{1, 2, 5, 3, 4, 6}, out.Data())
}

func TestStackAddsLeadingAxis(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2}, []float64{1, 2})
	require.NoError(t, err)

	b, err := tensor.New([]int{2}, []float64{3, 4})
	require.NoError(t, err)

	out, err := bk.Stack([]*tensor.TensorNumeric[float64]{a, b})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, out.Shape())
	assert.Equal(t, []float64{1, 2, 3, 4}, out.Data())
}

func TestArange(t *testing.T) {
	bk := newTestBackend()

	out, err := bk.Arange(4)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 1, 2, 3}, out.Data())
}

func TestEinsumMatrixMultiply(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	b, err := tensor.New([]int{2, 2}, []float64{5, 6, 7, 8})
	require.NoError(t, err)

	out, err := bk.Einsum("ab,bc->ac", []*tensor.TensorNumeric[float64]{a, b})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, out.Shape())
	assert.Equal(t, []float64{19, 22, 43, 50}, out.Data())
}

func TestEinsumTraceSumsDiagonal(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	out, err := bk.Einsum("aa->", []*tensor.TensorNumeric[float64]{a})
	require.NoError(t, err)

	assert.Equal(t, []float64{5}, out.Data())
}
