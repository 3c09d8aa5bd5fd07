package einops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorpxam/einops-go/numeric"
	"github.com/dorpxam/einops-go/pkg/einops/backend"
	"github.com/dorpxam/einops-go/pkg/einops/recipe"
	"github.com/dorpxam/einops-go/tensor"
)

func newTestBackend() *backend.Backend[float64] {
	return backend.New[float64](numeric.Float64Ops{}, true)
}

func TestRearrangeTranspose(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out, err := Rearrange(bk, in, "h w -> w h")
	require.NoError(t, err)

	assert.Equal(t, []int{3, 2}, out.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, out.Data())
}

func TestRearrangeMergeAxes(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 3, 4}, make([]float64, 24))
	require.NoError(t, err)

	out, err := Rearrange(bk, in, "a b c -> a (b c)")
	require.NoError(t, err)

	assert.Equal(t, []int{2, 12}, out.Shape())
}

func TestReduceSumOverAxis(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	out, err := Reduce(bk, in, "h w -> w", recipe.Sum)
	require.NoError(t, err)

	assert.Equal(t, []int{3}, out.Shape())
	assert.Equal(t, []float64{5, 7, 9}, out.Data())
}

func TestRepeatBroadcastsNewAxis(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{2}, []float64{1, 2})
	require.NoError(t, err)

	out, err := Repeat(bk, in, "a -> a c", Axis("c", 3))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, out.Shape())
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, out.Data())
}

func TestMeanRejectsIntegerBackend(t *testing.T) {
	bk := backend.New[float64](numeric.Float64Ops{}, false)

	in, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	_, err = Reduce(bk, in, "a b -> a", recipe.Mean)
	require.Error(t, err)
}

func TestEinsumMatrixMultiply(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2, 2}, []float64{1, 2, 3, 4})
	require.NoError(t, err)

	b, err := tensor.New([]int{2, 2}, []float64{5, 6, 7, 8})
	require.NoError(t, err)

	out, err := Einsum(bk, "row col, col out -> row out", a, b)
	require.NoError(t, err)

	assert.Equal(t, []float64{19, 22, 43, 50}, out.Data())
}

func TestParseShapeBindsNamedAxes(t *testing.T) {
	bk := newTestBackend()

	in, err := tensor.New([]int{8, 32, 3}, make([]float64, 8*32*3))
	require.NoError(t, err)

	dims, err := ParseShape(bk, in, "batch _ channels")
	require.NoError(t, err)

	assert.Equal(t, 8, dims["batch"])
	assert.Equal(t, 3, dims["channels"])
	_, hasPlaceholder := dims["_"]
	assert.False(t, hasPlaceholder)
}

func TestPackUnpackRoundTrip(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	b, err := tensor.New([]int{3}, []float64{7, 8, 9})
	require.NoError(t, err)

	packed, shapes, err := Pack(bk, []*tensor.TensorNumeric[float64]{a, b}, "* d")
	require.NoError(t, err)

	unpacked, err := Unpack(bk, packed, shapes, "* d")
	require.NoError(t, err)

	require.Len(t, unpacked, 2)
	assert.Equal(t, a.Shape(), unpacked[0].Shape())
	assert.Equal(t, a.Data(), unpacked[0].Data())
	assert.Equal(t, b.Shape(), unpacked[1].Shape())
	assert.Equal(t, b.Data(), unpacked[1].Data())
}

func TestRearrangeMany(t *testing.T) {
	bk := newTestBackend()

	a, err := tensor.New([]int{2}, []float64{1, 2})
	require.NoError(t, err)

	b, err := tensor.New([]int{2}, []float64{3, 4})
	require.NoError(t, err)

	out, err := RearrangeMany(bk, []*tensor.TensorNumeric[float64]{a, b}, "n a -> a n")
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, out.Shape())
	assert.Equal(t, []float64{1, 3, 2, 4}, out.Data())
}
