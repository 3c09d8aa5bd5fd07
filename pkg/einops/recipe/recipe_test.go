package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorpxam/einops-go/pkg/einops/errs"
)

func TestPrepareSimpleTranspose(t *testing.T) {
	rec, err := Prepare("b c -> c b", Rearrange, nil, 2)
	require.NoError(t, err)

	cooked, err := Cook(rec, []int{3, 4}, nil)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 0}, cooked.Permutation)
	assert.Nil(t, cooked.InitShape)
	assert.Nil(t, cooked.FinalShape)
	assert.Empty(t, cooked.ReducedAxes)
}

func TestPrepareReduction(t *testing.T) {
	rec, err := Prepare("t b c -> b c", Sum, nil, 3)
	require.NoError(t, err)

	cooked, err := Cook(rec, []int{5, 3, 4}, nil)
	require.NoError(t, err)

	require.Len(t, cooked.ReducedAxes, 1)
	assert.Equal(t, 2, cooked.ReducedAxes[0])
}

func TestPrepareMergeAndSplit(t *testing.T) {
	rec, err := Prepare("(a b) c -> a b c", Rearrange, []AxisLength{{Name: "a", Length: 2}}, 2)
	require.NoError(t, err)

	cooked, err := Cook(rec, []int{6, 4}, []AxisLength{{Name: "a", Length: 2}})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3, 4}, cooked.InitShape)
}

func TestPrepareEllipsisExpansion(t *testing.T) {
	rec, err := Prepare("... c -> c ...", Rearrange, nil, 4)
	require.NoError(t, err)

	cooked, err := Cook(rec, []int{2, 3, 4, 5}, nil)
	require.NoError(t, err)

	assert.NotNil(t, cooked.Permutation)
	assert.Equal(t, 3, cooked.Permutation[0])
}

func TestPrepareRepeatNewAxis(t *testing.T) {
	rec, err := Prepare("a b -> a b c", Repeat, []AxisLength{{Name: "c", Length: 3}}, 2)
	require.NoError(t, err)

	cooked, err := Cook(rec, []int{2, 4}, []AxisLength{{Name: "c", Length: 3}})
	require.NoError(t, err)

	require.NotEmpty(t, cooked.AddedAxesWithLengths)
	assert.Equal(t, 3, cooked.AddedAxesWithLengths[2])
}

func TestPrepareRejectsUnbalancedRearrange(t *testing.T) {
	_, err := Prepare("a b -> a b c", Rearrange, nil, 2)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnbalancedIdentifiers, e.Kind)
}

func TestPrepareRejectsAnonymousInRearrange(t *testing.T) {
	_, err := Prepare("a 2 -> a", Rearrange, nil, 2)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.AnonymousInRearrange, e.Kind)
}

func TestPrepareRejectsRepeatWithAxisOnlyOnLeft(t *testing.T) {
	_, err := Prepare("a b -> a", Repeat, nil, 2)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnexpectedOnLeftOfRepeat, e.Kind)
}

func TestPrepareRejectsReduceWithAxisOnlyOnRight(t *testing.T) {
	_, err := Prepare("a b -> a b c", Sum, nil, 2)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnexpectedOnRightOfReduce, e.Kind)
}

func TestPrepareRejectsUnknownOperation(t *testing.T) {
	_, err := Prepare("a b -> b a", Operation("bogus"), nil, 2)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnknownReduction, e.Kind)
}

func TestCookRejectsRankMismatch(t *testing.T) {
	rec, err := Prepare("a b -> b a", Rearrange, nil, 2)
	require.NoError(t, err)

	_, err = Cook(rec, []int{1, 2, 3}, nil)
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.RankMismatch, e.Kind)
}

func TestCookRejectsIndivisibleSplit(t *testing.T) {
	rec, err := Prepare("(a b) c -> a b c", Rearrange, []AxisLength{{Name: "a", Length: 4}}, 2)
	require.NoError(t, err)

	_, err = Cook(rec, []int{6, 4}, []AxisLength{{Name: "a", Length: 4}})
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.ShapeMismatchDivisibility, e.Kind)
}

func TestPrepareCachesByHash(t *testing.T) {
	a, err := Prepare("a b -> b a", Rearrange, nil, 2)
	require.NoError(t, err)

	b, err := Prepare("a b -> b a", Rearrange, nil, 2)
	require.NoError(t, err)

	assert.Same(t, a, b)
}
