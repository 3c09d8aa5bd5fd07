package packing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorpxam/einops-go/pkg/einops/errs"
)

func TestParseSplitsAroundStar(t *testing.T) {
	p, err := Parse("a b * c")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, p.Before)
	assert.Equal(t, []string{"c"}, p.After)
	assert.Equal(t, 2, p.NBefore())
	assert.Equal(t, 1, p.NAfter())
}

func TestParseRejectsMissingStar(t *testing.T) {
	_, err := Parse("a b c")
	require.Error(t, err)
}

func TestParseRejectsDuplicateStar(t *testing.T) {
	_, err := Parse("a * b *")
	require.Error(t, err)
}

func TestParseRejectsDuplicateAxisName(t *testing.T) {
	_, err := Parse("a a *")
	require.Error(t, err)
}

func TestPlanPackCollapsesMiddleAxes(t *testing.T) {
	p, err := Parse("* c")
	require.NoError(t, err)

	planned, err := PlanPack(p, []int{2, 3, 4})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 3}, planned.PackedShape)
	assert.Equal(t, []int{-1, 4}, planned.ReshapeShape)
}

func TestPlanPackRejectsRankTooSmall(t *testing.T) {
	p, err := Parse("a * c")
	require.NoError(t, err)

	_, err = PlanPack(p, []int{2})
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.PackRankTooSmall, e.Kind)
}

func TestPlanUnpackRoundTrip(t *testing.T) {
	p, err := Parse("* c")
	require.NoError(t, err)

	planned, err := PlanPack(p, []int{2, 3, 4})
	require.NoError(t, err)

	plans, err := PlanUnpack(p, []int{6, 4}, [][]int{planned.PackedShape})
	require.NoError(t, err)

	require.Len(t, plans, 1)
	assert.Equal(t, 0, plans[0].Start)
	assert.Equal(t, 6, plans[0].End)
	assert.Equal(t, []int{2, 3, 4}, plans[0].ReshapeShape)
}

func TestPlanUnpackMultipleTensors(t *testing.T) {
	p, err := Parse("* c")
	require.NoError(t, err)

	plans, err := PlanUnpack(p, []int{10, 4}, [][]int{{2, 3}, {4}})
	require.NoError(t, err)

	require.Len(t, plans, 2)
	assert.Equal(t, 0, plans[0].Start)
	assert.Equal(t, 6, plans[0].End)
	assert.Equal(t, 6, plans[1].Start)
	assert.Equal(t, 10, plans[1].End)
}

func TestPlanUnpackRejectsShapeMismatch(t *testing.T) {
	p, err := Parse("* c")
	require.NoError(t, err)

	_, err = PlanUnpack(p, []int{6}, [][]int{{2, 3}})
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.UnpackShapeMismatch, e.Kind)
}
