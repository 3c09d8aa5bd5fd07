package einsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorpxam/einops-go/pkg/einops/errs"
)

func TestCompactifyMatrixMultiply(t *testing.T) {
	out, err := Compactify("batch seq, seq hidden -> batch hidden")
	require.NoError(t, err)
	assert.Equal(t, "ab,bc->ac", out)
}

func TestCompactifyReusesLettersForRepeatedAxes(t *testing.T) {
	out, err := Compactify("a b, b a -> a b")
	require.NoError(t, err)
	assert.Equal(t, "ab,ba->ab", out)
}

func TestCompactifyPreservesEllipsis(t *testing.T) {
	out, err := Compactify("... i j, ... j k -> ... i k")
	require.NoError(t, err)
	assert.Equal(t, "...ab,...bc->...ac", out)
}

func TestCompactifyRejectsMissingArrow(t *testing.T) {
	_, err := Compactify("a b, b c")
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.EinsumMissingArrow, e.Kind)
}

func TestCompactifyRejectsGroupedAxes(t *testing.T) {
	_, err := Compactify("(a b) c -> a b c")
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.EinsumShapeRearrangement, e.Kind)
}

func TestCompactifyRejectsUnknownAxisOnRight(t *testing.T) {
	_, err := Compactify("a b -> a c")
	require.Error(t, err)

	e, ok := err.(*errs.Error)
	require.True(t, ok)
	assert.Equal(t, errs.EinsumUnknownRightAxis, e.Kind)
}

func TestCompactifyAllowsSingletonGroup(t *testing.T) {
	out, err := Compactify("(a) b -> a b")
	require.NoError(t, err)
	assert.Equal(t, "ab->ab", out)
}
