package recipe

import "github.com/dorpxam/einops-go/pkg/einops/errs"

// PrepareForAllDims precomputes a TransformRecipe for every rank an
// ellipsis in pattern could plausibly expand to, from ndim 0 up to and
// including maxEllipsisDims extra dimensions beyond the pattern's named
// axes. Mirrors the reference's _prepare_recipes_for_all_dims, used by
// call sites that don't know the input rank ahead of time (describe-style
// tooling, not the Rearrange/Reduce/Repeat hot path, which always knows
// ndim from the tensor it's given).
//
// Ranks the pattern rejects outright (too few dimensions for its named
// axes, or a pattern with no ellipsis that can only match one rank) are
// omitted from the result rather than returned as errors, since "not
// every rank is plausible" is the expected case here, not a failure.
func PrepareForAllDims(pattern string, operation Operation, axesLengths []AxisLength, maxEllipsisDims int) (map[int]*TransformRecipe, error) {
	leftStr, _, err := splitArrow(pattern)
	if err != nil {
		return nil, err
	}

	namedAxisCount := countNamedAxes(leftStr)

	if maxEllipsisDims < 0 {
		maxEllipsisDims = 0
	}

	out := make(map[int]*TransformRecipe)

	for extra := 0; extra <= maxEllipsisDims; extra++ {
		ndim := namedAxisCount + extra

		rec, err := Prepare(pattern, operation, axesLengths, ndim)
		if err != nil {
			continue
		}

		out[ndim] = rec
	}

	if len(out) == 0 {
		return nil, errs.New(errs.RankTooSmall, "no rank between %d and %d named axes satisfies pattern %q", namedAxisCount, namedAxisCount+maxEllipsisDims, pattern).WithPattern(pattern)
	}

	return out, nil
}

// countNamedAxes counts the elementary axis slots the left side names
// literally, ignoring groups' internal structure (each group member still
// counts once) and the ellipsis token itself, which contributes zero or
// more dimensions depending on ndim.
func countNamedAxes(leftStr string) int {
	depth := 0
	count := 0
	sawAxis := false

	flush := func() {
		if sawAxis {
			count++
			sawAxis = false
		}
	}

	for _, r := range leftStr {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case r == ' ' || r == '\t':
			flush()
		case r == '.':
			flush()
		default:
			sawAxis = true
		}
	}

	flush()

	return count
}
