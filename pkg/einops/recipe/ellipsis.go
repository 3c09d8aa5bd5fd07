package recipe

import (
	"fmt"

	"github.com/dorpxam/einops-go/pkg/einops/axisname"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/expr"
)

// expandEllipsis implements step C: splicing the ellipsis (if present) into
// synthesized per-dimension axis names on both sides, and enforcing the rank
// checks that only make sense once ndim is known. Grounded on the ellipsis
// handling block of _prepare_transformation_recipe in include/einops.hpp.
func expandEllipsis(left, right *expr.Parsed, ndim int) (
	leftComposition, rightComposition []expr.Element,
	leftIdent, rightIdent map[any]axisname.Name,
	err error,
) {
	if !left.HasEllipsis {
		if ndim != len(left.Composition) {
			return nil, nil, nil, nil, errs.New(
				errs.RankMismatch,
				"wrong shape: expected %d dims, got %d",
				len(left.Composition), ndim,
			)
		}

		return left.Composition, right.Composition, copyIdentifiers(left.Identifiers), copyIdentifiers(right.Identifiers), nil
	}

	otherDims := len(left.Composition) - 1
	ellipsisNdim := ndim - otherDims

	if ellipsisNdim < 0 {
		return nil, nil, nil, nil, errs.New(
			errs.RankTooSmall,
			"wrong shape: expected >= %d dims, got %d", otherDims, ndim,
		)
	}

	synthesized := make([]axisname.Name, ellipsisNdim)
	for i := range synthesized {
		synthesized[i] = axisname.Named(fmt.Sprintf("%s%d", axisname.Ellipsis, i))
	}

	leftIdent = copyIdentifiers(left.Identifiers)
	delete(leftIdent, axisname.Named(axisname.Ellipsis).Key())

	for _, n := range synthesized {
		leftIdent[n.Key()] = n
	}

	leftComposition = spliceEllipsisElements(left.Composition, synthesized)

	rightIdent = copyIdentifiers(right.Identifiers)

	if right.HasEllipsis {
		delete(rightIdent, axisname.Named(axisname.Ellipsis).Key())

		for _, n := range synthesized {
			rightIdent[n.Key()] = n
		}

		rightComposition = spliceEllipsisGroups(right.Composition, synthesized)
	} else {
		rightComposition = right.Composition
	}

	return leftComposition, rightComposition, leftIdent, rightIdent, nil
}

func copyIdentifiers(m map[any]axisname.Name) map[any]axisname.Name {
	out := make(map[any]axisname.Name, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// spliceEllipsisElements replaces the single bare-ellipsis Element in
// composition (present only at the top level on the left, since a
// parenthesized ellipsis there is rejected earlier) with one Element per
// synthesized axis.
func spliceEllipsisElements(composition []expr.Element, synthesized []axisname.Name) []expr.Element {
	out := make([]expr.Element, 0, len(composition)+len(synthesized))

	for _, el := range composition {
		if !el.IsGroup && el.Single.IsEllipsis() {
			for _, n := range synthesized {
				out = append(out, expr.Element{Single: n})
			}

			continue
		}

		out = append(out, el)
	}

	return out
}

// spliceEllipsisGroups does the same splice but also looks inside groups,
// since the right side may legally parenthesize the ellipsis.
func spliceEllipsisGroups(composition []expr.Element, synthesized []axisname.Name) []expr.Element {
	out := make([]expr.Element, 0, len(composition)+len(synthesized))

	for _, el := range composition {
		if !el.IsGroup {
			if el.Single.IsEllipsis() {
				for _, n := range synthesized {
					out = append(out, expr.Element{Single: n})
				}
			} else {
				out = append(out, el)
			}

			continue
		}

		group := make([]axisname.Name, 0, len(el.Group)+len(synthesized))

		for _, n := range el.Group {
			if n.IsEllipsis() {
				group = append(group, synthesized...)
			} else {
				group = append(group, n)
			}
		}

		out = append(out, expr.Element{IsGroup: true, Group: group})
	}

	return out
}
