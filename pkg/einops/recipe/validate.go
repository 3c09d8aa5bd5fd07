package recipe

import (
	"strings"

	"github.com/dorpxam/einops-go/pkg/einops/axisname"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/expr"
)

// validateOperation implements step B: operation-specific identifier
// balance checks, grounded on the three branches of
// _prepare_transformation_recipe's "if (operation == Rearrange) ... else if
// (operation == Repeat) ... else" in include/einops.hpp.
func validateOperation(op Operation, left, right *expr.Parsed, axesLengths []AxisLength) error {
	switch {
	case op == Rearrange:
		if left.HasNonUnitaryAnonymousAxes || right.HasNonUnitaryAnonymousAxes {
			return errs.New(errs.AnonymousInRearrange, "non-unit anonymous axes are not allowed in rearrange, use repeat")
		}

		if diff := setDifference(right.Identifiers, left.Identifiers); len(diff) > 0 {
			return errs.New(errs.UnbalancedIdentifiers, "identifiers only on the right side of rearrange: %s", formatNames(diff))
		}

		if diff := setDifference(left.Identifiers, right.Identifiers); len(diff) > 0 {
			return errs.New(errs.UnbalancedIdentifiers, "identifiers only on the left side of rearrange: %s", formatNames(diff))
		}
	case op == Repeat:
		if diff := setDifference(left.Identifiers, right.Identifiers); len(diff) > 0 {
			return errs.New(errs.UnexpectedOnLeftOfRepeat, "unexpected identifiers on the left side of repeat: %s", formatNames(diff))
		}

		rightOnly := setDifference(right.Identifiers, left.Identifiers)
		if missing := filterMissingLengths(rightOnly, axesLengths); len(missing) > 0 {
			return errs.New(errs.MissingLengthForNewAxis, "specify sizes for new axes in repeat: %s", formatNames(missing))
		}
	default:
		if diff := setDifference(right.Identifiers, left.Identifiers); len(diff) > 0 {
			return errs.New(errs.UnexpectedOnRightOfReduce, "unexpected identifiers on the right side of reduce: %s", formatNames(diff))
		}
	}

	return nil
}

// setDifference returns the Names present in a but absent from b, in map
// iteration order, which is not deterministic (the result is only used for
// error messages).
func setDifference(a, b map[any]axisname.Name) []axisname.Name {
	var out []axisname.Name

	for key, name := range a {
		if _, ok := b[key]; !ok {
			out = append(out, name)
		}
	}

	return out
}

func filterMissingLengths(names []axisname.Name, axesLengths []AxisLength) []axisname.Name {
	provided := make(map[string]bool, len(axesLengths))
	for _, al := range axesLengths {
		provided[al.Name] = true
	}

	var missing []axisname.Name

	for _, n := range names {
		if n.IsAnonymous() {
			continue
		}

		if !provided[n.Ident()] {
			missing = append(missing, n)
		}
	}

	return missing
}

func formatNames(names []axisname.Name) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmtName(n)
	}

	return strings.Join(parts, ", ")
}
