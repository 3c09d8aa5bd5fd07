package recipe

import (
	"github.com/dorpxam/einops-go/pkg/einops/axisname"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/expr"
)

// enumerateElementaryAxes implements step D: the insertion-ordered
// enumeration of every elementary axis, left-to-right then any names that
// appear only on the right (repeat's new axes). Grounded on the
// axis_name2known_length loop in _prepare_transformation_recipe.
func enumerateElementaryAxes(leftComposition, rightComposition []expr.Element, leftIdent map[any]axisname.Name, axesLengths []AxisLength) ([]axisname.Name, map[any]int, error) {
	order := make([]axisname.Name, 0)
	knownLength := make(map[any]int)
	seen := make(map[any]bool)

	for _, axis := range flatten(leftComposition) {
		key := axis.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		order = append(order, axis)

		if axis.IsAnonymous() {
			knownLength[key] = axis.Value()
		} else {
			knownLength[key] = unknownAxisLength
		}
	}

	for _, axis := range flatten(rightComposition) {
		key := axis.Key()
		if seen[key] {
			continue
		}

		seen[key] = true
		order = append(order, axis)

		if axis.IsAnonymous() {
			knownLength[key] = axis.Value()
		} else {
			knownLength[key] = unknownAxisLength
		}
	}

	return order, knownLength, nil
}

// applyAxesLengthOverrides marks every caller-supplied "name = length"
// binding as known-at-cook-time (the _expected_axis_length sentinel),
// validating that each name is a legal identifier already present in the
// pattern.
func applyAxesLengthOverrides(knownLength map[any]int, axisPosition map[any]int, axesLengths []AxisLength) error {
	for _, al := range axesLengths {
		if !expr.IsValidAxisName(al.Name, false) {
			return errs.New(errs.BadIdentifier, "invalid axis identifier in axes_lengths: %s", al.Name)
		}

		key := axisname.Named(al.Name).Key()

		if _, ok := axisPosition[key]; !ok {
			return errs.New(errs.UnusedAxisLength, "axis %q is not used in transform pattern", al.Name)
		}

		knownLength[key] = expectedAxisLength
	}

	return nil
}

// buildInputComposition implements step E: partitioning each input
// dimension's elementary axes into known and unknown (at most one unknown
// per dimension, inferred later from the runtime shape).
func buildInputComposition(leftComposition []expr.Element, knownLength map[any]int, axisPosition map[any]int) ([]inputAxisComposition, error) {
	out := make([]inputAxisComposition, len(leftComposition))

	for i, el := range leftComposition {
		var comp inputAxisComposition

		for _, key := range elementKeys(el) {
			pos := axisPosition[key]
			if knownLength[key] == unknownAxisLength {
				comp.Unknown = append(comp.Unknown, pos)
			} else {
				comp.Known = append(comp.Known, pos)
			}
		}

		if len(comp.Unknown) > 1 {
			return nil, errs.New(errs.Underdetermined, "could not infer sizes for more than one unknown axis in a single input dimension")
		}

		out[i] = comp
	}

	return out, nil
}

// buildPermutation implements step F: kept-axes-in-right-order followed by
// reduced-axes-in-left-order, and the boundary between them.
func buildPermutation(leftComposition, rightComposition []expr.Element, leftIdent, rightIdent map[any]axisname.Name, axisPosition map[any]int) ([]int, int) {
	orderedLeft := flatten(leftComposition)
	orderedRight := flatten(rightComposition)

	leftFlatPosition := make(map[any]int, len(orderedLeft))
	for i, axis := range orderedLeft {
		leftFlatPosition[axis.Key()] = i
	}

	var reduced []axisname.Name

	for _, axis := range orderedLeft {
		if _, ok := rightIdent[axis.Key()]; !ok {
			reduced = append(reduced, axis)
		}
	}

	var kept []axisname.Name

	for _, axis := range orderedRight {
		if _, ok := leftIdent[axis.Key()]; ok {
			kept = append(kept, axis)
		}
	}

	orderAfterTransposition := append(kept, reduced...)

	axesPermutation := make([]int, len(orderAfterTransposition))
	for i, axis := range orderAfterTransposition {
		axesPermutation[i] = leftFlatPosition[axis.Key()]
	}

	firstReducedAxis := len(orderAfterTransposition) - len(reduced)

	return axesPermutation, firstReducedAxis
}

// buildOutputGrouping implements step G: for each output dimension, the
// ordered list of elementary-axis positions it groups together.
func buildOutputGrouping(rightComposition []expr.Element, axisPosition map[any]int) [][]int {
	out := make([][]int, len(rightComposition))

	for i, el := range rightComposition {
		keys := elementKeys(el)
		positions := make([]int, len(keys))

		for j, key := range keys {
			positions[j] = axisPosition[key]
		}

		out[i] = positions
	}

	return out
}

// buildAddedAxes records, for each position in the flattened (pre-grouping)
// right axis order, the elementary-axis slot of axes that do not appear on
// the left — the axes a repeat call introduces. Positions are indices into
// the flattened right-hand axis sequence, matching how the reference
// implementation's add_axes step addresses the tensor immediately before its
// final reshape (see DESIGN.md's note on the n_axes_after_adding_axes
// computation).
func buildAddedAxes(rightComposition []expr.Element, leftIdent map[any]axisname.Name, axisPosition map[any]int) map[int]int {
	added := make(map[int]int)

	for i, axis := range flatten(rightComposition) {
		if _, ok := leftIdent[axis.Key()]; !ok {
			added[i] = axisPosition[axis.Key()]
		}
	}

	return added
}
