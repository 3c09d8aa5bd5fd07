// Package packing implements the pack/unpack planner (C4): joining several
// tensors' trailing-or-leading axes into one along a single designated `*`
// token, and splitting them back apart given the recorded per-tensor shapes.
//
// Grounded on include/packing.hpp's analyze_pattern/pack/unpack trio
// (original_source), translated from the reference's std::vector<int64_t>
// bookkeeping into the same shape/backend-call split used by package recipe.
package packing

import (
	"strings"

	"github.com/dorpxam/einops-go/pkg/einops/errs"
)

// Pattern is the parsed "a b * c" token pattern shared by Pack and Unpack:
// whitespace-separated axis names with exactly one `*`.
type Pattern struct {
	Before []string
	After  []string
}

// Parse analyzes a pack/unpack pattern: exactly one `*` token among
// otherwise-distinct axis names. Grounded on analyze_pattern in
// include/packing.hpp.
func Parse(pattern string) (*Pattern, error) {
	tokens := strings.Fields(pattern)

	starIdx := -1
	seen := make(map[string]bool, len(tokens))

	for i, tok := range tokens {
		if tok == "*" {
			if starIdx != -1 {
				return nil, errs.New(errs.BadIdentifier, "pack/unpack pattern must contain exactly one '*', got a second at position %d", i).WithPattern(pattern)
			}

			starIdx = i

			continue
		}

		if seen[tok] {
			return nil, errs.New(errs.DuplicateIdentifier, "duplicate axis name %q in pack/unpack pattern", tok).WithPattern(pattern)
		}

		seen[tok] = true
	}

	if starIdx == -1 {
		return nil, errs.New(errs.BadIdentifier, "pack/unpack pattern must contain exactly one '*'").WithPattern(pattern)
	}

	return &Pattern{
		Before: append([]string(nil), tokens[:starIdx]...),
		After:  append([]string(nil), tokens[starIdx+1:]...),
	}, nil
}

// NBefore and NAfter are the token counts flanking the `*`.
func (p *Pattern) NBefore() int { return len(p.Before) }
func (p *Pattern) NAfter() int  { return len(p.After) }

// PlannedPack is one input tensor's contribution to a pack call: the shape
// of the block it is collapsing (recorded for the matching Unpack) and the
// shape to reshape that tensor to before concatenation.
type PlannedPack struct {
	PackedShape  []int
	ReshapeShape []int
}

// PlanPack implements C4's Pack half for one input tensor shape. Concat of
// every PlannedPack's reshaped tensor along axis NBefore() is the caller's
// responsibility (it owns the backend).
func PlanPack(p *Pattern, shape []int) (*PlannedPack, error) {
	nBefore, nAfter := p.NBefore(), p.NAfter()

	if len(shape) < nBefore+nAfter {
		return nil, errs.New(
			errs.PackRankTooSmall,
			"tensor of rank %d is too small for pack pattern needing >= %d dims", len(shape), nBefore+nAfter,
		).WithShape(shape)
	}

	packedShape := append([]int(nil), shape[nBefore:len(shape)-nAfter]...)

	reshape := make([]int, 0, nBefore+1+nAfter)
	reshape = append(reshape, shape[:nBefore]...)
	reshape = append(reshape, -1)
	reshape = append(reshape, shape[len(shape)-nAfter:]...)

	return &PlannedPack{PackedShape: packedShape, ReshapeShape: reshape}, nil
}

// PlannedUnpack is one output tensor's split range and target reshape for
// an unpack call.
type PlannedUnpack struct {
	Start        int
	End          int
	ReshapeShape []int
}

// PlanUnpack implements C4's Unpack half: given the packed tensor's shape
// and the packed_shapes recorded by the matching Pack calls, compute the
// split boundaries along axis NBefore() and each output's target shape.
// Grounded on include/packing.hpp's unpack.
func PlanUnpack(p *Pattern, inputShape []int, packedShapes [][]int) ([]PlannedUnpack, error) {
	nBefore, nAfter := p.NBefore(), p.NAfter()

	if len(inputShape) != nBefore+1+nAfter {
		return nil, errs.New(
			errs.UnpackShapeMismatch,
			"packed tensor has rank %d, expected %d for unpack pattern", len(inputShape), nBefore+1+nAfter,
		).WithShape(inputShape)
	}

	lens := make([]int, len(packedShapes))
	unknownIdx := -1

	for i, shape := range packedShapes {
		known := 1
		hasUnknown := false

		for _, dim := range shape {
			if dim < 0 {
				if hasUnknown {
					return nil, errs.New(errs.MultipleUnknowns, "packed shape %d contains more than one unknown dimension", i)
				}

				hasUnknown = true

				continue
			}

			known *= dim
		}

		if hasUnknown {
			if unknownIdx != -1 {
				return nil, errs.New(errs.MultipleUnknowns, "more than one packed shape has an unknown dimension")
			}

			unknownIdx = i
			lens[i] = -known
		} else {
			lens[i] = known
		}
	}

	axisSize := inputShape[nBefore]

	if unknownIdx != -1 {
		sumKnown := 0

		for i, l := range lens {
			if i == unknownIdx {
				continue
			}

			sumKnown += l
		}

		inferred := axisSize - sumKnown
		if inferred < 0 || (-lens[unknownIdx]) == 0 || inferred%(-lens[unknownIdx]) != 0 {
			return nil, errs.New(errs.UnpackMismatch, "could not infer unknown packed dimension: axis size %d, known total %d", axisSize, sumKnown)
		}

		lens[unknownIdx] = inferred
	}

	total := 0
	for _, l := range lens {
		total += l
	}

	if total != axisSize {
		return nil, errs.New(errs.UnpackMismatch, "packed shapes sum to %d, packed axis has size %d", total, axisSize)
	}

	out := make([]PlannedUnpack, len(packedShapes))
	pos := 0

	for i, shape := range packedShapes {
		start := pos
		end := pos + lens[i]
		pos = end

		reshape := make([]int, 0, nBefore+len(shape)+nAfter)
		reshape = append(reshape, inputShape[:nBefore]...)
		reshape = append(reshape, shape...)
		reshape = append(reshape, inputShape[nBefore+1:]...)

		out[i] = PlannedUnpack{Start: start, End: end, ReshapeShape: reshape}
	}

	return out, nil
}
