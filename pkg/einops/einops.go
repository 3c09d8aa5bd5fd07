// Package einops implements the public surface of the tensor-rearrangement
// language: rearrange, repeat, reduce, einsum, parse_shape, pack and unpack,
// each driving the recipe planner (C2), shape specializer (C3), pack/unpack
// planner (C4) or einsum compactifier (C5) and then executing the result
// against a pluggable backend.Backend.
//
// Grounded on include/einops.hpp's public entry points (rearrange, repeat,
// reduce, einsum, axis) in original_source, reimplemented as free functions
// generic over the element type rather than methods on a class instance,
// matching how the teacher's own compute.Engine[T] is consumed (a value
// passed to each call rather than held in global state).
package einops

import (
	"fmt"
	"strings"

	"github.com/dorpxam/einops-go/pkg/einops/backend"
	"github.com/dorpxam/einops-go/pkg/einops/einsum"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/packing"
	"github.com/dorpxam/einops-go/pkg/einops/recipe"
	"github.com/dorpxam/einops-go/tensor"
)

// AxisLength is a "name = length" binding supplied by the caller, e.g. for
// splitting an axis whose size isn't determined by the rest of the pattern.
type AxisLength = recipe.AxisLength

// Axis builds an AxisLength binding; a small ergonomic helper matching the
// reference implementation's axis(key, value) (include/einops.hpp).
func Axis(name string, length int) AxisLength {
	return AxisLength{Name: name, Length: length}
}

// Rearrange reshapes/transposes t according to pattern, with no reduction.
// Both sides must name the same axes, so axesLengths only sizes axes that
// the pattern splits; new axes need Repeat.
func Rearrange[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], pattern string, axesLengths ...AxisLength) (*tensor.TensorNumeric[T], error) {
	return apply(bk, t, pattern, recipe.Rearrange, axesLengths)
}

// Repeat broadcasts t according to pattern, introducing any axis present on
// the right but not the left (sizes for which must come from axesLengths).
func Repeat[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], pattern string, axesLengths ...AxisLength) (*tensor.TensorNumeric[T], error) {
	return apply(bk, t, pattern, recipe.Repeat, axesLengths)
}

// Reduce applies op (one of min, max, sum, mean, prod, any, all, rearrange,
// repeat) to t according to pattern.
func Reduce[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], pattern string, op recipe.Operation, axesLengths ...AxisLength) (*tensor.TensorNumeric[T], error) {
	return apply(bk, t, pattern, op, axesLengths)
}

func apply[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], pattern string, op recipe.Operation, axesLengths []AxisLength) (*tensor.TensorNumeric[T], error) {
	shape := bk.Shape(t)

	rec, err := recipe.Prepare(pattern, op, axesLengths, len(shape))
	if err != nil {
		return nil, annotate(err, pattern, op, shape)
	}

	if op == recipe.Mean && !bk.IsFloat() {
		return nil, errs.New(errs.MeanOnIntegerTensor, "mean reduction requires a floating-point tensor").
			WithPattern(pattern).WithOperation(string(op)).WithShape(shape)
	}

	cooked, err := recipe.Cook(rec, shape, axesLengths)
	if err != nil {
		return nil, annotate(err, pattern, op, shape)
	}

	out, err := execute(bk, t, rec, cooked)
	if err != nil {
		return nil, annotate(err, pattern, op, shape)
	}

	return out, nil
}

func annotate(err error, pattern string, op recipe.Operation, shape []int) error {
	if e, ok := err.(*errs.Error); ok {
		if e.Pattern == "" {
			e = e.WithPattern(pattern)
		}

		if e.Operation == "" {
			e = e.WithOperation(string(op))
		}

		if e.Shape == nil {
			e = e.WithShape(shape)
		}

		return e
	}

	return err
}

// execute runs a CookedRecipe's steps against bk, in the fixed order
// reshape -> permute -> reduce -> expand-with-added-axes -> reshape, skipping
// whichever steps the cooked recipe marked as no-ops.
func execute[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], rec *recipe.TransformRecipe, cooked *recipe.CookedRecipe) (*tensor.TensorNumeric[T], error) {
	cur := t

	if cooked.InitShape != nil {
		reshaped, err := bk.Reshape(cur, cooked.InitShape)
		if err != nil {
			return nil, err
		}

		cur = reshaped
	}

	if cooked.Permutation != nil {
		permuted, err := bk.Permute(cur, cooked.Permutation)
		if err != nil {
			return nil, err
		}

		cur = permuted
	}

	if len(cooked.ReducedAxes) > 0 {
		kind := reductionKind(rec.Operation)

		reduced, err := bk.Reduce(cur, kind, cooked.ReducedAxes)
		if err != nil {
			return nil, err
		}

		cur = reduced
	}

	if len(cooked.AddedAxesWithLengths) > 0 {
		expanded, err := bk.ExpandWithAxes(cur, cooked.NAxesAfterAdding, cooked.AddedAxesWithLengths)
		if err != nil {
			return nil, err
		}

		cur = expanded
	}

	if cooked.FinalShape != nil {
		final, err := bk.Reshape(cur, cooked.FinalShape)
		if err != nil {
			return nil, err
		}

		cur = final
	}

	return cur, nil
}

func reductionKind(op recipe.Operation) backend.Reduction {
	switch op {
	case recipe.Min:
		return backend.Min
	case recipe.Max:
		return backend.Max
	case recipe.Mean:
		return backend.Mean
	case recipe.Prod:
		return backend.Prod
	case recipe.Any:
		return backend.Any
	case recipe.All:
		return backend.All
	default:
		return backend.Sum
	}
}

// RearrangeMany stacks ts along a new leading axis and rearranges the
// result, matching the reference behavior of passing a list of tensors to a
// unary operation.
func RearrangeMany[T tensor.Numeric](bk *backend.Backend[T], ts []*tensor.TensorNumeric[T], pattern string, axesLengths ...AxisLength) (*tensor.TensorNumeric[T], error) {
	stacked, err := bk.Stack(ts)
	if err != nil {
		return nil, err
	}

	return Rearrange(bk, stacked, pattern, axesLengths...)
}

// Einsum compactifies pattern (multi-character axis names) and evaluates it
// against tensors.
func Einsum[T tensor.Numeric](bk *backend.Backend[T], pattern string, tensors ...*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("einops: einsum requires at least one tensor")
	}

	compact, err := einsum.Compactify(pattern)
	if err != nil {
		return nil, err
	}

	return bk.Einsum(compact, tensors)
}

// ParseShape binds every named axis in a one-sided pattern to the
// corresponding dimension of t's shape, e.g. ParseShape(t, "batch height
// width channels") with t of shape [8, 32, 32, 3] yields {"batch": 8,
// "height": 32, "width": 32, "channels": 3}. A "_" placeholder skips its
// dimension.
func ParseShape[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], pattern string) (map[string]int, error) {
	shape := bk.Shape(t)
	tokens := strings.Fields(pattern)

	if len(tokens) != len(shape) {
		return nil, errs.New(errs.RankMismatch, "parse_shape pattern names %d axes, tensor has rank %d", len(tokens), len(shape)).WithPattern(pattern).WithShape(shape)
	}

	out := make(map[string]int, len(tokens))

	for i, tok := range tokens {
		if tok == "_" {
			continue
		}

		out[tok] = shape[i]
	}

	return out, nil
}

// Pack collapses each tensor's block of axes named by the `*` position in
// pattern and concatenates the results along that axis.
func Pack[T tensor.Numeric](bk *backend.Backend[T], tensors []*tensor.TensorNumeric[T], pattern string) (*tensor.TensorNumeric[T], [][]int, error) {
	p, err := packing.Parse(pattern)
	if err != nil {
		return nil, nil, err
	}

	reshaped := make([]*tensor.TensorNumeric[T], len(tensors))
	packedShapes := make([][]int, len(tensors))

	for i, t := range tensors {
		planned, err := packing.PlanPack(p, bk.Shape(t))
		if err != nil {
			return nil, nil, err
		}

		r, err := bk.Reshape(t, planned.ReshapeShape)
		if err != nil {
			return nil, nil, err
		}

		reshaped[i] = r
		packedShapes[i] = planned.PackedShape
	}

	packed, err := bk.Concat(reshaped, p.NBefore())
	if err != nil {
		return nil, nil, err
	}

	return packed, packedShapes, nil
}

// Unpack splits t back into one tensor per recorded shape in packedShapes,
// the inverse of Pack.
func Unpack[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], packedShapes [][]int, pattern string) ([]*tensor.TensorNumeric[T], error) {
	p, err := packing.Parse(pattern)
	if err != nil {
		return nil, err
	}

	plans, err := packing.PlanUnpack(p, bk.Shape(t), packedShapes)
	if err != nil {
		return nil, err
	}

	out := make([]*tensor.TensorNumeric[T], len(plans))

	for i, plan := range plans {
		slice, err := sliceAxis(bk, t, p.NBefore(), plan.Start, plan.End)
		if err != nil {
			return nil, err
		}

		reshaped, err := bk.Reshape(slice, plan.ReshapeShape)
		if err != nil {
			return nil, err
		}

		out[i] = reshaped
	}

	return out, nil
}

// sliceAxis extracts t[..., start:end, ...] along axis. Unpack is the only
// caller of this: the reference backend table has no dedicated slice
// primitive, so this walks the flat row-major buffer directly the same way
// package backend does.
func sliceAxis[T tensor.Numeric](bk *backend.Backend[T], t *tensor.TensorNumeric[T], axis, start, end int) (*tensor.TensorNumeric[T], error) {
	shape := bk.Shape(t)
	if axis < 0 || axis >= len(shape) {
		return nil, fmt.Errorf("einops: slice axis %d out of range for rank %d", axis, len(shape))
	}

	outShape := append([]int(nil), shape...)
	outShape[axis] = end - start

	src := t.Data()
	outSize := 1

	for _, d := range outShape {
		outSize *= d
	}

	dst := make([]T, outSize)
	srcIdx := make([]int, len(shape))
	dstIdx := make([]int, len(outShape))

	for flat := 0; flat < outSize; flat++ {
		rem := flat

		for i := len(outShape) - 1; i >= 0; i-- {
			dstIdx[i] = rem % outShape[i]
			rem /= outShape[i]
		}

		copy(srcIdx, dstIdx)
		srcIdx[axis] += start

		srcFlat := 0
		for i, v := range srcIdx {
			srcFlat = srcFlat*shape[i] + v
		}

		dst[flat] = src[srcFlat]
	}

	return tensor.New(outShape, dst)
}
