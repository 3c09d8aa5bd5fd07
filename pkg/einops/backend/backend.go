// Package backend adapts tensor.TensorNumeric and numeric.Arithmetic into
// the reference tensor backend the core planner consumes (the "Tensor
// backend (consumed)" table): shape, is_float, reshape, permute, reduce,
// expand_with_axes, concat, stack, einsum, arange.
//
// Grounded on tensor/tensor.go's row-major TensorNumeric[T] (Shape/Data/New)
// and numeric/arithmetic.go's type-agnostic Arithmetic[T] (Add/Mul/One/
// IsZero/GreaterThan), both from the teacher's own numeric stack; reduction
// and permutation are implemented directly against the flat row-major data
// rather than through compute.Engine, since Engine's Transpose/Sum only
// cover a subset of the seven reduction kinds and broadcasting semantics the
// planner never needs.
package backend

import (
	"fmt"

	"github.com/dorpxam/einops-go/numeric"
	"github.com/dorpxam/einops-go/tensor"
)

// Reduction is one of the seven kinds the core's reduce(t, op, axes) accepts.
type Reduction string

// The reduction kinds the backend must support.
const (
	Min  Reduction = "min"
	Max  Reduction = "max"
	Sum  Reduction = "sum"
	Mean Reduction = "mean"
	Prod Reduction = "prod"
	Any  Reduction = "any"
	All  Reduction = "all"
)

// Backend performs every primitive the planner's executor needs, generic
// over a numeric element type T.
type Backend[T tensor.Numeric] struct {
	ops     numeric.Arithmetic[T]
	isFloat bool
}

// New builds a Backend for element type T, given its Arithmetic and whether
// T is a floating format (needed only to forbid mean on integer tensors).
func New[T tensor.Numeric](ops numeric.Arithmetic[T], isFloat bool) *Backend[T] {
	return &Backend[T]{ops: ops, isFloat: isFloat}
}

// Shape returns t's current shape.
func (b *Backend[T]) Shape(t *tensor.TensorNumeric[T]) []int {
	return t.Shape()
}

// IsFloat reports whether this backend's element type is floating-point.
func (b *Backend[T]) IsFloat() bool {
	return b.isFloat
}

// Reshape returns a size-preserving reshape of t. Data is row-major in both
// the source and target shape, so this is a plain reinterpretation of the
// same flat buffer. One dimension of shape may be -1; it is inferred from
// t's size.
func (b *Backend[T]) Reshape(t *tensor.TensorNumeric[T], shape []int) (*tensor.TensorNumeric[T], error) {
	target := append([]int(nil), shape...)
	inferred, known := -1, 1
	for i, d := range target {
		if d == -1 && inferred == -1 {
			inferred = i
			continue
		}
		known *= d
	}
	if inferred != -1 && known > 0 {
		target[inferred] = t.Size() / known
	}

	return tensor.New(target, t.Data())
}

// Permute reorders t's axes according to perm (perm[i] is the source axis
// now occupying position i).
func (b *Backend[T]) Permute(t *tensor.TensorNumeric[T], perm []int) (*tensor.TensorNumeric[T], error) {
	srcShape := t.Shape()

	if len(perm) != len(srcShape) {
		return nil, fmt.Errorf("backend: permutation length %d does not match rank %d", len(perm), len(srcShape))
	}

	dstShape := make([]int, len(perm))
	for i, axis := range perm {
		dstShape[i] = srcShape[axis]
	}

	src := t.Data()
	dstStrides := rowMajorStrides(dstShape)
	dst := make([]T, len(src))

	size := product(srcShape)
	srcIdx := make([]int, len(srcShape))

	for flat := 0; flat < size; flat++ {
		unravel(flat, srcShape, srcIdx)

		dstFlat := 0
		for i, axis := range perm {
			dstFlat += srcIdx[axis] * dstStrides[i]
		}

		dst[dstFlat] = src[flat]
	}

	return tensor.New(dstShape, dst)
}

// Reduce applies op along axes (already sorted ascending by the caller),
// removing them from the output shape.
func (b *Backend[T]) Reduce(t *tensor.TensorNumeric[T], op Reduction, axes []int) (*tensor.TensorNumeric[T], error) {
	if op == Mean && !b.isFloat {
		return nil, fmt.Errorf("backend: mean reduction requires a floating-point tensor")
	}

	srcShape := t.Shape()
	reduceSet := make(map[int]bool, len(axes))

	for _, a := range axes {
		reduceSet[a] = true
	}

	dstShape := make([]int, 0, len(srcShape)-len(axes))

	for i, dim := range srcShape {
		if !reduceSet[i] {
			dstShape = append(dstShape, dim)
		}
	}

	if len(dstShape) == 0 {
		dstShape = []int{}
	}

	src := t.Data()
	dstSize := product(dstShape)

	acc := make([]T, dstSize)
	counts := make([]int, dstSize)
	initialized := make([]bool, dstSize)

	srcIdx := make([]int, len(srcShape))
	dstIdx := make([]int, 0, len(dstShape))

	for flat := 0; flat < len(src); flat++ {
		unravel(flat, srcShape, srcIdx)

		dstIdx = dstIdx[:0]
		for i, v := range srcIdx {
			if !reduceSet[i] {
				dstIdx = append(dstIdx, v)
			}
		}

		dstFlat := ravel(dstIdx, dstShape)
		v := src[flat]

		switch {
		case op == Any || op == All:
			// handled in the dedicated boolean pass below
		case !initialized[dstFlat]:
			acc[dstFlat] = v
			counts[dstFlat] = 1
			initialized[dstFlat] = true
		case op == Min:
			if b.ops.GreaterThan(acc[dstFlat], v) {
				acc[dstFlat] = v
			}
		case op == Max:
			if b.ops.GreaterThan(v, acc[dstFlat]) {
				acc[dstFlat] = v
			}
		case op == Sum || op == Mean:
			acc[dstFlat] = b.ops.Add(acc[dstFlat], v)
			counts[dstFlat]++
		case op == Prod:
			acc[dstFlat] = b.ops.Mul(acc[dstFlat], v)
		}
	}

	if op == Mean {
		for i := range acc {
			if counts[i] > 0 {
				acc[i] = b.ops.Div(acc[i], b.ops.FromFloat64(float64(counts[i])))
			}
		}
	}

	if op == Any || op == All {
		anyTrue := make([]bool, dstSize)
		allTrue := make([]bool, dstSize)

		for i := range allTrue {
			allTrue[i] = true
		}

		for flat := 0; flat < len(src); flat++ {
			unravel(flat, srcShape, srcIdx)

			dstIdx = dstIdx[:0]
			for i, v := range srcIdx {
				if !reduceSet[i] {
					dstIdx = append(dstIdx, v)
				}
			}

			dstFlat := ravel(dstIdx, dstShape)

			if b.ops.IsZero(src[flat]) {
				allTrue[dstFlat] = false
			} else {
				anyTrue[dstFlat] = true
			}
		}

		truth := anyTrue
		if op == All {
			truth = allTrue
		}

		for i := range acc {
			if truth[i] {
				acc[i] = b.ops.One()
			} else {
				acc[i] = b.ops.FromFloat64(0)
			}
		}
	}

	return tensor.New(dstShape, acc)
}

// ExpandWithAxes inserts unit axes at the positions named in posToLen
// (output-axis position -> target length), broadcasting t's existing axes
// into the remaining positions in order, to produce an nTotal-rank tensor.
func (b *Backend[T]) ExpandWithAxes(t *tensor.TensorNumeric[T], nTotal int, posToLen map[int]int) (*tensor.TensorNumeric[T], error) {
	srcShape := t.Shape()
	dstShape := make([]int, nTotal)
	fromSrc := make([]int, nTotal)

	srcAxis := 0

	for pos := 0; pos < nTotal; pos++ {
		if length, ok := posToLen[pos]; ok {
			dstShape[pos] = length
			fromSrc[pos] = -1

			continue
		}

		if srcAxis >= len(srcShape) {
			return nil, fmt.Errorf("backend: expand_with_axes ran out of source axes for target rank %d", nTotal)
		}

		dstShape[pos] = srcShape[srcAxis]
		fromSrc[pos] = srcAxis
		srcAxis++
	}

	src := t.Data()
	size := product(dstShape)
	dst := make([]T, size)
	dstIdx := make([]int, nTotal)
	srcIdx := make([]int, len(srcShape))

	for flat := 0; flat < size; flat++ {
		unravel(flat, dstShape, dstIdx)

		for pos, axis := range fromSrc {
			if axis >= 0 {
				srcIdx[axis] = dstIdx[pos]
			}
		}

		dst[flat] = src[ravel(srcIdx, srcShape)]
	}

	return tensor.New(dstShape, dst)
}

// Concat joins tensors along axis; all other dimensions must already agree.
func (b *Backend[T]) Concat(tensors []*tensor.TensorNumeric[T], axis int) (*tensor.TensorNumeric[T], error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("backend: concat requires at least one tensor")
	}

	base := tensors[0].Shape()
	total := 0

	for _, t := range tensors {
		s := t.Shape()

		if len(s) != len(base) {
			return nil, fmt.Errorf("backend: concat rank mismatch")
		}

		for i := range s {
			if i != axis && s[i] != base[i] {
				return nil, fmt.Errorf("backend: concat shape mismatch at dim %d: %d vs %d", i, s[i], base[i])
			}
		}

		total += s[axis]
	}

	dstShape := append([]int(nil), base...)
	dstShape[axis] = total

	dst := make([]T, product(dstShape))
	offset := 0

	for _, t := range tensors {
		s := t.Shape()
		src := t.Data()
		dstIdx := make([]int, len(dstShape))
		srcIdx := make([]int, len(s))

		for flat := 0; flat < len(src); flat++ {
			unravel(flat, s, srcIdx)
			copy(dstIdx, srcIdx)
			dstIdx[axis] += offset
			dst[ravel(dstIdx, dstShape)] = src[flat]
		}

		offset += s[axis]
	}

	return tensor.New(dstShape, dst)
}

// Stack joins tensors along a new leading axis; every tensor must share the
// same shape.
func (b *Backend[T]) Stack(tensors []*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("backend: stack requires at least one tensor")
	}

	base := tensors[0].Shape()

	for _, t := range tensors {
		if !sameShape(t.Shape(), base) {
			return nil, fmt.Errorf("backend: stack requires identical shapes, got %v and %v", base, t.Shape())
		}
	}

	dstShape := append([]int{len(tensors)}, base...)
	dst := make([]T, 0, product(dstShape))

	for _, t := range tensors {
		dst = append(dst, t.Data()...)
	}

	return tensor.New(dstShape, dst)
}

// Einsum evaluates a compact-form pattern ("ab,bc->ac", no ellipsis) against
// the given tensors: every letter not on the right side is summed over.
// This is a direct nested-loop evaluator rather than a BLAS-backed one,
// appropriate for a reference backend exercising the compactifier's output
// rather than for performance.
func (b *Backend[T]) Einsum(pattern string, tensors []*tensor.TensorNumeric[T]) (*tensor.TensorNumeric[T], error) {
	arrow := indexOf(pattern, "->")
	if arrow < 0 {
		return nil, fmt.Errorf("backend: einsum pattern must contain '->'")
	}

	inputLetters := splitComma(pattern[:arrow])
	outputLetters := pattern[arrow+2:]

	if len(inputLetters) != len(tensors) {
		return nil, fmt.Errorf("backend: einsum pattern has %d operands, got %d tensors", len(inputLetters), len(tensors))
	}

	letterSize := make(map[byte]int)

	for i, letters := range inputLetters {
		shape := tensors[i].Shape()
		if len(letters) != len(shape) {
			return nil, fmt.Errorf("backend: einsum operand %d has rank %d, pattern names %d axes", i, len(shape), len(letters))
		}

		for j := 0; j < len(letters); j++ {
			l := letters[j]
			if existing, ok := letterSize[l]; ok && existing != shape[j] {
				return nil, fmt.Errorf("backend: einsum axis %q has conflicting sizes %d and %d", string(l), existing, shape[j])
			}

			letterSize[l] = shape[j]
		}
	}

	var allLetters []byte

	seen := make(map[byte]bool)

	for _, letters := range inputLetters {
		for j := 0; j < len(letters); j++ {
			if !seen[letters[j]] {
				seen[letters[j]] = true

				allLetters = append(allLetters, letters[j])
			}
		}
	}

	dstShape := make([]int, len(outputLetters))
	for i := 0; i < len(outputLetters); i++ {
		dstShape[i] = letterSize[outputLetters[i]]
	}

	var summed []byte

	for _, l := range allLetters {
		isOutput := false

		for i := 0; i < len(outputLetters); i++ {
			if outputLetters[i] == l {
				isOutput = true

				break
			}
		}

		if !isOutput {
			summed = append(summed, l)
		}
	}

	dst := make([]T, product(dstShape))
	idx := make(map[byte]int, len(allLetters))

	var walkOutput func(pos int) error

	walkOutput = func(pos int) error {
		if pos == len(outputLetters) {
			sum, err := b.einsumSumOverFree(idx, summed, inputLetters, tensors, letterSize)
			if err != nil {
				return err
			}

			dst[ravel(outputIndices(outputLetters, idx), dstShape)] = sum

			return nil
		}

		l := outputLetters[pos]
		for v := 0; v < letterSize[l]; v++ {
			idx[l] = v

			if err := walkOutput(pos + 1); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walkOutput(0); err != nil {
		return nil, err
	}

	return tensor.New(dstShape, dst)
}

func (b *Backend[T]) einsumSumOverFree(idx map[byte]int, summed []byte, inputLetters []string, tensors []*tensor.TensorNumeric[T], letterSize map[byte]int) (T, error) {
	var total T

	first := true

	var walk func(pos int) error

	walk = func(pos int) error {
		if pos == len(summed) {
			term := b.ops.One()

			for i, letters := range inputLetters {
				pos := make([]int, len(letters))
				for j := 0; j < len(letters); j++ {
					pos[j] = idx[letters[j]]
				}

				v := tensors[i].Data()[ravel(pos, tensors[i].Shape())]
				term = b.ops.Mul(term, v)
			}

			if first {
				total = term
				first = false
			} else {
				total = b.ops.Add(total, term)
			}

			return nil
		}

		l := summed[pos]
		for v := 0; v < letterSize[l]; v++ {
			idx[l] = v

			if err := walk(pos + 1); err != nil {
				return err
			}
		}

		return nil
	}

	if err := walk(0); err != nil {
		return total, err
	}

	return total, nil
}

func outputIndices(outputLetters string, idx map[byte]int) []int {
	out := make([]int, len(outputLetters))
	for i := 0; i < len(outputLetters); i++ {
		out[i] = idx[outputLetters[i]]
	}

	return out
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}

	return -1
}

func splitComma(s string) []string {
	var out []string

	last := 0

	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[last:i])
			last = i + 1
		}
	}

	out = append(out, s[last:])

	return out
}

// Arange builds a 1-D tensor [0, 1, ..., n-1].
func (b *Backend[T]) Arange(n int) (*tensor.TensorNumeric[T], error) {
	data := make([]T, n)
	for i := range data {
		data[i] = b.ops.FromFloat64(float64(i))
	}

	return tensor.New([]int{n}, data)
}

func rowMajorStrides(shape []int) []int {
	strides := make([]int, len(shape))
	stride := 1

	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}

	return strides
}

func product(shape []int) int {
	p := 1
	for _, d := range shape {
		p *= d
	}

	return p
}

func unravel(flat int, shape []int, out []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = flat % shape[i]
		flat /= shape[i]
	}
}

func ravel(idx []int, shape []int) int {
	flat := 0

	for i, v := range idx {
		flat = flat*shape[i] + v
	}

	return flat
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
