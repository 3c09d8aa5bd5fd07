// Package recipe implements the recipe planner (C2) and shape specializer
// (C3): combining parsed left/right expressions, an operation kind and a
// tensor rank into a shape-independent TransformRecipe, then combining a
// TransformRecipe with a concrete input shape into a CookedRecipe — the
// ordered sequence of primitive backend calls that realizes a pattern.
//
// Grounded on include/einops.hpp's _prepare_transformation_recipe and
// _reconstruct_from_shape_uncached (original_source), reimplemented with Go
// maps/slices keyed on axisname.Name's identity-aware Key() in place of the
// reference's ordered std::map<Identifier, ...>.
package recipe

import (
	"fmt"

	"github.com/dorpxam/einops-go/pkg/einops/axisname"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/expr"
	"github.com/dorpxam/einops-go/pkg/einops/lrucache"
)

// Operation is one of the nine pattern operations the planner accepts.
type Operation string

// The operation kinds accepted by Prepare.
const (
	Rearrange Operation = "rearrange"
	Repeat    Operation = "repeat"
	Min       Operation = "min"
	Max       Operation = "max"
	Sum       Operation = "sum"
	Mean      Operation = "mean"
	Prod      Operation = "prod"
	Any       Operation = "any"
	All       Operation = "all"
)

var reductionKinds = map[Operation]bool{
	Min: true, Max: true, Sum: true, Mean: true, Prod: true, Any: true, All: true,
}

// IsReduction reports whether op is one of the seven reduction kinds.
func (op Operation) IsReduction() bool {
	return reductionKinds[op]
}

// Valid reports whether op is a recognized operation at all.
func (op Operation) Valid() bool {
	return op == Rearrange || op == Repeat || reductionKinds[op]
}

// AxisLength is a single user-supplied "name = length" binding.
type AxisLength struct {
	Name   string
	Length int
}

// Sentinels for elementary-axis lengths not yet known at a given stage.
// Chosen far outside any plausible tensor dimension, mirroring the
// reference's _unknown_axis_length / _expected_axis_length constants.
const (
	unknownAxisLength  = -999999
	expectedAxisLength = -99999
)

// inputAxisComposition records, for one input dimension, which elementary
// axis slots are known at plan time and which (at most one) must be
// inferred from the runtime dimension size.
type inputAxisComposition struct {
	Known   []int
	Unknown []int
}

// TransformRecipe is the shape-independent plan produced by Prepare.
type TransformRecipe struct {
	Operation                Operation
	ElementaryAxesLengths    []int
	AxisNameToElementaryAxis map[string]int

	inputComposition    []inputAxisComposition
	AxesPermutation     []int
	FirstReducedAxis    int
	AddedAxes           map[int]int
	OutputCompositeAxes [][]int
	RecipeHash          uint64
}

var recipeCache = lrucache.New[uint64, *TransformRecipe](256)

// RecipeCache exposes the process-wide recipe cache so embedding services
// can resize or flush it (spec.md §9's "expose a knob" requirement).
func RecipeCache() *lrucache.Cache[uint64, *TransformRecipe] {
	return recipeCache
}

// Prepare builds (or fetches from cache) the TransformRecipe for pattern,
// operation, axesLengths and ndim. This is C2, steps A-H.
func Prepare(pattern string, operation Operation, axesLengths []AxisLength, ndim int) (*TransformRecipe, error) {
	hash := hashRecipeKey(pattern, operation, axesLengths, ndim)
	if cached, ok := recipeCache.Get(hash); ok {
		return cached, nil
	}

	rec, err := prepareUncached(pattern, operation, axesLengths, ndim, hash)
	if err != nil {
		return nil, err
	}

	recipeCache.Put(hash, rec)

	return rec, nil
}

func prepareUncached(pattern string, operation Operation, axesLengths []AxisLength, ndim int, hash uint64) (*TransformRecipe, error) {
	if !operation.Valid() {
		return nil, errs.New(errs.UnknownReduction, "unknown reduction %q, expected one of rearrange, repeat, min, max, sum, mean, prod, any, all", operation).WithPattern(pattern)
	}

	leftStr, rightStr, err := splitArrow(pattern)
	if err != nil {
		return nil, err
	}

	left, err := expr.Parse(leftStr, expr.Options{})
	if err != nil {
		return nil, wrapPattern(err, pattern)
	}

	right, err := expr.Parse(rightStr, expr.Options{})
	if err != nil {
		return nil, wrapPattern(err, pattern)
	}

	if !left.HasEllipsis && right.HasEllipsis {
		return nil, errs.New(errs.EllipsisOnRightOnly, "ellipsis found on the right side of pattern but not the left side").WithPattern(pattern)
	}

	if left.HasEllipsis && left.HasEllipsisParenthesized {
		return nil, errs.New(errs.EllipsisParenthesizedOnLeft, "ellipsis in parenthesis on the left side is not allowed").WithPattern(pattern)
	}

	if err := validateOperation(operation, left, right, axesLengths); err != nil {
		if e, ok := err.(*errs.Error); ok {
			return nil, e.WithPattern(pattern).WithOperation(string(operation))
		}

		return nil, err
	}

	leftComposition, rightComposition, leftIdent, rightIdent, err := expandEllipsis(left, right, ndim)
	if err != nil {
		return nil, wrapPattern(err, pattern)
	}

	order, knownLength, err := enumerateElementaryAxes(leftComposition, rightComposition, leftIdent, axesLengths)
	if err != nil {
		return nil, wrapPattern(err, pattern)
	}

	axisPosition := make(map[any]int, len(order))
	for i, name := range order {
		axisPosition[name.Key()] = i
	}

	if err := applyAxesLengthOverrides(knownLength, axisPosition, axesLengths); err != nil {
		return nil, wrapPattern(err, pattern)
	}

	inputComposition, err := buildInputComposition(leftComposition, knownLength, axisPosition)
	if err != nil {
		return nil, wrapPattern(err, pattern)
	}

	axesPermutation, firstReducedAxis := buildPermutation(leftComposition, rightComposition, leftIdent, rightIdent, axisPosition)

	outputCompositeAxes := buildOutputGrouping(rightComposition, axisPosition)

	addedAxes := buildAddedAxes(rightComposition, leftIdent, axisPosition)

	axisNameToElementary := make(map[string]int, len(axesLengths))
	for _, al := range axesLengths {
		axisNameToElementary[al.Name] = axisPosition[axisname.Named(al.Name).Key()]
	}

	elementaryLengths := make([]int, len(order))
	for i, name := range order {
		elementaryLengths[i] = knownLength[name.Key()]
	}

	return &TransformRecipe{
		Operation:                operation,
		ElementaryAxesLengths:    elementaryLengths,
		AxisNameToElementaryAxis: axisNameToElementary,
		inputComposition:         inputComposition,
		AxesPermutation:          axesPermutation,
		FirstReducedAxis:         firstReducedAxis,
		AddedAxes:                addedAxes,
		OutputCompositeAxes:      outputCompositeAxes,
		RecipeHash:               hash,
	}, nil
}

func wrapPattern(err error, pattern string) error {
	if e, ok := err.(*errs.Error); ok && e.Pattern == "" {
		return e.WithPattern(pattern)
	}

	return err
}

func splitArrow(pattern string) (string, string, error) {
	idx := indexArrow(pattern)
	if idx < 0 {
		return "", "", errs.New(errs.BadIdentifier, "pattern must contain '->'").WithPattern(pattern)
	}

	return pattern[:idx], pattern[idx+2:], nil
}

func indexArrow(s string) int {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '-' && s[i+1] == '>' {
			return i
		}
	}

	return -1
}

func elementKeys(el expr.Element) []any {
	if el.IsGroup {
		keys := make([]any, len(el.Group))
		for i, n := range el.Group {
			keys[i] = n.Key()
		}

		return keys
	}

	return []any{el.Single.Key()}
}

func elementNames(el expr.Element) []axisname.Name {
	if el.IsGroup {
		return el.Group
	}

	return []axisname.Name{el.Single}
}

// flatten returns every axis name appearing in composition, in source order,
// ignoring empty groups (unit axes).
func flatten(composition []expr.Element) []axisname.Name {
	var out []axisname.Name

	for _, el := range composition {
		out = append(out, elementNames(el)...)
	}

	return out
}

func fmtName(n axisname.Name) string {
	return fmt.Sprintf("%v", n)
}
