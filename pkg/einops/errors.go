package einops

import "github.com/dorpxam/einops-go/pkg/einops/errs"

// Error is the concrete error type for every failure in the error taxonomy
// (parser, planner, specializer, pack/unpack, einsum compactifier). Errors
// raised by backend primitives and the few argument checks in einops.go are
// plain fmt.Errorf values. Compare against a sentinel with
// errors.Is(err, einops.ErrRankMismatch) etc.
type Error = errs.Error

// Sentinel error values for errors.Is comparisons, one per Kind in the
// taxonomy (see errs.Kind). Message/pattern/shape fields are irrelevant to
// the comparison; errs.Error.Is compares Kind only.
var (
	ErrMalformedEllipsis  = errs.Sentinel(errs.MalformedEllipsis)
	ErrNestedBrackets     = errs.Sentinel(errs.NestedBrackets)
	ErrUnbalancedBrackets = errs.Sentinel(errs.UnbalancedBrackets)
	ErrBadIdentifier      = errs.Sentinel(errs.BadIdentifier)
	ErrDuplicateIdentifier = errs.Sentinel(errs.DuplicateIdentifier)
	ErrUnknownCharacter   = errs.Sentinel(errs.UnknownCharacter)

	ErrEllipsisOnRightOnly         = errs.Sentinel(errs.EllipsisOnRightOnly)
	ErrEllipsisParenthesizedOnLeft = errs.Sentinel(errs.EllipsisParenthesizedOnLeft)
	ErrAnonymousInRearrange        = errs.Sentinel(errs.AnonymousInRearrange)
	ErrUnbalancedIdentifiers       = errs.Sentinel(errs.UnbalancedIdentifiers)
	ErrUnexpectedOnLeftOfRepeat    = errs.Sentinel(errs.UnexpectedOnLeftOfRepeat)
	ErrMissingLengthForNewAxis     = errs.Sentinel(errs.MissingLengthForNewAxis)
	ErrUnexpectedOnRightOfReduce   = errs.Sentinel(errs.UnexpectedOnRightOfReduce)
	ErrUnknownReduction            = errs.Sentinel(errs.UnknownReduction)
	ErrUnusedAxisLength            = errs.Sentinel(errs.UnusedAxisLength)

	ErrRankTooSmall              = errs.Sentinel(errs.RankTooSmall)
	ErrRankMismatch              = errs.Sentinel(errs.RankMismatch)
	ErrUnderdetermined           = errs.Sentinel(errs.Underdetermined)
	ErrShapeMismatchExact        = errs.Sentinel(errs.ShapeMismatchExact)
	ErrShapeMismatchDivisibility = errs.Sentinel(errs.ShapeMismatchDivisibility)

	ErrMeanOnIntegerTensor = errs.Sentinel(errs.MeanOnIntegerTensor)

	ErrPackRankTooSmall    = errs.Sentinel(errs.PackRankTooSmall)
	ErrUnpackShapeMismatch = errs.Sentinel(errs.UnpackShapeMismatch)
	ErrMultipleUnknowns    = errs.Sentinel(errs.MultipleUnknowns)
	ErrUnpackMismatch      = errs.Sentinel(errs.UnpackMismatch)

	ErrEinsumMissingArrow       = errs.Sentinel(errs.EinsumMissingArrow)
	ErrEinsumSingletonGroup     = errs.Sentinel(errs.EinsumSingletonGroup)
	ErrEinsumShapeRearrangement = errs.Sentinel(errs.EinsumShapeRearrangement)
	ErrEinsumEmptyAxis          = errs.Sentinel(errs.EinsumEmptyAxis)
	ErrEinsumTooManyAxes        = errs.Sentinel(errs.EinsumTooManyAxes)
	ErrEinsumUnknownRightAxis   = errs.Sentinel(errs.EinsumUnknownRightAxis)
)
