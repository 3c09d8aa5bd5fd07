// Package errs defines the einops error taxonomy: a typed error carrying a
// stable Kind so callers can errors.Is against a sentinel regardless of the
// specific message, plus the diagnostic fields (pattern, operation, shape)
// the spec requires every error to surface.
package errs

import "fmt"

// Kind enumerates the error categories from the pattern-language spec.
type Kind string

// Syntax errors, detected by the expression parser.
const (
	MalformedEllipsis  Kind = "MalformedEllipsis"
	NestedBrackets     Kind = "NestedBrackets"
	UnbalancedBrackets Kind = "UnbalancedBrackets"
	BadIdentifier      Kind = "BadIdentifier"
	DuplicateIdentifier Kind = "DuplicateIdentifier"
	UnknownCharacter   Kind = "UnknownCharacter"
)

// Semantic errors, detected by the recipe planner.
const (
	EllipsisOnRightOnly         Kind = "EllipsisOnRightOnly"
	EllipsisParenthesizedOnLeft Kind = "EllipsisParenthesizedOnLeft"
	AnonymousInRearrange        Kind = "AnonymousInRearrange"
	UnbalancedIdentifiers       Kind = "UnbalancedIdentifiers"
	UnexpectedOnLeftOfRepeat    Kind = "UnexpectedOnLeftOfRepeat"
	MissingLengthForNewAxis     Kind = "MissingLengthForNewAxis"
	UnexpectedOnRightOfReduce   Kind = "UnexpectedOnRightOfReduce"
	UnknownReduction            Kind = "UnknownReduction"
	UnusedAxisLength            Kind = "UnusedAxisLength"
)

// Shape errors, detected by the shape specializer.
const (
	RankTooSmall              Kind = "RankTooSmall"
	RankMismatch              Kind = "RankMismatch"
	Underdetermined           Kind = "Underdetermined"
	ShapeMismatchExact        Kind = "ShapeMismatchExact"
	ShapeMismatchDivisibility Kind = "ShapeMismatchDivisibility"
)

// Type errors.
const (
	MeanOnIntegerTensor Kind = "MeanOnIntegerTensor"
)

// Packing errors.
const (
	PackRankTooSmall    Kind = "PackRankTooSmall"
	UnpackShapeMismatch Kind = "UnpackShapeMismatch"
	MultipleUnknowns    Kind = "MultipleUnknowns"
	UnpackMismatch      Kind = "UnpackMismatch"
)

// Einsum errors.
const (
	EinsumMissingArrow       Kind = "EinsumMissingArrow"
	EinsumSingletonGroup     Kind = "EinsumSingletonGroup"
	EinsumShapeRearrangement Kind = "EinsumShapeRearrangement"
	EinsumEmptyAxis          Kind = "EinsumEmptyAxis"
	EinsumTooManyAxes        Kind = "EinsumTooManyAxes"
	EinsumUnknownRightAxis   Kind = "EinsumUnknownRightAxis"
)

// Error is the concrete error type returned by the parser, planner,
// specializer, packing and einsum packages under pkg/einops (the backend
// package returns plain fmt.Errorf errors). It is fail-fast and
// value-returning: nothing is partially
// mutated when one is produced, since recipes are built and only then
// installed in a cache.
type Error struct {
	Kind      Kind
	Message   string
	Pattern   string
	Operation string
	Shape     []int
	Conflict  string
	Err       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Pattern != "" {
		msg = fmt.Sprintf("%s (pattern %q)", msg, e.Pattern)
	}

	if e.Operation != "" {
		msg = fmt.Sprintf("%s [op=%s]", msg, e.Operation)
	}

	if e.Shape != nil {
		msg = fmt.Sprintf("%s (shape %v)", msg, e.Shape)
	}

	if e.Conflict != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Conflict)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

// Unwrap exposes any wrapped error so errors.Is/As can see through it.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports Kind-equality with another *Error, letting callers compare
// against a bare sentinel built with Sentinel(kind) regardless of message.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == other.Kind
}

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Sentinel builds a bare Error carrying only a Kind, for use with
// errors.Is(err, errs.Sentinel(errs.RankMismatch)).
func Sentinel(kind Kind) *Error {
	return &Error{Kind: kind}
}

// WithPattern returns a copy of e annotated with the offending pattern text.
func (e *Error) WithPattern(pattern string) *Error {
	cp := *e
	cp.Pattern = pattern

	return &cp
}

// WithOperation returns a copy of e annotated with the reduction/operation kind.
func (e *Error) WithOperation(operation string) *Error {
	cp := *e
	cp.Operation = operation

	return &cp
}

// WithShape returns a copy of e annotated with the observed input shape.
func (e *Error) WithShape(shape []int) *Error {
	cp := *e
	cp.Shape = append([]int(nil), shape...)

	return &cp
}

// WithConflict returns a copy of e annotated with a human-readable
// description of the conflicting computed length.
func (e *Error) WithConflict(format string, args ...any) *Error {
	cp := *e
	cp.Conflict = fmt.Sprintf(format, args...)

	return &cp
}

// Wrap returns a copy of e wrapping the given underlying error.
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err

	return &cp
}
