// Package axisname defines the axis-name sum type shared by the parser,
// recipe planner and shape specializer: a named identifier or an anonymous
// numeric axis carrying its own identity.
package axisname

import (
	"fmt"
	"sync/atomic"
)

// Ellipsis is the internal sentinel standing in for "..." once a pattern
// side has been preprocessed. It is a single rune from the Unicode private
// use area so it tokenizes as one identifier character and never collides
// with a real axis name; only ASCII "..." is accepted externally (spec:
// "Unicode ellipsis" note — out-of-alphabet sentinel, not the literal "…").
const Ellipsis = ""

// EllipsisRune is Ellipsis as a single rune, for scanner comparisons.
const EllipsisRune = ''

var nextAnonymousID uint64

// Name identifies a single axis: either a named identifier (anonymous ==
// nil) or an anonymous numeric axis literal >= 2 (anonymous != nil). Two
// Names built from the same integer value are never equal to each other;
// identity, not value, is what distinguishes them.
type Name struct {
	ident     string
	anonymous *anonymous
}

type anonymous struct {
	value int
	id    uint64
}

// Named builds a Name for a regular identifier (including Ellipsis).
func Named(ident string) Name {
	return Name{ident: ident}
}

// NewAnonymous builds a fresh anonymous axis of the given integer value.
// value must be >= 2; callers are expected to have already rejected 1
// (a unit group) before calling this constructor.
func NewAnonymous(value int) (Name, error) {
	if value < 2 {
		return Name{}, fmt.Errorf("anonymous axis should have positive length >= 2, not %d", value)
	}

	return Name{anonymous: &anonymous{
		value: value,
		id:    atomic.AddUint64(&nextAnonymousID, 1),
	}}, nil
}

// IsAnonymous reports whether n is an anonymous numeric axis.
func (n Name) IsAnonymous() bool {
	return n.anonymous != nil
}

// IsEllipsis reports whether n is the ellipsis sentinel.
func (n Name) IsEllipsis() bool {
	return n.anonymous == nil && n.ident == Ellipsis
}

// Value returns the integer value of an anonymous axis. It panics if n is
// not anonymous; callers must check IsAnonymous first.
func (n Name) Value() int {
	if n.anonymous == nil {
		panic("axisname: Value called on a non-anonymous Name")
	}

	return n.anonymous.value
}

// Ident returns the identifier string of a named axis. It panics if n is
// anonymous; callers must check IsAnonymous first.
func (n Name) Ident() string {
	if n.anonymous != nil {
		panic("axisname: Ident called on an anonymous Name")
	}

	return n.ident
}

// Equal reports whether two Names denote the same axis. Anonymous axes
// compare by identity (the id assigned at construction); named axes compare
// by their identifier string.
func (n Name) Equal(other Name) bool {
	if n.IsAnonymous() != other.IsAnonymous() {
		return false
	}

	if n.IsAnonymous() {
		return n.anonymous.id == other.anonymous.id
	}

	return n.ident == other.ident
}

// Key returns a value suitable for use as a map key that respects Name's
// identity semantics: two anonymous axes of the same value never collide,
// two named axes with the same identifier always do.
func (n Name) Key() any {
	if n.IsAnonymous() {
		return n.anonymous.id
	}

	return n.ident
}

// String renders the axis for diagnostics. Anonymous axes render as
// "<value>-axis" (matching the reference implementation); named axes render
// as their identifier.
func (n Name) String() string {
	if n.IsAnonymous() {
		return fmt.Sprintf("%d-axis", n.anonymous.value)
	}

	return n.ident
}
