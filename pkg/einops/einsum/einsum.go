// Package einsum implements the einsum pattern compactifier (C5): rewriting
// comma-separated einsum patterns using multi-character axis names into the
// single-letter form a plain-array einsum backend accepts.
//
// Grounded on include/einops.hpp's _compactify_pattern_for_einsum
// (original_source), reusing package expr's parser with the relaxations
// einsum needs (underscore axis, duplicate axes within one operand).
package einsum

import (
	"strings"

	"github.com/dorpxam/einops-go/pkg/einops/axisname"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
	"github.com/dorpxam/einops-go/pkg/einops/expr"
)

const letterPool = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Compactify rewrites pattern (which must contain "->") from named-axis
// einsum notation into single-letter notation, e.g.
// "batch seq, seq hidden -> batch hidden" becomes "ab,bc->ac".
func Compactify(pattern string) (string, error) {
	arrow := strings.Index(pattern, "->")
	if arrow < 0 {
		return "", errs.New(errs.EinsumMissingArrow, "einsum pattern must contain '->'").WithPattern(pattern)
	}

	leftPart := pattern[:arrow]
	rightPart := pattern[arrow+2:]

	inputs := strings.Split(leftPart, ",")
	parsed := make([]*expr.Parsed, len(inputs))

	opts := expr.Options{AllowUnderscore: true, AllowDuplicates: true}

	for i, in := range inputs {
		p, err := expr.Parse(in, opts)
		if err != nil {
			return "", err
		}

		if err := validateEinsumComposition(p); err != nil {
			return "", err
		}

		parsed[i] = p
	}

	right, err := expr.Parse(rightPart, opts)
	if err != nil {
		return "", err
	}

	if err := validateEinsumComposition(right); err != nil {
		return "", err
	}

	letterFor := make(map[any]byte)
	nextLetter := 0

	elementName := func(el expr.Element) axisname.Name {
		if el.IsGroup {
			return el.Group[0]
		}

		return el.Single
	}

	letterOf := func(n axisname.Name) (string, error) {
		if n.IsEllipsis() {
			return "...", nil
		}

		key := n.Key()

		if l, ok := letterFor[key]; ok {
			return string(l), nil
		}

		if nextLetter >= len(letterPool) {
			return "", errs.New(errs.EinsumTooManyAxes, "einsum pattern uses more than %d distinct axes", len(letterPool))
		}

		l := letterPool[nextLetter]
		nextLetter++
		letterFor[key] = l

		return string(l), nil
	}

	letteredInputs := make([]string, len(parsed))

	for i, p := range parsed {
		var sb strings.Builder

		for _, el := range p.Composition {
			letter, err := letterOf(elementName(el))
			if err != nil {
				return "", err
			}

			sb.WriteString(letter)
		}

		letteredInputs[i] = sb.String()
	}

	var sb strings.Builder

	for _, el := range right.Composition {
		name := elementName(el)

		if name.IsEllipsis() {
			sb.WriteString("...")

			continue
		}

		key := name.Key()

		l, ok := letterFor[key]
		if !ok {
			return "", errs.New(errs.EinsumUnknownRightAxis, "axis %q on the right side was never seen on the left", name)
		}

		sb.WriteByte(l)
	}

	return strings.Join(letteredInputs, ",") + "->" + sb.String(), nil
}

// validateEinsumComposition enforces that every composition element is a
// bare Single axis (or a parenthesized group of exactly one axis, which is
// equivalent) — einsum has no notion of axis grouping.
func validateEinsumComposition(p *expr.Parsed) error {
	for i, el := range p.Composition {
		if !el.IsGroup {
			if el.Single.IsAnonymous() {
				continue
			}

			if el.Single.Ident() == "" {
				return errs.New(errs.EinsumEmptyAxis, "einsum axis name at position %d is empty", i)
			}

			continue
		}

		switch len(el.Group) {
		case 0:
			return errs.New(errs.EinsumSingletonGroup, "einsum pattern may not contain an empty group")
		case 1:
			continue
		default:
			return errs.New(errs.EinsumShapeRearrangement, "einsum does not support axis grouping, found group of %d axes", len(el.Group))
		}
	}

	return nil
}
