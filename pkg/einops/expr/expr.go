// Package expr implements the expression parser (C1): it tokenizes one side
// of an einops pattern into a structured Composition, detecting ellipsis,
// anonymous numeric axes, duplicate identifiers and unbalanced brackets.
//
// Grounded on the reference parser's character-at-a-time scan
// (include/parsing.hpp ParsedExpression) and the teacher's own hand-rolled
// tokenizers (e.g. cmd/cli command-line splitting): no third-party
// tokenizer/lexer library fits a single-pass character scan this small, so
// this walks the string directly with the standard library only.
package expr

import (
	"strings"
	"unicode"

	"github.com/dorpxam/einops-go/pkg/einops/axisname"
	"github.com/dorpxam/einops-go/pkg/einops/errs"
)

// Element is one entry in a parsed composition: either a parenthesized
// Group (possibly empty, for "()" or a literal "1") or a bare Single axis.
type Element struct {
	IsGroup bool
	Single  axisname.Name
	Group   []axisname.Name
}

// Parsed is the structured result of parsing one side of a pattern.
type Parsed struct {
	Composition                []Element
	Identifiers                map[any]axisname.Name
	HasEllipsis                bool
	HasEllipsisParenthesized   bool
	HasNonUnitaryAnonymousAxes bool
}

// Options controls identifier validation relaxations used by einsum
// (AllowUnderscore, AllowDuplicates).
type Options struct {
	AllowUnderscore bool
	AllowDuplicates bool
}

// Parse tokenizes side (the text before or after "->") into a Parsed
// expression under the given Options.
func Parse(side string, opts Options) (*Parsed, error) {
	normalized, hasEllipsis, err := normalizeEllipsis(side)
	if err != nil {
		return nil, err
	}

	p := &Parsed{
		Identifiers: make(map[any]axisname.Name),
		HasEllipsis: hasEllipsis,
	}

	var (
		current    strings.Builder
		inGroup    bool
		group      []axisname.Name
	)

	commit := func() error {
		if current.Len() == 0 {
			return nil
		}

		tok := current.String()
		current.Reset()

		return addToken(p, tok, opts, &inGroup, &group)
	}

	for _, r := range normalized {
		switch {
		case r == '(':
			if err := commit(); err != nil {
				return nil, err
			}

			if inGroup {
				return nil, errs.New(errs.NestedBrackets, "axis composition is one-level (brackets inside brackets not allowed)")
			}

			inGroup = true
			group = []axisname.Name{}
		case r == ')':
			if err := commit(); err != nil {
				return nil, err
			}

			if !inGroup {
				return nil, errs.New(errs.UnbalancedBrackets, "brackets are not balanced")
			}

			p.Composition = append(p.Composition, Element{IsGroup: true, Group: group})
			inGroup = false
			group = nil
		case unicode.IsSpace(r):
			if err := commit(); err != nil {
				return nil, err
			}
		case r == '_' || r == axisname.EllipsisRune || unicode.IsLetter(r) || unicode.IsDigit(r):
			current.WriteRune(r)
		default:
			return nil, errs.New(errs.UnknownCharacter, "unknown character %q", r)
		}
	}

	if err := commit(); err != nil {
		return nil, err
	}

	if inGroup {
		return nil, errs.New(errs.UnbalancedBrackets, "imbalanced parentheses in expression %q", side)
	}

	return p, nil
}

// normalizeEllipsis replaces the literal "..." with the internal sentinel,
// rejecting any other use of '.'.
func normalizeEllipsis(side string) (string, bool, error) {
	if !strings.Contains(side, ".") {
		return side, false, nil
	}

	if !strings.Contains(side, "...") || strings.Count(side, "...") != 1 || strings.Count(side, ".") != 3 {
		return "", false, errs.New(errs.MalformedEllipsis, "expression may contain dots only inside a single ellipsis (...)")
	}

	return strings.Replace(side, "...", axisname.Ellipsis, 1), true, nil
}

func addToken(p *Parsed, tok string, opts Options, inGroup *bool, group *[]axisname.Name) error {
	if tok == axisname.Ellipsis {
		name := axisname.Named(axisname.Ellipsis)
		p.Identifiers[name.Key()] = name

		if *inGroup {
			*group = append(*group, name)
			p.HasEllipsisParenthesized = true
		} else {
			p.Composition = append(p.Composition, Element{Single: name})
			p.HasEllipsisParenthesized = false
		}

		return nil
	}

	if isAllDigits(tok) {
		value := parseDigits(tok)
		if value == 1 {
			if !*inGroup {
				p.Composition = append(p.Composition, Element{IsGroup: true, Group: nil})
			}

			return nil
		}

		name, err := axisname.NewAnonymous(value)
		if err != nil {
			return errs.New(errs.BadIdentifier, "%v", err)
		}

		p.HasNonUnitaryAnonymousAxes = true
		p.Identifiers[name.Key()] = name

		if *inGroup {
			*group = append(*group, name)
		} else {
			p.Composition = append(p.Composition, Element{Single: name})
		}

		return nil
	}

	if !validIdentifier(tok, opts.AllowUnderscore) {
		return errs.New(errs.BadIdentifier, "invalid axis identifier: %s", tok)
	}

	name := axisname.Named(tok)
	if _, dup := p.Identifiers[name.Key()]; dup {
		allowedUnderscore := opts.AllowUnderscore && tok == "_"
		if !allowedUnderscore && !opts.AllowDuplicates {
			return errs.New(errs.DuplicateIdentifier, "indexing expression contains duplicate dimension %q", tok)
		}
	}

	p.Identifiers[name.Key()] = name

	if *inGroup {
		*group = append(*group, name)
	} else {
		p.Composition = append(p.Composition, Element{Single: name})
	}

	return nil
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}

	return true
}

func parseDigits(s string) int {
	value := 0
	for _, r := range s {
		value = value*10 + int(r-'0')
	}

	return value
}

// validIdentifier checks the axis-name rule from the data model: first char
// alphabetic or '_', remaining alphanumeric or '_', not starting nor ending
// with '_' unless the whole name is "_" (only permitted when allowUnderscore).
func validIdentifier(name string, allowUnderscore bool) bool {
	if name == "" {
		return false
	}

	first := rune(name[0])
	if !unicode.IsLetter(first) && first != '_' {
		return false
	}

	for _, r := range name[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	if name == "_" {
		return allowUnderscore
	}

	if strings.HasPrefix(name, "_") || strings.HasSuffix(name, "_") {
		return false
	}

	return true
}

// IsValidAxisName reports whether name would be accepted as a named axis
// identifier, used by the recipe planner to validate caller-supplied axis
// lengths (spec step D).
func IsValidAxisName(name string, allowUnderscore bool) bool {
	return validIdentifier(name, allowUnderscore)
}
