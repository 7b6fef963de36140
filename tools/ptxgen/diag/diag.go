// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package diag contains the structured errors reported while
// compiling an instruction syntax specification, and while
// parsing instructions with the resulting parsers.
//
// Every error carries the span of the offending text, so
// callers can use errors.As to recover the precise kind and
// location of a failure.
//
package diag

import (
	"errors"
	"fmt"
	"strings"

	"firefly-os.dev/tools/ptxgen/token"
)

// Positioner is implemented by every error in
// this package.
//
type Positioner interface {
	error
	Pos() token.Position
}

var (
	_ Positioner = (*LexError)(nil)
	_ Positioner = (*UnexpectedToken)(nil)
	_ Positioner = (*UnexpectedValue)(nil)
	_ Positioner = (*UnexpectedEof)(nil)
	_ Positioner = (*UnknownTypeReference)(nil)
	_ Positioner = (*DuplicateDeclaration)(nil)
)

// LexErrorKind identifies the reason a lexer
// rejected its input.
//
type LexErrorKind uint8

const (
	UnterminatedToken LexErrorKind = iota
	InvalidCharacter
	InvalidEncoding
	InvalidToken
)

func (k LexErrorKind) String() string {
	switch k {
	case UnterminatedToken:
		return "unterminated token"
	case InvalidCharacter:
		return "invalid character"
	case InvalidEncoding:
		return "invalid encoding"
	case InvalidToken:
		return "invalid token"
	}

	return fmt.Sprintf("LexErrorKind(%d)", k)
}

// LexError indicates that the source could not
// be split into tokens.
//
type LexError struct {
	Kind LexErrorKind
	Msg  string
	Span token.Span
}

func (e *LexError) Pos() token.Position { return e.Span.Start }
func (e *LexError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %s", e.Span, e.Kind)
	}

	return fmt.Sprintf("%s: %s: %s", e.Span, e.Kind, e.Msg)
}

// UnexpectedToken indicates that a required
// literal, punctuation or operand did not match
// the token found.
//
type UnexpectedToken struct {
	Expected []string // Literals (quoted) or categories.
	Found    string   // Text of the token found.
	Span     token.Span
}

func (e *UnexpectedToken) Pos() token.Position { return e.Span.Start }
func (e *UnexpectedToken) Error() string {
	return fmt.Sprintf("%s: expected %s, found %q", e.Span, expected(e.Expected), e.Found)
}

// UnexpectedValue indicates that a directive was
// present, but was not one of the literals in its
// declared enumeration.
//
type UnexpectedValue struct {
	Expected []string
	Found    string
	Span     token.Span
}

func (e *UnexpectedValue) Pos() token.Position { return e.Span.Start }
func (e *UnexpectedValue) Error() string {
	return fmt.Sprintf("%s: unexpected value %q, expected %s", e.Span, e.Found, expected(e.Expected))
}

// UnexpectedEof indicates that the input ended
// before a required token.
//
type UnexpectedEof struct {
	Expected []string
	Span     token.Span
}

func (e *UnexpectedEof) Pos() token.Position { return e.Span.Start }
func (e *UnexpectedEof) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("%s: unexpected end of input", e.Span)
	}

	return fmt.Sprintf("%s: unexpected end of input, expected %s", e.Span, expected(e.Expected))
}

// UnknownTypeReference indicates that a placeholder
// was referenced but never declared.
//
type UnknownTypeReference struct {
	Name string
	Span token.Span
}

func (e *UnknownTypeReference) Pos() token.Position { return e.Span.Start }
func (e *UnknownTypeReference) Error() string {
	return fmt.Sprintf("%s: type %q is not declared", e.Span, e.Name)
}

// DuplicateDeclaration indicates that a placeholder
// was declared twice in the same scope, with
// different sets of literals.
//
type DuplicateDeclaration struct {
	Name   string
	First  token.Span
	Second token.Span
}

func (e *DuplicateDeclaration) Pos() token.Position { return e.Second.Start }
func (e *DuplicateDeclaration) Error() string {
	return fmt.Sprintf("%s: type %q redeclared with different values (first declared at %s)", e.Second, e.Name, e.First)
}

// expected describes a set of expected tokens.
//
func expected(set []string) string {
	switch len(set) {
	case 0:
		return "nothing"
	case 1:
		return set[0]
	case 2:
		return set[0] + " or " + set[1]
	}

	return strings.Join(set[:len(set)-1], ", ") + ", or " + set[len(set)-1]
}

// Position returns the position of the first
// diagnostic in err's chain, if any.
//
func Position(err error) (token.Position, bool) {
	var p Positioner
	if errors.As(err, &p) {
		return p.Pos(), true
	}

	return 0, false
}
