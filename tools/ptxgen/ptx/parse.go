// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"strconv"

	"firefly-os.dev/tools/ptxgen/diag"
)

// quote returns the literals in quoted form, as
// used in diagnostics.
//
func quote(literals []string) []string {
	out := make([]string, len(literals))
	for i, lit := range literals {
		out[i] = strconv.Quote(lit)
	}

	return out
}

// ExpectOpcode consumes the given opcode.
//
func ExpectOpcode(s *Stream, opcode string) error {
	if l := s.Peek(); l.Token == Identifier && l.Value == opcode {
		s.Advance()
		return nil
	}

	return s.Unexpected(strconv.Quote(opcode))
}

// PeekOpcode returns the opcode of the next
// instruction without consuming it. The opcode
// must be one of those given.
//
func PeekOpcode(s *Stream, opcodes []string) (string, error) {
	l := s.Peek()
	if l.Token != Identifier {
		return "", s.Unexpected("instruction opcode")
	}

	for _, opcode := range opcodes {
		if opcode == l.Value {
			return opcode, nil
		}
	}

	return "", &diag.UnexpectedValue{Expected: quote(opcodes), Found: l.Value, Span: l.Span}
}

// ExpectDirective consumes the given mandatory
// literal qualifier.
//
func ExpectDirective(s *Stream, literal string) error {
	if AcceptDirective(s, literal) {
		return nil
	}

	return s.Unexpected(strconv.Quote(literal))
}

// AcceptDirective consumes the given optional
// literal qualifier, if it is next.
//
func AcceptDirective(s *Stream, literal string) bool {
	if l := s.Peek(); l.Token == Directive && l.Value == literal {
		s.Advance()
		return true
	}

	return false
}

// ExpectOneOf consumes a typed qualifier, returning
// the index of its literal. A directive outside the
// set is reported as an unexpected value.
//
func ExpectOneOf(s *Stream, literals []string) (int, error) {
	if i, ok := AcceptOneOf(s, literals); ok {
		return i, nil
	}

	l := s.Peek()
	if l.Token == Directive {
		return 0, &diag.UnexpectedValue{Expected: quote(literals), Found: l.Value, Span: l.Span}
	}

	return 0, s.Unexpected(quote(literals)...)
}

// AcceptOneOf consumes an optional typed qualifier,
// if the next directive is in the set.
//
func AcceptOneOf(s *Stream, literals []string) (int, bool) {
	l := s.Peek()
	if l.Token != Directive {
		return 0, false
	}

	for i, lit := range literals {
		if lit == l.Value {
			s.Advance()
			return i, true
		}
	}

	return 0, false
}

// ExpectEndOfQualifiers ensures that no qualifiers
// remain before the operands. The expected set
// describes what should follow instead.
//
func ExpectEndOfQualifiers(s *Stream, expected ...string) error {
	if l := s.Peek(); l.Token == Directive {
		return &diag.UnexpectedToken{Expected: expected, Found: l.Value, Span: l.Span}
	}

	return nil
}

// ExpectComma consumes the comma between operands.
//
func ExpectComma(s *Stream) error {
	_, err := s.Expect(Comma)
	return err
}

// AcceptPipe consumes the pipe introducing a
// secondary operand, if it is next.
//
func AcceptPipe(s *Stream) bool {
	_, ok := s.Accept(Pipe)
	return ok
}

// ExpectSemicolon consumes the semicolon that
// terminates an instruction.
//
func ExpectSemicolon(s *Stream) error {
	_, err := s.Expect(Semicolon)
	return err
}

// ExpectEnd ensures that the stream has been
// exhausted.
//
func ExpectEnd(s *Stream) error {
	if s.AtEOF() {
		return nil
	}

	l := s.Peek()

	return &diag.UnexpectedToken{Expected: []string{"end of input"}, Found: l.Value, Span: l.Span}
}

// ParseText tokenizes text and parses a single
// instruction from it with fn, rejecting any
// trailing input.
//
func ParseText[T any](text string, fn func(*Stream) (T, error)) (T, error) {
	var zero T
	lexemes, err := TokenizeString(text)
	if err != nil {
		return zero, err
	}

	s := NewStream(lexemes)
	v, err := fn(s)
	if err != nil {
		return zero, err
	}

	if err := ExpectEnd(s); err != nil {
		return zero, err
	}

	return v, nil
}
