// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package stream provides the token-stream abstraction shared by
// the specification parser and every instruction parser, along
// with the rune scanner both lexers are built on.
//
package stream

import (
	"fmt"

	"firefly-os.dev/tools/ptxgen/diag"
	"firefly-os.dev/tools/ptxgen/token"
)

// Kind is implemented by the token enumerations
// of each language. The zero value of a Kind must
// represent the end of the input.
//
type Kind interface {
	comparable
	String() string
}

// Lexeme describes a token, its span, and its textual
// value.
//
type Lexeme[K Kind] struct {
	Token K
	Span  token.Span
	Value string
}

func (l Lexeme[K]) String() string {
	return fmt.Sprintf("%s: %s (%s)", l.Span, l.Token, l.Value)
}

// Stream is a cursor over a sequence of lexemes.
//
// Once the lexemes are exhausted, the stream returns
// an endless sequence of end-of-input lexemes.
//
type Stream[K Kind] struct {
	lexemes []Lexeme[K]
	offset  int
	eof     Lexeme[K]
}

// New returns a stream over the given lexemes.
//
func New[K Kind](lexemes []Lexeme[K]) *Stream[K] {
	var zero K
	s := &Stream[K]{lexemes: lexemes}
	if n := len(lexemes); n > 0 {
		last := lexemes[n-1]
		if last.Token == zero {
			s.eof = last
			s.lexemes = lexemes[:n-1]
		} else {
			s.eof = Lexeme[K]{Span: token.Span{Start: last.Span.End, End: last.Span.End}}
		}
	}

	return s
}

// Peek returns the current lexeme without
// consuming it.
//
func (s *Stream[K]) Peek() Lexeme[K] {
	if s.offset < len(s.lexemes) {
		return s.lexemes[s.offset]
	}

	return s.eof
}

// Advance consumes and returns the current lexeme.
//
func (s *Stream[K]) Advance() Lexeme[K] {
	l := s.Peek()
	if s.offset < len(s.lexemes) {
		s.offset++
	}

	return l
}

// AtEOF returns whether the stream has been exhausted.
//
func (s *Stream[K]) AtEOF() bool {
	return s.offset >= len(s.lexemes)
}

// Span returns the span of the current lexeme.
//
func (s *Stream[K]) Span() token.Span {
	return s.Peek().Span
}

// Mark returns the current location in the stream,
// which can be restored with Reset.
//
func (s *Stream[K]) Mark() int {
	return s.offset
}

// Reset returns the stream to a location returned
// by Mark.
//
func (s *Stream[K]) Reset(mark int) {
	if mark < 0 || len(s.lexemes) < mark {
		panic(fmt.Sprintf("stream.Reset(%d): invalid mark", mark))
	}

	s.offset = mark
}

// Accept consumes the current lexeme if it has the
// given token.
//
func (s *Stream[K]) Accept(tok K) (Lexeme[K], bool) {
	l := s.Peek()
	if l.Token != tok {
		return l, false
	}

	if !s.AtEOF() {
		s.offset++
	}

	return l, true
}

// Expect consumes the current lexeme if it has the
// given token, or returns an error describing the
// mismatch.
//
func (s *Stream[K]) Expect(tok K) (Lexeme[K], error) {
	l, ok := s.Accept(tok)
	if !ok {
		return l, s.Unexpected(tok.String())
	}

	return l, nil
}

// Unexpected returns an error reporting that the
// current lexeme is not one of the expected set. At
// the end of the input, this is a *diag.UnexpectedEof,
// otherwise it is a *diag.UnexpectedToken.
//
func (s *Stream[K]) Unexpected(expected ...string) error {
	l := s.Peek()
	if s.AtEOF() {
		return &diag.UnexpectedEof{Expected: expected, Span: l.Span}
	}

	return &diag.UnexpectedToken{Expected: expected, Found: l.Value, Span: l.Span}
}
