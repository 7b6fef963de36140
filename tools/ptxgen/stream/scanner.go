// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package stream

import (
	"unicode/utf8"

	"firefly-os.dev/tools/ptxgen/diag"
	"firefly-os.dev/tools/ptxgen/token"
)

const (
	// EOF is the pseudo-rune returned by Next at the
	// end of the source.
	EOF = -1

	// Byte order mark.
	bom = 0xfeff
)

// Scanner reads a source one code point at a time,
// tracking the span of the token being scanned.
//
type Scanner struct {
	// Immutable state.
	src []byte

	// Mutable state as we progress through the source.
	offset     int            // Offset into the file where the current token starts.
	nextOffset int            // Offset into the file of the current location.
	pos        token.Position // Position where the current token starts.
	line       int            // Line number of the current location.
	column     int            // Column number of the current location.
	prevColumn int            // The column number of the end of the previous line.
	width      int            // Number of bytes in the last code point read.

	err *diag.LexError // First error encountered.
}

// NewScanner returns a scanner at the start of src.
//
func NewScanner(src []byte) *Scanner {
	s := &Scanner{
		src:        src,
		line:       1,
		column:     1,
		prevColumn: 1,
	}

	if len(src) > token.MaxOffset {
		s.Errorf(diag.InvalidToken, "source is too large")
	}

	s.Advance()

	return s
}

// Err returns the first error encountered, if any.
//
func (s *Scanner) Err() error {
	if s.err == nil {
		return nil
	}

	return s.err
}

// Errorf records an error at the current token, unless
// an error has already been recorded.
//
func (s *Scanner) Errorf(kind diag.LexErrorKind, msg string) {
	if s.err != nil {
		return
	}

	s.err = &diag.LexError{Kind: kind, Msg: msg, Span: s.Span()}
}

// EOF returns whether the scanner has reached the end
// of the source.
//
func (s *Scanner) EOF() bool {
	return s.nextOffset >= len(s.src)
}

// Next consumes the next code point, returning it.
//
func (s *Scanner) Next() (r rune) {
	if s.EOF() {
		s.width = 0
		return EOF
	}

	// Try an ASCII character first.
	r, s.width = rune(s.src[s.nextOffset]), 1
	if r >= utf8.RuneSelf {
		r, s.width = utf8.DecodeRune(s.src[s.nextOffset:])
		if r == utf8.RuneError && s.width == 1 {
			s.runeError(diag.InvalidEncoding, "source is not valid UTF-8")
		} else if r == bom {
			s.runeError(diag.InvalidCharacter, "illegal byte order mark")
		}
	}

	if r == 0 {
		s.runeError(diag.InvalidCharacter, "illegal character NUL")
	}

	s.nextOffset += s.width
	s.column++
	if r == '\n' {
		s.prevColumn = s.column - 1
		s.column = 1
		s.line++
	}

	if r == 0 {
		return EOF
	}

	return r
}

// runeError records an error for the code point
// about to be consumed by Next.
//
func (s *Scanner) runeError(kind diag.LexErrorKind, msg string) {
	if s.err != nil {
		return
	}

	pos, err := token.NewPosition(s.nextOffset, s.line, s.column)
	if err != nil {
		pos = s.pos
	}

	s.err = &diag.LexError{Kind: kind, Msg: msg, Span: token.SpanOf(pos, s.width)}
}

// Backup steps back by one rune. It can only be
// called once per call to Next.
//
func (s *Scanner) Backup() {
	if s.width == 0 {
		return
	}

	s.nextOffset -= s.width
	s.width = 0
	s.column--
	if s.column == 0 {
		s.line--
		s.column = s.prevColumn
	}
}

// Peek returns the next rune, without consuming
// it from the source.
//
func (s *Scanner) Peek() rune {
	r := s.Next()
	s.Backup()

	return r
}

// Lookahead returns up to the next n bytes of
// unscanned source, without consuming them.
//
func (s *Scanner) Lookahead(n int) string {
	end := s.nextOffset + n
	if end > len(s.src) {
		end = len(s.src)
	}

	return string(s.src[s.nextOffset:end])
}

// Advance starts a new token at the current location.
//
func (s *Scanner) Advance() {
	s.offset = s.nextOffset
	pos, err := token.NewPosition(s.offset, s.line, s.column)
	if err != nil {
		s.Errorf(diag.InvalidToken, err.Error())
		return
	}

	s.pos = pos
}

// Text returns the text of the current token.
//
func (s *Scanner) Text() string {
	return string(s.src[s.offset:s.nextOffset])
}

// Span returns the span of the current token.
//
func (s *Scanner) Span() token.Span {
	end, err := token.NewPosition(s.nextOffset, s.line, s.column)
	if err != nil {
		end = s.pos
	}

	return token.Span{Start: s.pos, End: end}
}
