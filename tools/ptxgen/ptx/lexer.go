// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"fmt"
	"strings"

	"firefly-os.dev/tools/ptxgen/diag"
	"firefly-os.dev/tools/ptxgen/stream"
)

type lexer struct {
	*stream.Scanner

	lexemes []Lexeme
}

// Tokenize scans instruction text, returning the sequence
// of lexemes, terminated by an EndOfFile lexeme.
//
// Whitespace and comments are discarded.
//
func Tokenize(source []byte) ([]Lexeme, error) {
	l := &lexer{
		Scanner: stream.NewScanner(source),
		lexemes: make([]Lexeme, 0, len(source)/2),
	}

	l.run()
	if err := l.Err(); err != nil {
		return nil, err
	}

	return l.lexemes, nil
}

// TokenizeString is a helper for Tokenize.
//
func TokenizeString(source string) ([]Lexeme, error) {
	return Tokenize([]byte(source))
}

func (l *lexer) run() {
	for l.Err() == nil {
		for isWhitespace(l.Next()) {
		}

		l.Backup()
		l.Advance()

		r := l.Next()
		switch {
		case r == stream.EOF:
			if l.Err() == nil {
				l.lexeme(EndOfFile)
			}

			return
		case r == ',':
			l.lexeme(Comma)
		case r == ';':
			l.lexeme(Semicolon)
		case r == '[':
			l.lexeme(BracketOpen)
		case r == ']':
			l.lexeme(BracketClose)
		case r == '+':
			l.lexeme(Plus)
		case r == '-':
			l.lexeme(Minus)
		case r == '|':
			l.lexeme(Pipe)
		case r == '!':
			l.lexeme(Bang)
		case r == '@':
			l.lexeme(At)
		case r == '.':
			l.scanDirective()
		case r == '%':
			l.scanRegister()
		case isDigit(r):
			l.scanNumber(r)
		case isLetter(r):
			l.scanName()
			l.lexeme(Identifier)
		case r == '/':
			l.scanComment()
		default:
			l.Errorf(diag.InvalidCharacter, fmt.Sprintf("invalid token %q", r))
		}
	}
}

func (l *lexer) lexeme(tok Token) {
	l.lexemes = append(l.lexemes, Lexeme{Token: tok, Span: l.Span(), Value: l.Text()})
}

func (l *lexer) scanName() {
	for r := l.Next(); isAlphanumeric(r); r = l.Next() {
	}

	l.Backup()
}

// scanComment is called after a '/' has been
// scanned. Line and block comments are discarded.
//
func (l *lexer) scanComment() {
	switch l.Next() {
	case '/':
		for r := l.Next(); r != stream.EOF && r != '\n'; r = l.Next() {
		}
	case '*':
		for {
			switch l.Next() {
			case '*':
				if l.Peek() == '/' {
					l.Next()
					return
				}
			case stream.EOF:
				l.Errorf(diag.UnterminatedToken, "block comment not terminated")
				return
			}
		}
	default:
		l.Errorf(diag.InvalidCharacter, "invalid token '/'")
	}
}

// scanDirective is called after the leading dot.
//
func (l *lexer) scanDirective() {
	if !isAlphanumeric(l.Peek()) {
		l.Next()
		l.Errorf(diag.InvalidToken, "invalid directive: '.' must be followed by a name")
		return
	}

	for {
		l.scanName()
		if l.Peek() != ':' {
			break
		}

		l.Next()
		if l.Next() != ':' || !isAlphanumeric(l.Peek()) {
			l.Errorf(diag.InvalidToken, "invalid directive: ':' must be followed by ':' and a name")
			return
		}
	}

	l.lexeme(Directive)
}

// scanRegister is called after the leading percent
// sign. Special registers may carry a vector
// component suffix, as in "%tid.x".
//
func (l *lexer) scanRegister() {
	if !isAlphanumeric(l.Peek()) {
		l.Next()
		l.Errorf(diag.InvalidToken, "invalid register: '%' must be followed by a name")
		return
	}

	l.scanName()

	// Look ahead for a component suffix
	// without consuming a directive.
	src := l.Lookahead(3)
	if len(src) >= 2 && src[0] == '.' && strings.IndexByte("xyzw", src[1]) >= 0 && (len(src) == 2 || !isAlphanumeric(rune(src[2]))) {
		l.Next()
		l.Next()
	}

	l.lexeme(RegisterName)
}

// scanNumber is called after the first digit of an
// integer or floating-point literal.
//
func (l *lexer) scanNumber(first rune) {
	if first == '0' {
		switch l.Peek() {
		case 'x', 'X':
			l.Next()
			if l.digits(isHexDigit) == 0 {
				l.Errorf(diag.InvalidToken, "invalid hexadecimal literal")
				return
			}

			l.integer()
			return
		case 'b', 'B':
			l.Next()
			if l.digits(isBinaryDigit) == 0 {
				l.Errorf(diag.InvalidToken, "invalid binary literal")
				return
			}

			l.integer()
			return
		case 'f', 'F':
			l.Next()
			l.hexFloat(8)
			return
		case 'd', 'D':
			l.Next()
			l.hexFloat(16)
			return
		}
	}

	l.digits(isDigit)
	float := false
	if l.Peek() == '.' {
		l.Next()
		if l.digits(isDigit) == 0 {
			l.Errorf(diag.InvalidToken, "invalid floating-point literal: '.' must be followed by digits")
			return
		}

		float = true
	}

	if r := l.Peek(); r == 'e' || r == 'E' {
		l.Next()
		if r := l.Peek(); r == '+' || r == '-' {
			l.Next()
		}

		if l.digits(isDigit) == 0 {
			l.Errorf(diag.InvalidToken, "invalid floating-point literal: missing exponent")
			return
		}

		float = true
	}

	if float {
		l.terminate(Float)
		return
	}

	l.integer()
}

// integer finishes an integer literal, with an
// optional unsigned suffix.
//
func (l *lexer) integer() {
	if l.Peek() == 'U' {
		l.Next()
	}

	l.terminate(Integer)
}

// hexFloat scans exactly n hexadecimal digits of
// an IEEE 754 bit pattern.
//
func (l *lexer) hexFloat(n int) {
	if got := l.digits(isHexDigit); got != n {
		l.Errorf(diag.InvalidToken, fmt.Sprintf("invalid floating-point literal: want %d hexadecimal digits, found %d", n, got))
		return
	}

	l.terminate(Float)
}

// terminate ensures a number is not immediately
// followed by a name character.
//
func (l *lexer) terminate(tok Token) {
	if isAlphanumeric(l.Peek()) {
		l.Next()
		l.Errorf(diag.InvalidToken, fmt.Sprintf("invalid %s literal", tok))
		return
	}

	l.lexeme(tok)
}

// digits consumes a run of digits matching fn,
// returning their number.
//
func (l *lexer) digits(fn func(rune) bool) int {
	n := 0
	for r := l.Next(); fn(r); r = l.Next() {
		n++
	}

	l.Backup()

	return n
}

// Rune predicates.

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_' || r == '$'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || 'a' <= r && r <= 'f' || 'A' <= r && r <= 'F'
}

func isBinaryDigit(r rune) bool {
	return r == '0' || r == '1'
}

func isAlphanumeric(r rune) bool {
	return isLetter(r) || isDigit(r)
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}
