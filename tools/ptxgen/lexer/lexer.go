// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package lexer includes functionality for scanning an instruction
// syntax specification into a sequence of tokens.
//
package lexer

import (
	"fmt"
	"unicode"

	"firefly-os.dev/tools/ptxgen/diag"
	"firefly-os.dev/tools/ptxgen/stream"
	"firefly-os.dev/tools/ptxgen/token"
)

// Lexeme describes a token, its span, and its textual
// value.
//
type Lexeme = stream.Lexeme[token.Token]

// lexer scans a sequence of bytes, producing a sequence of
// specification tokens.
//
type lexer struct {
	*stream.Scanner
	lexemes []Lexeme
}

// Tokenize scans the given specification source, producing
// a sequence of lexical tokens terminated by an EndOfFile
// token.
//
// Whitespace and comments are discarded, other than doc
// comments (starting with "///"), which are retained so
// they can be attached to the following declaration.
//
func Tokenize(source []byte) ([]Lexeme, error) {
	l := &lexer{
		Scanner: stream.NewScanner(source),
		lexemes: make([]Lexeme, 0, len(source)/4),
	}

	l.run()
	if err := l.Err(); err != nil {
		return nil, err
	}

	return l.lexemes, nil
}

// run scans through the lexer's source, emitting tokens
// until the end of the file is reached or an error is
// encountered.
//
func (l *lexer) run() {
	for l.Err() == nil {
		// Skip over any whitespace.
		for isWhitespace(l.Next()) {
		}

		l.Backup()
		l.Advance()

		r := l.Next()
		switch {
		case r == stream.EOF:
			if l.Err() == nil {
				l.lexeme(token.EndOfFile)
			}

			return
		case r == ',':
			l.lexeme(token.Comma)
		case r == ';':
			l.lexeme(token.Semicolon)
		case r == '{':
			l.lexeme(token.BraceOpen)
		case r == '}':
			l.lexeme(token.BraceClose)
		case r == '|':
			l.lexeme(token.Pipe)
		case r == '[':
			l.lexeme(token.BracketOpen)
		case r == ']':
			l.lexeme(token.BracketClose)
		case r == '=':
			l.lexeme(token.Equals)
		case r == '.':
			l.scanDirective()
		case isLetter(r):
			l.scanIdentifier()
			l.lexeme(token.Identifier)
		case r == '/':
			l.scanComment()
		default:
			l.Errorf(diag.InvalidCharacter, fmt.Sprintf("invalid token %q", r))
		}
	}
}

// lexeme records a token covering the text since the
// last call to Advance.
//
func (l *lexer) lexeme(tok token.Token) {
	l.lexemes = append(l.lexemes, Lexeme{Token: tok, Span: l.Span(), Value: l.Text()})
}

// scanIdentifier is called after the first letter
// of an identifier has been scanned.
//
func (l *lexer) scanIdentifier() {
	for r := l.Next(); isAlphanumeric(r); r = l.Next() {
	}

	l.Backup()
}

// scanDirective is called after the leading dot. A
// directive is an identifier, optionally followed by
// further "::"-separated identifiers, which are kept
// in the same token.
//
func (l *lexer) scanDirective() {
	if !isAlphanumeric(l.Peek()) {
		l.Next()
		l.Errorf(diag.InvalidToken, "invalid directive: '.' must be followed by a name")
		return
	}

	for {
		l.scanIdentifier()
		if l.Peek() != ':' {
			break
		}

		l.Next()
		if l.Next() != ':' || !isAlphanumeric(l.Peek()) {
			l.Errorf(diag.InvalidToken, "invalid directive: ':' must be followed by ':' and a name")
			return
		}
	}

	l.lexeme(token.Directive)
}

// scanComment is called after a '/' has been
// scanned.
//
func (l *lexer) scanComment() {
	switch l.Next() {
	case '/':
		doc := l.Peek() == '/'
		var r rune
		for r = l.Next(); r != stream.EOF && r != '\n'; r = l.Next() {
		}

		// Don't include the trailing newline.
		if r == '\n' {
			l.Backup()
		}

		if doc {
			l.lexeme(token.DocComment)
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

// Rune predicates.

func isLetter(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || r == '_'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

func isAlphanumeric(r rune) bool {
	return isLetter(r) || isDigit(r)
}

func isWhitespace(r rune) bool {
	return r != stream.EOF && unicode.IsSpace(r)
}
