// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package ptx contains the runtime shared by every instruction
// parser and unparser, whether interpreted from a specification
// in memory or emitted as Go source.
//
// It provides the instruction token set and lexer, the terminal
// grammars for each operand kind, helpers for matching opcodes and
// qualifiers with precise diagnostics, and a Printer that renders
// instructions back into tokens.
//
package ptx

import (
	"strconv"

	"firefly-os.dev/tools/ptxgen/stream"
)

// Token represents a lexical token in instruction text.
//
type Token int

const (
	// Special tokens.
	EndOfFile Token = iota

	// Primitive tokens.
	Identifier   // add
	Directive    // .s32
	RegisterName // %r1
	Integer      // 0x10
	Float        // 0f3F800000
	Comma        // ,
	Semicolon    // ;
	BracketOpen  // [
	BracketClose // ]
	Plus         // +
	Minus        // -
	Pipe         // |
	Bang         // !
	At           // @

	// Layout tokens, only produced by a Printer.
	Space   // " "
	Newline // "\n"

	endTokens
)

var tokens = [...]string{
	EndOfFile: "end of file",

	Identifier:   "identifier",
	Directive:    "directive",
	RegisterName: "register",
	Integer:      "integer",
	Float:        "float",
	Comma:        "comma",
	Semicolon:    "semicolon",
	BracketOpen:  "opening bracket",
	BracketClose: "closing bracket",
	Plus:         "plus",
	Minus:        "minus",
	Pipe:         "pipe",
	Bang:         "exclamation mark",
	At:           "at sign",

	Space:   "space",
	Newline: "newline",
}

// String returns the textual representation for
// the token t.
//
func (t Token) String() string {
	if 0 <= t && t < endTokens {
		return tokens[t]
	}

	return "Token(" + strconv.Itoa(int(t)) + ")"
}

// Lexeme is a token in instruction text.
//
type Lexeme = stream.Lexeme[Token]

// Stream is a cursor over instruction tokens.
//
type Stream = stream.Stream[Token]

// NewStream returns a stream over the given lexemes.
//
func NewStream(lexemes []Lexeme) *Stream {
	return stream.New(lexemes)
}
