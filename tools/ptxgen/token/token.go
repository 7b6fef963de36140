// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package token contains constants for the lexical tokens in the
// instruction syntax specification language and types to compactly
// store a position or span in a specification.
//
package token

import (
	"strconv"
)

// Token is the set of lexical tokens in an instruction
// syntax specification.
//
type Token int

const (
	// Special tokens.
	EndOfFile Token = iota

	// Primitive tokens.
	Identifier   // activemask
	Directive    // .shared::cta
	Comma        // ,
	Semicolon    // ;
	BraceOpen    // {
	BraceClose   // }
	Pipe         // |
	BracketOpen  // [
	BracketClose // ]
	Equals       // =
	DocComment   // /// Foo

	endTokens
)

var tokens = [...]string{
	EndOfFile: "end of file",

	Identifier:   "identifier",
	Directive:    "directive",
	Comma:        "comma",
	Semicolon:    "semicolon",
	BraceOpen:    "opening brace",
	BraceClose:   "closing brace",
	Pipe:         "pipe",
	BracketOpen:  "opening bracket",
	BracketClose: "closing bracket",
	Equals:       "equals sign",
	DocComment:   "doc comment",
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
