// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"strconv"
	"strings"
)

// Mode determines the layout produced by a Printer.
//
type Mode uint8

const (
	// Compact inserts a single space between the
	// instruction head and its operands and nothing
	// else. This is the canonical text.
	Compact Mode = iota

	// Spaced also inserts a space after each comma
	// and a newline after the semicolon.
	Spaced
)

func (m Mode) String() string {
	switch m {
	case Compact:
		return "compact"
	case Spaced:
		return "spaced"
	}

	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Instruction is implemented by every instruction
// type.
//
type Instruction interface {
	Unparse(p *Printer)
}

// Printer accumulates the lexemes of unparsed
// instructions.
//
type Printer struct {
	mode    Mode
	lexemes []Lexeme
}

// NewPrinter returns a printer using the given
// layout.
//
func NewPrinter(mode Mode) *Printer {
	return &Printer{mode: mode}
}

// Mode returns the printer's layout.
//
func (p *Printer) Mode() Mode { return p.mode }

// Token appends a lexeme.
//
func (p *Printer) Token(tok Token, text string) {
	p.lexemes = append(p.lexemes, Lexeme{Token: tok, Value: text})
}

// Opcode appends an instruction's opcode.
//
func (p *Printer) Opcode(name string) { p.Token(Identifier, name) }

// Directive appends a qualifier.
//
func (p *Printer) Directive(literal string) { p.Token(Directive, literal) }

// BeginOperands separates the instruction head
// from its operands.
//
func (p *Printer) BeginOperands() { p.Token(Space, " ") }

// Comma separates two operands.
//
func (p *Printer) Comma() {
	p.Token(Comma, ",")
	if p.mode == Spaced {
		p.Token(Space, " ")
	}
}

// Pipe introduces a secondary operand.
//
func (p *Printer) Pipe() { p.Token(Pipe, "|") }

// Semicolon terminates an instruction.
//
func (p *Printer) Semicolon() {
	p.Token(Semicolon, ";")
	if p.mode == Spaced {
		p.Token(Newline, "\n")
	}
}

// Lexemes returns the lexemes printed so far.
//
func (p *Printer) Lexemes() []Lexeme {
	return p.lexemes
}

// String returns the text printed so far.
//
func (p *Printer) String() string {
	return Render(p.lexemes)
}

// Render returns the text of a lexeme sequence.
//
func Render(lexemes []Lexeme) string {
	var b strings.Builder
	for _, l := range lexemes {
		b.WriteString(l.Value)
	}

	return b.String()
}

// Format renders a single instruction.
//
func Format(insn Instruction, mode Mode) string {
	p := NewPrinter(mode)
	insn.Unparse(p)

	return p.String()
}
