// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package ast contains the types representing instruction syntax
// specification trees.
//
package ast

import (
	"strings"

	"firefly-os.dev/tools/ptxgen/token"
)

// All nodes contain position information marking the
// beginning and end of the node.

// Node represents a node in the syntax tree.
//
type Node interface {
	String() string      // A textual description of the node.
	Pos() token.Position // Location of the first character of the node.
	End() token.Position // Location of the first character after the node.
}

// Decl represents a top-level declaration: either an
// instruction form or a type declaration.
//
type Decl interface {
	Node
	declNode()
}

// Terminal nodes.

type (
	// Ident represents an opcode or operand name.
	//
	Ident struct {
		NamePos token.Position // Identifier position.
		Name    string         // Identifier name.
	}

	// Directive represents a dot-prefixed name, such
	// as ".b32" or ".shared::cta".
	//
	Directive struct {
		NamePos token.Position // Position of the dot.
		Name    string         // Directive text, including the dot.
	}
)

func (x *Ident) String() string          { return "identifier" }
func (x *Ident) Pos() token.Position     { return x.NamePos }
func (x *Ident) End() token.Position     { return x.NamePos.Advance(len(x.Name)) }
func (x *Directive) String() string      { return "directive" }
func (x *Directive) Pos() token.Position { return x.NamePos }
func (x *Directive) End() token.Position { return x.NamePos.Advance(len(x.Name)) }

// Span returns the span of the directive.
func (x *Directive) Span() token.Span { return token.Span{Start: x.Pos(), End: x.End()} }

// Qualifier represents a directive in an instruction
// form, optionally wrapped in braces.
//
type Qualifier struct {
	BraceOpen  token.Position // Position of "{", or zero if mandatory.
	Directive  *Directive
	BraceClose token.Position // Position of "}", or zero if mandatory.
}

// Optional returns whether the qualifier was
// wrapped in braces.
//
func (q *Qualifier) Optional() bool { return q.BraceOpen.IsValid() }

func (q *Qualifier) String() string { return "qualifier" }
func (q *Qualifier) Pos() token.Position {
	if q.Optional() {
		return q.BraceOpen
	}

	return q.Directive.Pos()
}
func (q *Qualifier) End() token.Position {
	if q.Optional() {
		return q.BraceClose.Advance(1)
	}

	return q.Directive.End()
}

// Operand represents an operand slot, such as "d",
// "[a]", or "p|q".
//
type Operand struct {
	BracketOpen  token.Position // Position of "[", or zero if not an address.
	Name         *Ident
	BracketClose token.Position // Position of "]", or zero if not an address.
	Pipe         token.Position // Position of "|", or zero if there is no alternate.
	Alternate    *Ident         // Secondary operand after "|", or nil.
}

// Address returns whether the operand was wrapped
// in brackets.
//
func (o *Operand) Address() bool { return o.BracketOpen.IsValid() }

func (o *Operand) String() string { return "operand" }
func (o *Operand) Pos() token.Position {
	if o.Address() {
		return o.BracketOpen
	}

	return o.Name.Pos()
}
func (o *Operand) End() token.Position {
	switch {
	case o.Alternate != nil:
		return o.Alternate.End()
	case o.Address():
		return o.BracketClose.Advance(1)
	}

	return o.Name.End()
}

// Declarations.

type (
	// InstructionForm represents one textual form of
	// an instruction, such as:
	//
	// 	ld{.weak}{.ss}.type d, [a];
	//
	InstructionForm struct {
		Doc        *CommentGroup // Associated documentation, or nil.
		Opcode     *Ident
		Qualifiers []*Qualifier
		Operands   []*Operand
		Semicolon  token.Position
	}

	// TypeDecl represents the declaration of a
	// placeholder's literal values, such as:
	//
	// 	.mode = { .clamp, .wrap };
	//
	// or an alias of another placeholder:
	//
	// 	.dtype = .type;
	//
	TypeDecl struct {
		Doc        *CommentGroup // Associated documentation, or nil.
		Name       *Directive
		Equals     token.Position
		BraceOpen  token.Position // Zero for an alias.
		Values     []*Directive   // Nil for an alias.
		BraceClose token.Position // Zero for an alias.
		Alias      *Directive     // Nil unless an alias.
		Semicolon  token.Position
	}
)

var (
	_ Decl = (*InstructionForm)(nil)
	_ Decl = (*TypeDecl)(nil)
)

func (d *InstructionForm) String() string      { return "instruction form" }
func (d *InstructionForm) Pos() token.Position { return d.Opcode.Pos() }
func (d *InstructionForm) End() token.Position { return d.Semicolon.Advance(1) }
func (d *InstructionForm) declNode()           {}

// Span returns the span of the whole form.
func (d *InstructionForm) Span() token.Span { return token.Span{Start: d.Pos(), End: d.End()} }

// Source returns the canonical text of the form.
//
func (d *InstructionForm) Source() string {
	var b strings.Builder
	b.WriteString(d.Opcode.Name)
	for _, q := range d.Qualifiers {
		if q.Optional() {
			b.WriteString("{" + q.Directive.Name + "}")
		} else {
			b.WriteString(q.Directive.Name)
		}
	}

	for i, op := range d.Operands {
		if i == 0 {
			b.WriteByte(' ')
		} else {
			b.WriteString(", ")
		}

		if op.Address() {
			b.WriteString("[" + op.Name.Name + "]")
		} else {
			b.WriteString(op.Name.Name)
		}

		if op.Alternate != nil {
			b.WriteString("|" + op.Alternate.Name)
		}
	}

	b.WriteByte(';')

	return b.String()
}

func (d *TypeDecl) String() string      { return "type declaration" }
func (d *TypeDecl) Pos() token.Position { return d.Name.Pos() }
func (d *TypeDecl) End() token.Position { return d.Semicolon.Advance(1) }
func (d *TypeDecl) declNode()           {}

// Span returns the span of the declaration's name.
func (d *TypeDecl) Span() token.Span { return d.Name.Span() }

// A Comment node represents a single ///-style doc comment.
//
type Comment struct {
	Slash token.Position // Position of '/' starting the comment.
	Text  string         // Comment text (including the "///", excluding any trailing '\n').
}

func (c *Comment) String() string      { return "comment" }
func (c *Comment) Pos() token.Position { return c.Slash }
func (c *Comment) End() token.Position { return c.Slash.Advance(len(c.Text)) }

// A CommentGroup represents a sequence of doc comments
// immediately preceding a declaration.
//
type CommentGroup struct {
	List []*Comment // len(List) > 0
}

func (g *CommentGroup) String() string      { return "comment" }
func (g *CommentGroup) Pos() token.Position { return g.List[0].Pos() }
func (g *CommentGroup) End() token.Position { return g.List[len(g.List)-1].End() }

// Lines returns the text of the comment group, as a sequence of
// lines.
//
// Comment markers ("///"), the first space of each line, and
// leading blank lines are removed. Runs of interior blank lines
// are reduced to one, and trailing space on lines is trimmed.
//
func (g *CommentGroup) Lines() []string {
	if g == nil {
		return nil
	}

	lines := make([]string, 0, len(g.List))
	for _, c := range g.List {
		text := strings.TrimPrefix(c.Text, "///")
		text = strings.TrimPrefix(text, " ")
		lines = append(lines, strings.TrimRight(text, " \t\r"))
	}

	n := 0
	for _, line := range lines {
		if line != "" || n > 0 && lines[n-1] != "" {
			lines[n] = line
			n++
		}
	}

	// Drop a trailing blank line.
	if n > 0 && lines[n-1] == "" {
		n--
	}

	return lines[:n]
}

// Text returns the text of the comment group, newline
// terminated unless empty.
//
func (g *CommentGroup) Text() string {
	lines := g.Lines()
	if len(lines) == 0 {
		return ""
	}

	return strings.Join(lines, "\n") + "\n"
}

// File represents a whole specification.
//
type File struct {
	Decls []Decl // Top-level declarations in source order.
}

var _ Node = (*File)(nil)

func (f *File) String() string      { return "file" }
func (f *File) Pos() token.Position { return token.FileStart }
func (f *File) End() token.Position {
	if n := len(f.Decls); n > 0 {
		return f.Decls[n-1].End()
	}

	return token.FileStart
}
