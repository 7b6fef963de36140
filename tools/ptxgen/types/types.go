// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package types

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"firefly-os.dev/tools/ptxgen/ast"
	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/token"
)

// Name represents a name derived from
// specification text, split into words.
//
type Name []string

// NameOf splits text into words at each run of
// characters that are not ASCII letters or
// digits, so ".shared::cta" becomes
// {"shared", "cta"}.
//
func NameOf(text string) Name {
	return Name(strings.FieldsFunc(text, func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9')
	}))
}

// toTitle returns the word with the first rune
// in upper case and the remaining runes in lower
// case.
//
// This is similar to strings.Title, but we
// already know the string is alphanumeric only
// and contains no UTF-8 encoding errors.
//
func toTitle(s string) string {
	first, width := utf8.DecodeRuneInString(s)
	rest := s[width:]

	return string(unicode.ToUpper(first)) + strings.ToLower(rest)
}

// Spaced returns the name, separated by spaces.
//
func (n Name) Spaced() string {
	return strings.Join(n, " ")
}

// PascalCase returns the name in 'Pascal case',
// such as "PascalCase".
//
// A name starting with a digit is prefixed with
// "X", so the result is always a valid exported
// Go identifier, unless the name is empty.
//
func (n Name) PascalCase() string {
	title := make([]string, len(n))
	for i, s := range n {
		title[i] = toTitle(s)
	}

	out := strings.Join(title, "")
	if out != "" && '0' <= out[0] && out[0] <= '9' {
		out = "X" + out
	}

	return out
}

// CamelCase returns the name in 'camel case',
// such as "camelCase".
//
func (n Name) CamelCase() string {
	pascal := n.PascalCase()
	if pascal == "" {
		return ""
	}

	first, width := utf8.DecodeRuneInString(pascal)

	return string(unicode.ToLower(first)) + pascal[width:]
}

// Docs represents the documentation for a
// declaration, split into lines.
//
type Docs []string

func docsOf(group *ast.CommentGroup) Docs {
	return Docs(group.Lines())
}

// Spec is the analysed form of a whole
// specification.
//
type Spec struct {
	// Decls lists the families and type
	// declarations in source order. Each
	// family appears at the position of its
	// first form.
	Decls []Decl

	Families []*Family
	Types    []*TypeDecl
}

// Family returns the family with the given opcode,
// or nil.
//
func (s *Spec) Family(opcode string) *Family {
	for _, fam := range s.Families {
		if fam.Opcode == opcode {
			return fam
		}
	}

	return nil
}

// Decl is a top-level declaration: a *Family or a
// *TypeDecl.
//
type Decl interface {
	Pos() token.Position
	String() string
	decl()
}

var (
	_ Decl = (*Family)(nil)
	_ Decl = (*TypeDecl)(nil)
)

// Family is the set of forms that share an
// opcode.
//
type Family struct {
	Opcode string
	Forms  []*Form
	Docs   Docs

	// Name is the generated type's name,
	// assigned by the naming resolver.
	Name string
}

func (f *Family) Pos() token.Position { return f.Forms[0].Node.Pos() }
func (f *Family) String() string      { return "family " + f.Opcode }
func (f *Family) decl()               {}

// Union returns whether the family has more than
// one form.
//
func (f *Family) Union() bool { return len(f.Forms) > 1 }

// Form is one textual shape of an instruction.
//
type Form struct {
	Family     *Family
	Index      int // Position within the family.
	Qualifiers []*Qualifier
	Operands   []*Operand
	Docs       Docs
	Node       *ast.InstructionForm

	// Name is the union variant's name, assigned
	// by the naming resolver for families with
	// more than one form.
	Name string
}

func (f *Form) String() string { return f.Node.Source() }

// QualifierKind describes how a qualifier is
// matched.
//
type QualifierKind uint8

const (
	QualifierLiteral       QualifierKind = iota // .b32
	QualifierOptional                           // {.uni}
	QualifierTyped                              // .type
	QualifierOptionalTyped                      // {.level}
)

func (k QualifierKind) String() string {
	switch k {
	case QualifierLiteral:
		return "literal"
	case QualifierOptional:
		return "optional"
	case QualifierTyped:
		return "typed"
	case QualifierOptionalTyped:
		return "optional typed"
	}

	return "QualifierKind(" + strconv.Itoa(int(k)) + ")"
}

// Qualifier is a resolved qualifier in a form.
//
type Qualifier struct {
	Kind    QualifierKind
	Literal string    // The directive text, for literal kinds.
	Type    *TypeDecl // The placeholder's declaration, for typed kinds.
	Node    *ast.Qualifier
}

// Text returns the qualifier's directive text.
//
func (q *Qualifier) Text() string {
	return q.Node.Directive.Name
}

// Optional returns whether the qualifier may be
// absent.
//
func (q *Qualifier) Optional() bool {
	return q.Kind == QualifierOptional || q.Kind == QualifierOptionalTyped
}

// Flag returns whether the qualifier is recorded
// as a presence flag: an optional literal, or an
// optional placeholder with a single literal.
//
func (q *Qualifier) Flag() bool {
	return q.Kind == QualifierOptional || q.Kind == QualifierOptionalTyped && len(q.Type.Values) == 1
}

// FlagLiteral returns the literal whose presence
// a flag records.
//
func (q *Qualifier) FlagLiteral() string {
	if q.Kind == QualifierOptionalTyped {
		return q.Type.Values[0]
	}

	return q.Literal
}

// Operand is a resolved operand slot in a form.
//
type Operand struct {
	Name      string
	Kind      ptx.Kind
	Secondary *Operand // Operand after "|", or nil.
	Node      *ast.Operand
}

// TypeDecl is a placeholder's set of literal
// values.
//
type TypeDecl struct {
	Placeholder string   // Such as ".type".
	Values      []string // Literals, in declared order.
	Docs        Docs
	Node        *ast.TypeDecl

	// Scope is the family the declaration
	// belongs to, or nil if the specification
	// has no forms.
	Scope *Family

	// Alias is the declaration this one
	// aliases, or nil.
	Alias *TypeDecl

	// Name is the generated enumeration's
	// name, assigned by the naming resolver.
	Name string
}

func (t *TypeDecl) Pos() token.Position { return t.Node.Pos() }
func (t *TypeDecl) String() string      { return "type " + t.Placeholder }
func (t *TypeDecl) decl()               {}
