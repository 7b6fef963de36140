// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package types contains the specification analyser, which groups
// instruction forms into families, scopes and resolves placeholder
// declarations, and assigns operand kinds, storing the result in a
// more constrained representation.
//
package types

import (
	"fmt"

	"golang.org/x/exp/slices"

	"firefly-os.dev/tools/ptxgen/ast"
	"firefly-os.dev/tools/ptxgen/diag"
	"firefly-os.dev/tools/ptxgen/ptx"
)

// Options controls the analysis.
//
type Options struct {
	// OperandKinds maps operand names to the kinds
	// they accept, overriding the built-in naming
	// conventions.
	OperandKinds map[string]ptx.Kind
}

// defaultOperandKinds contains the conventional
// operand names used in instruction syntax. Any
// other name accepts a register or an immediate.
//
var defaultOperandKinds = map[string]ptx.Kind{
	"d":      ptx.KindRegister,
	"p":      ptx.KindPredicate,
	"q":      ptx.KindPredicate,
	"pred":   ptx.KindPredicate,
	"tgt":    ptx.KindLabel,
	"target": ptx.KindLabel,
	"label":  ptx.KindLabel,
	"imm":    ptx.KindImmediate,
	"n":      ptx.KindImmediate,
}

const fallbackOperandKind = ptx.KindRegister | ptx.KindImmediate

// interpreter is used to process a parsed
// specification.
//
type interpreter struct {
	opts Options
	out  *Spec

	families map[string]*Family // Mapping of opcode to family.
	decls    []*TypeDecl        // Every type declaration, in source order.

	// duplicates records declarations of a
	// placeholder already declared in the same
	// scope, mapped to the first declaration.
	duplicates map[*TypeDecl]*TypeDecl
}

// Interpret processes a parsed specification,
// producing its analysed form.
//
// Any error returned wraps one of the diag errors,
// which can be recovered with errors.As.
//
func Interpret(filename string, file *ast.File, opts Options) (*Spec, error) {
	i := &interpreter{
		opts:       opts,
		out:        new(Spec),
		families:   make(map[string]*Family),
		duplicates: make(map[*TypeDecl]*TypeDecl),
	}

	err := i.interpretFile(file)
	if err != nil {
		if filename == "" {
			return nil, err
		}

		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return i.out, nil
}

// interpretFile is the entry point for the
// interpreter.
//
func (i *interpreter) interpretFile(file *ast.File) error {
	i.collect(file)

	for _, t := range i.decls {
		if err := i.resolveAlias(t, make(map[*TypeDecl]bool)); err != nil {
			return err
		}
	}

	// Merge identical redeclarations and reject
	// conflicting ones.
	merged := make(map[*TypeDecl]bool)
	for _, t := range i.decls {
		first := i.duplicates[t]
		if first == nil {
			continue
		}

		if !sameValues(first.Values, t.Values) {
			return &diag.DuplicateDeclaration{
				Name:   t.Placeholder,
				First:  first.Node.Span(),
				Second: t.Node.Span(),
			}
		}

		merged[t] = true
	}

	decls := i.out.Decls[:0]
	for _, decl := range i.out.Decls {
		if t, ok := decl.(*TypeDecl); ok {
			if merged[t] {
				continue
			}

			i.out.Types = append(i.out.Types, t)
		}

		decls = append(decls, decl)
	}

	i.out.Decls = decls

	for _, fam := range i.out.Families {
		for _, form := range fam.Forms {
			i.interpretForm(form)
		}
	}

	return nil
}

// collect builds the families and type declarations,
// determining each declaration's scope.
//
// A type declaration belongs to the family of the
// nearest preceding form, or to that of the next
// form if no form precedes it.
//
func (i *interpreter) collect(file *ast.File) {
	var current *Family
	var pending []*TypeDecl
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.InstructionForm:
			fam := i.families[decl.Opcode.Name]
			if fam == nil {
				fam = &Family{
					Opcode: decl.Opcode.Name,
					Docs:   docsOf(decl.Doc),
				}

				i.families[fam.Opcode] = fam
				i.out.Families = append(i.out.Families, fam)
				i.out.Decls = append(i.out.Decls, fam)
			}

			form := &Form{
				Family: fam,
				Index:  len(fam.Forms),
				Docs:   docsOf(decl.Doc),
				Node:   decl,
			}

			fam.Forms = append(fam.Forms, form)
			current = fam
			for _, t := range pending {
				t.Scope = fam
			}

			pending = nil
		case *ast.TypeDecl:
			t := &TypeDecl{
				Placeholder: decl.Name.Name,
				Docs:        docsOf(decl.Doc),
				Node:        decl,
				Scope:       current,
			}

			for _, value := range decl.Values {
				// A repeated literal adds nothing.
				if !slices.Contains(t.Values, value.Name) {
					t.Values = append(t.Values, value.Name)
				}
			}

			if current == nil {
				pending = append(pending, t)
			}

			i.decls = append(i.decls, t)
			i.out.Decls = append(i.out.Decls, t)
		}
	}

	// Scopes are only known once every
	// declaration has been collected.
	for n, t := range i.decls {
		for _, prev := range i.decls[:n] {
			if prev.Placeholder == t.Placeholder && prev.Scope == t.Scope && i.duplicates[prev] == nil {
				i.duplicates[t] = prev
				break
			}
		}
	}
}

// lookup returns the declaration of the named
// placeholder visible from the given scope: the
// first declared in that scope, or otherwise the
// first declared anywhere. The declaration
// exclude is never returned.
//
func (i *interpreter) lookup(scope *Family, name string, exclude *TypeDecl) *TypeDecl {
	for _, t := range i.decls {
		if t != exclude && t.Scope == scope && t.Placeholder == name {
			return t
		}
	}

	for _, t := range i.decls {
		if t != exclude && t.Placeholder == name {
			return t
		}
	}

	return nil
}

// resolveAlias determines the literal values of
// an alias declaration. Aliases that form a cycle
// never reach a set of values, so are reported
// as unknown references.
//
func (i *interpreter) resolveAlias(t *TypeDecl, seen map[*TypeDecl]bool) error {
	alias := t.Node.Alias
	if alias == nil || t.Alias != nil {
		return nil
	}

	if seen[t] {
		return &diag.UnknownTypeReference{Name: alias.Name, Span: alias.Span()}
	}

	seen[t] = true
	target := i.lookup(t.Scope, alias.Name, t)
	if target == nil {
		return &diag.UnknownTypeReference{Name: alias.Name, Span: alias.Span()}
	}

	if err := i.resolveAlias(target, seen); err != nil {
		return err
	}

	t.Alias = target
	t.Values = slices.Clone(target.Values)

	return nil
}

// sameValues returns whether two declarations
// have the same set of literals, in any order.
//
func sameValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for _, value := range a {
		if !slices.Contains(b, value) {
			return false
		}
	}

	return true
}

// interpretForm resolves a form's qualifiers and
// operands.
//
func (i *interpreter) interpretForm(form *Form) {
	for _, node := range form.Node.Qualifiers {
		q := &Qualifier{Node: node}
		name := node.Directive.Name
		if t := i.lookup(form.Family, name, nil); t != nil {
			q.Type = t
			q.Kind = QualifierTyped
			if node.Optional() {
				q.Kind = QualifierOptionalTyped
			}
		} else {
			q.Literal = name
			q.Kind = QualifierLiteral
			if node.Optional() {
				q.Kind = QualifierOptional
			}
		}

		form.Qualifiers = append(form.Qualifiers, q)
	}

	for _, node := range form.Node.Operands {
		op := &Operand{
			Name: node.Name.Name,
			Kind: i.operandKind(node.Name.Name),
			Node: node,
		}

		if node.Address() {
			op.Kind = ptx.KindAddress
		}

		if node.Alternate != nil {
			op.Secondary = &Operand{
				Name: node.Alternate.Name,
				Kind: i.operandKind(node.Alternate.Name),
				Node: node,
			}
		}

		form.Operands = append(form.Operands, op)
	}
}

// operandKind returns the kinds accepted by an
// operand with the given name.
//
func (i *interpreter) operandKind(name string) ptx.Kind {
	if kind, ok := i.opts.OperandKinds[name]; ok && kind != 0 {
		return kind
	}

	if kind, ok := defaultOperandKinds[name]; ok {
		return kind
	}

	return fallbackOperandKind
}
