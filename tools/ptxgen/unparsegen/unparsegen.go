// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package unparsegen derives the inverse of each instruction parser:
// a serializer that renders a typegen.Value back into ptx tokens in
// its canonical order.
//
package unparsegen

import (
	"fmt"
	"strings"

	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/typegen"
)

// Serializer renders values of one record.
//
type Serializer struct {
	Record *typegen.Record
}

// Unparse prints v, which must be a valid value of
// the serializer's record.
//
// The opcode comes first, followed by each qualifier
// in declared order. Mandatory literals are always
// printed, while flags and optional enumerations are
// printed only when set. The operands follow,
// separated by commas, and then the semicolon.
//
func (s *Serializer) Unparse(p *ptx.Printer, v *typegen.Value) error {
	if v.Record != s.Record {
		return fmt.Errorf("cannot unparse %s with the serializer for %s", v.Record.Name, s.Record.Name)
	}

	if err := v.Validate(); err != nil {
		return err
	}

	operands := 0
	for _, elt := range s.Record.Syntax {
		switch elt.Kind {
		case typegen.ElementOpcode:
			p.Opcode(elt.Literal)
		case typegen.ElementLiteral:
			p.Directive(elt.Literal)
		case typegen.ElementFlag:
			if v.Fields[elt.Field].Flag {
				p.Directive(elt.Literal)
			}
		case typegen.ElementEnum, typegen.ElementOptionalEnum:
			if enum := v.Fields[elt.Field].Enum; enum != "" {
				p.Directive(enum)
			}
		case typegen.ElementOperand:
			if operands == 0 {
				p.BeginOperands()
			} else {
				p.Comma()
			}

			operands++
			v.Fields[elt.Field].Operand.Unparse(p)
			if elt.Secondary >= 0 {
				if op := v.Fields[elt.Secondary].Operand; op != nil {
					p.Pipe()
					op.Unparse(p)
				}
			}
		default:
			return fmt.Errorf("%s: unexpected syntax element %s", s.Record.Name, elt.Kind)
		}
	}

	p.Semicolon()

	return nil
}

// Artifacts contains the serializers for a whole
// specification.
//
type Artifacts struct {
	Serializers []*Serializer // In declared order.
	byRecord    map[*typegen.Record]*Serializer
}

// Serializer returns the serializer for the given
// record.
//
func (a *Artifacts) Serializer(rec *typegen.Record) (*Serializer, bool) {
	s, ok := a.byRecord[rec]
	return s, ok
}

// Unparse renders a value as a sequence of lexemes,
// laid out according to mode.
//
func (a *Artifacts) Unparse(v *typegen.Value, mode ptx.Mode) ([]ptx.Lexeme, error) {
	p := ptx.NewPrinter(mode)
	if err := a.unparse(p, v); err != nil {
		return nil, err
	}

	return p.Lexemes(), nil
}

// Text renders a value as text, laid out according
// to mode.
//
func (a *Artifacts) Text(v *typegen.Value, mode ptx.Mode) (string, error) {
	lexemes, err := a.Unparse(v, mode)
	if err != nil {
		return "", err
	}

	return ptx.Render(lexemes), nil
}

// Listing renders a sequence of values as text. In
// compact mode, instructions are separated by a
// newline.
//
func (a *Artifacts) Listing(values []*typegen.Value, mode ptx.Mode) (string, error) {
	var b strings.Builder
	for _, v := range values {
		p := ptx.NewPrinter(mode)
		if err := a.unparse(p, v); err != nil {
			return "", err
		}

		b.WriteString(p.String())
		if mode == ptx.Compact {
			b.WriteByte('\n')
		}
	}

	return b.String(), nil
}

func (a *Artifacts) unparse(p *ptx.Printer, v *typegen.Value) error {
	s, ok := a.byRecord[v.Record]
	if !ok {
		return fmt.Errorf("no serializer for %s", v.Record.Name)
	}

	return s.Unparse(p, v)
}

// Generate produces a serializer for every record in
// the definitions.
//
func Generate(defs *typegen.Definitions) (*Artifacts, error) {
	a := &Artifacts{byRecord: make(map[*typegen.Record]*Serializer)}
	for _, fam := range defs.Families {
		for _, rec := range fam.Records {
			if len(rec.Syntax) == 0 || rec.Syntax[0].Kind != typegen.ElementOpcode {
				return nil, fmt.Errorf("%s: syntax does not start with the opcode", rec.Name)
			}

			s := &Serializer{Record: rec}
			a.Serializers = append(a.Serializers, s)
			a.byRecord[rec] = s
		}
	}

	return a, nil
}
