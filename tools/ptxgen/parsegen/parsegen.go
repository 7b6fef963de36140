// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package parsegen derives an instruction parser from each record's
// syntax. A parser is a fixed sequence of steps, executed left to
// right over a ptx token stream without backtracking, producing a
// typegen.Value or a diag error.
//
package parsegen

import (
	"fmt"
	"strconv"
	"strings"

	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/typegen"
	"firefly-os.dev/tools/ptxgen/types"
)

// Parser is implemented by every instruction
// parser. The stream must be positioned at the
// instruction's opcode.
//
type Parser interface {
	Parse(s *ptx.Stream) (*typegen.Value, error)
}

var (
	_ Parser = (*Procedure)(nil)
	_ Parser = (*FamilyParser)(nil)
	_ Parser = (*Artifacts)(nil)
)

// StepKind describes a parsing step.
//
type StepKind uint8

const (
	StepOpcode        StepKind = iota // Match the opcode.
	StepLiteral                       // Match a mandatory literal.
	StepFlag                          // Accept an optional literal.
	StepEnum                          // Match a typed qualifier.
	StepOptionalEnum                  // Accept an optional typed qualifier.
	StepEndQualifiers                 // Reject any remaining qualifier.
	StepOperand                       // Parse an operand.
	StepComma                         // Match the comma between operands.
	StepSemicolon                     // Match the terminating semicolon.
)

func (k StepKind) String() string {
	switch k {
	case StepOpcode:
		return "opcode"
	case StepLiteral:
		return "literal"
	case StepFlag:
		return "flag"
	case StepEnum:
		return "enum"
	case StepOptionalEnum:
		return "optional enum"
	case StepEndQualifiers:
		return "end of qualifiers"
	case StepOperand:
		return "operand"
	case StepComma:
		return "comma"
	case StepSemicolon:
		return "semicolon"
	}

	return "StepKind(" + strconv.Itoa(int(k)) + ")"
}

// Step is one step of a procedure.
//
type Step struct {
	Kind     StepKind
	Literal  string   // Opcode or literal to match.
	Literals []string // Enumeration literals, in declared order.
	Field    int      // Field set by the step, or -1.

	// Operand steps.
	Operand       ptx.Kind
	Secondary     int // Field for a secondary operand, or -1.
	SecondaryKind ptx.Kind

	// Expected describes what may follow the
	// qualifiers, for StepEndQualifiers.
	Expected []string
}

func (s Step) String() string {
	switch s.Kind {
	case StepOpcode, StepLiteral, StepFlag:
		return s.Kind.String() + " " + strconv.Quote(s.Literal)
	case StepEnum, StepOptionalEnum:
		return s.Kind.String() + " " + strings.Join(s.Literals, "|")
	case StepOperand:
		if s.Secondary >= 0 {
			return fmt.Sprintf("operand %s | %s", s.Operand, s.SecondaryKind)
		}

		return "operand " + s.Operand.String()
	}

	return s.Kind.String()
}

// Procedure parses one form.
//
type Procedure struct {
	Record *typegen.Record
	Steps  []Step

	// head is the number of steps up to and
	// including StepEndQualifiers.
	head int
}

// Head returns the steps that match the opcode and
// qualifiers.
//
func (p *Procedure) Head() []Step { return p.Steps[:p.head] }

// Parse parses an instruction of the procedure's
// form.
//
func (p *Procedure) Parse(s *ptx.Stream) (*typegen.Value, error) {
	v := typegen.NewValue(p.Record)
	if err := p.run(s, v, p.Steps); err != nil {
		return nil, err
	}

	return v, nil
}

// run executes the given steps, storing the results
// in v.
//
func (p *Procedure) run(s *ptx.Stream, v *typegen.Value, steps []Step) error {
	for _, step := range steps {
		switch step.Kind {
		case StepOpcode:
			if err := ptx.ExpectOpcode(s, step.Literal); err != nil {
				return err
			}
		case StepLiteral:
			if err := ptx.ExpectDirective(s, step.Literal); err != nil {
				return err
			}
		case StepFlag:
			v.Fields[step.Field].Flag = ptx.AcceptDirective(s, step.Literal)
		case StepEnum:
			i, err := ptx.ExpectOneOf(s, step.Literals)
			if err != nil {
				return err
			}

			v.Fields[step.Field].Enum = step.Literals[i]
		case StepOptionalEnum:
			if i, ok := ptx.AcceptOneOf(s, step.Literals); ok {
				v.Fields[step.Field].Enum = step.Literals[i]
			}
		case StepEndQualifiers:
			if err := ptx.ExpectEndOfQualifiers(s, step.Expected...); err != nil {
				return err
			}
		case StepOperand:
			op, err := ptx.ParseOperand(s, step.Operand)
			if err != nil {
				return err
			}

			v.Fields[step.Field].Operand = op
			if step.Secondary >= 0 && ptx.AcceptPipe(s) {
				op, err := ptx.ParseOperand(s, step.SecondaryKind)
				if err != nil {
					return err
				}

				v.Fields[step.Secondary].Operand = op
			}
		case StepComma:
			if err := ptx.ExpectComma(s); err != nil {
				return err
			}
		case StepSemicolon:
			if err := ptx.ExpectSemicolon(s); err != nil {
				return err
			}
		default:
			panic("unexpected step " + step.Kind.String())
		}
	}

	return nil
}

// FamilyParser parses any form of a family.
//
// Forms are tried in declared order. The first
// form whose opcode and qualifiers match is
// committed to, and its operands are parsed with
// no further backtracking. If no form's qualifiers
// match, the last form's error is returned.
//
type FamilyParser struct {
	Family     *typegen.Family
	Procedures []*Procedure
}

func (f *FamilyParser) Parse(s *ptx.Stream) (*typegen.Value, error) {
	if len(f.Procedures) == 1 {
		return f.Procedures[0].Parse(s)
	}

	var err error
	mark := s.Mark()
	for _, proc := range f.Procedures {
		s.Reset(mark)
		v := typegen.NewValue(proc.Record)
		err = proc.run(s, v, proc.Head())
		if err != nil {
			continue
		}

		if err := proc.run(s, v, proc.Steps[proc.head:]); err != nil {
			return nil, err
		}

		return v, nil
	}

	s.Reset(mark)

	return nil, err
}

// Artifacts contains the parsers for a whole
// specification, and routes instructions to them by
// opcode.
//
type Artifacts struct {
	Families []*FamilyParser // In declared order.
	byOpcode map[string]*FamilyParser
}

// Lookup returns the parser for the given opcode.
//
func (a *Artifacts) Lookup(opcode string) (Parser, bool) {
	f, ok := a.byOpcode[opcode]
	if !ok {
		return nil, false
	}

	return f, true
}

// Parse parses one instruction of any family.
//
func (a *Artifacts) Parse(s *ptx.Stream) (*typegen.Value, error) {
	opcode, err := ptx.PeekOpcode(s, a.opcodes())
	if err != nil {
		return nil, err
	}

	return a.byOpcode[opcode].Parse(s)
}

func (a *Artifacts) opcodes() []string {
	out := make([]string, len(a.Families))
	for i, f := range a.Families {
		out[i] = f.Family.Opcode
	}

	return out
}

// ParseText parses a single instruction from text,
// rejecting any trailing input.
//
func (a *Artifacts) ParseText(text string) (*typegen.Value, error) {
	return ptx.ParseText(text, a.Parse)
}

// ParseAll parses a sequence of instructions from
// text.
//
func (a *Artifacts) ParseAll(text string) ([]*typegen.Value, error) {
	lexemes, err := ptx.TokenizeString(text)
	if err != nil {
		return nil, err
	}

	var values []*typegen.Value
	s := ptx.NewStream(lexemes)
	for !s.AtEOF() {
		v, err := a.Parse(s)
		if err != nil {
			return nil, err
		}

		values = append(values, v)
	}

	return values, nil
}

// Generate produces a parser for every family in the
// definitions.
//
func Generate(defs *typegen.Definitions, spec *types.Spec) (*Artifacts, error) {
	if len(defs.Families) != len(spec.Families) {
		return nil, fmt.Errorf("definitions have %d families, specification has %d", len(defs.Families), len(spec.Families))
	}

	a := &Artifacts{byOpcode: make(map[string]*FamilyParser)}
	for i, fam := range defs.Families {
		if fam.Family != spec.Families[i] {
			return nil, fmt.Errorf("family %s does not match the specification", fam.Name)
		}

		f := &FamilyParser{Family: fam}
		for _, rec := range fam.Records {
			proc, err := GenerateProcedure(rec)
			if err != nil {
				return nil, err
			}

			f.Procedures = append(f.Procedures, proc)
		}

		a.Families = append(a.Families, f)
		a.byOpcode[fam.Opcode] = f
	}

	return a, nil
}

// GenerateProcedure produces the parsing steps for a
// record.
//
func GenerateProcedure(rec *typegen.Record) (*Procedure, error) {
	p := &Procedure{Record: rec}
	operands := 0
	endQualifiers := func(expected ...string) {
		p.Steps = append(p.Steps, Step{Kind: StepEndQualifiers, Field: -1, Secondary: -1, Expected: expected})
		p.head = len(p.Steps)
	}

	for _, elt := range rec.Syntax {
		step := Step{Field: elt.Field, Secondary: -1}
		switch elt.Kind {
		case typegen.ElementOpcode:
			step.Kind = StepOpcode
			step.Literal = elt.Literal
		case typegen.ElementLiteral:
			step.Kind = StepLiteral
			step.Literal = elt.Literal
		case typegen.ElementFlag:
			step.Kind = StepFlag
			step.Literal = elt.Literal
		case typegen.ElementEnum, typegen.ElementOptionalEnum:
			step.Kind = StepEnum
			if elt.Kind == typegen.ElementOptionalEnum {
				step.Kind = StepOptionalEnum
			}

			step.Literals = rec.Fields[elt.Field].Enum.Literals()
		case typegen.ElementOperand:
			field := rec.Fields[elt.Field]
			if operands == 0 {
				endQualifiers(field.Operand.Names()...)
			} else {
				p.Steps = append(p.Steps, Step{Kind: StepComma, Field: -1, Secondary: -1})
			}

			operands++
			step.Kind = StepOperand
			step.Operand = field.Operand
			if elt.Secondary >= 0 {
				step.Secondary = elt.Secondary
				step.SecondaryKind = rec.Fields[elt.Secondary].Operand
			}
		default:
			return nil, fmt.Errorf("%s: unexpected syntax element %s", rec.Name, elt.Kind)
		}

		p.Steps = append(p.Steps, step)
	}

	if operands == 0 {
		endQualifiers(ptx.Semicolon.String())
	}

	p.Steps = append(p.Steps, Step{Kind: StepSemicolon, Field: -1, Secondary: -1})

	return p, nil
}
