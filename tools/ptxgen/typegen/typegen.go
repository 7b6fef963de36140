// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package typegen translates an analysed specification into the
// shapes of the generated instruction types: an enumeration per
// placeholder declaration, a record per instruction form, and a
// union per family with more than one form.
//
package typegen

import (
	"fmt"
	"strconv"

	"firefly-os.dev/tools/ptxgen/naming"
	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/types"
)

// Definitions contains the generated type shapes for
// a specification.
//
type Definitions struct {
	Enums    []*Enum
	Families []*Family

	// Order lists the enumerations and families
	// in source order, which is the order in
	// which they are emitted.
	Order []Decl
}

// Family returns the family with the given opcode,
// or nil.
//
func (d *Definitions) Family(opcode string) *Family {
	for _, fam := range d.Families {
		if fam.Opcode == opcode {
			return fam
		}
	}

	return nil
}

// Record returns the record with the given name, or
// nil.
//
func (d *Definitions) Record(name string) *Record {
	for _, fam := range d.Families {
		for _, rec := range fam.Records {
			if rec.Name == name {
				return rec
			}
		}
	}

	return nil
}

// Decl is a generated declaration: an *Enum or a
// *Family.
//
type Decl interface {
	DeclName() string
}

var (
	_ Decl = (*Enum)(nil)
	_ Decl = (*Family)(nil)
)

// Enum is the enumeration generated for a type
// declaration.
//
type Enum struct {
	Name        string
	Placeholder string
	Variants    []*Variant
	Docs        types.Docs
	Decl        *types.TypeDecl

	// Alias is the enumeration this one aliases,
	// or nil.
	Alias *Enum
}

func (e *Enum) DeclName() string { return e.Name }

// Variant is one literal of an enumeration.
//
type Variant struct {
	Name    string // Unique within the enumeration.
	Literal string
}

// Literals returns the enumeration's literals in
// declared order.
//
func (e *Enum) Literals() []string {
	out := make([]string, len(e.Variants))
	for i, v := range e.Variants {
		out[i] = v.Literal
	}

	return out
}

// Index returns the position of the variant with
// the given literal, or -1.
//
func (e *Enum) Index(literal string) int {
	for i, v := range e.Variants {
		if v.Literal == literal {
			return i
		}
	}

	return -1
}

// Family is the type generated for an opcode: a
// single record, or a union of one record per form.
//
type Family struct {
	Name    string
	Opcode  string
	Records []*Record // One per form, in declared order.
	Union   bool
	Docs    types.Docs
	Family  *types.Family
}

func (f *Family) DeclName() string { return f.Name }

// Record is the structure generated for one form.
//
type Record struct {
	Name   string
	Family *Family
	Fields []*Field

	// Syntax lists the form's elements in
	// serialisation order, including those with
	// no field, such as the opcode and mandatory
	// literal qualifiers.
	Syntax []Element

	Form *types.Form
}

// Field returns the index of the named field, or -1.
//
func (r *Record) Field(name string) int {
	for i, f := range r.Fields {
		if f.Name == name {
			return i
		}
	}

	return -1
}

// Operands returns the number of operand elements.
//
func (r *Record) Operands() int {
	n := 0
	for _, elt := range r.Syntax {
		if elt.Kind == ElementOperand {
			n++
		}
	}

	return n
}

// FieldKind describes a field's type.
//
type FieldKind uint8

const (
	FieldFlag            FieldKind = iota // bool
	FieldEnum                             // Enumeration.
	FieldOptionalEnum                     // ptx.Option of an enumeration.
	FieldOperand                          // Operand of the field's kinds.
	FieldOptionalOperand                  // ptx.Option of an operand.
)

func (k FieldKind) String() string {
	switch k {
	case FieldFlag:
		return "flag"
	case FieldEnum:
		return "enum"
	case FieldOptionalEnum:
		return "optional enum"
	case FieldOperand:
		return "operand"
	case FieldOptionalOperand:
		return "optional operand"
	}

	return "FieldKind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one field of a record.
//
type Field struct {
	Name    string
	Kind    FieldKind
	Literal string   // The literal a flag records.
	Enum    *Enum    // The enumeration, for enum fields.
	Operand ptx.Kind // The accepted kinds, for operand fields.
}

func (f *Field) String() string {
	switch f.Kind {
	case FieldFlag:
		return fmt.Sprintf("%s %s %s", f.Name, f.Kind, f.Literal)
	case FieldEnum, FieldOptionalEnum:
		return fmt.Sprintf("%s %s %s", f.Name, f.Kind, f.Enum.Name)
	}

	return fmt.Sprintf("%s %s %s", f.Name, f.Kind, f.Operand)
}

// ElementKind describes a syntax element.
//
type ElementKind uint8

const (
	ElementOpcode       ElementKind = iota // The opcode.
	ElementLiteral                         // A mandatory literal qualifier.
	ElementFlag                            // An optional literal qualifier.
	ElementEnum                            // A typed qualifier.
	ElementOptionalEnum                    // An optional typed qualifier.
	ElementOperand                         // An operand, with any secondary operand.
)

func (k ElementKind) String() string {
	switch k {
	case ElementOpcode:
		return "opcode"
	case ElementLiteral:
		return "literal"
	case ElementFlag:
		return "flag"
	case ElementEnum:
		return "enum"
	case ElementOptionalEnum:
		return "optional enum"
	case ElementOperand:
		return "operand"
	}

	return "ElementKind(" + strconv.Itoa(int(k)) + ")"
}

// Element is one syntax element of a record.
//
type Element struct {
	Kind      ElementKind
	Literal   string // Opcode or literal text.
	Field     int    // Index of the element's field, or -1.
	Secondary int    // Index of the secondary operand's field, or -1.
}

// Generate produces the type shapes for the given
// specification, whose names must already have been
// resolved.
//
func Generate(spec *types.Spec) (*Definitions, error) {
	defs := new(Definitions)
	enums := make(map[*types.TypeDecl]*Enum)
	for _, t := range spec.Types {
		if t.Name == "" {
			return nil, fmt.Errorf("%s at %s has no name", t, t.Pos())
		}

		enum := &Enum{
			Name:        t.Name,
			Placeholder: t.Placeholder,
			Docs:        t.Docs,
			Decl:        t,
		}

		scope := naming.NewScope()
		for _, literal := range t.Values {
			enum.Variants = append(enum.Variants, &Variant{
				Name:    scope.Name(types.NameOf(literal).PascalCase()),
				Literal: literal,
			})
		}

		enums[t] = enum
		defs.Enums = append(defs.Enums, enum)
	}

	for _, enum := range defs.Enums {
		if alias := enum.Decl.Alias; alias != nil {
			enum.Alias = enums[alias]
		}
	}

	families := make(map[*types.Family]*Family)
	for _, fam := range spec.Families {
		if fam.Name == "" {
			return nil, fmt.Errorf("%s at %s has no name", fam, fam.Pos())
		}

		out := &Family{
			Name:   fam.Name,
			Opcode: fam.Opcode,
			Union:  fam.Union(),
			Docs:   fam.Docs,
			Family: fam,
		}

		for _, form := range fam.Forms {
			rec, err := generateRecord(out, form, enums)
			if err != nil {
				return nil, err
			}

			out.Records = append(out.Records, rec)
		}

		families[fam] = out
		defs.Families = append(defs.Families, out)
	}

	for _, decl := range spec.Decls {
		switch decl := decl.(type) {
		case *types.Family:
			defs.Order = append(defs.Order, families[decl])
		case *types.TypeDecl:
			defs.Order = append(defs.Order, enums[decl])
		}
	}

	return defs, nil
}

// reservedFields contains the method names of
// generated records, which fields must not use.
//
var reservedFields = []string{"Unparse"}

// generateRecord produces the record for one form.
// Fields follow the form's qualifiers and operands
// in declared order.
//
func generateRecord(fam *Family, form *types.Form, enums map[*types.TypeDecl]*Enum) (*Record, error) {
	if form.Name == "" {
		return nil, fmt.Errorf("form %q has no name", form)
	}

	rec := &Record{
		Name:   form.Name,
		Family: fam,
		Form:   form,
	}

	scope := naming.NewScope(reservedFields...)
	addField := func(base string, field *Field) int {
		field.Name = scope.Name(base)
		rec.Fields = append(rec.Fields, field)
		return len(rec.Fields) - 1
	}

	rec.Syntax = append(rec.Syntax, Element{Kind: ElementOpcode, Literal: fam.Opcode, Field: -1, Secondary: -1})
	for _, q := range form.Qualifiers {
		base := types.NameOf(q.Text()).PascalCase()
		switch {
		case q.Kind == types.QualifierLiteral:
			rec.Syntax = append(rec.Syntax, Element{Kind: ElementLiteral, Literal: q.Literal, Field: -1, Secondary: -1})
		case q.Flag():
			literal := q.FlagLiteral()
			idx := addField(base, &Field{Kind: FieldFlag, Literal: literal})
			rec.Syntax = append(rec.Syntax, Element{Kind: ElementFlag, Literal: literal, Field: idx, Secondary: -1})
		default:
			enum := enums[q.Type]
			if enum == nil {
				return nil, fmt.Errorf("form %q: no enumeration for %s", form, q.Type.Placeholder)
			}

			kind, elt := FieldEnum, ElementEnum
			if q.Optional() {
				kind, elt = FieldOptionalEnum, ElementOptionalEnum
			}

			idx := addField(base, &Field{Kind: kind, Enum: enum})
			rec.Syntax = append(rec.Syntax, Element{Kind: elt, Field: idx, Secondary: -1})
		}
	}

	for _, op := range form.Operands {
		idx := addField(types.NameOf(op.Name).PascalCase(), &Field{Kind: FieldOperand, Operand: op.Kind})
		elt := Element{Kind: ElementOperand, Field: idx, Secondary: -1}
		if op.Secondary != nil {
			elt.Secondary = addField(types.NameOf(op.Secondary.Name).PascalCase(), &Field{Kind: FieldOptionalOperand, Operand: op.Secondary.Kind})
		}

		rec.Syntax = append(rec.Syntax, elt)
	}

	return rec, nil
}
