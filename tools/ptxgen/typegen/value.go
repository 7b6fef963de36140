// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package typegen

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/go-cmp/cmp"

	"firefly-os.dev/tools/ptxgen/ptx"
)

// Value is an instance of a record, as produced by
// an interpreted instruction parser.
//
type Value struct {
	Record *Record
	Fields []FieldValue // Parallel to Record.Fields.
}

// FieldValue holds the value of one field. Only the
// member matching the field's kind is used.
//
type FieldValue struct {
	Flag    bool
	Enum    string      // The literal chosen, or "" if absent.
	Operand ptx.Operand // Nil if absent.
}

// NewValue returns the zero value of a record.
//
func NewValue(rec *Record) *Value {
	return &Value{
		Record: rec,
		Fields: make([]FieldValue, len(rec.Fields)),
	}
}

// Field returns the value of the named field, or
// nil.
//
func (v *Value) Field(name string) *FieldValue {
	if i := v.Record.Field(name); i >= 0 {
		return &v.Fields[i]
	}

	return nil
}

// Equal returns whether two values are instances of
// the same record with equal fields.
//
func (v *Value) Equal(other *Value) bool {
	if v == nil || other == nil {
		return v == other
	}

	return v.Record == other.Record && cmp.Equal(v.Fields, other.Fields)
}

// Validate checks that every mandatory field is set
// and that every field's value is allowed.
//
func (v *Value) Validate() error {
	if len(v.Fields) != len(v.Record.Fields) {
		return fmt.Errorf("%s: got %d fields, want %d", v.Record.Name, len(v.Fields), len(v.Record.Fields))
	}

	for i, field := range v.Record.Fields {
		fv := v.Fields[i]
		switch field.Kind {
		case FieldEnum, FieldOptionalEnum:
			if fv.Enum == "" {
				if field.Kind == FieldEnum {
					return fmt.Errorf("%s.%s: missing value", v.Record.Name, field.Name)
				}

				continue
			}

			if field.Enum.Index(fv.Enum) < 0 {
				return fmt.Errorf("%s.%s: invalid value %q for %s", v.Record.Name, field.Name, fv.Enum, field.Enum.Name)
			}
		case FieldOperand, FieldOptionalOperand:
			if fv.Operand == nil {
				if field.Kind == FieldOperand {
					return fmt.Errorf("%s.%s: missing operand", v.Record.Name, field.Name)
				}

				continue
			}

			if fv.Operand.Kind()&field.Operand == 0 {
				return fmt.Errorf("%s.%s: got %s operand, want %s", v.Record.Name, field.Name, fv.Operand.Kind(), field.Operand)
			}

			// A plain predicate prints as a register, so
			// it must be negated where a register is also
			// allowed.
			if pr, ok := fv.Operand.(ptx.Predicate); ok && !pr.Negated && field.Operand.Has(ptx.KindRegister) {
				return fmt.Errorf("%s.%s: predicate %s is ambiguous with a register", v.Record.Name, field.Name, pr.Register.Name)
			}
		}
	}

	return nil
}

// String returns a short description of the value,
// such as "Add{Type: .s32, D: %r1, A: %r2}".
//
func (v *Value) String() string {
	var b strings.Builder
	b.WriteString(v.Record.Name)
	b.WriteByte('{')
	for i, field := range v.Record.Fields {
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(field.Name)
		b.WriteString(": ")
		if i >= len(v.Fields) {
			b.WriteString("?")
			continue
		}

		fv := v.Fields[i]
		switch field.Kind {
		case FieldFlag:
			fmt.Fprint(&b, fv.Flag)
		case FieldEnum, FieldOptionalEnum:
			if fv.Enum == "" {
				b.WriteString("none")
			} else {
				b.WriteString(fv.Enum)
			}
		case FieldOperand, FieldOptionalOperand:
			if fv.Operand == nil {
				b.WriteString("none")
			} else {
				p := ptx.NewPrinter(ptx.Compact)
				fv.Operand.Unparse(p)
				b.WriteString(p.String())
			}
		}
	}

	b.WriteByte('}')

	return b.String()
}

var dumper = spew.ConfigState{
	Indent:                  "\t",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump returns a detailed rendering of the value's
// fields, for debugging.
//
func (v *Value) Dump() string {
	named := make(map[string]FieldValue, len(v.Fields))
	for i, fv := range v.Fields {
		if i < len(v.Record.Fields) {
			named[v.Record.Fields[i].Name] = fv
		}
	}

	return v.Record.Name + " " + dumper.Sdump(named)
}
