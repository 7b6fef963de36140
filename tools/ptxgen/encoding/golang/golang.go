// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package golang renders the types, parsers, and serializers derived
// from an instruction syntax specification as Go source code.
//
package golang

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"io"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"firefly-os.dev/tools/ptxgen/config"
	"firefly-os.dev/tools/ptxgen/parsegen"
	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/typegen"
	"firefly-os.dev/tools/ptxgen/types"
	"firefly-os.dev/tools/ptxgen/unparsegen"
)

// Input contains everything needed to generate the
// code for one specification.
//
type Input struct {
	Source      string // Name of the specification file.
	Config      *config.Config
	Definitions *typegen.Definitions
	Parsers     *parsegen.Artifacts
	Serializers *unparsegen.Artifacts
}

// Generate writes the Go code for the input to w.
//
func Generate(w io.Writer, in *Input) error {
	data, err := newFile(in)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	err = templates.ExecuteTemplate(&buf, fileTemplate, data)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %v", fileTemplate, err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("failed to format Go code: %v", err)
	}

	_, err = w.Write(formatted)
	if err != nil {
		return fmt.Errorf("failed to write Go code: %v", err)
	}

	return nil
}

// The templates used to render declarations as
// Go code.
//
//go:embed templates/*_go.txt
var templatesFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"isEnum": isEnum,
	"quote":  strconv.Quote,
	"toDocs": toDocs,
}).ParseFS(templatesFS, "templates/*_go.txt"))

const (
	fileTemplate   = "file_go.txt"
	enumTemplate   = "enum_go.txt"
	familyTemplate = "family_go.txt"
)

// The data passed to the templates.

type fileData struct {
	Source   string
	Version  string
	Package  string
	Strconv  bool // Whether any enumeration needs strconv.
	Unions   bool
	Decls    []any // *enumData or *familyData, in source order.
	Families []*familyData
}

type enumData struct {
	Name        string
	Placeholder string
	Docs        types.Docs
	Alias       string // Aliased type, or "".
	Underlying  string
	Literals    string // Name of the literal table.
	Variants    []variantData
}

type variantData struct {
	Const   string
	Literal string
}

type familyData struct {
	Name    string
	Opcode  string
	Docs    types.Docs
	Union   bool
	Records []*recordData
}

type recordData struct {
	Name     string
	Family   string
	Source   string
	Docs     types.Docs
	Union    bool
	Fields   []fieldData
	Head     []string // Statements that parse the opcode and qualifiers.
	Operands []string // Statements that parse the operands.
	Unparse  []string // Statements that print the instruction.
}

type fieldData struct {
	Name string
	Type string
}

func isEnum(decl any) bool {
	_, ok := decl.(*enumData)
	return ok
}

// toDocs renders documentation lines as a Go
// comment.
//
func toDocs(docs types.Docs) string {
	var b strings.Builder
	for _, line := range docs {
		if line == "" {
			b.WriteString("//\n")
		} else {
			b.WriteString("// " + line + "\n")
		}
	}

	return b.String()
}

// newFile prepares the template data for the input,
// checking that no identifier is declared twice.
//
func newFile(in *Input) (*fileData, error) {
	cfg := in.Config
	if cfg == nil {
		cfg = config.Default()
	}

	data := &fileData{
		Source:  in.Source,
		Version: cfg.Version(),
		Package: cfg.Package,
	}

	declared := make(map[string]bool)
	declare := func(names ...string) error {
		for _, name := range names {
			if declared[name] {
				return fmt.Errorf("generated identifier %s is declared more than once", name)
			}

			declared[name] = true
		}

		return nil
	}

	if err := declare("Parse", "Parsers"); err != nil {
		return nil, err
	}

	enums := make(map[*typegen.Enum]*enumData)
	for _, enum := range in.Definitions.Enums {
		e := newEnum(enum)
		if err := declare(e.Name); err != nil {
			return nil, err
		}

		for _, v := range e.Variants {
			if err := declare(v.Const); err != nil {
				return nil, err
			}
		}

		if e.Alias == "" {
			data.Strconv = true
		}

		enums[enum] = e
	}

	families := make(map[*typegen.Family]*familyData)
	for i, fam := range in.Definitions.Families {
		if i >= len(in.Parsers.Families) || in.Parsers.Families[i].Family != fam {
			return nil, fmt.Errorf("no parser for %s", fam.Name)
		}

		f := &familyData{
			Name:   fam.Name,
			Opcode: fam.Opcode,
			Docs:   fam.Docs,
			Union:  fam.Union,
		}

		if err := declare(f.Name, "Parse"+f.Name); err != nil {
			return nil, err
		}

		for j, rec := range fam.Records {
			proc := in.Parsers.Families[i].Procedures[j]
			ser, ok := in.Serializers.Serializer(rec)
			if !ok {
				return nil, fmt.Errorf("no serializer for %s", rec.Name)
			}

			r, err := newRecord(proc, ser)
			if err != nil {
				return nil, err
			}

			if fam.Union {
				if err := declare(r.Name, "Parse"+r.Name); err != nil {
					return nil, err
				}
			}

			f.Records = append(f.Records, r)
		}

		data.Unions = data.Unions || f.Union
		data.Families = append(data.Families, f)
		families[fam] = f
	}

	for _, decl := range in.Definitions.Order {
		switch decl := decl.(type) {
		case *typegen.Enum:
			data.Decls = append(data.Decls, enums[decl])
		case *typegen.Family:
			data.Decls = append(data.Decls, families[decl])
		}
	}

	return data, nil
}

func newEnum(enum *typegen.Enum) *enumData {
	e := &enumData{
		Name:        enum.Name,
		Placeholder: enum.Placeholder,
		Docs:        enum.Docs,
		Underlying:  "uint8",
		Literals:    literalsName(enum),
	}

	if enum.Alias != nil {
		e.Alias = enum.Alias.Name
		return e
	}

	if len(enum.Variants) > 256 {
		e.Underlying = "uint16"
	}

	for _, v := range enum.Variants {
		e.Variants = append(e.Variants, variantData{
			Const:   enum.Name + v.Name,
			Literal: v.Literal,
		})
	}

	return e
}

// root returns the enumeration that an alias
// ultimately refers to.
//
func root(enum *typegen.Enum) *typegen.Enum {
	for enum.Alias != nil {
		enum = enum.Alias
	}

	return enum
}

func literalsName(enum *typegen.Enum) string {
	name := root(enum).Name
	first, width := utf8.DecodeRuneInString(name)

	return string(unicode.ToLower(first)) + name[width:] + "Literals"
}

func newRecord(proc *parsegen.Procedure, ser *unparsegen.Serializer) (*recordData, error) {
	rec := proc.Record
	r := &recordData{
		Name:   rec.Name,
		Family: rec.Family.Name,
		Source: rec.Form.String(),
		Docs:   rec.Form.Docs,
		Union:  rec.Family.Union,
	}

	for _, field := range rec.Fields {
		r.Fields = append(r.Fields, fieldData{Name: field.Name, Type: fieldType(field)})
	}

	head := proc.Head()
	for _, step := range head {
		code, err := parseStep(rec, step)
		if err != nil {
			return nil, err
		}

		r.Head = append(r.Head, code)
	}

	for _, step := range proc.Steps[len(head):] {
		code, err := parseStep(rec, step)
		if err != nil {
			return nil, err
		}

		r.Operands = append(r.Operands, code)
	}

	operands := 0
	for _, elt := range ser.Record.Syntax {
		code, err := unparseElement(rec, elt, operands)
		if err != nil {
			return nil, err
		}

		if elt.Kind == typegen.ElementOperand {
			operands++
		}

		r.Unparse = append(r.Unparse, code)
	}

	return r, nil
}

// kindTypes maps each single operand kind to the
// type that represents it.
//
var kindTypes = []struct {
	Kind ptx.Kind
	Type string
	Expr string
}{
	{ptx.KindRegister, "ptx.Register", "ptx.KindRegister"},
	{ptx.KindImmediate, "ptx.Immediate", "ptx.KindImmediate"},
	{ptx.KindAddress, "ptx.Address", "ptx.KindAddress"},
	{ptx.KindLabel, "ptx.Label", "ptx.KindLabel"},
	{ptx.KindPredicate, "ptx.Predicate", "ptx.KindPredicate"},
}

// operandType returns the Go type for an operand of
// the given kinds.
//
func operandType(kind ptx.Kind) string {
	for _, k := range kindTypes {
		if k.Kind == kind {
			return k.Type
		}
	}

	return "ptx.Operand"
}

// kindExpr returns a Go expression for the given
// kinds.
//
func kindExpr(kind ptx.Kind) string {
	var exprs []string
	for _, k := range kindTypes {
		if kind&k.Kind != 0 {
			exprs = append(exprs, k.Expr)
		}
	}

	return strings.Join(exprs, "|")
}

func fieldType(field *typegen.Field) string {
	switch field.Kind {
	case typegen.FieldFlag:
		return "bool"
	case typegen.FieldEnum:
		return field.Enum.Name
	case typegen.FieldOptionalEnum:
		return "ptx.Option[" + field.Enum.Name + "]"
	case typegen.FieldOperand:
		return operandType(field.Operand)
	case typegen.FieldOptionalOperand:
		return "ptx.Option[" + operandType(field.Operand) + "]"
	}

	panic("unexpected field kind " + field.Kind.String())
}

// parseOperand returns the expression that parses
// an operand of the given kinds.
//
func parseOperand(kind ptx.Kind) string {
	typ := operandType(kind)
	if typ == "ptx.Operand" {
		return fmt.Sprintf("ptx.ParseOperand(s, %s)", kindExpr(kind))
	}

	return fmt.Sprintf("ptx.ParseOperandOf[%s](s, %s)", typ, kindExpr(kind))
}

// check wraps a statement that assigns err.
//
func check(stmt string) string {
	return "if " + stmt + "; err != nil {\nreturn err\n}"
}

// parseStep returns the statements that perform a
// parsing step.
//
func parseStep(rec *typegen.Record, step parsegen.Step) (string, error) {
	var field *typegen.Field
	if step.Field >= 0 {
		field = rec.Fields[step.Field]
	}

	switch step.Kind {
	case parsegen.StepOpcode:
		return check("err = ptx.ExpectOpcode(s, " + strconv.Quote(step.Literal) + ")"), nil
	case parsegen.StepLiteral:
		return check("err = ptx.ExpectDirective(s, " + strconv.Quote(step.Literal) + ")"), nil
	case parsegen.StepFlag:
		return fmt.Sprintf("insn.%s = ptx.AcceptDirective(s, %q)", field.Name, step.Literal), nil
	case parsegen.StepEnum:
		return check(fmt.Sprintf("insn.%s, err = expect%s(s)", field.Name, root(field.Enum).Name)), nil
	case parsegen.StepOptionalEnum:
		return fmt.Sprintf("if v, ok := accept%s(s); ok {\ninsn.%s = ptx.Some(v)\n}", root(field.Enum).Name, field.Name), nil
	case parsegen.StepEndQualifiers:
		expected := make([]string, len(step.Expected))
		for i, e := range step.Expected {
			expected[i] = strconv.Quote(e)
		}

		return check("err = ptx.ExpectEndOfQualifiers(s, " + strings.Join(expected, ", ") + ")"), nil
	case parsegen.StepOperand:
		code := check(fmt.Sprintf("insn.%s, err = %s", field.Name, parseOperand(step.Operand)))
		if step.Secondary >= 0 {
			secondary := rec.Fields[step.Secondary]
			code += fmt.Sprintf("\n\nif ptx.AcceptPipe(s) {\nv, err := %s\nif err != nil {\nreturn err\n}\n\ninsn.%s = ptx.Some(v)\n}",
				parseOperand(step.SecondaryKind), secondary.Name)
		}

		return code, nil
	case parsegen.StepComma:
		return check("err = ptx.ExpectComma(s)"), nil
	case parsegen.StepSemicolon:
		return check("err = ptx.ExpectSemicolon(s)"), nil
	}

	return "", fmt.Errorf("%s: unexpected parsing step %s", rec.Name, step.Kind)
}

// unparseElement returns the statements that print
// a syntax element. The operand count is the number
// of operands already printed.
//
func unparseElement(rec *typegen.Record, elt typegen.Element, operands int) (string, error) {
	var field *typegen.Field
	if elt.Field >= 0 {
		field = rec.Fields[elt.Field]
	}

	switch elt.Kind {
	case typegen.ElementOpcode:
		return fmt.Sprintf("p.Opcode(%q)", elt.Literal), nil
	case typegen.ElementLiteral:
		return fmt.Sprintf("p.Directive(%q)", elt.Literal), nil
	case typegen.ElementFlag:
		return fmt.Sprintf("if insn.%s {\np.Directive(%q)\n}", field.Name, elt.Literal), nil
	case typegen.ElementEnum:
		return fmt.Sprintf("p.Directive(insn.%s.String())", field.Name), nil
	case typegen.ElementOptionalEnum:
		return fmt.Sprintf("if v, ok := insn.%s.Get(); ok {\np.Directive(v.String())\n}", field.Name), nil
	case typegen.ElementOperand:
		code := "p.Comma()\n"
		if operands == 0 {
			code = "p.BeginOperands()\n"
		}

		code += fmt.Sprintf("insn.%s.Unparse(p)", field.Name)
		if elt.Secondary >= 0 {
			code += fmt.Sprintf("\nif v, ok := insn.%s.Get(); ok {\np.Pipe()\nv.Unparse(p)\n}", rec.Fields[elt.Secondary].Name)
		}

		return code, nil
	}

	return "", fmt.Errorf("%s: unexpected syntax element %s", rec.Name, elt.Kind)
}
