// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package golang

import (
	"bytes"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"firefly-os.dev/tools/ptxgen/config"
	"firefly-os.dev/tools/ptxgen/naming"
	specparser "firefly-os.dev/tools/ptxgen/parser"
	"firefly-os.dev/tools/ptxgen/parsegen"
	"firefly-os.dev/tools/ptxgen/typegen"
	"firefly-os.dev/tools/ptxgen/types"
	"firefly-os.dev/tools/ptxgen/unparsegen"
)

func input(t *testing.T, src string, cfg *config.Config) *Input {
	t.Helper()
	file, err := specparser.ParseFile("test.ptx", src)
	if err != nil {
		t.Fatalf("ParseFile(): %v", err)
	}

	spec, err := types.Interpret("test.ptx", file, types.Options{})
	if err != nil {
		t.Fatalf("Interpret(): %v", err)
	}

	naming.Resolve(spec)
	defs, err := typegen.Generate(spec)
	if err != nil {
		t.Fatalf("typegen.Generate(): %v", err)
	}

	parsers, err := parsegen.Generate(defs, spec)
	if err != nil {
		t.Fatalf("parsegen.Generate(): %v", err)
	}

	serializers, err := unparsegen.Generate(defs)
	if err != nil {
		t.Fatalf("unparsegen.Generate(): %v", err)
	}

	return &Input{
		Source:      "test.ptx",
		Config:      cfg,
		Definitions: defs,
		Parsers:     parsers,
		Serializers: serializers,
	}
}

// declarations lists the top-level declarations
// in a Go file.
func declarations(file *ast.File) []string {
	var out []string
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *ast.GenDecl:
			if decl.Tok == token.IMPORT {
				continue
			}

			for _, spec := range decl.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					out = append(out, "type "+spec.Name.Name)
				case *ast.ValueSpec:
					for _, name := range spec.Names {
						out = append(out, decl.Tok.String()+" "+name.Name)
					}
				}
			}
		case *ast.FuncDecl:
			if decl.Recv == nil {
				out = append(out, "func "+decl.Name.Name)
				continue
			}

			recv := decl.Recv.List[0].Type
			if star, ok := recv.(*ast.StarExpr); ok {
				out = append(out, "func (*"+star.X.(*ast.Ident).Name+")."+decl.Name.Name)
			} else {
				out = append(out, "func ("+recv.(*ast.Ident).Name+")."+decl.Name.Name)
			}
		}
	}

	return out
}

func record(name string, union string) []string {
	out := []string{"type " + name}
	if union != "" {
		out = append(out, "func (*"+name+").is"+union)
	}

	return append(out,
		"func Parse"+name,
		"func (*"+name+").parseHead",
		"func (*"+name+").parseOperands",
		"func (*"+name+").Unparse",
	)
}

func enum(name string, variants ...string) []string {
	out := []string{"type " + name}
	for _, v := range variants {
		out = append(out, "const "+name+v)
	}

	lower := strings.ToLower(name[:1]) + name[1:]

	return append(out,
		"var "+lower+"Literals",
		"func ("+name+").String",
		"func expect"+name,
		"func accept"+name,
	)
}

const spec = `
/// Loads a value.
ld{.weak}.ss{.cache}.type d, [a];
.ss = { .global, .shared::cta };
.cache = { .ca, .cg };
.type = { .b32, .u32 };
.t = .type;

/// Funnel shift.
shf.l.mode.b32 d, a, b, c;
shf.r.mode.b32 d, a, b, c;
.mode = { .clamp, .wrap };

setp.lt.s32 p|q, a, b;
exit;
`

func TestGenerate(t *testing.T) {
	cfg := &config.Config{Package: "sm90", ISAVersion: "8.3"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	err := Generate(&buf, input(t, spec, cfg))
	if err != nil {
		t.Fatalf("Generate(): %v", err)
	}

	code := buf.String()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", code, parser.ParseComments)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, code)
	}

	if !ast.IsGenerated(file) {
		t.Errorf("generated code is not marked as generated")
	}

	if file.Name.Name != "sm90" {
		t.Errorf("package: got %q, want %q", file.Name.Name, "sm90")
	}

	var want []string
	want = append(want, record("Ld", "")...)
	want = append(want, enum("Ss", "Global", "SharedCta")...)
	want = append(want, enum("Cache", "Ca", "Cg")...)
	want = append(want, enum("Type", "B32", "U32")...)
	want = append(want, "type T", "type Shf", "func ParseShf")
	want = append(want, record("ShfLModeB32", "Shf")...)
	want = append(want, record("ShfRModeB32", "Shf")...)
	want = append(want, enum("Mode", "Clamp", "Wrap")...)
	want = append(want, record("Setp", "")...)
	want = append(want, record("Exit", "")...)
	want = append(want,
		"var Parsers",
		"var opcodes",
		"func Parse",
		"func instruction",
		"type form",
		"func parseForms",
	)

	if diff := cmp.Diff(want, declarations(file)); diff != "" {
		t.Fatalf("declarations: (-want, +got)\n%s", diff)
	}

	for _, snippet := range []string{
		"// The instructions follow PTX ISA version 8.3.",
		"// Loads a value.\n// Ld is the instruction form \"ld{.weak}.ss{.cache}.type d, [a];\".",
		"// Funnel shift.\n// Shf is any form of the \"shf\" instruction.",
		"type T = Type",
		`insn.Weak = ptx.AcceptDirective(s, ".weak")`,
		`insn.Ss, err = expectSs(s)`,
		`if v, ok := acceptCache(s); ok {`,
		`insn.Type, err = expectType(s)`,
		`err = ptx.ExpectEndOfQualifiers(s, "register")`,
		`insn.D, err = ptx.ParseOperandOf[ptx.Register](s, ptx.KindRegister)`,
		`insn.A, err = ptx.ParseOperandOf[ptx.Address](s, ptx.KindAddress)`,
		`insn.A, err = ptx.ParseOperand(s, ptx.KindRegister`,
		`v, err := ptx.ParseOperandOf[ptx.Predicate](s, ptx.KindPredicate)`,
		`err = ptx.ExpectEndOfQualifiers(s, "semicolon")`,
		`Q ptx.Option[ptx.Predicate]`,
		`Cache ptx.Option[Cache]`,
		`insn, err := parseForms(s,`,
		`p.Directive(insn.Type.String())`,
	} {
		if !strings.Contains(code, snippet) {
			t.Errorf("generated code does not contain %q", snippet)
		}
	}

	if !regexp.MustCompile(`SsGlobal +Ss = iota +// \.global\n`).MatchString(code) {
		t.Errorf("generated code does not declare SsGlobal")
	}

	if t.Failed() {
		t.Logf("generated code:\n%s", code)
	}
}

func TestGenerateDefaults(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(&buf, input(t, "exit;\nbra{.uni} tgt;\n", nil))
	if err != nil {
		t.Fatalf("Generate(): %v", err)
	}

	code := buf.String()
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, "test.go", code, parser.ImportsOnly)
	if err != nil {
		t.Fatalf("generated code does not parse: %v\n%s", err, code)
	}

	if file.Name.Name != config.DefaultPackage {
		t.Errorf("package: got %q, want %q", file.Name.Name, config.DefaultPackage)
	}

	// With no enumerations, only ptx is needed.
	var imports []string
	for _, imp := range file.Imports {
		imports = append(imports, imp.Path.Value)
	}

	if diff := cmp.Diff([]string{`"firefly-os.dev/tools/ptxgen/ptx"`}, imports); diff != "" {
		t.Errorf("imports: (-want, +got)\n%s", diff)
	}

	if strings.Contains(code, "ISA version") || strings.Contains(code, "parseForms") {
		t.Errorf("unexpected content in generated code:\n%s", code)
	}
}

func TestGenerateCollision(t *testing.T) {
	in := input(t, `
		.ld = { .b32 };
		ld.b32 d;
		ld d;
	`, nil)

	err := Generate(new(bytes.Buffer), in)
	want := "generated identifier LdB32 is declared more than once"
	if err == nil || err.Error() != want {
		t.Fatalf("Generate(): got error %v, want %q", err, want)
	}
}
