// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package unparsegen

import (
	"strings"
	"testing"

	"rsc.io/diff"

	"firefly-os.dev/tools/ptxgen/naming"
	"firefly-os.dev/tools/ptxgen/parser"
	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/typegen"
	"firefly-os.dev/tools/ptxgen/types"
)

func build(t *testing.T, src string) (*typegen.Definitions, *Artifacts) {
	t.Helper()
	file, err := parser.ParseFile("test.ptx", src)
	if err != nil {
		t.Fatalf("ParseFile(): unexpected error: %v", err)
	}

	spec, err := types.Interpret("test.ptx", file, types.Options{})
	if err != nil {
		t.Fatalf("Interpret(): unexpected error: %v", err)
	}

	naming.Resolve(spec)
	defs, err := typegen.Generate(spec)
	if err != nil {
		t.Fatalf("typegen.Generate(): unexpected error: %v", err)
	}

	artifacts, err := Generate(defs)
	if err != nil {
		t.Fatalf("Generate(): unexpected error: %v", err)
	}

	return defs, artifacts
}

const spec = `
ld{.weak}.ss{.cache}.type d, [a];
.ss = { .global, .shared::cta };
.cache = { .ca, .cg };
.type = { .b32, .u32 };
setp.lt.s32 p|q, a, b;
ret{.uni};
`

func TestUnparse(t *testing.T) {
	defs, artifacts := build(t, spec)

	ld := typegen.NewValue(defs.Record("Ld"))
	ld.Field("Ss").Enum = ".shared::cta"
	ld.Field("Type").Enum = ".u32"
	ld.Field("D").Operand = ptx.Register{Name: "%r1"}
	ld.Field("A").Operand = ptx.Address{Base: ptx.Register{Name: "%rd1"}, Offset: ptx.Some(ptx.Immediate{Negative: true, Text: "8"})}

	ldAll := typegen.NewValue(defs.Record("Ld"))
	copy(ldAll.Fields, ld.Fields)
	ldAll.Field("Weak").Flag = true
	ldAll.Field("Cache").Enum = ".cg"

	setp := typegen.NewValue(defs.Record("Setp"))
	setp.Field("P").Operand = ptx.Predicate{Register: ptx.Register{Name: "%p1"}}
	setp.Field("Q").Operand = ptx.Predicate{Register: ptx.Register{Name: "%p2"}}
	setp.Field("A").Operand = ptx.Register{Name: "%r1"}
	setp.Field("B").Operand = ptx.Immediate{Text: "5"}

	ret := typegen.NewValue(defs.Record("Ret"))

	tests := []struct {
		name    string
		value   *typegen.Value
		compact string
		spaced  string
	}{
		{
			name:    "optional qualifiers absent",
			value:   ld,
			compact: "ld.shared::cta.u32 %r1,[%rd1-8];",
			spaced:  "ld.shared::cta.u32 %r1, [%rd1-8];\n",
		},
		{
			name:    "optional qualifiers present",
			value:   ldAll,
			compact: "ld.weak.shared::cta.cg.u32 %r1,[%rd1-8];",
			spaced:  "ld.weak.shared::cta.cg.u32 %r1, [%rd1-8];\n",
		},
		{
			name:    "secondary operand",
			value:   setp,
			compact: "setp.lt.s32 %p1|%p2,%r1,5;",
			spaced:  "setp.lt.s32 %p1|%p2, %r1, 5;\n",
		},
		{
			name:    "no operands",
			value:   ret,
			compact: "ret;",
			spaced:  "ret;\n",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			compact, err := artifacts.Text(test.value, ptx.Compact)
			if err != nil {
				t.Fatalf("Text(compact): %v", err)
			}

			if compact != test.compact {
				t.Errorf("Text(compact):\nGot  %q\nWant %q", compact, test.compact)
			}

			spaced, err := artifacts.Text(test.value, ptx.Spaced)
			if err != nil {
				t.Fatalf("Text(spaced): %v", err)
			}

			if spaced != test.spaced {
				t.Errorf("Text(spaced):\nGot  %q\nWant %q", spaced, test.spaced)
			}
		})
	}

	want := strings.Join([]string{
		"ld.shared::cta.u32 %r1,[%rd1-8];",
		"setp.lt.s32 %p1|%p2,%r1,5;",
		"ret;",
		"",
	}, "\n")

	got, err := artifacts.Listing([]*typegen.Value{ld, setp, ret}, ptx.Compact)
	if err != nil {
		t.Fatalf("Listing(): %v", err)
	}

	if got != want {
		t.Fatalf("Listing(): (-want, +got)\n%s", diff.Format(want, got))
	}
}

func TestUnparseErrors(t *testing.T) {
	defs, artifacts := build(t, spec)

	// Missing mandatory fields.
	ld := typegen.NewValue(defs.Record("Ld"))
	if _, err := artifacts.Unparse(ld, ptx.Compact); err == nil {
		t.Errorf("Unparse(): unexpected success for an incomplete value")
	}

	ret := typegen.NewValue(defs.Record("Ret"))
	s, ok := artifacts.Serializer(defs.Record("Setp"))
	if !ok {
		t.Fatalf("Serializer(Setp): not found")
	}

	if err := s.Unparse(ptx.NewPrinter(ptx.Compact), ret); err == nil {
		t.Errorf("Unparse(): unexpected success with the wrong serializer")
	}

	other, _ := build(t, "ret{.uni};")
	foreign := typegen.NewValue(other.Record("Ret"))
	if _, err := artifacts.Text(foreign, ptx.Compact); err == nil {
		t.Errorf("Text(): unexpected success for a record from another specification")
	}
}
