// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func streamOf(t *testing.T, text string) *Stream {
	lexemes, err := TokenizeString(text)
	if err != nil {
		t.Helper()
		t.Fatalf("Tokenize(%q): %v", text, err)
	}

	return NewStream(lexemes)
}

func TestKind(t *testing.T) {
	k := KindRegister | KindImmediate
	if got := k.String(); got != "register|immediate" {
		t.Errorf("String(): got %q, want %q", got, "register|immediate")
	}

	if got := Kind(0).String(); got != "Kind(0)" {
		t.Errorf("String(): got %q, want %q", got, "Kind(0)")
	}

	if !k.Has(KindImmediate) || k.Has(KindLabel) || k.Has(0) {
		t.Errorf("Has(): unexpected result for %s", k)
	}

	parsed, err := ParseKind("register | immediate")
	if err != nil {
		t.Fatalf("ParseKind(): %v", err)
	}

	if parsed != k {
		t.Errorf("ParseKind(): got %s, want %s", parsed, k)
	}

	if _, err := ParseKind("register|vector"); err == nil {
		t.Errorf("ParseKind(): unexpected success for invalid kind")
	}
}

func TestParseOperand(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds Kind
		want  Operand
	}{
		{
			name:  "register",
			src:   "%r1",
			kinds: KindRegister,
			want:  Register{Name: "%r1"},
		},
		{
			name:  "negative hex immediate",
			src:   "-0x10",
			kinds: KindImmediate,
			want:  Immediate{Negative: true, Text: "0x10"},
		},
		{
			name:  "float immediate",
			src:   "0f3F800000",
			kinds: KindImmediate,
			want:  Immediate{Text: "0f3F800000", Float: true},
		},
		{
			name:  "address with offset",
			src:   "[%rd1+8]",
			kinds: KindAddress,
			want:  Address{Base: Register{Name: "%rd1"}, Offset: Some(Immediate{Text: "8"})},
		},
		{
			name:  "address with negative offset",
			src:   "[%rd1-4]",
			kinds: KindAddress,
			want:  Address{Base: Register{Name: "%rd1"}, Offset: Some(Immediate{Negative: true, Text: "4"})},
		},
		{
			name:  "symbolic address",
			src:   "[buf]",
			kinds: KindAddress,
			want:  Address{Base: Label{Name: "buf"}},
		},
		{
			name:  "label",
			src:   "loop",
			kinds: KindLabel,
			want:  Label{Name: "loop"},
		},
		{
			name:  "negated predicate",
			src:   "!%p1",
			kinds: KindPredicate,
			want:  Predicate{Negated: true, Register: Register{Name: "%p1"}},
		},
		{
			name:  "plain predicate",
			src:   "%p1",
			kinds: KindPredicate,
			want:  Predicate{Register: Register{Name: "%p1"}},
		},
		{
			name:  "disjunction register",
			src:   "%r1",
			kinds: KindRegister | KindImmediate,
			want:  Register{Name: "%r1"},
		},
		{
			name:  "disjunction immediate",
			src:   "5",
			kinds: KindRegister | KindImmediate,
			want:  Immediate{Text: "5"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := streamOf(t, test.src)
			got, err := ParseOperand(s, test.kinds)
			if err != nil {
				t.Fatalf("ParseOperand(): unexpected error: %v", err)
			}

			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Fatalf("ParseOperand(): (-want, +got)\n%s", diff)
			}

			if !s.AtEOF() {
				t.Fatalf("ParseOperand(): left %v unconsumed", s.Peek())
			}

			if got.Kind()&test.kinds == 0 {
				t.Fatalf("ParseOperand(): got kind %s, want one of %s", got.Kind(), test.kinds)
			}

			// Operands print back to their source.
			if text := Format(instruction{got}, Compact); text != test.src {
				t.Fatalf("Unparse(): got %q, want %q", text, test.src)
			}
		})
	}
}

// instruction adapts an operand for printing.
type instruction struct {
	op Operand
}

func (i instruction) Unparse(p *Printer) { i.op.Unparse(p) }

func TestParseOperandErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		kinds Kind
		want  string
	}{
		{
			name:  "wrong kind",
			src:   "5",
			kinds: KindRegister,
			want:  `1:1: expected register, found "5"`,
		},
		{
			name:  "disjunction",
			src:   "loop",
			kinds: KindRegister | KindImmediate,
			want:  `1:1: expected register or immediate, found "loop"`,
		},
		{
			name:  "register offset",
			src:   "[%r1+%r2]",
			kinds: KindAddress,
			want:  `1:6: expected integer or float, found "%r2"`,
		},
		{
			name:  "unterminated address",
			src:   "[%r1",
			kinds: KindAddress,
			want:  `1:5: unexpected end of input, expected closing bracket`,
		},
		{
			name:  "missing operand",
			src:   "",
			kinds: KindRegister,
			want:  `1:1: unexpected end of input, expected register`,
		},
		{
			name:  "negated register",
			src:   "!5",
			kinds: KindPredicate,
			want:  `1:2: expected register, found "5"`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseOperand(streamOf(t, test.src), test.kinds)
			if err == nil {
				t.Fatalf("ParseOperand(): got %v, expected error %q", got, test.want)
			}

			if e := err.Error(); e != test.want {
				t.Fatalf("ParseOperand():\nGot  %q\nWant %q", e, test.want)
			}
		})
	}
}
