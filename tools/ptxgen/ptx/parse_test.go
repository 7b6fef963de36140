// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"errors"
	"testing"

	"firefly-os.dev/tools/ptxgen/diag"
)

func TestHelpers(t *testing.T) {
	s := streamOf(t, "tex.wrap.b32 %r1|%p1;")
	if err := ExpectOpcode(s, "tex"); err != nil {
		t.Fatalf("ExpectOpcode(): %v", err)
	}

	modes := []string{".clamp", ".wrap"}
	if i, err := ExpectOneOf(s, modes); err != nil || i != 1 {
		t.Fatalf("ExpectOneOf(): got %d, %v, want 1", i, err)
	}

	if AcceptDirective(s, ".b16") {
		t.Fatalf("AcceptDirective(): accepted the wrong literal")
	}

	if err := ExpectDirective(s, ".b32"); err != nil {
		t.Fatalf("ExpectDirective(): %v", err)
	}

	if err := ExpectEndOfQualifiers(s, "register"); err != nil {
		t.Fatalf("ExpectEndOfQualifiers(): %v", err)
	}

	if _, err := ParseRegister(s); err != nil {
		t.Fatalf("ParseRegister(): %v", err)
	}

	if !AcceptPipe(s) {
		t.Fatalf("AcceptPipe(): missed the pipe")
	}

	if _, err := ParsePredicate(s); err != nil {
		t.Fatalf("ParsePredicate(): %v", err)
	}

	if err := ExpectSemicolon(s); err != nil {
		t.Fatalf("ExpectSemicolon(): %v", err)
	}

	if err := ExpectEnd(s); err != nil {
		t.Fatalf("ExpectEnd(): %v", err)
	}
}

func TestHelperErrors(t *testing.T) {
	modes := []string{".clamp", ".wrap"}
	tests := []struct {
		name string
		src  string
		fn   func(*Stream) error
		want string
	}{
		{
			name: "wrong opcode",
			src:  "activemask.b32 %r1;",
			fn:   func(s *Stream) error { return ExpectOpcode(s, "bar") },
			want: `1:1: expected "bar", found "activemask"`,
		},
		{
			name: "wrong literal",
			src:  ".b16 %r1;",
			fn:   func(s *Stream) error { return ExpectDirective(s, ".b32") },
			want: `1:1: expected ".b32", found ".b16"`,
		},
		{
			name: "value outside enumeration",
			src:  ".mirror",
			fn: func(s *Stream) error {
				_, err := ExpectOneOf(s, modes)
				return err
			},
			want: `1:1: unexpected value ".mirror", expected ".clamp" or ".wrap"`,
		},
		{
			name: "missing enumeration",
			src:  "%r1",
			fn: func(s *Stream) error {
				_, err := ExpectOneOf(s, modes)
				return err
			},
			want: `1:1: expected ".clamp" or ".wrap", found "%r1"`,
		},
		{
			name: "leftover qualifier",
			src:  ".x %r1",
			fn:   func(s *Stream) error { return ExpectEndOfQualifiers(s, "register") },
			want: `1:1: expected register, found ".x"`,
		},
		{
			name: "missing semicolon",
			src:  "",
			fn:   ExpectSemicolon,
			want: `1:1: unexpected end of input, expected semicolon`,
		},
		{
			name: "missing comma",
			src:  "%r2",
			fn:   ExpectComma,
			want: `1:1: expected comma, found "%r2"`,
		},
		{
			name: "unknown opcode",
			src:  "mov %r1;",
			fn: func(s *Stream) error {
				_, err := PeekOpcode(s, []string{"add", "exit"})
				return err
			},
			want: `1:1: unexpected value "mov", expected "add" or "exit"`,
		},
		{
			name: "missing opcode",
			src:  "%r1;",
			fn: func(s *Stream) error {
				_, err := PeekOpcode(s, []string{"add"})
				return err
			},
			want: `1:1: expected instruction opcode, found "%r1"`,
		},
		{
			name: "operand of the wrong kind",
			src:  "[%rd1]",
			fn: func(s *Stream) error {
				_, err := ParseOperandOf[Register](s, KindRegister)
				return err
			},
			want: `1:1: expected register, found "["`,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.fn(streamOf(t, test.src))
			if err == nil {
				t.Fatalf("got nil, expected error %q", test.want)
			}

			if e := err.Error(); e != test.want {
				t.Fatalf("\nGot  %q\nWant %q", e, test.want)
			}
		})
	}
}

func TestPeekOpcode(t *testing.T) {
	s := streamOf(t, "exit;")
	opcode, err := PeekOpcode(s, []string{"add", "exit"})
	if err != nil || opcode != "exit" {
		t.Fatalf("PeekOpcode(): got %q, %v", opcode, err)
	}

	// The opcode is not consumed.
	if err := ExpectOpcode(s, "exit"); err != nil {
		t.Fatalf("ExpectOpcode() after PeekOpcode(): %v", err)
	}
}

func TestParseOperandOf(t *testing.T) {
	pred, err := ParseText("!%p1", func(s *Stream) (Predicate, error) {
		return ParseOperandOf[Predicate](s, KindPredicate)
	})
	if err != nil {
		t.Fatalf("ParseOperandOf[Predicate](): %v", err)
	}

	want := Predicate{Negated: true, Register: Register{Name: "%p1"}}
	if pred != want {
		t.Fatalf("ParseOperandOf[Predicate](): got %#v, want %#v", pred, want)
	}

	// A kind set whose operands do not share
	// the requested type is rejected.
	_, err = ParseText("5", func(s *Stream) (Register, error) {
		return ParseOperandOf[Register](s, KindRegister|KindImmediate)
	})
	if err == nil {
		t.Fatalf("ParseOperandOf[Register](): unexpected success for an immediate")
	}
}

func TestParseText(t *testing.T) {
	reg, err := ParseText("%r1", ParseRegister)
	if err != nil {
		t.Fatalf("ParseText(): %v", err)
	}

	if reg.Name != "%r1" {
		t.Fatalf("ParseText(): got %q, want %q", reg.Name, "%r1")
	}

	_, err = ParseText("%r1 %r2", ParseRegister)
	var unexpected *diag.UnexpectedToken
	if !errors.As(err, &unexpected) {
		t.Fatalf("ParseText(): got error %v, want a *diag.UnexpectedToken", err)
	}

	if want := `1:5: expected end of input, found "%r2"`; err.Error() != want {
		t.Fatalf("ParseText():\nGot  %q\nWant %q", err.Error(), want)
	}

	_, err = ParseText("%r1 #", ParseRegister)
	var lexErr *diag.LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("ParseText(): got error %v, want a *diag.LexError", err)
	}
}
