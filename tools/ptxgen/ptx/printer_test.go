// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"testing"
)

type addInstruction struct {
	dst, src Register
	imm      Immediate
	addr     Address
}

func (a addInstruction) Unparse(p *Printer) {
	p.Opcode("add")
	p.Directive(".s32")
	p.BeginOperands()
	a.dst.Unparse(p)
	p.Pipe()
	a.src.Unparse(p)
	p.Comma()
	a.imm.Unparse(p)
	p.Comma()
	a.addr.Unparse(p)
	p.Semicolon()
}

func TestPrinter(t *testing.T) {
	insn := addInstruction{
		dst:  Register{Name: "%r1"},
		src:  Register{Name: "%r2"},
		imm:  Immediate{Negative: true, Text: "4"},
		addr: Address{Base: Register{Name: "%rd1"}, Offset: Some(Immediate{Text: "8"})},
	}

	tests := []struct {
		mode Mode
		want string
	}{
		{Compact, "add.s32 %r1|%r2,-4,[%rd1+8];"},
		{Spaced, "add.s32 %r1|%r2, -4, [%rd1+8];\n"},
	}

	for _, test := range tests {
		t.Run(test.mode.String(), func(t *testing.T) {
			p := NewPrinter(test.mode)
			insn.Unparse(p)
			if got := p.String(); got != test.want {
				t.Fatalf("Unparse():\nGot  %q\nWant %q", got, test.want)
			}

			// The output re-tokenizes to the same
			// significant lexemes.
			lexemes, err := TokenizeString(p.String())
			if err != nil {
				t.Fatalf("Tokenize(): %v", err)
			}

			var significant []Lexeme
			for _, l := range p.Lexemes() {
				if l.Token != Space && l.Token != Newline {
					significant = append(significant, l)
				}
			}

			if len(lexemes)-1 != len(significant) {
				t.Fatalf("Tokenize(): got %d lexemes, want %d", len(lexemes)-1, len(significant))
			}

			for i, l := range significant {
				if lexemes[i].Token != l.Token || lexemes[i].Value != l.Value {
					t.Errorf("lexeme %d: got %s %q, want %s %q", i, lexemes[i].Token, lexemes[i].Value, l.Token, l.Value)
				}
			}
		})
	}
}

func TestOption(t *testing.T) {
	if v, ok := None[int]().Get(); ok || v != 0 {
		t.Errorf("None().Get(): got %d, %v", v, ok)
	}

	if v, ok := Some(3).Get(); !ok || v != 3 {
		t.Errorf("Some(3).Get(): got %d, %v", v, ok)
	}
}
