// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package diag

import (
	"fmt"
	"testing"

	"firefly-os.dev/tools/ptxgen/token"
)

func span(t *testing.T, offset, line, column, n int) token.Span {
	pos, err := token.NewPosition(offset, line, column)
	if err != nil {
		t.Helper()
		t.Fatalf("invalid position: %v", err)
	}

	return token.SpanOf(pos, n)
}

func TestErrorStrings(t *testing.T) {
	tests := []struct {
		Name string
		Err  error
		Want string
	}{
		{
			Name: "unterminated",
			Err:  &LexError{Kind: UnterminatedToken, Msg: "block comment not terminated", Span: span(t, 0, 1, 1, 2)},
			Want: "1:1: unterminated token: block comment not terminated",
		},
		{
			Name: "unexpected token",
			Err:  &UnexpectedToken{Expected: []string{`".b32"`}, Found: ".b16", Span: span(t, 10, 1, 11, 4)},
			Want: `1:11: expected ".b32", found ".b16"`,
		},
		{
			Name: "unexpected token set",
			Err:  &UnexpectedToken{Expected: []string{"register", "immediate", "label"}, Found: ";", Span: span(t, 3, 1, 4, 1)},
			Want: `1:4: expected register, immediate, or label, found ";"`,
		},
		{
			Name: "unexpected value",
			Err:  &UnexpectedValue{Expected: []string{`".clamp"`, `".wrap"`}, Found: ".mirror", Span: span(t, 5, 1, 6, 7)},
			Want: `1:6: unexpected value ".mirror", expected ".clamp" or ".wrap"`,
		},
		{
			Name: "eof",
			Err:  &UnexpectedEof{Expected: []string{"semicolon"}, Span: span(t, 18, 1, 19, 0)},
			Want: "1:19: unexpected end of input, expected semicolon",
		},
		{
			Name: "unknown type",
			Err:  &UnknownTypeReference{Name: ".type", Span: span(t, 0, 2, 1, 5)},
			Want: `2:1: type ".type" is not declared`,
		},
		{
			Name: "duplicate",
			Err:  &DuplicateDeclaration{Name: ".mode", First: span(t, 0, 1, 1, 5), Second: span(t, 20, 2, 1, 5)},
			Want: `2:1: type ".mode" redeclared with different values (first declared at 1:1)`,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			if got := test.Err.Error(); got != test.Want {
				t.Errorf("Error():\nGot:  %s\nWant: %s", got, test.Want)
			}
		})
	}
}

func TestPosition(t *testing.T) {
	want := span(t, 4, 1, 5, 1)
	err := fmt.Errorf("test.ptxspec: %w", &UnexpectedToken{Found: "x", Span: want})
	got, ok := Position(err)
	if !ok {
		t.Fatalf("Position(%v): found no position", err)
	}

	if got != want.Start {
		t.Errorf("Position(%v): got %#v, want %#v", err, got, want.Start)
	}

	if _, ok := Position(fmt.Errorf("plain")); ok {
		t.Errorf("Position(plain error): unexpected position")
	}
}
