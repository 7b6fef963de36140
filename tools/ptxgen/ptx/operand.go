// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"fmt"

	"firefly-os.dev/tools/ptxgen/diag"
)

// Operand represents a parsed instruction operand.
//
type Operand interface {
	Kind() Kind
	Unparse(p *Printer)
}

var (
	_ Operand = Register{}
	_ Operand = Immediate{}
	_ Operand = Address{}
	_ Operand = Label{}
	_ Operand = Predicate{}
)

// Register is a named register, such as "%r1" or
// "%tid.x".
//
type Register struct {
	Name string
}

func (r Register) Kind() Kind         { return KindRegister }
func (r Register) Unparse(p *Printer) { p.Token(RegisterName, r.Name) }

// Immediate is a numeric constant. The literal text
// is kept as written, so it can be reproduced
// exactly.
//
type Immediate struct {
	Negative bool
	Text     string
	Float    bool
}

func (i Immediate) Kind() Kind { return KindImmediate }
func (i Immediate) Unparse(p *Printer) {
	if i.Negative {
		p.Token(Minus, "-")
	}

	i.unparseMagnitude(p)
}

func (i Immediate) unparseMagnitude(p *Printer) {
	if i.Float {
		p.Token(Float, i.Text)
	} else {
		p.Token(Integer, i.Text)
	}
}

// Address is a memory reference, such as "[%rd1]"
// or "[%rd1+8]".
//
type Address struct {
	Base   Operand // Register or Label.
	Offset Option[Immediate]
}

func (a Address) Kind() Kind { return KindAddress }
func (a Address) Unparse(p *Printer) {
	p.Token(BracketOpen, "[")
	a.Base.Unparse(p)
	if a.Offset.Valid {
		if a.Offset.Value.Negative {
			p.Token(Minus, "-")
		} else {
			p.Token(Plus, "+")
		}

		a.Offset.Value.unparseMagnitude(p)
	}

	p.Token(BracketClose, "]")
}

// Label is a branch target or symbol name.
//
type Label struct {
	Name string
}

func (l Label) Kind() Kind         { return KindLabel }
func (l Label) Unparse(p *Printer) { p.Token(Identifier, l.Name) }

// Predicate is a predicate register, optionally
// negated, such as "!%p1".
//
type Predicate struct {
	Negated  bool
	Register Register
}

func (pr Predicate) Kind() Kind { return KindPredicate }
func (pr Predicate) Unparse(p *Printer) {
	if pr.Negated {
		p.Token(Bang, "!")
	}

	pr.Register.Unparse(p)
}

// ParseRegister parses a register operand.
//
func ParseRegister(s *Stream) (Register, error) {
	l, err := s.Expect(RegisterName)
	if err != nil {
		return Register{}, err
	}

	return Register{Name: l.Value}, nil
}

// ParseImmediate parses an immediate operand:
//
// 	immediate = [ "-" ] ( Integer | Float ) .
//
func ParseImmediate(s *Stream) (Immediate, error) {
	var imm Immediate
	if _, ok := s.Accept(Minus); ok {
		imm.Negative = true
	}

	switch l := s.Peek(); l.Token {
	case Integer:
		imm.Text = s.Advance().Value
	case Float:
		imm.Text = s.Advance().Value
		imm.Float = true
	default:
		return Immediate{}, s.Unexpected(Integer.String(), Float.String())
	}

	return imm, nil
}

// ParseAddress parses an address operand:
//
// 	address = "[" ( Register | Identifier ) [ ( "+" | "-" ) ( Integer | Float ) ] "]" .
//
func ParseAddress(s *Stream) (Address, error) {
	var addr Address
	if _, err := s.Expect(BracketOpen); err != nil {
		return Address{}, err
	}

	switch l := s.Peek(); l.Token {
	case RegisterName:
		addr.Base = Register{Name: s.Advance().Value}
	case Identifier:
		addr.Base = Label{Name: s.Advance().Value}
	default:
		return Address{}, s.Unexpected(RegisterName.String(), Identifier.String())
	}

	switch s.Peek().Token {
	case Plus, Minus:
		sign := s.Advance()
		switch l := s.Peek(); l.Token {
		case Integer, Float:
			s.Advance()
			addr.Offset = Some(Immediate{
				Negative: sign.Token == Minus,
				Text:     l.Value,
				Float:    l.Token == Float,
			})
		default:
			return Address{}, s.Unexpected(Integer.String(), Float.String())
		}
	}

	if _, err := s.Expect(BracketClose); err != nil {
		return Address{}, err
	}

	return addr, nil
}

// ParseLabel parses a label operand.
//
func ParseLabel(s *Stream) (Label, error) {
	l, err := s.Expect(Identifier)
	if err != nil {
		return Label{}, err
	}

	return Label{Name: l.Value}, nil
}

// ParsePredicate parses a predicate operand:
//
// 	predicate = [ "!" ] Register .
//
func ParsePredicate(s *Stream) (Predicate, error) {
	var pred Predicate
	if _, ok := s.Accept(Bang); ok {
		pred.Negated = true
	}

	reg, err := ParseRegister(s)
	if err != nil {
		return Predicate{}, err
	}

	pred.Register = reg

	return pred, nil
}

// ParseOperand parses an operand of any of the
// given kinds, choosing the grammar from the next
// token.
//
func ParseOperand(s *Stream, kinds Kind) (Operand, error) {
	switch s.Peek().Token {
	case RegisterName:
		switch {
		case kinds&KindRegister != 0:
			return ParseRegister(s)
		case kinds&KindPredicate != 0:
			return ParsePredicate(s)
		}
	case Bang:
		if kinds&KindPredicate != 0 {
			return ParsePredicate(s)
		}
	case Minus, Integer, Float:
		if kinds&KindImmediate != 0 {
			return ParseImmediate(s)
		}
	case BracketOpen:
		if kinds&KindAddress != 0 {
			return ParseAddress(s)
		}
	case Identifier:
		if kinds&KindLabel != 0 {
			return ParseLabel(s)
		}
	}

	return nil, s.Unexpected(kinds.Names()...)
}

// ParseOperandOf parses an operand of the given
// kinds, which must all be represented by T.
//
func ParseOperandOf[T Operand](s *Stream, kinds Kind) (T, error) {
	var zero T
	start := s.Peek()
	op, err := ParseOperand(s, kinds)
	if err != nil {
		return zero, err
	}

	v, ok := op.(T)
	if !ok {
		return zero, &diag.UnexpectedToken{Expected: []string{fmt.Sprintf("%T", zero)}, Found: start.Value, Span: start.Span}
	}

	return v, nil
}
