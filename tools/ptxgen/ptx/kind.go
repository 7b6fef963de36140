// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

import (
	"fmt"
	"strings"
)

// Kind is a set of operand kinds. An operand slot
// that accepts more than one kind is a disjunction.
//
type Kind uint8

const (
	KindRegister Kind = 1 << iota
	KindImmediate
	KindAddress
	KindLabel
	KindPredicate

	kindAll = KindRegister | KindImmediate | KindAddress | KindLabel | KindPredicate
)

var kindNames = []struct {
	Kind Kind
	Name string
}{
	{KindRegister, "register"},
	{KindImmediate, "immediate"},
	{KindAddress, "address"},
	{KindLabel, "label"},
	{KindPredicate, "predicate"},
}

// Has returns whether k includes every kind in
// other.
//
func (k Kind) Has(other Kind) bool {
	return other != 0 && k&other == other
}

// Names returns the names of the kinds in k, in
// canonical order.
//
func (k Kind) Names() []string {
	var names []string
	for _, kind := range kindNames {
		if k&kind.Kind != 0 {
			names = append(names, kind.Name)
		}
	}

	return names
}

func (k Kind) String() string {
	if k == 0 || k&^kindAll != 0 {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}

	return strings.Join(k.Names(), "|")
}

// ParseKind parses a disjunction of operand kind
// names, such as "register|immediate".
//
func ParseKind(s string) (Kind, error) {
	var k Kind
	for _, name := range strings.Split(s, "|") {
		name = strings.TrimSpace(name)
		found := false
		for _, kind := range kindNames {
			if kind.Name == name {
				k |= kind.Kind
				found = true
				break
			}
		}

		if !found {
			return 0, fmt.Errorf("invalid operand kind %q", name)
		}
	}

	return k, nil
}
