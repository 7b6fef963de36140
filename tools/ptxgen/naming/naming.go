// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package naming chooses collision-free identifiers for the types
// generated from a specification.
//
// Each declaration derives a base name from its text. The first
// declaration to use a base keeps it, and later ones are numbered
// Base0, Base1, and so on, with a counter local to that base. The
// result therefore depends only on the declarations sharing a base,
// and not on unrelated declarations elsewhere in the document.
//
package naming

import (
	"fmt"
	"sort"
	"strconv"

	"firefly-os.dev/tools/ptxgen/types"
)

// unnamed is the base used for an empty name.
//
const unnamed = "Unnamed"

// Scope allocates unique identifiers within one
// namespace.
//
type Scope struct {
	used     map[string]bool
	counters map[string]int // Next suffix for each base.
}

// NewScope returns an empty scope, with the given
// names reserved.
//
func NewScope(reserved ...string) *Scope {
	s := &Scope{
		used:     make(map[string]bool),
		counters: make(map[string]int),
	}

	for _, name := range reserved {
		s.Reserve(name)
	}

	return s
}

// Name returns a unique identifier derived from
// base.
//
func (s *Scope) Name(base string) string {
	if base == "" {
		base = unnamed
	}

	if !s.used[base] {
		s.used[base] = true
		return base
	}

	for {
		n := s.counters[base]
		s.counters[base] = n + 1
		candidate := base + strconv.Itoa(n)
		if !s.used[candidate] {
			s.used[candidate] = true
			return candidate
		}
	}
}

// Reserve marks a name as used without returning
// it.
//
func (s *Scope) Reserve(name string) {
	s.used[name] = true
}

// Used returns whether the name has been taken.
//
func (s *Scope) Used(name string) bool {
	return s.used[name]
}

// Reserved contains the identifiers that generated
// code declares for itself.
//
var Reserved = []string{"Parse", "Parsers"}

// Entry records one assigned name.
//
type Entry struct {
	Key  string // Structural key.
	Base string // Name derived from the declaration.
	Name string // Name assigned.
}

// Table maps structural keys to the names assigned
// to them.
//
type Table struct {
	Entries []Entry // In declaration order.
	names   map[string]string
}

// Lookup returns the name assigned to the given
// key.
//
func (t *Table) Lookup(key string) (string, bool) {
	name, ok := t.names[key]
	return name, ok
}

func (t *Table) add(key, base, name string) {
	t.Entries = append(t.Entries, Entry{Key: key, Base: base, Name: name})
	t.names[key] = name
}

// FamilyKey returns the structural key of a family.
//
func FamilyKey(fam *types.Family) string {
	return "family " + fam.Opcode
}

// FormKey returns the structural key of a form.
//
func FormKey(form *types.Form) string {
	return fmt.Sprintf("form %d %s", form.Index, form.Node.Source())
}

// TypeKey returns the structural key of a type
// declaration.
//
func TypeKey(t *types.TypeDecl) string {
	if t.Scope == nil {
		return "type " + t.Placeholder
	}

	return "type " + t.Placeholder + " in " + t.Scope.Opcode
}

// FamilyBase returns the base name of a family: its
// opcode.
//
func FamilyBase(fam *types.Family) string {
	return types.NameOf(fam.Opcode).PascalCase()
}

// FormBase returns the base name of a union variant:
// its opcode, mandatory literal qualifiers and
// placeholder names.
//
func FormBase(form *types.Form) string {
	name := types.NameOf(form.Family.Opcode)
	for _, q := range form.Qualifiers {
		switch q.Kind {
		case types.QualifierLiteral:
			name = append(name, types.NameOf(q.Literal)...)
		case types.QualifierTyped, types.QualifierOptionalTyped:
			name = append(name, types.NameOf(q.Type.Placeholder)...)
		}
	}

	return name.PascalCase()
}

// TypeBase returns the base name of a type
// declaration: its placeholder.
//
func TypeBase(t *types.TypeDecl) string {
	return types.NameOf(t.Placeholder).PascalCase()
}

// Resolve assigns a name to every family, union
// variant and type declaration in the specification,
// recording them in the declarations and in the
// returned table.
//
// Each call uses a fresh namespace, so resolving the
// same specification twice gives the same names.
// Any additional reserved names are never assigned,
// alongside those in Reserved.
//
func Resolve(spec *types.Spec, reserved ...string) *Table {
	type item struct {
		offset int
		rank   int // Orders a family before its first form.
		assign func(scope *Scope, table *Table)
	}

	var items []item
	for _, decl := range spec.Decls {
		switch decl := decl.(type) {
		case *types.Family:
			fam := decl
			items = append(items, item{
				offset: fam.Pos().Offset(),
				assign: func(scope *Scope, table *Table) {
					base := FamilyBase(fam)
					fam.Name = scope.Name(base)
					table.add(FamilyKey(fam), base, fam.Name)
				},
			})

			if !fam.Union() {
				continue
			}

			for _, form := range fam.Forms {
				form := form
				items = append(items, item{
					offset: form.Node.Pos().Offset(),
					rank:   1,
					assign: func(scope *Scope, table *Table) {
						base := FormBase(form)
						form.Name = scope.Name(base)
						table.add(FormKey(form), base, form.Name)
					},
				})
			}
		case *types.TypeDecl:
			t := decl
			items = append(items, item{
				offset: t.Pos().Offset(),
				assign: func(scope *Scope, table *Table) {
					base := TypeBase(t)
					t.Name = scope.Name(base)
					table.add(TypeKey(t), base, t.Name)
				},
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].offset != items[j].offset {
			return items[i].offset < items[j].offset
		}

		return items[i].rank < items[j].rank
	})

	names := make([]string, 0, len(Reserved)+len(reserved))
	names = append(names, Reserved...)
	names = append(names, reserved...)
	scope := NewScope(names...)
	table := &Table{names: make(map[string]string)}
	for _, item := range items {
		item.assign(scope, table)
	}

	// Single-form families are their own record.
	for _, fam := range spec.Families {
		if !fam.Union() {
			fam.Forms[0].Name = fam.Name
		}
	}

	return table
}
