// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"reflect"

	"github.com/bazelbuild/buildtools/build"
)

// unmarshalStarlark parses a Starlark file into the
// structure pointed to by v. Each top-level statement
// must assign to an identifier that matches the bzl
// tag of one of the structure's fields.
//
func unmarshalStarlark(filename string, data []byte, v any) error {
	f, err := build.ParseBzl(filename, data)
	if err != nil {
		return err
	}

	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("invalid value type: got %T, expected pointer to struct", v)
	}

	val = val.Elem()
	structType := val.Type()
	for _, stmt := range f.Stmt {
		if _, ok := stmt.(*build.CommentBlock); ok {
			continue
		}

		assign, ok := stmt.(*build.AssignExpr)
		if !ok {
			return fmt.Errorf("%s: unexpected statement type: %T", pos(filename, stmt), stmt)
		}

		lhs, ok := assign.LHS.(*build.Ident)
		if !ok {
			return fmt.Errorf("%s: found assignment to %T, expected identifier", pos(filename, assign.LHS), assign.LHS)
		}

		found := false
		for i := 0; i < structType.NumField(); i++ {
			if tag, ok := structType.Field(i).Tag.Lookup("bzl"); !ok || tag != lhs.Name {
				continue
			}

			found = true
			err = unmarshal(filename, assign.RHS, lhs.Name, val.Field(i))
			if err != nil {
				return err
			}

			break
		}

		if !found {
			return fmt.Errorf("%s: unrecognised setting %q", pos(filename, assign.LHS), lhs.Name)
		}
	}

	return nil
}

// pos returns a file:line prefix for error
// messages.
//
func pos(filename string, x build.Expr) string {
	start, _ := x.Span()
	return fmt.Sprintf("%s:%d", filename, start.Line)
}

func unmarshal(filename string, x build.Expr, name string, v reflect.Value) error {
	switch expr := x.(type) {
	case *build.Ident:
		if expr.Name != "True" && expr.Name != "False" {
			return fmt.Errorf("%s: found identifier value %q, want bool", pos(filename, x), expr.Name)
		}

		if v.Kind() != reflect.Bool {
			return fmt.Errorf("%s: found bool value for %s, want %s", pos(filename, x), name, v.Kind())
		}

		v.SetBool(expr.Name == "True")
	case *build.StringExpr:
		if v.Kind() != reflect.String {
			return fmt.Errorf("%s: found string value for %s, want %s", pos(filename, x), name, v.Kind())
		}

		v.SetString(expr.Value)
	case *build.ListExpr:
		if v.Kind() != reflect.Slice {
			return fmt.Errorf("%s: found list value for %s, want %s", pos(filename, x), name, v.Kind())
		}

		v.Set(reflect.MakeSlice(v.Type(), len(expr.List), len(expr.List)))
		for i, elt := range expr.List {
			err := unmarshal(filename, elt, fmt.Sprintf("%s[%d]", name, i), v.Index(i))
			if err != nil {
				return err
			}
		}
	case *build.DictExpr:
		if v.Kind() != reflect.Map {
			return fmt.Errorf("%s: found dict value for %s, want %s", pos(filename, x), name, v.Kind())
		}

		keyType := v.Type().Key()
		elemType := v.Type().Elem()
		v.Set(reflect.MakeMapWithSize(v.Type(), len(expr.List)))
		for _, elt := range expr.List {
			key := reflect.New(keyType).Elem()
			err := unmarshal(filename, elt.Key, name+" key", key)
			if err != nil {
				return err
			}

			if v.MapIndex(key).IsValid() {
				return fmt.Errorf("%s: duplicate %s key %v", pos(filename, elt.Key), name, key)
			}

			val := reflect.New(elemType).Elem()
			err = unmarshal(filename, elt.Value, name+" value", val)
			if err != nil {
				return err
			}

			v.SetMapIndex(key, val)
		}
	default:
		return fmt.Errorf("%s: unexpected Starlark value of type %T", pos(filename, x), x)
	}

	return nil
}
