// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package ptx

// Option is a value that may be absent, used for
// optional qualifiers and secondary operands.
//
type Option[T any] struct {
	Value T
	Valid bool
}

// Some returns a present option.
//
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

// None returns an absent option.
//
func None[T any]() Option[T] {
	return Option[T]{}
}

// Get returns the value and whether it is present.
//
func (o Option[T]) Get() (T, bool) {
	return o.Value, o.Valid
}
