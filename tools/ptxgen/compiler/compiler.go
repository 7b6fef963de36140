// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package compiler runs the whole pipeline that turns an instruction
// syntax specification into types, parsers, and serializers.
//
// Each call to Compile is independent, so separate specifications
// can be compiled concurrently.
//
package compiler

import (
	"io"

	"firefly-os.dev/tools/ptxgen/config"
	"firefly-os.dev/tools/ptxgen/encoding/golang"
	"firefly-os.dev/tools/ptxgen/naming"
	"firefly-os.dev/tools/ptxgen/parsegen"
	"firefly-os.dev/tools/ptxgen/parser"
	"firefly-os.dev/tools/ptxgen/ptx"
	"firefly-os.dev/tools/ptxgen/typegen"
	"firefly-os.dev/tools/ptxgen/types"
	"firefly-os.dev/tools/ptxgen/unparsegen"
)

// Result contains the output of each stage of
// compilation.
//
type Result struct {
	Filename    string
	Config      *config.Config
	Spec        *types.Spec
	Names       *naming.Table
	Definitions *typegen.Definitions
	Parsers     *parsegen.Artifacts
	Serializers *unparsegen.Artifacts
}

// Compile compiles the specification in src, which
// can be a string, a []byte, or an io.Reader. If src
// is nil, the named file is read instead. A nil
// configuration uses the defaults.
//
// The first error encountered is returned, and no
// partial result is produced.
//
func Compile(filename string, src any, cfg *config.Config) (*Result, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	kinds, err := cfg.OperandKinds()
	if err != nil {
		return nil, err
	}

	file, err := parser.ParseFile(filename, src)
	if err != nil {
		return nil, err
	}

	spec, err := types.Interpret(filename, file, types.Options{OperandKinds: kinds})
	if err != nil {
		return nil, err
	}

	names := naming.Resolve(spec, cfg.Reserved...)
	defs, err := typegen.Generate(spec)
	if err != nil {
		return nil, err
	}

	parsers, err := parsegen.Generate(defs, spec)
	if err != nil {
		return nil, err
	}

	serializers, err := unparsegen.Generate(defs)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Filename:    filename,
		Config:      cfg,
		Spec:        spec,
		Names:       names,
		Definitions: defs,
		Parsers:     parsers,
		Serializers: serializers,
	}

	return res, nil
}

// ParseText parses a single instruction.
//
func (r *Result) ParseText(text string) (*typegen.Value, error) {
	return r.Parsers.ParseText(text)
}

// Format parses a sequence of instructions and
// prints them in canonical form.
//
func (r *Result) Format(text string, mode ptx.Mode) (string, error) {
	values, err := r.Parsers.ParseAll(text)
	if err != nil {
		return "", err
	}

	return r.Serializers.Listing(values, mode)
}

// GenerateGo writes the Go code for the compiled
// specification to w.
//
func (r *Result) GenerateGo(w io.Writer) error {
	return golang.Generate(w, &golang.Input{
		Source:      r.Filename,
		Config:      r.Config,
		Definitions: r.Definitions,
		Parsers:     r.Parsers,
		Serializers: r.Serializers,
	})
}
