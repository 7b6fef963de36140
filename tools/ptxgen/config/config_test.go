// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"firefly-os.dev/tools/ptxgen/ptx"
)

func TestParse(t *testing.T) {
	tests := []struct {
		Name     string
		Filename string
		Data     string
		Want     *Config
	}{
		{
			Name:     "empty TOML",
			Filename: "test.toml",
			Data:     ``,
			Want:     &Config{Package: "insn"},
		},
		{
			Name:     "full TOML",
			Filename: "test.toml",
			Data: `
				package = "ptx"
				isa_version = "8.3"
				reserved = ["Decode"]
				spaced = true

				[operands]
				c = "register|immediate"
				tgt = "label"
			`,
			Want: &Config{
				Package:    "ptx",
				ISAVersion: "v8.3.0",
				Operands: map[string]string{
					"c":   "register|immediate",
					"tgt": "label",
				},
				Reserved: []string{"Decode"},
				Spaced:   true,
			},
		},
		{
			Name:     "full Starlark",
			Filename: "test.bzl",
			Data: `
# Generator settings.
package = "ptx"
isa_version = "v7.8"
reserved = ["Decode"]
spaced = True
operands = {
    "c": "register|immediate",
    "tgt": "label",
}
`,
			Want: &Config{
				Package:    "ptx",
				ISAVersion: "v7.8.0",
				Operands: map[string]string{
					"c":   "register|immediate",
					"tgt": "label",
				},
				Reserved: []string{"Decode"},
				Spaced:   true,
			},
		},
		{
			Name:     "empty Starlark",
			Filename: "test.star",
			Data:     ``,
			Want:     &Config{Package: "insn"},
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := Parse(test.Filename, []byte(test.Data))
			if err != nil {
				t.Fatalf("Parse(): unexpected error: %v", err)
			}

			if diff := cmp.Diff(test.Want, got); diff != "" {
				t.Fatalf("Parse(): (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		Name     string
		Filename string
		Data     string
		Want     string
	}{
		{
			Name:     "unknown TOML setting",
			Filename: "test.toml",
			Data:     `foo = 1`,
			Want:     `test.toml: unrecognised setting "foo"`,
		},
		{
			Name:     "invalid version",
			Filename: "test.toml",
			Data:     `isa_version = "eight"`,
			Want:     `test.toml: invalid ISA version "eight"`,
		},
		{
			Name:     "prerelease version",
			Filename: "test.toml",
			Data:     `isa_version = "8.3.0-rc1"`,
			Want:     `test.toml: invalid ISA version "8.3.0-rc1"`,
		},
		{
			Name:     "invalid package",
			Filename: "test.toml",
			Data:     `package = "my-insn"`,
			Want:     `test.toml: invalid package name "my-insn"`,
		},
		{
			Name:     "invalid operand kind",
			Filename: "test.toml",
			Data:     "[operands]\nc = \"vector\"",
			Want:     `test.toml: operand "c": invalid operand kind "vector"`,
		},
		{
			Name:     "invalid reserved name",
			Filename: "test.toml",
			Data:     `reserved = ["1st"]`,
			Want:     `test.toml: invalid reserved name "1st"`,
		},
		{
			Name:     "unknown Starlark setting",
			Filename: "test.bzl",
			Data:     `foo = "bar"`,
			Want:     `test.bzl:1: unrecognised setting "foo"`,
		},
		{
			Name:     "Starlark type mismatch",
			Filename: "test.bzl",
			Data:     `package = True`,
			Want:     `test.bzl:1: found bool value for package, want string`,
		},
		{
			Name:     "Starlark bool mismatch",
			Filename: "test.bzl",
			Data:     `spaced = "yes"`,
			Want:     `test.bzl:1: found string value for spaced, want bool`,
		},
		{
			Name:     "Starlark invalid bool",
			Filename: "test.bzl",
			Data:     `spaced = Yes`,
			Want:     `test.bzl:1: found identifier value "Yes", want bool`,
		},
		{
			Name:     "Starlark list mismatch",
			Filename: "test.bzl",
			Data:     `operands = ["c"]`,
			Want:     `test.bzl:1: found list value for operands, want map`,
		},
		{
			Name:     "Starlark statement",
			Filename: "test.bzl",
			Data:     `print("hi")`,
			Want:     `test.bzl:1: unexpected statement type: *build.CallExpr`,
		},
		{
			Name:     "Starlark duplicate key",
			Filename: "test.bzl",
			Data:     `operands = {"c": "label", "c": "register"}`,
			Want:     `test.bzl:1: duplicate operands key c`,
		},
	}

	for _, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			got, err := Parse(test.Filename, []byte(test.Data))
			if err == nil {
				t.Fatalf("Parse(): unexpected success: %+v", got)
			}

			if e := err.Error(); e != test.Want {
				t.Fatalf("Parse():\nGot:  %s\nWant: %s", e, test.Want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "ptxgen.toml")
	err := os.WriteFile(name, []byte("isa_version = \"8.3\"\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(name)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if cfg.Package != DefaultPackage || cfg.Version() != "8.3" {
		t.Fatalf("Load(): got package %q and version %q", cfg.Package, cfg.Version())
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Fatalf("Load(missing): unexpected success")
	}
}

func TestVersion(t *testing.T) {
	cfg := &Config{ISAVersion: "8.3"}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	for version, want := range map[string]bool{
		"7.0":    true,
		"8.3":    true,
		"v8.2.1": true,
		"8.4":    false,
		"9":      false,
	} {
		if got := cfg.Supports(version); got != want {
			t.Errorf("Supports(%q): got %v, want %v", version, got, want)
		}
	}

	if !Default().Supports("99.0") {
		t.Errorf("Default().Supports(): got false, want true")
	}

	if v := Default().Version(); v != "" {
		t.Errorf("Default().Version(): got %q, want empty", v)
	}
}

func TestOperandKinds(t *testing.T) {
	cfg := &Config{Operands: map[string]string{
		"c":   "register | immediate",
		"tgt": "label",
	}}

	got, err := cfg.OperandKinds()
	if err != nil {
		t.Fatalf("OperandKinds(): %v", err)
	}

	want := map[string]ptx.Kind{
		"c":   ptx.KindRegister | ptx.KindImmediate,
		"tgt": ptx.KindLabel,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("OperandKinds(): (-want, +got)\n%s", diff)
	}

	got, err = Default().OperandKinds()
	if err != nil || got != nil {
		t.Fatalf("Default().OperandKinds(): got %v, %v", got, err)
	}
}

func TestMode(t *testing.T) {
	if got := Default().Mode(); got != ptx.Compact {
		t.Errorf("Default().Mode(): got %v, want %v", got, ptx.Compact)
	}

	cfg, err := Parse("test.bzl", []byte("spaced = False\n"))
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.Mode(); got != ptx.Compact {
		t.Errorf("Mode(): got %v, want %v", got, ptx.Compact)
	}

	cfg, err = Parse("test.bzl", []byte("spaced = True\n"))
	if err != nil {
		t.Fatal(err)
	}

	if got := cfg.Mode(); got != ptx.Spaced {
		t.Errorf("Mode(): got %v, want %v", got, ptx.Spaced)
	}
}
