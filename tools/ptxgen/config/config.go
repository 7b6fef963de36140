// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

// Package config loads the settings used when generating code from
// an instruction syntax specification.
//
// Settings can be stored in a TOML file:
//
// 	package = "insn"
// 	isa_version = "8.3"
// 	spaced = true
//
// 	[operands]
// 	c = "register|immediate"
//
// or in a Starlark file, using the same names:
//
// 	package = "insn"
// 	isa_version = "8.3"
// 	spaced = True
// 	operands = {
// 	    "c": "register|immediate",
// 	}
//
package config

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"

	"firefly-os.dev/tools/ptxgen/ptx"
)

// DefaultPackage is the package name used for
// generated code if none is configured.
//
const DefaultPackage = "insn"

// Config contains the generator settings.
//
type Config struct {
	// Package is the name of the Go package
	// for generated code.
	Package string `toml:"package" bzl:"package"`

	// ISAVersion is the version of the PTX
	// instruction set the specification
	// describes, such as "8.3".
	ISAVersion string `toml:"isa_version" bzl:"isa_version"`

	// Operands maps operand names to the
	// kinds of operand they accept, such as
	// "register|immediate".
	Operands map[string]string `toml:"operands" bzl:"operands"`

	// Reserved lists identifiers that must
	// not be used for generated types.
	Reserved []string `toml:"reserved" bzl:"reserved"`

	// Spaced selects the spaced layout when
	// printing instructions, rather than the
	// compact canonical form.
	Spaced bool `toml:"spaced" bzl:"spaced"`
}

// Default returns the configuration used when no
// configuration file is given.
//
func Default() *Config {
	return &Config{Package: DefaultPackage}
}

// Load reads the configuration in the named file.
// Files ending in ".bzl" or ".star" are parsed as
// Starlark, and any other file is parsed as TOML.
//
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Parse(filename, data)
}

// Parse decodes configuration data. The filename is
// used to choose the format and in error messages.
//
func Parse(filename string, data []byte) (*Config, error) {
	cfg := new(Config)
	switch filepath.Ext(filename) {
	case ".bzl", ".star":
		err := unmarshalStarlark(filename, data, cfg)
		if err != nil {
			return nil, err
		}
	default:
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}

		if undecoded := md.Undecoded(); len(undecoded) != 0 {
			return nil, fmt.Errorf("%s: unrecognised setting %q", filename, undecoded[0].String())
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}

	return cfg, nil
}

// Validate checks the configuration, filling in
// defaults and canonicalising the ISA version.
//
func (c *Config) Validate() error {
	if c.Package == "" {
		c.Package = DefaultPackage
	}

	if !token.IsIdentifier(c.Package) {
		return fmt.Errorf("invalid package name %q", c.Package)
	}

	if c.ISAVersion != "" {
		v := c.ISAVersion
		if !strings.HasPrefix(v, "v") {
			v = "v" + v
		}

		if !semver.IsValid(v) || semver.Prerelease(v) != "" || semver.Build(v) != "" {
			return fmt.Errorf("invalid ISA version %q", c.ISAVersion)
		}

		c.ISAVersion = semver.Canonical(v)
	}

	for _, name := range c.Reserved {
		if !token.IsIdentifier(name) {
			return fmt.Errorf("invalid reserved name %q", name)
		}
	}

	if _, err := c.OperandKinds(); err != nil {
		return err
	}

	return nil
}

// Version returns the ISA version in its short form,
// such as "8.3", or the empty string if none is set.
//
func (c *Config) Version() string {
	if c.ISAVersion == "" {
		return ""
	}

	return strings.TrimPrefix(semver.MajorMinor(c.ISAVersion), "v")
}

// Supports returns whether the configured ISA version
// is at least the given version. A configuration with
// no version supports everything.
//
func (c *Config) Supports(version string) bool {
	if c.ISAVersion == "" {
		return true
	}

	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}

	return semver.Compare(c.ISAVersion, version) >= 0
}

// Mode returns the layout for printed instructions.
//
func (c *Config) Mode() ptx.Mode {
	if c.Spaced {
		return ptx.Spaced
	}

	return ptx.Compact
}

// OperandKinds parses the operand overrides.
//
func (c *Config) OperandKinds() (map[string]ptx.Kind, error) {
	if len(c.Operands) == 0 {
		return nil, nil
	}

	// Report problems in a stable order.
	names := make([]string, 0, len(c.Operands))
	for name := range c.Operands {
		names = append(names, name)
	}

	sort.Strings(names)
	kinds := make(map[string]ptx.Kind, len(names))
	for _, name := range names {
		kind, err := ptx.ParseKind(c.Operands[name])
		if err != nil {
			return nil, fmt.Errorf("operand %q: %w", name, err)
		}

		kinds[name] = kind
	}

	return kinds, nil
}
