// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"firefly-os.dev/tools/ptxgen/ptx"
)

func init() {
	RegisterCommand("parse", "Parse instructions with a specification and print them in canonical form.", cmdParse)
}

func cmdParse(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("parse", flag.ExitOnError)

	var help, spaced, verbose bool
	var specFile, configFile string
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.BoolVar(&spaced, "spaced", false, "Print a space after each comma and a newline after each instruction, overriding the configuration.")
	flags.BoolVar(&verbose, "v", false, "Print the parsed value of each instruction.")
	flags.StringVar(&specFile, "spec", "", "Path to the instruction syntax specification.")
	flags.StringVar(&configFile, "config", "", "Path to a TOML or Starlark file containing the generator settings.")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS] [INSTRUCTION...]\n\n", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help {
		flags.Usage()
	}

	if specFile == "" {
		log.Printf("%s %s: -spec not specified.", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(1)
	}

	res, err := compileSpec(specFile, configFile)
	if err != nil {
		return err
	}

	var text string
	if args = flags.Args(); len(args) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %v", err)
		}

		text = string(data)
	} else {
		text = strings.Join(args, "\n")
	}

	values, err := res.Parsers.ParseAll(text)
	if err != nil {
		return err
	}

	mode := res.Config.Mode()
	if spaced {
		mode = ptx.Spaced
	}

	for _, v := range values {
		s, err := res.Serializers.Text(v, mode)
		if err != nil {
			return err
		}

		if mode == ptx.Compact {
			s += "\n"
		}

		if verbose {
			s = v.String() + "\n" + s
		}

		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}

	return nil
}
