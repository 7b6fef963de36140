// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"firefly-os.dev/tools/ptxgen/format"
)

func init() {
	RegisterCommand("tree", "Print the analysed declarations of a specification as a tree.", cmdTree)
}

func cmdTree(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("tree", flag.ExitOnError)

	var help bool
	var configFile string
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.StringVar(&configFile, "config", "", "Path to a TOML or Starlark file containing the generator settings.")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS] FILE\n\n", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help {
		flags.Usage()
	}

	args = flags.Args()
	if len(args) != 1 {
		log.Printf("%s %s can only print one file at a time.", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(1)
	}

	res, err := compileSpec(args[0], configFile)
	if err != nil {
		return err
	}

	return format.Fprint(w, format.Tree(res.Spec))
}
