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

	"github.com/davecgh/go-spew/spew"
)

func init() {
	RegisterCommand("dump", "Print the type definitions derived from a specification.", cmdDump)
}

func cmdDump(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("dump", flag.ExitOnError)

	var help bool
	var depth int
	var configFile string
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.IntVar(&depth, "depth", 4, "Maximum depth of nested values to print.")
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
		log.Printf("%s %s can only dump one file at a time.", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(1)
	}

	res, err := compileSpec(args[0], configFile)
	if err != nil {
		return err
	}

	cfg := spew.ConfigState{
		Indent:                  "  ",
		MaxDepth:                depth,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}

	for _, fam := range res.Definitions.Families {
		for _, rec := range fam.Records {
			cfg.Fdump(w, rec.Name, rec.Fields)
		}
	}

	return nil
}
