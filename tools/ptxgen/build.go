// Copyright 2022 The Firefly Authors.
//
// Use of this source code is governed by a BSD 3-clause
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"firefly-os.dev/tools/ptxgen/compiler"
)

func init() {
	RegisterCommand("build", "Compile instruction syntax specifications into Go code.", cmdBuild)
}

func cmdBuild(ctx context.Context, w io.Writer, args []string) error {
	flags := flag.NewFlagSet("build", flag.ExitOnError)

	var help, check bool
	var configFile, out string
	flags.BoolVar(&help, "h", false, "Show this message and exit.")
	flags.BoolVar(&check, "check", false, "Exit with an error if the generated code differs from the existing output.")
	flags.StringVar(&configFile, "config", "", "Path to a TOML or Starlark file containing the generator settings.")
	flags.StringVar(&out, "out", "", "Directory where the Go files should be written (default: stdout, with a single file).")

	flags.Usage = func() {
		log.Printf("Usage:\n  %s %s [OPTIONS] FILE...\n\n", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(2)
	}

	err := flags.Parse(args)
	if err != nil || help {
		flags.Usage()
	}

	args = flags.Args()
	if len(args) == 0 {
		log.Printf("%s %s: no files specified.", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(1)
	}

	if out == "" && len(args) > 1 {
		log.Printf("%s %s: -out must be specified to build more than one file.", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(1)
	}

	if check && out == "" {
		log.Printf("%s %s: -check requires -out.", program, flags.Name())
		flags.PrintDefaults()
		os.Exit(1)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}

	// Each specification is compiled independently.
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.NumCPU())
	for _, filename := range args {
		filename := filename
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			res, err := compiler.Compile(filename, nil, cfg)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			err = res.GenerateGo(&buf)
			if err != nil {
				return fmt.Errorf("failed to generate code for %s: %v", filename, err)
			}

			if out == "" {
				_, err = w.Write(buf.Bytes())
				return err
			}

			name := filepath.Join(out, outputName(filename))
			if check {
				existing, err := os.ReadFile(name)
				if err != nil {
					return err
				}

				if !bytes.Equal(existing, buf.Bytes()) {
					return fmt.Errorf("%s is out of date with %s", name, filename)
				}

				return nil
			}

			err = os.WriteFile(name, buf.Bytes(), 0644)
			if err != nil {
				return fmt.Errorf("failed to write %s: %v", name, err)
			}

			return nil
		})
	}

	return group.Wait()
}

// outputName returns the name of the Go file
// generated from the named specification.
//
func outputName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".go"
}
