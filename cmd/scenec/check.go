package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/scenec-xyz/go-scenec/pipeline"
)

func check(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("check", flag.ExitOnError)
	root := fs.String("root", cfg.Root, "Project root for import resolution (default: entry file's directory)")
	verbose := fs.Bool("verbose", cfg.Verbose, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scenec check <entry.scene> [options]

Compile and validate a scene without emitting anything.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("entry scene file required")
	}

	log := newLogger(*verbose)
	res, err := pipeline.Compile(pipeline.Options{
		Entry: fs.Arg(0),
		Root:  *root,
	}, log)
	if err != nil {
		return err
	}
	fmt.Printf("%s: ok (%d schemas, %d actors, %d rules)\n",
		fs.Arg(0), len(res.Spec.Schemas), len(res.Spec.Actors), len(res.Spec.Rules))
	return nil
}
