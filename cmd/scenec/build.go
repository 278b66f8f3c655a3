package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/scenec-xyz/go-scenec/pipeline"
)

func build(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("build", flag.ExitOnError)
	root := fs.String("root", cfg.Root, "Project root for import resolution (default: entry file's directory)")
	out := fs.String("out", cfg.Out, "Output directory for the generated package (required)")
	project := fs.String("project", cfg.Project, "Project tree to mirror the generated package into")
	unboxed := fs.Bool("unboxed", cfg.Unboxed, "Generate plain typed actor fields instead of wrapped values")
	verbose := fs.Bool("verbose", cfg.Verbose, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scenec build <entry.scene> [options]

Compile a scene and emit the generated runtime package.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Build into ./gen
  scenec build game.scene --out gen

  # Unboxed actor types, mirrored into a project
  scenec build game.scene --out gen --unboxed --project ../mygame
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("entry scene file required")
	}
	if *out == "" {
		fs.Usage()
		return fmt.Errorf("output directory required (--out)")
	}

	log := newLogger(*verbose)
	_, err = pipeline.Run(pipeline.Options{
		Entry:      fs.Arg(0),
		Root:       *root,
		OutDir:     *out,
		ProjectDir: *project,
		Unboxed:    *unboxed,
	}, log)
	return err
}
