package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/pipeline"
)

func irCmd(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("ir", flag.ExitOnError)
	root := fs.String("root", cfg.Root, "Project root for import resolution (default: entry file's directory)")
	output := fs.String("output", "", "Write JSON to file instead of stdout")
	verbose := fs.Bool("verbose", cfg.Verbose, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scenec ir <entry.scene> [options]

Print the lowered program as JSON.

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
	data, err := ir.ToJSON(res.Program)
	if err != nil {
		return err
	}
	return writeOut(*output, data)
}
