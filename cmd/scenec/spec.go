package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/scenec-xyz/go-scenec/pipeline"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

func specCmd(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("spec", flag.ExitOnError)
	root := fs.String("root", cfg.Root, "Project root for import resolution (default: entry file's directory)")
	output := fs.String("output", "", "Write JSON to file instead of stdout")
	verbose := fs.Bool("verbose", cfg.Verbose, "Enable debug logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: scenec spec <entry.scene> [options]

Print the normalized scene specification as JSON.

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
	data, err := scenespec.ToJSON(res.Spec)
	if err != nil {
		return err
	}
	return writeOut(*output, data)
}

func writeOut(path string, data []byte) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
