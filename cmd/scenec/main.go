package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "build":
		if err := build(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "check":
		if err := check(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "spec":
		if err := specCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "ir":
		if err := irCmd(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("scenec version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`scenec - scene description compiler

Usage:
  scenec <command> [options]

Commands:
  build      Compile a scene and emit the generated runtime package
  check      Compile and validate a scene without emitting anything
  spec       Print the normalized scene specification as JSON
  ir         Print the lowered program as JSON
  help       Show this help message
  version    Show version information

Examples:
  # Build a scene into ./gen
  scenec build game.scene --out gen

  # Build and mirror into a project tree
  scenec build game.scene --out gen --project ../mygame

  # Validate only
  scenec check game.scene

  # Inspect the normalized specification
  scenec spec game.scene

For command-specific help, run:
  scenec <command> --help`)
}
