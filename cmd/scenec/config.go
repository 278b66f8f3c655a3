package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// configFile is looked up in the working directory. All of its settings are
// optional; command-line flags override it.
const configFile = "scenec.yaml"

type config struct {
	Root    string `yaml:"root"`
	Out     string `yaml:"out"`
	Project string `yaml:"project"`
	Unboxed bool   `yaml:"unboxed"`
	Verbose bool   `yaml:"verbose"`
}

// loadConfig reads scenec.yaml when present. A missing file is not an error;
// a malformed one is.
func loadConfig() (config, error) {
	var cfg config
	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", configFile, err)
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Output goes to stderr so JSON printed by
// spec and ir stays clean on stdout.
func newLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}
