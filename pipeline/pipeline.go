// Package pipeline runs the full scene build: resolve modules, extract
// declarations, build the specification, validate it, lower it, and emit the
// generated package. Stages run strictly in order; a stage never reaches
// back into an earlier one.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/scenec-xyz/go-scenec/emit"
	"github.com/scenec-xyz/go-scenec/extract"
	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/resolver"
	"github.com/scenec-xyz/go-scenec/scenespec"
	"github.com/scenec-xyz/go-scenec/validation"
)

// Options configure one build.
type Options struct {
	// Entry is the entry scene file.
	Entry string
	// Root is the project root imports resolve under. Defaults to the
	// entry file's directory.
	Root string
	// OutDir receives the emitted artifact set.
	OutDir string
	// ProjectDir, when set, mirrors the artifact set into an external
	// project tree.
	ProjectDir string
	// Unboxed selects plain typed fields for generated actor types.
	Unboxed bool
}

// Result carries the intermediate products of a completed front half of the
// pipeline, for callers that inspect rather than emit.
type Result struct {
	Spec    *scenespec.Spec
	Program *ir.Program
	Plan    *emit.Plan
}

// Compile runs the pipeline up to planning, without writing anything.
func Compile(opts Options, log zerolog.Logger) (*Result, error) {
	root := opts.Root
	if root == "" {
		root = filepath.Dir(opts.Entry)
	}

	modules, err := resolver.Resolve(opts.Entry, root)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("modules", len(modules)).Msg("modules resolved")

	var recs []extract.Record
	for _, m := range modules {
		r, err := extract.Extract(m.Path, m.Source)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r...)
	}
	log.Debug().Int("records", len(recs)).Msg("declarations extracted")

	spec, err := scenespec.Build(sceneName(opts.Entry), recs)
	if err != nil {
		return nil, err
	}
	if err := validation.Validate(spec); err != nil {
		return nil, err
	}
	log.Debug().
		Int("schemas", len(spec.Schemas)).
		Int("actors", len(spec.Actors)).
		Int("rules", len(spec.Rules)).
		Msg("specification validated")

	prog, err := ir.Lower(spec)
	if err != nil {
		return nil, err
	}
	plan := emit.NewPlan(spec, prog, emit.Options{Unboxed: opts.Unboxed})
	return &Result{Spec: spec, Program: prog, Plan: plan}, nil
}

// Run executes the full pipeline and writes the generated package. All
// fallible compilation work happens before the first write.
func Run(opts Options, log zerolog.Logger) (*Result, error) {
	if opts.OutDir == "" {
		return nil, fmt.Errorf("pipeline: output directory required")
	}
	res, err := Compile(opts, log)
	if err != nil {
		return nil, err
	}
	if err := emit.Emit(opts.OutDir, res.Spec, res.Program, res.Plan); err != nil {
		return nil, err
	}
	log.Info().Str("dir", opts.OutDir).Int("artifacts", len(emit.Artifacts)).Msg("package emitted")

	if opts.ProjectDir != "" {
		if err := emit.Mirror(opts.OutDir, opts.ProjectDir); err != nil {
			return nil, err
		}
		log.Info().Str("project", opts.ProjectDir).Msg("artifacts mirrored")
	}
	return res, nil
}

// sceneName derives the scene name from the entry file's base name.
func sceneName(entry string) string {
	base := filepath.Base(entry)
	return strings.TrimSuffix(base, resolver.Ext)
}
