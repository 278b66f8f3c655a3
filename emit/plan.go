// Package emit plans and renders the generated runtime package. The planner
// decides, from Specification and IR content alone, which artifacts exist
// and which optional sections each one carries; the emitter renders exactly
// that plan, all-or-nothing, into the output directory.
package emit

import (
	"fmt"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

// Options are the build options that shape emission without touching the
// Specification or IR.
type Options struct {
	// Unboxed switches generated actor types from wrapped Value fields to
	// plain typed fields.
	Unboxed bool
}

// Artifacts is the fixed set of generated files, in dependency order. Every
// build emits exactly these, no more, no fewer.
var Artifacts = []string{
	"spec.json",
	"ir.json",
	"types.go",
	"logic.go",
	"interp.go",
	"runtime.go",
	"host_render.go",
	"host_headless.go",
	"host_server.go",
	"session.go",
	"replay.go",
	"symbolic.go",
	"bridge.go",
	"entry_embed.go",
	"entry_main.go",
}

// Plan maps each artifact to its optional-section inclusion flags.
type Plan struct {
	Files   []FilePlan `json:"files"`
	Unboxed bool       `json:"unboxed"`
}

// FilePlan is the plan for one artifact. Sections lists every optional
// section of the file with its inclusion decision; files without optional
// sections have none.
type FilePlan struct {
	Name     string          `json:"name"`
	Sections map[string]bool `json:"sections,omitempty"`
}

// File returns the plan for the named artifact.
func (p *Plan) File(name string) (FilePlan, bool) {
	for _, f := range p.Files {
		if f.Name == name {
			return f, true
		}
	}
	return FilePlan{}, false
}

// Section reports the inclusion flag of one optional section.
func (p *Plan) Section(file, section string) bool {
	f, ok := p.File(file)
	if !ok {
		return false
	}
	return f.Sections[section]
}

// NewPlan computes the artifact plan. It is a pure function of its inputs:
// two scenes that agree on a feature produce identical flags for every
// section that feature governs.
func NewPlan(spec *scenespec.Spec, prog *ir.Program, opts Options) *Plan {
	gravity := spec.Scene.HasGravity()
	bounds := spec.Scene.HasBounds()
	keyboard := false
	timer := false
	for _, e := range prog.Edges {
		switch e.Kind {
		case "keyboard":
			keyboard = true
		case "timer":
			timer = true
		}
	}

	plan := &Plan{Unboxed: opts.Unboxed}
	for _, name := range Artifacts {
		fp := FilePlan{Name: name}
		switch name {
		case "types.go":
			fp.Sections = map[string]bool{
				"gravity": gravity,
				"bounds":  bounds,
				"unboxed": opts.Unboxed,
			}
		case "logic.go":
			fp.Sections = map[string]bool{
				"keyboard": keyboard,
				"timer":    timer,
			}
		case "runtime.go":
			fp.Sections = map[string]bool{
				"gravity": gravity,
				"bounds":  bounds,
			}
		}
		plan.Files = append(plan.Files, fp)
	}
	return plan
}

// EmissionError reports an inconsistency between the plan and the data it
// must render. It is always a pipeline defect, never caused by user input.
type EmissionError struct {
	Artifact string
	Reason   string
}

func (e *EmissionError) Error() string {
	return fmt.Sprintf("emit %s: %s (internal inconsistency)", e.Artifact, e.Reason)
}
