package emit

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

// Emit renders every planned artifact and writes the set into outDir. All
// rendering happens before the first write, so a rendering failure leaves the
// output directory untouched. A previous emission in outDir is replaced
// wholesale; stale artifacts never survive.
func Emit(outDir string, spec *scenespec.Spec, prog *ir.Program, plan *Plan) error {
	rendered, err := RenderAll(spec, prog, plan)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("emit: clear output dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("emit: create output dir: %w", err)
	}
	for _, name := range Artifacts {
		path := filepath.Join(outDir, name)
		if err := os.WriteFile(path, rendered[name], 0o644); err != nil {
			return fmt.Errorf("emit: write %s: %w", name, err)
		}
	}
	return nil
}

// RenderAll renders the full artifact set into memory, keyed by artifact
// name. The result always covers exactly the planned set.
func RenderAll(spec *scenespec.Spec, prog *ir.Program, plan *Plan) (map[string][]byte, error) {
	if len(plan.Files) != len(Artifacts) {
		return nil, &EmissionError{Artifact: "plan", Reason: fmt.Sprintf("plan covers %d artifacts, want %d", len(plan.Files), len(Artifacts))}
	}
	rendered := make(map[string][]byte, len(Artifacts))
	for _, name := range Artifacts {
		if _, ok := plan.File(name); !ok {
			return nil, &EmissionError{Artifact: name, Reason: "artifact missing from plan"}
		}
		content, err := render(name, spec, prog, plan)
		if err != nil {
			return nil, err
		}
		rendered[name] = content
	}
	return rendered, nil
}
