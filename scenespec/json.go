package scenespec

import (
	"encoding/json"
	"fmt"
)

// ToJSON serializes a Specification as indented, human-diffable JSON. Map
// keys marshal in sorted order, so equal specs serialize to equal bytes.
func ToJSON(spec *Spec) ([]byte, error) {
	return json.MarshalIndent(spec, "", "  ")
}

// FromJSON parses a serialized Specification. Semantic invariants are the
// validator's concern; this only rejects structurally broken documents.
func FromJSON(data []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("invalid spec JSON: %w", err)
	}
	if spec.Schemas == nil {
		spec.Schemas = make(map[string]*Schema)
	}
	if spec.Actions == nil {
		spec.Actions = make(map[string]*Action)
	}
	for name, s := range spec.Schemas {
		if s == nil {
			return nil, fmt.Errorf("schema %q is null", name)
		}
		if s.Name == "" {
			s.Name = name
		}
	}
	for name, a := range spec.Actions {
		if a == nil {
			return nil, fmt.Errorf("action %q is null", name)
		}
		if a.Name == "" {
			a.Name = name
		}
	}
	return &spec, nil
}
