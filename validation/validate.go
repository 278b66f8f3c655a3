package validation

import (
	"fmt"
	"sort"

	"github.com/scenec-xyz/go-scenec/scenespec"
)

// Validator runs invariant checks over a completed Specification.
type Validator struct {
	spec   *scenespec.Spec
	result *Result
}

// NewValidator creates a validator for a Specification.
func NewValidator(spec *scenespec.Spec) *Validator {
	return &Validator{
		spec: spec,
		result: &Result{
			Valid: true,
			Summary: Summary{
				Schemas: len(spec.Schemas),
				Actors:  len(spec.Actors),
				Roles:   len(spec.Roles),
				Rules:   len(spec.Rules),
			},
		},
	}
}

// Validate runs all checks and returns the collected result. It never stops
// at the first violation.
func (v *Validator) Validate() *Result {
	v.checkDuplicates()
	v.checkSchemas()
	v.checkActors()
	v.checkRoles()
	v.checkRules()
	v.checkCamera()

	v.result.Valid = len(v.result.Errors) == 0
	v.result.Summary.Errors = len(v.result.Errors)
	return v.result
}

// Validate is a convenience wrapper returning only the collected error.
func Validate(spec *scenespec.Spec) error {
	return NewValidator(spec).Validate().Err()
}

func (v *Validator) addError(category, subject, format string, args ...any) {
	v.result.Errors = append(v.result.Errors, Issue{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
		Subject:  subject,
	})
}

// checkDuplicates surfaces name collisions the builder recorded while
// folding declarations. Last-wins merging is not allowed anywhere.
func (v *Validator) checkDuplicates() {
	for _, d := range v.spec.Duplicates {
		v.addError(d.Kind, d.Name, "duplicate %s %q (redeclared in %s:%d)", d.Kind, d.Name, d.Module, d.Line)
	}
}

func (v *Validator) checkSchemas() {
	for _, name := range sortedKeys(v.spec.Schemas) {
		schema := v.spec.Schemas[name]
		seen := make(map[string]bool)
		for _, f := range schema.Fields {
			if seen[f.Name] {
				v.addError("schema", name, "schema %q declares field %q twice", name, f.Name)
			}
			seen[f.Name] = true
			switch f.Type {
			case "int", "float", "bool", "string":
			default:
				v.addError("schema", name, "schema %q field %q has non-primitive type %q", name, f.Name, f.Type)
			}
		}
	}
}

func (v *Validator) checkActors() {
	seen := make(map[string]bool)
	for _, a := range v.spec.Actors {
		if seen[a.UID] {
			v.addError("actor", a.UID, "actor uid %q is not unique", a.UID)
		}
		seen[a.UID] = true

		schema, ok := v.spec.Schemas[a.Schema]
		if !ok {
			v.addError("actor", a.UID, "actor %q references undefined schema %q", a.UID, a.Schema)
			continue
		}
		for _, f := range schema.Fields {
			if _, ok := a.Fields[f.Name]; !ok {
				v.addError("actor", a.UID, "actor %q has no initial value for field %q", a.UID, f.Name)
			}
		}
		for name := range a.Fields {
			if _, ok := schema.FieldNamed(name); !ok {
				v.addError("actor", a.UID, "actor %q initializes unknown field %q", a.UID, name)
			}
		}
	}
}

func (v *Validator) checkRoles() {
	seen := make(map[string]bool)
	for _, r := range v.spec.Roles {
		if seen[r.ID] {
			v.addError("role", r.ID, "role id %q is not unique", r.ID)
		}
		seen[r.ID] = true
		switch r.Kind {
		case "human", "agent":
		default:
			v.addError("role", r.ID, "role %q has unknown kind %q", r.ID, r.Kind)
		}
	}
}

func (v *Validator) checkRules() {
	roleBound := false
	for i, r := range v.spec.Rules {
		subject := fmt.Sprintf("rule[%d]", i)

		if _, ok := v.spec.Actions[r.Action]; !ok {
			v.addError("rule", subject, "rule %d references undefined action %q", i, r.Action)
		}

		switch r.Condition.Kind {
		case "keyboard":
			roleBound = true
			if r.Condition.Key == "" {
				v.addError("rule", subject, "rule %d keyboard condition has no key", i)
			}
			if _, ok := v.spec.RoleByID(r.Condition.Role); !ok {
				v.addError("rule", subject, "rule %d references undefined role %q", i, r.Condition.Role)
			}
		case "timer":
			if r.Condition.EveryMS <= 0 {
				v.addError("rule", subject, "rule %d timer condition has non-positive period", i)
			}
		default:
			v.addError("rule", subject, "rule %d has unknown condition kind %q", i, r.Condition.Kind)
		}
	}

	if roleBound && len(v.spec.Roles) == 0 {
		v.addError("role", "", "rules use role-bound conditions but no role is declared")
	}

	for _, name := range sortedKeys(v.spec.Actions) {
		act := v.spec.Actions[name]
		if act.Target == "" {
			continue
		}
		target, ok := v.spec.ActorByUID(act.Target)
		if !ok {
			v.addError("rule", name, "action %q is bound to undefined actor %q", name, act.Target)
			continue
		}
		if target.Schema != act.Schema {
			v.addError("rule", name, "action %q is bound to actor %q of schema %q, want %q",
				name, act.Target, target.Schema, act.Schema)
		}
	}
}

func (v *Validator) checkCamera() {
	cam := v.spec.Camera
	if cam == nil {
		return
	}
	switch cam.Mode {
	case "follow":
		if _, ok := v.spec.ActorByUID(cam.Target); !ok {
			v.addError("camera", cam.Target, "follow camera targets undefined actor %q", cam.Target)
		}
	case "fixed":
	default:
		v.addError("camera", cam.Mode, "unknown camera mode %q", cam.Mode)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
