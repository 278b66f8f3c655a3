package scenespec

import (
	"fmt"
	"strconv"

	"github.com/scenec-xyz/go-scenec/extract"
)

// DefaultGravity is the magnitude used when a scene declares "gravity=true"
// without a value.
const DefaultGravity = 9.8

// Build folds declaration records from every module, in module load order,
// into one Specification. Resolution is two-phase: the full symbol table is
// built first, then every cross-module reference is resolved against it, so
// the result does not depend on which module declared a symbol. Name
// collisions are recorded for the validator rather than resolved last-wins.
func Build(name string, recs []extract.Record) (*Spec, error) {
	spec := &Spec{
		Name:    name,
		Schemas: make(map[string]*Schema),
		Actions: make(map[string]*Action),
	}

	// Phase 1: declarations into the symbol table.
	for _, r := range recs {
		switch r.Kind {
		case extract.KindActor:
			if _, exists := spec.Schemas[r.Actor.Name]; exists {
				spec.dup("schema", r.Actor.Name, r)
				continue
			}
			spec.Schemas[r.Actor.Name] = convertSchema(r.Actor)
		case extract.KindAction:
			if _, exists := spec.Actions[r.Action.Name]; exists {
				spec.dup("action", r.Action.Name, r)
				continue
			}
			spec.Actions[r.Action.Name] = convertAction(r.Action)
		case extract.KindRole:
			if _, exists := spec.RoleByID(r.Role.ID); exists {
				spec.dup("role", r.Role.ID, r)
				continue
			}
			spec.Roles = append(spec.Roles, &Role{
				ID:       r.Role.ID,
				Required: r.Role.Required,
				Kind:     r.Role.Kind,
			})
		case extract.KindCamera:
			if spec.Camera != nil {
				spec.dup("camera", r.Camera.Mode, r)
				continue
			}
			spec.Camera = &Camera{Mode: r.Camera.Mode, Target: r.Camera.Target}
		case extract.KindScene:
			if err := applyScene(&spec.Scene, r); err != nil {
				return nil, err
			}
		}
	}

	// Phase 2: resolve references now that every module's declarations are
	// visible.
	for name, act := range spec.Actions {
		schema, ok := spec.Schemas[act.Schema]
		if !ok {
			return nil, &UnresolvedSymbolError{
				Module: moduleOf(recs, extract.KindAction, name),
				Ref:    fmt.Sprintf("action %q", name),
				Symbol: act.Schema,
			}
		}
		for _, m := range act.Mutations {
			if err := checkMutation(schema, name, m, moduleOf(recs, extract.KindAction, name)); err != nil {
				return nil, err
			}
		}
	}

	for _, r := range recs {
		switch r.Kind {
		case extract.KindSpawn:
			actor, err := buildActor(spec, r)
			if err != nil {
				return nil, err
			}
			if _, exists := spec.ActorByUID(actor.UID); exists {
				spec.dup("actor", actor.UID, r)
			}
			spec.Actors = append(spec.Actors, actor)
		case extract.KindRule:
			if _, ok := spec.Actions[r.Rule.Action]; !ok {
				return nil, &UnresolvedSymbolError{
					Module: r.Module,
					Ref:    fmt.Sprintf("rule -> %q", r.Rule.Action),
					Symbol: r.Rule.Action,
				}
			}
			spec.Rules = append(spec.Rules, &Rule{
				Condition: Condition{
					Kind:    r.Rule.Cond.Kind,
					Key:     r.Rule.Cond.Key,
					Role:    r.Rule.Cond.Role,
					EveryMS: r.Rule.Cond.EveryMS,
				},
				Action: r.Rule.Action,
				Group:  r.Group,
			})
		}
	}

	return spec, nil
}

func (s *Spec) dup(kind, name string, r extract.Record) {
	s.Duplicates = append(s.Duplicates, Duplicate{
		Kind:   kind,
		Name:   name,
		Module: r.Module,
		Line:   r.Line,
	})
}

func convertSchema(d *extract.ActorDecl) *Schema {
	s := &Schema{Name: d.Name}
	for _, f := range d.Fields {
		s.Fields = append(s.Fields, Field{Name: f.Name, Type: f.Type})
	}
	return s
}

func convertAction(d *extract.ActionDecl) *Action {
	a := &Action{Name: d.Name, Schema: d.Schema, Target: d.Target}
	for _, m := range d.Mutations {
		a.Mutations = append(a.Mutations, Mutation{Field: m.Field, Expr: convertExpr(m.Expr)})
	}
	return a
}

func convertExpr(e *extract.Expr) *Expr {
	if e == nil {
		return nil
	}
	return &Expr{
		Op:    e.Op,
		Field: e.Field,
		Lit:   e.Lit,
		Left:  convertExpr(e.Left),
		Right: convertExpr(e.Right),
	}
}

// checkMutation verifies that a mutation's target field and every field
// reference in its expression exist on the bound schema.
func checkMutation(schema *Schema, action string, m Mutation, module string) error {
	if _, ok := schema.FieldNamed(m.Field); !ok {
		return &UnresolvedSymbolError{
			Module: module,
			Ref:    fmt.Sprintf("action %q", action),
			Symbol: schema.Name + "." + m.Field,
		}
	}
	var missing string
	walkExpr(m.Expr, func(e *Expr) {
		if e.Field != "" && missing == "" {
			if _, ok := schema.FieldNamed(e.Field); !ok {
				missing = e.Field
			}
		}
	})
	if missing != "" {
		return &UnresolvedSymbolError{
			Module: module,
			Ref:    fmt.Sprintf("action %q", action),
			Symbol: schema.Name + "." + missing,
		}
	}
	return nil
}

func walkExpr(e *Expr, fn func(*Expr)) {
	if e == nil {
		return
	}
	fn(e)
	walkExpr(e.Left, fn)
	walkExpr(e.Right, fn)
}

// buildActor types a spawn's initializers against its schema.
func buildActor(spec *Spec, r extract.Record) (*Actor, error) {
	d := r.Spawn
	schema, ok := spec.Schemas[d.Schema]
	if !ok {
		return nil, &UnresolvedSymbolError{
			Module: r.Module,
			Ref:    fmt.Sprintf("spawn %q", d.UID),
			Symbol: d.Schema,
		}
	}
	actor := &Actor{UID: d.UID, Schema: d.Schema, Fields: make(map[string]Value)}
	for _, init := range d.Init {
		field, ok := schema.FieldNamed(init.Field)
		if !ok {
			return nil, &UnresolvedSymbolError{
				Module: r.Module,
				Ref:    fmt.Sprintf("spawn %q", d.UID),
				Symbol: d.Schema + "." + init.Field,
			}
		}
		v, err := ParseValue(init.Value, field.Type)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: spawn %q field %s: %w", r.Module, r.Line, d.UID, init.Field, err)
		}
		actor.Fields[init.Field] = v
	}
	return actor, nil
}

// applyScene merges one scene statement's settings into the configuration.
// "gravity=false" leaves gravity unset, which later omits the feature from
// generated output entirely.
func applyScene(cfg *SceneConfig, r extract.Record) error {
	for _, s := range r.Scene.Settings {
		switch s.Key {
		case "gravity":
			switch s.Value {
			case "false":
				cfg.Gravity = nil
			case "true":
				g := DefaultGravity
				cfg.Gravity = &g
			default:
				g, err := strconv.ParseFloat(s.Value, 64)
				if err != nil {
					return fmt.Errorf("%s:%d: invalid gravity value %q", r.Module, r.Line, s.Value)
				}
				cfg.Gravity = &g
			}
		case "width", "height", "tick":
			n, err := strconv.Atoi(s.Value)
			if err != nil || n <= 0 {
				return fmt.Errorf("%s:%d: invalid %s value %q", r.Module, r.Line, s.Key, s.Value)
			}
			switch s.Key {
			case "width":
				cfg.Width = &n
			case "height":
				cfg.Height = &n
			case "tick":
				cfg.TickMS = &n
			}
		default:
			return fmt.Errorf("%s:%d: unknown scene setting %q", r.Module, r.Line, s.Key)
		}
	}
	return nil
}

// moduleOf finds the declaring module of a named record for diagnostics.
func moduleOf(recs []extract.Record, kind extract.Kind, name string) string {
	for _, r := range recs {
		if r.Kind != kind {
			continue
		}
		switch kind {
		case extract.KindAction:
			if r.Action.Name == name {
				return r.Module
			}
		case extract.KindActor:
			if r.Actor.Name == name {
				return r.Module
			}
		}
	}
	return ""
}
