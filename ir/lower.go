package ir

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/scenec-xyz/go-scenec/scenespec"
)

// DefaultTickMS is the simulation step used when the scene does not set one.
const DefaultTickMS = 16

// Lower transforms a validated Specification into its IR. The transform is
// pure and deterministic: dictionaries are walked in sorted-name order and
// lists in declaration order, so lowering the same Specification twice
// yields structurally identical programs.
func Lower(spec *scenespec.Spec) (*Program, error) {
	p := &Program{
		Version: Version,
		Scene:   spec.Name,
		Gravity: spec.Scene.Gravity,
		Width:   spec.Scene.Width,
		Height:  spec.Scene.Height,
		TickMS:  DefaultTickMS,
	}
	if spec.Scene.TickMS != nil {
		p.TickMS = *spec.Scene.TickMS
	}

	schemaIdx := make(map[string]int)
	for _, name := range sortedKeys(spec.Schemas) {
		schema := spec.Schemas[name]
		schemaIdx[name] = len(p.Schemas)
		s := Schema{Name: name}
		for _, f := range schema.Fields {
			s.Fields = append(s.Fields, Field{Name: f.Name, Type: f.Type})
		}
		p.Schemas = append(p.Schemas, s)
	}

	actorIdx := make(map[string]int)
	for _, a := range spec.Actors {
		si, ok := schemaIdx[a.Schema]
		if !ok {
			return nil, fmt.Errorf("lower: actor %q: unbound schema %q", a.UID, a.Schema)
		}
		actorIdx[a.UID] = len(p.Actors)
		actor := Actor{UID: a.UID, Schema: si}
		for _, f := range spec.Schemas[a.Schema].Fields {
			v := a.Fields[f.Name]
			if f.Type == "string" {
				actor.Init = append(actor.Init, Slot{S: v.Str()})
			} else {
				actor.Init = append(actor.Init, Slot{N: v.Num()})
			}
		}
		p.Actors = append(p.Actors, actor)
	}

	roleIdx := make(map[string]int)
	for _, r := range spec.Roles {
		roleIdx[r.ID] = len(p.Roles)
		p.Roles = append(p.Roles, Role{ID: r.ID, Required: r.Required, Kind: r.Kind})
	}

	actionIdx := make(map[string]int)
	for _, name := range sortedKeys(spec.Actions) {
		act := spec.Actions[name]
		si, ok := schemaIdx[act.Schema]
		if !ok {
			return nil, fmt.Errorf("lower: action %q: unbound schema %q", name, act.Schema)
		}
		lowered := Action{Name: name, Schema: si}
		schema := spec.Schemas[act.Schema]
		for _, m := range act.Mutations {
			slot := slotOf(schema, m.Field)
			if slot < 0 {
				return nil, fmt.Errorf("lower: action %q: unbound field %q", name, m.Field)
			}
			ops, err := compileExpr(schema, m.Expr)
			if err != nil {
				return nil, fmt.Errorf("lower: action %q: %w", name, err)
			}
			lowered.Mutations = append(lowered.Mutations, Mutation{Slot: slot, Ops: ops})
		}
		actionIdx[name] = len(p.Actions)
		p.Actions = append(p.Actions, lowered)
	}

	for i, r := range spec.Rules {
		ai, ok := actionIdx[r.Action]
		if !ok {
			return nil, fmt.Errorf("lower: rule %d: unbound action %q", i, r.Action)
		}
		edge := Edge{
			Kind:    r.Condition.Kind,
			Key:     r.Condition.Key,
			Role:    -1,
			EveryMS: r.Condition.EveryMS,
			Action:  ai,
			Targets: actionTargets(spec, p, actorIdx, r.Action),
		}
		if r.Condition.Role != "" {
			ri, ok := roleIdx[r.Condition.Role]
			if !ok {
				return nil, fmt.Errorf("lower: rule %d: unbound role %q", i, r.Condition.Role)
			}
			edge.Role = ri
		}
		p.Edges = append(p.Edges, edge)
	}

	p.Camera = Camera{Mode: "fixed", Target: -1}
	if spec.Camera != nil {
		p.Camera.Mode = spec.Camera.Mode
		p.Camera.Target = -1
		if spec.Camera.Mode == "follow" {
			ti, ok := actorIdx[spec.Camera.Target]
			if !ok {
				return nil, fmt.Errorf("lower: camera: unbound actor %q", spec.Camera.Target)
			}
			p.Camera.Target = ti
		}
	}

	return p, nil
}

// actionTargets resolves the actor indices an action applies to: its pinned
// target when one is declared, otherwise every instance of its schema, in
// actor declaration order.
func actionTargets(spec *scenespec.Spec, p *Program, actorIdx map[string]int, action string) []int {
	act := spec.Actions[action]
	if act.Target != "" {
		if i, ok := actorIdx[act.Target]; ok {
			return []int{i}
		}
		return nil
	}
	var targets []int
	for _, a := range spec.Actors {
		if a.Schema == act.Schema {
			targets = append(targets, actorIdx[a.UID])
		}
	}
	return targets
}

func slotOf(schema *scenespec.Schema, field string) int {
	for i, f := range schema.Fields {
		if f.Name == field {
			return i
		}
	}
	return -1
}

// compileExpr flattens an expression tree into postfix stack-machine ops.
func compileExpr(schema *scenespec.Schema, e *scenespec.Expr) ([]Op, error) {
	if e == nil {
		return nil, fmt.Errorf("empty expression")
	}
	if e.Op == "" {
		if e.Field != "" {
			slot := slotOf(schema, e.Field)
			if slot < 0 {
				return nil, fmt.Errorf("unbound field %q", e.Field)
			}
			return []Op{{Code: "load", Slot: slot}}, nil
		}
		if e.Lit != nil {
			return []Op{{Code: "lit", Lit: *e.Lit}}, nil
		}
		return nil, fmt.Errorf("malformed expression leaf")
	}

	left, err := compileExpr(schema, e.Left)
	if err != nil {
		return nil, err
	}
	right, err := compileExpr(schema, e.Right)
	if err != nil {
		return nil, err
	}
	var code string
	switch e.Op {
	case "+":
		code = "add"
	case "-":
		code = "sub"
	case "*":
		code = "mul"
	case "/":
		code = "div"
	default:
		return nil, fmt.Errorf("unknown operator %q", e.Op)
	}
	ops := append(left, right...)
	return append(ops, Op{Code: code}), nil
}

// ToJSON serializes a program as indented JSON.
func ToJSON(p *Program) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON parses a serialized program.
func FromJSON(data []byte) (*Program, error) {
	var p Program
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid IR JSON: %w", err)
	}
	if p.Version != Version {
		return nil, fmt.Errorf("unsupported IR version %d", p.Version)
	}
	return &p, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
