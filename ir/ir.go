// Package ir defines the lowered, execution-oriented form of a Specification
// and the pure transform that produces it. Every symbolic reference is
// replaced by an index binding and every rule becomes a flat edge, so a
// generated interpreter can run the program without any name lookups.
package ir

// Version is the IR format version stamped into serialized programs.
const Version = 1

// Program is the root of the IR. It is derived wholesale from a validated
// Specification on every build and never edited by hand.
type Program struct {
	Version int      `json:"version"`
	Scene   string   `json:"scene"`
	Schemas []Schema `json:"schemas"`
	Actors  []Actor  `json:"actors"`
	Roles   []Role   `json:"roles"`
	Actions []Action `json:"actions"`
	Edges   []Edge   `json:"edges"`
	Camera  Camera   `json:"camera"`
	Gravity *float64 `json:"gravity,omitempty"`
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
	TickMS  int      `json:"tick_ms"`
}

// Schema mirrors a spec schema; its position in Program.Schemas is its
// binding index, and field positions are the actor state slots.
type Schema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field is one state slot of a schema.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"` // "int", "float", "bool", "string"
}

// Slot is one initial field value. Numeric and boolean fields live in N
// (bools as 0/1); string fields live in S.
type Slot struct {
	N float64 `json:"n,omitempty"`
	S string  `json:"s,omitempty"`
}

// Actor is an instance binding: a schema index plus one initial Slot per
// schema field, in field order.
type Actor struct {
	UID    string `json:"uid"`
	Schema int    `json:"schema"`
	Init   []Slot `json:"init"`
}

// Role is a participant slot; its position is its binding index.
type Role struct {
	ID       string `json:"id"`
	Required bool   `json:"required"`
	Kind     string `json:"kind"`
}

// Camera is the resolved camera binding. Target is an actor index, -1 when
// the mode has no target.
type Camera struct {
	Mode   string `json:"mode"`
	Target int    `json:"target"`
}

// Action is a lowered rule-action: one mutation program per assignment in
// the source body, against the fields of the bound schema.
type Action struct {
	Name      string     `json:"name"`
	Schema    int        `json:"schema"`
	Mutations []Mutation `json:"mutations"`
}

// Mutation stores the result of evaluating Ops into the target slot.
type Mutation struct {
	Slot int  `json:"slot"`
	Ops  []Op `json:"ops"`
}

// Op is one stack-machine instruction of a mutation program.
type Op struct {
	Code string  `json:"code"` // "load", "lit", "add", "sub", "mul", "div"
	Slot int     `json:"slot,omitempty"`
	Lit  float64 `json:"lit,omitempty"`
}

// Edge is one executable condition/action pair. Role is a role index (-1
// when the condition is not role-bound); Targets are the actor indices the
// action applies to.
type Edge struct {
	Kind    string `json:"kind"`
	Key     string `json:"key,omitempty"`
	Role    int    `json:"role"`
	EveryMS int    `json:"every_ms,omitempty"`
	Action  int    `json:"action"`
	Targets []int  `json:"targets"`
}

// SchemaIndex returns the index of the named schema, or -1.
func (p *Program) SchemaIndex(name string) int {
	for i, s := range p.Schemas {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// ActorIndex returns the index of the actor with the given uid, or -1.
func (p *Program) ActorIndex(uid string) int {
	for i, a := range p.Actors {
		if a.UID == uid {
			return i
		}
	}
	return -1
}

// ActionIndex returns the index of the named action, or -1.
func (p *Program) ActionIndex(name string) int {
	for i, a := range p.Actions {
		if a.Name == name {
			return i
		}
	}
	return -1
}
