// Package scenespec defines the Specification: the normalized, serializable
// description of a scene, and the builder that folds declaration records from
// every module into one namespace.
package scenespec

// Spec is the root aggregate. It is fully self-contained: IR lowering and
// every downstream consumer depend on it alone.
type Spec struct {
	Name    string             `json:"name"`
	Schemas map[string]*Schema `json:"schemas"`
	Actions map[string]*Action `json:"actions"`
	Actors  []*Actor           `json:"actors"`
	Roles   []*Role            `json:"roles"`
	Rules   []*Rule            `json:"rules"`
	Camera  *Camera            `json:"camera,omitempty"`
	Scene   SceneConfig        `json:"scene"`

	// Duplicates records name collisions observed while folding declarations.
	// They are diagnostics for the validator, not part of the serialized form.
	Duplicates []Duplicate `json:"-"`
}

// Schema is a named actor type with ordered, primitively typed fields.
type Schema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Field is one typed field of a schema. Type is "int", "float", "bool", or
// "string".
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldNamed returns the schema field with the given name.
func (s *Schema) FieldNamed(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Actor is an instance of a schema with a unique uid and an explicit initial
// value for every declared field.
type Actor struct {
	UID    string           `json:"uid"`
	Schema string           `json:"schema"`
	Fields map[string]Value `json:"fields"`
}

// Role is a participant slot.
type Role struct {
	ID       string `json:"id"`
	Required bool   `json:"required"`
	Kind     string `json:"kind"` // "human" or "agent"
}

// Condition is the open tagged union of rule triggers. Kind selects which of
// the remaining fields are meaningful; unknown kinds are a validation error,
// never a silent no-op.
type Condition struct {
	Kind    string `json:"kind"`               // "keyboard", "timer"
	Key     string `json:"key,omitempty"`      // keyboard: key name
	Role    string `json:"role,omitempty"`     // keyboard: pressing role
	EveryMS int    `json:"every_ms,omitempty"` // timer: firing period
}

// Rule pairs a condition with the action it triggers. Group is advisory and
// only influences diagnostics and output ordering.
type Rule struct {
	Condition Condition `json:"condition"`
	Action    string    `json:"action"`
	Group     string    `json:"group,omitempty"`
}

// Action is a declared rule-action: a flat list of field mutations against
// one schema, optionally pinned to a single actor uid.
type Action struct {
	Name      string     `json:"name"`
	Schema    string     `json:"schema"`
	Target    string     `json:"target,omitempty"`
	Mutations []Mutation `json:"mutations"`
}

// Mutation assigns the value of Expr to one field of the bound actor.
type Mutation struct {
	Field string `json:"field"`
	Expr  *Expr  `json:"expr"`
}

// Expr is a mutation expression tree. Leaves carry either a field reference
// on the bound actor or a numeric literal (booleans are 0/1); interior nodes
// carry a binary arithmetic operator.
type Expr struct {
	Op    string   `json:"op,omitempty"` // "+", "-", "*", "/"
	Field string   `json:"field,omitempty"`
	Lit   *float64 `json:"lit,omitempty"`
	Left  *Expr    `json:"left,omitempty"`
	Right *Expr    `json:"right,omitempty"`
}

// Camera selects the viewpoint. Mode "follow" tracks Target; "fixed" has no
// parameters.
type Camera struct {
	Mode   string `json:"mode"`
	Target string `json:"target,omitempty"`
}

// SceneConfig holds scalar environment settings. Unset options are nil and
// omitted from serialization entirely; their absence is what drives
// feature-conditional output downstream.
type SceneConfig struct {
	Gravity *float64 `json:"gravity,omitempty"`
	Width   *int     `json:"width,omitempty"`
	Height  *int     `json:"height,omitempty"`
	TickMS  *int     `json:"tick_ms,omitempty"`
}

// HasGravity reports whether the scene declares a gravity simulation.
func (c SceneConfig) HasGravity() bool { return c.Gravity != nil }

// HasBounds reports whether the scene declares a bounded play area.
func (c SceneConfig) HasBounds() bool { return c.Width != nil && c.Height != nil }

// Duplicate records a name collision between declarations.
type Duplicate struct {
	Kind   string // "schema", "action", "role", "actor", "camera"
	Name   string
	Module string
	Line   int
}

// ActorByUID returns the actor instance with the given uid.
func (s *Spec) ActorByUID(uid string) (*Actor, bool) {
	for _, a := range s.Actors {
		if a.UID == uid {
			return a, true
		}
	}
	return nil, false
}

// RoleByID returns the role with the given id.
func (s *Spec) RoleByID(id string) (*Role, bool) {
	for _, r := range s.Roles {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}
