// Package extract recognizes the closed set of declarative constructs in a
// scene module and produces flat, typed declaration records. Anything outside
// that set is either ignored (inert forms) or rejected (executable forms).
package extract

import "fmt"

// Kind identifies the construct a Record carries.
type Kind int

const (
	KindActor Kind = iota
	KindAction
	KindRole
	KindSpawn
	KindCamera
	KindScene
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindActor:
		return "actor"
	case KindAction:
		return "action"
	case KindRole:
		return "role"
	case KindSpawn:
		return "spawn"
	case KindCamera:
		return "camera"
	case KindScene:
		return "scene"
	case KindRule:
		return "rule"
	}
	return "unknown"
}

// Record is one recognized declaration, annotated with its source module,
// enclosing group block (advisory, may be empty), and source line. Exactly
// one payload pointer is set, matching Kind.
type Record struct {
	Kind   Kind
	Module string
	Group  string
	Line   int

	Actor  *ActorDecl
	Action *ActionDecl
	Role   *RoleDecl
	Spawn  *SpawnDecl
	Camera *CameraDecl
	Scene  *SceneDecl
	Rule   *RuleDecl
}

// ActorDecl is an entity-schema declaration: a named type with ordered,
// primitively typed fields.
type ActorDecl struct {
	Name   string
	Fields []FieldDecl
}

// FieldDecl is one typed field of an actor schema.
type FieldDecl struct {
	Name string
	Type string // "int", "float", "bool", "string"
}

// ActionDecl is a rule-action function. The parameter annotation binds the
// action to a schema and, optionally, to one specific actor uid.
type ActionDecl struct {
	Name      string
	Param     string // parameter name the body mutates through
	Schema    string // bound schema name
	Target    string // bound actor uid, empty when the action applies per-schema
	Mutations []MutationDecl
}

// MutationDecl is one flat field assignment in an action body.
type MutationDecl struct {
	Field string
	Expr  *Expr
}

// Expr is a parsed mutation expression. Leaves are field references on the
// bound parameter or numeric literals (booleans read as 0/1); interior nodes
// are binary arithmetic. The shape is JSON-stable so it can ride inside the
// serialized Specification unchanged.
type Expr struct {
	Op    string   `json:"op,omitempty"` // "+", "-", "*", "/"; empty for leaves
	Field string   `json:"field,omitempty"`
	Lit   *float64 `json:"lit,omitempty"`
	Left  *Expr    `json:"left,omitempty"`
	Right *Expr    `json:"right,omitempty"`
}

// RoleDecl declares a participant slot.
type RoleDecl struct {
	ID       string
	Required bool
	Kind     string // "human" or "agent"
}

// SpawnDecl instantiates an actor with explicit initial values for every field.
type SpawnDecl struct {
	Schema string
	UID    string
	Init   []InitDecl
}

// InitDecl is one field initializer in a spawn statement, in source order.
type InitDecl struct {
	Field string
	Value string // raw literal text, typed by the spec builder against the schema
}

// CameraDecl sets the camera mode.
type CameraDecl struct {
	Mode   string // "follow" or "fixed"
	Target string // followed actor uid, only for "follow"
}

// SceneDecl carries raw scene configuration settings. Values stay textual
// here; the spec builder types them.
type SceneDecl struct {
	Settings []SettingDecl
}

// SettingDecl is one key=value pair from a scene statement.
type SettingDecl struct {
	Key   string
	Value string
}

// RuleDecl registers a condition/action pair.
type RuleDecl struct {
	Cond   CondDecl
	Action string
}

// CondDecl is the open tagged union of condition variants. Known kinds are
// "keyboard" (key press by a role) and "timer" (periodic firing).
type CondDecl struct {
	Kind    string
	Key     string // key name, kind "keyboard"
	Role    string // role id, kind "keyboard"
	EveryMS int    // period, kind "timer"
}

// UnsupportedConstructError reports a top-level executable statement that does
// not match any recognized declarative form.
type UnsupportedConstructError struct {
	Module string
	Line   int
	Text   string
}

func (e *UnsupportedConstructError) Error() string {
	return fmt.Sprintf("%s:%d: unsupported construct: %q", e.Module, e.Line, e.Text)
}
