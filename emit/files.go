package emit

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

// runtimeModule is the import root of the runtime support library generated
// code links against.
const runtimeModule = "github.com/scenec-xyz/go-scenec"

const header = "// Code generated by scenec. DO NOT EDIT.\n\npackage game\n\n"

// render produces the content of one artifact. Every byte depends only on
// (spec, prog, plan); no artifact reads another artifact's output.
func render(name string, spec *scenespec.Spec, prog *ir.Program, plan *Plan) ([]byte, error) {
	switch name {
	case "spec.json":
		return scenespec.ToJSON(spec)
	case "ir.json":
		return ir.ToJSON(prog)
	case "types.go":
		return genTypes(spec, prog, plan)
	case "logic.go":
		return genLogic(prog, plan)
	case "interp.go":
		return genInterp()
	case "runtime.go":
		return genRuntime(spec, prog, plan)
	case "host_render.go":
		return genHostRender()
	case "host_headless.go":
		return genHostHeadless()
	case "host_server.go":
		return genHostServer()
	case "session.go":
		return genSession()
	case "replay.go":
		return genReplay()
	case "symbolic.go":
		return genSymbolic()
	case "bridge.go":
		return genBridge()
	case "entry_embed.go":
		return genEntryEmbed()
	case "entry_main.go":
		return genEntryMain()
	}
	return nil, &EmissionError{Artifact: name, Reason: "no renderer for planned artifact"}
}

// genTypes emits the type-definition artifact. Optional fields appear only
// when the scene declares the governing feature.
func genTypes(spec *scenespec.Spec, prog *ir.Program, plan *Plan) ([]byte, error) {
	if plan.Section("types.go", "gravity") != spec.Scene.HasGravity() {
		return nil, &EmissionError{Artifact: "types.go", Reason: "gravity section flag disagrees with scene configuration"}
	}
	if plan.Section("types.go", "bounds") != spec.Scene.HasBounds() {
		return nil, &EmissionError{Artifact: "types.go", Reason: "bounds section flag disagrees with scene configuration"}
	}

	var b strings.Builder
	b.WriteString(header)

	b.WriteString("// Environment holds the scene configuration in effect for this build.\n")
	b.WriteString("type Environment struct {\n")
	b.WriteString("\tTickMS int\n")
	if plan.Section("types.go", "gravity") {
		b.WriteString("\tGravity float64\n")
	}
	if plan.Section("types.go", "bounds") {
		b.WriteString("\tWidth  int\n")
		b.WriteString("\tHeight int\n")
	}
	b.WriteString("}\n\n")

	if !plan.Section("types.go", "unboxed") {
		b.WriteString("// Value wraps one actor field.\n")
		b.WriteString("type Value struct {\n")
		b.WriteString("\tInt    int64\n")
		b.WriteString("\tFloat  float64\n")
		b.WriteString("\tBool   bool\n")
		b.WriteString("\tString string\n")
		b.WriteString("}\n\n")
	}

	for _, schema := range prog.Schemas {
		fmt.Fprintf(&b, "// %s is the %q actor schema.\n", exportName(schema.Name), schema.Name)
		fmt.Fprintf(&b, "type %s struct {\n", exportName(schema.Name))
		for _, f := range schema.Fields {
			if plan.Section("types.go", "unboxed") {
				fmt.Fprintf(&b, "\t%s %s\n", exportName(f.Name), goType(f.Type))
			} else {
				fmt.Fprintf(&b, "\t%s Value\n", exportName(f.Name))
			}
		}
		b.WriteString("}\n\n")
	}

	return []byte(b.String()), nil
}

// genLogic emits the game logic bindings: role, key, and timer tables.
func genLogic(prog *ir.Program, plan *Plan) ([]byte, error) {
	hasKeyboard, hasTimer := false, false
	for _, e := range prog.Edges {
		switch e.Kind {
		case "keyboard":
			hasKeyboard = true
		case "timer":
			hasTimer = true
		}
	}
	if plan.Section("logic.go", "keyboard") != hasKeyboard {
		return nil, &EmissionError{Artifact: "logic.go", Reason: "keyboard section flag disagrees with program edges"}
	}
	if plan.Section("logic.go", "timer") != hasTimer {
		return nil, &EmissionError{Artifact: "logic.go", Reason: "timer section flag disagrees with program edges"}
	}

	var b strings.Builder
	b.WriteString(header)

	b.WriteString("// RoleDef is one declared participant slot.\n")
	b.WriteString("type RoleDef struct {\n\tID       string\n\tRequired bool\n\tKind     string\n}\n\n")
	b.WriteString("// Roles lists the scene's roles in declaration order.\n")
	b.WriteString("var Roles = []RoleDef{\n")
	for _, r := range prog.Roles {
		fmt.Fprintf(&b, "\t{ID: %q, Required: %v, Kind: %q},\n", r.ID, r.Required, r.Kind)
	}
	b.WriteString("}\n\n")

	b.WriteString("// ActionNames lists the scene's actions in program order.\n")
	b.WriteString("var ActionNames = []string{\n")
	for _, a := range prog.Actions {
		fmt.Fprintf(&b, "\t%q,\n", a.Name)
	}
	b.WriteString("}\n")

	if plan.Section("logic.go", "keyboard") {
		b.WriteString("\n// KeyBinding routes one key press by one role to an action.\n")
		b.WriteString("type KeyBinding struct {\n\tKey    string\n\tRole   string\n\tAction string\n}\n\n")
		b.WriteString("// KeyBindings lists the scene's keyboard rules in rule order.\n")
		b.WriteString("var KeyBindings = []KeyBinding{\n")
		for _, e := range prog.Edges {
			if e.Kind != "keyboard" {
				continue
			}
			role := ""
			if e.Role >= 0 {
				role = prog.Roles[e.Role].ID
			}
			fmt.Fprintf(&b, "\t{Key: %q, Role: %q, Action: %q},\n", e.Key, role, prog.Actions[e.Action].Name)
		}
		b.WriteString("}\n")
	}

	if plan.Section("logic.go", "timer") {
		b.WriteString("\n// TimerBinding fires an action on a fixed period.\n")
		b.WriteString("type TimerBinding struct {\n\tEveryMS int\n\tAction  string\n}\n\n")
		b.WriteString("// Timers lists the scene's timer rules in rule order.\n")
		b.WriteString("var Timers = []TimerBinding{\n")
		for _, e := range prog.Edges {
			if e.Kind != "timer" {
				continue
			}
			fmt.Fprintf(&b, "\t{EveryMS: %d, Action: %q},\n", e.EveryMS, prog.Actions[e.Action].Name)
		}
		b.WriteString("}\n")
	}

	return []byte(b.String()), nil
}

func genInterp() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	fmt.Fprintf(&b, "import (\n\t%q\n)\n\n", runtimeModule+"/runtime/interp")
	b.WriteString("// NewInterpreter returns the interpreter for this scene's program.\n")
	b.WriteString("func NewInterpreter() *interp.Interpreter {\n")
	b.WriteString("\treturn interp.New(Program())\n")
	b.WriteString("}\n\n")
	b.WriteString("// Step advances a state by one tick with the given input events.\n")
	b.WriteString("func Step(st *interp.State, events []interp.Event) {\n")
	b.WriteString("\tNewInterpreter().Step(st, events)\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// genRuntime emits the runtime core: embedded program, environment literal,
// and initial state construction.
func genRuntime(spec *scenespec.Spec, prog *ir.Program, plan *Plan) ([]byte, error) {
	if plan.Section("runtime.go", "gravity") && spec.Scene.Gravity == nil {
		return nil, &EmissionError{Artifact: "runtime.go", Reason: "gravity section planned but scene declares no gravity"}
	}
	if plan.Section("runtime.go", "bounds") && !spec.Scene.HasBounds() {
		return nil, &EmissionError{Artifact: "runtime.go", Reason: "bounds section planned but scene declares no bounds"}
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	b.WriteString("\t_ \"embed\"\n")
	b.WriteString("\t\"sync\"\n\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/ir")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/interp")
	b.WriteString(")\n\n")

	b.WriteString("//go:embed ir.json\n")
	b.WriteString("var programJSON []byte\n\n")
	b.WriteString("var (\n\tprogramOnce sync.Once\n\tprogram     *ir.Program\n)\n\n")
	b.WriteString("// Program returns the scene's lowered program, parsed once.\n")
	b.WriteString("func Program() *ir.Program {\n")
	b.WriteString("\tprogramOnce.Do(func() {\n")
	b.WriteString("\t\tp, err := ir.FromJSON(programJSON)\n")
	b.WriteString("\t\tif err != nil {\n\t\t\tpanic(err)\n\t\t}\n")
	b.WriteString("\t\tprogram = p\n")
	b.WriteString("\t})\n")
	b.WriteString("\treturn program\n")
	b.WriteString("}\n\n")

	b.WriteString("// NewEnvironment returns the scene configuration in effect.\n")
	b.WriteString("func NewEnvironment() Environment {\n")
	b.WriteString("\treturn Environment{\n")
	fmt.Fprintf(&b, "\t\tTickMS: %d,\n", prog.TickMS)
	if plan.Section("runtime.go", "gravity") {
		fmt.Fprintf(&b, "\t\tGravity: %s,\n", strconv.FormatFloat(*spec.Scene.Gravity, 'g', -1, 64))
	}
	if plan.Section("runtime.go", "bounds") {
		fmt.Fprintf(&b, "\t\tWidth:  %d,\n", *spec.Scene.Width)
		fmt.Fprintf(&b, "\t\tHeight: %d,\n", *spec.Scene.Height)
	}
	b.WriteString("\t}\n")
	b.WriteString("}\n\n")

	b.WriteString("// NewState builds the initial actor state for this scene.\n")
	b.WriteString("func NewState() *interp.State {\n")
	b.WriteString("\treturn interp.NewState(Program())\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genHostRender() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	b.WriteString("\t\"context\"\n\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/host/render")
	b.WriteString(")\n\n")
	b.WriteString("// RunRender runs the scene on the interactive terminal host until the\n")
	b.WriteString("// user quits.\n")
	b.WriteString("func RunRender(ctx context.Context) error {\n")
	b.WriteString("\ts, err := NewSession()\n")
	b.WriteString("\tif err != nil {\n\t\treturn err\n\t}\n")
	b.WriteString("\tdefer s.Close()\n")
	b.WriteString("\treturn render.New(Program()).Run(ctx, s)\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genHostHeadless() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	b.WriteString("\t\"context\"\n\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/host/headless")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/interp")
	b.WriteString(")\n\n")
	b.WriteString("// RunHeadless executes the scene for a fixed number of ticks with\n")
	b.WriteString("// scripted input and returns the final state.\n")
	b.WriteString("func RunHeadless(ctx context.Context, ticks int64, script headless.Script) (*interp.State, error) {\n")
	b.WriteString("\ts, err := NewSession()\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, err\n\t}\n")
	b.WriteString("\tdefer s.Close()\n")
	b.WriteString("\tif err := headless.Run(ctx, s, ticks, script); err != nil {\n\t\treturn nil, err\n\t}\n")
	b.WriteString("\treturn s.State(), nil\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genHostServer() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/host/server")
	b.WriteString(")\n\n")
	b.WriteString("// HostConfig carries host-internal tuning for standalone deployments.\n")
	b.WriteString("// It is not part of the embeddable surface.\n")
	b.WriteString("type HostConfig struct {\n")
	b.WriteString("\tAddr       string\n")
	b.WriteString("\tReplayPath string\n")
	b.WriteString("}\n\n")
	b.WriteString("// ServeScene runs the networked headless host.\n")
	b.WriteString("func ServeScene(cfg HostConfig) error {\n")
	b.WriteString("\tmgr := NewManager()\n")
	b.WriteString("\tdefer mgr.Shutdown()\n")
	b.WriteString("\treturn server.New(Program(), mgr).ListenAndServe(cfg.Addr)\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genSession() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/session")
	b.WriteString(")\n\n")
	b.WriteString("// NewSession starts a single scene session.\n")
	b.WriteString("func NewSession() (*session.Session, error) {\n")
	b.WriteString("\treturn session.New(Program())\n")
	b.WriteString("}\n\n")
	b.WriteString("// NewManager creates a multi-session manager for this scene.\n")
	b.WriteString("func NewManager() *session.Manager {\n")
	b.WriteString("\treturn session.NewManager(Program())\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genReplay() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/replay")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/session")
	b.WriteString(")\n\n")
	b.WriteString("// OpenReplay opens the scene's replay store at path.\n")
	b.WriteString("func OpenReplay(path string) (*replay.Store, error) {\n")
	b.WriteString("\treturn replay.Open(path)\n")
	b.WriteString("}\n\n")
	b.WriteString("// NewRecordedSession starts a session that records every tick into the\n")
	b.WriteString("// given store.\n")
	b.WriteString("func NewRecordedSession(store *replay.Store) (*session.Session, error) {\n")
	b.WriteString("\treturn session.New(Program(), session.WithReplay(store))\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genSymbolic() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/interp")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/symrender")
	b.WriteString(")\n\n")
	b.WriteString("// RenderFrame renders a state as stable text for non-visual verification.\n")
	b.WriteString("func RenderFrame(st *interp.State) string {\n")
	b.WriteString("\treturn symrender.Frame(Program(), st)\n")
	b.WriteString("}\n\n")
	b.WriteString("// RenderGrid renders the bounded play area as an ASCII grid. It returns\n")
	b.WriteString("// false when the scene declares no bounds.\n")
	b.WriteString("func RenderGrid(st *interp.State) (string, bool) {\n")
	b.WriteString("\treturn symrender.Grid(Program(), st)\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

// genBridge emits the public embeddable surface. Host-internal symbols
// (ServeScene, HostConfig) deliberately never appear here.
func genBridge() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("// The bridge is the public surface for embedding this scene in another\n")
	b.WriteString("// program. Standalone-host symbols are excluded on purpose; embedders\n")
	b.WriteString("// drive sessions directly.\n")
	b.WriteString("var (\n")
	b.WriteString("\t// Play runs the scene interactively.\n")
	b.WriteString("\tPlay = RunRender\n")
	b.WriteString("\t// Simulate runs the scene headlessly.\n")
	b.WriteString("\tSimulate = RunHeadless\n")
	b.WriteString("\t// Open starts a session for direct embedding.\n")
	b.WriteString("\tOpen = NewSession\n")
	b.WriteString("\t// Frame renders a state as stable text.\n")
	b.WriteString("\tFrame = RenderFrame\n")
	b.WriteString(")\n")
	return []byte(b.String()), nil
}

func genEntryEmbed() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", runtimeModule+"/runtime/session")
	b.WriteString(")\n\n")
	b.WriteString("// NewGame is the embeddable-library entry point: it hands the embedding\n")
	b.WriteString("// application a running session plus the environment in effect.\n")
	b.WriteString("func NewGame() (*session.Session, Environment, error) {\n")
	b.WriteString("\ts, err := NewSession()\n")
	b.WriteString("\tif err != nil {\n\t\treturn nil, Environment{}, err\n\t}\n")
	b.WriteString("\treturn s, NewEnvironment(), nil\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func genEntryMain() ([]byte, error) {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("import (\n")
	b.WriteString("\t\"context\"\n")
	b.WriteString(")\n\n")
	b.WriteString("// Main is the standalone-process entry point. mode selects the host:\n")
	b.WriteString("// \"render\" for the interactive surface, \"serve\" for the networked\n")
	b.WriteString("// headless host.\n")
	b.WriteString("func Main(mode, addr string) error {\n")
	b.WriteString("\tswitch mode {\n")
	b.WriteString("\tcase \"serve\":\n")
	b.WriteString("\t\treturn ServeScene(HostConfig{Addr: addr})\n")
	b.WriteString("\tdefault:\n")
	b.WriteString("\t\treturn RunRender(context.Background())\n")
	b.WriteString("\t}\n")
	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func goType(t string) string {
	switch t {
	case "int":
		return "int64"
	case "float":
		return "float64"
	case "bool":
		return "bool"
	case "string":
		return "string"
	}
	return "any"
}

// exportName turns a scene identifier into an exported Go identifier:
// "main_character" becomes "MainCharacter".
func exportName(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
