package ir

import (
	"reflect"
	"testing"

	"github.com/scenec-xyz/go-scenec/extract"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

func buildSpec(t *testing.T, source string) *scenespec.Spec {
	t.Helper()
	recs, err := extract.Extract("game", source)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	spec, err := scenespec.Build("game", recs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return spec
}

const scene = `actor Player:
    x: int
    y: int
    speed: int

actor Wall:
    x: int
    y: int

def move_right(p: Player):
    p.x = p.x + p.speed

def fall(p: Player):
    p.y = p.y + 1

role player1 required human

spawn Player main_character (x=4, y=5, speed=4)
spawn Wall w1 (x=0, y=9)
spawn Player sidekick (x=1, y=1, speed=2)

camera follow main_character

scene gravity=9.8 width=80 height=24 tick=32

rule key ArrowRight player1 -> move_right
rule timer 500 -> fall
`

func TestLower_Basic(t *testing.T) {
	prog, err := Lower(buildSpec(t, scene))
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}

	if prog.Version != Version || prog.Scene != "game" {
		t.Errorf("Unexpected header: version=%d scene=%q", prog.Version, prog.Scene)
	}
	if prog.TickMS != 32 {
		t.Errorf("Expected tick 32, got %d", prog.TickMS)
	}
	if prog.Gravity == nil || *prog.Gravity != 9.8 {
		t.Errorf("Expected gravity 9.8, got %v", prog.Gravity)
	}
	if prog.Width == nil || *prog.Width != 80 || prog.Height == nil || *prog.Height != 24 {
		t.Errorf("Unexpected bounds: %v x %v", prog.Width, prog.Height)
	}

	// Schemas sort by name: Player before Wall.
	if len(prog.Schemas) != 2 || prog.Schemas[0].Name != "Player" || prog.Schemas[1].Name != "Wall" {
		t.Fatalf("Unexpected schemas: %+v", prog.Schemas)
	}

	// Actors keep declaration order and bind schema indices.
	if len(prog.Actors) != 3 {
		t.Fatalf("Expected 3 actors, got %d", len(prog.Actors))
	}
	if prog.Actors[0].UID != "main_character" || prog.Actors[0].Schema != 0 {
		t.Errorf("Unexpected actor 0: %+v", prog.Actors[0])
	}
	if prog.Actors[1].UID != "w1" || prog.Actors[1].Schema != 1 {
		t.Errorf("Unexpected actor 1: %+v", prog.Actors[1])
	}
	if got := prog.Actors[0].Init; len(got) != 3 || got[0].N != 4 || got[1].N != 5 || got[2].N != 4 {
		t.Errorf("Unexpected init slots: %+v", got)
	}

	// Actions sort by name: fall before move_right.
	if len(prog.Actions) != 2 || prog.Actions[0].Name != "fall" || prog.Actions[1].Name != "move_right" {
		t.Fatalf("Unexpected actions: %+v", prog.Actions)
	}

	if prog.Camera.Mode != "follow" || prog.Camera.Target != 0 {
		t.Errorf("Unexpected camera: %+v", prog.Camera)
	}
}

func TestLower_Edges(t *testing.T) {
	prog, err := Lower(buildSpec(t, scene))
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if len(prog.Edges) != 2 {
		t.Fatalf("Expected 2 edges, got %d", len(prog.Edges))
	}

	kb := prog.Edges[0]
	if kb.Kind != "keyboard" || kb.Key != "ArrowRight" {
		t.Errorf("Unexpected keyboard edge: %+v", kb)
	}
	if kb.Role != 0 {
		t.Errorf("Expected role index 0, got %d", kb.Role)
	}
	if prog.Actions[kb.Action].Name != "move_right" {
		t.Errorf("Edge bound to wrong action: %+v", kb)
	}
	// Unpinned action targets every Player instance in declaration order.
	if !reflect.DeepEqual(kb.Targets, []int{0, 2}) {
		t.Errorf("Expected targets [0 2], got %v", kb.Targets)
	}

	tm := prog.Edges[1]
	if tm.Kind != "timer" || tm.EveryMS != 500 || tm.Role != -1 {
		t.Errorf("Unexpected timer edge: %+v", tm)
	}
}

func TestLower_PinnedTarget(t *testing.T) {
	source := `actor Player:
    x: int

def boost(p: Player[p2]):
    p.x = p.x + 1

spawn Player p1 (x=0)
spawn Player p2 (x=0)

rule timer 100 -> boost
`
	prog, err := Lower(buildSpec(t, source))
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if !reflect.DeepEqual(prog.Edges[0].Targets, []int{1}) {
		t.Errorf("Expected pinned target [1], got %v", prog.Edges[0].Targets)
	}
}

func TestLower_MutationOps(t *testing.T) {
	source := `actor Player:
    x: int
    speed: int

def f(p: Player):
    p.x = p.x + p.speed * 2

spawn Player p1 (x=0, speed=3)
`
	prog, err := Lower(buildSpec(t, source))
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	m := prog.Actions[0].Mutations[0]
	if m.Slot != 0 {
		t.Errorf("Expected slot 0, got %d", m.Slot)
	}
	want := []Op{
		{Code: "load", Slot: 0},
		{Code: "load", Slot: 1},
		{Code: "lit", Lit: 2},
		{Code: "mul"},
		{Code: "add"},
	}
	if !reflect.DeepEqual(m.Ops, want) {
		t.Errorf("Expected postfix %v, got %v", want, m.Ops)
	}
}

func TestLower_Defaults(t *testing.T) {
	prog, err := Lower(buildSpec(t, "actor Player:\n    x: int\n"))
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if prog.TickMS != DefaultTickMS {
		t.Errorf("Expected default tick %d, got %d", DefaultTickMS, prog.TickMS)
	}
	if prog.Gravity != nil || prog.Width != nil || prog.Height != nil {
		t.Error("Expected optional features unset")
	}
	if prog.Camera.Mode != "fixed" || prog.Camera.Target != -1 {
		t.Errorf("Expected default fixed camera, got %+v", prog.Camera)
	}
}

// Lowering the same spec twice yields structurally identical programs.
func TestLower_Deterministic(t *testing.T) {
	spec := buildSpec(t, scene)
	p1, err := Lower(spec)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	p2, err := Lower(spec)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Error("Lowering is not deterministic")
	}
	j1, _ := ToJSON(p1)
	j2, _ := ToJSON(p2)
	if string(j1) != string(j2) {
		t.Error("Serialized programs differ")
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	prog, err := Lower(buildSpec(t, scene))
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	data, err := ToJSON(prog)
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	back, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !reflect.DeepEqual(prog, back) {
		t.Error("Round trip changed the program")
	}
}

func TestFromJSON_VersionCheck(t *testing.T) {
	if _, err := FromJSON([]byte(`{"version": 99}`)); err == nil {
		t.Error("Expected error for unsupported version")
	}
}
