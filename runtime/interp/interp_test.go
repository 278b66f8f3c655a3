package interp

import (
	"testing"

	"github.com/scenec-xyz/go-scenec/extract"
	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

func program(t *testing.T, source string) *ir.Program {
	t.Helper()
	recs, err := extract.Extract("game", source)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	spec, err := scenespec.Build("game", recs)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	prog, err := ir.Lower(spec)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	return prog
}

func value(t *testing.T, in *Interpreter, st *State, uid, field string) float64 {
	t.Helper()
	v, ok := in.Value(st, uid, field)
	if !ok {
		t.Fatalf("Field %s.%s not found", uid, field)
	}
	return v
}

func TestStep_KeyboardEdge(t *testing.T) {
	prog := program(t, `actor Player:
    x: int
    speed: int

def move_right(p: Player):
    p.x = p.x + p.speed

role player1 required human

spawn Player p1 (x=4, speed=3)

rule key ArrowRight player1 -> move_right
`)
	in := New(prog)
	st := NewState(prog)

	in.Step(st, []Event{{Key: "ArrowRight", Role: "player1"}})
	if got := value(t, in, st, "p1", "x"); got != 7 {
		t.Errorf("Expected x=7, got %v", got)
	}
	if st.Tick != 1 {
		t.Errorf("Expected tick 1, got %d", st.Tick)
	}

	// Wrong key or wrong role does nothing.
	in.Step(st, []Event{{Key: "ArrowLeft", Role: "player1"}})
	in.Step(st, []Event{{Key: "ArrowRight", Role: "player2"}})
	if got := value(t, in, st, "p1", "x"); got != 7 {
		t.Errorf("Expected x unchanged, got %v", got)
	}
}

func TestStep_TimerEdge(t *testing.T) {
	prog := program(t, `actor Counter:
    n: int

def inc(c: Counter):
    c.n = c.n + 1

spawn Counter c1 (n=0)

scene tick=100

rule timer 250 -> inc
`)
	in := New(prog)
	st := NewState(prog)

	// Ticks at 100ms: the 250ms timer fires when a multiple of 250 is
	// crossed, i.e. on ticks reaching 300ms, 500ms, 800ms, 1000ms...
	var fired []int64
	for i := 0; i < 10; i++ {
		before := value(t, in, st, "c1", "n")
		in.Step(st, nil)
		if value(t, in, st, "c1", "n") > before {
			fired = append(fired, st.Tick)
		}
	}
	want := []int64{3, 5, 8, 10}
	if len(fired) != len(want) {
		t.Fatalf("Expected fires at %v, got %v", want, fired)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("Fire %d: expected tick %d, got %d", i, want[i], fired[i])
		}
	}
}

func TestStep_Gravity(t *testing.T) {
	prog := program(t, `actor Ball:
    y: float

spawn Ball b1 (y=0)

scene gravity=10 tick=100
`)
	in := New(prog)
	st := NewState(prog)

	in.Step(st, nil)
	// 10 units/s over a 100ms tick.
	if got := value(t, in, st, "b1", "y"); got != 1 {
		t.Errorf("Expected y=1, got %v", got)
	}
}

func TestStep_GravityOmitted(t *testing.T) {
	prog := program(t, `actor Ball:
    y: float

spawn Ball b1 (y=0)

scene gravity=false
`)
	in := New(prog)
	st := NewState(prog)
	in.Step(st, nil)
	if got := value(t, in, st, "b1", "y"); got != 0 {
		t.Errorf("Expected y unchanged without gravity, got %v", got)
	}
}

func TestStep_BoundsClamp(t *testing.T) {
	prog := program(t, `actor Player:
    x: int
    y: int

def run(p: Player):
    p.x = p.x + 100
    p.y = p.y - 100

spawn Player p1 (x=5, y=5)

scene width=10 height=8

rule timer 16 -> run
`)
	in := New(prog)
	st := NewState(prog)
	in.Step(st, nil)

	if got := value(t, in, st, "p1", "x"); got != 9 {
		t.Errorf("Expected x clamped to 9, got %v", got)
	}
	if got := value(t, in, st, "p1", "y"); got != 0 {
		t.Errorf("Expected y clamped to 0, got %v", got)
	}
}

func TestStep_IntCoercion(t *testing.T) {
	prog := program(t, `actor Player:
    x: int

def half(p: Player):
    p.x = p.x / 2

spawn Player p1 (x=5)

rule timer 16 -> half
`)
	in := New(prog)
	st := NewState(prog)
	in.Step(st, nil)
	if got := value(t, in, st, "p1", "x"); got != 2 {
		t.Errorf("Expected int truncation to 2, got %v", got)
	}
}

func TestStep_EdgeTargetsAllInstances(t *testing.T) {
	prog := program(t, `actor Player:
    x: int

def step(p: Player):
    p.x = p.x + 1

spawn Player p1 (x=0)
spawn Player p2 (x=10)

rule timer 16 -> step
`)
	in := New(prog)
	st := NewState(prog)
	in.Step(st, nil)
	if value(t, in, st, "p1", "x") != 1 || value(t, in, st, "p2", "x") != 11 {
		t.Error("Expected both instances mutated")
	}
}

func TestState_Clone(t *testing.T) {
	prog := program(t, "actor Player:\n    x: int\n\nspawn Player p1 (x=1)\n")
	st := NewState(prog)
	clone := st.Clone()
	clone.Actors[0].N[0] = 99
	if st.Actors[0].N[0] != 1 {
		t.Error("Clone shares storage with original")
	}
}

func TestEvalOps_DivisionByZero(t *testing.T) {
	ops := []ir.Op{{Code: "lit", Lit: 5}, {Code: "lit", Lit: 0}, {Code: "div"}}
	if got := evalOps(ops, nil); got != 0 {
		t.Errorf("Expected division by zero to yield 0, got %v", got)
	}
}
