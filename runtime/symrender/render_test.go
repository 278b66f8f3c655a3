package symrender

import (
	"strings"
	"testing"

	"github.com/scenec-xyz/go-scenec/extract"
	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/interp"
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

func TestFrame(t *testing.T) {
	prog := program(t, `actor Player:
    x: int
    y: int
    name: string
    alive: bool

spawn Player zed (x=1, y=2, name="z", alive=true)
spawn Player abe (x=3, y=4, name="a", alive=false)
`)
	st := interp.NewState(prog)
	st.Tick = 7

	got := Frame(prog, st)
	want := "tick 7\nabe Player x=3 y=4 name=a alive=false\nzed Player x=1 y=2 name=z alive=true\n"
	if got != want {
		t.Errorf("Frame mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestFrame_Stable(t *testing.T) {
	prog := program(t, "actor P:\n    x: int\n\nspawn P a (x=1)\nspawn P b (x=2)\n")
	st := interp.NewState(prog)
	if Frame(prog, st) != Frame(prog, st) {
		t.Error("Frame is not stable across calls")
	}
}

func TestGrid(t *testing.T) {
	prog := program(t, `actor Player:
    x: int
    y: int

spawn Player p1 (x=1, y=0)

scene width=3 height=2
`)
	st := interp.NewState(prog)

	got, ok := Grid(prog, st)
	if !ok {
		t.Fatal("Expected grid for bounded scene")
	}
	want := ".P.\n...\n"
	if got != want {
		t.Errorf("Grid mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestGrid_NoBounds(t *testing.T) {
	prog := program(t, "actor P:\n    x: int\n    y: int\n\nspawn P p1 (x=0, y=0)\n")
	st := interp.NewState(prog)
	if _, ok := Grid(prog, st); ok {
		t.Error("Expected no grid without bounds")
	}
}

func TestGrid_OutOfRangeSkipped(t *testing.T) {
	prog := program(t, `actor P:
    x: int
    y: int

spawn P p1 (x=9, y=9)

scene width=2 height=2
`)
	st := interp.NewState(prog)
	got, ok := Grid(prog, st)
	if !ok {
		t.Fatal("Expected grid")
	}
	if strings.Contains(got, "P") {
		t.Errorf("Expected out-of-range actor skipped, got %q", got)
	}
}
