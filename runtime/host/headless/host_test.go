package headless

import (
	"context"
	"testing"

	"github.com/scenec-xyz/go-scenec/extract"
	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/interp"
	"github.com/scenec-xyz/go-scenec/runtime/session"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

const source = `actor Player:
    x: int
    speed: int

def move_right(p: Player):
    p.x = p.x + p.speed

role player1 required human

spawn Player p1 (x=0, speed=1)

rule key ArrowRight player1 -> move_right
`

func newSession(t *testing.T) *session.Session {
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
	s, err := session.New(prog)
	if err != nil {
		t.Fatalf("New session failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRun_FixedTicks(t *testing.T) {
	s := newSession(t)
	if err := Run(context.Background(), s, 10, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if s.State().Tick != 10 {
		t.Errorf("Expected tick 10, got %d", s.State().Tick)
	}
}

func TestRun_ScriptedInput(t *testing.T) {
	s := newSession(t)
	script := Script{
		{Tick: 2, Key: "ArrowRight", Role: "player1"},
		{Tick: 2, Key: "ArrowRight", Role: "player1"},
		{Tick: 5, Key: "ArrowRight", Role: "player1"},
	}
	if err := Run(context.Background(), s, 5, script); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := s.State().Actors[0].N[0]; got != 3 {
		t.Errorf("Expected x=3 after 3 scripted presses, got %v", got)
	}
}

func TestRun_OnFrame(t *testing.T) {
	s := newSession(t)
	var ticks []int64
	h := &Host{OnFrame: func(tick int64, st *interp.State) {
		ticks = append(ticks, tick)
	}}
	if err := h.Run(context.Background(), s, 3, nil); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(ticks) != 3 || ticks[0] != 1 || ticks[2] != 3 {
		t.Errorf("Unexpected frame ticks: %v", ticks)
	}
}

func TestRun_Cancelled(t *testing.T) {
	s := newSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, s, 100, nil); err == nil {
		t.Error("Expected context error")
	}
	if s.State().Tick != 0 {
		t.Errorf("Expected no ticks after cancellation, got %d", s.State().Tick)
	}
}
