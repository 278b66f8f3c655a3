// Package headless runs scenes without any rendering surface: a fixed number
// of steps executed as fast as possible, with optional scripted input. It is
// the host behind batch simulation and verification runs.
package headless

import (
	"context"

	"github.com/scenec-xyz/go-scenec/runtime/interp"
	"github.com/scenec-xyz/go-scenec/runtime/session"
)

// Step is one scripted input: a key press by a role delivered before the
// given tick executes. Ticks are 1-based, matching session tick numbers.
type Step struct {
	Tick int64  `json:"tick"`
	Key  string `json:"key"`
	Role string `json:"role"`
}

// Script is a scripted input sequence, ordered by tick.
type Script []Step

// Host drives one session through a fixed number of steps.
type Host struct {
	// OnFrame, when set, observes the state after every tick.
	OnFrame func(tick int64, st *interp.State)
}

// Run executes ticks steps of the session, delivering scripted input at the
// ticks it names. It stops early when ctx is cancelled.
func (h *Host) Run(ctx context.Context, s *session.Session, ticks int64, script Script) error {
	next := 0
	for i := int64(1); i <= ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for next < len(script) && script[next].Tick == i {
			s.HandleKey(script[next].Key, script[next].Role)
			next++
		}
		tick := s.Tick()
		if h.OnFrame != nil {
			h.OnFrame(tick, s.State())
		}
	}
	return nil
}

// Run is a convenience for driving a session with the zero-value host.
func Run(ctx context.Context, s *session.Session, ticks int64, script Script) error {
	return (&Host{}).Run(ctx, s, ticks, script)
}
