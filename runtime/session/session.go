// Package session manages running scenes: a Session is one live state plus
// its interpreter, and a Manager owns any number of concurrent sessions.
package session

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/interp"
	"github.com/scenec-xyz/go-scenec/runtime/replay"
)

// Session is one running scene. All methods are safe for concurrent use.
type Session struct {
	id     string
	in     *interp.Interpreter
	log    zerolog.Logger
	store  *replay.Store
	host   string

	mu      sync.Mutex
	st      *interp.State
	pending []interp.Event
	closed  bool
}

// Option configures a Session.
type Option func(*Session)

// WithReplay records every tick of the session into the given store.
func WithReplay(store *replay.Store) Option {
	return func(s *Session) { s.store = store }
}

// WithLogger sets the session logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithHost tags the session with the host kind that runs it.
func WithHost(host string) Option {
	return func(s *Session) { s.host = host }
}

// New creates a session for the given program with a fresh initial state.
func New(prog *ir.Program, opts ...Option) (*Session, error) {
	s := &Session{
		id:   uuid.New().String(),
		in:   interp.New(prog),
		st:   interp.NewState(prog),
		log:  zerolog.Nop(),
		host: "headless",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store != nil {
		if err := s.store.CreateSession(s.id, prog.Scene, s.host); err != nil {
			return nil, fmt.Errorf("create replay session: %w", err)
		}
	}
	s.log.Info().Str("session", s.id).Str("scene", prog.Scene).Msg("session started")
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Program returns the program this session runs.
func (s *Session) Program() *ir.Program { return s.in.Program() }

// HandleKey queues a key press by a role for the next tick.
func (s *Session) HandleKey(key, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending = append(s.pending, interp.Event{Key: key, Role: role})
}

// Tick advances the session by one step, consuming queued input, and returns
// the new tick number.
func (s *Session) Tick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.st.Tick
	}
	events := s.pending
	s.pending = nil
	s.in.Step(s.st, events)

	if s.store != nil {
		state, err := json.Marshal(s.st)
		if err == nil {
			var input any
			if len(events) > 0 {
				input = events
			}
			if err := s.store.AppendFrame(s.id, s.st.Tick, state, input); err != nil {
				s.log.Warn().Err(err).Int64("tick", s.st.Tick).Msg("replay frame dropped")
			}
		}
	}
	return s.st.Tick
}

// State returns a deep copy of the current state.
func (s *Session) State() *interp.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Clone()
}

// Close ends the session, finalizing its replay record.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Info().Str("session", s.id).Int64("ticks", s.st.Tick).Msg("session ended")
	if s.store != nil {
		return s.store.EndSession(s.id, s.st.Tick)
	}
	return nil
}
