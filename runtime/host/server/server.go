// Package server exposes headless scene execution over HTTP. Each client
// owns a session; input and ticks are driven by requests, so the server
// itself stays deterministic and clock-free.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/session"
	"github.com/scenec-xyz/go-scenec/runtime/symrender"
)

// Server is the networked headless host.
type Server struct {
	prog     *ir.Program
	sessions *session.Manager
	log      zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a server over the given session manager.
func New(prog *ir.Program, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		prog:     prog,
		sessions: sessions,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler for the host API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", s.handleCreate)
	mux.HandleFunc("GET /sessions", s.handleList)
	mux.HandleFunc("GET /sessions/{id}", s.handleGet)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDestroy)
	mux.HandleFunc("POST /sessions/{id}/input", s.handleInput)
	mux.HandleFunc("POST /sessions/{id}/tick", s.handleTick)
	return mux
}

// ListenAndServe runs the host on addr until the listener fails.
func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Str("scene", s.prog.Scene).Msg("server host listening")
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Create()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.log.Info().Str("session", sess.ID()).Msg("session created")
	s.reply(w, http.StatusCreated, map[string]string{"id": sess.ID()})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	s.reply(w, http.StatusOK, map[string]any{"sessions": s.sessions.List()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	st := sess.State()
	s.reply(w, http.StatusOK, map[string]any{
		"id":    sess.ID(),
		"tick":  st.Tick,
		"state": st,
		"frame": symrender.Frame(s.prog, st),
	})
}

func (s *Server) handleDestroy(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Destroy(r.PathValue("id")); err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	var input struct {
		Key  string `json:"key"`
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	sess.HandleKey(input.Key, input.Role)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.PathValue("id"))
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return
	}
	var req struct {
		Count int64 `json:"count"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.fail(w, http.StatusBadRequest, err)
			return
		}
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	var tick int64
	for i := int64(0); i < req.Count; i++ {
		tick = sess.Tick()
	}
	s.reply(w, http.StatusOK, map[string]any{"tick": tick})
}

func (s *Server) reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Warn().Err(err).Msg("response encode failed")
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	s.log.Warn().Err(err).Int("status", status).Msg("request failed")
	s.reply(w, status, map[string]string{"error": err.Error()})
}
