package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/scenec-xyz/go-scenec/ir"
)

// Manager owns a set of concurrent sessions over one program. It backs the
// networked host, where each connected client runs its own scene.
type Manager struct {
	prog *ir.Program
	opts []Option

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager that spawns sessions of the given program.
// opts apply to every created session.
func NewManager(prog *ir.Program, opts ...Option) *Manager {
	return &Manager{
		prog:     prog,
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns it.
func (m *Manager) Create() (*Session, error) {
	s, err := New(m.prog, m.opts...)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %q not found", id)
	}
	return s, nil
}

// Destroy closes and removes a session.
func (m *Manager) Destroy(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q not found", id)
	}
	return s.Close()
}

// List returns the ids of all live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Shutdown closes every live session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.sessions {
		s.Close()
		delete(m.sessions, id)
	}
}
