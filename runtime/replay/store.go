// Package replay provides SQLite-backed persistence of scene runs. Every
// session records one frame row per tick, enough to replay or audit a run
// without the host that produced it.
package replay

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store handles database operations for session replay logging.
type Store struct {
	db *sql.DB
}

// Session is one recorded scene run.
type Session struct {
	ID        string     `json:"id"`
	Scene     string     `json:"scene"`
	Host      string     `json:"host"` // "render", "headless", "server"
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Ticks     int64      `json:"ticks"`
}

// Frame is one recorded tick of a session. State holds the JSON-encoded
// interpreter state; Input holds the events delivered that tick, if any.
type Frame struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Tick      int64  `json:"tick"`
	State     string `json:"state"`
	Input     string `json:"input,omitempty"`
}

// Open creates a store backed by the database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		scene TEXT NOT NULL,
		host TEXT NOT NULL DEFAULT 'headless',
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ended_at DATETIME,
		ticks INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS frames (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		state TEXT NOT NULL,
		input TEXT,
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_frames_session ON frames(session_id);
	CREATE INDEX IF NOT EXISTS idx_frames_session_tick ON frames(session_id, tick);
	CREATE INDEX IF NOT EXISTS idx_sessions_scene ON sessions(scene);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession records the start of a run.
func (s *Store) CreateSession(id, scene, host string) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (id, scene, host, started_at) VALUES (?, ?, ?, ?)`,
		id, scene, host, time.Now().UTC(),
	)
	return err
}

// EndSession marks a session as ended with its final tick count.
func (s *Store) EndSession(id string, ticks int64) error {
	_, err := s.db.Exec(
		`UPDATE sessions SET ended_at = ?, ticks = ? WHERE id = ?`,
		time.Now().UTC(), ticks, id,
	)
	return err
}

// AppendFrame logs one tick. state must be JSON; events may be nil.
func (s *Store) AppendFrame(sessionID string, tick int64, state []byte, events any) error {
	var input []byte
	if events != nil {
		var err error
		input, err = json.Marshal(events)
		if err != nil {
			return fmt.Errorf("encode input: %w", err)
		}
	}
	_, err := s.db.Exec(
		`INSERT INTO frames (session_id, tick, state, input) VALUES (?, ?, ?, ?)`,
		sessionID, tick, string(state), nullable(input),
	)
	return err
}

func nullable(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (*Session, error) {
	row := s.db.QueryRow(
		`SELECT id, scene, host, started_at, ended_at, ticks FROM sessions WHERE id = ?`, id,
	)
	var sess Session
	var endedAt sql.NullTime
	err := row.Scan(&sess.ID, &sess.Scene, &sess.Host, &sess.StartedAt, &endedAt, &sess.Ticks)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		sess.EndedAt = &endedAt.Time
	}
	return &sess, nil
}

// Frames retrieves all frames for a session in tick order.
func (s *Store) Frames(sessionID string) ([]*Frame, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, tick, state, input FROM frames
		 WHERE session_id = ? ORDER BY tick`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []*Frame
	for rows.Next() {
		var f Frame
		var input sql.NullString
		if err := rows.Scan(&f.ID, &f.SessionID, &f.Tick, &f.State, &input); err != nil {
			return nil, err
		}
		if input.Valid {
			f.Input = input.String
		}
		frames = append(frames, &f)
	}
	return frames, rows.Err()
}

// RecentSessions returns the most recent sessions.
func (s *Store) RecentSessions(limit int) ([]*Session, error) {
	rows, err := s.db.Query(
		`SELECT id, scene, host, started_at, ended_at, ticks FROM sessions
		 ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		var endedAt sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.Scene, &sess.Host, &sess.StartedAt, &endedAt, &sess.Ticks); err != nil {
			return nil, err
		}
		if endedAt.Valid {
			sess.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}
