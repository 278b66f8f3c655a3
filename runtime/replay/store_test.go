package replay

import (
	"path/filepath"
	"strings"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "replay.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SessionLifecycle(t *testing.T) {
	store := openStore(t)

	if err := store.CreateSession("s1", "game", "headless"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	sess, err := store.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.Scene != "game" || sess.Host != "headless" {
		t.Errorf("Unexpected session: %+v", sess)
	}
	if sess.EndedAt != nil {
		t.Error("Expected open session")
	}

	if err := store.EndSession("s1", 42); err != nil {
		t.Fatalf("EndSession failed: %v", err)
	}
	sess, err = store.GetSession("s1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.EndedAt == nil || sess.Ticks != 42 {
		t.Errorf("Expected ended session with 42 ticks, got %+v", sess)
	}
}

func TestStore_Frames(t *testing.T) {
	store := openStore(t)
	if err := store.CreateSession("s1", "game", "headless"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := store.AppendFrame("s1", 1, []byte(`{"tick":1}`), nil); err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}
	input := []map[string]string{{"key": "ArrowRight", "role": "player1"}}
	if err := store.AppendFrame("s1", 2, []byte(`{"tick":2}`), input); err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}

	frames, err := store.Frames("s1")
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}
	if frames[0].Tick != 1 || frames[0].Input != "" {
		t.Errorf("Unexpected frame 0: %+v", frames[0])
	}
	if frames[1].Tick != 2 || !strings.Contains(frames[1].Input, "ArrowRight") {
		t.Errorf("Unexpected frame 1: %+v", frames[1])
	}
}

func TestStore_RecentSessions(t *testing.T) {
	store := openStore(t)
	for _, id := range []string{"s1", "s2", "s3"} {
		if err := store.CreateSession(id, "game", "server"); err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
	}

	sessions, err := store.RecentSessions(2)
	if err != nil {
		t.Fatalf("RecentSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(sessions))
	}
}

func TestStore_GetMissingSession(t *testing.T) {
	store := openStore(t)
	if _, err := store.GetSession("ghost"); err == nil {
		t.Error("Expected error for missing session")
	}
}

func TestExportJSONL(t *testing.T) {
	store := openStore(t)
	if err := store.CreateSession("s1", "game", "headless"); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := store.AppendFrame("s1", 1, []byte(`{"tick":1}`), nil); err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}
	if err := store.AppendFrame("s1", 2, []byte(`{"tick":2}`), []string{"x"}); err != nil {
		t.Fatalf("AppendFrame failed: %v", err)
	}

	var b strings.Builder
	if err := store.ExportJSONL("s1", &b); err != nil {
		t.Fatalf("ExportJSONL failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), b.String())
	}
	if !strings.Contains(lines[0], `"tick":1`) {
		t.Errorf("Unexpected first line: %q", lines[0])
	}
}
