package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/scenec-xyz/go-scenec/extract"
	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/session"
	"github.com/scenec-xyz/go-scenec/scenespec"
)

const source = `actor Player:
    x: int
    speed: int

def move_right(p: Player):
    p.x = p.x + p.speed

role player1 required human

spawn Player p1 (x=0, speed=2)

rule key ArrowRight player1 -> move_right
`

func newServer(t *testing.T) *httptest.Server {
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
	mgr := session.NewManager(prog)
	t.Cleanup(mgr.Shutdown)

	ts := httptest.NewServer(New(prog, mgr).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(ts.URL+"/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /sessions failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if body.ID == "" {
		t.Fatal("Expected session id")
	}
	return body.ID
}

func TestServer_SessionLifecycle(t *testing.T) {
	ts := newServer(t)
	id := createSession(t, ts)

	resp, err := http.Get(ts.URL + "/sessions")
	if err != nil {
		t.Fatalf("GET /sessions failed: %v", err)
	}
	defer resp.Body.Close()
	var list struct {
		Sessions []string `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(list.Sessions) != 1 || list.Sessions[0] != id {
		t.Errorf("Unexpected session list: %v", list.Sessions)
	}

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/sessions/"+id, nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/sessions/" + id)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestServer_InputAndTick(t *testing.T) {
	ts := newServer(t)
	id := createSession(t, ts)

	input := bytes.NewBufferString(`{"key":"ArrowRight","role":"player1"}`)
	resp, err := http.Post(ts.URL+"/sessions/"+id+"/input", "application/json", input)
	if err != nil {
		t.Fatalf("POST input failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", resp.StatusCode)
	}

	resp, err = http.Post(ts.URL+"/sessions/"+id+"/tick", "application/json", bytes.NewBufferString(`{"count":3}`))
	if err != nil {
		t.Fatalf("POST tick failed: %v", err)
	}
	defer resp.Body.Close()
	var tick struct {
		Tick int64 `json:"tick"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tick); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tick.Tick != 3 {
		t.Errorf("Expected tick 3, got %d", tick.Tick)
	}

	resp, err = http.Get(ts.URL + "/sessions/" + id)
	if err != nil {
		t.Fatalf("GET session failed: %v", err)
	}
	defer resp.Body.Close()
	var got struct {
		ID    string `json:"id"`
		Tick  int64  `json:"tick"`
		Frame string `json:"frame"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.ID != id || got.Tick != 3 {
		t.Errorf("Unexpected session view: %+v", got)
	}
	// The queued key applied on the first of the three ticks.
	if !strings.Contains(got.Frame, "x=2") {
		t.Errorf("Expected frame with x=2, got %q", got.Frame)
	}
}

func TestServer_DefaultTickCount(t *testing.T) {
	ts := newServer(t)
	id := createSession(t, ts)

	resp, err := http.Post(ts.URL+"/sessions/"+id+"/tick", "application/json", nil)
	if err != nil {
		t.Fatalf("POST tick failed: %v", err)
	}
	defer resp.Body.Close()
	var tick struct {
		Tick int64 `json:"tick"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tick); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if tick.Tick != 1 {
		t.Errorf("Expected default single tick, got %d", tick.Tick)
	}
}

func TestServer_UnknownSession(t *testing.T) {
	ts := newServer(t)
	resp, err := http.Post(ts.URL+"/sessions/ghost/tick", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}
