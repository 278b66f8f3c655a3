package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// frameLine is the JSONL export shape: one object per recorded tick.
type frameLine struct {
	SessionID string          `json:"session_id"`
	Tick      int64           `json:"tick"`
	State     json.RawMessage `json:"state"`
	Input     json.RawMessage `json:"input,omitempty"`
}

// ExportJSONL writes a session's frames as JSON Lines, one frame per line in
// tick order, for offline diffing and analysis.
func (s *Store) ExportJSONL(sessionID string, w io.Writer) error {
	frames, err := s.Frames(sessionID)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for _, f := range frames {
		line := frameLine{
			SessionID: f.SessionID,
			Tick:      f.Tick,
			State:     json.RawMessage(f.State),
		}
		if f.Input != "" {
			line.Input = json.RawMessage(f.Input)
		}
		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("encode frame %d: %w", f.Tick, err)
		}
	}
	return bw.Flush()
}
