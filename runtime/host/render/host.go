// Package render runs scenes on an interactive terminal surface. Keyboard
// input is attributed to a configured role, ticks run on a wall clock, and
// actors draw at their (x, y) fields with the camera mode applied.
package render

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/interp"
	"github.com/scenec-xyz/go-scenec/runtime/session"
)

// Host is the interactive rendering host.
type Host struct {
	prog *ir.Program
	role string
	log  zerolog.Logger
}

// Option configures a Host.
type Option func(*Host)

// WithInputRole attributes keyboard input to the given role. The default is
// the first human role of the program.
func WithInputRole(role string) Option {
	return func(h *Host) { h.role = role }
}

// WithLogger sets the host logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Host) { h.log = log }
}

// New creates a rendering host for the given program.
func New(prog *ir.Program, opts ...Option) *Host {
	h := &Host{prog: prog, log: zerolog.Nop()}
	for _, r := range prog.Roles {
		if r.Kind == "human" {
			h.role = r.ID
			break
		}
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run drives the session on a terminal screen until the user quits with
// Escape or Ctrl-C, or ctx is cancelled.
func (h *Host) Run(ctx context.Context, s *session.Session) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(time.Duration(h.prog.TickMS) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					return nil
				}
				if name := keyName(ev); name != "" {
					s.HandleKey(name, h.role)
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			s.Tick()
			h.draw(screen, s.State())
		}
	}
}

// keyName maps a terminal key event to the scene language's key names.
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyLeft:
		return "ArrowLeft"
	case tcell.KeyRight:
		return "ArrowRight"
	case tcell.KeyUp:
		return "ArrowUp"
	case tcell.KeyDown:
		return "ArrowDown"
	case tcell.KeyEnter:
		return "Enter"
	case tcell.KeyRune:
		if ev.Rune() == ' ' {
			return "Space"
		}
		return string(ev.Rune())
	}
	return ""
}

func (h *Host) draw(screen tcell.Screen, st *interp.State) {
	screen.Clear()
	sw, sh := screen.Size()
	camX, camY := h.cameraOrigin(st, sw, sh)

	for _, actor := range st.Actors {
		schema := h.prog.Schemas[actor.Schema]
		x, y, ok := actorPosition(schema, actor)
		if !ok {
			continue
		}
		sx, sy := x-camX, y-camY
		if sx < 0 || sx >= sw || sy < 0 || sy >= sh {
			continue
		}
		screen.SetContent(sx, sy, rune(schema.Name[0]), nil, tcell.StyleDefault)
	}
	screen.Show()
}

// cameraOrigin returns the world coordinate of the screen's top-left corner:
// centered on the followed actor in follow mode, fixed at the origin
// otherwise.
func (h *Host) cameraOrigin(st *interp.State, sw, sh int) (int, int) {
	if h.prog.Camera.Mode != "follow" || h.prog.Camera.Target < 0 {
		return 0, 0
	}
	target := st.Actors[h.prog.Camera.Target]
	schema := h.prog.Schemas[target.Schema]
	x, y, ok := actorPosition(schema, target)
	if !ok {
		return 0, 0
	}
	return x - sw/2, y - sh/2
}

func actorPosition(schema ir.Schema, a *interp.ActorState) (int, int, bool) {
	x, y := 0, 0
	haveX, haveY := false, false
	for i, f := range schema.Fields {
		if f.Type == "string" || f.Type == "bool" {
			continue
		}
		switch f.Name {
		case "x":
			x, haveX = int(a.N[i]), true
		case "y":
			y, haveY = int(a.N[i]), true
		}
	}
	return x, y, haveX && haveY
}
