// Package interp executes lowered scene programs. It is the runtime core
// that generated packages wire their scene-specific bindings into: state
// construction from actor bindings, input-driven edge firing, and fixed-step
// advancement.
package interp

import (
	"math"

	"github.com/scenec-xyz/go-scenec/ir"
)

// Event is one input delivered to a step: a key press attributed to a role.
type Event struct {
	Key  string `json:"key"`
	Role string `json:"role"`
}

// ActorState is the live state of one actor. Numeric and boolean fields live
// in N (by schema slot), string fields in S.
type ActorState struct {
	UID    string    `json:"uid"`
	Schema int       `json:"schema"`
	N      []float64 `json:"n"`
	S      []string  `json:"s"`
}

// State is the complete mutable state of a running scene.
type State struct {
	Tick   int64         `json:"tick"`
	Actors []*ActorState `json:"actors"`
}

// NewState builds the initial state from a program's actor bindings.
func NewState(p *ir.Program) *State {
	st := &State{}
	for _, a := range p.Actors {
		as := &ActorState{
			UID:    a.UID,
			Schema: a.Schema,
			N:      make([]float64, len(a.Init)),
			S:      make([]string, len(a.Init)),
		}
		for i, slot := range a.Init {
			as.N[i] = slot.N
			as.S[i] = slot.S
		}
		st.Actors = append(st.Actors, as)
	}
	return st
}

// Clone returns a deep copy of the state.
func (st *State) Clone() *State {
	out := &State{Tick: st.Tick}
	for _, a := range st.Actors {
		c := &ActorState{
			UID:    a.UID,
			Schema: a.Schema,
			N:      append([]float64(nil), a.N...),
			S:      append([]string(nil), a.S...),
		}
		out.Actors = append(out.Actors, c)
	}
	return out
}

// Interpreter drives one program. It holds no mutable state of its own; the
// same interpreter can step any number of independent States.
type Interpreter struct {
	prog *ir.Program
}

// New creates an interpreter for the given program.
func New(p *ir.Program) *Interpreter {
	return &Interpreter{prog: p}
}

// Program returns the program being interpreted.
func (in *Interpreter) Program() *ir.Program { return in.prog }

// Step advances the state by one fixed tick: fires every edge whose
// condition matches the delivered events or whose timer elapses, applies
// gravity when the program declares it, and clamps positions to the play
// area when bounds are declared.
func (in *Interpreter) Step(st *State, events []Event) {
	prevMS := st.Tick * int64(in.prog.TickMS)
	st.Tick++
	nowMS := st.Tick * int64(in.prog.TickMS)

	for _, edge := range in.prog.Edges {
		switch edge.Kind {
		case "keyboard":
			for _, ev := range events {
				if ev.Key != edge.Key {
					continue
				}
				if edge.Role >= 0 && in.prog.Roles[edge.Role].ID != ev.Role {
					continue
				}
				in.fire(st, edge)
			}
		case "timer":
			if edge.EveryMS > 0 && nowMS/int64(edge.EveryMS) > prevMS/int64(edge.EveryMS) {
				in.fire(st, edge)
			}
		}
	}

	if in.prog.Gravity != nil {
		in.applyGravity(st)
	}
	if in.prog.Width != nil && in.prog.Height != nil {
		in.clampBounds(st)
	}
}

func (in *Interpreter) fire(st *State, edge ir.Edge) {
	act := in.prog.Actions[edge.Action]
	for _, ti := range edge.Targets {
		actor := st.Actors[ti]
		for _, m := range act.Mutations {
			v := evalOps(m.Ops, actor.N)
			schema := in.prog.Schemas[actor.Schema]
			actor.N[m.Slot] = coerce(v, schema.Fields[m.Slot].Type)
		}
	}
}

// applyGravity pulls every actor with a numeric "y" field downward by the
// configured magnitude, scaled to the tick length.
func (in *Interpreter) applyGravity(st *State) {
	g := *in.prog.Gravity * float64(in.prog.TickMS) / 1000.0
	for _, actor := range st.Actors {
		schema := in.prog.Schemas[actor.Schema]
		for i, f := range schema.Fields {
			if f.Name == "y" && f.Type != "string" && f.Type != "bool" {
				actor.N[i] = coerce(actor.N[i]+g, f.Type)
			}
		}
	}
}

func (in *Interpreter) clampBounds(st *State) {
	w := float64(*in.prog.Width)
	h := float64(*in.prog.Height)
	for _, actor := range st.Actors {
		schema := in.prog.Schemas[actor.Schema]
		for i, f := range schema.Fields {
			if f.Type == "string" || f.Type == "bool" {
				continue
			}
			switch f.Name {
			case "x":
				actor.N[i] = clamp(actor.N[i], 0, w-1)
			case "y":
				actor.N[i] = clamp(actor.N[i], 0, h-1)
			}
		}
	}
}

// Value reads one field of one actor by name. It returns the numeric view
// for numeric and boolean fields.
func (in *Interpreter) Value(st *State, uid, field string) (float64, bool) {
	for _, actor := range st.Actors {
		if actor.UID != uid {
			continue
		}
		schema := in.prog.Schemas[actor.Schema]
		for i, f := range schema.Fields {
			if f.Name == field {
				return actor.N[i], true
			}
		}
	}
	return 0, false
}

// evalOps runs a postfix mutation program against the actor's numeric slots.
func evalOps(ops []ir.Op, slots []float64) float64 {
	var stack []float64
	push := func(v float64) { stack = append(stack, v) }
	pop := func() float64 {
		if len(stack) == 0 {
			return 0
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, op := range ops {
		switch op.Code {
		case "load":
			push(slots[op.Slot])
		case "lit":
			push(op.Lit)
		case "add":
			b, a := pop(), pop()
			push(a + b)
		case "sub":
			b, a := pop(), pop()
			push(a - b)
		case "mul":
			b, a := pop(), pop()
			push(a * b)
		case "div":
			b, a := pop(), pop()
			if b == 0 {
				push(0)
			} else {
				push(a / b)
			}
		}
	}
	return pop()
}

// coerce snaps a computed value back to its declared field type.
func coerce(v float64, typ string) float64 {
	switch typ {
	case "int":
		return math.Trunc(v)
	case "bool":
		if v != 0 {
			return 1
		}
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
