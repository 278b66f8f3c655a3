// Package symrender renders scene state as stable text. The output depends
// only on the program and state contents, never on map order or timing, so
// two identical runs produce byte-identical frames. It backs non-visual
// verification and the terminal host's drawing.
package symrender

import (
	"sort"
	"strconv"
	"strings"

	"github.com/scenec-xyz/go-scenec/ir"
	"github.com/scenec-xyz/go-scenec/runtime/interp"
)

// Frame renders one line per actor, sorted by uid:
//
//	tick 12
//	main_character Player x=4 y=5 speed=4
func Frame(p *ir.Program, st *interp.State) string {
	var b strings.Builder
	b.WriteString("tick ")
	b.WriteString(strconv.FormatInt(st.Tick, 10))
	b.WriteByte('\n')

	actors := append([]*interp.ActorState(nil), st.Actors...)
	sort.Slice(actors, func(i, j int) bool { return actors[i].UID < actors[j].UID })

	for _, a := range actors {
		schema := p.Schemas[a.Schema]
		b.WriteString(a.UID)
		b.WriteByte(' ')
		b.WriteString(schema.Name)
		for i, f := range schema.Fields {
			b.WriteByte(' ')
			b.WriteString(f.Name)
			b.WriteByte('=')
			b.WriteString(formatField(f.Type, a.N[i], a.S[i]))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Grid renders the bounded play area as an ASCII grid with each actor drawn
// as the first letter of its schema name at its (x, y) position. It returns
// false when the program declares no bounds.
func Grid(p *ir.Program, st *interp.State) (string, bool) {
	if p.Width == nil || p.Height == nil {
		return "", false
	}
	w, h := *p.Width, *p.Height

	cells := make([][]byte, h)
	for y := range cells {
		cells[y] = []byte(strings.Repeat(".", w))
	}

	actors := append([]*interp.ActorState(nil), st.Actors...)
	sort.Slice(actors, func(i, j int) bool { return actors[i].UID < actors[j].UID })

	for _, a := range actors {
		schema := p.Schemas[a.Schema]
		x, y, ok := position(schema, a)
		if !ok || x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		cells[y][x] = schema.Name[0]
	}

	var b strings.Builder
	for _, row := range cells {
		b.Write(row)
		b.WriteByte('\n')
	}
	return b.String(), true
}

func position(schema ir.Schema, a *interp.ActorState) (int, int, bool) {
	x, y := -1, -1
	for i, f := range schema.Fields {
		if f.Type == "string" || f.Type == "bool" {
			continue
		}
		switch f.Name {
		case "x":
			x = int(a.N[i])
		case "y":
			y = int(a.N[i])
		}
	}
	return x, y, x >= 0 && y >= 0
}

func formatField(typ string, n float64, s string) string {
	switch typ {
	case "string":
		return s
	case "bool":
		if n != 0 {
			return "true"
		}
		return "false"
	case "int":
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
