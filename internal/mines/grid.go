package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Cell struct {
	Row      int  `json:"row"`
	Col      int  `json:"col"`
	Hazard   bool `json:"hazard"`
	Revealed bool `json:"revealed"`
	Flagged  bool `json:"flagged"`
	Adjacent int  `json:"adjacent"`
}

func (c Cell) Point() Point {
	return Point{c.Row, c.Col}
}

// String is the glyph a player sees for c: "-" hidden, "F" flagged,
// "*" revealed hazard, "." revealed empty, otherwise the adjacency count.
func (c Cell) String() string {
	switch {
	case !c.Revealed && c.Flagged:
		return "F"
	case !c.Revealed:
		return "-"
	case c.Hazard:
		return "*"
	case c.Adjacent == 0:
		return "."
	default:
		return strconv.Itoa(c.Adjacent)
	}
}

type Status int8

const (
	InProgress Status = iota
	Won
	Lost
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "Status(" + strconv.Itoa(int(s)) + ")"
	}
}

func (s Status) Terminal() bool {
	return s == Won || s == Lost
}

// [Status] implements [encoding.TextMarshaler]
func (s Status) MarshalText() ([]byte, error) {
	switch s {
	case InProgress:
		return []byte("in_progress"), nil
	case Won, Lost:
		return []byte(s.String()), nil
	}
	return nil, fmt.Errorf("unknown status %d", s)
}

func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "in_progress":
		*s = InProgress
	case "won":
		*s = Won
	case "lost":
		*s = Lost
	default:
		return fmt.Errorf("unknown status %q", text)
	}
	return nil
}

type Grid []Cell

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			fmt.Fprint(&b, g[y*width+x].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}

// countAdjacent fills in Adjacent for every cell. Must run once, after all
// hazards are placed.
func (g Grid) countAdjacent(p GameParams) {
	for i := range g {
		row, col := p.position(i)
		n := 0
		for _, d := range neighborOffsets {
			r, c := row+d[0], col+d[1]
			if p.InBounds(r, c) && g[p.index(r, c)].Hazard {
				n++
			}
		}
		g[i].Adjacent = n
	}
}
