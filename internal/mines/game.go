package mines

import (
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

// GameState is one game in progress or finished. It is owned by a single
// session; no method is safe for concurrent use.
type GameState struct {
	params       GameParams
	status       Status
	grid         Grid
	safeRevealed int
	flags        int
}

type RevealOutcome struct {
	Status  Status `json:"status"`
	Ignored bool   `json:"ignored"`
	Changed []Cell `json:"changed"`
	Trigger *Cell  `json:"trigger,omitempty"` // set on loss
	Hazards []Cell `json:"hazards,omitempty"` // set on loss
}

func (o *RevealOutcome) merge(other RevealOutcome) {
	o.Changed = append(o.Changed, other.Changed...)
	if other.Trigger != nil {
		o.Trigger = other.Trigger
		o.Hazards = other.Hazards
	}
	o.Status = other.Status
}

type ToggleOutcome struct {
	Ignored          bool `json:"ignored"`
	Flagged          bool `json:"flagged"`
	HazardsRemaining int  `json:"hazards_remaining"`
}

func NewGame(width, height int, hazards HazardSpec, r *rand.Rand) (*GameState, error) {
	n, err := hazards.Resolve(width, height)
	if err != nil {
		return nil, err
	}
	params := GameParams{Width: width, Height: height, HazardCount: n}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	state := &GameState{
		params: params,
		grid:   params.newRandomGrid(r),
	}
	Log.WithFields(logrus.Fields{
		"params":  params.Seed(),
		"hazards": hazards.String(),
	}).Debug("new game")
	return state, nil
}

// NewGameWithHazards creates a game with hazards at exactly the given
// points instead of random ones.
func NewGameWithHazards(width, height int, hazards []Point) (*GameState, error) {
	params := GameParams{Width: width, Height: height, HazardCount: len(hazards)}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	grid, err := params.newGridWithHazards(hazards)
	if err != nil {
		return nil, err
	}
	Log.WithField("params", params.Seed()).Debug("new game from layout")
	return &GameState{params: params, grid: grid}, nil
}

func (s *GameState) Params() GameParams { return s.params }
func (s *GameState) Width() int { return s.params.Width }
func (s *GameState) Height() int { return s.params.Height }
func (s *GameState) HazardCount() int { return s.params.HazardCount }
func (s *GameState) Status() Status { return s.status }
func (s *GameState) SafeCellsRevealed() int { return s.safeRevealed }
func (s *GameState) TotalSafeCells() int { return s.params.Area() - s.params.HazardCount }
func (s *GameState) FlagCount() int { return s.flags }

// HazardsRemaining is the countdown shown to the player. It goes negative
// when more cells are flagged than there are hazards.
func (s *GameState) HazardsRemaining() int {
	return s.params.HazardCount - s.flags
}

func (s *GameState) InBounds(row, col int) bool {
	return s.params.InBounds(row, col)
}

func (s *GameState) Cell(row, col int) (Cell, error) {
	if !s.InBounds(row, col) {
		return Cell{}, s.outOfBounds(row, col)
	}
	return s.grid[s.params.index(row, col)], nil
}

// Rows returns a copy of the grid, indexed [row][col].
func (s *GameState) Rows() [][]Cell {
	rows := make([][]Cell, s.params.Height)
	for r := range rows {
		rows[r] = make([]Cell, s.params.Width)
		copy(rows[r], s.grid[r*s.params.Width:(r+1)*s.params.Width])
	}
	return rows
}

func (s *GameState) String() string {
	return s.grid.ToString(s.params.Width)
}

func (s *GameState) outOfBounds(row, col int) error {
	return fmt.Errorf(
		"%w: (%d, %d) on a %dx%d board",
		ErrOutOfBounds, row, col, s.params.Width, s.params.Height,
	)
}

func (s *GameState) ignored() RevealOutcome {
	return RevealOutcome{Status: s.status, Ignored: true}
}

// Reveal opens the cell at row, col. Revealing a flagged or already
// revealed cell, or any cell after the game ended, is ignored.
func (s *GameState) Reveal(row, col int) (RevealOutcome, error) {
	if !s.InBounds(row, col) {
		return s.ignored(), s.outOfBounds(row, col)
	}
	i := s.params.index(row, col)
	if s.status.Terminal() || s.grid[i].Revealed || s.grid[i].Flagged {
		return s.ignored(), nil
	}
	return s.open(i), nil
}

// open reveals cell i and flood fills from it. Cells are marked revealed
// when pushed, so each one enters the worklist at most once. Flags are only
// checked by the callers: a flagged cell reached by the flood is opened and
// loses its flag.
func (s *GameState) open(start int) RevealOutcome {
	var out RevealOutcome

	s.grid[start].Revealed = true
	if s.grid[start].Hazard {
		s.status = Lost
		trigger := s.grid[start]
		out.Trigger = &trigger
		out.Changed = append(out.Changed, trigger)
		out.Changed = append(out.Changed, s.revealAllHazards()...)
		out.Hazards = s.hazards()
		out.Status = s.status
		Log.WithFields(logrus.Fields{
			"params":  s.params.Seed(),
			"row":     trigger.Row,
			"col":     trigger.Col,
			"correct": s.safeRevealed,
		}).Info("game lost")
		return out
	}

	stack := []int{start}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		c := &s.grid[i]
		if c.Flagged {
			c.Flagged = false
			s.flags--
		}
		s.safeRevealed++
		out.Changed = append(out.Changed, *c)

		if c.Adjacent != 0 {
			continue
		}
		for _, d := range neighborOffsets {
			row, col := c.Row+d[0], c.Col+d[1]
			if !s.InBounds(row, col) {
				continue
			}
			j := s.params.index(row, col)
			if !s.grid[j].Revealed {
				s.grid[j].Revealed = true
				stack = append(stack, j)
			}
		}
	}

	if s.safeRevealed == s.TotalSafeCells() {
		s.status = Won
		out.Changed = append(out.Changed, s.revealAllHazards()...)
		Log.WithField("params", s.params.Seed()).Info("game won")
	}
	out.Status = s.status
	return out
}

// revealAllHazards exposes every hazard for the final display. Flags on
// hazards are left in place so the collaborator can tell marked ones apart.
func (s *GameState) revealAllHazards() (changed []Cell) {
	for i := range s.grid {
		if s.grid[i].Hazard && !s.grid[i].Revealed {
			s.grid[i].Revealed = true
			changed = append(changed, s.grid[i])
		}
	}
	return
}

func (s *GameState) hazards() (hazards []Cell) {
	for _, c := range s.grid {
		if c.Hazard {
			hazards = append(hazards, c)
		}
	}
	return
}

func (s *GameState) ToggleFlag(row, col int) (ToggleOutcome, error) {
	if !s.InBounds(row, col) {
		return ToggleOutcome{Ignored: true, HazardsRemaining: s.HazardsRemaining()},
			s.outOfBounds(row, col)
	}
	c := &s.grid[s.params.index(row, col)]
	if s.status.Terminal() || c.Revealed {
		return ToggleOutcome{
			Ignored:          true,
			Flagged:          c.Flagged,
			HazardsRemaining: s.HazardsRemaining(),
		}, nil
	}

	c.Flagged = !c.Flagged
	s.flags += iif(c.Flagged, 1, -1)

	return ToggleOutcome{
		Flagged:          c.Flagged,
		HazardsRemaining: s.HazardsRemaining(),
	}, nil
}

// Chord opens every unflagged hidden neighbor of a revealed numbered cell
// once the player has placed as many flags around it as its count. A wrong
// flag means one of the opened neighbors is a hazard.
func (s *GameState) Chord(row, col int) (RevealOutcome, error) {
	if !s.InBounds(row, col) {
		return s.ignored(), s.outOfBounds(row, col)
	}
	c := s.grid[s.params.index(row, col)]
	if s.status.Terminal() || !c.Revealed || c.Hazard || c.Adjacent == 0 {
		return s.ignored(), nil
	}

	flagged := 0
	targets := make([]int, 0, 8-c.Adjacent)
	for _, d := range neighborOffsets {
		r, cc := row+d[0], col+d[1]
		if !s.InBounds(r, cc) {
			continue
		}
		j := s.params.index(r, cc)
		if s.grid[j].Flagged {
			flagged++
		} else if !s.grid[j].Revealed {
			targets = append(targets, j)
		}
	}
	if flagged != c.Adjacent || len(targets) == 0 {
		return s.ignored(), nil
	}

	out := RevealOutcome{Status: s.status}
	for _, j := range targets {
		if s.status.Terminal() {
			break
		}
		// an earlier flood in this chord may have reached it
		if s.grid[j].Revealed {
			continue
		}
		out.merge(s.open(j))
	}
	return out, nil
}
