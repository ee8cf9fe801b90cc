package console

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type CellView struct {
	Row      int    `json:"row"`
	Col      int    `json:"col"`
	State    string `json:"state"`
	Adjacent int    `json:"adjacent,omitempty"`
	Hazard   bool   `json:"hazard,omitempty"`
}

// NewCellView hides everything a player must not see about an unrevealed
// cell.
func NewCellView(c mines.Cell) CellView {
	v := CellView{Row: c.Row, Col: c.Col}
	switch {
	case c.Revealed:
		v.State = "opened"
		v.Hazard = c.Hazard
		if !c.Hazard {
			v.Adjacent = c.Adjacent
		}
	case c.Flagged:
		v.State = "flagged"
	default:
		v.State = "hidden"
	}
	return v
}

type View struct {
	GameID            string       `json:"game_id"`
	Message           string       `json:"message,omitempty"`
	Status            mines.Status `json:"status"`
	Width             int          `json:"width"`
	Height            int          `json:"height"`
	HazardCount       int          `json:"hazard_count"`
	HazardsRemaining  int          `json:"hazards_remaining"`
	SafeCellsRevealed int          `json:"safe_cells_revealed"`
	TotalSafeCells    int          `json:"total_safe_cells"`
	ElapsedMs         int64        `json:"elapsed_ms"`
	Changed           []CellView   `json:"changed,omitempty"`
	Cells             [][]CellView `json:"cells"`

	grid string
}

func NewView(
	gameID string, g *mines.GameState, elapsed time.Duration,
	changed []mines.Cell, message string,
) *View {
	v := &View{
		GameID:            gameID,
		Message:           message,
		Status:            g.Status(),
		Width:             g.Width(),
		Height:            g.Height(),
		HazardCount:       g.HazardCount(),
		HazardsRemaining:  g.HazardsRemaining(),
		SafeCellsRevealed: g.SafeCellsRevealed(),
		TotalSafeCells:    g.TotalSafeCells(),
		ElapsedMs:         elapsed.Milliseconds(),
	}
	for _, c := range changed {
		v.Changed = append(v.Changed, NewCellView(c))
	}
	rows := g.Rows()
	v.Cells = make([][]CellView, len(rows))
	for r, row := range rows {
		v.Cells[r] = make([]CellView, len(row))
		for c, cell := range row {
			v.Cells[r][c] = NewCellView(cell)
		}
	}
	v.grid = renderGrid(rows)
	return v
}

func renderGrid(rows [][]mines.Cell) string {
	if len(rows) == 0 {
		return ""
	}
	colWidth := len(strconv.Itoa(len(rows[0]) - 1))
	rowWidth := len(strconv.Itoa(len(rows) - 1))

	var b strings.Builder
	fmt.Fprintf(&b, "%*s  ", rowWidth, "")
	for c := range rows[0] {
		fmt.Fprintf(&b, "%*d ", colWidth, c)
	}
	b.WriteString("\n")
	for r, row := range rows {
		fmt.Fprintf(&b, "%*d: ", rowWidth, r)
		for _, cell := range row {
			fmt.Fprintf(&b, "%*s ", colWidth, cell.String())
		}
		b.WriteString("\n")
	}
	return b.String()
}

type Renderer interface {
	Render(w io.Writer, v *View) error
}

func NewRenderer(name string) (Renderer, error) {
	switch name {
	case "", "text":
		return TextRenderer{}, nil
	case "json":
		return JSONRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown renderer %q", name)
}

type TextRenderer struct{}

// [TextRenderer] implements [Renderer]
func (TextRenderer) Render(w io.Writer, v *View) error {
	var b strings.Builder
	if v.Message != "" {
		b.WriteString(v.Message + "\n")
	}
	b.WriteString(v.grid)
	fmt.Fprintf(&b,
		"hazards left: %d  revealed: %d/%d  status: %s  time: %s\n",
		v.HazardsRemaining, v.SafeCellsRevealed, v.TotalSafeCells, v.Status,
		(time.Duration(v.ElapsedMs) * time.Millisecond).Truncate(time.Second),
	)
	_, err := io.WriteString(w, b.String())
	return err
}

type JSONRenderer struct{}

// [JSONRenderer] implements [Renderer]
func (JSONRenderer) Render(w io.Writer, v *View) error {
	return json.NewEncoder(w).Encode(v)
}
