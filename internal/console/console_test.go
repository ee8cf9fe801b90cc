package console

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

func TestMain(m *testing.M) {
	mines.Log.SetOutput(io.Discard)
	m.Run()
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func newTestConsole(t *testing.T, renderer Renderer) (*Console, *bytes.Buffer, *fakeClock) {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	var out bytes.Buffer
	c := New(&out, Options{
		Logger:   logger,
		Rand:     rand.New(rand.NewPCG(1, 2)),
		Renderer: renderer,
		Clock:    clock.Now,
		Width:    9,
		Height:   9,
		Hazards:  mines.HazardCount(10),
	})
	return c, &out, clock
}

// 3x3 with a single hazard in the top left corner
func startCornerGame(t *testing.T, c *Console) {
	t.Helper()
	g, err := mines.NewGameWithHazards(3, 3, []mines.Point{{Row: 0, Col: 0}})
	require.NoError(t, err)
	c.Start(g)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input string
		name  string
		fails bool
	}{
		{"o 1 2", "o", false},
		{"  F   0 0 ", "f", false},
		{"n", "n", false},
		{"n 9:9:10", "n", false},
		{"n 9 9", "", true},
		{"o 1", "", true},
		{"p extra", "", true},
		{"x", "", true},
		{"", "", true},
	}
	for _, test := range tests {
		cmd, err := parseCommand(test.input)
		if test.fails {
			assert.Error(t, err, test.input)
			continue
		}
		require.NoError(t, err, test.input)
		assert.Equal(t, test.name, cmd.name)
	}
}

func TestParseRowCol(t *testing.T) {
	row, col, err := parseRowCol([]string{"3", "14"})
	require.NoError(t, err)
	assert.Equal(t, 3, row)
	assert.Equal(t, 14, col)

	_, _, err = parseRowCol([]string{"a", "1"})
	assert.ErrorContains(t, err, "row")
	_, _, err = parseRowCol([]string{"1", "b"})
	assert.ErrorContains(t, err, "col")
}

func TestParseGameArg(t *testing.T) {
	setup, err := parseGameArg("16:16:40")
	require.NoError(t, err)
	assert.Equal(t, gameSetup{16, 16, mines.HazardCount(40)}, setup)

	setup, err = parseGameArg("width=30&height=16&hazards=99")
	require.NoError(t, err)
	assert.Equal(t, gameSetup{30, 16, mines.HazardCount(99)}, setup)

	setup, err = parseGameArg("width=10&height=10&density=0.15&unknown=1")
	require.NoError(t, err)
	assert.Equal(t, gameSetup{10, 10, mines.HazardDensity(0.15)}, setup)

	for _, bad := range []string{
		"16x16",
		"width=10&density=0.1",
		"width=10&height=10",
		"width=10&height=10&hazards=1&density=0.1",
		"width=ten&height=10&hazards=1",
	} {
		_, err := parseGameArg(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitCommands(t *testing.T) {
	assert.Equal(t, []string{"f 0 0", "o 2 2"}, splitCommands(" f 0 0 ;; o 2 2 ;"))
	assert.Nil(t, splitCommands("   "))
}

func TestExecuteReveal(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	require.NoError(t, c.Execute("o 1 1"))
	assert.Equal(t,
		"   0 1 2 \n"+
			"0: - - - \n"+
			"1: - 1 - \n"+
			"2: - - - \n"+
			"hazards left: 1  revealed: 1/8  status: in progress  time: 0s\n",
		out.String(),
	)
}

func TestExecuteWin(t *testing.T) {
	c, out, clock := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	clock.t = clock.t.Add(90 * time.Second)
	require.NoError(t, c.Execute("f 0 0; o 2 2"))

	assert.Equal(t, mines.Won, c.Game().Status())
	assert.Contains(t, out.String(), "board cleared, you win!")
	assert.Contains(t, out.String(), "0: * 1 . \n")
	assert.Contains(t, out.String(), "status: won  time: 1m30s")

	// the timer stops once the game is over
	clock.t = clock.t.Add(time.Hour)
	out.Reset()
	require.NoError(t, c.Execute("p"))
	assert.Contains(t, out.String(), "time: 1m30s")
}

func TestExecuteLoss(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	require.NoError(t, c.Execute("o 0 0"))
	assert.Equal(t, mines.Lost, c.Game().Status())
	assert.Contains(t, out.String(), "hazard at 0 0! game over")

	out.Reset()
	require.NoError(t, c.Execute("o 2 2"))
	assert.Contains(t, out.String(), "nothing to do at 2 2")
	assert.Equal(t, mines.Lost, c.Game().Status())
}

func TestExecuteUserErrors(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)
	before := c.Game()

	for _, line := range []string{"o 5 5", "o a b", "zap", "f 1", "n 3:3:9", "n width=3", "n 4611686018427387905:4:0"} {
		out.Reset()
		require.NoError(t, c.Execute(line), line)
		assert.Contains(t, out.String(), "error: ", line)
	}

	// a rejected "n" keeps the previous game
	assert.Same(t, before, c.Game())
	assert.Equal(t, mines.InProgress, c.Game().Status())
}

func TestExecuteFlagCountdown(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	require.NoError(t, c.Execute("f 2 2; f 2 1"))
	assert.Contains(t, out.String(), "hazards left: -1")
	assert.Contains(t, out.String(), "2: - F F \n")

	out.Reset()
	require.NoError(t, c.Execute("o 2 2"))
	assert.Contains(t, out.String(), "nothing to do at 2 2")
}

func TestExecuteChord(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	require.NoError(t, c.Execute("o 1 1; f 0 0; c 1 1"))
	assert.Equal(t, mines.Won, c.Game().Status())
	assert.Contains(t, out.String(), "board cleared, you win!")
}

func TestExecuteNewGame(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})

	require.NoError(t, c.Execute("n"))
	require.NotNil(t, c.Game())
	assert.Equal(t, mines.GameParams{Width: 9, Height: 9, HazardCount: 10}, c.Game().Params())
	assert.Contains(t, out.String(), "new game: 9x9 with 10 hazards")

	require.NoError(t, c.Execute("n width=12&height=10&density=0.25"))
	assert.Equal(t, mines.GameParams{Width: 12, Height: 10, HazardCount: 30}, c.Game().Params())
	assert.Contains(t, out.String(), "\n0:  -  -  -")
}

func TestExecuteHelpAndQuit(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})

	require.NoError(t, c.Execute("h"))
	assert.Equal(t, helpText, out.String())

	assert.ErrorIs(t, c.Execute("q"), ErrQuit)

	out.Reset()
	require.NoError(t, c.Execute("o 0 0"))
	assert.Contains(t, out.String(), "error: no game in progress")
}

func TestJSONRenderer(t *testing.T) {
	c, out, _ := newTestConsole(t, JSONRenderer{})
	startCornerGame(t, c)

	require.NoError(t, c.Execute("o 1 1"))

	var v View
	require.NoError(t, json.Unmarshal(out.Bytes(), &v))
	assert.Equal(t, 3, v.Width)
	assert.Equal(t, 1, v.HazardsRemaining)
	assert.Equal(t, 1, v.SafeCellsRevealed)
	assert.Equal(t, 8, v.TotalSafeCells)
	assert.Equal(t, []CellView{{Row: 1, Col: 1, State: "opened", Adjacent: 1}}, v.Changed)
	assert.Equal(t, CellView{Row: 0, Col: 0, State: "hidden"}, v.Cells[0][0])

	var raw map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &raw))
	assert.Equal(t, "in_progress", raw["status"])
	assert.NotContains(t, out.String(), `"hazard":true`)
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer("json")
	require.NoError(t, err)
	assert.IsType(t, JSONRenderer{}, r)

	r, err = NewRenderer("")
	require.NoError(t, err)
	assert.IsType(t, TextRenderer{}, r)

	_, err = NewRenderer("html")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	c, out, _ := newTestConsole(t, TextRenderer{})

	in := strings.NewReader("n 3:3:0\no 0 0\nq\no 1 1\n")
	require.NoError(t, c.Run(context.Background(), in))

	assert.Equal(t, mines.Won, c.Game().Status())
	assert.Contains(t, out.String(), "new game: 9x9 with 10 hazards")
	assert.Contains(t, out.String(), "new game: 3x3 with 0 hazards")
	assert.Contains(t, out.String(), "board cleared, you win!")
}

func TestRunEOF(t *testing.T) {
	c, _, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	require.NoError(t, c.Run(context.Background(), strings.NewReader("o 1 1")))
	assert.Equal(t, 1, c.Game().SafeCellsRevealed())
}

func TestRunCanceled(t *testing.T) {
	c, _, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, w := io.Pipe()
	defer w.Close()
	assert.ErrorIs(t, c.Run(ctx, r), context.Canceled)
}

func TestRunQuitStopsReader(t *testing.T) {
	c, _, _ := newTestConsole(t, TextRenderer{})
	startCornerGame(t, c)
	before := runtime.NumGoroutine()

	require.NoError(t, c.Run(context.Background(), strings.NewReader("q\no 1 1\no 2 2\n")))
	assert.Equal(t, 0, c.Game().SafeCellsRevealed())

	// the reader goroutine must not stay blocked on the unread lines
	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}
