package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type Options struct {
	Logger   *logrus.Logger
	Rand     *rand.Rand
	Renderer Renderer
	Clock    func() time.Time

	// parameters of "n" without arguments
	Width, Height int
	Hazards       mines.HazardSpec
}

// Console is a line-oriented front end for one player. It owns the current
// game and replaces it on every "n" command.
type Console struct {
	out      io.Writer
	log      *logrus.Logger
	rnd      *rand.Rand
	renderer Renderer
	now      func() time.Time
	defaults gameSetup

	game      *mines.GameState
	gameID    string
	startedAt time.Time
	endedAt   time.Time
}

func New(out io.Writer, opts Options) *Console {
	c := &Console{
		out:      out,
		log:      opts.Logger,
		rnd:      opts.Rand,
		renderer: opts.Renderer,
		now:      opts.Clock,
		defaults: gameSetup{opts.Width, opts.Height, opts.Hazards},
	}
	if c.log == nil {
		c.log = logrus.New()
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if c.renderer == nil {
		c.renderer = TextRenderer{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

func (c *Console) Game() *mines.GameState {
	return c.game
}

// Start makes g the current game, e.g. a fixed layout built with
// [mines.NewGameWithHazards].
func (c *Console) Start(g *mines.GameState) {
	c.game = g
	c.gameID = uuid.New().String()[:8]
	c.startedAt = c.now()
	c.endedAt = time.Time{}
	c.log.WithFields(logrus.Fields{
		"game_id": c.gameID,
		"params":  g.Params().Seed(),
	}).Info("game started")
}

func (c *Console) elapsed() time.Duration {
	if c.game == nil {
		return 0
	}
	if c.game.Status().Terminal() {
		if c.endedAt.IsZero() {
			c.endedAt = c.now()
		}
		return c.endedAt.Sub(c.startedAt)
	}
	return c.now().Sub(c.startedAt)
}

func (c *Console) render(changed []mines.Cell, message string) error {
	if c.game == nil {
		_, err := fmt.Fprintln(c.out, message)
		return err
	}
	v := NewView(c.gameID, c.game, c.elapsed(), changed, message)
	return c.renderer.Render(c.out, v)
}

// Run starts a default game unless one is already set, then executes lines
// read from in until EOF, "q" or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	if c.game == nil {
		if err := c.Execute("n"); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := c.Execute(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

// Execute runs every command on line. Player mistakes are reported to the
// output and do not stop execution; the returned error is either [ErrQuit]
// or a failure to write output.
func (c *Console) Execute(line string) error {
	for _, cmd := range splitCommands(line) {
		err := c.execute(cmd)
		var ue userError
		if errors.As(err, &ue) {
			c.log.WithFields(logrus.Fields{
				"game_id": c.gameID,
				"command": cmd,
			}).Warn(ue.err)
			if err := c.render(nil, "error: "+ue.err.Error()); err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

type userError struct {
	err error
}

func (e userError) Error() string {
	return e.err.Error()
}

func (c *Console) execute(raw string) error {
	cmd, err := parseCommand(raw)
	if err != nil {
		return userError{err}
	}
	c.log.WithFields(logrus.Fields{
		"game_id": c.gameID,
		"command": cmd.name,
		"args":    cmd.args,
	}).Debug("command")

	switch cmd.name {
	case "n":
		return c.newGame(cmd.args)
	case "o", "c":
		row, col, err := parseRowCol(cmd.args)
		if err != nil {
			return userError{err}
		}
		return c.reveal(cmd.name == "c", row, col)
	case "f":
		row, col, err := parseRowCol(cmd.args)
		if err != nil {
			return userError{err}
		}
		return c.toggleFlag(row, col)
	case "p":
		return c.render(nil, "")
	case "h":
		_, err := io.WriteString(c.out, helpText)
		return err
	case "q":
		return ErrQuit
	}
	return userError{fmt.Errorf("unknown command %q", cmd.name)}
}

func (c *Console) newGame(args []string) error {
	setup := c.defaults
	if len(args) == 1 {
		var err error
		if setup, err = parseGameArg(args[0]); err != nil {
			return userError{err}
		}
	}
	g, err := mines.NewGame(setup.width, setup.height, setup.hazards, c.rnd)
	if err != nil {
		// the previous game, if any, stays current
		return userError{err}
	}
	c.Start(g)
	return c.render(nil, fmt.Sprintf(
		"new game: %dx%d with %d hazards", g.Width(), g.Height(), g.HazardCount(),
	))
}

func (c *Console) reveal(chord bool, row, col int) error {
	if c.game == nil {
		return userError{errors.New("no game in progress")}
	}

	var (
		out mines.RevealOutcome
		err error
	)
	if chord {
		out, err = c.game.Chord(row, col)
	} else {
		out, err = c.game.Reveal(row, col)
	}
	if err != nil {
		return userError{err}
	}

	var message string
	switch {
	case out.Ignored:
		message = fmt.Sprintf("nothing to do at %d %d", row, col)
	case out.Status == mines.Lost:
		message = fmt.Sprintf(
			"hazard at %d %d! game over", out.Trigger.Row, out.Trigger.Col,
		)
	case out.Status == mines.Won:
		message = "board cleared, you win!"
	}
	if out.Status.Terminal() && !out.Ignored {
		c.log.WithFields(logrus.Fields{
			"game_id": c.gameID,
			"status":  out.Status.String(),
			"elapsed": c.elapsed().String(),
		}).Info("game over")
	}
	return c.render(out.Changed, message)
}

func (c *Console) toggleFlag(row, col int) error {
	if c.game == nil {
		return userError{errors.New("no game in progress")}
	}
	out, err := c.game.ToggleFlag(row, col)
	if err != nil {
		return userError{err}
	}

	var changed []mines.Cell
	message := fmt.Sprintf("nothing to do at %d %d", row, col)
	if !out.Ignored {
		cell, _ := c.game.Cell(row, col)
		changed = append(changed, cell)
		message = ""
	}
	return c.render(changed, message)
}
