package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrQuit = errors.New("quit")

type nargs struct{ min, max int }

// Maps known commands to their accepted number of arguments
var commandNargs = map[string]nargs{
	"n": {0, 1},
	"o": {2, 2},
	"f": {2, 2},
	"c": {2, 2},
	"p": {0, 0},
	"h": {0, 0},
	"q": {0, 0},
}

const helpText = `commands (several may be joined with ";"):
  n [W:H:N | width=W&height=H&hazards=N | width=W&height=H&density=D]  new game
  o ROW COL  reveal a cell
  f ROW COL  toggle a flag
  c ROW COL  reveal the neighbors of a satisfied number
  p          print the board
  h          this help
  q          quit
`

type command struct {
	name string
	args []string
}

func parseCommand(c string) (command, error) {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return command{}, errors.New("empty command")
	}
	name := strings.ToLower(parts[0])
	n, ok := commandNargs[name]
	if !ok {
		return command{}, fmt.Errorf("unknown command %q", parts[0])
	}
	if len(parts)-1 < n.min || len(parts)-1 > n.max {
		return command{}, fmt.Errorf("invalid number of arguments for %q", name)
	}
	return command{name: name, args: parts[1:]}, nil
}

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("row must be an int")
		return
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("col must be an int")
		return
	}
	return
}

// splitCommands splits a line on ";" and drops blank pieces.
func splitCommands(line string) []string {
	var cmds []string
	for _, piece := range strings.Split(line, ";") {
		if piece = strings.TrimSpace(piece); piece != "" {
			cmds = append(cmds, piece)
		}
	}
	return cmds
}
