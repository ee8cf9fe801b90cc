package console

import (
	"errors"
	"net/url"
	"strings"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-engine/internal/mines"
)

type NewGameDTO struct {
	Width   int     `schema:"width,required"`
	Height  int     `schema:"height,required"`
	Hazards int     `schema:"hazards"`
	Density float64 `schema:"density"`
}

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	err := dec.Decode(&dto, src)
	return dto, err
}

type gameSetup struct {
	width, height int
	hazards       mines.HazardSpec
}

// parseGameArg accepts either the "W:H:N" seed form or a query string such
// as "width=16&height=16&density=0.15".
func parseGameArg(arg string) (gameSetup, error) {
	if !strings.Contains(arg, "=") {
		p, err := mines.ParseSeed(arg)
		if err != nil {
			return gameSetup{}, err
		}
		return gameSetup{p.Width, p.Height, mines.HazardCount(p.HazardCount)}, nil
	}

	values, err := url.ParseQuery(arg)
	if err != nil {
		return gameSetup{}, err
	}
	dto, err := ParseNewGameDTO(values)
	if err != nil {
		return gameSetup{}, err
	}

	setup := gameSetup{width: dto.Width, height: dto.Height}
	_, hasHazards := values["hazards"]
	_, hasDensity := values["density"]
	switch {
	case hasHazards && hasDensity:
		return gameSetup{}, errors.New("hazards and density are mutually exclusive")
	case hasHazards:
		setup.hazards = mines.HazardCount(dto.Hazards)
	case hasDensity:
		setup.hazards = mines.HazardDensity(dto.Density)
	default:
		return gameSetup{}, errors.New("either hazards or density is required")
	}
	return setup, nil
}
