package mines

import (
	"fmt"
	"math/rand/v2"
)

func (p GameParams) newGrid() Grid {
	grid := make(Grid, p.Area())
	for i := range grid {
		grid[i].Row, grid[i].Col = p.position(i)
	}
	return grid
}

// newRandomGrid places p.HazardCount hazards uniformly at random over all
// cells and computes adjacency counts.
func (p GameParams) newRandomGrid(r *rand.Rand) Grid {
	grid := p.newGrid()

	/*
	 * Partial Fisher-Yates: pick n indices off the candidate list, moving
	 * the last live candidate into each picked slot.
	 */
	candidates := make([]int, len(grid))
	for i := range candidates {
		candidates[i] = i
	}
	k := len(candidates)
	for range p.HazardCount {
		i := r.IntN(k)
		grid[candidates[i]].Hazard = true
		k--
		candidates[i] = candidates[k]
	}

	grid.countAdjacent(p)
	return grid
}

func (p GameParams) newGridWithHazards(hazards []Point) (Grid, error) {
	grid := p.newGrid()
	for _, h := range hazards {
		if !p.InBounds(h.Row, h.Col) {
			return nil, fmt.Errorf(
				"%w: hazard at (%d, %d) is outside %dx%d",
				ErrInvalidConfiguration, h.Row, h.Col, p.Width, p.Height,
			)
		}
		i := p.index(h.Row, h.Col)
		if grid[i].Hazard {
			return nil, fmt.Errorf(
				"%w: duplicate hazard at (%d, %d)",
				ErrInvalidConfiguration, h.Row, h.Col,
			)
		}
		grid[i].Hazard = true
	}
	grid.countAdjacent(p)
	return grid, nil
}
