package mines

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type GameParams struct {
	Width, Height, HazardCount int
}

func (p GameParams) Unpack() (w int, h int, n int) {
	return p.Width, p.Height, p.HazardCount
}

func (p GameParams) Area() int {
	return p.Width * p.Height
}

// Seed is the compact "W:H:N" form of p, accepted back by [ParseSeed].
func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.HazardCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	fields := strings.Split(seed, ":")
	if len(fields) != 3 {
		return nil, fmt.Errorf(
			`invalid game params seed "%s": want 3 fields, got %d`,
			seed, len(fields),
		)
	}
	var values [3]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf(`invalid game params seed "%s": %w`, seed, err)
		}
		values[i] = v
	}
	return &GameParams{Width: values[0], Height: values[1], HazardCount: values[2]}, nil
}

func (p GameParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf(
			"%w: dimensions must be positive, got %dx%d",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.Width > math.MaxInt/p.Height {
		return fmt.Errorf(
			"%w: %dx%d board is too large",
			ErrInvalidConfiguration, p.Width, p.Height,
		)
	}
	if p.HazardCount < 0 || p.HazardCount >= p.Area() {
		return fmt.Errorf(
			"%w: hazard count must be in [0, %d), got %d",
			ErrInvalidConfiguration, p.Area(), p.HazardCount,
		)
	}
	return nil
}

func (p GameParams) InBounds(row, col int) bool {
	return 0 <= row && row < p.Height && 0 <= col && col < p.Width
}

func (p GameParams) index(row, col int) int {
	return row*p.Width + col
}

func (p GameParams) position(i int) (row, col int) {
	return i / p.Width, i % p.Width
}

// HazardSpec is either an explicit hazard count or a density resolved
// against the board area.
type HazardSpec struct {
	count     int
	density   float64
	byDensity bool
}

func HazardCount(n int) HazardSpec {
	return HazardSpec{count: n}
}

func HazardDensity(d float64) HazardSpec {
	return HazardSpec{density: d, byDensity: true}
}

func (s HazardSpec) String() string {
	if s.byDensity {
		return fmt.Sprintf("density %g", s.density)
	}
	return fmt.Sprintf("count %d", s.count)
}

// Resolve returns the hazard count s denotes on a width x height board.
func (s HazardSpec) Resolve(width, height int) (int, error) {
	if !s.byDensity {
		return s.count, nil
	}
	if math.IsNaN(s.density) || s.density < 0 || s.density > 1 {
		return 0, fmt.Errorf(
			"%w: density must be in [0, 1], got %g",
			ErrInvalidConfiguration, s.density,
		)
	}
	if err := (GameParams{Width: width, Height: height}).Validate(); err != nil {
		return 0, err
	}
	n := float64(width*height) * s.density
	// snap float error such as 100*0.15 = 15.000000000000002 before ceil
	if r := math.Round(n); math.Abs(n-r) < 1e-9 {
		return int(r), nil
	}
	return int(math.Ceil(n)), nil
}
