package mines

import "errors"

var (
	// Returned by NewGame and NewGameWithHazards for unusable dimensions or
	// hazard counts. The caller has to retry with different parameters.
	ErrInvalidConfiguration = errors.New("invalid game configuration")

	// Returned for coordinates outside the grid. This is an integration bug
	// on the caller's side, not a game condition.
	ErrOutOfBounds = errors.New("cell out of bounds")
)
