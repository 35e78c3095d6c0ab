package hexgrid

import "github.com/rotisserie/eris"

// Sentinel errors for the grid and serializer. Callers match them with
// eris.Is after unwrapping.
var (
	// ErrInvalidParameter reports a resolution outside [0,15] or malformed
	// bounds reaching the grid directly.
	ErrInvalidParameter = eris.New("hexgrid: invalid parameter")

	// ErrTooManyCells reports that a bounds/resolution combination would
	// exceed the configured cell cap.
	ErrTooManyCells = eris.New("hexgrid: too many cells")

	// ErrDegenerateGeometry reports a boundary ring with fewer than three
	// distinct points. A correct grid provider never produces one; seeing
	// this error means an upstream bug.
	ErrDegenerateGeometry = eris.New("hexgrid: degenerate geometry")
)
