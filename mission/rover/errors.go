package rover

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientInput          = errors.New("insufficient input")
	ErrInvalidTerrainToken        = errors.New("invalid terrain token")
	ErrInvalidTerrainArity        = errors.New("invalid terrain size")
	ErrInvalidPlacementArity      = errors.New("invalid placement")
	ErrInvalidPlacementCoordinate = errors.New("invalid placement coordinate")
	ErrInvalidPlacementDirection  = errors.New("invalid placement direction")
	ErrMissingMoveLine            = errors.New("missing move information")
	ErrInvalidDirection           = errors.New("invalid direction")
	ErrInvalidMoveCommand         = errors.New("invalid move command")
	ErrOutOfBounds                = errors.New("out of boundaries")
	ErrPositionOccupied           = errors.New("position occupied")
)

// codes maps each error kind to a stable machine-friendly code.
var codes = []struct {
	err  error
	code string
}{
	{ErrInsufficientInput, "insufficient_input"},
	{ErrInvalidTerrainToken, "invalid_terrain_token"},
	{ErrInvalidTerrainArity, "invalid_terrain_arity"},
	{ErrInvalidPlacementArity, "invalid_placement_arity"},
	{ErrInvalidPlacementCoordinate, "invalid_placement_coordinate"},
	{ErrInvalidPlacementDirection, "invalid_placement_direction"},
	{ErrMissingMoveLine, "missing_move_line"},
	{ErrInvalidMoveCommand, "invalid_move_command"},
	{ErrOutOfBounds, "out_of_bounds"},
	{ErrPositionOccupied, "position_occupied"},
	{ErrInvalidDirection, "invalid_direction"},
}

// Code returns the machine-friendly code for err, or "" when err is not a
// rover error.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// RoverError ties a failure to the rover that caused it.
type RoverError struct {
	// Index is the 1-based processing order of the rover.
	Index int
	// State is the rover's last legal state, nil when the failure happened
	// before the rover existed (parse errors).
	State *Rover
	Err   error
}

func (e *RoverError) Error() string {
	return fmt.Sprintf("Rover#%d movement terminated: %v", e.Index, e.Err)
}

func (e *RoverError) Unwrap() error {
	return e.Err
}

// RoverIndex returns the rover ordinal carried by err, or 0.
func RoverIndex(err error) int {
	var re *RoverError
	if errors.As(err, &re) {
		return re.Index
	}
	return 0
}
