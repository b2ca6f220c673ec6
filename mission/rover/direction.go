package rover

import (
	"fmt"
	"strings"
)

// Direction is a cardinal heading.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var (
	directionNames = [...]string{North: "N", East: "E", South: "S", West: "W"}

	rightOf = [...]Direction{North: East, East: South, South: West, West: North}
	leftOf  = [...]Direction{North: West, East: North, South: East, West: South}

	deltas = [...]Position{
		North: {X: 0, Y: 1},
		East:  {X: 1, Y: 0},
		South: {X: 0, Y: -1},
		West:  {X: -1, Y: 0},
	}
)

// Directions returns all headings in clockwise order starting at North.
func Directions() []Direction {
	return []Direction{North, East, South, West}
}

// ParseDirection parses a single-letter heading, ignoring case.
func ParseDirection(s string) (Direction, error) {
	for d, name := range directionNames {
		if strings.EqualFold(s, name) {
			return Direction(d), nil
		}
	}
	return 0, fmt.Errorf("%w: %q, valid directions are (N,E,S,W)", ErrInvalidDirection, s)
}

// Valid reports whether d is one of the four headings.
func (d Direction) Valid() bool {
	return int(d) < len(directionNames)
}

// RotateRight returns the heading after a 90 degree clockwise turn.
func (d Direction) RotateRight() Direction {
	return rightOf[d]
}

// RotateLeft returns the heading after a 90 degree counter-clockwise turn.
func (d Direction) RotateLeft() Direction {
	return leftOf[d]
}

// Delta returns the offset of one forward step.
func (d Direction) Delta() (dx, dy int) {
	p := deltas[d]
	return p.X, p.Y
}

func (d Direction) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// MarshalText renders the heading as its letter.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, uint8(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText parses a heading letter.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
