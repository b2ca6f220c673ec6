package rover

import (
	"fmt"
	"unicode"
)

// Command is one atomic rover instruction.
type Command byte

const (
	TurnLeft  Command = 'L'
	TurnRight Command = 'R'
	Advance   Command = 'M'
)

// ParseCommand maps a move character to a Command, ignoring case.
func ParseCommand(r rune) (Command, error) {
	switch u := unicode.ToUpper(r); u {
	case rune(TurnLeft), rune(TurnRight), rune(Advance):
		return Command(u), nil
	}
	return 0, fmt.Errorf("%w: %q, valid move values are (L,R,M)", ErrInvalidMoveCommand, r)
}

func (c Command) String() string {
	return string(rune(c))
}

// Roster answers occupancy questions about rovers already placed. A nil
// Roster means no other rovers.
type Roster interface {
	Occupied(p Position) bool
}

// Rover is a rover's position and heading.
type Rover struct {
	Position
	Heading Direction `json:"heading"`
}

// New creates a rover at (x, y) facing heading.
func New(x, y int, heading Direction) *Rover {
	return &Rover{Position: Position{X: x, Y: y}, Heading: heading}
}

// String renders the rover as "x y D".
func (r Rover) String() string {
	return fmt.Sprintf("%d %d %s", r.X, r.Y, r.Heading)
}

// Step records one applied command and the rover state after it.
type Step struct {
	Seq     int      `json:"seq"`
	Command Command  `json:"-"`
	Action  string   `json:"command"`
	From    Position `json:"from"`
	To      Rover    `json:"to"`
}

// apply returns the state after c without touching r.
func (r Rover) apply(c Command) Rover {
	next := r
	switch c {
	case TurnLeft:
		next.Heading = r.Heading.RotateLeft()
	case TurnRight:
		next.Heading = r.Heading.RotateRight()
	case Advance:
		dx, dy := r.Heading.Delta()
		next.X += dx
		next.Y += dy
	}
	return next
}

// Move executes moves one command at a time. After every command, turns
// included, the rover must be inside terrain and on a cell no roster member
// occupies. A rejected command is never committed: on error the rover keeps
// its last legal state. The returned steps are the commands applied before
// the failure, if any.
func (r *Rover) Move(terrain Terrain, moves string, roster Roster) ([]Step, error) {
	steps := make([]Step, 0, len(moves))

	for _, ch := range moves {
		cmd, err := ParseCommand(ch)
		if err != nil {
			return steps, fmt.Errorf("%w (moves: %s)", err, moves)
		}

		next := r.apply(cmd)

		if !terrain.Contains(next.Position) {
			return steps, fmt.Errorf("%w: attempted move (%s) leaves the terrain at %s, valid boundaries are between (0,0) and (%d,%d)",
				ErrOutOfBounds, moves, next.Position, terrain.MaxX, terrain.MaxY)
		}

		if roster != nil && roster.Occupied(next.Position) {
			return steps, fmt.Errorf("%w: rover move (%s) terminated, location %s is occupied",
				ErrPositionOccupied, moves, next.Position)
		}

		from := r.Position
		*r = next
		steps = append(steps, Step{
			Seq:     len(steps) + 1,
			Command: cmd,
			Action:  cmd.String(),
			From:    from,
			To:      *r,
		})
	}

	return steps, nil
}
