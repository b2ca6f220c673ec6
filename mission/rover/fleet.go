package rover

import "fmt"

// Deployment is a rover that was placed and completed all of its moves.
type Deployment struct {
	Index int    `json:"index"`
	Start Rover  `json:"start"`
	Final Rover  `json:"final"`
	Moves string `json:"moves"`
	Steps []Step `json:"steps"`
}

// Message is the progress line printed for a successful deployment.
func (d Deployment) Message() string {
	return fmt.Sprintf("Rover#%d moved successfully to target location (%d,%d %s)",
		d.Index, d.Final.X, d.Final.Y, d.Final.Heading)
}

// Fleet owns the roster of rovers placed so far on one terrain.
type Fleet struct {
	terrain Terrain
	rovers  []*Rover
}

// NewFleet creates an empty fleet on terrain.
func NewFleet(terrain Terrain) *Fleet {
	return &Fleet{terrain: terrain}
}

// Terrain returns the fleet's terrain.
func (f *Fleet) Terrain() Terrain {
	return f.terrain
}

// Occupied reports whether any placed rover sits on p. A nil fleet is empty.
func (f *Fleet) Occupied(p Position) bool {
	if f == nil {
		return false
	}
	for _, r := range f.rovers {
		if r.Position == p {
			return true
		}
	}
	return false
}

// Len returns the number of placed rovers.
func (f *Fleet) Len() int {
	return len(f.rovers)
}

// Rovers returns copies of the placed rovers in placement order.
func (f *Fleet) Rovers() []Rover {
	out := make([]Rover, len(f.rovers))
	for i, r := range f.rovers {
		out[i] = *r
	}
	return out
}

// Deploy places the rover described by block, runs its moves against the
// current roster and, on success, adds it to the roster. Failures are
// returned as *RoverError and leave the roster unchanged.
func (f *Fleet) Deploy(block RoverBlock) (*Deployment, error) {
	index := block.Index
	if index == 0 {
		index = len(f.rovers) + 1
	}

	r := New(block.Start.X, block.Start.Y, block.Start.Heading)

	if err := f.checkPlacement(r.Position); err != nil {
		state := *r
		return nil, &RoverError{Index: index, State: &state, Err: err}
	}

	steps, err := r.Move(f.terrain, block.Moves, f)
	if err != nil {
		state := *r
		return nil, &RoverError{Index: index, State: &state, Err: err}
	}

	f.rovers = append(f.rovers, r)

	return &Deployment{
		Index: index,
		Start: block.Start,
		Final: *r,
		Moves: block.Moves,
		Steps: steps,
	}, nil
}

// checkPlacement validates an initial position. Only the upper bounds are
// checked here; a negative start is caught by the first move.
func (f *Fleet) checkPlacement(p Position) error {
	if f.Occupied(p) {
		return fmt.Errorf("%w: initial rover position %s is not available, target location is occupied by another rover",
			ErrPositionOccupied, p)
	}
	if f.terrain.exceedsUpper(p) {
		return fmt.Errorf("%w: initial rover position %s is not available, target location is out of boundaries (%d,%d)",
			ErrOutOfBounds, p, f.terrain.MaxX, f.terrain.MaxY)
	}
	return nil
}

// Outcome is the result of running a mission. On failure it holds the
// deployments that completed before the failing rover.
type Outcome struct {
	Terrain     Terrain      `json:"terrain"`
	Deployments []Deployment `json:"deployments"`
}

// Finals returns the final state of every deployed rover in order.
func (o *Outcome) Finals() []Rover {
	out := make([]Rover, len(o.Deployments))
	for i, d := range o.Deployments {
		out[i] = d.Final
	}
	return out
}

// Run deploys every rover of m in order and stops at the first failure.
func Run(m *Mission) (*Outcome, error) {
	fleet := NewFleet(m.Terrain)
	outcome := &Outcome{
		Terrain:     m.Terrain,
		Deployments: make([]Deployment, 0, len(m.Rovers)),
	}

	for _, block := range m.Rovers {
		d, err := fleet.Deploy(block)
		if err != nil {
			return outcome, err
		}
		outcome.Deployments = append(outcome.Deployments, *d)
	}

	return outcome, nil
}

// Simulate parses lines and runs the resulting mission. The outcome is nil
// when parsing fails.
func Simulate(lines []string) (*Outcome, error) {
	m, err := Parse(lines)
	if err != nil {
		return nil, err
	}
	return Run(m)
}
