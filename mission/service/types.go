package service

import (
	"time"

	"github.com/wricardo/marsrover/mission/rover"
)

// Report is the result of one mission run
type Report struct {
	ID        string        `json:"id"`
	PlanName  string        `json:"plan_name,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Terrain   rover.Terrain `json:"terrain"`
	Success   bool          `json:"success"`

	// Rovers holds every rover that completed its moves, in processing order.
	Rovers []RoverResult `json:"rovers"`

	// Messages are the human-readable progress lines of the run.
	Messages []string `json:"messages"`

	// Failure is set when the run was aborted.
	Failure *Failure `json:"failure,omitempty"`

	Summary Summary `json:"summary"`
}

// RoverResult describes a rover that was placed successfully
type RoverResult struct {
	Index int          `json:"index"`
	Start rover.Rover  `json:"start"`
	Final rover.Rover  `json:"final"`
	Moves string       `json:"moves"`
	Steps []rover.Step `json:"steps,omitempty"`
}

// Failure describes why a run was aborted
type Failure struct {
	// Rover is the 1-based index of the failing rover, 0 for mission-level
	// errors such as a bad terrain line.
	Rover   int    `json:"rover,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// LastState is the failing rover's last legal state, when it existed.
	LastState *rover.Rover `json:"last_state,omitempty"`
}

// Summary holds counters for a run
type Summary struct {
	RoversRequested int `json:"rovers_requested"`
	RoversPlaced    int `json:"rovers_placed"`
	CommandsApplied int `json:"commands_applied"`
}

// Output renders the final rover states as "x y D" lines.
func (r *Report) Output() []string {
	out := make([]string, 0, len(r.Rovers))
	for _, rv := range r.Rovers {
		out = append(out, rv.Final.String())
	}
	return out
}

// PlanInfo provides information about a mission plan
type PlanInfo struct {
	Filename    string `json:"filename"`
	PlanID      string `json:"plan_id"` // The identifier to use when running the plan
	Name        string `json:"name"`    // Display name
	Description string `json:"description"`
	Terrain     string `json:"terrain"`
	Rovers      int    `json:"rovers"`
}
