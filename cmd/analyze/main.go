// Command analyze prints quick, human-readable statistics about the mission
// plans in a plans directory (default "plans"). For each plan it dry-runs the
// mission and summarizes terrain area, rover and command counts, the
// distinct cells the rovers visited, and how much of the plateau that covers.
package main

import (
	"fmt"
	"os"

	"github.com/wricardo/marsrover/mission/library"
	"github.com/wricardo/marsrover/mission/plan"
	"github.com/wricardo/marsrover/mission/rover"
	"github.com/wricardo/marsrover/mission/service"
)

// Analysis holds the statistics of one plan.
type Analysis struct {
	Name         string
	Terrain      rover.Terrain
	Area         int
	Rovers       int
	Placed       int
	Commands     int
	Applied      int
	CellsVisited int
	Coverage     float64
	Success      bool
	Failure      string
}

func main() {
	dir := "plans"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	plans, err := library.NewManager(dir)
	if err != nil {
		fmt.Printf("Error opening plans: %v\n", err)
		os.Exit(1)
	}

	infos, err := plans.ListPlans()
	if err != nil {
		fmt.Printf("Error listing plans: %v\n", err)
		os.Exit(1)
	}

	for _, info := range infos {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Filename)

		p, err := plans.LoadPlan(info.PlanID)
		if err != nil {
			fmt.Printf("Error loading plan: %v\n", err)
			continue
		}
		printAnalysis(analyzePlan(p))
	}
}

// analyzePlan dry-runs p and collects its statistics
func analyzePlan(p *plan.Plan) Analysis {
	report := service.SimulatePlan(p.Name, p)

	a := Analysis{
		Name:    p.Name,
		Terrain: report.Terrain,
		Area:    report.Terrain.Area(),
		Rovers:  report.Summary.RoversRequested,
		Placed:  report.Summary.RoversPlaced,
		Applied: report.Summary.CommandsApplied,
		Success: report.Success,
	}

	for _, r := range p.Rovers {
		a.Commands += len(rover.NormalizeMoves(r.Moves))
	}

	visited := make(map[rover.Position]bool)
	for _, r := range report.Rovers {
		visited[r.Start.Position] = true
		for _, s := range r.Steps {
			visited[s.To.Position] = true
		}
	}
	a.CellsVisited = len(visited)

	if a.Area > 0 {
		a.Coverage = float64(a.CellsVisited) / float64(a.Area) * 100
	}

	if report.Failure != nil {
		a.Failure = report.Failure.Message
	}
	return a
}

func printAnalysis(a Analysis) {
	fmt.Printf("Name: %s\n", a.Name)
	fmt.Printf("Terrain: (0,0) to (%d,%d), %d cells\n", a.Terrain.MaxX, a.Terrain.MaxY, a.Area)
	fmt.Printf("Rovers: %d placed of %d\n", a.Placed, a.Rovers)
	fmt.Printf("Commands: %d applied of %d\n", a.Applied, a.Commands)
	fmt.Printf("Cells visited: %d (%.1f%% coverage)\n", a.CellsVisited, a.Coverage)

	if a.Success {
		fmt.Printf("✅ Mission completes\n")
	} else {
		fmt.Printf("⚠️  Mission stops: %s\n", a.Failure)
	}
}
