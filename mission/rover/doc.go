// Package rover provides the core simulation for the Mars Rover mission.
//
// The rover package implements:
//   - The cardinal direction model with left/right rotation
//   - Terrain bounds checking
//   - Parsing and validation of mission instruction lines
//   - Step-by-step rover movement with boundary and occupancy checks
//   - Fleet coordination of rovers in instruction order
//
// Core Types:
//
// Direction is a closed set {N, E, S, W}. Terrain holds the inclusive upper
// bounds of the grid. Rover is one rover's position and heading, mutated only
// by Move. Fleet owns the roster of rovers placed so far and deploys new ones
// against it.
//
// Usage:
//
//	mission, err := rover.Parse([]string{"5 5", "1 2 N", "LMLMLMLMM"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome, err := rover.Run(mission)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for _, d := range outcome.Deployments {
//		fmt.Println(d.Final)
//	}
//
// Rules:
//
// Rovers are processed one at a time in file order. A rover is checked after
// every single command, turns included: it must stay inside the terrain and
// must not share a cell with a rover already on the roster. The first
// violation aborts the whole run.
package rover
