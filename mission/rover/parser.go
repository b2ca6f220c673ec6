package rover

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// minLines is the terrain line plus one placement and one move line.
const minLines = 3

// RoverBlock is a parsed rover awaiting execution.
type RoverBlock struct {
	Index int    `json:"index"` // 1-based processing order
	Start Rover  `json:"start"`
	Moves string `json:"moves"`
}

// Mission is a validated set of instructions.
type Mission struct {
	Terrain Terrain      `json:"terrain"`
	Rovers  []RoverBlock `json:"rovers"`
}

// Parse validates trimmed, non-blank instruction lines. Line 0 holds the
// terrain bounds; the rest are consumed as (placement, moves) pairs.
// Placement and move-line failures are returned as *RoverError.
func Parse(lines []string) (*Mission, error) {
	if len(lines) < minLines {
		return nil, fmt.Errorf("%w: got %d lines, information must include terrain max coordinates and at least one rover's initial position and movement",
			ErrInsufficientInput, len(lines))
	}

	terrain, err := ParseTerrain(lines[0])
	if err != nil {
		return nil, err
	}

	mission := &Mission{
		Terrain: terrain,
		Rovers:  make([]RoverBlock, 0, (len(lines)-1)/2),
	}

	for i := 1; i < len(lines); i += 2 {
		index := len(mission.Rovers) + 1

		start, err := ParsePlacement(lines[i])
		if err != nil {
			return nil, &RoverError{Index: index, Err: err}
		}

		if i+1 >= len(lines) {
			return nil, &RoverError{
				Index: index,
				Err:   fmt.Errorf("%w for placement %q", ErrMissingMoveLine, lines[i]),
			}
		}

		mission.Rovers = append(mission.Rovers, RoverBlock{
			Index: index,
			Start: start,
			Moves: NormalizeMoves(lines[i+1]),
		})
	}

	return mission, nil
}

// ParseTerrain parses "<maxX> <maxY>".
func ParseTerrain(line string) (Terrain, error) {
	tokens := strings.Fields(line)

	values := make([]int, 0, len(tokens))
	for _, token := range tokens {
		v, err := strconv.Atoi(token)
		if err != nil || v < 0 {
			return Terrain{}, fmt.Errorf("%w (invalid data: %s), position value must be a non-negative integer",
				ErrInvalidTerrainToken, token)
		}
		values = append(values, v)
	}

	if len(values) != 2 {
		return Terrain{}, fmt.Errorf("%w: got %d values, terrain size data must include maximum X and maximum Y positions, eg. (6 6)",
			ErrInvalidTerrainArity, len(values))
	}

	return Terrain{MaxX: values[0], MaxY: values[1]}, nil
}

// ParsePlacement parses "<x> <y> <direction>".
func ParsePlacement(line string) (Rover, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return Rover{}, fmt.Errorf("%w: %q, placement must include X,Y coordinates and initial direction (N,E,S,W), eg. (1 2 N)",
			ErrInvalidPlacementArity, line)
	}

	x, err := strconv.Atoi(tokens[0])
	if err != nil {
		return Rover{}, fmt.Errorf("%w: initial X position (invalid data: %s), position value must be an integer",
			ErrInvalidPlacementCoordinate, tokens[0])
	}

	y, err := strconv.Atoi(tokens[1])
	if err != nil {
		return Rover{}, fmt.Errorf("%w: initial Y position (invalid data: %s), position value must be an integer",
			ErrInvalidPlacementCoordinate, tokens[1])
	}

	if !isAlpha(tokens[2]) {
		return Rover{}, fmt.Errorf("%w (invalid data: %s), valid direction values are (N,E,S,W)",
			ErrInvalidPlacementDirection, tokens[2])
	}

	heading, err := ParseDirection(tokens[2])
	if err != nil {
		return Rover{}, fmt.Errorf("%w: %w", ErrInvalidPlacementDirection, err)
	}

	return Rover{Position: Position{X: x, Y: y}, Heading: heading}, nil
}

// NormalizeMoves upper-cases a move line and strips all whitespace.
// Unknown characters are kept and rejected during movement.
func NormalizeMoves(line string) string {
	return strings.ToUpper(strings.Join(strings.Fields(line), ""))
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
