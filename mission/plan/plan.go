// Package plan defines mission plan files and converts them to the
// instruction lines consumed by the rover simulation.
//
// Plans are stored in three formats:
//   - .txt  raw instruction lines (terrain, then placement/moves pairs)
//   - .yaml structured plan, see Plan
//   - .json structured plan, same schema as YAML
package plan

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/marsrover/mission/rover"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported plan format")

// Extensions lists the plan file extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".json", ".txt"}

// Plan is a named mission definition.
type Plan struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Terrain     string      `json:"terrain" yaml:"terrain"`
	Rovers      []RoverPlan `json:"rovers" yaml:"rovers"`
}

// RoverPlan is one rover's placement line and move line.
type RoverPlan struct {
	Placement string `json:"placement" yaml:"placement"`
	Moves     string `json:"moves" yaml:"moves"`
}

// Lines renders the plan as instruction lines. Empty fields are dropped, so
// callers run Check first when the pairing of rovers matters.
func (p *Plan) Lines() []string {
	lines := make([]string, 0, 1+2*len(p.Rovers))
	if t := strings.TrimSpace(p.Terrain); t != "" {
		lines = append(lines, t)
	}
	for _, r := range p.Rovers {
		if placement := strings.TrimSpace(r.Placement); placement != "" {
			lines = append(lines, placement)
		}
		if moves := strings.TrimSpace(r.Moves); moves != "" {
			lines = append(lines, moves)
		}
	}
	return lines
}

// Check reports the first rover whose empty placement or move line would
// shift the pairing of the rovers after it in Lines. The last rover may omit
// its moves: Lines then ends on its placement and parsing reports the missing
// move line. The error carries the rover's ordinal.
func (p *Plan) Check() error {
	last := len(p.Rovers) - 1
	for i, r := range p.Rovers {
		placement := strings.TrimSpace(r.Placement)
		if placement == "" {
			return &rover.RoverError{
				Index: i + 1,
				Err:   fmt.Errorf("%w: placement line is empty", rover.ErrInvalidPlacementArity),
			}
		}
		if strings.TrimSpace(r.Moves) == "" && i != last {
			return &rover.RoverError{
				Index: i + 1,
				Err:   fmt.Errorf("%w for placement %q", rover.ErrMissingMoveLine, placement),
			}
		}
	}
	return nil
}

// Text renders the plan in the raw .txt format.
func (p *Plan) Text() string {
	return strings.Join(p.Lines(), "\n") + "\n"
}

// FromLines builds a plan from raw instruction lines.
func FromLines(name string, lines []string) *Plan {
	p := &Plan{Name: name}
	if len(lines) == 0 {
		return p
	}
	p.Terrain = lines[0]
	for i := 1; i < len(lines); i += 2 {
		r := RoverPlan{Placement: lines[i]}
		if i+1 < len(lines) {
			r.Moves = lines[i+1]
		}
		p.Rovers = append(p.Rovers, r)
	}
	return p
}

// SplitLines trims every line of text and drops blank ones.
func SplitLines(text string) []string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(text))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// Decode parses plan data in the format named by ext. name is used when
// the data does not carry its own name.
func Decode(name, ext string, data []byte) (*Plan, error) {
	var p Plan

	switch strings.ToLower(ext) {
	case ".txt":
		return FromLines(name, SplitLines(string(data))), nil
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse yaml plan: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse json plan: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if p.Name == "" {
		p.Name = name
	}
	return &p, nil
}

// Encode renders a plan in the format named by ext.
func Encode(p *Plan, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".txt":
		return []byte(p.Text()), nil
	case ".yaml", ".yml":
		return yaml.Marshal(p)
	case ".json":
		return json.MarshalIndent(p, "", "  ")
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// LoadFile reads and validates the plan at path.
func LoadFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(path)
	name := strings.TrimSuffix(filepath.Base(path), ext)

	p, err := Decode(name, ext, data)
	if err != nil {
		return nil, err
	}

	if err := Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that a plan has a name and that its instructions parse.
func Validate(p *Plan) error {
	if p == nil {
		return fmt.Errorf("plan validation: plan cannot be nil")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("plan validation: name is required")
	}
	if err := p.Check(); err != nil {
		return fmt.Errorf("plan validation: %w", err)
	}
	if _, err := rover.Parse(p.Lines()); err != nil {
		return fmt.Errorf("plan validation: %w", err)
	}
	return nil
}

// Classic returns the reference two-rover mission.
func Classic() *Plan {
	return &Plan{
		Name:        "classic",
		Description: "Two rovers on a 5x5 plateau",
		Terrain:     "5 5",
		Rovers: []RoverPlan{
			{Placement: "1 2 N", Moves: "LMLMLMLMM"},
			{Placement: "3 3 E", Moves: "MMRMMRMRRM"},
		},
	}
}
