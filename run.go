package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/marsrover/mission/library"
	"github.com/wricardo/marsrover/mission/plan"
	"github.com/wricardo/marsrover/mission/service"
)

var (
	errMissionFailed = errors.New("mission failed")
	errInvalidFiles  = errors.New("some files have errors")
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run an instruction file and print the final rover positions",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "plan",
				Usage: "run a plan from the plans directory instead of a file",
			},
			&cli.BoolFlag{
				Name:  "steps",
				Usage: "print every applied command",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var report *service.Report

			if name := cmd.String("plan"); name != "" {
				plans, err := library.NewManager(cmd.String("plans-dir"))
				if err != nil {
					return err
				}
				p, err := plans.LoadPlan(name)
				if err != nil {
					return fmt.Errorf("plan %s: %w", name, err)
				}
				report = service.SimulatePlan(name, p)
			} else {
				path := cmd.Args().First()
				if path == "" {
					path = defaultInstructionsFile
				}
				r, err := simulateFile(path)
				if err != nil {
					return err
				}
				report = r
			}

			return printReport(os.Stdout, report, cmd.Bool("steps"))
		},
	}
}

// readPlanFile decodes path by extension. Files with an unknown extension
// are read as raw instruction lines.
func readPlanFile(path string) (*plan.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		ext = ".txt"
	}
	return plan.Decode(name, ext, data)
}

// simulateFile runs the instructions in path without storing the report
func simulateFile(path string) (*service.Report, error) {
	p, err := readPlanFile(path)
	if err != nil {
		return nil, err
	}
	return service.SimulatePlan(p.Name, p), nil
}

// printReport writes the progress messages and, on success, one "x y D"
// line per rover. A failed mission returns errMissionFailed.
func printReport(w io.Writer, report *service.Report, withSteps bool) error {
	if withSteps {
		for _, r := range report.Rovers {
			for _, s := range r.Steps {
				fmt.Fprintf(w, "Rover#%d step %d: %s %s -> %s\n", r.Index, s.Seq, s.Action, s.From, s.To)
			}
		}
	}

	for _, m := range report.Messages {
		fmt.Fprintln(w, m)
	}

	if !report.Success {
		return fmt.Errorf("%w: %s", errMissionFailed, report.Failure.Message)
	}

	for _, line := range report.Output() {
		fmt.Fprintln(w, line)
	}
	return nil
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "validate instruction or plan files (default: every plan in the plans directory)",
		ArgsUsage: "[files...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			files := cmd.Args().Slice()
			if len(files) == 0 {
				found, err := findPlanFiles(cmd.String("plans-dir"))
				if err != nil {
					return fmt.Errorf("error finding plan files: %w", err)
				}
				files = found
			}

			if validateFiles(os.Stdout, files) {
				return nil
			}
			return errInvalidFiles
		},
	}
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Messages holds informational lines; otherwise it
// holds the errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Messages []string
}

// validateFile parses a file and dry-runs the mission. A mission that stops
// on a rover is reported but does not make the file invalid.
func validateFile(path string) ValidationResult {
	result := ValidationResult{File: filepath.Base(path), Valid: true}

	p, err := readPlanFile(path)
	if err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, fmt.Sprintf("Failed to read plan: %v", err))
		return result
	}

	if err := plan.Validate(p); err != nil {
		result.Valid = false
		result.Messages = append(result.Messages, err.Error())
		return result
	}

	report := service.SimulatePlan(p.Name, p)
	result.Messages = append(result.Messages,
		fmt.Sprintf("Terrain: %s, rovers: %d", report.Terrain, report.Summary.RoversRequested))

	if report.Success {
		result.Messages = append(result.Messages, "Final: "+strings.Join(report.Output(), ", "))
	} else {
		result.Messages = append(result.Messages, "Mission stops: "+report.Failure.Message)
	}
	return result
}

// validateFiles prints a VALID/INVALID block per file and reports whether
// all files were valid
func validateFiles(w io.Writer, files []string) bool {
	allValid := true

	for _, file := range files {
		result := validateFile(file)

		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Fprintln(w, "VALID")
			for _, msg := range result.Messages {
				fmt.Fprintln(w, "  "+msg)
			}
		} else {
			allValid = false
			fmt.Fprintln(w, "INVALID")
			for _, msg := range result.Messages {
				fmt.Fprintln(w, "  - "+msg)
			}
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "All files are valid")
	} else {
		fmt.Fprintln(w, "Some files have errors")
	}
	return allValid
}

// findPlanFiles lists plan files in dir with a supported extension
func findPlanFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, known := range plan.Extensions {
			if ext == known {
				files = append(files, filepath.Join(dir, entry.Name()))
				break
			}
		}
	}
	return files, nil
}
