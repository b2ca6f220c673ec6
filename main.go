// Command marsrover simulates squads of rovers on a rectangular plateau.
//
// It supports four commands:
//  1. "run" – reads an instruction file (default roverCommands.txt) and prints
//     the final rover positions
//  2. "validate" – checks instruction and plan files without serving anything
//  3. "serve" – runs the HTTP server exposing the REST API, WebSocket, and an
//     /mcp HTTP endpoint, optionally behind an ngrok tunnel
//  4. "mcp" – runs an MCP stdio server, spinning up an internal HTTP API if
//     none is available
//
// Flags can also be set from the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/marsrover/mission/library"
	"github.com/wricardo/marsrover/mission/service"
	"github.com/wricardo/marsrover/mission/store"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Mars Rover Mission Control"
)

// defaultInstructionsFile is read by "run" when no file is given
const defaultInstructionsFile = "roverCommands.txt"

// main loads the environment, builds the command tree, and runs it.
func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newApp builds the root command with its global flags and subcommands.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "marsrover",
		Usage:   "simulate rover squads exploring a plateau",
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:    "plans-dir",
				Usage:   "directory containing mission plans",
				Value:   "plans",
				Sources: cli.EnvVars("PLANS_DIR"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			runCommand(),
			validateCommand(),
			serveCommand(),
			mcpCommand(),
		},
	}
}

// initializeServices wires the plan library, the report store, and the
// mission service.
func initializeServices(plansDir string) (service.MissionService, *store.Manager, error) {
	plans, err := library.NewManager(plansDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create plan library: %w", err)
	}

	reports := store.NewManager()
	return service.NewMissionService(reports, plans), reports, nil
}
