package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/marsrover/api"
	"github.com/wricardo/marsrover/mission/service"
	"github.com/wricardo/marsrover/transport/mcp"
	"github.com/wricardo/marsrover/transport/websocket"
)

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp", "mcp-stdio"},
		Usage:   "run an MCP stdio server against an external or internal API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to proxy to; an internal server is started when it is unreachable",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("MCP_API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			missionService, _, err := initializeServices(cmd.String("plans-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			return runStdioMCP(ctx, cmd.String("api-url"), missionService)
		},
	}
}

// apiAvailable reports whether a REST API answers at baseURL
func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(strings.TrimSuffix(baseURL, "/") + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

// startInternalAPI serves the REST API on a random loopback port and returns
// its base URL
func startInternalAPI(ctx context.Context, missionService service.MissionService) (string, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to get available port: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	httpServer := &http.Server{Handler: api.NewServer(missionService, hub)}

	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		httpServer.Close()
	}()

	return fmt.Sprintf("http://%s", listener.Addr().String()), nil
}

// runStdioMCP runs an MCP stdio server. It reuses the API at externalURL
// when it answers, otherwise it starts an internal one.
func runStdioMCP(ctx context.Context, externalURL string, missionService service.MissionService) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	baseURL := externalURL
	log.Printf("Checking for external API server at %s...", externalURL)

	if apiAvailable(externalURL) {
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")
		internalURL, err := startInternalAPI(ctx, missionService)
		if err != nil {
			return err
		}
		baseURL = internalURL
		log.Printf("Internal HTTP server running at %s", baseURL)
	}

	mcpClient := mcp.NewClient(baseURL)

	log.Println("MCP stdio server ready")
	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
