package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/marsrover/api"
	"github.com/wricardo/marsrover/mission/service"
	"github.com/wricardo/marsrover/mission/store"
	"github.com/wricardo/marsrover/transport/mcp"
	"github.com/wricardo/marsrover/transport/websocket"
)

// serveConfig holds the options of the serve command
type serveConfig struct {
	Host        string
	Port        int
	ReportTTL   time.Duration
	Ngrok       bool
	NgrokAuth   string
	NgrokDomain string
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP server with REST API, WebSocket, and MCP endpoint",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "host",
				Usage:   "HTTP server host",
				Value:   "localhost",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port",
				Value:   8080,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.DurationFlag{
				Name:    "report-ttl",
				Usage:   "how long mission reports are kept",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("REPORT_TTL"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := serveConfig{
				Host:        cmd.String("host"),
				Port:        cmd.Int("port"),
				ReportTTL:   cmd.Duration("report-ttl"),
				Ngrok:       cmd.Bool("ngrok"),
				NgrokAuth:   cmd.String("ngrok-auth"),
				NgrokDomain: cmd.String("ngrok-domain"),
			}

			log.Printf("Starting %s v%s (mode: serve)", AppName, Version)

			missionService, reports, err := initializeServices(cmd.String("plans-dir"))
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runHTTPServer(ctx, cfg, missionService, reports)
		},
	}
}

// newRouter mounts the REST API, WebSocket, and the /mcp proxy endpoint
func newRouter(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	router := apiServer.Router()
	router.HandleFunc("/mcp", mcpHandler(mcpClient.GetMCPServer())).Methods("POST")
	return router
}

// mcpHandler serves single JSON-RPC MCP messages over HTTP
func mcpHandler(mcpServer *server.MCPServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpServer.HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
// If ngrok is enabled, it also provisions a public tunnel.
func runHTTPServer(ctx context.Context, cfg serveConfig, missionService service.MissionService, reports *store.Manager) error {
	g, ctx := errgroup.WithContext(ctx)

	hub := websocket.NewHub()
	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	apiServer := api.NewServer(missionService, hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	router := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g.Go(func() error {
		log.Printf("HTTP server listening on %s", addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?channel=%s", addr, websocket.DefaultChannel)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	g.Go(func() error {
		reportCleanupRoutine(ctx, reports, cfg.ReportTTL)
		return nil
	})

	if cfg.Ngrok {
		g.Go(func() error {
			serveNgrok(ctx, cfg, router)
			return nil
		})
	}

	err := g.Wait()
	log.Println("Server stopped")
	return err
}

// serveNgrok serves handler through an ngrok tunnel until ctx is done.
// Tunnel failures are logged and do not stop the local server.
func serveNgrok(ctx context.Context, cfg serveConfig, handler http.Handler) {
	if cfg.NgrokAuth == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Printf("Using custom ngrok domain: %s", cfg.NgrokDomain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuth))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?channel=%s", ngrokURL, websocket.DefaultChannel)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// reportCleanupRoutine periodically removes reports older than ttl
func reportCleanupRoutine(ctx context.Context, reports *store.Manager, ttl time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := reports.CleanupExpired(ttl); removed > 0 {
				log.Printf("Cleaned up %d expired reports", removed)
			}
		}
	}
}
