package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/valuehunter/hunter/internal/api"
	"github.com/valuehunter/hunter/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                  - Health check
  GET  /api/valuations/latest   - Latest valuation run
  POST /api/pipeline/run        - Trigger a pipeline run
  GET  /api/pipeline/status     - Run status
  GET  /api/pipeline/events     - Progress events (websocket)

Example:
  go run ./cmd/hunter api
  go run ./cmd/hunter api --port 8088`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	if apiPort != "" {
		app.cfg.Port = apiPort
	}

	valuationHandler := newValuationHandler(app)
	eventsHandler := handlers.NewEventsHandler(app.runner.Events(), app.log)
	router := api.NewRouter(valuationHandler, eventsHandler, app.log)
	server := api.New(app.cfg, app.log, router)

	go func() {
		if err := server.Start(); err != nil {
			app.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", app.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}

// newValuationHandler picks the persisted store when the database is
// enabled, otherwise the handler serves the runner's in-memory result.
func newValuationHandler(app *app) *handlers.ValuationHandler {
	if app.repo != nil {
		return handlers.NewValuationHandler(app.repo, app.runner, app.log)
	}
	return handlers.NewValuationHandler(nil, app.runner, app.log)
}
