package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and connectivity",
	Long: `Prints the effective configuration and checks connectivity to
the configured backing services.

Example:
  go run ./cmd/hunter status`,
	RunE: showStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func showStatus(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	cfg := app.cfg

	fmt.Println("Configuration")
	fmt.Printf("  env:       %s\n", cfg.Env)
	fmt.Printf("  port:      %s\n", cfg.Port)
	fmt.Printf("  timezone:  %s\n", cfg.Timezone)
	fmt.Printf("  schedule:  %s\n", cfg.Schedule)
	fmt.Printf("  workers:   %d\n", cfg.Workers)
	fmt.Printf("  output:    %s/%s (dated copy: %v)\n", cfg.Output.Dir, cfg.Output.Basename, cfg.Output.WriteDatedCopy)
	fmt.Printf("  universe:  wikipedia=%v fallback=%s\n", cfg.Universe.UseWikipedia, cfg.Universe.FallbackFile)

	fmt.Println("\nThresholds")
	fmt.Printf("  undervalued:          %.2f\n", cfg.Thresholds.Undervalued)
	fmt.Printf("  overvalued:           %.2f\n", cfg.Thresholds.Overvalued)
	fmt.Printf("  peg max:              %.2f\n", cfg.Thresholds.PEGMax)
	fmt.Printf("  pe sector max mult:   %.2f\n", cfg.Thresholds.PESectorMaxMult)
	fmt.Printf("  margin of safety min: %.2f\n", cfg.Thresholds.MarginOfSafetyMin)

	fmt.Println("\nBacking services")
	if app.db != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		health, err := app.db.HealthCheck(ctx)
		if err != nil {
			fmt.Printf("  postgres: UNREACHABLE (%s)\n", health.Error)
		} else {
			fmt.Printf("  postgres: ok (%s)\n", health.ResponseTime)
		}
	} else {
		fmt.Println("  postgres: disabled")
	}

	if app.redis.Enabled() {
		fmt.Println("  redis:    enabled")
	} else {
		fmt.Println("  redis:    disabled")
	}

	return nil
}
