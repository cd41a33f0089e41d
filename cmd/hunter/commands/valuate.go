package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valuehunter/hunter/internal/fundamentals"
	"github.com/valuehunter/hunter/internal/report"
	"github.com/valuehunter/hunter/internal/valuation"
	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/logger"
)

// valuateCmd represents the valuate command
var valuateCmd = &cobra.Command{
	Use:   "valuate",
	Short: "Run the valuation engine over a snapshot CSV",
	Long: `Runs the valuation engine offline over a previously captured
raw snapshot CSV. No network access: the file defines the universe
and the fundamentals.

Example:
  go run ./cmd/hunter valuate --input snapshots.csv`,
	RunE: valuateFile,
}

var valuateInput string

func init() {
	rootCmd.AddCommand(valuateCmd)

	valuateCmd.Flags().StringVar(&valuateInput, "input", "", "raw snapshot CSV file (required)")
	valuateCmd.MarkFlagRequired("input")
}

func valuateFile(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	tz, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	source := fundamentals.NewFileSource(valuateInput, log)
	snapshots, err := source.Fetch(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("read snapshots: %w", err)
	}

	engine := valuation.NewEngine(cfg.Thresholds, log)
	rows := engine.Value(context.Background(), snapshots)

	writer := report.NewCSVWriter(cfg.Output.Dir, cfg.Output.Basename, cfg.Output.WriteDatedCopy, log)
	stamp := report.StampAt(time.Now(), tz)
	paths, err := writer.Write(rows, stamp)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printRunSummary(stamp.AsOfDate, rows, paths)
	return nil
}
