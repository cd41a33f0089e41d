package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valuehunter/hunter/internal/contracts"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full valuation pipeline once",
	Long: `Runs one complete valuation cycle:

1. Resolve the NASDAQ-100 universe (Wikipedia, CSV fallback)
2. Fetch fundamentals for every ticker
3. Run the valuation engine
4. Write the CSV report (and persist to Postgres when enabled)

Example:
  go run ./cmd/hunter run`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.close()

	result, err := app.runner.Run(context.Background())
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	printRunSummary(result.Stamp.AsOfDate, result.Rows, result.Paths)
	return nil
}

func printRunSummary(asOfDate string, rows []contracts.ValuedRow, paths []string) {
	verdicts := map[contracts.Verdict]int{}
	hunterPass := 0
	for _, row := range rows {
		verdicts[row.Valuation]++
		if row.ValuationHunter == contracts.CheckPass {
			hunterPass++
		}
	}

	fmt.Printf("Valuation run for %s: %d tickers\n", asOfDate, len(rows))
	fmt.Printf("  undervalued: %d  fair: %d  overvalued: %d  unknown: %d\n",
		verdicts[contracts.VerdictUndervalued],
		verdicts[contracts.VerdictFair],
		verdicts[contracts.VerdictOvervalued],
		verdicts[contracts.VerdictUnknown])
	fmt.Printf("  hunter screen passed: %d\n", hunterPass)
	for _, path := range paths {
		fmt.Printf("  wrote %s\n", path)
	}
}
