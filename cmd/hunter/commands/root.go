package commands

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hunter",
	Short: "NASDAQ-100 value hunter",
	Long: `Value Hunter CLI

Daily valuation screen for the NASDAQ-100: pulls the constituent
list, fetches fundamentals, derives Graham value, PEG and sector
PE comparisons, and classifies every ticker.

Usage:
  go run ./cmd/hunter [command]

Examples:
  go run ./cmd/hunter run
  go run ./cmd/hunter tickers
  go run ./cmd/hunter valuate --input snapshots.csv
  go run ./cmd/hunter api
  go run ./cmd/hunter scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}
