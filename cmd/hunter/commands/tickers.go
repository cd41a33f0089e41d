package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valuehunter/hunter/internal/universe"
	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/httputil"
	"github.com/valuehunter/hunter/pkg/logger"
)

// tickersCmd represents the tickers command
var tickersCmd = &cobra.Command{
	Use:   "tickers",
	Short: "Print the current NASDAQ-100 universe",
	Long: `Resolves the constituent list (Wikipedia first, CSV fallback)
and prints one normalized ticker per line.

Example:
  go run ./cmd/hunter tickers`,
	RunE: listTickers,
}

func init() {
	rootCmd.AddCommand(tickersCmd)
}

func listTickers(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	wikiSource := universe.NewWikipediaSource(httputil.New(log), log, cfg.Universe.WikipediaURL)
	fileSource := universe.NewFileSource(cfg.Universe.FallbackFile, log)
	provider := universe.NewProvider(wikiSource, fileSource, cfg.Universe.UseWikipedia, log)

	tickers, err := provider.Tickers(context.Background())
	if err != nil {
		return fmt.Errorf("resolve universe: %w", err)
	}

	for _, ticker := range tickers {
		fmt.Println(ticker)
	}
	fmt.Printf("\n%d tickers\n", len(tickers))

	return nil
}
