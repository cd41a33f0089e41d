package universe

import (
	"context"
	"fmt"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/pkg/logger"
)

// Provider resolves the ticker universe: Wikipedia when enabled, then
// the local fallback file. Both failing aborts the pipeline before any
// valuation work starts.
type Provider struct {
	wikipedia contracts.TickerProvider
	fallback  contracts.TickerProvider
	useWiki   bool
	logger    *logger.Logger
}

// NewProvider creates the universe provider.
func NewProvider(wikipedia, fallback contracts.TickerProvider, useWiki bool, log *logger.Logger) *Provider {
	return &Provider{
		wikipedia: wikipedia,
		fallback:  fallback,
		useWiki:   useWiki,
		logger:    log.WithField("module", "universe"),
	}
}

// Tickers returns the ticker universe for a run.
func (p *Provider) Tickers(ctx context.Context) ([]string, error) {
	if p.useWiki {
		tickers, err := p.wikipedia.Tickers(ctx)
		if err == nil {
			return tickers, nil
		}
		p.logger.WithError(err).Warn("Wikipedia scrape failed, trying fallback file")
	}

	tickers, err := p.fallback.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("no ticker universe available: %w", err)
	}
	return tickers, nil
}
