package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/pkg/httputil"
	"github.com/valuehunter/hunter/pkg/logger"
)

// quoteSummaryModules are the data blocks requested per ticker.
const quoteSummaryModules = "price,summaryDetail,defaultKeyStatistics,financialData,assetProfile"

// Client fetches fundamentals snapshots from the Yahoo Finance
// quoteSummary API. All Yahoo calls go through this client.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Yahoo Finance client.
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("module", "yahoo"),
		baseURL:    baseURL,
	}
}

// FetchSnapshot fetches one ticker's fundamentals. Missing modules and
// malformed fields degrade to absent values; only transport and
// protocol failures surface as errors.
func (c *Client) FetchSnapshot(ctx context.Context, ticker string) (contracts.RawSnapshot, error) {
	snapshot := contracts.RawSnapshot{Ticker: ticker}

	endpoint := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), quoteSummaryModules)

	resp, err := c.httpClient.Get(ctx, endpoint)
	if err != nil {
		return snapshot, fmt.Errorf("quoteSummary request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snapshot, fmt.Errorf("quoteSummary status %d for %s", resp.StatusCode, ticker)
	}

	var envelope quoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return snapshot, fmt.Errorf("decode quoteSummary for %s: %w", ticker, err)
	}

	results := envelope.QuoteSummary.Result
	if len(results) == 0 {
		return snapshot, fmt.Errorf("empty quoteSummary result for %s", ticker)
	}

	snapshot = results[0].toRawSnapshot(ticker)

	c.logger.WithFields(map[string]interface{}{
		"ticker":        ticker,
		"price_present": snapshot.Price.Valid,
	}).Debug("Fetched fundamentals snapshot")

	return snapshot, nil
}
