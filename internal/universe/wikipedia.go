package universe

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/valuehunter/hunter/internal/valuation"
	"github.com/valuehunter/hunter/pkg/httputil"
	"github.com/valuehunter/hunter/pkg/logger"
)

// minConstituents guards against scraping the wrong table: the
// Nasdaq-100 has ~100 members, so anything under 80 symbols means we
// matched a sidebar or a history table instead.
const minConstituents = 80

// tickerHeaders are the column titles that identify the constituents
// table, checked case-insensitively.
var tickerHeaders = []string{"ticker", "ticker symbol", "symbol"}

// WikipediaSource scrapes the Nasdaq-100 constituents from Wikipedia.
type WikipediaSource struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewWikipediaSource creates a Wikipedia constituents scraper.
func NewWikipediaSource(httpClient *httputil.Client, log *logger.Logger, url string) *WikipediaSource {
	return &WikipediaSource{
		httpClient: httpClient,
		logger:     log.WithField("module", "universe"),
		url:        url,
	}
}

// Tickers fetches the constituents page and extracts the ticker
// column from the first table whose header matches. Symbols come back
// normalized, deduplicated and sorted.
func (s *WikipediaSource) Tickers(ctx context.Context) ([]string, error) {
	resp, err := s.httpClient.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("fetch constituents page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse constituents page: %w", err)
	}

	tickers := extractTickers(doc)
	if len(tickers) < minConstituents {
		return nil, fmt.Errorf("constituents table not found (got %d symbols, want >= %d)", len(tickers), minConstituents)
	}

	s.logger.WithField("count", len(tickers)).Info("Scraped constituents from Wikipedia")
	return tickers, nil
}

// extractTickers walks every table, finds the ticker column by header
// and collects its cells. The first table with enough symbols wins.
func extractTickers(doc *goquery.Document) []string {
	var result []string

	doc.Find("table.wikitable").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := tickerColumn(table)
		if col < 0 {
			return true
		}

		seen := make(map[string]bool)
		tickers := make([]string, 0, 128)
		table.Find("tbody tr").Each(func(i int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= col {
				return
			}
			ticker := valuation.NormalizeTicker(cells.Eq(col).Text())
			if ticker == "" || seen[ticker] {
				return
			}
			seen[ticker] = true
			tickers = append(tickers, ticker)
		})

		if len(tickers) >= minConstituents {
			sort.Strings(tickers)
			result = tickers
			return false
		}
		return true
	})

	return result
}

// tickerColumn returns the header index of the ticker column, -1 when
// the table has none.
func tickerColumn(table *goquery.Selection) int {
	col := -1
	table.Find("tr").First().Find("th").Each(func(i int, th *goquery.Selection) {
		if col >= 0 {
			return
		}
		header := strings.ToLower(strings.TrimSpace(th.Text()))
		for _, candidate := range tickerHeaders {
			if header == candidate {
				col = i
				return
			}
		}
	})
	return col
}
