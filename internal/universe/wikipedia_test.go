package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/httputil"
	"github.com/valuehunter/hunter/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

// constituentsPage builds a page with a decoy table followed by a real
// constituents table holding n symbols.
func constituentsPage(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body>`)

	// Decoy: a wikitable without a ticker column.
	b.WriteString(`<table class="wikitable"><tbody>`)
	b.WriteString(`<tr><th>Year</th><th>Event</th></tr>`)
	b.WriteString(`<tr><td>1985</td><td>Index launched</td></tr>`)
	b.WriteString(`</tbody></table>`)

	b.WriteString(`<table class="wikitable sortable"><tbody>`)
	b.WriteString(`<tr><th>Company</th><th>Ticker</th><th>Sector</th></tr>`)
	for i := 0; i < n; i++ {
		b.WriteString(fmt.Sprintf(`<tr><td>Company %d</td><td>tk%02d.a</td><td>Technology</td></tr>`, i, i))
	}
	b.WriteString(`</tbody></table>`)

	b.WriteString(`</body></html>`)
	return b.String()
}

func TestWikipediaSource_Tickers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituentsPage(90))
	}))
	defer server.Close()

	client := httputil.New(testLogger()).DisableRetry()
	source := NewWikipediaSource(client, testLogger(), server.URL)

	tickers, err := source.Tickers(context.Background())
	require.NoError(t, err)

	assert.Len(t, tickers, 90)
	assert.Contains(t, tickers, "TK00-A", "symbols are normalized")
	assert.True(t, sortedStrings(tickers), "symbols are sorted")
}

func TestWikipediaSource_TooFewRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, constituentsPage(10))
	}))
	defer server.Close()

	client := httputil.New(testLogger()).DisableRetry()
	source := NewWikipediaSource(client, testLogger(), server.URL)

	_, err := source.Tickers(context.Background())
	assert.Error(t, err, "a table with too few symbols must be rejected")
}

func TestWikipediaSource_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := httputil.New(testLogger()).DisableRetry()
	source := NewWikipediaSource(client, testLogger(), server.URL)

	_, err := source.Tickers(context.Background())
	assert.Error(t, err)
}

func TestTickerColumn_SymbolHeader(t *testing.T) {
	page := `<html><body><table class="wikitable"><tbody>
		<tr><th>Symbol</th><th>Company</th></tr>` +
		strings.Repeat(`<tr><td>AAPL</td><td>Apple</td></tr>`, 1) +
		`</tbody></table></body></html>`

	doc := parseDoc(t, page)
	table := doc.Find("table.wikitable").First()
	assert.Equal(t, 0, tickerColumn(table))
}

func parseDoc(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}
