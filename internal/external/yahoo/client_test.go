package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/httputil"
	"github.com/valuehunter/hunter/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
}

const sampleQuoteSummary = `{
  "quoteSummary": {
    "result": [
      {
        "price": {
          "shortName": "Apple Inc.",
          "currency": "USD",
          "regularMarketPrice": {"raw": 182.52, "fmt": "182.52"},
          "marketCap": {"raw": 2850000000000, "fmt": "2.85T"}
        },
        "summaryDetail": {
          "trailingPE": {"raw": 29.7, "fmt": "29.70"},
          "forwardPE": {"raw": 27.1, "fmt": "27.10"}
        },
        "defaultKeyStatistics": {
          "trailingEps": {"raw": 6.14, "fmt": "6.14"},
          "forwardEps": {"raw": 6.73, "fmt": "6.73"},
          "pegRatio": {"raw": 2.4, "fmt": "2.40"},
          "bookValue": {"raw": 4.38, "fmt": "4.38"}
        },
        "financialData": {
          "currentPrice": {"raw": 182.5, "fmt": "182.50"},
          "earningsGrowth": {"raw": 0.11, "fmt": "11.00%"},
          "targetMeanPrice": {"raw": 199.6, "fmt": "199.60"}
        },
        "assetProfile": {
          "sector": "Technology"
        }
      }
    ],
    "error": null
  }
}`

func TestClient_FetchSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/v10/finance/quoteSummary/AAPL")
		assert.Contains(t, r.URL.RawQuery, "modules=")
		fmt.Fprint(w, sampleQuoteSummary)
	}))
	defer server.Close()

	client := NewClient(httputil.New(testLogger()).DisableRetry(), testLogger(), server.URL)
	snapshot, err := client.FetchSnapshot(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, "AAPL", snapshot.Ticker)
	assert.Equal(t, "Apple Inc.", snapshot.Company)
	assert.Equal(t, "Technology", snapshot.Sector)
	assert.Equal(t, "USD", snapshot.Currency)
	assert.Equal(t, 182.52, snapshot.Price.Float64)
	assert.Equal(t, 29.7, snapshot.TrailingPE.Float64)
	assert.Equal(t, 6.14, snapshot.TrailingEPS.Float64)
	assert.Equal(t, 4.38, snapshot.BookValuePerShare.Float64)
	assert.Equal(t, 0.11, snapshot.EarningsGrowth.Float64)
	assert.Equal(t, 2.4, snapshot.PEGRatio.Float64)
	assert.Equal(t, 199.6, snapshot.TargetMeanPrice.Float64)
	assert.Equal(t, 2.85e12, snapshot.MarketCap.Float64)
}

func TestClient_FetchSnapshot_SparseResult(t *testing.T) {
	// Empty modules and empty number objects must not error.
	sparse := `{"quoteSummary":{"result":[{"price":{"regularMarketPrice":{}},"summaryDetail":{},"financialData":{"currentPrice":{"raw":55.5}}}],"error":null}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sparse)
	}))
	defer server.Close()

	client := NewClient(httputil.New(testLogger()).DisableRetry(), testLogger(), server.URL)
	snapshot, err := client.FetchSnapshot(context.Background(), "XYZ")
	require.NoError(t, err)

	assert.Equal(t, 55.5, snapshot.Price.Float64, "falls back to financialData currentPrice")
	assert.False(t, snapshot.TrailingPE.Valid)
	assert.False(t, snapshot.TrailingEPS.Valid)
	assert.Empty(t, snapshot.Sector)
}

func TestClient_FetchSnapshot_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"quoteSummary":{"result":[],"error":{"code":"Not Found"}}}`)
	}))
	defer server.Close()

	client := NewClient(httputil.New(testLogger()).DisableRetry(), testLogger(), server.URL)
	snapshot, err := client.FetchSnapshot(context.Background(), "NOPE")
	assert.Error(t, err)
	assert.Equal(t, "NOPE", snapshot.Ticker, "ticker is preserved even on failure")
}

func TestClient_FetchSnapshot_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(httputil.New(testLogger()).DisableRetry(), testLogger(), server.URL)
	_, err := client.FetchSnapshot(context.Background(), "NOPE")
	assert.Error(t, err)
}
