package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuehunter/hunter/internal/api/handlers"
	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/internal/pipeline"
	"github.com/valuehunter/hunter/internal/report"
	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/logger"
)

type stubUniverse struct{}

func (stubUniverse) Tickers(ctx context.Context) ([]string, error) {
	return []string{"AAPL"}, nil
}

type stubFetcher struct{}

func (stubFetcher) Fetch(ctx context.Context, tickers []string) ([]contracts.RawSnapshot, error) {
	return make([]contracts.RawSnapshot, len(tickers)), nil
}

type stubValuer struct{}

func (stubValuer) Value(ctx context.Context, raws []contracts.RawSnapshot) []contracts.ValuedRow {
	return make([]contracts.ValuedRow, len(raws))
}

type stubWriter struct{}

func (stubWriter) Write(rows []contracts.ValuedRow, stamp report.Stamp) ([]string, error) {
	return nil, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	broker := pipeline.NewBroker()
	runner := pipeline.NewRunner(stubUniverse{}, stubFetcher{}, stubValuer{}, stubWriter{}, nil, broker, time.UTC, log)

	return NewRouter(
		handlers.NewValuationHandler(nil, runner, log),
		handlers.NewEventsHandler(broker, log),
		log,
	)
}

func TestRouter_HealthCheck(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "hunter-api", body["service"])
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/pipeline/run", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	router := testRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
