package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/internal/pipeline"
	"github.com/valuehunter/hunter/internal/report"
	"github.com/valuehunter/hunter/pkg/logger"
)

// valuationStore reads persisted runs. Nil when the database is
// disabled; the handler then serves the runner's in-memory result.
type valuationStore interface {
	LatestRun(ctx context.Context) (report.Stamp, []contracts.ValuedRow, error)
}

// ValuationHandler handles valuation and pipeline API endpoints
type ValuationHandler struct {
	store  valuationStore
	runner *pipeline.Runner
	logger *logger.Logger
}

// NewValuationHandler creates a new valuation handler. store may be nil.
func NewValuationHandler(store valuationStore, runner *pipeline.Runner, log *logger.Logger) *ValuationHandler {
	return &ValuationHandler{
		store:  store,
		runner: runner,
		logger: log,
	}
}

// GetLatest returns the most recent valuation run
// GET /api/valuations/latest
func (h *ValuationHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		stamp, rows, err := h.store.LatestRun(r.Context())
		if err != nil {
			h.logger.WithError(err).Error("Failed to load latest valuations")
			respondError(w, http.StatusNotFound, "No valuation run available")
			return
		}
		respondLatest(w, stamp, rows)
		return
	}

	result := h.runner.LastResult()
	if result == nil {
		respondError(w, http.StatusNotFound, "No valuation run available")
		return
	}
	respondLatest(w, result.Stamp, result.Rows)
}

func respondLatest(w http.ResponseWriter, stamp report.Stamp, rows []contracts.ValuedRow) {
	if rows == nil {
		rows = []contracts.ValuedRow{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data": map[string]interface{}{
			"as_of_date": stamp.AsOfDate,
			"run_ts_utc": stamp.RunTSUTC,
			"count":      len(rows),
			"items":      rows,
		},
	})
}

// RunPipeline starts a pipeline run in the background
// POST /api/pipeline/run
func (h *ValuationHandler) RunPipeline(w http.ResponseWriter, r *http.Request) {
	if h.runner.Running() {
		respondError(w, http.StatusConflict, "Pipeline run already in progress")
		return
	}

	go func() {
		// Detached from the request context: the run outlives the response.
		if _, err := h.runner.Run(context.Background()); err != nil && !errors.Is(err, pipeline.ErrAlreadyRunning) {
			h.logger.WithError(err).Error("Background pipeline run failed")
		}
	}()

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"success": true,
		"status":  "started",
	})
}

// GetStatus reports whether a run is in flight and the last result
// GET /api/pipeline/status
func (h *ValuationHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	payload := map[string]interface{}{
		"success": true,
		"running": h.runner.Running(),
	}

	if result := h.runner.LastResult(); result != nil {
		payload["last_run"] = map[string]interface{}{
			"as_of_date": result.Stamp.AsOfDate,
			"run_ts_utc": result.Stamp.RunTSUTC,
			"universe":   result.Universe,
			"rows":       len(result.Rows),
			"paths":      result.Paths,
			"duration":   result.Duration.String(),
		}
	}

	respondJSON(w, http.StatusOK, payload)
}
