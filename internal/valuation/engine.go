package valuation

import (
	"context"
	"sync"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/pkg/logger"
)

// Engine runs the full valuation pass: normalize, aggregate cohort
// stats once, then derive and classify every row. The per-row work is
// pure and shares only the read-only cohort stats, so rows are
// processed concurrently and written back by index; output order and
// content are reproducible regardless of scheduling.
type Engine struct {
	thresholds contracts.Thresholds
	workers    int
	logger     *logger.Logger
}

// NewEngine creates an Engine with the given thresholds.
func NewEngine(th contracts.Thresholds, log *logger.Logger) *Engine {
	return &Engine{
		thresholds: th,
		workers:    8,
		logger:     log.WithField("module", "valuation"),
	}
}

// WithWorkers overrides the row worker count.
func (e *Engine) WithWorkers(n int) *Engine {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Value implements contracts.Valuer. It never returns an error: rows
// with missing data come back with absent metrics and unknown
// verdicts, and a zero-row input yields a zero-row output.
func (e *Engine) Value(ctx context.Context, raws []contracts.RawSnapshot) []contracts.ValuedRow {
	rows := Normalize(raws)
	stats := Aggregate(rows)

	e.logger.WithFields(map[string]interface{}{
		"input_rows":      len(raws),
		"normalized_rows": len(rows),
		"sectors":         len(stats.SectorTrailingPE),
	}).Info("Starting valuation pass")

	valued := make([]contracts.ValuedRow, len(rows))

	workers := e.workers
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers <= 1 {
		for i, row := range rows {
			valued[i] = e.valueRow(row, stats)
		}
		return valued
	}

	indexCh := make(chan int, len(rows))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Cancellation is deliberately ignored here: every slot
			// must be filled so a run never emits zero-valued rows.
			for i := range indexCh {
				valued[i] = e.valueRow(rows[i], stats)
			}
		}()
	}
	for i := range rows {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	e.logger.WithField("valued_rows", len(valued)).Info("Valuation pass completed")
	return valued
}

// valueRow derives metrics and verdicts for a single row.
func (e *Engine) valueRow(row contracts.NormalizedRow, stats contracts.CohortStats) contracts.ValuedRow {
	return classify(deriveMetrics(row, stats), e.thresholds)
}
