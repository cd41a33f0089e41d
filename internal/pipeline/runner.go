package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valuehunter/hunter/internal/contracts"
	"github.com/valuehunter/hunter/internal/report"
	"github.com/valuehunter/hunter/pkg/logger"
)

// ErrAlreadyRunning is returned when a run is requested while another
// run is still in flight. Runs are single-flight: the output files and
// the database row set are shared state.
var ErrAlreadyRunning = errors.New("pipeline run already in progress")

// reportWriter persists the valued table to files.
type reportWriter interface {
	Write(rows []contracts.ValuedRow, stamp report.Stamp) ([]string, error)
}

// runStore persists the valued table to the database. Optional.
type runStore interface {
	EnsureSchema(ctx context.Context) error
	SaveRun(ctx context.Context, stamp report.Stamp, rows []contracts.ValuedRow) error
}

// Result summarizes one completed pipeline run.
type Result struct {
	Stamp    report.Stamp          `json:"stamp"`
	Universe int                   `json:"universe"`
	Rows     []contracts.ValuedRow `json:"rows"`
	Paths    []string              `json:"paths"`
	Duration time.Duration         `json:"duration"`
}

// Runner drives one full valuation cycle: resolve the universe, fetch
// fundamentals, run the valuation engine, write the report, and
// optionally persist to Postgres.
type Runner struct {
	universe contracts.TickerProvider
	fetcher  contracts.FundamentalsFetcher
	valuer   contracts.Valuer
	writer   reportWriter
	store    runStore
	broker   *Broker
	tz       *time.Location
	logger   *logger.Logger

	now     func() time.Time
	running atomic.Bool

	mu   sync.RWMutex
	last *Result
}

// NewRunner wires a pipeline runner. store may be nil when database
// persistence is disabled.
func NewRunner(
	universe contracts.TickerProvider,
	fetcher contracts.FundamentalsFetcher,
	valuer contracts.Valuer,
	writer reportWriter,
	store runStore,
	broker *Broker,
	tz *time.Location,
	log *logger.Logger,
) *Runner {
	return &Runner{
		universe: universe,
		fetcher:  fetcher,
		valuer:   valuer,
		writer:   writer,
		store:    store,
		broker:   broker,
		tz:       tz,
		logger:   log.WithField("module", "pipeline"),
		now:      time.Now,
	}
}

// Events returns the broker for progress subscriptions.
func (r *Runner) Events() *Broker {
	return r.broker
}

// Running reports whether a run is currently in flight.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// LastResult returns the most recent completed run, or nil.
func (r *Runner) LastResult() *Result {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}

// Run executes one full pipeline cycle.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if !r.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer r.running.Store(false)

	start := r.now()
	stamp := report.StampAt(start, r.tz)

	result, err := r.run(ctx, stamp)
	if err != nil {
		r.broker.Publish(Event{Stage: StageFailed, Message: "pipeline failed", Error: err.Error()})
		r.logger.WithError(err).Error("Pipeline run failed")
		return nil, err
	}

	result.Duration = r.now().Sub(start)

	r.mu.Lock()
	r.last = result
	r.mu.Unlock()

	r.broker.Publish(Event{Stage: StageDone, Message: "pipeline completed", Count: len(result.Rows)})
	r.logger.WithFields(map[string]interface{}{
		"as_of_date": stamp.AsOfDate,
		"rows":       len(result.Rows),
		"duration":   result.Duration.String(),
	}).Info("Pipeline run completed")

	return result, nil
}

func (r *Runner) run(ctx context.Context, stamp report.Stamp) (*Result, error) {
	r.broker.Publish(Event{Stage: StageUniverse, Message: "resolving universe"})
	tickers, err := r.universe.Tickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve universe: %w", err)
	}
	r.broker.Publish(Event{Stage: StageUniverse, Message: "universe resolved", Count: len(tickers)})

	r.broker.Publish(Event{Stage: StageCollect, Message: "fetching fundamentals", Count: len(tickers)})
	snapshots, err := r.fetcher.Fetch(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("fetch fundamentals: %w", err)
	}
	r.broker.Publish(Event{Stage: StageCollect, Message: "fundamentals fetched", Count: len(snapshots)})

	r.broker.Publish(Event{Stage: StageValuate, Message: "running valuation"})
	rows := r.valuer.Value(ctx, snapshots)
	r.broker.Publish(Event{Stage: StageValuate, Message: "valuation completed", Count: len(rows)})

	r.broker.Publish(Event{Stage: StageReport, Message: "writing report"})
	paths, err := r.writer.Write(rows, stamp)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	r.broker.Publish(Event{Stage: StageReport, Message: "report written", Count: len(paths)})

	if r.store != nil {
		r.broker.Publish(Event{Stage: StagePersist, Message: "persisting to database"})
		if err := r.store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		if err := r.store.SaveRun(ctx, stamp, rows); err != nil {
			return nil, fmt.Errorf("persist run: %w", err)
		}
		r.broker.Publish(Event{Stage: StagePersist, Message: "run persisted", Count: len(rows)})
	}

	return &Result{
		Stamp:    stamp,
		Universe: len(tickers),
		Rows:     rows,
		Paths:    paths,
	}, nil
}
