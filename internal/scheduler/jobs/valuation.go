package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/valuehunter/hunter/internal/pipeline"
	"github.com/valuehunter/hunter/pkg/logger"
)

// ValuationJob runs the full valuation pipeline on a daily schedule,
// after the US close.
type ValuationJob struct {
	runner   *pipeline.Runner
	schedule string
	logger   *logger.Logger
}

// NewValuationJob creates the daily valuation job. schedule is a cron
// expression with seconds, e.g. "0 30 17 * * MON-FRI".
func NewValuationJob(runner *pipeline.Runner, schedule string, log *logger.Logger) *ValuationJob {
	return &ValuationJob{
		runner:   runner,
		schedule: schedule,
		logger:   log.WithField("job", "daily_valuation"),
	}
}

// Name returns the job name
func (j *ValuationJob) Name() string {
	return "daily_valuation"
}

// Schedule returns the cron schedule expression
func (j *ValuationJob) Schedule() string {
	return j.schedule
}

// Run executes one pipeline cycle. A run already in flight (e.g.
// triggered manually over the API) is treated as success: the work is
// being done, retrying would only queue behind it.
func (j *ValuationJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, pipeline.ErrAlreadyRunning) {
			j.logger.Warn("Skipping scheduled run, pipeline already in progress")
			return nil
		}
		return fmt.Errorf("daily valuation: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"as_of_date": result.Stamp.AsOfDate,
		"rows":       len(result.Rows),
	}).Info("Daily valuation completed")

	return nil
}
