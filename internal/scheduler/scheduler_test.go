package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valuehunter/hunter/pkg/config"
	"github.com/valuehunter/hunter/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	runs     int64
	failures int64 // fail the first N runs
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt64(&j.runs, 1)
	if n <= atomic.LoadInt64(&j.failures) {
		return errors.New("transient failure")
	}
	return nil
}

func testScheduler() *Scheduler {
	log := logger.New(&config.Config{Env: "test", LogLevel: "error", LogFormat: "json"})
	return New(log).WithRetry(3, time.Millisecond)
}

func TestScheduler_AddJob(t *testing.T) {
	s := testScheduler()
	job := &fakeJob{name: "daily_valuation", schedule: "0 30 17 * * MON-FRI"}

	require.NoError(t, s.AddJob(job))
	assert.Equal(t, []string{"daily_valuation"}, s.Jobs())

	err := s.AddJob(job)
	assert.Error(t, err, "duplicate job names are rejected")
}

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := testScheduler()
	job := &fakeJob{name: "bad", schedule: "not a cron expression"}

	assert.Error(t, s.AddJob(job))
	assert.Empty(t, s.Jobs())
}

func TestScheduler_RunJob(t *testing.T) {
	s := testScheduler()
	job := &fakeJob{name: "daily_valuation", schedule: "0 30 17 * * MON-FRI"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("daily_valuation"))

	require.Eventually(t, func() bool {
		history, err := s.History("daily_valuation")
		return err == nil && len(history.Results) == 1
	}, time.Second, time.Millisecond)

	history, err := s.History("daily_valuation")
	require.NoError(t, err)
	result := history.Latest()
	assert.True(t, result.Success)
	assert.Empty(t, result.Error)
}

func TestScheduler_RunJob_NotFound(t *testing.T) {
	s := testScheduler()
	assert.Error(t, s.RunJob("nope"))
}

func TestScheduler_RetriesTransientFailures(t *testing.T) {
	s := testScheduler()
	job := &fakeJob{name: "flaky", schedule: "@daily", failures: 2}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("flaky"))

	require.Eventually(t, func() bool {
		history, err := s.History("flaky")
		return err == nil && len(history.Results) == 1
	}, time.Second, time.Millisecond)

	history, _ := s.History("flaky")
	assert.True(t, history.Latest().Success, "third attempt succeeds")
	assert.Equal(t, int64(3), atomic.LoadInt64(&job.runs))
}

func TestScheduler_RecordsExhaustedRetries(t *testing.T) {
	s := testScheduler().WithRetry(1, time.Millisecond)
	job := &fakeJob{name: "broken", schedule: "@daily", failures: 10}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("broken"))

	require.Eventually(t, func() bool {
		history, err := s.History("broken")
		return err == nil && len(history.Results) == 1
	}, time.Second, time.Millisecond)

	history, _ := s.History("broken")
	result := history.Latest()
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "transient failure")
	assert.Equal(t, int64(2), atomic.LoadInt64(&job.runs), "initial attempt plus one retry")
}

func TestJobHistory_SuccessRate(t *testing.T) {
	history := &JobHistory{}
	assert.Equal(t, 0.0, history.SuccessRate())
	assert.Nil(t, history.Latest())

	history.AddResult(JobResult{Success: true})
	history.AddResult(JobResult{Success: true})
	history.AddResult(JobResult{Success: false})

	assert.InDelta(t, 2.0/3.0, history.SuccessRate(), 1e-9)
	assert.False(t, history.Latest().Success)
}

func TestJobHistory_CapsAtHundred(t *testing.T) {
	history := &JobHistory{}
	for i := 0; i < 150; i++ {
		history.AddResult(JobResult{Success: true})
	}
	assert.Len(t, history.Results, 100)
}
