package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name     string
	schedule string
	retry    bool
	failures int32 // fail this many runs, then succeed
	runs     int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }
func (j *fakeJob) Retry() bool      { return j.retry }

func (j *fakeJob) Run(ctx context.Context) error {
	if atomic.AddInt32(&j.runs, 1) <= j.failures {
		return errors.New("temporary failure")
	}
	return nil
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(nil)

	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 30 2 * * *"}))
	require.NoError(t, s.AddJob(&fakeJob{name: "manual"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "@daily"}), "duplicate")
	assert.Error(t, s.AddJob(&fakeJob{name: "bad", schedule: "every night"}))

	assert.ElementsMatch(t, []string{"a", "manual"}, s.GetAllJobs())

	require.NoError(t, s.RemoveJob("a"))
	assert.Error(t, s.RemoveJob("a"))
	assert.Empty(t, s.cron.Entries())
}

func TestScheduler_RetryableJob(t *testing.T) {
	s := New(nil).WithRetry(3, time.Millisecond)
	job := &fakeJob{name: "fetch", retry: true, failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "fetch")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.runs))
}

func TestScheduler_NonRetryableRunsOnce(t *testing.T) {
	s := New(nil).WithRetry(3, time.Millisecond)
	job := &fakeJob{name: "scan", failures: 1}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunJobSync(context.Background(), "scan")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "temporary failure", result.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))

	stats := s.GetJobStats()["scan"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	require.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestScheduler_RetryStopsOnCancel(t *testing.T) {
	s := New(nil).WithRetry(5, time.Hour)
	job := &fakeJob{name: "fetch", retry: true, failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	result, err := s.RunJobSync(ctx, "fetch")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, context.DeadlineExceeded.Error(), result.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
}

func TestScheduler_UnknownJob(t *testing.T) {
	s := New(nil)
	_, err := s.RunJobSync(context.Background(), "nope")
	assert.Error(t, err)
	assert.Error(t, s.RunJob("nope"))
	_, err = s.GetJobHistory("nope")
	assert.Error(t, err)
}

func TestJobHistory(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 105; i++ {
		h.AddResult(JobResult{JobName: "x", Success: i%5 != 0})
	}
	assert.Len(t, h.Results, 100)
	assert.Len(t, h.GetLatestResults(3), 3)
	assert.Len(t, h.GetFailedResults(), 20)
	assert.InDelta(t, 0.8, h.GetSuccessRate(), 1e-9)
}
