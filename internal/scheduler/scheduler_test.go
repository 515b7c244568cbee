package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name  string
	err   error
	calls atomic.Int32
}

func (j *countingJob) Run() error {
	j.calls.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	return j.name
}

func TestScheduler_AddJob(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "hourly"}))
	require.NoError(t, s.AddJob("0 30 6 * * *", &countingJob{name: "daily"}))
	assert.Equal(t, 2, s.Jobs())
}

func TestScheduler_AddJob_EmptyScheduleDisables(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	job := &countingJob{name: "manual"}
	require.NoError(t, s.AddJob("", job))
	assert.Equal(t, 0, s.Jobs())
	assert.True(t, s.Has("manual"))

	require.NoError(t, s.Trigger("manual"))
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestScheduler_TriggerUnknown(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	assert.ErrorIs(t, s.Trigger("nope"), ErrUnknownJob)
}

func TestScheduler_Status(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	require.NoError(t, s.AddJob("@hourly", &countingJob{name: "b_ok"}))
	require.NoError(t, s.AddJob("", &countingJob{name: "a_failing", err: errors.New("boom")}))

	assert.Error(t, s.Trigger("a_failing"))
	require.NoError(t, s.Trigger("b_ok"))

	status := s.Status()
	require.Len(t, status, 2)
	assert.Equal(t, "a_failing", status[0].Name)
	assert.Equal(t, "boom", status[0].LastError)
	assert.Equal(t, 1, status[0].Runs)
	assert.Empty(t, status[0].Schedule)
	assert.Equal(t, "@hourly", status[1].Schedule)
	assert.Empty(t, status[1].LastError)
	assert.False(t, status[1].LastRun.IsZero())
}

func TestScheduler_AddJob_InvalidSchedule(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	assert.Error(t, s.AddJob("every tuesday", &countingJob{name: "bad"}))
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	ok := &countingJob{name: "ok"}
	require.NoError(t, s.RunNow(ok))
	assert.Equal(t, int32(1), ok.calls.Load())

	failing := &countingJob{name: "failing", err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(failing), "boom")
}

func TestScheduler_RunsScheduledJobs(t *testing.T) {
	s := New(zerolog.New(nil).Level(zerolog.Disabled))

	job := &countingJob{name: "fast", err: errors.New("failures are logged, not fatal")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}
