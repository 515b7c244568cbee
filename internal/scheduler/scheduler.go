// Package scheduler runs background jobs on cron schedules.
package scheduler

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrUnknownJob is returned when triggering a job that was never registered
var ErrUnknownJob = errors.New("unknown job")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// JobStatus describes a registered job and its most recent run
type JobStatus struct {
	Name      string    `json:"name"`
	Schedule  string    `json:"schedule,omitempty"`
	Runs      int       `json:"runs"`
	LastRun   time.Time `json:"last_run,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	Running   bool      `json:"running"`
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu     sync.Mutex
	jobs   map[string]Job
	status map[string]*JobStatus
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		log:    log.With().Str("component", "scheduler").Logger(),
		jobs:   make(map[string]Job),
		status: make(map[string]*JobStatus),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("scheduled", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule. With an empty schedule
// the job is only registered for manual triggering.
// Schedule examples:
//   - "0 */5 * * * *"      - Every 5 minutes
//   - "@hourly"            - Every hour
//   - "0 30 6 * * MON-FRI" - 6:30 AM weekdays
//   - "@every 30s"         - Every 30 seconds
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if schedule != "" {
		if _, err := s.cron.AddFunc(schedule, func() { _ = s.run(job) }); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.jobs[job.Name()] = job
	s.status[job.Name()] = &JobStatus{Name: job.Name(), Schedule: schedule}
	s.mu.Unlock()

	if schedule == "" {
		s.log.Info().Str("job", job.Name()).Msg("Job registered for manual runs only")
	} else {
		s.log.Info().
			Str("schedule", schedule).
			Str("job", job.Name()).
			Msg("Job registered")
	}

	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(job)
}

// Trigger runs a registered job by name
func (s *Scheduler) Trigger(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return ErrUnknownJob
	}
	return s.RunNow(job)
}

// Has reports whether a job is registered under name
func (s *Scheduler) Has(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Jobs returns the number of cron entries
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Status returns every registered job sorted by name
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobStatus, 0, len(s.status))
	for _, st := range s.status {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) run(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	s.mark(job.Name(), func(st *JobStatus) { st.Running = true })

	err := job.Run()

	s.mark(job.Name(), func(st *JobStatus) {
		st.Running = false
		st.Runs++
		st.LastRun = time.Now()
		st.LastError = ""
		if err != nil {
			st.LastError = err.Error()
		}
	})

	if err != nil {
		s.log.Error().
			Err(err).
			Str("job", job.Name()).
			Msg("Job failed")
		return err
	}
	s.log.Debug().Str("job", job.Name()).Msg("Job completed")
	return nil
}

func (s *Scheduler) mark(name string, fn func(*JobStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.status[name]
	if !ok {
		st = &JobStatus{Name: name}
		s.status[name] = st
	}
	fn(st)
}
