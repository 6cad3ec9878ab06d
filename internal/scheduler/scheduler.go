// Package scheduler fires batch jobs at configured wall-clock times in the
// analytics timezone. It deliberately avoids cron expressions; the pipeline
// only needs daily and weekly triggers.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-go-api/internal/config"
)

// JobFunc is the work a scheduled job performs.
type JobFunc func(ctx context.Context) error

type job struct {
	name    string
	at      config.TimeOfDay
	weekday *time.Weekday
	run     JobFunc

	// running guards against overlap: a firing while the previous run is
	// still executing is skipped.
	running sync.Mutex
}

// Scheduler owns a set of wall-clock jobs. Start and Stop are idempotent.
type Scheduler struct {
	location *time.Location
	logger   zerolog.Logger
	now      func() time.Time

	mu      sync.Mutex
	jobs    map[string]*job
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New constructs a scheduler whose trigger times are interpreted in loc.
func New(loc *time.Location, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		location: loc,
		logger:   logger.With().Str("component", "scheduler").Logger(),
		now:      time.Now,
		jobs:     map[string]*job{},
	}
}

// AddDaily registers a job firing every day at the given wall-clock time.
// Registering a name twice replaces the previous job.
func (s *Scheduler) AddDaily(name string, at config.TimeOfDay, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = &job{name: name, at: at, run: fn}
}

// AddWeekly registers a job firing on the given weekday at the given time.
func (s *Scheduler) AddWeekly(name string, weekday time.Weekday, at config.TimeOfDay, fn JobFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[name] = &job{name: name, at: at, weekday: &weekday, run: fn}
}

// NextRun reports when the named job would next fire after from. The second
// return is false for unknown job names.
func (s *Scheduler) NextRun(name string, from time.Time) (time.Time, bool) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}

	return s.nextFire(j, from), true
}

func (s *Scheduler) nextFire(j *job, from time.Time) time.Time {
	local := from.In(s.location)
	candidate := time.Date(local.Year(), local.Month(), local.Day(), j.at.Hour, j.at.Minute, 0, 0, s.location)

	if j.weekday == nil {
		if !candidate.After(local) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	}

	diff := (int(*j.weekday) - int(candidate.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, diff)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// Start launches one loop per registered job. Calling Start twice is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.started = true

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, j)
	}

	s.logger.Info().Int("jobs", len(s.jobs)).Msg("scheduler started")
}

// Stop halts all job loops and waits for in-flight runs to return. Calling
// Stop before Start, or twice, is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info().Msg("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j *job) {
	defer s.wg.Done()

	for {
		next := s.nextFire(j, s.now())
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.fire(ctx, j)
	}
}

// fire launches one run of the job unless the previous run is still
// executing, in which case the firing is skipped.
func (s *Scheduler) fire(ctx context.Context, j *job) {
	if !j.running.TryLock() {
		s.logger.Warn().Str("job", j.name).Msg("previous run still executing, firing skipped")
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer j.running.Unlock()

		s.logger.Info().Str("job", j.name).Msg("job fired")
		if err := j.run(ctx); err != nil {
			s.logger.Error().Err(err).Str("job", j.name).Msg("job failed")
		}
	}()
}
