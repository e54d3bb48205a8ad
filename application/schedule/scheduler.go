package schedule

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/ylexus/google-issue-193814298/infrastructure/logging"
)

var (
	// ErrNoJobs is returned by Run when nothing was scheduled
	ErrNoJobs = errors.New("no jobs scheduled")

	// ErrInvalidInterval is returned by Every for a non-positive interval
	ErrInvalidInterval = errors.New("interval must be positive")

	// ErrTaskPanicked wraps a panic recovered from a task
	ErrTaskPanicked = errors.New("task panicked")
)

// Task is one unit of scheduled work. A returned error is reported by the
// scheduler and never stops the schedule.
type Task func(ctx context.Context) error

// Result describes a single task execution
type Result struct {
	Job      string
	Run      int // zero-based execution count for the job
	Started  time.Time
	Finished time.Time
	Err      error
}

type job struct {
	name     string
	task     Task
	interval time.Duration // zero for one-shot jobs
	next     time.Time
	runs     int
	done     bool
}

// Scheduler runs jobs one at a time on the goroutine that calls Run.
// Jobs never overlap. Jobs due at the same instant run in registration order.
//
// Periodic jobs follow a fixed grid of deadlines (start + n*interval). When a
// run finishes after its next deadline, the MissedTickPolicy decides whether
// the missed deadlines are dropped or executed back to back.
type Scheduler struct {
	clock  Clock
	policy MissedTickPolicy
	hook   func(Result)
	jobs   []*job
}

// Option is a functional option for configuring Scheduler
type Option func(*Scheduler)

// WithClock sets the time source (for testing)
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithPolicy sets the missed tick policy
func WithPolicy(p MissedTickPolicy) Option {
	return func(s *Scheduler) {
		s.policy = p
	}
}

// WithResultHook registers a callback invoked after every execution
func WithResultHook(hook func(Result)) Option {
	return func(s *Scheduler) {
		s.hook = hook
	}
}

// New creates a scheduler. The default policy is SkipMissed.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  RealClock{},
		policy: SkipMissed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every registers a periodic job whose first run is due as soon as Run starts
func (s *Scheduler) Every(name string, interval time.Duration, task Task) error {
	if interval <= 0 {
		return fmt.Errorf("%w: %s has interval %s", ErrInvalidInterval, name, interval)
	}
	s.jobs = append(s.jobs, &job{name: name, task: task, interval: interval})
	return nil
}

// Once registers a job that runs a single time as soon as Run starts
func (s *Scheduler) Once(name string, task Task) {
	s.jobs = append(s.jobs, &job{name: name, task: task})
}

// Run executes jobs until ctx is cancelled, or until only finished one-shot
// jobs remain. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		return ErrNoJobs
	}

	start := s.clock.Now()
	for _, j := range s.jobs {
		j.next = start
	}

	for {
		for _, j := range s.jobs {
			if ctx.Err() != nil {
				return nil
			}
			if j.done || j.next.After(s.clock.Now()) {
				continue
			}
			s.execute(ctx, j)
			s.reschedule(j)
		}

		next, ok := s.nextDeadline()
		if !ok {
			return nil
		}
		if wait := next.Sub(s.clock.Now()); wait > 0 {
			if err := s.clock.Sleep(ctx, wait); err != nil {
				return nil
			}
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j *job) {
	res := Result{Job: j.name, Run: j.runs, Started: s.clock.Now()}
	res.Err = runTask(ctx, j.task)
	res.Finished = s.clock.Now()
	j.runs++

	if res.Err != nil {
		logging.Error("%s: %v", j.name, res.Err)
	} else {
		logging.Debug("%s: run %d finished in %s", j.name, res.Run, res.Finished.Sub(res.Started))
	}

	if s.hook != nil {
		s.hook(res)
	}
}

func runTask(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrTaskPanicked, r, debug.Stack())
		}
	}()
	return task(ctx)
}

func (s *Scheduler) reschedule(j *job) {
	if j.interval == 0 {
		j.done = true
		return
	}

	j.next = j.next.Add(j.interval)
	if s.policy == RunBackToBack {
		return
	}

	now := s.clock.Now()
	if !j.next.Before(now) {
		return
	}

	// ceil: a run ending exactly on a grid point keeps that point
	missed := int((now.Sub(j.next) + j.interval - 1) / j.interval)
	j.next = j.next.Add(time.Duration(missed) * j.interval)
	logging.Warn("%s: run overran its interval, skipped %d tick(s)", j.name, missed)
}

func (s *Scheduler) nextDeadline() (time.Time, bool) {
	var next time.Time
	found := false
	for _, j := range s.jobs {
		if j.done {
			continue
		}
		if !found || j.next.Before(next) {
			next = j.next
			found = true
		}
	}
	return next, found
}
