package schedule

import (
	"context"
	"fmt"
	"time"
)

// MissedTickPolicy decides what happens to deadlines that passed while a
// periodic job was still running
type MissedTickPolicy int

const (
	// SkipMissed drops passed deadlines; the next run waits for the first
	// deadline after the overrunning run completed.
	SkipMissed MissedTickPolicy = iota

	// RunBackToBack executes one run per passed deadline, immediately and
	// sequentially, until the job has caught up with the grid.
	RunBackToBack
)

// Names accepted by ParsePolicy
const (
	PolicySkip       = "skip"
	PolicyBackToBack = "back-to-back"
)

// ParsePolicy converts a configuration value to a MissedTickPolicy
func ParsePolicy(s string) (MissedTickPolicy, error) {
	switch s {
	case "", PolicySkip:
		return SkipMissed, nil
	case PolicyBackToBack:
		return RunBackToBack, nil
	default:
		return SkipMissed, fmt.Errorf("unknown missed tick policy %q (want %q or %q)", s, PolicySkip, PolicyBackToBack)
	}
}

func (p MissedTickPolicy) String() string {
	if p == RunBackToBack {
		return PolicyBackToBack
	}
	return PolicySkip
}

// Clock abstracts time so schedules can be tested without waiting
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock is the wall clock
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
