package daemon

import (
	"context"
	"time"
)

// Clock drives the daemon loop. The daemon checks for due jobs once per
// tick; jobs are always scheduled at one-minute granularity.
type Clock interface {
	// Interval returns the tick interval.
	Interval() time.Duration

	// Now reads the clock. It is called exactly once per tick. A false
	// return stops the loop.
	Now() (time.Time, bool)

	// Peek reads the clock without consuming a tick. It may be called
	// mid-interval; the split from Now lets test clocks model a sleep
	// that overshot into the next minute.
	Peek() (time.Time, bool)

	// Sleep waits for the duration or until ctx is cancelled.
	Sleep(ctx context.Context, d time.Duration)
}

// RealClock is the default wall clock with a one-minute interval.
type RealClock struct{}

func (RealClock) Interval() time.Duration { return time.Minute }

func (RealClock) Now() (time.Time, bool) { return time.Now(), true }

func (RealClock) Peek() (time.Time, bool) { return time.Now(), true }

func (RealClock) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
