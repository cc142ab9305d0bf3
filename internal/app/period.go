package app

import (
	"context"
	"time"
)

// Period paces a loop at a fixed interval measured from the start of each
// iteration, so work time is subtracted from the sleep.
type Period struct {
	interval time.Duration
}

// NewPeriod creates a Period. A non-positive interval never sleeps.
func NewPeriod(interval time.Duration) Period {
	return Period{interval: interval}
}

// Interval returns the configured interval.
func (p Period) Interval() time.Duration {
	return p.interval
}

// Wait sleeps until started+interval. It returns ctx.Err() if ctx ends
// first; an overrun iteration returns immediately.
func (p Period) Wait(ctx context.Context, started time.Time) error {
	remaining := p.interval - time.Since(started)
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
