// Package clock provides helpers for time-related operations.
package clock

import (
	"context"
	"time"
)

// SleepFunc blocks for the duration or until the context is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// NowFunc reports the current time.
type NowFunc func() time.Time

// SleepWithContext waits for the duration or returns early if the context is canceled.
// A non-positive duration returns immediately unless the context is already done.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UTCNow returns the current wall-clock time in UTC.
func UTCNow() time.Time {
	return time.Now().UTC()
}

// Fixed returns a NowFunc that always reports t.
func Fixed(t time.Time) NowFunc {
	return func() time.Time { return t }
}
