package ratelimit

import (
	"context"
	"math/rand"
	"time"
)

// Delayer paces the tracking loop between product checks. With a fixed
// delay every wait is the same; otherwise each wait draws a fresh uniform
// duration from [min, max).
type Delayer struct {
	fixed time.Duration
	min   time.Duration
	max   time.Duration
}

func NewFixed(delay time.Duration) *Delayer {
	return &Delayer{fixed: delay}
}

func NewRange(min, max time.Duration) *Delayer {
	return &Delayer{min: min, max: max}
}

// Next returns the duration of the upcoming wait. Range delayers redraw on
// every call.
func (d *Delayer) Next() time.Duration {
	if d.fixed > 0 {
		return d.fixed
	}
	if d.min >= d.max {
		return d.min
	}
	delta := d.max - d.min
	return d.min + time.Duration(rand.Int63n(int64(delta)))
}

// Wait blocks for the next delay or until ctx is cancelled.
func (d *Delayer) Wait(ctx context.Context) error {
	next := d.Next()
	if next <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(next):
		return nil
	}
}
