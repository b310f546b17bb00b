package msdirect

import (
	"context"
	"math/rand"
	"time"
)

// Pacer blocks for a uniformly random duration between actions so the
// session never interacts with the page at a fixed cadence.
type Pacer struct {
	min, max time.Duration
	sleep    func(ctx context.Context, d time.Duration)
}

// NewPacer builds a pacer with the given default window.
func NewPacer(min, max time.Duration) *Pacer {
	if max < min {
		max = min
	}
	return &Pacer{min: min, max: max, sleep: sleepWithContext}
}

// Pause blocks for a random duration in the default window.
func (p *Pacer) Pause(ctx context.Context) {
	p.PauseBetween(ctx, p.min, p.max)
}

// PauseBetween blocks for a random duration in [min, max], overriding the
// default window for this call.
func (p *Pacer) PauseBetween(ctx context.Context, min, max time.Duration) {
	if max < min {
		max = min
	}
	d := min
	if span := max - min; span > 0 {
		d += time.Duration(rand.Int63n(int64(span) + 1))
	}
	p.sleep(ctx, d)
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
