package application

import (
	"context"
	"time"
)

// Pacer gates successive calls to an upstream target.
type Pacer interface {
	// Wait blocks until the next call is allowed or the context is done.
	Wait(ctx context.Context) error
}

// IntervalPacer enforces a minimum delay between consecutive Wait returns.
// The first Wait returns immediately. Not safe for concurrent use; the
// scheduler is the only caller and it paces items sequentially.
type IntervalPacer struct {
	Every time.Duration

	last time.Time
	now  func() time.Time
}

func NewIntervalPacer(every time.Duration) *IntervalPacer {
	return &IntervalPacer{Every: every, now: time.Now}
}

func (p *IntervalPacer) Wait(ctx context.Context) error {
	if p.now == nil {
		p.now = time.Now
	}
	if !p.last.IsZero() {
		if d := p.Every - p.now().Sub(p.last); d > 0 {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
			}
		}
	}
	p.last = p.now()
	return nil
}

// NoopPacer never delays; used in tests and for FETCHER=fake runs.
type NoopPacer struct{}

func (NoopPacer) Wait(context.Context) error { return nil }
