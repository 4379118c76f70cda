package utils

import (
	"context"
	"time"
)

var after = time.After

// WaitFor blocks for d or until ctx is done, whichever comes first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-after(d):
		return nil
	}
}

// Pacer keeps a fixed pause between consecutive sends. The first Wait does
// not block.
type Pacer struct {
	pause   time.Duration
	started bool
}

func NewPacer(pause time.Duration) *Pacer {
	return &Pacer{pause: pause}
}

func (p *Pacer) Wait(ctx context.Context) error {
	if !p.started {
		p.started = true
		return nil
	}
	return WaitFor(ctx, p.pause)
}
