// Package ratelimit paces calls to metered providers.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces calls at least Interval apart and adds a random pause in
// [JitterMin, JitterMax] before each one. It is safe for concurrent use; all
// callers share one token bucket.
type Pacer struct {
	name      string
	limiter   *rate.Limiter
	jitterMin time.Duration
	jitterMax time.Duration
	rand      func(n int64) int64
}

// NewPacer creates a pacer. interval <= 0 means no rate limit.
func NewPacer(name string, interval, jitterMin, jitterMax time.Duration) *Pacer {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	if jitterMax < jitterMin {
		jitterMax = jitterMin
	}
	return &Pacer{
		name:      name,
		limiter:   rate.NewLimiter(limit, 1),
		jitterMin: jitterMin,
		jitterMax: jitterMax,
		rand:      rand.Int64N,
	}
}

// Unpaced returns a pacer that never waits.
func Unpaced() *Pacer {
	return NewPacer("unpaced", 0, 0, 0)
}

// Wait blocks until the next call may proceed or ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pacer %s: %w", p.name, err)
	}

	d := p.jitter()
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("pacer %s: %w", p.name, ctx.Err())
	case <-t.C:
		return nil
	}
}

func (p *Pacer) jitter() time.Duration {
	spread := int64(p.jitterMax - p.jitterMin)
	if spread <= 0 {
		return p.jitterMin
	}
	return p.jitterMin + time.Duration(p.rand(spread+1))
}
