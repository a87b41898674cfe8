package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Waiter blocks outbound calls until the upstream quota allows another one.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Throttle limits outbound calls to limit per interval, with bursts of up to
// limit calls.
type Throttle struct {
	lim *rate.Limiter
}

var _ Waiter = (*Throttle)(nil)

// NewThrottle returns a Throttle allowing limit calls per interval.
func NewThrottle(limit int, interval time.Duration) *Throttle {
	if limit < 1 {
		limit = 1
	}
	return &Throttle{lim: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit)}
}

// Wait blocks until a call may proceed. It fails without consuming a slot
// when ctx ends first or its deadline falls before the slot.
func (t *Throttle) Wait(ctx context.Context) error {
	return t.lim.Wait(ctx)
}
