package ratelimiter

import (
	"context"

	"golang.org/x/time/rate"
)

// Resource names an external dependency the service must not overdrive.
type Resource string

const (
	ResourceAlma   Resource = "alma"   // Alma REST API (item lookups, fixes, reports)
	ResourceSender Resource = "sender" // blob upload + sender-queue publish
)

// Limiters holds one token bucket limiter per external dependency.
// Each limiter enforces a steady-state rate (e.g. 20 tokens/sec).
// Burst is set equal to the rate so no extra burst capacity is allowed
// beyond the configured per-second maximum.
type Limiters struct {
	limiters map[Resource]*rate.Limiter
}

// New creates a Limiters with the given tokens-per-second budget for each
// dependency.
func New(almaPerSec, senderPerSec int) *Limiters {
	return &Limiters{
		limiters: map[Resource]*rate.Limiter{
			ResourceAlma:   rate.NewLimiter(rate.Limit(almaPerSec), almaPerSec),
			ResourceSender: rate.NewLimiter(rate.Limit(senderPerSec), senderPerSec),
		},
	}
}

// Wait blocks until the resource's limiter grants a token.
// Called immediately before each call to the external dependency.
// Returns a non-nil error only if ctx is cancelled while waiting.
func (l *Limiters) Wait(ctx context.Context, r Resource) error {
	return l.limiters[r].Wait(ctx)
}
