package llm

import (
	"context"
	"sync"
	"time"
)

// RateLimitedProvider paces requests to a wrapped Provider with a token
// bucket, keeping sustained throughput under the vendor's per-minute quota
// while still allowing short bursts.
type RateLimitedProvider struct {
	inner     Provider
	perMinute int

	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewRateLimitedProvider caps inner at perMinute requests per minute. The
// bucket starts full.
func NewRateLimitedProvider(inner Provider, perMinute int) Provider {
	return &RateLimitedProvider{
		inner:      inner,
		perMinute:  perMinute,
		tokens:     float64(perMinute),
		lastRefill: time.Now(),
	}
}

func (r *RateLimitedProvider) Name() string { return r.inner.Name() }

func (r *RateLimitedProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	return r.inner.Complete(ctx, req)
}

// acquire blocks until a token is available or the context ends.
func (r *RateLimitedProvider) acquire(ctx context.Context) error {
	for {
		r.mu.Lock()
		now := time.Now()
		r.tokens += now.Sub(r.lastRefill).Seconds() * float64(r.perMinute) / 60
		if r.tokens > float64(r.perMinute) {
			r.tokens = float64(r.perMinute)
		}
		r.lastRefill = now

		if r.tokens >= 1 {
			r.tokens--
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
