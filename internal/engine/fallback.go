package engine

import (
	"context"
	"log"
)

// strategy is one tier in a fallback chain. Tiers are tried in order and
// the first success wins.
type strategy[T any] struct {
	name string
	run  func(ctx context.Context) (T, error)
}

// runChain executes strategies in order, returning the first successful
// result. Failures are logged and the chain moves on; if every tier fails
// the final value is returned.
func runChain[T any](ctx context.Context, strategies []strategy[T], final T) T {
	for _, s := range strategies {
		out, err := s.run(ctx)
		if err == nil {
			return out
		}
		log.Printf("engine: %s failed: %v", s.name, err)
	}
	return final
}
