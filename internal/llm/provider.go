package llm

import "context"

// Provider is a text-generation backend. The engine runs two of them, a
// primary and a fallback, behind this interface.
type Provider interface {
	// Complete runs a single chat completion.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Name identifies the backend in logs.
	Name() string
}
