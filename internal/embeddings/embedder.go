package embeddings

import "context"

// Embedder turns text into vectors for the semantic index. Implementations
// wrap a remote embedding service and are safe for concurrent use.
type Embedder interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions reports the width of the vectors this embedder produces.
	Dimensions() int

	// Name identifies the backing model, for logs and snapshot metadata.
	Name() string
}
