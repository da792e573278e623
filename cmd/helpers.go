package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mineops/assistant/internal/config"
	"github.com/mineops/assistant/internal/db"
	"github.com/mineops/assistant/internal/embeddings"
	"github.com/mineops/assistant/internal/llm"
	"github.com/mineops/assistant/internal/vectordb"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `mineops init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openDatabase opens the operational SQLite database under the data directory.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	return db.Open(filepath.Join(cfg.DataDir, "mineops.db"))
}

// createEmbedderFromConfig creates an embeddings.Embedder based on config.
func createEmbedderFromConfig(cfg *config.Config) (embeddings.Embedder, error) {
	provider := cfg.EmbeddingProvider
	if provider == "" {
		provider = cfg.Provider
	}

	switch provider {
	case config.ProviderOllama:
		return embeddings.NewOllamaEmbedder(cfg.EmbeddingModel, ""), nil
	default:
		// Mistral has no embedding endpoint here; OpenAI covers it.
		apiKey := os.Getenv(config.APIKeyEnvVar(config.ProviderOpenAI))
		if apiKey == "" {
			return nil, fmt.Errorf("%s environment variable is required for embeddings",
				config.APIKeyEnvVar(config.ProviderOpenAI))
		}
		return embeddings.NewOpenAIEmbedder(apiKey, embeddings.OpenAIModel(cfg.EmbeddingModel)), nil
	}
}

// openVectorStore creates the semantic index and loads any persisted data
// from the data directory. A missing snapshot is not an error; the store
// starts empty until `mineops seed` runs.
func openVectorStore(cfg *config.Config, embedder embeddings.Embedder) (vectordb.VectorStore, error) {
	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return nil, fmt.Errorf("creating vector store: %w", err)
	}

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := store.Load(context.Background(), vectorDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load vector store from %s: %v\n", vectorDir, err)
		fmt.Fprintf(os.Stderr, "Semantic search will be empty. Run `mineops seed` first.\n")
	}

	return store, nil
}

// createProviders builds the primary and fallback LLM providers. The
// primary is rate limited per config; the fallback is optional.
func createProviders(cfg *config.Config) (primary, fallback llm.Provider, err error) {
	primary, err = llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s provider: %w", cfg.Provider, err)
	}
	if cfg.RequestsPerMinute > 0 {
		primary = llm.NewRateLimitedProvider(primary, cfg.RequestsPerMinute)
	}

	if cfg.FallbackProvider != "" {
		fallback, err = llm.NewProvider(string(cfg.FallbackProvider), cfg.FallbackModel)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: fallback provider unavailable: %v\n", err)
			fallback = nil
		}
	}

	return primary, fallback, nil
}
