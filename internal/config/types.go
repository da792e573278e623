package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderMistral ProviderType = "mistral"
	ProviderOpenAI  ProviderType = "openai"
	ProviderOllama  ProviderType = "ollama"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all_origins" koanf:"allow_all_origins"`
}

// Config is the top-level mineops configuration, corresponding to .mineops.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	Model             string       `yaml:"model" koanf:"model"`
	FallbackProvider  ProviderType `yaml:"fallback_provider" koanf:"fallback_provider"`
	FallbackModel     string       `yaml:"fallback_model" koanf:"fallback_model"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`
	DataDir           string       `yaml:"data_dir" koanf:"data_dir"`
	TopK              int          `yaml:"top_k" koanf:"top_k"`
	MaxAnswerTokens   int          `yaml:"max_answer_tokens" koanf:"max_answer_tokens"`
	RequestsPerMinute int          `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	DefaultLanguage   string       `yaml:"default_language" koanf:"default_language"`
	KnownSites        []string     `yaml:"known_sites" koanf:"known_sites"`
	Server            ServerConfig `yaml:"server" koanf:"server"`
}
