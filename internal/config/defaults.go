package config

// DefaultKnownSites is the fixed set of site names recognized in questions.
var DefaultKnownSites = []string{
	"mine a",
	"mine b",
	"mine c",
	"xi mine",
	"alpha mine",
	"beta mine",
}

// SupportedLanguages maps language codes to display names for speech synthesis.
var SupportedLanguages = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"hi": "Hindi",
	"zh": "Chinese",
	"ar": "Arabic",
	"pt": "Portuguese",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderMistral,
		Model:             "mistral-small-latest",
		FallbackProvider:  ProviderOllama,
		FallbackModel:     "mistral",
		EmbeddingProvider: ProviderOpenAI,
		EmbeddingModel:    "text-embedding-3-small",
		DataDir:           "data",
		TopK:              5,
		MaxAnswerTokens:   150,
		RequestsPerMinute: 60,
		DefaultLanguage:   "en",
		KnownSites:        DefaultKnownSites,
		Server: ServerConfig{
			Port:     5000,
			AllowAll: false,
		},
	}
}
