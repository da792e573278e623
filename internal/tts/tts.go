package tts

import "context"

// Result is the outcome of a synthesis attempt. Synthesis is best-effort:
// failures are reported in the result rather than as errors so callers can
// attach whatever they got and move on.
type Result struct {
	Success     bool   `json:"success"`
	AudioBase64 string `json:"audio_base64,omitempty"`
	Language    string `json:"language,omitempty"`
	Format      string `json:"format,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Synthesizer converts text to speech audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, language string) Result
}

// languageCodes maps the assistant's language identifiers to the codes the
// speech backend expects. Unknown languages fall back to English.
var languageCodes = map[string]string{
	"en": "en",
	"es": "es",
	"fr": "fr",
	"de": "de",
	"hi": "hi",
	"zh": "zh-CN",
	"ar": "ar",
	"pt": "pt",
}

// ResolveLanguage returns the backend language code for an assistant
// language identifier.
func ResolveLanguage(language string) string {
	if code, ok := languageCodes[language]; ok {
		return code
	}
	return "en"
}

// SupportedLanguages lists the assistant language identifiers with speech
// support.
func SupportedLanguages() []string {
	return []string{"en", "es", "fr", "de", "hi", "zh", "ar", "pt"}
}
