package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://translate.google.com"

	// The endpoint rejects long inputs, so text is truncated to this many
	// characters before the request is built.
	maxTextLength = 200
)

// GoogleTTS synthesizes speech through the public Google Translate
// text-to-speech endpoint. No API key is required.
type GoogleTTS struct {
	baseURL string
	client  *http.Client
}

// NewGoogleTTS creates a synthesizer against the public endpoint.
func NewGoogleTTS() *GoogleTTS {
	return &GoogleTTS{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// NewGoogleTTSWithBaseURL creates a synthesizer against a custom endpoint.
func NewGoogleTTSWithBaseURL(baseURL string) *GoogleTTS {
	t := NewGoogleTTS()
	t.baseURL = baseURL
	return t
}

func (t *GoogleTTS) Synthesize(ctx context.Context, text, language string) Result {
	if text == "" {
		return Result{Success: false, Error: "empty text"}
	}
	if runes := []rune(text); len(runes) > maxTextLength {
		text = string(runes[:maxTextLength])
	}

	code := ResolveLanguage(language)

	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", code)
	q.Set("q", text)
	reqURL := t.baseURL + "/translate_tts?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("building request: %v", err)}
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("speech request: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Success: false, Error: fmt.Sprintf("speech endpoint returned status %d", resp.StatusCode)}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("reading audio: %v", err)}
	}
	if len(audio) == 0 {
		return Result{Success: false, Error: "empty audio response"}
	}

	return Result{
		Success:     true,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		Language:    code,
		Format:      "mp3",
	}
}
