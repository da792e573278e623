package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mineops/assistant/internal/llm"
)

const apologyMessage = "I'm sorry, I couldn't generate an answer right now. Please try again in a moment."

const maxAnswerBullets = 5

// answerBackoffs are the waits before each primary attempt. Only transient
// provider errors are retried; anything else falls through immediately.
var answerBackoffs = []time.Duration{0, 1 * time.Second, 2 * time.Second}

// answerGenerator produces the natural-language answer with a tiered
// fallback: retried primary provider, then the fallback provider, then a
// fixed apology.
type answerGenerator struct {
	primary   llm.Provider
	fallback  llm.Provider
	maxTokens int
	sleep     func(time.Duration)
}

func newAnswerGenerator(primary, fallback llm.Provider, maxTokens int) *answerGenerator {
	return &answerGenerator{
		primary:   primary,
		fallback:  fallback,
		maxTokens: maxTokens,
		sleep:     time.Sleep,
	}
}

// Generate returns a normalized bullet answer. It never returns an error:
// if every tier fails the apology message is returned.
func (g *answerGenerator) Generate(ctx context.Context, contextText, question string) string {
	req := llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: answerSystemPrompt},
			{Role: llm.RoleUser, Content: answerPrompt(contextText, question)},
		},
		MaxTokens:   g.maxTokens,
		Temperature: 0.3,
	}

	var tiers []strategy[string]
	if g.primary != nil {
		tiers = append(tiers, strategy[string]{
			name: "answer via " + g.primary.Name(),
			run: func(ctx context.Context) (string, error) {
				return g.completeWithRetry(ctx, g.primary, req)
			},
		})
	}
	if g.fallback != nil {
		tiers = append(tiers, strategy[string]{
			name: "answer via fallback " + g.fallback.Name(),
			run: func(ctx context.Context) (string, error) {
				return complete(ctx, g.fallback, req)
			},
		})
	}

	return runChain(ctx, tiers, apologyMessage)
}

// completeWithRetry retries the provider on transient failures only,
// waiting the configured backoff before each attempt.
func (g *answerGenerator) completeWithRetry(ctx context.Context, p llm.Provider, req llm.CompletionRequest) (string, error) {
	var lastErr error
	for _, wait := range answerBackoffs {
		if wait > 0 {
			g.sleep(wait)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		out, err := complete(ctx, p, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !llm.IsTransient(err) {
			break
		}
	}
	return "", lastErr
}

func complete(ctx context.Context, p llm.Provider, req llm.CompletionRequest) (string, error) {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	text := normalizeBullets(resp.Content)
	if text == "" {
		return "", errors.New("empty completion")
	}
	return text, nil
}

// normalizeBullets rewrites whatever bullet style the model produced into
// "- " lines, capped at maxAnswerBullets. Text that reduces to nothing but
// markers is returned as-is rather than discarded.
func normalizeBullets(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	// Models sometimes emit bullets inline instead of on their own lines.
	s = strings.ReplaceAll(s, " • ", "\n- ")
	s = strings.ReplaceAll(s, "• ", "\n- ")
	s = strings.ReplaceAll(s, " - ", "\n- ")

	var bullets []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimLeft(line, "-*• \t")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		bullets = append(bullets, "- "+line)
		if len(bullets) == maxAnswerBullets {
			break
		}
	}

	if len(bullets) == 0 {
		return strings.TrimSpace(raw)
	}
	return strings.Join(bullets, "\n")
}

// buildFullContext splices the semantic hits and the structured rendering
// into the single context block the prompt consumes.
func buildFullContext(semantic []string, structured StructuredContext) string {
	var parts []string
	if len(semantic) > 0 {
		parts = append(parts, strings.Join(semantic, "\n\n"))
	}
	parts = append(parts, fmt.Sprintf("Database Records:\n%s", structured.Text))
	return strings.Join(parts, "\n\n")
}
