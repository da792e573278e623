package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mineops/assistant/internal/llm"
)

const maxRecommendations = 4

// recommender produces follow-up actions with three tiers: the primary
// provider, then the fallback provider with a compact prompt, then a
// rule-based set derived from the KPIs. The rule tier cannot fail, so the
// result is never empty.
type recommender struct {
	primary  llm.Provider
	fallback llm.Provider
}

func (r *recommender) Recommend(ctx context.Context, question, answer string, kpis KPISet, charts Charts) []string {
	kpiJSON, _ := json.Marshal(kpis)
	chartJSON, _ := json.Marshal(chartDigest(charts))

	var tiers []strategy[[]string]
	if r.primary != nil {
		tiers = append(tiers, strategy[[]string]{
			name: "recommendations via " + r.primary.Name(),
			run: func(ctx context.Context) ([]string, error) {
				return r.fromProvider(ctx, r.primary, llm.CompletionRequest{
					Messages: []llm.Message{
						{Role: llm.RoleSystem, Content: recommendationSystemPrompt},
						{Role: llm.RoleUser, Content: recommendationPrompt(question, summarize(answer), string(kpiJSON), string(chartJSON))},
					},
					MaxTokens:   200,
					Temperature: 0.5,
				})
			},
		})
	}
	if r.fallback != nil {
		tiers = append(tiers, strategy[[]string]{
			name: "recommendations via fallback " + r.fallback.Name(),
			run: func(ctx context.Context) ([]string, error) {
				return r.fromProvider(ctx, r.fallback, llm.CompletionRequest{
					Messages: []llm.Message{
						{Role: llm.RoleUser, Content: compactRecommendationPrompt(question, string(kpiJSON))},
					},
					MaxTokens:   150,
					Temperature: 0.5,
				})
			},
		})
	}

	return runChain(ctx, tiers, ruleBasedRecommendations(question, kpis))
}

func (r *recommender) fromProvider(ctx context.Context, p llm.Provider, req llm.CompletionRequest) ([]string, error) {
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	recs := parseRecommendations(resp.Content)
	if len(recs) == 0 {
		return nil, fmt.Errorf("no usable recommendations in completion")
	}
	return recs, nil
}

// parseRecommendations splits a completion into individual actions,
// stripping whatever list markers the model chose.
func parseRecommendations(raw string) []string {
	var recs []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*•0123456789.) \t")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		recs = append(recs, line)
		if len(recs) == maxRecommendations {
			break
		}
	}
	return recs
}

// ruleBasedRecommendations is the last tier. It keys off the KPI values so
// the advice stays grounded even with no model available.
func ruleBasedRecommendations(question string, kpis KPISet) []string {
	var recs []string

	if kpis.CriticalAlerts > 0 {
		recs = append(recs, fmt.Sprintf("Immediate attention needed: %d equipment units in critical state", kpis.CriticalAlerts))
	}
	if kpis.AvgEfficiency > 0 && kpis.AvgEfficiency < 80 {
		recs = append(recs, fmt.Sprintf("Average efficiency is %.1f%%; review underperforming sites and shifts", kpis.AvgEfficiency))
	}
	if kpis.TotalIncidents > 0 {
		recs = append(recs, fmt.Sprintf("Review the %d recorded incidents for recurring causes", kpis.TotalIncidents))
	}

	switch {
	case containsAny(question, []string{"equipment", "machine", "maintenance"}):
		recs = append(recs, "Schedule preventive maintenance for equipment running below target efficiency")
	case containsAny(question, []string{"production", "output", "efficiency"}):
		recs = append(recs, "Compare production output against monthly targets per site")
	case containsAny(question, []string{"safety", "incident"}):
		recs = append(recs, "Walk through recent incident reports with site supervisors")
	}

	if len(recs) == 0 {
		recs = []string{
			"Monitor equipment status dashboards for early warnings",
			"Compare production output against monthly targets",
			"Schedule preventive maintenance for high-usage equipment",
			"Review recent safety compliance audit findings",
		}
	}

	if len(recs) > maxRecommendations {
		recs = recs[:maxRecommendations]
	}
	return recs
}

// chartDigest trims chart series to their first points so the prompt stays
// small.
func chartDigest(charts Charts) Charts {
	digest := make(Charts, len(charts))
	for name, series := range charts {
		if len(series) > 2 {
			series = series[:2]
		}
		digest[name] = series
	}
	return digest
}

// summarize shortens an answer for inclusion in the recommendation prompt.
func summarize(answer string) string {
	const max = 300
	if len(answer) > max {
		return answer[:max] + "..."
	}
	return answer
}
