package engine

import "fmt"

const answerSystemPrompt = `You are a mining operations assistant. Answer using only the provided context.
Respond with short bullet points, at most 5. Be specific: cite figures, dates
and equipment IDs from the context. If the context does not contain the
answer, say so briefly.`

func answerPrompt(contextText, question string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer in concise bullet points:", contextText, question)
}

const recommendationSystemPrompt = `You are a mining operations advisor. Based on the question, answer and
current metrics, suggest concrete next actions. Respond with up to 4 short
recommendations, one per line, no numbering.`

func recommendationPrompt(question, answerSummary, kpiJSON, chartJSON string) string {
	return fmt.Sprintf(
		"Question: %s\n\nAnswer summary: %s\n\nCurrent KPIs: %s\n\nChart data: %s\n\nRecommended actions:",
		question, answerSummary, kpiJSON, chartJSON)
}

// compactRecommendationPrompt is used against the fallback provider, which
// is typically a smaller local model.
func compactRecommendationPrompt(question, kpiJSON string) string {
	return fmt.Sprintf(
		"Mining operations question: %s\nKPIs: %s\nList up to 4 short recommended actions, one per line:",
		question, kpiJSON)
}
