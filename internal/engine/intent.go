package engine

import "strings"

// Intent identifies which relational query plan a question maps to.
type Intent string

const (
	IntentIncidents        Intent = "incidents"
	IntentEquipment        Intent = "equipment"
	IntentEquipmentHistory Intent = "equipment_history"
	IntentProduction       Intent = "production"
	IntentFuel             Intent = "fuel"
	IntentQuality          Intent = "quality"
	IntentCompliance       Intent = "compliance"
	IntentMixed            Intent = "mixed"
)

// Timeframe narrows a production query to a calendar window.
type Timeframe string

const (
	TimeframeDefault    Timeframe = ""
	TimeframeLastMonth  Timeframe = "last_month"
	TimeframeThisMonth  Timeframe = "this_month"
	TimeframeLast30Days Timeframe = "last_30_days"
)

// Filter carries the entity hints extracted from a question.
type Filter struct {
	Site      string
	Timeframe Timeframe
}

// intentRules is evaluated in order; the first group with any keyword hit
// wins. Later groups never fire for a question already claimed by an
// earlier one, so a question mixing "incident" and "production" is an
// incidents question.
var intentRules = []struct {
	intent   Intent
	keywords []string
}{
	{IntentIncidents, []string{"incident", "accident", "safety", "casualt", "injur"}},
	{IntentEquipment, []string{"equipment", "machine", "maintenance", "repair", "breakdown"}},
	{IntentProduction, []string{"production", "output", "tons", "efficiency", "downtime"}},
	{IntentFuel, []string{"fuel", "energy", "consumption", "power"}},
	{IntentQuality, []string{"quality", "defect", "grade", "inspection"}},
	{IntentCompliance, []string{"compliance", "audit", "violation"}},
}

// historyWords switch an equipment question to its maintenance log.
var historyWords = []string{"history", "past", "last", "previous"}

// Classifier maps lowercased questions to an Intent and Filter. It is
// stateless apart from the site vocabulary it is built with.
type Classifier struct {
	sites []string
}

// NewClassifier builds a classifier that recognizes the given site names.
// Site names are matched as lowercase substrings of the question.
func NewClassifier(sites []string) *Classifier {
	lowered := make([]string, len(sites))
	for i, s := range sites {
		lowered[i] = strings.ToLower(s)
	}
	return &Classifier{sites: lowered}
}

// Classify returns the intent and extracted filters for a question.
// The question must already be lowercased by the caller.
func (c *Classifier) Classify(question string) (Intent, Filter) {
	filter := Filter{
		Site:      c.extractSite(question),
		Timeframe: extractTimeframe(question),
	}

	for _, rule := range intentRules {
		if containsAny(question, rule.keywords) {
			if rule.intent == IntentEquipment && containsAny(question, historyWords) {
				return IntentEquipmentHistory, filter
			}
			return rule.intent, filter
		}
	}
	return IntentMixed, filter
}

func (c *Classifier) extractSite(question string) string {
	for _, site := range c.sites {
		if strings.Contains(question, site) {
			return site
		}
	}
	return ""
}

func extractTimeframe(question string) Timeframe {
	switch {
	case strings.Contains(question, "last month"):
		return TimeframeLastMonth
	case strings.Contains(question, "this month"), strings.Contains(question, "current month"):
		return TimeframeThisMonth
	case strings.Contains(question, "last 30 days"), strings.Contains(question, "past 30 days"):
		return TimeframeLast30Days
	default:
		return TimeframeDefault
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
