package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestRecommender_PrimaryTier(t *testing.T) {
	primary := &stubProvider{response: "Inspect crusher CR-04\nReview night shift staffing"}
	fallback := &stubProvider{response: "should not be used"}
	r := &recommender{primary: primary, fallback: fallback}

	recs := r.Recommend(context.Background(), "equipment status", "- answer", KPISet{}, nil)

	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d: %v", len(recs), recs)
	}
	if recs[0] != "Inspect crusher CR-04" {
		t.Errorf("unexpected first recommendation: %q", recs[0])
	}
	if fallback.callCount() != 0 {
		t.Errorf("fallback called %d times, want 0", fallback.callCount())
	}
}

func TestRecommender_FallbackTier(t *testing.T) {
	primary := &stubProvider{err: errors.New("overloaded")}
	fallback := &stubProvider{response: "- check fuel logs\n- schedule inspection"}
	r := &recommender{primary: primary, fallback: fallback}

	recs := r.Recommend(context.Background(), "fuel usage", "- answer", KPISet{}, nil)

	if len(recs) != 2 {
		t.Fatalf("expected 2 recommendations, got %d: %v", len(recs), recs)
	}
	if strings.HasPrefix(recs[0], "-") {
		t.Errorf("list marker not stripped: %q", recs[0])
	}
}

func TestRecommender_RuleBasedTier(t *testing.T) {
	primary := &stubProvider{err: errors.New("down")}
	fallback := &stubProvider{err: errors.New("also down")}
	r := &recommender{primary: primary, fallback: fallback}

	kpis := KPISet{CriticalAlerts: 3, AvgEfficiency: 72.5, TotalIncidents: 5}
	recs := r.Recommend(context.Background(), "status", "- answer", kpis, nil)

	if len(recs) == 0 {
		t.Fatal("recommendations must never be empty")
	}
	if len(recs) > maxRecommendations {
		t.Errorf("got %d recommendations, max is %d", len(recs), maxRecommendations)
	}
	if !strings.Contains(recs[0], "3 equipment units in critical state") {
		t.Errorf("expected critical alert recommendation first, got %q", recs[0])
	}
}

func TestRuleBasedRecommendations_Generic(t *testing.T) {
	recs := ruleBasedRecommendations("anything", KPISet{AvgEfficiency: 92})

	if len(recs) != maxRecommendations {
		t.Fatalf("expected %d generic recommendations, got %d", maxRecommendations, len(recs))
	}
	for _, rec := range recs {
		if rec == "" {
			t.Error("empty recommendation in generic set")
		}
	}
}

func TestParseRecommendations(t *testing.T) {
	raw := "1. First action\n2) Second action\n- Third action\n• Fourth action\nFifth action\nSixth action"
	recs := parseRecommendations(raw)

	if len(recs) != maxRecommendations {
		t.Fatalf("expected cap at %d, got %d: %v", maxRecommendations, len(recs), recs)
	}
	want := []string{"First action", "Second action", "Third action", "Fourth action"}
	for i, w := range want {
		if recs[i] != w {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i], w)
		}
	}
}

func TestParseRecommendations_Empty(t *testing.T) {
	if recs := parseRecommendations("  \n\n- \n"); len(recs) != 0 {
		t.Errorf("expected no recommendations from markers only, got %v", recs)
	}
}
