package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/mineops/assistant/internal/tts"
	"github.com/mineops/assistant/internal/vectordb"
)

// stubStore is a scripted vectordb.VectorStore.
type stubStore struct {
	results  []vectordb.SearchResult
	searches int
	panics   bool
}

func (s *stubStore) AddDocuments(context.Context, []vectordb.Document) error { return nil }
func (s *stubStore) DeleteBySource(context.Context, string) error            { return nil }
func (s *stubStore) Persist(context.Context, string) error                   { return nil }
func (s *stubStore) Load(context.Context, string) error                      { return nil }
func (s *stubStore) Count() int                                              { return len(s.results) }

func (s *stubStore) Search(context.Context, string, int, *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	s.searches++
	if s.panics {
		panic("index corrupted")
	}
	return s.results, nil
}

// stubTTS records synthesis requests.
type stubTTS struct {
	calls int
}

func (s *stubTTS) Synthesize(_ context.Context, text, language string) tts.Result {
	s.calls++
	return tts.Result{Success: true, AudioBase64: "YXVkaW8=", Language: language, Format: "mp3"}
}

func TestEngine_GreetingShortCircuit(t *testing.T) {
	store := &stubStore{}
	// No database: a greeting that touched any store would panic and
	// surface as an error response.
	e := New(Options{Store: store, TTS: &stubTTS{}})

	for _, q := range []string{"hi", "Hello", "  HEY  ", "hola"} {
		resp := e.Query(context.Background(), q, "en")
		if resp.Type != TypeGreeting {
			t.Errorf("Query(%q) type = %s, want greeting", q, resp.Type)
		}
		if resp.Answer == "" {
			t.Errorf("Query(%q) returned empty answer", q)
		}
		if resp.Visualizations.KPIs != nil || len(resp.Visualizations.Charts) != 0 {
			t.Errorf("Query(%q) greeting must carry no visualizations", q)
		}
		if len(resp.Recommendations) != 0 || len(resp.Sources) != 0 {
			t.Errorf("Query(%q) greeting must carry no recommendations or sources", q)
		}
	}

	if store.searches != 0 {
		t.Errorf("greeting performed %d semantic searches, want 0", store.searches)
	}
}

func TestEngine_ShortQuestionGuidance(t *testing.T) {
	store := &stubStore{}
	e := New(Options{Store: store})

	resp := e.Query(context.Background(), "how now", "en")
	if resp.Type != TypeInfo {
		t.Fatalf("type = %s, want info", resp.Type)
	}
	if store.searches != 0 {
		t.Errorf("guidance response performed %d searches, want 0", store.searches)
	}

	// A short question with a domain keyword goes through the pipeline.
	d := newTestDB(t)
	e = New(Options{DB: d, Primary: &stubProvider{response: "- ok"}})
	resp = e.Query(context.Background(), "equipment status", "en")
	if resp.Type != TypeAIResponse {
		t.Errorf("type = %s, want ai_response for domain keyword question", resp.Type)
	}
}

func TestEngine_FullPipeline(t *testing.T) {
	d := newTestDB(t)
	seedIncidents(t, d)

	store := &stubStore{
		results: []vectordb.SearchResult{
			{
				Document: vectordb.Document{
					Content: "Gas leak at Mine B required evacuation of the night shift.",
					Metadata: vectordb.DocumentMetadata{
						Source: "incidents.csv",
						Type:   vectordb.DocTypeIncidents,
						Site:   "mine b",
						RowID:  2,
					},
				},
				Similarity: 0.91,
			},
		},
	}
	synth := &stubTTS{}
	primary := &stubProvider{response: "• Critical gas leak at Mine B • Two medium incidents at Mine A"}

	e := New(Options{
		DB:         d,
		Store:      store,
		Primary:    primary,
		TTS:        synth,
		KnownSites: []string{"mine a", "mine b"},
	})

	resp := e.Query(context.Background(), "what incidents happened at mine b", "es")

	if resp.Type != TypeAIResponse {
		t.Fatalf("type = %s, want ai_response", resp.Type)
	}
	if !strings.HasPrefix(resp.Answer, "- ") {
		t.Errorf("answer not normalized to bullets: %q", resp.Answer)
	}
	if resp.Language != "es" {
		t.Errorf("language = %q, want es", resp.Language)
	}

	if resp.Visualizations.KPIs == nil {
		t.Fatal("missing KPIs")
	}
	if resp.Visualizations.KPIs.TotalIncidents != 4 {
		t.Errorf("TotalIncidents = %d, want 4", resp.Visualizations.KPIs.TotalIncidents)
	}
	if resp.Visualizations.Tables == nil {
		t.Fatal("missing tables")
	}
	if !strings.Contains(resp.Visualizations.Tables.Summary, "Retrieved 3 records") {
		t.Errorf("unexpected table summary: %q", resp.Visualizations.Tables.Summary)
	}

	if len(resp.Recommendations) == 0 || len(resp.Recommendations) > maxRecommendations {
		t.Errorf("got %d recommendations, want 1..%d", len(resp.Recommendations), maxRecommendations)
	}

	if len(resp.Sources) != 1 {
		t.Fatalf("got %d sources, want 1", len(resp.Sources))
	}
	if resp.Sources[0].Source != "incidents.csv" || resp.Sources[0].Site != "mine b" {
		t.Errorf("unexpected source: %+v", resp.Sources[0])
	}

	if resp.Audio == nil || !resp.Audio.Success {
		t.Error("expected synthesized audio on the response")
	}

	var logged int
	if err := d.QueryRow(`SELECT COUNT(*) FROM query_log`).Scan(&logged); err != nil {
		t.Fatalf("querying log: %v", err)
	}
	if logged != 1 {
		t.Errorf("query_log rows = %d, want 1", logged)
	}
}

func TestEngine_AnswerNeverEmpty(t *testing.T) {
	d := newTestDB(t)
	// No providers at all: every generation tier fails.
	e := New(Options{DB: d})

	resp := e.Query(context.Background(), "show production efficiency numbers", "en")
	if resp.Type != TypeAIResponse {
		t.Fatalf("type = %s, want ai_response", resp.Type)
	}
	if resp.Answer != apologyMessage {
		t.Errorf("answer = %q, want apology", resp.Answer)
	}
	if len(resp.Recommendations) == 0 {
		t.Error("rule-based recommendations must still be present")
	}
}

func TestEngine_PanicRecovery(t *testing.T) {
	d := newTestDB(t)
	e := New(Options{DB: d, Store: &stubStore{panics: true}})

	resp := e.Query(context.Background(), "what is the production status", "en")
	if resp == nil {
		t.Fatal("expected a response after panic")
	}
	if resp.Type != TypeError {
		t.Errorf("type = %s, want error", resp.Type)
	}
	if !strings.Contains(resp.Answer, "Error processing query") {
		t.Errorf("unexpected error answer: %q", resp.Answer)
	}
}

func TestEngine_DatabaseErrorInContext(t *testing.T) {
	d := newTestDB(t)
	d.Close()

	e := New(Options{DB: d, Primary: &stubProvider{response: "- degraded answer"}})
	resp := e.Query(context.Background(), "show recent incidents", "en")

	// A broken relational store degrades the context but the pipeline
	// still completes.
	if resp.Type != TypeAIResponse {
		t.Errorf("type = %s, want ai_response", resp.Type)
	}
	if resp.Answer != "- degraded answer" {
		t.Errorf("answer = %q", resp.Answer)
	}
}
