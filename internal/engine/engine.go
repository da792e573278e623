package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mineops/assistant/internal/db"
	"github.com/mineops/assistant/internal/llm"
	"github.com/mineops/assistant/internal/tts"
	"github.com/mineops/assistant/internal/vectordb"
)

// greetings are matched against the whole trimmed, lowercased question.
var greetings = map[string]bool{
	"hi":    true,
	"hii":   true,
	"hello": true,
	"hlo":   true,
	"hey":   true,
	"hola":  true,
}

// domainKeywords let a short question through to the full pipeline. A
// question under three tokens with none of these gets the guidance
// response instead.
var domainKeywords = []string{
	"equipment", "production", "incident", "safety", "maintenance",
	"efficiency", "mine", "vector", "alerts", "kpi",
}

const (
	greetingMessage = "Hello! I'm your mining operations assistant. Ask me about production, equipment, incidents, safety or maintenance."

	infoMessage = "Please ask a more specific question about your mining operations, for example " +
		"\"show production for mine a last month\" or \"which equipment needs maintenance\"."
)

// Options configures a new Engine. DB is required; everything else is
// optional and degrades gracefully when absent.
type Options struct {
	DB              *db.DB
	Store           vectordb.VectorStore
	Primary         llm.Provider
	Fallback        llm.Provider
	TTS             tts.Synthesizer
	KnownSites      []string
	TopK            int
	MaxAnswerTokens int
	DefaultLanguage string
}

// Engine aggregates semantic and relational context for a question,
// generates an answer and recommendations with tiered fallback, and
// assembles the visualization payload. Query never returns an error; every
// failure mode maps to a well-formed Response.
type Engine struct {
	db         *db.DB
	store      vectordb.VectorStore
	tts        tts.Synthesizer
	classifier *Classifier
	contexts   *contextBuilder
	answers    *answerGenerator
	recs       *recommender
	viz        *vizAssembler

	topK        int
	defaultLang string
}

// New builds an Engine from options.
func New(opts Options) *Engine {
	topK := opts.TopK
	if topK <= 0 {
		topK = 5
	}
	maxTokens := opts.MaxAnswerTokens
	if maxTokens <= 0 {
		maxTokens = 150
	}
	lang := opts.DefaultLanguage
	if lang == "" {
		lang = "en"
	}

	return &Engine{
		db:          opts.DB,
		store:       opts.Store,
		tts:         opts.TTS,
		classifier:  NewClassifier(opts.KnownSites),
		contexts:    &contextBuilder{db: opts.DB},
		answers:     newAnswerGenerator(opts.Primary, opts.Fallback, maxTokens),
		recs:        &recommender{primary: opts.Primary, fallback: opts.Fallback},
		viz:         &vizAssembler{db: opts.DB},
		topK:        topK,
		defaultLang: lang,
	}
}

// Query runs the full pipeline for one question.
func (e *Engine) Query(ctx context.Context, question, language string) (resp *Response) {
	start := time.Now()
	if language == "" {
		language = e.defaultLang
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("engine: recovered from panic: %v", r)
			resp = e.errorResponse(ctx, fmt.Sprintf("Error processing query: %v", r), language)
		}
	}()

	q := strings.ToLower(strings.TrimSpace(question))

	if greetings[q] {
		return e.shortResponse(ctx, TypeGreeting, greetingMessage, language)
	}
	if q == "" || (len(strings.Fields(q)) < 3 && !containsAny(q, domainKeywords)) {
		return e.shortResponse(ctx, TypeInfo, infoMessage, language)
	}

	semantic, sources := e.semanticContext(ctx, question)

	intent, filter := e.classifier.Classify(q)
	structured := e.contexts.Build(ctx, intent, filter)

	answer := e.answers.Generate(ctx, buildFullContext(semantic, structured), question)

	kpis := e.viz.KPIs(ctx)
	charts := e.viz.Charts(ctx, q)
	recommendations := e.recs.Recommend(ctx, q, answer, kpis, charts)

	resp = &Response{
		Answer: answer,
		Type:   TypeAIResponse,
		Visualizations: Visualizations{
			KPIs:   &kpis,
			Charts: filterRelevantCharts(q, charts),
			Tables: tablesFrom(structured),
		},
		Recommendations: recommendations,
		Sources:         sources,
		Language:        language,
		Audio:           e.synthesize(ctx, answer, language),
	}

	e.logQuery(ctx, question, intent, TypeAIResponse, language, time.Since(start))
	return resp
}

// KPIs exposes the aggregate metrics panel on its own, for callers that
// want the numbers without running a query.
func (e *Engine) KPIs(ctx context.Context) KPISet {
	return e.viz.KPIs(ctx)
}

// semanticContext runs the vector search and splits the hits into prompt
// text and provenance. Search failure degrades to relational-only context.
func (e *Engine) semanticContext(ctx context.Context, question string) ([]string, []Source) {
	if e.store == nil {
		return nil, nil
	}

	results, err := e.store.Search(ctx, question, e.topK, nil)
	if err != nil {
		log.Printf("engine: semantic search failed: %v", err)
		return nil, nil
	}

	texts := make([]string, 0, len(results))
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Document.Content)
		sources = append(sources, Source{
			Source: r.Document.Metadata.Source,
			Type:   string(r.Document.Metadata.Type),
			Site:   r.Document.Metadata.Site,
			RowID:  r.Document.Metadata.RowID,
			Page:   r.Document.Metadata.Page,
		})
	}
	return texts, sources
}

// shortResponse builds the greeting and guidance responses. These carry no
// visualizations, recommendations or sources, and touch no stores.
func (e *Engine) shortResponse(ctx context.Context, rtype ResponseType, message, language string) *Response {
	return &Response{
		Answer:   message,
		Type:     rtype,
		Language: language,
		Audio:    e.synthesize(ctx, message, language),
	}
}

func (e *Engine) errorResponse(ctx context.Context, message, language string) *Response {
	return &Response{
		Answer:   message,
		Type:     TypeError,
		Language: language,
		Audio:    e.synthesize(ctx, message, language),
	}
}

// synthesize is best-effort: a failed synthesis attaches nothing.
func (e *Engine) synthesize(ctx context.Context, text, language string) *tts.Result {
	if e.tts == nil {
		return nil
	}
	res := e.tts.Synthesize(ctx, text, language)
	if !res.Success {
		log.Printf("engine: speech synthesis failed: %s", res.Error)
		return nil
	}
	return &res
}

func tablesFrom(structured StructuredContext) *DataTables {
	if structured.Empty() {
		return nil
	}

	lines := strings.SplitN(structured.Text, "\n\n", 2)
	tables := &DataTables{Summary: strings.TrimSpace(lines[0])}
	if len(lines) > 1 {
		tables.Preview = strings.TrimSpace(lines[1])
	}
	return tables
}

// logQuery records a completed pipeline run. Greeting and guidance
// responses are not logged; they never touch the database.
func (e *Engine) logQuery(ctx context.Context, question string, intent Intent, rtype ResponseType, language string, dur time.Duration) {
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO query_log (id, question, intent, response_type, language, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), question, string(intent), string(rtype), language, dur.Milliseconds())
	if err != nil {
		log.Printf("engine: recording query log: %v", err)
	}
}
