package analysis

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/psharda/insight/llm"
	"github.com/psharda/insight/ontology"
)

// Processor is the semantic analysis pipeline. All four entry points are
// total: a gateway failure degrades the result, it never propagates.
// A Processor is safe for concurrent use.
type Processor struct {
	gateway    llm.Client
	classifier ontology.Classifier

	prompts  *PromptBuilder
	fallback *FallbackAnalyzer
	enricher *Enricher
	cache    *QuestionCache
	history  *History

	weights           Weights
	maxTokens         int64
	maxMemoryContexts int
	flushOnModelSwap  bool

	// modelMu guards model, which SetModel may change while requests run.
	modelMu sync.Mutex
	model   string

	logger zerolog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithWeights overrides the heuristic tuning.
func WithWeights(w Weights) Option {
	return func(p *Processor) { p.weights = w }
}

// WithCachePolicy overrides the question-cache bounds.
func WithCachePolicy(policy CachePolicy) Option {
	return func(p *Processor) { p.cache = NewQuestionCache(policy) }
}

// WithHistoryCapacity bounds the operation history ring.
func WithHistoryCapacity(n int) Option {
	return func(p *Processor) { p.history = NewHistory(n) }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Processor) { p.logger = logger }
}

// WithModel pins the model passed on every gateway request.
func WithModel(model string) Option {
	return func(p *Processor) { p.model = model }
}

// WithMaxTokens bounds generation length per gateway request.
func WithMaxTokens(n int64) Option {
	return func(p *Processor) { p.maxTokens = n }
}

// WithMaxMemoryContexts caps how many memory contexts go into an answer
// prompt.
func WithMaxMemoryContexts(n int) Option {
	return func(p *Processor) { p.maxMemoryContexts = n }
}

// WithCacheFlushOnModelChange makes SetModel drop cached question analyses,
// since answers from a different model are not comparable.
func WithCacheFlushOnModelChange() Option {
	return func(p *Processor) { p.flushOnModelSwap = true }
}

// New creates a Processor. The gateway is required; classifier may be nil,
// in which case no ontology hints are produced.
func New(gateway llm.Client, classifier ontology.Classifier, opts ...Option) *Processor {
	p := &Processor{
		gateway:           gateway,
		classifier:        classifier,
		prompts:           NewPromptBuilder(),
		weights:           DefaultWeights(),
		maxTokens:         2048,
		maxMemoryContexts: 5,
		logger:            zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.cache == nil {
		p.cache = NewQuestionCache(DefaultCachePolicy())
	}
	if p.history == nil {
		p.history = NewHistory(256)
	}
	p.fallback = NewFallbackAnalyzer(p.weights)
	p.enricher = NewEnricher(p.weights)
	p.logger = p.logger.With().Str("component", "analysisProcessor").Logger()
	return p
}

// History exposes the operation history for reporting endpoints.
func (p *Processor) History() *History { return p.history }

// Cache exposes the question cache for maintenance sweeps.
func (p *Processor) Cache() *QuestionCache { return p.cache }

// SetModel changes the model used for gateway requests. When configured, the
// question cache is flushed so stale analyses from the old model don't leak.
func (p *Processor) SetModel(model string) {
	p.modelMu.Lock()
	changed := model != p.model
	if changed {
		p.model = model
	}
	p.modelMu.Unlock()

	if changed && p.flushOnModelSwap {
		p.cache.Flush()
		p.logger.Info().Str("model", model).Msg("Question cache flushed after model change")
	}
}

// Model returns the model currently used for gateway requests.
func (p *Processor) Model() string {
	p.modelMu.Lock()
	defer p.modelMu.Unlock()
	return p.model
}

// AnalyzeContent runs the full content-analysis pipeline. It never returns
// an error: gateway failures produce a rule-based degraded result, and
// malformed model output degrades through the parser's strategies.
func (p *Processor) AnalyzeContent(ctx context.Context, content string, userCtx map[string]any) *AnalysisResult {
	started := time.Now()
	userID := userIDFrom(userCtx)

	hints := p.classify(content)
	prompt := p.prompts.ContentAnalysis(content, hints, userCtx)

	var result *AnalysisResult
	resp, err := p.complete(ctx, prompt)
	if err != nil {
		p.logger.Warn().Err(err).Str("user_id", userID).Msg("Gateway unavailable, using rule-based analysis")
		result = p.fallback.Analyze(content, hints)
	} else {
		result = ParseContentAnalysis(resp.Text, content, p.weights)
	}

	result.Enrichment = p.enricher.Enrich(content, result, hints)
	result.OntologyCandidates = EnhanceClassifications(hints, result)
	result.SuggestedProperties["summary"] = GenerateSemanticSummary(result)

	p.history.Record(HistoryEntry{
		Operation:  OpAnalyzeContent,
		UserID:     userID,
		StartedAt:  started.UTC(),
		Duration:   time.Since(started),
		Confidence: result.ConfidenceScore,
		Degraded:   result.Degraded,
	})

	p.logger.Debug().
		Str("user_id", userID).
		Float64("confidence", result.ConfidenceScore).
		Bool("degraded", result.Degraded).
		Int("entities", len(result.ExtractedEntities)).
		Msg("Content analyzed")

	return result
}

// AnalyzeQuestion classifies a question, memoizing per normalized question
// and user. It never returns an error: model and parse failures fall back to
// keyword classification, which is also cached.
func (p *Processor) AnalyzeQuestion(ctx context.Context, question string, userCtx map[string]any) *QuestionAnalysis {
	started := time.Now()
	userID := userIDFrom(userCtx)
	key := CacheKey(question, userID)

	if cached := p.cache.Get(key); cached != nil {
		p.history.Record(HistoryEntry{
			Operation:  OpAnalyzeQuestion,
			UserID:     userID,
			StartedAt:  started.UTC(),
			Duration:   time.Since(started),
			Confidence: cached.Confidence,
			CacheHit:   true,
		})
		return cached
	}

	var qa *QuestionAnalysis
	degraded := false
	resp, err := p.complete(ctx, p.prompts.QuestionAnalysis(question, userCtx))
	if err == nil {
		if parsed, ok := ParseQuestionAnalysis(resp.Text); ok {
			qa = parsed
		}
	}
	if qa == nil {
		if err != nil {
			p.logger.Warn().Err(err).Str("user_id", userID).Msg("Gateway unavailable, classifying question by keywords")
		}
		qa = ClassifyQuestionByKeywords(question, p.weights)
		degraded = true
	}

	p.cache.Put(key, qa)
	p.history.Record(HistoryEntry{
		Operation:  OpAnalyzeQuestion,
		UserID:     userID,
		StartedAt:  started.UTC(),
		Duration:   time.Since(started),
		Confidence: qa.Confidence,
		Degraded:   degraded,
	})
	return qa
}

// GenerateAnswerFromContext answers a question from retrieved memory
// contexts. It never returns an error: an empty context set yields the fixed
// no-information answer and a gateway failure yields an apology.
func (p *Processor) GenerateAnswerFromContext(ctx context.Context, question string, contexts []MemoryContext, userID string) string {
	started := time.Now()
	if userID == "" {
		userID = "default"
	}

	if len(contexts) == 0 {
		p.recordAnswer(userID, started, false)
		return NoInformationAnswer(question)
	}
	if len(contexts) > p.maxMemoryContexts {
		contexts = contexts[:p.maxMemoryContexts]
	}

	resp, err := p.complete(ctx, p.prompts.AnswerGeneration(question, contexts))
	if err != nil {
		p.logger.Warn().Err(err).Str("user_id", userID).Msg("Gateway unavailable, returning apology answer")
		p.recordAnswer(userID, started, true)
		return GatewayApologyAnswer
	}

	p.recordAnswer(userID, started, false)
	return PostProcessAnswer(resp.Text, question)
}

// ExtractPersonalInformation pulls the six-category personal schema from
// content. It never returns an error: any failure yields an empty map.
func (p *Processor) ExtractPersonalInformation(ctx context.Context, content string, userCtx map[string]any) map[string]any {
	started := time.Now()
	userID := userIDFrom(userCtx)

	resp, err := p.complete(ctx, p.prompts.PersonalExtraction(content, userCtx))
	degraded := err != nil
	info := map[string]any{}
	if err == nil {
		info = ParsePersonalInformation(resp.Text)
	} else {
		p.logger.Warn().Err(err).Str("user_id", userID).Msg("Gateway unavailable, no personal information extracted")
	}

	p.history.Record(HistoryEntry{
		Operation: OpExtractPersonal,
		UserID:    userID,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Degraded:  degraded,
	})
	return info
}

// EnhanceOntologyClassifications re-scores externally supplied candidates
// against an analysis. Exposed for callers that run classification outside
// the analyze path.
func (p *Processor) EnhanceOntologyClassifications(hints []ontology.Classification, r *AnalysisResult) []ontology.Classification {
	return EnhanceClassifications(hints, r)
}

func (p *Processor) classify(content string) []ontology.Classification {
	if p.classifier == nil {
		return nil
	}
	return p.classifier.Classify(content)
}

func (p *Processor) complete(ctx context.Context, prompt string) (*llm.Response, error) {
	return p.gateway.Complete(ctx, &llm.Request{
		Model:     p.Model(),
		System:    p.prompts.SystemPrompt(),
		Prompt:    prompt,
		MaxTokens: p.maxTokens,
	})
}

func (p *Processor) recordAnswer(userID string, started time.Time, degraded bool) {
	p.history.Record(HistoryEntry{
		Operation: OpGenerateAnswer,
		UserID:    userID,
		StartedAt: started.UTC(),
		Duration:  time.Since(started),
		Degraded:  degraded,
	})
}
