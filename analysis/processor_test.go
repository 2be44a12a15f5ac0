package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/psharda/insight/llm"
	"github.com/psharda/insight/ontology"
)

// stubGateway is a scripted llm.Client for pipeline tests.
type stubGateway struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
}

func (s *stubGateway) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text}, nil
}

func (s *stubGateway) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestProcessor(gw llm.Client, opts ...Option) *Processor {
	return New(gw, ontology.NewKeywordClassifier(), opts...)
}

func TestAnalyzeContent_HappyPath(t *testing.T) {
	gw := &stubGateway{text: validAnalysisJSON}
	p := newTestProcessor(gw)

	r := p.AnalyzeContent(context.Background(), "I work at Acme Corp", nil)

	if r.Degraded {
		t.Error("Successful gateway call must not be degraded")
	}
	if r.ConfidenceScore != 0.9 {
		t.Errorf("Expected model confidence, got %f", r.ConfidenceScore)
	}
	if r.Enrichment == nil {
		t.Fatal("Enrichment must always be attached")
	}
	if r.SuggestedProperties["summary"] == "" {
		t.Error("Summary must always be attached")
	}
}

func TestAnalyzeContent_GatewayFailureDegrades(t *testing.T) {
	gw := &stubGateway{err: errors.New("connection refused")}
	p := newTestProcessor(gw)

	r := p.AnalyzeContent(context.Background(), "My name is Priya and I work at Initech", nil)

	if !r.Degraded {
		t.Error("Gateway failure must produce a degraded result")
	}
	if r.ConfidenceScore != 0.3 {
		t.Errorf("Degraded confidence should be 0.3, got %f", r.ConfidenceScore)
	}
	if len(r.ExtractedEntities) == 0 {
		t.Error("Rule-based extraction should still find entities")
	}
	if r.Enrichment == nil {
		t.Error("Enrichment runs even when degraded")
	}
}

func TestAnalyzeContent_MalformedOutputUsesParserNotFallback(t *testing.T) {
	gw := &stubGateway{text: "I could not produce JSON for this content about work."}
	p := newTestProcessor(gw)

	r := p.AnalyzeContent(context.Background(), "some content", nil)

	// Malformed output is a parser concern; the rule-based analyzer is
	// reserved for gateway failures.
	if r.Degraded {
		t.Error("Malformed output must not be marked degraded")
	}
	if r.ConfidenceScore != 0.5 {
		t.Errorf("Expected heuristic confidence 0.5, got %f", r.ConfidenceScore)
	}
}

func TestAnalyzeQuestion_Memoizes(t *testing.T) {
	gw := &stubGateway{text: `{"question_type": "work", "confidence": 0.8}`}
	p := newTestProcessor(gw)
	ctx := context.Background()

	first := p.AnalyzeQuestion(ctx, "Where do I work?", map[string]any{"user_id": "u1"})
	second := p.AnalyzeQuestion(ctx, "  where do i WORK?  ", map[string]any{"user_id": "u1"})

	if gw.callCount() != 1 {
		t.Errorf("Second call should be served from cache, gateway saw %d calls", gw.callCount())
	}
	if first != second {
		t.Error("Cache should return the identical analysis")
	}
}

func TestAnalyzeQuestion_UsersIsolated(t *testing.T) {
	gw := &stubGateway{text: `{"question_type": "work", "confidence": 0.8}`}
	p := newTestProcessor(gw)
	ctx := context.Background()

	p.AnalyzeQuestion(ctx, "where do I work?", map[string]any{"user_id": "u1"})
	p.AnalyzeQuestion(ctx, "where do I work?", map[string]any{"user_id": "u2"})

	if gw.callCount() != 2 {
		t.Errorf("Different users must not share cache entries, gateway saw %d calls", gw.callCount())
	}
}

func TestAnalyzeQuestion_FallsBackToKeywords(t *testing.T) {
	gw := &stubGateway{err: errors.New("unreachable")}
	p := newTestProcessor(gw)

	qa := p.AnalyzeQuestion(context.Background(), "What is my name?", nil)

	if qa.QuestionType != QuestionIdentity {
		t.Errorf("Expected keyword identity classification, got %q", qa.QuestionType)
	}
	if qa.Confidence != 0.6 {
		t.Errorf("Keyword fallback confidence should be 0.6, got %f", qa.Confidence)
	}

	// The fallback result is cached too; a second call stays local.
	p.AnalyzeQuestion(context.Background(), "What is my name?", nil)
	if gw.callCount() != 1 {
		t.Errorf("Fallback analyses should be cached, gateway saw %d calls", gw.callCount())
	}
}

func TestGenerateAnswer_EmptyContexts(t *testing.T) {
	gw := &stubGateway{text: "should never be called"}
	p := newTestProcessor(gw)

	got := p.GenerateAnswerFromContext(context.Background(), "where do I work?", nil, "u1")

	if got != NoInformationAnswer("where do I work?") {
		t.Errorf("Empty contexts should yield the fixed message, got %q", got)
	}
	if gw.callCount() != 0 {
		t.Error("Empty contexts must not hit the gateway")
	}
}

func TestGenerateAnswer_GatewayFailureApologizes(t *testing.T) {
	gw := &stubGateway{err: errors.New("unreachable")}
	p := newTestProcessor(gw)

	got := p.GenerateAnswerFromContext(context.Background(), "q", []MemoryContext{{Content: "c"}}, "u1")
	if got != GatewayApologyAnswer {
		t.Errorf("Expected the apology answer, got %q", got)
	}
}

func TestGenerateAnswer_PostProcesses(t *testing.T) {
	gw := &stubGateway{text: "Based on the memories, you work at Initech"}
	p := newTestProcessor(gw)

	got := p.GenerateAnswerFromContext(context.Background(), "q", []MemoryContext{{Content: "I work at Initech"}}, "u1")
	if got != "You work at Initech." {
		t.Errorf("Answer should be post-processed, got %q", got)
	}
}

func TestGenerateAnswer_CapsContexts(t *testing.T) {
	gw := &stubGateway{text: "a sufficiently long answer here"}
	p := newTestProcessor(gw, WithMaxMemoryContexts(2))

	contexts := []MemoryContext{{Content: "one"}, {Content: "two"}, {Content: "three"}}
	p.GenerateAnswerFromContext(context.Background(), "q", contexts, "u1")
	// No assertion on prompt internals; the cap just must not panic or
	// mutate the caller's slice.
	if len(contexts) != 3 {
		t.Error("Caller's context slice must not change length")
	}
}

func TestExtractPersonalInformation(t *testing.T) {
	gw := &stubGateway{text: `{"identity": {"name": "Priya"}, "personal_facts": ["works at Initech"], "confidence": 0.8}`}
	p := newTestProcessor(gw)

	info := p.ExtractPersonalInformation(context.Background(), "My name is Priya", nil)
	identity, ok := info["identity"].(map[string]any)
	if !ok || identity["name"] != "Priya" {
		t.Errorf("Unexpected extraction: %v", info)
	}
}

func TestExtractPersonalInformation_EmptyOnFailure(t *testing.T) {
	for _, gw := range []*stubGateway{
		{err: errors.New("unreachable")},
		{text: "I refuse to answer in JSON"},
	} {
		p := newTestProcessor(gw)
		info := p.ExtractPersonalInformation(context.Background(), "content", nil)
		if info == nil || len(info) != 0 {
			t.Errorf("Expected empty map, got %v", info)
		}
	}
}

func TestProcessor_EntryPointsAreTotal(t *testing.T) {
	// Every entry point must return a usable value with a dead gateway.
	gw := &stubGateway{err: errors.New("dead")}
	p := newTestProcessor(gw)
	ctx := context.Background()

	if r := p.AnalyzeContent(ctx, "content", nil); r == nil {
		t.Error("AnalyzeContent returned nil")
	}
	if qa := p.AnalyzeQuestion(ctx, "question?", nil); qa == nil {
		t.Error("AnalyzeQuestion returned nil")
	}
	if a := p.GenerateAnswerFromContext(ctx, "q", []MemoryContext{{Content: "c"}}, ""); a == "" {
		t.Error("GenerateAnswerFromContext returned empty")
	}
	if info := p.ExtractPersonalInformation(ctx, "content", nil); info == nil {
		t.Error("ExtractPersonalInformation returned nil")
	}
}

func TestProcessor_HistoryRecordsOperations(t *testing.T) {
	gw := &stubGateway{text: validAnalysisJSON}
	p := newTestProcessor(gw)
	ctx := context.Background()

	p.AnalyzeContent(ctx, "content", nil)
	p.AnalyzeQuestion(ctx, "q?", nil)
	p.AnalyzeQuestion(ctx, "q?", nil)

	s := p.History().Stats()
	if s.ByOp[OpAnalyzeContent] != 1 || s.ByOp[OpAnalyzeQuestion] != 2 {
		t.Errorf("Unexpected history stats: %+v", s)
	}
	if s.CacheHits != 1 {
		t.Errorf("Expected 1 cache hit recorded, got %d", s.CacheHits)
	}
}

func TestProcessor_SetModelFlushesCache(t *testing.T) {
	gw := &stubGateway{text: `{"question_type": "work", "confidence": 0.8}`}
	p := newTestProcessor(gw, WithCacheFlushOnModelChange())
	ctx := context.Background()

	p.AnalyzeQuestion(ctx, "where do I work?", nil)
	if p.Cache().Len() != 1 {
		t.Fatal("Expected a cached analysis")
	}

	p.SetModel("other-model")
	if p.Cache().Len() != 0 {
		t.Error("Model change should flush the cache")
	}
}

func TestProcessor_ConcurrentQuestions(t *testing.T) {
	gw := &stubGateway{text: `{"question_type": "general", "confidence": 0.5}`}
	p := newTestProcessor(gw)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q := "question " + strings.Repeat("x", n%4)
			p.AnalyzeQuestion(context.Background(), q, nil)
		}(i)
	}
	wg.Wait()

	if p.Cache().Len() != 4 {
		t.Errorf("Expected 4 distinct cached questions, got %d", p.Cache().Len())
	}
}

func TestProcessor_ConcurrentModelSwap(t *testing.T) {
	gw := &stubGateway{text: `{"question_type": "general", "confidence": 0.5}`}
	p := newTestProcessor(gw)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				p.SetModel("model-" + strings.Repeat("x", n))
			} else {
				p.AnalyzeQuestion(context.Background(), "question "+strings.Repeat("x", n), nil)
			}
		}(i)
	}
	wg.Wait()

	if p.Model() == "" {
		t.Error("Expected a model to be set after concurrent swaps")
	}
}
