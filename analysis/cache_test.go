package analysis

import (
	"testing"
	"time"
)

func TestCacheKey_Normalization(t *testing.T) {
	if CacheKey("  What is my NAME? ", "u1") != CacheKey("what is my name?", "u1") {
		t.Error("Keys should normalize whitespace and case")
	}
	if CacheKey("q", "") != CacheKey("q", "default") {
		t.Error("Empty user should normalize to default")
	}
	if CacheKey("q", "u1") == CacheKey("q", "u2") {
		t.Error("Different users must get different keys")
	}
}

func TestQuestionCache_PutGet(t *testing.T) {
	c := NewQuestionCache(CachePolicy{MaxEntries: 10})
	qa := &QuestionAnalysis{QuestionType: QuestionWork}

	key := CacheKey("where do I work?", "u1")
	c.Put(key, qa)

	if got := c.Get(key); got != qa {
		t.Error("Expected the exact cached value back")
	}
	if got := c.Get(CacheKey("where do I work?", "u2")); got != nil {
		t.Error("Other users must not see the entry")
	}
}

func TestQuestionCache_DisabledWhenZero(t *testing.T) {
	c := NewQuestionCache(CachePolicy{MaxEntries: 0})
	c.Put("k", &QuestionAnalysis{})
	if c.Get("k") != nil || c.Len() != 0 {
		t.Error("A zero-entry policy must disable caching")
	}
}

func TestQuestionCache_EvictsOldest(t *testing.T) {
	c := NewQuestionCache(CachePolicy{MaxEntries: 2})
	now := time.Now()
	c.now = func() time.Time { now = now.Add(time.Second); return now }

	c.Put("a", &QuestionAnalysis{Reasoning: "a"})
	c.Put("b", &QuestionAnalysis{Reasoning: "b"})
	c.Put("c", &QuestionAnalysis{Reasoning: "c"})

	if c.Len() != 2 {
		t.Fatalf("Expected 2 entries after eviction, got %d", c.Len())
	}
	if c.Get("a") != nil {
		t.Error("Oldest entry should have been evicted")
	}
	if c.Get("b") == nil || c.Get("c") == nil {
		t.Error("Newer entries should survive eviction")
	}
}

func TestQuestionCache_TTLExpiry(t *testing.T) {
	c := NewQuestionCache(CachePolicy{MaxEntries: 10, TTL: time.Minute})
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("k", &QuestionAnalysis{})
	if c.Get("k") == nil {
		t.Fatal("Fresh entry should be readable")
	}

	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	if c.Get("k") != nil {
		t.Error("Expired entry should read as a miss")
	}
}

func TestQuestionCache_Sweep(t *testing.T) {
	c := NewQuestionCache(CachePolicy{MaxEntries: 10, TTL: time.Minute})
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("old", &QuestionAnalysis{})
	c.now = func() time.Time { return base.Add(2 * time.Minute) }
	c.Put("fresh", &QuestionAnalysis{})

	if dropped := c.Sweep(); dropped != 1 {
		t.Errorf("Expected 1 swept entry, got %d", dropped)
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 surviving entry, got %d", c.Len())
	}
}

func TestClassifyQuestionByKeywords(t *testing.T) {
	w := DefaultWeights()
	cases := []struct {
		question string
		want     string
	}{
		{"What is my name?", QuestionIdentity},
		{"Where do I work?", QuestionWork},
		{"What do I like doing?", QuestionInterests},
		{"Tell me something", QuestionGeneral},
	}
	for _, tc := range cases {
		qa := ClassifyQuestionByKeywords(tc.question, w)
		if qa.QuestionType != tc.want {
			t.Errorf("classify(%q) = %q, want %q", tc.question, qa.QuestionType, tc.want)
		}
		if qa.Confidence != w.KeywordQuestionConfidence {
			t.Errorf("Keyword classification confidence should be %f, got %f", w.KeywordQuestionConfidence, qa.Confidence)
		}
	}
}

func TestClassifyQuestionByKeywords_KeyTerms(t *testing.T) {
	qa := ClassifyQuestionByKeywords("Where do I work these days?", DefaultWeights())
	found := false
	for _, term := range qa.KeyTerms {
		if term == "work" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected 'work' among key terms, got %v", qa.KeyTerms)
	}
}
