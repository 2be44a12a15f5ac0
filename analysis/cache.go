package analysis

import (
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

// CachePolicy bounds the question-analysis cache. MaxEntries <= 0 disables
// caching entirely; TTL <= 0 means entries never expire by age.
type CachePolicy struct {
	MaxEntries int           `yaml:"max_entries"`
	TTL        time.Duration `yaml:"ttl"`
}

// DefaultCachePolicy returns the standard cache bounds.
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{MaxEntries: 1024, TTL: 0}
}

type cacheEntry struct {
	value    *QuestionAnalysis
	storedAt time.Time
}

// QuestionCache memoizes question analyses per normalized question and user.
// It is safe for concurrent use. Eviction is oldest-first when the entry
// bound is reached.
type QuestionCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	policy  CachePolicy
	now     func() time.Time
}

// NewQuestionCache creates a cache with the given policy.
func NewQuestionCache(policy CachePolicy) *QuestionCache {
	return &QuestionCache{
		entries: make(map[string]cacheEntry),
		policy:  policy,
		now:     time.Now,
	}
}

// CacheKey normalizes a question and user into the lookup key. Normalization
// is trim plus lowercase; an empty user becomes "default".
func CacheKey(question, userID string) string {
	if userID == "" {
		userID = "default"
	}
	return strings.ToLower(strings.TrimSpace(question)) + "|" + userID
}

// Get returns the cached analysis for the key, or nil on miss or expiry.
func (c *QuestionCache) Get(key string) *QuestionAnalysis {
	if c.policy.MaxEntries <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.policy.TTL > 0 && c.now().Sub(entry.storedAt) > c.policy.TTL {
		delete(c.entries, key)
		return nil
	}
	return entry.value
}

// Put stores an analysis, evicting the oldest entry when full.
func (c *QuestionCache) Put(key string, qa *QuestionAnalysis) {
	if c.policy.MaxEntries <= 0 || qa == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.policy.MaxEntries {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{value: qa, storedAt: c.now()}
}

// Len reports the number of live entries.
func (c *QuestionCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Flush drops every entry.
func (c *QuestionCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Sweep removes expired entries and reports how many were dropped.
func (c *QuestionCache) Sweep() int {
	if c.policy.TTL <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dropped := 0
	cutoff := c.now().Add(-c.policy.TTL)
	for key, entry := range c.entries {
		if entry.storedAt.Before(cutoff) {
			delete(c.entries, key)
			dropped++
		}
	}
	return dropped
}

func (c *QuestionCache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for key, entry := range c.entries {
		if first || entry.storedAt.Before(oldestAt) {
			oldestKey, oldestAt = key, entry.storedAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Question keyword buckets for the no-gateway classification path. Checked
// in order; first hit wins.
var questionKeywordBuckets = []struct {
	qtype    string
	keywords []string
}{
	{QuestionIdentity, []string{"my name", "who am i", "what am i called"}},
	{QuestionWork, []string{"work", "job", "company", "career", "employer"}},
	{QuestionInterests, []string{"like", "enjoy", "hobby", "hobbies", "interest", "favorite"}},
}

// ClassifyQuestionByKeywords is the terminal question-analysis fallback. It
// always returns a usable analysis with the keyword confidence.
func ClassifyQuestionByKeywords(question string, w Weights) *QuestionAnalysis {
	lowered := strings.ToLower(question)

	qtype := QuestionGeneral
	for _, bucket := range questionKeywordBuckets {
		if containsAny(lowered, bucket.keywords) {
			qtype = bucket.qtype
			break
		}
	}

	// Key terms are the words long enough to be worth matching.
	terms := lo.FilterMap(strings.Fields(lowered), func(word string, _ int) (string, bool) {
		word = strings.Trim(word, "?.,!'\"")
		return word, len(word) > 3
	})

	return &QuestionAnalysis{
		QuestionType:      qtype,
		InformationSought: []string{qtype + " information"},
		KeyTerms:          terms,
		SearchStrategies:  []string{"keyword"},
		Confidence:        w.KeywordQuestionConfidence,
		Reasoning:         "Keyword classification; model analysis unavailable.",
	}
}
