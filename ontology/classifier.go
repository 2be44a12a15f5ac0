// Package ontology defines the domain-classification contract consumed by
// the analysis pipeline, plus a small rule-based classifier so the service
// can run without the full ontology sidecar.
package ontology

import (
	"sort"
	"strings"
)

// Classification is a candidate domain/category assignment for a piece of
// content. Classifications are hints supplied to the analysis pipeline, not
// ground truth; the pipeline may adjust Score and set the AI flags but never
// mutates the caller's slice.
type Classification struct {
	Domain      string  `json:"domain"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
	AIConfirmed bool    `json:"ai_confirmation,omitempty"`
	AIGenerated bool    `json:"ai_generated,omitempty"`
}

// Classifier produces ordered classification candidates for content,
// best-scored first.
type Classifier interface {
	Classify(content string) []Classification
}

// KeywordClassifier is a lightweight stand-in for the real ontology service.
// It scores domains by keyword hits and returns candidates ordered by score.
type KeywordClassifier struct {
	domains map[string]domainRule
}

type domainRule struct {
	category string
	keywords []string
}

// NewKeywordClassifier creates a classifier with the default domain rules.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{
		domains: map[string]domainRule{
			"personal": {
				category: "identity",
				keywords: []string{"my name", "i am", "call me", "myself", "my family", "my friend"},
			},
			"work": {
				category: "professional",
				keywords: []string{"work", "job", "company", "meeting", "project", "deadline", "client", "colleague"},
			},
			"interests": {
				category: "leisure",
				keywords: []string{"like", "enjoy", "love", "hobby", "music", "game", "movie", "book", "travel"},
			},
			"technology": {
				category: "technical",
				keywords: []string{"code", "software", "api", "server", "database", "computer", "app"},
			},
			"health": {
				category: "wellbeing",
				keywords: []string{"doctor", "exercise", "sleep", "diet", "medication", "appointment"},
			},
			"finance": {
				category: "money",
				keywords: []string{"pay", "salary", "invoice", "bank", "budget", "invest"},
			},
		},
	}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(content string) []Classification {
	lowered := strings.ToLower(content)

	var out []Classification
	for domain, rule := range c.domains {
		hits := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				hits++
			}
		}
		if hits == 0 {
			continue
		}
		score := 0.3 + 0.15*float64(hits)
		if score > 0.95 {
			score = 0.95
		}
		out = append(out, Classification{
			Domain:   domain,
			Category: rule.category,
			Score:    score,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}

// Ensure KeywordClassifier implements Classifier
var _ Classifier = (*KeywordClassifier)(nil)
