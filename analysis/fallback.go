package analysis

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/psharda/insight/ontology"
)

// FallbackAnalyzer produces a rule-based AnalysisResult when the language
// model gateway is unavailable. It never runs when the gateway merely returns
// malformed output; that case belongs to the parser's heuristics.
type FallbackAnalyzer struct {
	weights Weights
}

// NewFallbackAnalyzer returns a FallbackAnalyzer with the given tuning.
func NewFallbackAnalyzer(w Weights) *FallbackAnalyzer {
	return &FallbackAnalyzer{weights: w}
}

var (
	// Two or three consecutive capitalized words read as a person name.
	personNameRe = regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\b`)

	clockTimeRe = regexp.MustCompile(`(?i)\b\d{1,2}:\d{2}(?:\s*[ap]m)?\b`)
	weekdayRe   = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	monthRe     = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)

	nameStatementRe = regexp.MustCompile(`\b(?i:my name is|i am called|call me)\s+([A-Z][A-Za-z]+(?:\s+[A-Z][A-Za-z]+)?)`)
	workStatementRe = regexp.MustCompile(`\b(?i:i work (?:at|for)|my company is|my employer is)\s+([A-Z][A-Za-z0-9&]+(?:\s+[A-Z][A-Za-z0-9&]+)*)`)
	likeStatementRe = regexp.MustCompile(`(?i)\b(?:i like|i enjoy|i love)\s+([a-zA-Z][a-zA-Z0-9 ]{1,40})`)
)

// Keyword buckets for personal-information typing. Order is the priority
// order: an identity hit wins over a work hit, and so on down.
var personalInfoBuckets = []struct {
	label    string
	keywords []string
}{
	{"identity", []string{"my name", "i am called", "call me", "who i am"}},
	{"work", []string{"work", "job", "company", "employer", "office", "career"}},
	{"interests", []string{"i like", "i enjoy", "i love", "hobby", "interest"}},
	{"background", []string{"grew up", "born in", "studied", "graduated", "i am from"}},
	{"skills", []string{"good at", "skilled", "i can", "know how", "expert"}},
}

// Analyze builds a degraded analysis from surface patterns alone.
func (f *FallbackAnalyzer) Analyze(content string, hints []ontology.Classification) *AnalysisResult {
	r := &AnalysisResult{
		Content:              content,
		SemanticConcepts:     []SemanticConcept{},
		ExtractedEntities:    f.extractEntities(content),
		Relationships:        []Relationship{},
		ContextUnderstanding: f.understand(content),
		ConfidenceScore:      f.weights.FallbackConfidence,
		Reasoning:            "Rule-based analysis; language model unavailable.",
		SuggestedProperties:  map[string]string{},
		SemanticTags:         []string{},
		Degraded:             true,
		AnalyzedAt:           time.Now().UTC(),
	}

	// Best ontology hint doubles as a concept and the domain classification.
	if len(hints) > 0 {
		best := hints[0]
		r.SemanticConcepts = append(r.SemanticConcepts, SemanticConcept{
			Concept:     best.Domain,
			Relevance:   clamp01(best.Score),
			Type:        ConceptOntologyDerived,
			Description: fmt.Sprintf("matched ontology category %s", best.Category),
		})
		r.DomainClassification = DomainClassification{
			PrimaryDomain: best.Domain,
			Confidence:    clamp01(best.Score),
		}
		r.SemanticTags = append(r.SemanticTags, best.Domain)
	}

	if pit := r.ContextUnderstanding.PersonalInformationType; pit != "none" {
		r.SemanticTags = append(r.SemanticTags, pit)
	}

	return r
}

// extractEntities runs the surface-pattern extractors.
func (f *FallbackAnalyzer) extractEntities(content string) []Entity {
	entities := []Entity{}
	seen := map[string]bool{}

	add := func(e Entity) {
		key := e.Type + "|" + strings.ToLower(e.Value)
		if seen[key] {
			return
		}
		seen[key] = true
		entities = append(entities, e)
	}

	for _, m := range nameStatementRe.FindAllStringSubmatch(content, -1) {
		add(Entity{
			Entity:            m[1],
			Type:              "personal_fact",
			Value:             strings.TrimSpace(m[1]),
			Context:           "stated name",
			Importance:        0.9,
			PersonalRelevance: 1.0,
		})
	}
	for _, m := range workStatementRe.FindAllStringSubmatch(content, -1) {
		add(Entity{
			Entity:            strings.TrimSpace(m[1]),
			Type:              "personal_fact",
			Value:             strings.TrimSpace(m[1]),
			Context:           "stated employer",
			Importance:        0.7,
			PersonalRelevance: 0.8,
		})
	}
	for _, m := range likeStatementRe.FindAllStringSubmatch(content, -1) {
		add(Entity{
			Entity:            strings.TrimSpace(m[1]),
			Type:              "personal_fact",
			Value:             strings.TrimSpace(m[1]),
			Context:           "stated preference",
			Importance:        0.5,
			PersonalRelevance: 0.7,
		})
	}

	for _, m := range personNameRe.FindAllString(content, -1) {
		// Skip spans already captured as personal facts.
		if seen["personal_fact|"+strings.ToLower(m)] {
			continue
		}
		add(Entity{
			Entity:            m,
			Type:              "person",
			Value:             m,
			Importance:        0.5,
			PersonalRelevance: 0.4,
		})
	}

	for _, m := range clockTimeRe.FindAllString(content, -1) {
		add(Entity{Entity: m, Type: "time", Value: m, Importance: 0.4})
	}
	for _, m := range weekdayRe.FindAllString(content, -1) {
		add(Entity{Entity: m, Type: "date", Value: m, Importance: 0.4})
	}
	for _, m := range monthRe.FindAllString(content, -1) {
		add(Entity{Entity: m, Type: "date", Value: m, Importance: 0.4})
	}

	return entities
}

// understand fills ContextUnderstanding from keyword scans.
func (f *FallbackAnalyzer) understand(content string) ContextUnderstanding {
	cu := coerceContextUnderstanding(nil)
	cu.PrimaryIntent = "record_information"
	cu.UrgencyLevel = "low"
	cu.PersonalInformationType = classifyPersonalInfo(content)
	return cu
}

// classifyPersonalInfo returns the highest-priority bucket whose keywords
// appear in the content, or "none".
func classifyPersonalInfo(content string) string {
	lowered := strings.ToLower(content)
	for _, bucket := range personalInfoBuckets {
		for _, kw := range bucket.keywords {
			if strings.Contains(lowered, kw) {
				return bucket.label
			}
		}
	}
	return "none"
}
