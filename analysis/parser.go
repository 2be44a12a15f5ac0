package analysis

import (
	"encoding/json"
	"strings"
	"time"
)

// Keyword buckets scanned by the plain-text heuristic when no JSON can be
// recovered from a model response.
var heuristicTagKeywords = map[string][]string{
	"personal": {"my name", "i am", "myself", "family", "friend"},
	"work":     {"work", "job", "company", "meeting", "office"},
	"identity": {"name", "call me", "who i am"},
	"project":  {"project", "build", "develop", "task"},
}

// ParseContentAnalysis recovers an AnalysisResult from raw model output.
// Strategies are tried in order: strip markdown fences and decode, decode the
// first-to-last brace span, then degrade to a plain-text heuristic. The
// function is total; it always returns a usable result.
func ParseContentAnalysis(raw, content string, w Weights) *AnalysisResult {
	if m, ok := decodeObject(raw); ok {
		return coerceAnalysis(m, content)
	}
	return heuristicAnalysis(raw, content, w)
}

// ParseQuestionAnalysis recovers a QuestionAnalysis from raw model output.
// Unlike content analysis there is no text heuristic here; a decode failure
// is reported so the caller can fall back to keyword classification.
func ParseQuestionAnalysis(raw string) (*QuestionAnalysis, bool) {
	m, ok := decodeObject(raw)
	if !ok {
		return nil, false
	}

	qa := &QuestionAnalysis{
		QuestionType:      asString(m["question_type"]),
		InformationSought: asStringSlice(m["information_sought"]),
		KeyTerms:          asStringSlice(m["key_terms"]),
		SearchStrategies:  asStringSlice(m["search_strategies"]),
		Confidence:        clamp01(asFloat(m["confidence"])),
		Reasoning:         asString(m["reasoning"]),
	}
	if qa.QuestionType == "" {
		qa.QuestionType = QuestionGeneral
	}
	if len(qa.SearchStrategies) == 0 {
		qa.SearchStrategies = []string{"keyword"}
	}
	return qa, true
}

// ParsePersonalInformation recovers the extraction schema from raw model
// output. On any decode failure it returns an empty map, never nil.
func ParsePersonalInformation(raw string) map[string]any {
	m, ok := decodeObject(raw)
	if !ok {
		return map[string]any{}
	}
	return m
}

// decodeObject runs the JSON recovery stages: fence strip plus direct
// unmarshal, then the outermost brace span.
func decodeObject(raw string) (map[string]any, bool) {
	cleaned := stripCodeFence(raw)

	var m map[string]any
	if err := json.Unmarshal([]byte(cleaned), &m); err == nil && m != nil {
		return m, true
	}

	first := strings.Index(cleaned, "{")
	last := strings.LastIndex(cleaned, "}")
	if first >= 0 && last > first {
		if err := json.Unmarshal([]byte(cleaned[first:last+1]), &m); err == nil && m != nil {
			return m, true
		}
	}
	return nil, false
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// coerceAnalysis maps a decoded JSON object onto an AnalysisResult, filling
// neutral defaults for anything missing or mistyped.
func coerceAnalysis(m map[string]any, content string) *AnalysisResult {
	r := &AnalysisResult{
		Content:             content,
		SemanticConcepts:    []SemanticConcept{},
		ExtractedEntities:   []Entity{},
		Relationships:       []Relationship{},
		SuggestedProperties: map[string]string{},
		SemanticTags:        []string{},
		ConfidenceScore:     clamp01(asFloat(m["confidence_score"])),
		Reasoning:           asString(m["reasoning"]),
		AnalyzedAt:          time.Now().UTC(),
	}

	for _, cm := range asMapSlice(m["semantic_concepts"]) {
		concept := asString(cm["concept"])
		if concept == "" {
			continue
		}
		r.SemanticConcepts = append(r.SemanticConcepts, SemanticConcept{
			Concept:     concept,
			Relevance:   clamp01(asFloat(cm["relevance"])),
			Type:        defaultString(asString(cm["type"]), ConceptAbstract),
			Description: asString(cm["description"]),
		})
	}

	for _, em := range asMapSlice(m["extracted_entities"]) {
		name := asString(em["entity"])
		if name == "" {
			continue
		}
		r.ExtractedEntities = append(r.ExtractedEntities, Entity{
			Entity:            name,
			Type:              defaultString(asString(em["type"]), "other"),
			Value:             defaultString(asString(em["value"]), name),
			Context:           asString(em["context"]),
			Importance:        clamp01(asFloat(em["importance"])),
			PersonalRelevance: clamp01(asFloat(em["personal_relevance"])),
		})
	}

	for _, rm := range asMapSlice(m["relationships"]) {
		src, dst := asString(rm["source"]), asString(rm["target"])
		if src == "" || dst == "" {
			continue
		}
		r.Relationships = append(r.Relationships, Relationship{
			Source:      src,
			Target:      dst,
			Type:        defaultString(asString(rm["relationship_type"]), "related_to"),
			Strength:    clamp01(asFloat(rm["strength"])),
			Description: asString(rm["description"]),
		})
	}

	cu, _ := m["context_understanding"].(map[string]any)
	r.ContextUnderstanding = coerceContextUnderstanding(cu)

	if dc, ok := m["domain_classification"].(map[string]any); ok {
		r.DomainClassification = DomainClassification{
			PrimaryDomain:    asString(dc["primary_domain"]),
			SecondaryDomains: asStringSlice(dc["secondary_domains"]),
			Confidence:       clamp01(asFloat(dc["confidence"])),
		}
	}

	if sp, ok := m["suggested_properties"].(map[string]any); ok {
		for k, v := range sp {
			if s := asString(v); s != "" {
				r.SuggestedProperties[k] = s
			}
		}
	}

	r.SemanticTags = asStringSlice(m["semantic_tags"])
	if r.SemanticTags == nil {
		r.SemanticTags = []string{}
	}

	return r
}

// coerceContextUnderstanding fills the fixed key set with neutral defaults.
func coerceContextUnderstanding(m map[string]any) ContextUnderstanding {
	cu := ContextUnderstanding{
		UrgencyLevel:            "medium",
		ImportanceLevel:         "medium",
		EmotionalTone:           "neutral",
		TemporalScope:           "short_term",
		PersonalInformationType: "none",
	}
	if m == nil {
		return cu
	}
	cu.PrimaryIntent = asString(m["primary_intent"])
	cu.ImplicitMeaning = asString(m["implicit_meaning"])
	cu.UrgencyLevel = defaultString(asString(m["urgency_level"]), cu.UrgencyLevel)
	cu.ImportanceLevel = defaultString(asString(m["importance_level"]), cu.ImportanceLevel)
	cu.EmotionalTone = defaultString(asString(m["emotional_tone"]), cu.EmotionalTone)
	cu.TemporalScope = defaultString(asString(m["temporal_scope"]), cu.TemporalScope)
	cu.PersonalInformationType = defaultString(asString(m["personal_information_type"]), cu.PersonalInformationType)
	return cu
}

// heuristicAnalysis is the last parsing resort: treat the response as prose.
// Reasoning is the first 200 characters and tags come from keyword scans.
func heuristicAnalysis(raw, content string, w Weights) *AnalysisResult {
	reasoning := strings.TrimSpace(raw)
	if runes := []rune(reasoning); len(runes) > 200 {
		reasoning = string(runes[:200])
	}

	lowered := strings.ToLower(raw + " " + content)
	tags := []string{}
	for _, tag := range []string{"personal", "work", "identity", "project"} {
		for _, kw := range heuristicTagKeywords[tag] {
			if strings.Contains(lowered, kw) {
				tags = append(tags, tag)
				break
			}
		}
	}

	return &AnalysisResult{
		Content:              content,
		SemanticConcepts:     []SemanticConcept{},
		ExtractedEntities:    []Entity{},
		Relationships:        []Relationship{},
		ContextUnderstanding: coerceContextUnderstanding(nil),
		ConfidenceScore:      w.HeuristicConfidence,
		Reasoning:            reasoning,
		SuggestedProperties:  map[string]string{},
		SemanticTags:         tags,
		AnalyzedAt:           time.Now().UTC(),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// asFloat accepts the numeric shapes encoding/json can produce.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		var f float64
		if err := json.Unmarshal([]byte(n), &f); err == nil {
			return f
		}
	}
	return 0
}

func asStringSlice(v any) []string {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s := asString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asMapSlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
