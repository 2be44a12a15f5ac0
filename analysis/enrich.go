package analysis

import (
	"regexp"
	"strings"

	"github.com/psharda/insight/ontology"
)

// Enricher derives deterministic semantic signals from content and a parsed
// analysis. It runs on every analysis, including degraded ones, and never
// touches the gateway.
type Enricher struct {
	weights Weights
}

// NewEnricher returns an Enricher with the given tuning.
func NewEnricher(w Weights) *Enricher {
	return &Enricher{weights: w}
}

// Intensity markers with their calibrated scores. Anything outside the
// lexicon contributes the baseline.
var intensityLexicon = map[string]float64{
	"extremely": 0.9,
	"critical":  0.9,
	"urgent":    0.85,
	"asap":      0.85,
	"love":      0.8,
	"hate":      0.8,
	"terrible":  0.75,
	"amazing":   0.7,
	"excited":   0.7,
	"important": 0.7,
	"really":    0.6,
	"very":      0.6,
}

const baselineIntensity = 0.2

var positiveMarkers = []string{"love", "like", "enjoy", "great", "good", "amazing", "excited", "happy", "wonderful"}
var negativeMarkers = []string{"hate", "dislike", "terrible", "bad", "awful", "worried", "angry", "frustrated", "sad"}

var (
	relativeDayRe    = regexp.MustCompile(`(?i)\b(today|tomorrow|yesterday|tonight)\b`)
	relativeSpanRe   = regexp.MustCompile(`(?i)\b(next|last|this)\s+(week|month|year|weekend)\b`)
	inDaysRe         = regexp.MustCompile(`(?i)\bin\s+\d+\s+(?:minutes?|hours?|days?|weeks?|months?)\b`)
	calendarDateRe   = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`)
	abstractMarkerRe = regexp.MustCompile(`(?i)\b(idea|plan|goal|strategy|concept|learning|growth|future|decision)s?\b`)

	implicitIsRe     = regexp.MustCompile(`(?i)\b(\w+)\s+is\s+(?:a\s+|an\s+)?(\w+)`)
	implicitCalledRe = regexp.MustCompile(`(?i)\b(\w+)\s+(?:is\s+)?called\s+(\w+)`)
	implicitLikesRe  = regexp.MustCompile(`(?i)\b(\w+)\s+(likes?|loves?|enjoys?)\s+(\w+)`)
	implicitHatesRe  = regexp.MustCompile(`(?i)\b(\w+)\s+(hates?|dislikes?)\s+(\w+)`)
	implicitGoodAtRe = regexp.MustCompile(`(?i)\b(\w+)\s+(?:am|is|are)\s+good\s+at\s+(\w+)`)
	implicitHasRe    = regexp.MustCompile(`(?i)\b(\w+)\s+(?:has|have)\s+(?:a\s+|an\s+)?(\w+)`)
)

// Relationship types that signal durable personal facts rather than passing
// mentions.
var boostedRelationshipTypes = map[string]bool{
	"is":       true,
	"called":   true,
	"likes":    true,
	"dislikes": true,
	"good_at":  true,
	"has":      true,
}

var firstPersonPronouns = map[string]bool{"i": true, "me": true, "my": true, "myself": true}

var activityMarkers = []string{"browsed", "clicked", "visited", "scrolled", "page view", "opened tab"}

// Enrich computes the enrichment layer for an analysis.
func (e *Enricher) Enrich(content string, r *AnalysisResult, hints []ontology.Classification) *Enrichment {
	lowered := strings.ToLower(content)

	enr := &Enrichment{
		AbstractConcepts:      e.abstractConcepts(content, r),
		EmotionalContext:      e.emotionalContext(lowered),
		TemporalReferences:    e.temporalReferences(content),
		ImplicitRelationships: e.implicitRelationships(content),
	}

	if len(hints) > 0 {
		enr.DomainExpertise = map[string]float64{}
		for _, h := range hints {
			enr.DomainExpertise[h.Domain] = clamp01(h.Score)
		}
	}

	base := levelScore(r.ContextUnderstanding.UrgencyLevel)
	if imp := levelScore(r.ContextUnderstanding.ImportanceLevel); imp > base {
		base = imp
	}
	if e.hasPersonalIndicators(lowered) {
		base += e.weights.PersonalImportanceBoost
	}
	enr.ContextualImportance = clamp01(base)

	return enr
}

// abstractConcepts collects abstract-typed concepts from the analysis plus
// abstract markers in the text itself.
func (e *Enricher) abstractConcepts(content string, r *AnalysisResult) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(s string) {
		key := strings.ToLower(s)
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, key)
	}

	for _, c := range r.SemanticConcepts {
		if c.Type == ConceptAbstract || c.Type == ConceptOntologyDerived {
			add(c.Concept)
		}
	}
	for _, m := range abstractMarkerRe.FindAllString(content, -1) {
		add(strings.TrimSuffix(strings.ToLower(m), "s"))
	}
	return out
}

// emotionalContext scores affect from the intensity lexicon and a simple
// valence vote over positive and negative markers.
func (e *Enricher) emotionalContext(lowered string) EmotionalContext {
	intensity := baselineIntensity
	primary := "neutral"
	for word, score := range intensityLexicon {
		if strings.Contains(lowered, word) && score > intensity {
			intensity = score
			primary = word
		}
	}

	pos, neg := 0, 0
	for _, m := range positiveMarkers {
		if strings.Contains(lowered, m) {
			pos++
		}
	}
	for _, m := range negativeMarkers {
		if strings.Contains(lowered, m) {
			neg++
		}
	}
	valence := 0.0
	if pos > neg {
		valence = 0.6
	} else if neg > pos {
		valence = -0.6
	}

	return EmotionalContext{
		PrimaryEmotion:       primary,
		Intensity:            intensity,
		Valence:              valence,
		PersonalSignificance: e.personalSignificance(lowered),
	}
}

// personalSignificance sums the calibrated contributions: identity statements
// dominate, work statements are medium, preferences small, and passive
// browsing activity subtracts. The sum is clamped to [0, 1].
func (e *Enricher) personalSignificance(lowered string) float64 {
	score := 0.0
	if containsAny(lowered, []string{"my name", "i am ", "i'm ", "call me"}) {
		score += e.weights.IdentitySignificance
	}
	if containsAny(lowered, []string{"i work", "my job", "my company", "my role", "my career"}) {
		score += e.weights.WorkSignificance
	}
	if containsAny(lowered, []string{"i like", "i love", "i enjoy", "i prefer"}) {
		score += e.weights.PreferenceSignificance
	}
	if containsAny(lowered, activityMarkers) {
		score -= e.weights.ActivityPenalty
	}
	return clamp01(score)
}

// temporalReferences collects every temporal surface form in order of
// appearance, deduplicated case-insensitively.
func (e *Enricher) temporalReferences(content string) []string {
	out := []string{}
	seen := map[string]bool{}
	add := func(matches []string) {
		for _, m := range matches {
			key := strings.ToLower(m)
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, m)
		}
	}

	add(relativeDayRe.FindAllString(content, -1))
	add(relativeSpanRe.FindAllString(content, -1))
	add(inDaysRe.FindAllString(content, -1))
	add(clockTimeRe.FindAllString(content, -1))
	add(calendarDateRe.FindAllString(content, -1))
	add(weekdayRe.FindAllString(content, -1))
	add(monthRe.FindAllString(content, -1))
	return out
}

// implicitRelationships extracts pattern-implied relationships. Relevance
// starts at the base, gains the type boost for durable-fact types, gains the
// person boost when an endpoint is a first-person pronoun, and is clamped.
func (e *Enricher) implicitRelationships(content string) []ImplicitRelationship {
	out := []ImplicitRelationship{}

	collect := func(relType string, matches [][]string, srcIdx, dstIdx int) {
		for _, m := range matches {
			src, dst := m[srcIdx], m[dstIdx]
			rel := ImplicitRelationship{
				Type:              relType,
				Elements:          []string{src, dst},
				PersonalRelevance: e.relationshipRelevance(relType, src, dst),
			}
			out = append(out, rel)
		}
	}

	collect("called", implicitCalledRe.FindAllStringSubmatch(content, -1), 1, 2)
	collect("good_at", implicitGoodAtRe.FindAllStringSubmatch(content, -1), 1, 2)
	collect("likes", implicitLikesRe.FindAllStringSubmatch(content, -1), 1, 3)
	collect("dislikes", implicitHatesRe.FindAllStringSubmatch(content, -1), 1, 3)
	collect("has", implicitHasRe.FindAllStringSubmatch(content, -1), 1, 2)
	collect("is", implicitIsRe.FindAllStringSubmatch(content, -1), 1, 2)

	return out
}

func (e *Enricher) relationshipRelevance(relType, src, dst string) float64 {
	score := e.weights.RelationshipBaseRelevance
	if boostedRelationshipTypes[relType] {
		score += e.weights.RelationshipTypeBoost
	}
	if firstPersonPronouns[strings.ToLower(src)] || firstPersonPronouns[strings.ToLower(dst)] {
		score += e.weights.RelationshipPersonBoost
	}
	return clamp01(score)
}

func (e *Enricher) hasPersonalIndicators(lowered string) bool {
	return containsAny(lowered, []string{"my name", "i am ", "i'm ", "i work", "i like", "i love", "my "})
}

// levelScore maps an urgency or importance level to a base importance.
func levelScore(level string) float64 {
	switch strings.ToLower(level) {
	case "critical":
		return 0.9
	case "high":
		return 0.75
	case "medium":
		return 0.5
	case "low":
		return 0.25
	default:
		return 0.25
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
