package analysis

import (
	"fmt"
	"strings"

	"github.com/psharda/insight/ontology"
)

// EnhanceClassifications merges a model analysis back into the externally
// supplied ontology candidates. A candidate whose domain the model also
// derived is confirmed and nudged up; a model domain with no candidate is
// appended as an AI-generated classification. The input slice is not
// modified.
func EnhanceClassifications(hints []ontology.Classification, r *AnalysisResult) []ontology.Classification {
	out := make([]ontology.Classification, len(hints))
	copy(out, hints)

	modelDomain := strings.ToLower(r.DomainClassification.PrimaryDomain)
	if modelDomain == "" {
		return out
	}

	// Confirmed candidates get the domain-match boost; a smaller second
	// boost applies when the content carried personal information.
	boost := 1.2
	if pit := r.ContextUnderstanding.PersonalInformationType; pit != "" && pit != "none" {
		boost *= 1.1
	}

	found := false
	for i := range out {
		if strings.ToLower(out[i].Domain) == modelDomain {
			out[i].AIConfirmed = true
			boosted := out[i].Score * boost
			if boosted > 1.0 {
				boosted = 1.0
			}
			out[i].Score = boosted
			found = true
		}
	}
	if !found {
		out = append(out, ontology.Classification{
			Domain:      r.DomainClassification.PrimaryDomain,
			Category:    "ai_derived",
			Score:       clamp01(r.DomainClassification.Confidence),
			AIGenerated: true,
		})
	}
	return out
}

// GenerateSemanticSummary renders a short pipe-joined digest of an analysis.
// Returns "General information" when nothing is worth saying.
func GenerateSemanticSummary(r *AnalysisResult) string {
	parts := []string{}

	if intent := r.ContextUnderstanding.PrimaryIntent; intent != "" {
		parts = append(parts, fmt.Sprintf("Intent: %s", intent))
	}
	if pit := r.ContextUnderstanding.PersonalInformationType; pit != "" && pit != "none" {
		parts = append(parts, fmt.Sprintf("Personal info: %s", pit))
	}

	if names := topConcepts(r.SemanticConcepts, 3); len(names) > 0 {
		parts = append(parts, fmt.Sprintf("Concepts: %s", strings.Join(names, ", ")))
	}
	if names := importantEntities(r.ExtractedEntities, 0.6, 3); len(names) > 0 {
		parts = append(parts, fmt.Sprintf("Entities: %s", strings.Join(names, ", ")))
	}

	switch strings.ToLower(r.ContextUnderstanding.UrgencyLevel) {
	case "high", "critical":
		parts = append(parts, "High urgency")
	}

	if len(parts) == 0 {
		return "General information"
	}
	return strings.Join(parts, " | ")
}

// topConcepts returns up to n concept names, preferring personal concepts
// and then higher relevance.
func topConcepts(concepts []SemanticConcept, n int) []string {
	ranked := make([]SemanticConcept, len(concepts))
	copy(ranked, concepts)

	// Personal concepts first, then by relevance. Insertion sort keeps the
	// original order for ties.
	for i := 1; i < len(ranked); i++ {
		for j := i; j > 0 && conceptLess(ranked[j-1], ranked[j]); j-- {
			ranked[j-1], ranked[j] = ranked[j], ranked[j-1]
		}
	}

	names := []string{}
	for _, c := range ranked {
		if len(names) == n {
			break
		}
		names = append(names, c.Concept)
	}
	return names
}

func conceptLess(a, b SemanticConcept) bool {
	aPersonal := a.Type == ConceptPersonal
	bPersonal := b.Type == ConceptPersonal
	if aPersonal != bPersonal {
		return bPersonal
	}
	return b.Relevance > a.Relevance
}

func importantEntities(entities []Entity, threshold float64, n int) []string {
	names := []string{}
	for _, e := range entities {
		if e.Importance < threshold {
			continue
		}
		names = append(names, e.Value)
		if len(names) == n {
			break
		}
	}
	return names
}
