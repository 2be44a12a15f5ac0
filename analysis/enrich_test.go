package analysis

import (
	"testing"

	"github.com/psharda/insight/ontology"
)

func enrichContent(t *testing.T, content string, cu ContextUnderstanding) *Enrichment {
	t.Helper()
	r := &AnalysisResult{Content: content, ContextUnderstanding: cu}
	return NewEnricher(DefaultWeights()).Enrich(content, r, nil)
}

func neutralUnderstanding() ContextUnderstanding {
	return coerceContextUnderstanding(nil)
}

func approx(got, want float64) bool {
	diff := got - want
	return diff < 1e-9 && diff > -1e-9
}

func TestEnricher_IntensityLexicon(t *testing.T) {
	enr := enrichContent(t, "This is extremely important", neutralUnderstanding())
	if enr.EmotionalContext.Intensity != 0.9 {
		t.Errorf("Expected strongest marker to win with 0.9, got %f", enr.EmotionalContext.Intensity)
	}

	enr = enrichContent(t, "nothing emphatic here", neutralUnderstanding())
	if enr.EmotionalContext.Intensity != baselineIntensity {
		t.Errorf("Expected baseline intensity, got %f", enr.EmotionalContext.Intensity)
	}
}

func TestEnricher_ValenceVote(t *testing.T) {
	cases := []struct {
		content string
		want    float64
	}{
		{"I love this great wonderful thing", 0.6},
		{"this is terrible and awful and bad", -0.6},
		{"I love it but it is also terrible", 0.0},
	}
	for _, tc := range cases {
		enr := enrichContent(t, tc.content, neutralUnderstanding())
		if enr.EmotionalContext.Valence != tc.want {
			t.Errorf("valence(%q) = %f, want %f", tc.content, enr.EmotionalContext.Valence, tc.want)
		}
	}
}

func TestEnricher_PersonalSignificanceAdditive(t *testing.T) {
	// Identity + work + preference sums past the individual contributions.
	enr := enrichContent(t, "My name is Ada, I work at Initech, and I like chess", neutralUnderstanding())
	got := enr.EmotionalContext.PersonalSignificance
	if !approx(got, 0.85) {
		t.Errorf("Expected additive significance 0.85, got %f", got)
	}

	// Browsing activity subtracts and the floor is zero.
	enr = enrichContent(t, "browsed a few pages and clicked around", neutralUnderstanding())
	if enr.EmotionalContext.PersonalSignificance != 0 {
		t.Errorf("Activity-only content should floor at 0, got %f", enr.EmotionalContext.PersonalSignificance)
	}
}

func TestEnricher_TemporalReferences(t *testing.T) {
	enr := enrichContent(t, "Dentist tomorrow at 9:30, then next week a trip on 12/05/2026", neutralUnderstanding())

	want := map[string]bool{"tomorrow": true, "9:30": true, "next week": true, "12/05/2026": true}
	if len(enr.TemporalReferences) != len(want) {
		t.Fatalf("Expected %d temporal references, got %v", len(want), enr.TemporalReferences)
	}
	for _, ref := range enr.TemporalReferences {
		if !want[ref] {
			t.Errorf("Unexpected temporal reference %q", ref)
		}
	}
}

func TestEnricher_ImplicitRelationshipBoosts(t *testing.T) {
	enr := enrichContent(t, "I likes hiking", neutralUnderstanding())

	var likes *ImplicitRelationship
	for i := range enr.ImplicitRelationships {
		if enr.ImplicitRelationships[i].Type == "likes" {
			likes = &enr.ImplicitRelationships[i]
		}
	}
	if likes == nil {
		t.Fatalf("Expected a likes relationship, got %v", enr.ImplicitRelationships)
	}
	// Base 0.3 + type boost 0.3 + first-person boost 0.3.
	if !approx(likes.PersonalRelevance, 0.9) {
		t.Errorf("Expected relevance 0.9, got %f", likes.PersonalRelevance)
	}
}

func TestEnricher_ContextualImportance(t *testing.T) {
	cu := neutralUnderstanding()
	cu.UrgencyLevel = "high"
	enr := enrichContent(t, "the report is due", cu)
	if enr.ContextualImportance != 0.75 {
		t.Errorf("Expected base importance 0.75, got %f", enr.ContextualImportance)
	}

	// Personal indicators add the boost, clamped at 1.0.
	cu.UrgencyLevel = "critical"
	enr = enrichContent(t, "my name is on the report and i am responsible", cu)
	if enr.ContextualImportance != 1.0 {
		t.Errorf("Expected importance clamped to 1.0, got %f", enr.ContextualImportance)
	}
}

func TestEnricher_DomainExpertiseFromHints(t *testing.T) {
	r := &AnalysisResult{ContextUnderstanding: neutralUnderstanding()}
	hints := []ontology.Classification{{Domain: "technology", Score: 0.7}}
	enr := NewEnricher(DefaultWeights()).Enrich("deployed the api", r, hints)

	if enr.DomainExpertise["technology"] != 0.7 {
		t.Errorf("Expected hint score carried into domain expertise, got %v", enr.DomainExpertise)
	}
}

func TestEnricher_AbstractConcepts(t *testing.T) {
	r := &AnalysisResult{
		ContextUnderstanding: neutralUnderstanding(),
		SemanticConcepts: []SemanticConcept{
			{Concept: "Growth", Type: ConceptAbstract},
			{Concept: "desk", Type: ConceptConcrete},
		},
	}
	enr := NewEnricher(DefaultWeights()).Enrich("a new plan for the goal", r, nil)

	found := map[string]bool{}
	for _, c := range enr.AbstractConcepts {
		found[c] = true
	}
	if !found["growth"] || !found["plan"] || !found["goal"] {
		t.Errorf("Expected growth, plan, goal in abstract concepts, got %v", enr.AbstractConcepts)
	}
	if found["desk"] {
		t.Error("Concrete concepts must not appear in abstract concepts")
	}
}
