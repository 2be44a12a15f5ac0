package analysis

import (
	"testing"

	"github.com/psharda/insight/ontology"
)

func newTestFallback() *FallbackAnalyzer {
	return NewFallbackAnalyzer(DefaultWeights())
}

func TestFallbackAnalyzer_FixedConfidence(t *testing.T) {
	r := newTestFallback().Analyze("some content", nil)
	if r.ConfidenceScore != 0.3 {
		t.Errorf("Fallback confidence should be 0.3, got %f", r.ConfidenceScore)
	}
	if !r.Degraded {
		t.Error("Fallback result must be marked degraded")
	}
}

func TestFallbackAnalyzer_PersonNames(t *testing.T) {
	r := newTestFallback().Analyze("I met Jane Smith and Robert James Brown at the cafe", nil)

	var persons []string
	for _, e := range r.ExtractedEntities {
		if e.Type == "person" {
			persons = append(persons, e.Value)
		}
	}
	if len(persons) != 2 {
		t.Fatalf("Expected 2 person entities, got %v", persons)
	}
	if persons[0] != "Jane Smith" || persons[1] != "Robert James Brown" {
		t.Errorf("Unexpected persons: %v", persons)
	}
}

func TestFallbackAnalyzer_TimesAndDates(t *testing.T) {
	r := newTestFallback().Analyze("meet me at 14:30 on Friday in September", nil)

	types := map[string][]string{}
	for _, e := range r.ExtractedEntities {
		types[e.Type] = append(types[e.Type], e.Value)
	}
	if len(types["time"]) != 1 || types["time"][0] != "14:30" {
		t.Errorf("Expected time entity 14:30, got %v", types["time"])
	}
	if len(types["date"]) != 2 {
		t.Errorf("Expected weekday and month date entities, got %v", types["date"])
	}
}

func TestFallbackAnalyzer_PersonalFactTemplates(t *testing.T) {
	content := "My name is Priya. I work at Initech. I enjoy landscape photography."
	r := newTestFallback().Analyze(content, nil)

	facts := map[string]bool{}
	for _, e := range r.ExtractedEntities {
		if e.Type == "personal_fact" {
			facts[e.Value] = true
		}
	}
	if !facts["Priya"] {
		t.Errorf("Name statement not extracted: %v", facts)
	}
	if !facts["Initech"] {
		t.Errorf("Employer statement not extracted: %v", facts)
	}
	found := false
	for v := range facts {
		if v == "landscape photography" {
			found = true
		}
	}
	if !found {
		t.Errorf("Preference statement not extracted: %v", facts)
	}
}

func TestFallbackAnalyzer_PersonalInfoTypePriority(t *testing.T) {
	cases := []struct {
		content string
		want    string
	}{
		{"My name is Ada and I work at a company", "identity"},
		{"I work at a big company downtown", "work"},
		{"I enjoy painting on weekends", "interests"},
		{"I grew up in a small town", "background"},
		{"I am skilled at juggling", "skills"},
		{"The weather is nice", "none"},
	}
	fb := newTestFallback()
	for _, tc := range cases {
		r := fb.Analyze(tc.content, nil)
		if got := r.ContextUnderstanding.PersonalInformationType; got != tc.want {
			t.Errorf("classify(%q) = %q, want %q", tc.content, got, tc.want)
		}
	}
}

func TestFallbackAnalyzer_OntologyHintBecomesConcept(t *testing.T) {
	hints := []ontology.Classification{{Domain: "work", Category: "professional", Score: 0.6}}
	r := newTestFallback().Analyze("quarterly report", hints)

	if len(r.SemanticConcepts) != 1 {
		t.Fatalf("Expected one concept from the hint, got %v", r.SemanticConcepts)
	}
	c := r.SemanticConcepts[0]
	if c.Concept != "work" || c.Type != ConceptOntologyDerived {
		t.Errorf("Unexpected hint concept: %+v", c)
	}
	if r.DomainClassification.PrimaryDomain != "work" {
		t.Errorf("Hint should set the domain, got %q", r.DomainClassification.PrimaryDomain)
	}
}
