package ontology

import (
	"testing"
)

func TestKeywordClassifier_OrdersByScore(t *testing.T) {
	c := NewKeywordClassifier()

	got := c.Classify("I work at Tavant and my job involves meetings with clients")
	if len(got) == 0 {
		t.Fatal("Expected at least one classification")
	}
	if got[0].Domain != "work" {
		t.Errorf("Expected top domain 'work', got %q", got[0].Domain)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("Classifications not ordered by score at index %d", i)
		}
	}
}

func TestKeywordClassifier_NoMatches(t *testing.T) {
	c := NewKeywordClassifier()
	if got := c.Classify("zzzz qqqq"); len(got) != 0 {
		t.Errorf("Expected no classifications, got %v", got)
	}
}

func TestKeywordClassifier_ScoreCapped(t *testing.T) {
	c := NewKeywordClassifier()
	got := c.Classify("work job company meeting project deadline client colleague")
	if len(got) == 0 {
		t.Fatal("Expected a classification")
	}
	if got[0].Score > 0.95 {
		t.Errorf("Score should be capped at 0.95, got %f", got[0].Score)
	}
}
