package analysis

import (
	"time"

	"github.com/psharda/insight/ontology"
)

// Concept types recognized in model output. The ontology fallback path adds
// its own marker type for concepts derived from classifier hints.
const (
	ConceptAbstract        = "abstract"
	ConceptConcrete        = "concrete"
	ConceptRelational      = "relational"
	ConceptPersonal        = "personal"
	ConceptOntologyDerived = "ontology_derived"
)

// SemanticConcept is one concept identified in analyzed content.
type SemanticConcept struct {
	Concept     string  `json:"concept"`
	Relevance   float64 `json:"relevance"`
	Type        string  `json:"type"`
	Description string  `json:"description,omitempty"`
}

// Entity is a typed value extracted from content, scored for how much it
// matters to the author personally.
type Entity struct {
	Entity            string  `json:"entity"`
	Type              string  `json:"type"`
	Value             string  `json:"value"`
	Context           string  `json:"context,omitempty"`
	Importance        float64 `json:"importance"`
	PersonalRelevance float64 `json:"personal_relevance"`
}

// Relationship links two entities or concepts found in the same content.
type Relationship struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"relationship_type"`
	Strength    float64 `json:"strength"`
	Description string  `json:"description,omitempty"`
}

// ContextUnderstanding captures the model's read of intent and tone.
// Every field is always populated; the parser substitutes neutral defaults
// for anything the model omitted.
type ContextUnderstanding struct {
	PrimaryIntent           string `json:"primary_intent"`
	ImplicitMeaning         string `json:"implicit_meaning,omitempty"`
	UrgencyLevel            string `json:"urgency_level"`
	ImportanceLevel         string `json:"importance_level"`
	EmotionalTone           string `json:"emotional_tone"`
	TemporalScope           string `json:"temporal_scope"`
	PersonalInformationType string `json:"personal_information_type"`
}

// DomainClassification is the model's own domain assignment, kept separate
// from the externally supplied ontology candidates.
type DomainClassification struct {
	PrimaryDomain    string   `json:"primary_domain"`
	SecondaryDomains []string `json:"secondary_domains,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// EmotionalContext is the affect portion of semantic enrichment.
// Valence is in [-1, 1]; the other scores are in [0, 1].
type EmotionalContext struct {
	PrimaryEmotion       string  `json:"primary_emotion"`
	Intensity            float64 `json:"intensity"`
	Valence              float64 `json:"valence"`
	PersonalSignificance float64 `json:"personal_significance"`
}

// ImplicitRelationship is a relationship inferred by surface patterns rather
// than stated outright.
type ImplicitRelationship struct {
	Type              string   `json:"type"`
	Elements          []string `json:"elements"`
	Nature            string   `json:"nature,omitempty"`
	PersonalRelevance float64  `json:"personal_relevance"`
}

// Enrichment holds the deterministic semantic signals layered on top of a
// model analysis. It is computed locally and never depends on the gateway.
type Enrichment struct {
	AbstractConcepts      []string               `json:"abstract_concepts"`
	EmotionalContext      EmotionalContext       `json:"emotional_context"`
	TemporalReferences    []string               `json:"temporal_references"`
	ImplicitRelationships []ImplicitRelationship `json:"implicit_relationships"`
	DomainExpertise       map[string]float64     `json:"domain_expertise,omitempty"`
	ContextualImportance  float64                `json:"contextual_importance"`
}

// AnalysisResult is the complete output of content analysis. All container
// fields are non-nil; callers can range over them without checking.
type AnalysisResult struct {
	Content              string                    `json:"content"`
	SemanticConcepts     []SemanticConcept         `json:"semantic_concepts"`
	ExtractedEntities    []Entity                  `json:"extracted_entities"`
	Relationships        []Relationship            `json:"relationships"`
	ContextUnderstanding ContextUnderstanding      `json:"context_understanding"`
	DomainClassification DomainClassification      `json:"domain_classification"`
	ConfidenceScore      float64                   `json:"confidence_score"`
	Reasoning            string                    `json:"reasoning"`
	SuggestedProperties  map[string]string         `json:"suggested_properties"`
	SemanticTags         []string                  `json:"semantic_tags"`
	Enrichment           *Enrichment               `json:"enrichment,omitempty"`
	OntologyCandidates   []ontology.Classification `json:"ontology_candidates,omitempty"`
	Degraded             bool                      `json:"degraded,omitempty"`
	AnalyzedAt           time.Time                 `json:"analyzed_at"`
}

// Question types produced by question analysis.
const (
	QuestionIdentity      = "identity"
	QuestionWork          = "work"
	QuestionInterests     = "interests"
	QuestionBackground    = "background"
	QuestionSkills        = "skills"
	QuestionProjects      = "projects"
	QuestionRelationships = "relationships"
	QuestionPreferences   = "preferences"
	QuestionFactual       = "factual"
	QuestionGeneral       = "general"
)

// QuestionAnalysis describes what a user question is asking for and how to
// search stored memories for the answer.
type QuestionAnalysis struct {
	QuestionType      string   `json:"question_type"`
	InformationSought []string `json:"information_sought"`
	KeyTerms          []string `json:"key_terms"`
	SearchStrategies  []string `json:"search_strategies"`
	Confidence        float64  `json:"confidence"`
	Reasoning         string   `json:"reasoning,omitempty"`
}

// MemoryContext is one stored memory offered as grounding for an answer.
type MemoryContext struct {
	Content        string     `json:"content"`
	Summary        string     `json:"summary,omitempty"`
	RelevanceScore float64    `json:"relevance_score,omitempty"`
	Timestamp      *time.Time `json:"timestamp,omitempty"`
}

// Weights are the tunable constants of the heuristic layers. They are plain
// data so deployments can override them from configuration.
type Weights struct {
	// Confidence assigned by the rule-based analyzer when the gateway fails.
	FallbackConfidence float64 `yaml:"fallback_confidence"`
	// Confidence assigned when parsing degrades to the plain-text heuristic.
	HeuristicConfidence float64 `yaml:"heuristic_confidence"`
	// Confidence assigned by keyword-based question classification.
	KeywordQuestionConfidence float64 `yaml:"keyword_question_confidence"`

	// Personal-significance contributions. Identity statements dominate,
	// work statements are medium, passive browsing activity subtracts.
	IdentitySignificance   float64 `yaml:"identity_significance"`
	WorkSignificance       float64 `yaml:"work_significance"`
	PreferenceSignificance float64 `yaml:"preference_significance"`
	ActivityPenalty        float64 `yaml:"activity_penalty"`

	// Boost added to contextual importance when personal indicators appear.
	PersonalImportanceBoost float64 `yaml:"personal_importance_boost"`

	// Relationship relevance contributions.
	RelationshipTypeBoost     float64 `yaml:"relationship_type_boost"`
	RelationshipPersonBoost   float64 `yaml:"relationship_person_boost"`
	RelationshipBaseRelevance float64 `yaml:"relationship_base_relevance"`
}

// DefaultWeights returns the tuning the heuristics were calibrated with.
func DefaultWeights() Weights {
	return Weights{
		FallbackConfidence:        0.3,
		HeuristicConfidence:       0.5,
		KeywordQuestionConfidence: 0.6,

		IdentitySignificance:   0.4,
		WorkSignificance:       0.25,
		PreferenceSignificance: 0.2,
		ActivityPenalty:        0.2,

		PersonalImportanceBoost: 0.2,

		RelationshipTypeBoost:     0.3,
		RelationshipPersonBoost:   0.3,
		RelationshipBaseRelevance: 0.3,
	}
}

// clamp01 bounds a score to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// userIDFrom extracts user_id from an optional caller context map.
func userIDFrom(userCtx map[string]any) string {
	if userCtx == nil {
		return "default"
	}
	if v, ok := userCtx["user_id"].(string); ok && v != "" {
		return v
	}
	return "default"
}
