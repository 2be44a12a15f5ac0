package analysis

import (
	"fmt"
	"strings"

	"github.com/psharda/insight/ontology"
)

// PromptBuilder renders the four prompt shapes sent to the language model.
// Each prompt states an explicit JSON output contract; the parser is lenient
// but the contract keeps well-behaved models on the happy path.
type PromptBuilder struct{}

// NewPromptBuilder returns a PromptBuilder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// SystemPrompt is the shared system preamble for all analysis calls.
func (b *PromptBuilder) SystemPrompt() string {
	return "You are a semantic analysis engine for a personal memory system. " +
		"You always respond with a single JSON object and no surrounding prose."
}

// ContentAnalysis builds the full content-analysis prompt. Ontology hints and
// user context are optional and rendered only when present.
func (b *PromptBuilder) ContentAnalysis(content string, hints []ontology.Classification, userCtx map[string]any) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following content and extract its semantic structure.\n\n")
	sb.WriteString("Content:\n")
	sb.WriteString(content)
	sb.WriteString("\n")

	if len(hints) > 0 {
		sb.WriteString("\nCandidate domain classifications (hints, not ground truth):\n")
		for _, h := range hints {
			fmt.Fprintf(&sb, "- domain=%s category=%s score=%.2f\n", h.Domain, h.Category, h.Score)
		}
	}
	if uid := userIDFrom(userCtx); uid != "default" {
		fmt.Fprintf(&sb, "\nThe content belongs to user %q.\n", uid)
	}

	sb.WriteString(`
Respond with ONLY a JSON object of this exact shape:
{
  "semantic_concepts": [
    {"concept": "string", "relevance": 0.0, "type": "abstract|concrete|relational|personal", "description": "string"}
  ],
  "extracted_entities": [
    {"entity": "string", "type": "person|place|organization|date|time|skill|other", "value": "string", "context": "string", "importance": 0.0, "personal_relevance": 0.0}
  ],
  "relationships": [
    {"source": "string", "target": "string", "relationship_type": "string", "strength": 0.0, "description": "string"}
  ],
  "context_understanding": {
    "primary_intent": "string",
    "implicit_meaning": "string",
    "urgency_level": "low|medium|high|critical",
    "importance_level": "low|medium|high|critical",
    "emotional_tone": "positive|negative|neutral|mixed",
    "temporal_scope": "immediate|short_term|long_term|permanent",
    "personal_information_type": "identity|work|interests|background|skills|preferences|none"
  },
  "domain_classification": {
    "primary_domain": "string",
    "secondary_domains": ["string"],
    "confidence": 0.0
  },
  "confidence_score": 0.0,
  "reasoning": "one or two sentences",
  "suggested_properties": {"key": "value"},
  "semantic_tags": ["string"],
  "personal_facts": ["plain-sentence fact stated by the author"]
}

All scores are numbers between 0.0 and 1.0. Use empty arrays when a section
does not apply. Do not wrap the JSON in markdown fences.`)

	return sb.String()
}

// QuestionAnalysis builds the question-understanding prompt.
func (b *PromptBuilder) QuestionAnalysis(question string, userCtx map[string]any) string {
	var sb strings.Builder

	sb.WriteString("A user is asking a question about their own stored memories. ")
	sb.WriteString("Determine what information the question seeks and how to search for it.\n\n")
	fmt.Fprintf(&sb, "Question: %s\n", question)
	if uid := userIDFrom(userCtx); uid != "default" {
		fmt.Fprintf(&sb, "User: %s\n", uid)
	}

	sb.WriteString(`
Respond with ONLY a JSON object of this exact shape:
{
  "question_type": "identity|work|interests|background|skills|projects|relationships|preferences|factual|general",
  "information_sought": ["what the user wants to know"],
  "key_terms": ["terms worth matching against stored memories"],
  "search_strategies": ["keyword", "semantic", "temporal"],
  "confidence": 0.0,
  "reasoning": "one sentence"
}

Examples:
- "What is my name?" is question_type "identity" with key_terms ["name"].
- "Where do I work?" is question_type "work" with key_terms ["work", "company", "employer"].
- "What am I building right now?" is question_type "projects".
- "What do I enjoy on weekends?" is question_type "interests".
- "When did I last visit Lisbon?" is question_type "factual" with a "temporal" search strategy.

Do not wrap the JSON in markdown fences.`)

	return sb.String()
}

// AnswerGeneration builds the grounded answer prompt from retrieved memory
// contexts. Contexts are numbered so the model can cite them implicitly.
func (b *PromptBuilder) AnswerGeneration(question string, contexts []MemoryContext) string {
	var sb strings.Builder

	sb.WriteString("Answer the user's question using ONLY the memory contexts below. ")
	sb.WriteString("If the contexts do not contain the answer, say so briefly. ")
	sb.WriteString("Answer in plain prose without preamble.\n")
	sb.WriteString(`Good: "Your name is Alex." Bad: "Based on the memories, your name is Alex."` + "\n\n")
	fmt.Fprintf(&sb, "Question: %s\n\nMemory contexts:\n", question)

	for i, mc := range contexts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(mc.Content))
		if mc.Summary != "" {
			fmt.Fprintf(&sb, "   Summary: %s\n", mc.Summary)
		}
		if mc.RelevanceScore > 0 {
			fmt.Fprintf(&sb, "   Relevance: %.2f\n", mc.RelevanceScore)
		}
		if mc.Timestamp != nil {
			fmt.Fprintf(&sb, "   Recorded: %s\n", mc.Timestamp.Format("2006-01-02"))
		}
	}

	sb.WriteString("\nAnswer:")
	return sb.String()
}

// PersonalExtraction builds the personal-information extraction prompt.
func (b *PromptBuilder) PersonalExtraction(content string, userCtx map[string]any) string {
	var sb strings.Builder

	sb.WriteString("Extract personal information the author states about themselves ")
	sb.WriteString("in the content below. Only include facts stated or strongly implied.\n\n")
	sb.WriteString("Content:\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	if uid := userIDFrom(userCtx); uid != "default" {
		fmt.Fprintf(&sb, "\nThe author is user %q.\n", uid)
	}

	sb.WriteString(`
Respond with ONLY a JSON object of this exact shape:
{
  "identity": {"name": "string or null", "nicknames": ["string"]},
  "work": {"employer": "string or null", "role": "string or null", "projects": ["string"]},
  "interests": ["string"],
  "background": ["string"],
  "skills": ["string"],
  "relationships": [{"person": "string", "relation": "string"}],
  "personal_facts": ["plain-sentence fact"],
  "confidence": 0.0,
  "reasoning": "one sentence"
}

Use null or empty arrays for categories with no information. Do not wrap the
JSON in markdown fences.`)

	return sb.String()
}
