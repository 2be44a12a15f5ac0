package server

import (
	"net/http"

	"github.com/psharda/insight/analysis"
	"github.com/psharda/insight/memories"
)

type analyzeRequest struct {
	Content string `json:"content"`
	UserID  string `json:"user_id,omitempty"`
	// Store persists the analyzed content as a memory.
	Store bool `json:"store,omitempty"`
}

type questionRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id,omitempty"`
}

type answerResponse struct {
	Answer        string                   `json:"answer"`
	ContextsUsed  int                      `json:"contexts_used"`
	QuestionType  string                   `json:"question_type"`
	MemoryContext []analysis.MemoryContext `json:"memory_contexts,omitempty"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	result := s.processor.AnalyzeContent(r.Context(), req.Content, userContext(req.UserID))

	if req.Store && s.store != nil {
		_, err := s.store.Save(r.Context(), memories.Memory{
			UserID:           req.UserID,
			Content:          req.Content,
			Summary:          result.SuggestedProperties["summary"],
			Tags:             result.SemanticTags,
			PersonalInfoType: result.ContextUnderstanding.PersonalInformationType,
			Importance:       importanceOf(result),
		})
		if err != nil {
			// Analysis succeeded; report it even if persistence failed.
			s.logger.Error().Err(err).Msg("Failed to store analyzed memory")
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAnalyzeQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	qa := s.processor.AnalyzeQuestion(r.Context(), req.Question, userContext(req.UserID))
	writeJSON(w, http.StatusOK, qa)
}

// handleAnswer runs the full question path: analyze the question, search the
// store with its key terms, and generate a grounded answer.
func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "memory store not configured")
		return
	}

	qa := s.processor.AnalyzeQuestion(r.Context(), req.Question, userContext(req.UserID))

	terms := qa.KeyTerms
	if len(terms) == 0 {
		terms = []string{req.Question}
	}
	contexts, err := s.store.Search(r.Context(), req.UserID, terms, 10)
	if err != nil {
		s.logger.Error().Err(err).Msg("Memory search failed")
		contexts = nil
	}

	answer := s.processor.GenerateAnswerFromContext(r.Context(), req.Question, contexts, req.UserID)
	writeJSON(w, http.StatusOK, answerResponse{
		Answer:        answer,
		ContextsUsed:  len(contexts),
		QuestionType:  qa.QuestionType,
		MemoryContext: contexts,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	info := s.processor.ExtractPersonalInformation(r.Context(), req.Content, userContext(req.UserID))
	writeJSON(w, http.StatusOK, info)
}

func userContext(userID string) map[string]any {
	if userID == "" {
		return nil
	}
	return map[string]any{"user_id": userID}
}

// importanceOf folds enrichment into a stored importance score.
func importanceOf(r *analysis.AnalysisResult) float64 {
	if r.Enrichment != nil {
		return r.Enrichment.ContextualImportance
	}
	return r.ConfidenceScore
}
