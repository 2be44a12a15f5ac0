package server

import (
	"net/http"

	"github.com/psharda/insight/memories"
)

type saveMemoryRequest struct {
	Content string   `json:"content"`
	Summary string   `json:"summary,omitempty"`
	UserID  string   `json:"user_id,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func (s *Server) handleSaveMemory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "memory store not configured")
		return
	}

	var req saveMemoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Content == "" {
		writeError(w, http.StatusBadRequest, "content is required")
		return
	}

	saved, err := s.store.Save(r.Context(), memories.Memory{
		UserID:  req.UserID,
		Content: req.Content,
		Summary: req.Summary,
		Tags:    req.Tags,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to save memory")
		writeError(w, http.StatusInternalServerError, "failed to save memory")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "memory store not configured")
		return
	}

	userID := r.URL.Query().Get("user_id")
	limit := intQuery(r, "limit", 50)

	list, err := s.store.List(r.Context(), userID, limit)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list memories")
		writeError(w, http.StatusInternalServerError, "failed to list memories")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"memories": list, "count": len(list)})
}
