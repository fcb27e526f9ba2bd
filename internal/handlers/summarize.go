package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"docrag/internal/contextutil"
	"docrag/internal/docstore"
	"docrag/internal/domain"
	"docrag/internal/retrieval"
)

// SummarizeHandler handles whole-session summary requests.
type SummarizeHandler struct {
	store     *docstore.Store
	assembler Answerer
}

// NewSummarizeHandler creates a new SummarizeHandler.
func NewSummarizeHandler(store *docstore.Store, assembler Answerer) *SummarizeHandler {
	return &SummarizeHandler{store: store, assembler: assembler}
}

// SummarizeRequest represents the HTTP request payload for summarize.
type SummarizeRequest struct {
	SessionID string `json:"session_id"`
}

// SummarizeResponse represents the HTTP response payload for summarize.
type SummarizeResponse struct {
	Summary       string            `json:"summary"`
	Citations     []domain.Citation `json:"citations"`
	DocumentCount int               `json:"document_count"`
}

// ServeHTTP summarizes all documents of a session.
func (h *SummarizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, ctx, http.StatusBadRequest, "session_id is required")
		return
	}

	corpus := h.store.GetAllChunks(req.SessionID)
	if len(corpus) == 0 {
		writeError(w, ctx, http.StatusBadRequest, "No documents available for this session")
		return
	}

	result, err := h.assembler.Summarize(ctx, req.SessionID, corpus)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyCorpus) {
			writeError(w, ctx, http.StatusBadRequest, "No documents available for this session")
			return
		}
		logger.ErrorContext(ctx, "failed to summarize session", "session_id", req.SessionID, "error", err)
		writeError(w, ctx, http.StatusInternalServerError, "Failed to summarize documents")
		return
	}

	writeJSON(w, ctx, http.StatusOK, SummarizeResponse{
		Summary:       result.Answer,
		Citations:     result.Citations,
		DocumentCount: len(h.store.Documents(req.SessionID)),
	})
}
