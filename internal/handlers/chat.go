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

// ChatHandler handles question-answering requests.
type ChatHandler struct {
	store     *docstore.Store
	assembler Answerer
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(store *docstore.Store, assembler Answerer) *ChatHandler {
	return &ChatHandler{store: store, assembler: assembler}
}

// ChatRequest represents the HTTP request payload for chat. Documents
// optionally restricts the retrieval corpus to those source files.
type ChatRequest struct {
	SessionID string   `json:"session_id"`
	Question  string   `json:"question"`
	Documents []string `json:"documents,omitempty"`
}

// ChatResponse represents the HTTP response payload for chat.
type ChatResponse struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
}

// ServeHTTP answers a question against the session's uploaded documents.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, ctx, http.StatusBadRequest, "session_id is required")
		return
	}
	if req.Question == "" {
		writeError(w, ctx, http.StatusBadRequest, "question is required")
		return
	}

	var corpus []domain.Chunk
	if len(req.Documents) > 0 {
		corpus = h.store.GetDocuments(req.SessionID, req.Documents)
	} else {
		corpus = h.store.GetAllChunks(req.SessionID)
	}
	if len(corpus) == 0 {
		writeError(w, ctx, http.StatusBadRequest, "No documents available for this session")
		return
	}

	result, err := h.assembler.Answer(ctx, req.SessionID, req.Question, corpus, req.Documents)
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyCorpus) {
			writeError(w, ctx, http.StatusBadRequest, "No documents available for this session")
			return
		}
		logger.ErrorContext(ctx, "failed to answer question", "session_id", req.SessionID, "error", err)
		writeError(w, ctx, http.StatusInternalServerError, "Failed to answer question")
		return
	}

	writeJSON(w, ctx, http.StatusOK, ChatResponse{
		Answer:    result.Answer,
		Citations: result.Citations,
	})
}
