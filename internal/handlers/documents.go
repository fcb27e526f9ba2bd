package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"docrag/internal/docstore"
)

// DocumentsHandler lists the documents a session currently holds.
type DocumentsHandler struct {
	store *docstore.Store
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(store *docstore.Store) *DocumentsHandler {
	return &DocumentsHandler{store: store}
}

// DocumentsResponse represents the HTTP response payload for the document
// listing.
type DocumentsResponse struct {
	SessionID string                  `json:"session_id"`
	Documents []docstore.DocumentInfo `json:"documents"`
}

// ServeHTTP lists the distinct source files and their chunk counts for a
// session. Unknown sessions get an empty list, not an error.
func (h *DocumentsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeError(w, ctx, http.StatusBadRequest, "session id is required")
		return
	}

	docs := h.store.Documents(sessionID)
	if docs == nil {
		docs = []docstore.DocumentInfo{}
	}

	writeJSON(w, ctx, http.StatusOK, DocumentsResponse{
		SessionID: sessionID,
		Documents: docs,
	})
}
