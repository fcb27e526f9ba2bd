package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"docrag/internal/contextutil"
	"docrag/internal/domain"
	"docrag/internal/ingest"
)

// UploadHandler handles document upload requests.
type UploadHandler struct {
	pipeline Ingestor
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(pipeline Ingestor) *UploadHandler {
	return &UploadHandler{pipeline: pipeline}
}

// UploadDocument is one document in an upload request. Either pre-extracted
// pages or raw markdown content must be supplied.
type UploadDocument struct {
	SourceFile string        `json:"source_file"`
	Pages      []domain.Page `json:"pages,omitempty"`
	Content    string        `json:"content,omitempty"`
}

// UploadRequest represents the HTTP request payload for upload.
type UploadRequest struct {
	SessionID    string           `json:"session_id"`
	KeepExisting bool             `json:"keep_existing"`
	Documents    []UploadDocument `json:"documents"`
}

// UploadResponse represents the HTTP response payload for upload.
type UploadResponse struct {
	Message       string   `json:"message"`
	Files         []string `json:"files"`
	DocumentCount int      `json:"document_count"`
	SessionID     string   `json:"session_id"`
}

// ServeHTTP ingests a batch of documents for a session. A blank session id
// starts a new session. Unless keep_existing is set, the session's previous
// documents are fully replaced, never merged.
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req UploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, ctx, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, ctx, http.StatusBadRequest, "No documents provided")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if !req.KeepExisting {
		if err := h.pipeline.ClearSession(ctx, sessionID); err != nil {
			logger.ErrorContext(ctx, "failed to clear session before upload", "session_id", sessionID, "error", err)
			writeError(w, ctx, http.StatusInternalServerError, "Failed to clear previous session documents")
			return
		}
	}

	var files []string
	for _, doc := range req.Documents {
		if doc.SourceFile == "" {
			logger.WarnContext(ctx, "document without source_file skipped")
			continue
		}

		pages := doc.Pages
		if len(pages) == 0 && doc.Content != "" {
			pages = ingest.PagesFromMarkdown([]byte(doc.Content), doc.SourceFile)
		}

		_, err := h.pipeline.IngestDocument(ctx, sessionID, ingest.Document{
			SourceFile: doc.SourceFile,
			Pages:      pages,
		})
		if errors.Is(err, ingest.ErrEmptyDocument) {
			logger.WarnContext(ctx, "document produced no chunks, skipped", "source_file", doc.SourceFile)
			continue
		}
		if errors.Is(err, ingest.ErrIndexing) {
			logger.ErrorContext(ctx, "indexing failed", "source_file", doc.SourceFile, "error", err)
			writeError(w, ctx, http.StatusBadGateway, "Vector index unavailable")
			return
		}
		if err != nil {
			logger.ErrorContext(ctx, "ingestion failed", "source_file", doc.SourceFile, "error", err)
			writeError(w, ctx, http.StatusInternalServerError, "Failed to ingest document")
			return
		}
		files = append(files, doc.SourceFile)
	}

	if len(files) == 0 {
		writeError(w, ctx, http.StatusBadRequest, "No documents could be ingested")
		return
	}

	writeJSON(w, ctx, http.StatusOK, UploadResponse{
		Message:       "Documents uploaded and indexed",
		Files:         files,
		DocumentCount: len(files),
		SessionID:     sessionID,
	})
}
