// Package handlers implements the HTTP API: upload, chat, summarize,
// session document listing and health.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"docrag/internal/contextutil"
	"docrag/internal/domain"
	"docrag/internal/ingest"
	"docrag/internal/rag"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_deps.go -package=mocks docrag/internal/handlers Answerer,Ingestor

// Answerer produces grounded answers and summaries for one session's corpus.
type Answerer interface {
	Answer(ctx context.Context, sessionID, question string, corpus []domain.Chunk, sourceFiles []string) (rag.Result, error)
	Summarize(ctx context.Context, sessionID string, corpus []domain.Chunk) (rag.Result, error)
}

// Ingestor runs document ingestion and session cleanup.
type Ingestor interface {
	IngestDocument(ctx context.Context, sessionID string, doc ingest.Document) (int, error)
	ClearSession(ctx context.Context, sessionID string) error
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, ctx context.Context, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger := contextutil.LoggerFromContext(ctx)
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, ctx context.Context, statusCode int, message string) {
	writeJSON(w, ctx, statusCode, ErrorResponse{Error: message})
}
