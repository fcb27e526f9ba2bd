// Package http wires the chi router and its middleware.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"docrag/internal/docstore"
	"docrag/internal/handlers"
	"docrag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Store       *docstore.Store
	Pipeline    handlers.Ingestor
	Assembler   handlers.Answerer
	VectorStore vectorstore.VectorStore
	Collection  string
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	uploadHandler := handlers.NewUploadHandler(deps.Pipeline)
	chatHandler := handlers.NewChatHandler(deps.Store, deps.Assembler)
	summarizeHandler := handlers.NewSummarizeHandler(deps.Store, deps.Assembler)
	documentsHandler := handlers.NewDocumentsHandler(deps.Store)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.Collection)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/upload", uploadHandler)
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodPost, "/summarize", summarizeHandler)
		r.Method(http.MethodGet, "/sessions/{sessionID}/documents", documentsHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
