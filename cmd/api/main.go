package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"docrag/internal/config"
	"docrag/internal/docstore"
	"docrag/internal/http"
	"docrag/internal/ingest"
	"docrag/internal/llm"
	"docrag/internal/memory"
	"docrag/internal/rag"
	"docrag/internal/storage"
	"docrag/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	chunkRepo := storage.NewChunkRepo(db)

	ctx := context.Background()

	// Initialize Qdrant vector store
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct vector size
	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.QdrantVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.QdrantVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.QdrantVectorSize)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName)

	// Conversation history: Redis when configured, otherwise in-process
	var history memory.History
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		history = memory.NewRedisHistory(redisClient, 24*time.Hour)
		slog.Info("Redis conversation history enabled", "addr", cfg.RedisAddr)
	} else {
		history = memory.NewInMemoryHistory()
		slog.Info("In-memory conversation history enabled")
	}

	// Document store plus ingestion pipeline, rehydrated from sqlite so
	// sessions survive restarts
	store := docstore.New()
	chunker := ingest.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap)
	pipeline := ingest.NewPipeline(chunker, embedder, vectorStore, cfg.QdrantCollection, store, chunkRepo, 0)
	if err := pipeline.Rehydrate(ctx); err != nil {
		log.Fatalf("Failed to rehydrate sessions: %v", err)
	}
	slog.Info("Sessions rehydrated")

	assembler := rag.NewAssembler(embedder, vectorStore, cfg.QdrantCollection, llmClient, history, rag.Options{
		RetrieveK:            cfg.Retrieval.RetrieveK,
		RerankK:              cfg.Retrieval.RerankK,
		SummarizeK:           cfg.Retrieval.SummarizeK,
		QAContextBlocks:      cfg.Retrieval.QAContextBlocks,
		SummaryContextBlocks: cfg.Retrieval.SummaryContextBlocks,
		GenTimeout:           time.Duration(cfg.Retrieval.GenTimeoutSecs) * time.Second,
	})
	slog.Info("Answer assembler initialized")

	// Create router with dependencies
	deps := &http.Deps{
		Store:       store,
		Pipeline:    pipeline,
		Assembler:   assembler,
		VectorStore: vectorStore,
		Collection:  cfg.QdrantCollection,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
