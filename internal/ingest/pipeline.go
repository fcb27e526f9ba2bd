package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"docrag/internal/contextutil"
	"docrag/internal/docstore"
	"docrag/internal/domain"
	"docrag/internal/storage"
	"docrag/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docrag/internal/ingest Embedder

// ErrEmptyDocument is returned when a document yields no chunks at all.
var ErrEmptyDocument = errors.New("document produced no chunks")

// ErrIndexing wraps vector index upsert failures. A chunk that is not
// indexed can never be found semantically, so ingestion must not report
// success when the upsert fails.
var ErrIndexing = errors.New("vector index upsert failed")

// pointNamespace seeds the deterministic UUIDv5 point ids, so re-ingesting
// the same chunk for the same session overwrites its previous point.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("docrag/chunks"))

// Embedder maps chunk texts to fixed-dimension vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Document is one uploaded document's extracted pages.
type Document struct {
	SourceFile string
	Pages      []domain.Page
}

// Pipeline orchestrates ingestion: chunk pages, embed the chunks, upsert the
// vectors, then hand the chunks to the session store and persist them.
type Pipeline struct {
	chunker    *Chunker
	embedder   Embedder
	vectors    vectorstore.VectorStore
	collection string
	store      *docstore.Store
	chunkRepo  storage.ChunkStore
	batchSize  int
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(
	chunker *Chunker,
	embedder Embedder,
	vectors vectorstore.VectorStore,
	collection string,
	store *docstore.Store,
	chunkRepo storage.ChunkStore,
	batchSize int,
) *Pipeline {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Pipeline{
		chunker:    chunker,
		embedder:   embedder,
		vectors:    vectors,
		collection: collection,
		store:      store,
		chunkRepo:  chunkRepo,
		batchSize:  batchSize,
	}
}

// IngestDocument processes one document for a session and returns the number
// of chunks it produced. Individual pages that fail to chunk are skipped by
// the chunker; a document where no page survives returns ErrEmptyDocument.
// Upsert failures are returned wrapped in ErrIndexing so the caller knows
// ingestion did not fully succeed.
func (p *Pipeline) IngestDocument(ctx context.Context, sessionID string, doc Document) (int, error) {
	logger := contextutil.LoggerFromContext(ctx)

	chunks := p.chunker.Split(doc.Pages)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrEmptyDocument, doc.SourceFile)
	}

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := p.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("%w: embedding batch failed: %v", ErrIndexing, err)
		}
		if len(vectors) != len(batch) {
			return 0, fmt.Errorf("%w: expected %d embeddings, got %d", ErrIndexing, len(batch), len(vectors))
		}

		points := make([]vectorstore.Point, len(batch))
		for i, chunk := range batch {
			points[i] = vectorstore.Point{
				ID:  PointID(sessionID, chunk.ID),
				Vec: vectors[i],
				Meta: map[string]any{
					vectorstore.PayloadChunkID:    chunk.ID,
					vectorstore.PayloadSessionID:  sessionID,
					vectorstore.PayloadSourceFile: chunk.SourceFile,
					vectorstore.PayloadPageNumber: chunk.PageNumber,
					vectorstore.PayloadText:       chunk.Text,
				},
			}
		}

		if err := p.vectors.Upsert(ctx, p.collection, points); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrIndexing, err)
		}
	}

	if err := p.chunkRepo.SaveChunks(ctx, sessionID, chunks); err != nil {
		return 0, fmt.Errorf("failed to persist chunks: %w", err)
	}
	p.store.AddChunks(sessionID, chunks)

	logger.InfoContext(ctx, "document ingested",
		"session_id", sessionID,
		"source_file", doc.SourceFile,
		"pages", len(doc.Pages),
		"chunks", len(chunks),
	)
	return len(chunks), nil
}

// ClearSession removes every trace of a session's documents: vector points,
// persisted chunks and the in-memory store entry. A vector delete failure is
// logged and tolerated since the new upload overwrites points with the same
// deterministic ids.
func (p *Pipeline) ClearSession(ctx context.Context, sessionID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	chunks, err := p.chunkRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to list session chunks: %w", err)
	}

	if len(chunks) > 0 {
		ids := make([]string, len(chunks))
		for i, chunk := range chunks {
			ids[i] = PointID(sessionID, chunk.ID)
		}
		if err := p.vectors.Delete(ctx, p.collection, ids); err != nil {
			logger.WarnContext(ctx, "failed to delete session vectors", "session_id", sessionID, "count", len(ids), "error", err)
		}
	}

	if err := p.chunkRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete persisted chunks: %w", err)
	}
	p.store.ClearSession(sessionID)

	logger.InfoContext(ctx, "session cleared", "session_id", sessionID, "chunks", len(chunks))
	return nil
}

// Rehydrate reloads every persisted session into the in-memory store.
// Called once at startup.
func (p *Pipeline) Rehydrate(ctx context.Context) error {
	sessions, err := p.chunkRepo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	for _, sessionID := range sessions {
		chunks, err := p.chunkRepo.ListBySession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session %s: %w", sessionID, err)
		}
		p.store.AddChunks(sessionID, chunks)
	}
	return nil
}

// PointID derives the deterministic vector point id for a session's chunk.
// Qdrant point ids must be UUIDs, so the human-readable chunk id is hashed
// into a UUIDv5 and kept in the payload for citation lookups.
func PointID(sessionID, chunkID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(sessionID+"/"+chunkID)).String()
}
