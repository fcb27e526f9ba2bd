package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks docrag/internal/vectorstore VectorStore

import "context"

// Payload keys stored alongside every chunk vector. Embedding dimensionality
// is fixed for the lifetime of a collection; changing the embedding model
// requires a new collection.
const (
	PayloadChunkID    = "chunk_id"
	PayloadSessionID  = "session_id"
	PayloadSourceFile = "source_file"
	PayloadPageNumber = "page_number"
	PayloadText       = "text"
)

// Filter keys accepted by Search.
const (
	FilterSessionID   = "session_id"
	FilterSourceFiles = "source_files"
)

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult represents a search result from vector search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for the external nearest-neighbor index.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search performs a similarity search with optional filters.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error

	// CollectionExists reports whether the collection exists. Used by health
	// checks.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}
