// Package retrieval implements hybrid candidate retrieval: a lexical BM25 leg
// over the session's chunks fused with a semantic nearest-neighbor leg from
// the external vector index.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"docrag/internal/contextutil"
	"docrag/internal/domain"
	"docrag/internal/vectorstore"
)

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks docrag/internal/retrieval Embedder

// ErrEmptyCorpus is returned when a retriever is constructed with no chunks.
// That indicates a caller bug (querying before any upload), so it fails fast
// instead of silently returning no results.
var ErrEmptyCorpus = errors.New("retriever constructed with empty corpus")

// fusionPrefixLen is how many leading runes of chunk text take part in the
// fusion key alongside source file and page number.
const fusionPrefixLen = 50

// Embedder maps text to fixed-dimension vectors for semantic comparison.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// HybridRetriever fuses lexical and semantic candidate lists into one ranked
// result set. An instance is built fresh per request from the chunks of
// exactly one session; it must never be shared or cached across sessions.
type HybridRetriever struct {
	chunks      []domain.Chunk
	bm25        *BM25Index
	embedder    Embedder
	vectors     vectorstore.VectorStore
	collection  string
	sessionID   string
	sourceFiles []string
}

// NewHybridRetriever builds a retriever over one session's chunk set.
// sourceFiles optionally narrows the semantic leg to those files; the lexical
// leg is already narrowed because it only indexes the passed chunks.
func NewHybridRetriever(
	chunks []domain.Chunk,
	embedder Embedder,
	vectors vectorstore.VectorStore,
	collection string,
	sessionID string,
	sourceFiles []string,
) (*HybridRetriever, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyCorpus
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	return &HybridRetriever{
		chunks:      chunks,
		bm25:        NewBM25Index(texts),
		embedder:    embedder,
		vectors:     vectors,
		collection:  collection,
		sessionID:   sessionID,
		sourceFiles: sourceFiles,
	}, nil
}

// Search returns the top-k fused results for the query. The lexical and
// semantic legs do not depend on each other and run concurrently, bounding
// latency to the slower of the two. A semantic-leg failure degrades to
// lexical-only results with a logged warning.
func (r *HybridRetriever) Search(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if query == "" {
		logger.WarnContext(ctx, "empty query passed to retriever")
		return nil, nil
	}
	if topK <= 0 {
		topK = 1
	}

	type semanticOutcome struct {
		results []domain.SearchResult
		err     error
	}
	semanticCh := make(chan semanticOutcome, 1)
	go func() {
		results, err := r.semantic(ctx, query, topK)
		semanticCh <- semanticOutcome{results: results, err: err}
	}()

	lexical := r.lexical(query, topK)

	semantic := <-semanticCh
	if semantic.err != nil {
		logger.WarnContext(ctx, "semantic leg failed, continuing with lexical results only", "error", semantic.err)
	}

	fused := fuse(lexical, semantic.results)
	if len(fused) > topK {
		fused = fused[:topK]
	}

	logger.InfoContext(ctx, "hybrid retrieval completed",
		"lexical", len(lexical),
		"semantic", len(semantic.results),
		"fused", len(fused),
		"top_k", topK,
	)
	return fused, nil
}

// lexical scores every chunk with BM25 and keeps the topK positive scores.
// Zero or negative scores are treated as "no match" and excluded.
func (r *HybridRetriever) lexical(query string, topK int) []domain.SearchResult {
	scores := r.bm25.Scores(query)

	indices := make([]int, len(scores))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return scores[indices[a]] > scores[indices[b]]
	})

	results := make([]domain.SearchResult, 0, topK)
	for _, idx := range indices {
		if len(results) == topK {
			break
		}
		if scores[idx] <= 0 {
			break
		}
		results = append(results, domain.SearchResult{
			Score: scores[idx],
			Chunk: r.chunks[idx],
		})
	}
	return results
}

// semantic embeds the query and asks the vector index for the nearest
// neighbors within this retriever's session (and optional source-file set).
func (r *HybridRetriever) semantic(ctx context.Context, query string, topK int) ([]domain.SearchResult, error) {
	embeddings, err := r.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	filters := map[string]any{
		vectorstore.FilterSessionID: r.sessionID,
	}
	if len(r.sourceFiles) > 0 {
		filters[vectorstore.FilterSourceFiles] = r.sourceFiles
	}

	matches, err := r.vectors.Search(ctx, r.collection, embeddings[0], topK, filters)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]domain.SearchResult, 0, len(matches))
	for _, match := range matches {
		chunk, ok := chunkFromMeta(match.Meta)
		if !ok {
			continue
		}
		results = append(results, domain.SearchResult{
			Score: float64(match.Score),
			Chunk: chunk,
		})
	}
	return results, nil
}

// chunkFromMeta rebuilds a chunk from vector index payload metadata.
func chunkFromMeta(meta map[string]any) (domain.Chunk, bool) {
	sourceFile, _ := meta[vectorstore.PayloadSourceFile].(string)
	text, _ := meta[vectorstore.PayloadText].(string)
	chunkID, _ := meta[vectorstore.PayloadChunkID].(string)

	var pageNumber int
	switch v := meta[vectorstore.PayloadPageNumber].(type) {
	case int64:
		pageNumber = int(v)
	case float64:
		pageNumber = int(v)
	case int:
		pageNumber = v
	}

	if sourceFile == "" || text == "" || pageNumber < 1 {
		return domain.Chunk{}, false
	}
	return domain.Chunk{
		ID:         chunkID,
		Text:       text,
		PageNumber: pageNumber,
		SourceFile: sourceFile,
	}, true
}

// fuse merges the two candidate lists. Candidates are keyed by
// (source_file, page_number, text prefix) to identify the same underlying
// chunk even when metadata arrives from different sources; scores for the
// same key are summed, not normalized. The merged list is sorted descending
// by combined score with ties broken by discovery order, lexical before
// semantic, keeping results deterministic for identical inputs.
func fuse(lexical, semantic []domain.SearchResult) []domain.SearchResult {
	type entry struct {
		result domain.SearchResult
		order  int
	}

	byKey := make(map[string]*entry, len(lexical)+len(semantic))
	var ordered []*entry

	add := func(result domain.SearchResult) {
		key := fusionKey(result.Chunk)
		if existing, ok := byKey[key]; ok {
			existing.result.Score += result.Score
			return
		}
		e := &entry{result: result, order: len(ordered)}
		byKey[key] = e
		ordered = append(ordered, e)
	}

	for _, result := range lexical {
		add(result)
	}
	for _, result := range semantic {
		add(result)
	}

	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].result.Score > ordered[b].result.Score
	})

	out := make([]domain.SearchResult, len(ordered))
	for i, e := range ordered {
		out[i] = e.result
	}
	return out
}

// fusionKey identifies a chunk across retrieval legs.
func fusionKey(chunk domain.Chunk) string {
	prefix := chunk.Text
	if runes := []rune(prefix); len(runes) > fusionPrefixLen {
		prefix = string(runes[:fusionPrefixLen])
	}
	return fmt.Sprintf("%s|%d|%s", chunk.SourceFile, chunk.PageNumber, prefix)
}
