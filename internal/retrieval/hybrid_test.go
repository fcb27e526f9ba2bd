package retrieval_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"docrag/internal/domain"
	"docrag/internal/retrieval"
	"docrag/internal/retrieval/mocks"
	"docrag/internal/vectorstore"
	vsmocks "docrag/internal/vectorstore/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustChunk(t *testing.T, text, sourceFile string, page, seq int) domain.Chunk {
	t.Helper()
	chunk, err := domain.NewChunk(text, page, sourceFile, seq)
	if err != nil {
		t.Fatalf("failed to build chunk: %v", err)
	}
	return chunk
}

func queryVector() [][]float32 {
	return [][]float32{{0.1, 0.2, 0.3}}
}

func TestNewHybridRetrieverEmptyCorpus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	_, err := retrieval.NewHybridRetriever(nil, mocks.NewMockEmbedder(ctrl), vsmocks.NewMockVectorStore(ctrl), "chunks", "s1", nil)
	if !errors.Is(err, retrieval.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestSearchLexicalFloor(t *testing.T) {
	// A corpus chunk containing an exact keyword match must be included even
	// if the semantic leg ranks it low or misses it entirely.
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []domain.Chunk{
		mustChunk(t, "Sentiment analysis classifies text polarity.", "doc.pdf", 1, 0),
		mustChunk(t, "The appendix lists contributor names.", "doc.pdf", 9, 0),
	}

	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)

	vectors := vsmocks.NewMockVectorStore(ctrl)
	// Semantic leg only returns the irrelevant chunk.
	vectors.EXPECT().Search(gomock.Any(), "chunks", gomock.Any(), gomock.Any(), gomock.Any()).Return([]vectorstore.SearchResult{
		{PointID: "p2", Score: 0.11, Meta: map[string]any{
			"chunk_id":    chunks[1].ID,
			"source_file": "doc.pdf",
			"page_number": int64(9),
			"text":        chunks[1].Text,
		}},
	}, nil)

	retriever, err := retrieval.NewHybridRetriever(chunks, embedder, vectors, "chunks", "s1", nil)
	if err != nil {
		t.Fatalf("failed to build retriever: %v", err)
	}

	results, err := retriever.Search(context.Background(), "what is sentiment analysis", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	var found bool
	for _, result := range results {
		if result.Chunk.ID == chunks[0].ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected exact-keyword chunk in results, got %+v", results)
	}
}

func TestSearchFusionSumsScoresForSameChunk(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []domain.Chunk{
		mustChunk(t, "Sentiment analysis classifies text polarity.", "doc.pdf", 1, 0),
		mustChunk(t, "Completely unrelated text about gardening.", "doc.pdf", 2, 0),
	}

	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)

	vectors := vsmocks.NewMockVectorStore(ctrl)
	// Semantic leg returns the same chunk the lexical leg will find.
	vectors.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]vectorstore.SearchResult{
		{PointID: "p1", Score: 0.9, Meta: map[string]any{
			"chunk_id":    chunks[0].ID,
			"source_file": "doc.pdf",
			"page_number": int64(1),
			"text":        chunks[0].Text,
		}},
	}, nil)

	retriever, err := retrieval.NewHybridRetriever(chunks, embedder, vectors, "chunks", "s1", nil)
	if err != nil {
		t.Fatalf("failed to build retriever: %v", err)
	}

	results, err := retriever.Search(context.Background(), "sentiment analysis", 5)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected a single fused result, got %d", len(results))
	}
	// Combined score must exceed the semantic score alone: the lexical BM25
	// contribution was summed in.
	if results[0].Score <= 0.9 {
		t.Fatalf("expected summed score above 0.9, got %f", results[0].Score)
	}
}

func TestSearchSemanticFailureDegradesToLexical(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []domain.Chunk{
		mustChunk(t, "Sentiment analysis classifies text polarity.", "doc.pdf", 1, 0),
	}

	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("embedding service down"))

	vectors := vsmocks.NewMockVectorStore(ctrl)

	retriever, err := retrieval.NewHybridRetriever(chunks, embedder, vectors, "chunks", "s1", nil)
	if err != nil {
		t.Fatalf("failed to build retriever: %v", err)
	}

	results, err := retriever.Search(context.Background(), "sentiment analysis", 5)
	if err != nil {
		t.Fatalf("expected lexical-only degradation, got error: %v", err)
	}
	if len(results) != 1 || results[0].Chunk.ID != chunks[0].ID {
		t.Fatalf("expected lexical result to survive semantic failure, got %+v", results)
	}
}

func TestSearchSessionFiltersPassedToVectorStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []domain.Chunk{
		mustChunk(t, "alpha beta gamma", "a.pdf", 1, 0),
	}

	embedder := mocks.NewMockEmbedder(ctrl)
	embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)

	vectors := vsmocks.NewMockVectorStore(ctrl)
	vectors.EXPECT().
		Search(gomock.Any(), "chunks", gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ []float32, _ int, filters map[string]any) ([]vectorstore.SearchResult, error) {
			if filters[vectorstore.FilterSessionID] != "session-a" {
				t.Errorf("expected session filter session-a, got %v", filters[vectorstore.FilterSessionID])
			}
			files, _ := filters[vectorstore.FilterSourceFiles].([]string)
			if len(files) != 1 || files[0] != "a.pdf" {
				t.Errorf("expected source file filter [a.pdf], got %v", files)
			}
			return nil, nil
		})

	retriever, err := retrieval.NewHybridRetriever(chunks, embedder, vectors, "chunks", "session-a", []string{"a.pdf"})
	if err != nil {
		t.Fatalf("failed to build retriever: %v", err)
	}

	if _, err := retriever.Search(context.Background(), "alpha", 3); err != nil {
		t.Fatalf("search failed: %v", err)
	}
}

func TestSearchDeterministicForIdenticalInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []domain.Chunk{
		mustChunk(t, "renewal terms for the contract", "a.pdf", 1, 0),
		mustChunk(t, "terms of renewal in the contract", "a.pdf", 2, 0),
		mustChunk(t, "gardening tips for spring", "a.pdf", 3, 0),
	}

	run := func() []string {
		embedder := mocks.NewMockEmbedder(ctrl)
		embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(queryVector(), nil)
		vectors := vsmocks.NewMockVectorStore(ctrl)
		vectors.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

		retriever, err := retrieval.NewHybridRetriever(chunks, embedder, vectors, "chunks", "s1", nil)
		if err != nil {
			t.Fatalf("failed to build retriever: %v", err)
		}
		results, err := retriever.Search(context.Background(), "contract renewal terms", 3)
		if err != nil {
			t.Fatalf("search failed: %v", err)
		}
		ids := make([]string, len(results))
		for i, result := range results {
			ids[i] = result.Chunk.ID
		}
		return ids
	}

	first := run()
	second := run()
	if strings.Join(first, ",") != strings.Join(second, ",") {
		t.Fatalf("expected deterministic ordering, got %v vs %v", first, second)
	}
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	chunks := []domain.Chunk{mustChunk(t, "alpha", "a.pdf", 1, 0)}
	retriever, err := retrieval.NewHybridRetriever(chunks, mocks.NewMockEmbedder(ctrl), vsmocks.NewMockVectorStore(ctrl), "chunks", "s1", nil)
	if err != nil {
		t.Fatalf("failed to build retriever: %v", err)
	}

	results, err := retriever.Search(context.Background(), "", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results for empty query, got %d", len(results))
	}
}
