package retrieval

import (
	"testing"

	"docrag/internal/domain"
)

func candidate(id, text string, score float64) domain.SearchResult {
	return domain.SearchResult{
		Score: score,
		Chunk: domain.Chunk{ID: id, Text: text, PageNumber: 1, SourceFile: "doc.pdf"},
	}
}

func TestRerankOrdersByTokenOverlap(t *testing.T) {
	candidates := []domain.SearchResult{
		candidate("c1", "gardening tips for spring", 5.0),
		candidate("c2", "sentiment analysis of product reviews", 1.0),
		candidate("c3", "the analysis chapter", 2.0),
	}

	out := Rerank("sentiment analysis reviews", candidates, 3)
	if len(out) != 3 {
		t.Fatalf("expected 3 results, got %d", len(out))
	}
	if out[0].Chunk.ID != "c2" {
		t.Errorf("expected c2 first (3 overlapping tokens), got %s", out[0].Chunk.ID)
	}
	if out[1].Chunk.ID != "c3" {
		t.Errorf("expected c3 second (1 overlapping token), got %s", out[1].Chunk.ID)
	}
}

func TestRerankOutputNeverExceedsTopK(t *testing.T) {
	candidates := []domain.SearchResult{
		candidate("c1", "alpha beta", 1),
		candidate("c2", "alpha gamma", 2),
		candidate("c3", "alpha delta", 3),
	}

	for _, topK := range []int{1, 2, 3, 10} {
		out := Rerank("alpha", candidates, topK)
		if len(out) > topK {
			t.Errorf("topK=%d: output size %d exceeds limit", topK, len(out))
		}
		if len(out) > len(candidates) {
			t.Errorf("topK=%d: output larger than input", topK)
		}
	}
}

func TestRerankOutputIsSubsetOfInput(t *testing.T) {
	candidates := []domain.SearchResult{
		candidate("c1", "alpha beta", 1),
		candidate("c2", "gamma delta", 2),
	}
	inputIDs := map[string]struct{}{"c1": {}, "c2": {}}

	out := Rerank("alpha", candidates, 5)
	for _, result := range out {
		if _, ok := inputIDs[result.Chunk.ID]; !ok {
			t.Errorf("result %s is not part of the input candidates", result.Chunk.ID)
		}
	}
}

func TestRerankTiesKeepOriginalOrder(t *testing.T) {
	// All candidates have identical overlap, so the candidate order must win.
	candidates := []domain.SearchResult{
		candidate("c1", "alpha one", 1),
		candidate("c2", "alpha two", 2),
		candidate("c3", "alpha three", 3),
	}

	out := Rerank("alpha", candidates, 3)
	for i, want := range []string{"c1", "c2", "c3"} {
		if out[i].Chunk.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, out[i].Chunk.ID)
		}
	}
}

func TestRerankEmptyInput(t *testing.T) {
	if out := Rerank("query", nil, 3); len(out) != 0 {
		t.Fatalf("expected empty output, got %d", len(out))
	}
	if out := Rerank("query", []domain.SearchResult{candidate("c1", "text", 1)}, 0); len(out) != 0 {
		t.Fatalf("expected empty output for topK=0, got %d", len(out))
	}
}

func TestRerankCountsDistinctTokensOnly(t *testing.T) {
	candidates := []domain.SearchResult{
		candidate("c1", "alpha alpha alpha alpha", 1),
		candidate("c2", "alpha beta", 2),
	}

	out := Rerank("alpha beta", candidates, 2)
	if out[0].Chunk.ID != "c2" {
		t.Fatalf("expected distinct-token overlap to rank c2 first, got %s", out[0].Chunk.ID)
	}
}
