package retrieval

import (
	"sort"

	"docrag/internal/domain"
)

// Rerank refines hybrid candidates with a finer-grained relevance score: the
// number of distinct query tokens that also occur in the candidate text. It
// is a cheap second pass, not a learned model; it exists to discard hybrid
// false positives before they reach answer generation.
//
// The output never exceeds topK, is always a subset of the input, and ties
// keep the original candidate order.
func Rerank(query string, candidates []domain.SearchResult, topK int) []domain.SearchResult {
	if len(candidates) == 0 || topK <= 0 {
		return nil
	}

	queryTokens := Tokenize(query)
	querySet := make(map[string]struct{}, len(queryTokens))
	for _, token := range queryTokens {
		querySet[token] = struct{}{}
	}

	overlaps := make([]int, len(candidates))
	for i, candidate := range candidates {
		seen := make(map[string]struct{})
		for _, token := range Tokenize(candidate.Chunk.Text) {
			if _, inQuery := querySet[token]; !inQuery {
				continue
			}
			seen[token] = struct{}{}
		}
		overlaps[i] = len(seen)
	}

	indices := make([]int, len(candidates))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(a, b int) bool {
		return overlaps[indices[a]] > overlaps[indices[b]]
	})

	if topK > len(indices) {
		topK = len(indices)
	}
	out := make([]domain.SearchResult, 0, topK)
	for _, idx := range indices[:topK] {
		out = append(out, candidates[idx])
	}
	return out
}
