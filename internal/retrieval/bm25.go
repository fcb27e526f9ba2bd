package retrieval

import (
	"math"
	"strings"
	"unicode"
)

// Okapi BM25 parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// BM25Index is an in-memory keyword index over one session's chunk texts.
// It is fit to that session's vocabulary only and must be rebuilt per corpus.
type BM25Index struct {
	docFreqs  []map[string]int // term frequency per document
	docLens   []int
	avgDocLen float64
	idf       map[string]float64
}

// NewBM25Index builds the index from the corpus texts. Documents keep their
// positional index, so scores line up with the input slice.
func NewBM25Index(texts []string) *BM25Index {
	idx := &BM25Index{
		docFreqs: make([]map[string]int, len(texts)),
		docLens:  make([]int, len(texts)),
		idf:      make(map[string]float64),
	}

	termDocCount := make(map[string]int)
	var totalLen int
	for i, text := range texts {
		tokens := Tokenize(text)
		freqs := make(map[string]int, len(tokens))
		for _, token := range tokens {
			freqs[token]++
		}
		idx.docFreqs[i] = freqs
		idx.docLens[i] = len(tokens)
		totalLen += len(tokens)
		for term := range freqs {
			termDocCount[term]++
		}
	}

	if len(texts) > 0 {
		idx.avgDocLen = float64(totalLen) / float64(len(texts))
	}

	n := float64(len(texts))
	for term, df := range termDocCount {
		// Okapi IDF with the +1 inside the log keeps values positive.
		idx.idf[term] = math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
	}

	return idx
}

// Scores returns the BM25 score of every document for the query, positionally
// aligned with the corpus the index was built from.
func (idx *BM25Index) Scores(query string) []float64 {
	scores := make([]float64, len(idx.docFreqs))
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return scores
	}

	for i, freqs := range idx.docFreqs {
		if idx.docLens[i] == 0 {
			continue
		}
		norm := 1 - bm25B + bm25B*float64(idx.docLens[i])/idx.avgDocLen
		var score float64
		for _, term := range queryTokens {
			tf := float64(freqs[term])
			if tf == 0 {
				continue
			}
			score += idx.idf[term] * (tf * (bm25K1 + 1)) / (tf + bm25K1*norm)
		}
		scores[i] = score
	}
	return scores
}

// Tokenize lowercases the text and splits it on any non-alphanumeric rune.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}
	tokens := strings.Fields(builder.String())
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}
