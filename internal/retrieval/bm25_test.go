package retrieval

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple", "hello world", []string{"hello", "world"}},
		{"lowercases", "Hello World", []string{"hello", "world"}},
		{"strips punctuation", "What is sentiment analysis?", []string{"what", "is", "sentiment", "analysis"}},
		{"digits kept", "section 4.2 applies", []string{"section", "4", "2", "applies"}},
		{"empty", "", nil},
		{"only punctuation", "?!...", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBM25ScoresMatchingDocumentHighest(t *testing.T) {
	corpus := []string{
		"Sentiment analysis classifies text polarity.",
		"The quarterly report covers revenue and expenses.",
		"Neural networks learn representations from data.",
	}
	idx := NewBM25Index(corpus)

	scores := idx.Scores("what is sentiment analysis")
	if scores[0] <= 0 {
		t.Fatalf("expected positive score for matching document, got %f", scores[0])
	}
	if scores[0] <= scores[1] || scores[0] <= scores[2] {
		t.Fatalf("expected matching document to score highest, got %v", scores)
	}
}

func TestBM25ScoresNoMatchIsZero(t *testing.T) {
	idx := NewBM25Index([]string{"alpha beta", "gamma delta"})

	scores := idx.Scores("omega")
	for i, score := range scores {
		if score != 0 {
			t.Errorf("document %d: expected zero score for non-matching query, got %f", i, score)
		}
	}
}

func TestBM25ScoresEmptyQuery(t *testing.T) {
	idx := NewBM25Index([]string{"alpha beta"})

	scores := idx.Scores("")
	if len(scores) != 1 || scores[0] != 0 {
		t.Fatalf("expected single zero score, got %v", scores)
	}
}

func TestBM25ScoresDeterministic(t *testing.T) {
	corpus := []string{
		"contract renewal terms and conditions",
		"renewal of the service contract",
		"unrelated shopping list",
	}
	first := NewBM25Index(corpus).Scores("contract renewal")
	second := NewBM25Index(corpus).Scores("contract renewal")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical scores for identical input, got %v vs %v", first, second)
	}
}
