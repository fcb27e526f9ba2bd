package rag

import (
	"strings"
	"testing"

	"docrag/internal/domain"
)

func result(sourceFile string, page int, text string) domain.SearchResult {
	return domain.SearchResult{
		Score: 1.0,
		Chunk: domain.Chunk{
			ID:         domain.ChunkID(sourceFile, page, 0),
			Text:       text,
			PageNumber: page,
			SourceFile: sourceFile,
		},
	}
}

func TestBuildCitationsDeduplicatesByFileAndPage(t *testing.T) {
	evidence := []domain.SearchResult{
		result("a.pdf", 1, "first snippet"),
		result("a.pdf", 1, "second snippet, same page"),
		result("a.pdf", 2, "other page"),
		result("b.pdf", 1, "other file"),
	}

	citations := BuildCitations(evidence)

	if len(citations) != 3 {
		t.Fatalf("expected 3 citations, got %d", len(citations))
	}
	if citations[0].Snippet != "first snippet" {
		t.Errorf("expected first occurrence snippet to win, got %q", citations[0].Snippet)
	}
}

func TestBuildCitationsKeepsFirstSeenOrder(t *testing.T) {
	evidence := []domain.SearchResult{
		result("z.pdf", 9, "late alphabet, seen first"),
		result("a.pdf", 1, "early alphabet, seen second"),
	}

	citations := BuildCitations(evidence)

	if len(citations) != 2 {
		t.Fatalf("expected 2 citations, got %d", len(citations))
	}
	if citations[0].SourceFile != "z.pdf" || citations[1].SourceFile != "a.pdf" {
		t.Errorf("expected first-seen order, got %q then %q", citations[0].SourceFile, citations[1].SourceFile)
	}
}

func TestBuildCitationsSkipsIncompleteEvidence(t *testing.T) {
	evidence := []domain.SearchResult{
		{Score: 1, Chunk: domain.Chunk{Text: "no source", PageNumber: 1}},
		{Score: 1, Chunk: domain.Chunk{Text: "no page", SourceFile: "a.pdf"}},
		result("a.pdf", 3, "complete"),
	}

	citations := BuildCitations(evidence)

	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if citations[0].PageNumber != 3 {
		t.Errorf("expected page 3, got %d", citations[0].PageNumber)
	}
}

func TestBuildCitationsTruncatesSnippet(t *testing.T) {
	long := strings.Repeat("x", 500)
	citations := BuildCitations([]domain.SearchResult{result("a.pdf", 1, long)})

	if len(citations) != 1 {
		t.Fatalf("expected 1 citation, got %d", len(citations))
	}
	if got := len([]rune(citations[0].Snippet)); got != citationSnippetLen {
		t.Errorf("expected snippet of %d runes, got %d", citationSnippetLen, got)
	}
}

func TestBuildCitationsEmptyEvidence(t *testing.T) {
	if citations := BuildCitations(nil); len(citations) != 0 {
		t.Errorf("expected no citations, got %d", len(citations))
	}
}
