package rag

import (
	"docrag/internal/domain"
)

// citationSnippetLen caps the snippet carried by each citation.
const citationSnippetLen = 200

// BuildCitations extracts (source_file, page_number, snippet) per evidence
// item. Items missing a source file or page number are skipped. Citations are
// deduplicated by (source_file, page_number) keeping the first occurrence's
// snippet, in first-seen order rather than score order, so citation numbering
// in the rendered answer is reproducible.
func BuildCitations(evidence []domain.SearchResult) []domain.Citation {
	type key struct {
		sourceFile string
		pageNumber int
	}

	seen := make(map[key]struct{}, len(evidence))
	citations := make([]domain.Citation, 0, len(evidence))
	for _, result := range evidence {
		if result.Chunk.SourceFile == "" || result.Chunk.PageNumber < 1 {
			continue
		}
		k := key{sourceFile: result.Chunk.SourceFile, pageNumber: result.Chunk.PageNumber}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		snippet := result.Chunk.Text
		if runes := []rune(snippet); len(runes) > citationSnippetLen {
			snippet = string(runes[:citationSnippetLen])
		}
		citations = append(citations, domain.Citation{
			SourceFile: result.Chunk.SourceFile,
			PageNumber: result.Chunk.PageNumber,
			Snippet:    snippet,
		})
	}
	return citations
}
