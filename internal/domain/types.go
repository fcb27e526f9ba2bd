// Package domain holds the core value types shared by the ingestion and
// retrieval pipeline. All types are immutable after construction.
package domain

import (
	"fmt"
)

// Roles for conversation history entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Page is one page of extracted document text, as produced by the upload
// boundary. PageNumber is 1-based.
type Page struct {
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	SourceFile string `json:"source_file"`
}

// Chunk is the atomic retrieval unit: a bounded, citation-taggable slice of a
// document's text. The ID is deterministic for identical input, so re-chunking
// the same document always produces the same ids.
type Chunk struct {
	ID         string `json:"chunk_id"`
	Text       string `json:"text"`
	PageNumber int    `json:"page_number"`
	SourceFile string `json:"source_file"`
}

// NewChunk builds a validated chunk. The id format is
// {source_file}_p{page_number}_c{sequence}.
func NewChunk(text string, pageNumber int, sourceFile string, sequence int) (Chunk, error) {
	if text == "" {
		return Chunk{}, fmt.Errorf("chunk text is empty")
	}
	if pageNumber < 1 {
		return Chunk{}, fmt.Errorf("page number must be >= 1, got %d", pageNumber)
	}
	if sourceFile == "" {
		return Chunk{}, fmt.Errorf("source file is empty")
	}
	if sequence < 0 {
		return Chunk{}, fmt.Errorf("sequence must be >= 0, got %d", sequence)
	}
	return Chunk{
		ID:         ChunkID(sourceFile, pageNumber, sequence),
		Text:       text,
		PageNumber: pageNumber,
		SourceFile: sourceFile,
	}, nil
}

// ChunkID returns the deterministic chunk id for a source file, page and
// sequence index within the page.
func ChunkID(sourceFile string, pageNumber, sequence int) string {
	return fmt.Sprintf("%s_p%d_c%d", sourceFile, pageNumber, sequence)
}

// SearchResult pairs a retrieval score with the chunk it applies to.
// Results are transient and never persisted.
type SearchResult struct {
	Score float64 `json:"score"`
	Chunk Chunk   `json:"chunk"`
}

// Citation points a generated answer back at the exact source it used.
// Snippets are capped at 200 characters.
type Citation struct {
	SourceFile string `json:"source_file"`
	PageNumber int    `json:"page_number"`
	Snippet    string `json:"snippet"`
}

// ChatMessage is a single turn of a session's conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
