// Package ingest turns uploaded page text into indexed, citation-tagged
// chunks: it splits pages into overlapping windows, embeds them, upserts the
// vectors into the external index and hands the chunks to the session store.
package ingest

import (
	"log/slog"
	"strings"

	"docrag/internal/domain"
)

// Default window parameters, sized to keep a chunk within a few hundred
// embedding tokens.
const (
	DefaultChunkSize = 800
	DefaultOverlap   = 150
)

// Chunker splits normalized page text into overlapping text windows,
// preserving page and source identity on every resulting chunk.
type Chunker struct {
	chunkSize int
	overlap   int
	logger    *slog.Logger
}

// NewChunker creates a chunker. Invalid sizes fall back to the defaults;
// the overlap is clamped below the chunk size so the window always advances.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 2
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		logger:    slog.Default(),
	}
}

// Split chunks every page into windows of at most chunkSize characters with
// overlap characters shared between consecutive windows. A page that cannot
// be split (blank or whitespace-only text, invalid page number) is skipped
// with a logged warning; one bad page never aborts the batch.
//
// Chunk ids are deterministic ({source_file}_p{page}_c{seq}), so re-chunking
// identical input produces identical ids.
func (c *Chunker) Split(pages []domain.Page) []domain.Chunk {
	var chunks []domain.Chunk

	for _, page := range pages {
		pageChunks, ok := c.splitPage(page)
		if !ok {
			c.logger.Warn("skipping page that could not be chunked",
				"source_file", page.SourceFile,
				"page_number", page.PageNumber,
			)
			continue
		}
		chunks = append(chunks, pageChunks...)
	}

	c.logger.Info("chunking completed", "pages", len(pages), "chunks", len(chunks))
	return chunks
}

func (c *Chunker) splitPage(page domain.Page) ([]domain.Chunk, bool) {
	text := strings.TrimSpace(page.Text)
	if text == "" || page.PageNumber < 1 || page.SourceFile == "" {
		return nil, false
	}

	step := c.chunkSize - c.overlap
	runes := []rune(text)

	var chunks []domain.Chunk
	seq := 0
	for start := 0; start < len(runes); start += step {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		window := strings.TrimSpace(string(runes[start:end]))
		if window == "" {
			break
		}

		chunk, err := domain.NewChunk(window, page.PageNumber, page.SourceFile, seq)
		if err != nil {
			return nil, false
		}
		chunks = append(chunks, chunk)
		seq++

		if end == len(runes) {
			break
		}
	}
	return chunks, true
}
