package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/domain"
)

func newTestRepo(t *testing.T) *ChunkRepo {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	return NewChunkRepo(db)
}

func makeChunks(t *testing.T, sourceFile string, page, count int) []domain.Chunk {
	t.Helper()
	chunks := make([]domain.Chunk, 0, count)
	for i := 0; i < count; i++ {
		chunk, err := domain.NewChunk("text for chunk", page, sourceFile, i)
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestSaveAndListBySession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunks := makeChunks(t, "doc.pdf", 1, 3)
	require.NoError(t, repo.SaveChunks(ctx, "s1", chunks))

	got, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, chunk := range got {
		assert.Equal(t, chunks[i].ID, chunk.ID)
		assert.Equal(t, "doc.pdf", chunk.SourceFile)
		assert.Equal(t, 1, chunk.PageNumber)
	}
}

func TestListBySessionUnknown(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.ListBySession(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveChunksAppendsPositions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := makeChunks(t, "a.pdf", 1, 2)
	second := makeChunks(t, "b.pdf", 1, 2)
	require.NoError(t, repo.SaveChunks(ctx, "s1", first))
	require.NoError(t, repo.SaveChunks(ctx, "s1", second))

	got, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "a.pdf", got[0].SourceFile)
	assert.Equal(t, "b.pdf", got[2].SourceFile)
}

func TestSaveChunksReplaceIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	chunks := makeChunks(t, "doc.pdf", 1, 2)
	require.NoError(t, repo.SaveChunks(ctx, "s1", chunks))
	require.NoError(t, repo.SaveChunks(ctx, "s1", chunks))

	got, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, got, 2, "re-saving the same chunk ids must not duplicate rows")
}

func TestListSessions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveChunks(ctx, "s2", makeChunks(t, "a.pdf", 1, 1)))
	require.NoError(t, repo.SaveChunks(ctx, "s1", makeChunks(t, "b.pdf", 1, 1)))

	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, sessions)
}

func TestDeleteSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveChunks(ctx, "s1", makeChunks(t, "a.pdf", 1, 2)))
	require.NoError(t, repo.SaveChunks(ctx, "s2", makeChunks(t, "b.pdf", 1, 1)))

	require.NoError(t, repo.DeleteSession(ctx, "s1"))

	got, err := repo.ListBySession(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, got)

	other, err := repo.ListBySession(ctx, "s2")
	require.NoError(t, err)
	assert.Len(t, other, 1, "deleting one session must not touch another")
}
