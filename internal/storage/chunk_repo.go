package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks docrag/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"fmt"

	"docrag/internal/domain"
)

// ChunkStore persists a session's chunks in insertion order.
type ChunkStore interface {
	// SaveChunks appends chunks to a session, preserving order.
	SaveChunks(ctx context.Context, sessionID string, chunks []domain.Chunk) error
	// ListBySession returns a session's chunks in insertion order.
	ListBySession(ctx context.Context, sessionID string) ([]domain.Chunk, error)
	// ListSessions returns every session id with persisted chunks.
	ListSessions(ctx context.Context) ([]string, error)
	// DeleteSession removes all chunks for a session.
	DeleteSession(ctx context.Context, sessionID string) error
}

// ChunkRepo is the SQLite implementation of ChunkStore.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

// SaveChunks appends chunks to a session inside one transaction. Positions
// continue from the session's current maximum, so repeated uploads with
// keep_existing preserve overall store order.
func (r *ChunkRepo) SaveChunks(ctx context.Context, sessionID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM chunks WHERE session_id = ?`,
		sessionID,
	).Scan(&next)
	if err != nil {
		return fmt.Errorf("failed to determine next position: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT OR REPLACE INTO chunks (session_id, chunk_id, source_file, page_number, text, position)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for i, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, sessionID, chunk.ID, chunk.SourceFile, chunk.PageNumber, chunk.Text, next+i); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// ListBySession returns a session's chunks in insertion order. An unknown
// session yields an empty slice.
func (r *ChunkRepo) ListBySession(ctx context.Context, sessionID string) ([]domain.Chunk, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT chunk_id, source_file, page_number, text
FROM chunks
WHERE session_id = ?
ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var chunks []domain.Chunk
	for rows.Next() {
		var chunk domain.Chunk
		if err := rows.Scan(&chunk.ID, &chunk.SourceFile, &chunk.PageNumber, &chunk.Text); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
	}
	return chunks, nil
}

// ListSessions returns every session id with persisted chunks.
func (r *ChunkRepo) ListSessions(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT session_id FROM chunks ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var sessions []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		sessions = append(sessions, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// DeleteSession removes all chunks for a session.
func (r *ChunkRepo) DeleteSession(ctx context.Context, sessionID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM chunks WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete session chunks: %w", err)
	}
	return nil
}
