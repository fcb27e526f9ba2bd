// Package storage persists ingested chunks in SQLite so sessions survive a
// process restart. The vector index holds the embeddings; this layer holds
// the authoritative chunk text and metadata per session.
package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// New opens (or creates) the SQLite database at the given path.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite allows one writer at a time; serialize access through a single
	// connection to avoid SQLITE_BUSY under concurrent uploads.
	db.SetMaxOpenConns(1)

	return db, nil
}

// Migrate creates the schema if it does not exist.
func Migrate(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS chunks (
	session_id  TEXT    NOT NULL,
	chunk_id    TEXT    NOT NULL,
	source_file TEXT    NOT NULL,
	page_number INTEGER NOT NULL,
	text        TEXT    NOT NULL,
	position    INTEGER NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, chunk_id)
);
CREATE INDEX IF NOT EXISTS idx_chunks_session ON chunks(session_id, position);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
