// Package docstore holds every ingested chunk for a session and is the gate
// against cross-session leakage. The store is safe for concurrent use: the
// outer map is guarded separately from each session's chunk list, so
// operations on different session ids never block each other.
package docstore

import (
	"sync"

	"docrag/internal/domain"
)

// DocumentInfo describes one source file within a session.
type DocumentInfo struct {
	SourceFile string `json:"source_file"`
	ChunkCount int    `json:"chunk_count"`
}

type session struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

// Store is a session-keyed chunk store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// New creates an empty store.
func New() *Store {
	return &Store{
		sessions: make(map[string]*session),
	}
}

// getOrCreate returns the session entry, creating it if absent.
func (s *Store) getOrCreate(sessionID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		entry = &session{}
		s.sessions[sessionID] = entry
	}
	return entry
}

// get returns the session entry or nil.
func (s *Store) get(sessionID string) *session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[sessionID]
}

// AddChunks appends chunks to a session, creating the session entry if it
// does not exist yet.
func (s *Store) AddChunks(sessionID string, chunks []domain.Chunk) {
	if len(chunks) == 0 {
		return
	}
	entry := s.getOrCreate(sessionID)
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.chunks = append(entry.chunks, chunks...)
}

// GetAllChunks returns a copy of the session's chunks in insertion order.
// Unknown sessions yield an empty slice, never an error.
func (s *Store) GetAllChunks(sessionID string) []domain.Chunk {
	entry := s.get(sessionID)
	if entry == nil {
		return nil
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	out := make([]domain.Chunk, len(entry.chunks))
	copy(out, entry.chunks)
	return out
}

// GetDocuments returns the session's chunks whose source file is in the
// requested set, preserving store order.
func (s *Store) GetDocuments(sessionID string, filenames []string) []domain.Chunk {
	entry := s.get(sessionID)
	if entry == nil {
		return nil
	}
	wanted := make(map[string]struct{}, len(filenames))
	for _, name := range filenames {
		wanted[name] = struct{}{}
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	var out []domain.Chunk
	for _, chunk := range entry.chunks {
		if _, ok := wanted[chunk.SourceFile]; ok {
			out = append(out, chunk)
		}
	}
	return out
}

// Documents lists the distinct source files of a session with their chunk
// counts, in first-seen order.
func (s *Store) Documents(sessionID string) []DocumentInfo {
	entry := s.get(sessionID)
	if entry == nil {
		return nil
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	counts := make(map[string]int)
	var order []string
	for _, chunk := range entry.chunks {
		if _, seen := counts[chunk.SourceFile]; !seen {
			order = append(order, chunk.SourceFile)
		}
		counts[chunk.SourceFile]++
	}
	out := make([]DocumentInfo, 0, len(order))
	for _, name := range order {
		out = append(out, DocumentInfo{SourceFile: name, ChunkCount: counts[name]})
	}
	return out
}

// ClearSession removes the session entry entirely. Called before each fresh
// upload batch so stale chunks from a previous document set cannot leak into
// new answers.
func (s *Store) ClearSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
