// Package memory stores per-session conversation history. History is an
// append-only log: messages are appended in strict chronological order and
// never mutated.
package memory

import (
	"context"
	"sync"

	"docrag/internal/domain"
)

// History is the conversation history store.
type History interface {
	// Append adds a message to the end of a session's history.
	Append(ctx context.Context, sessionID string, msg domain.ChatMessage) error
	// Messages returns a session's history in chronological order.
	// Unknown sessions yield an empty slice, never an error.
	Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	// Clear removes a session's history entirely.
	Clear(ctx context.Context, sessionID string) error
}

type sessionLog struct {
	mu       sync.RWMutex
	messages []domain.ChatMessage
}

// InMemoryHistory keeps history in process memory. Locking is per session,
// so concurrent requests for different sessions never block each other.
type InMemoryHistory struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
}

// NewInMemoryHistory creates an empty history store.
func NewInMemoryHistory() *InMemoryHistory {
	return &InMemoryHistory{
		sessions: make(map[string]*sessionLog),
	}
}

func (h *InMemoryHistory) getOrCreate(sessionID string) *sessionLog {
	h.mu.Lock()
	defer h.mu.Unlock()
	log, ok := h.sessions[sessionID]
	if !ok {
		log = &sessionLog{}
		h.sessions[sessionID] = log
	}
	return log
}

// Append adds a message to the end of a session's history.
func (h *InMemoryHistory) Append(_ context.Context, sessionID string, msg domain.ChatMessage) error {
	log := h.getOrCreate(sessionID)
	log.mu.Lock()
	defer log.mu.Unlock()
	log.messages = append(log.messages, msg)
	return nil
}

// Messages returns a copy of a session's history in chronological order.
func (h *InMemoryHistory) Messages(_ context.Context, sessionID string) ([]domain.ChatMessage, error) {
	h.mu.RLock()
	log := h.sessions[sessionID]
	h.mu.RUnlock()
	if log == nil {
		return nil, nil
	}
	log.mu.RLock()
	defer log.mu.RUnlock()
	out := make([]domain.ChatMessage, len(log.messages))
	copy(out, log.messages)
	return out, nil
}

// Clear removes a session's history entirely.
func (h *InMemoryHistory) Clear(_ context.Context, sessionID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
	return nil
}
