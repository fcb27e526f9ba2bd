package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"docrag/internal/domain"
)

const historyKeyPrefix = "chat:history:"

// RedisHistory stores conversation history in Redis, letting sessions
// survive a process restart and be shared across replicas. Redis RPUSH is
// atomic per key, which gives the per-session exclusivity the in-memory
// implementation provides with locks.
type RedisHistory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisHistory creates a Redis-backed history store. ttl of zero means
// entries never expire.
func NewRedisHistory(client *redis.Client, ttl time.Duration) *RedisHistory {
	return &RedisHistory{
		client: client,
		ttl:    ttl,
	}
}

func historyKey(sessionID string) string {
	return historyKeyPrefix + sessionID
}

// Append adds a message to the end of a session's history.
func (h *RedisHistory) Append(ctx context.Context, sessionID string, msg domain.ChatMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := historyKey(sessionID)
	pipe := h.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	if h.ttl > 0 {
		pipe.Expire(ctx, key, h.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// Messages returns a session's history in chronological order.
func (h *RedisHistory) Messages(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	entries, err := h.client.LRange(ctx, historyKey(sessionID), 0, -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	messages := make([]domain.ChatMessage, 0, len(entries))
	for _, entry := range entries {
		var msg domain.ChatMessage
		if err := json.Unmarshal([]byte(entry), &msg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// Clear removes a session's history entirely.
func (h *RedisHistory) Clear(ctx context.Context, sessionID string) error {
	if err := h.client.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
