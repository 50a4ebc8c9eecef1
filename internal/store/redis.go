// Package store persists conversation history in Redis, one list per
// session with a per-key idle TTL.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/newsbot/gateway/internal/config"
	"github.com/newsbot/gateway/internal/model/chat"
)

// Store is a Redis-backed append-only turn log. It is safe for
// concurrent use; the underlying client pools connections.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New builds a store from configuration. The connection is lazy; call
// Ping to verify reachability.
func New(cfg config.RedisConfig) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &Store{rdb: rdb, ttl: cfg.SessionTTL}
}

// Ping verifies the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

// AppendTurn appends a turn to the tail of the session's history,
// creating the session if absent, and resets the idle TTL to the full
// window. The append and the TTL refresh are two Redis commands; a
// failure in either is returned to the caller.
func (s *Store) AppendTurn(ctx context.Context, sessionID string, turn chat.Turn) error {
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("encode turn: %w", err)
	}

	key := sessionKey(sessionID)
	if err := s.rdb.RPush(ctx, key, payload).Err(); err != nil {
		return fmt.Errorf("append turn for session %s: %w", sessionID, err)
	}

	return s.ExpireAfter(ctx, sessionID, s.ttl)
}

// ExpireAfter sets the session's idle TTL.
func (s *Store) ExpireAfter(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := s.rdb.Expire(ctx, sessionKey(sessionID), ttl).Err(); err != nil {
		return fmt.Errorf("refresh ttl for session %s: %w", sessionID, err)
	}
	return nil
}

// History returns the session's turns in insertion order. A missing or
// expired session yields an empty slice. The TTL is not touched.
func (s *Store) History(ctx context.Context, sessionID string) ([]chat.Turn, error) {
	entries, err := s.rdb.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch history for session %s: %w", sessionID, err)
	}

	turns := make([]chat.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn chat.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, fmt.Errorf("decode turn for session %s: %w", sessionID, err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear deletes the session and its history. Clearing a session that
// does not exist is not an error.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear session %s: %w", sessionID, err)
	}
	return nil
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
