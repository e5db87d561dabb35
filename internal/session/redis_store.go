package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists guest sessions in Redis with a key TTL matching the
// session TTL, so expired sessions disappear on their own even if never read.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client *redis.Client) *RedisStore {
	if client == nil {
		panic("session: redis client required")
	}
	return &RedisStore{client: client}
}

func sessionKey(clientID string) string {
	return fmt.Sprintf("guest_session:%s", clientID)
}

// Put stores the session JSON with the session TTL.
func (s *RedisStore) Put(ctx context.Context, clientID string, sess *GuestSession) error {
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(clientID), payload, TTL).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

// Get returns the stored session or ErrSessionNotFound.
func (s *RedisStore) Get(ctx context.Context, clientID string) (*GuestSession, error) {
	payload, err := s.client.Get(ctx, sessionKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}
	var sess GuestSession
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &sess, nil
}

// Delete removes the session key.
func (s *RedisStore) Delete(ctx context.Context, clientID string) error {
	if err := s.client.Del(ctx, sessionKey(clientID)).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
