// File: internal/cache/session.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/redis/go-redis/v9"
)

// SessionStore maps (bot, user) pairs to short-lived conversation ids.
type SessionStore interface {
	GetConversationID(ctx context.Context, botID, userID string) (string, error)
	DeleteConversationID(ctx context.Context, botID, userID string) (bool, error)
	Ping(ctx context.Context) error
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
	newID  func() (string, error)
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, logger logging.Logger) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		logger: logging.OrNoOp(logger),
		newID:  NewRequestID,
	}
}

// NewRedisClient builds a go-redis client from connection settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func SessionKey(botID, userID string) string {
	return botID + "." + userID
}

// GetConversationID returns the live conversation id for the pair, sliding
// its TTL, or starts a new conversation.
func (s *RedisSessionStore) GetConversationID(ctx context.Context, botID, userID string) (string, error) {
	key := SessionKey(botID, userID)

	existing, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return "", fmt.Errorf("refresh conversation ttl: %w", err)
		}
		return existing, nil
	case !errors.Is(err, redis.Nil):
		return "", fmt.Errorf("read conversation id: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return "", fmt.Errorf("generate conversation id: %w", err)
	}
	if err := s.client.Set(ctx, key, id, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store conversation id: %w", err)
	}
	s.logger.Info("New conversation started", "key", key, "conversation_id", id)
	return id, nil
}

// DeleteConversationID drops the session key; the next message starts a new
// conversation. Reports whether a key existed.
func (s *RedisSessionStore) DeleteConversationID(ctx context.Context, botID, userID string) (bool, error) {
	n, err := s.client.Del(ctx, SessionKey(botID, userID)).Result()
	if err != nil {
		return false, fmt.Errorf("delete conversation id: %w", err)
	}
	return n > 0, nil
}

func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
