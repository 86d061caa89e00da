package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"moodbot/domain"
	"moodbot/sessions"
)

// SessionStore хранит сессии диалога в Redis. TTL ключа выбрасывает брошенные опросы
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ sessions.Store = (*SessionStore)(nil)

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, userID int64) (sessions.Session, error) {
	val, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sessions.Session{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return sessions.Session{}, fmt.Errorf("get session %d: %w", userID, err)
	}

	var stored sessionRedis
	if err := json.Unmarshal(val, &stored); err != nil {
		return sessions.Session{}, fmt.Errorf("failed to unmarshal session %d: %w", userID, err)
	}
	return sessionFromRedis(stored)
}

func (s *SessionStore) Put(ctx context.Context, userID int64, session sessions.Session) error {
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}
	data, err := json.Marshal(sessionToRedis(session))
	if err != nil {
		return fmt.Errorf("failed to marshal session %d: %w", userID, err)
	}
	return s.client.Set(ctx, s.key(userID), data, s.ttl).Err()
}

func (s *SessionStore) Delete(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, s.key(userID)).Err()
}

func (s *SessionStore) key(userID int64) string {
	return fmt.Sprintf("moodbot:session:%d", userID)
}
