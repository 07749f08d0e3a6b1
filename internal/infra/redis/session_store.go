package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-web/internal/domain"
)

// SessionStore keeps session blobs in Redis, one JSON value per sid. Expiry
// rides on the key TTL, so PurgeExpired has nothing to sweep.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Load(ctx context.Context, sid string) (domain.SessionState, bool, error) {
	data, err := s.client.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, fmt.Errorf("load session: %w", err)
	}
	var state domain.SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("decode session: %w", err)
	}
	return state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, sid string, state domain.SessionState, expires time.Time) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := time.Until(expires)
	if ttl <= 0 {
		return s.Delete(ctx, sid)
	}
	if err := s.client.Set(ctx, s.key(sid), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	if err := s.client.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

func (s *SessionStore) key(sid string) string {
	return "quiz:web:session:" + sid
}
