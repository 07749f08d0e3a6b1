package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"quiz-web/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore. State is
// kept JSON-encoded so the round-trip matches the durable backends.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]sessionEntry
}

type sessionEntry struct {
	data    []byte
	expires time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]sessionEntry)}
}

func (s *SessionStore) Load(_ context.Context, sid string) (domain.SessionState, bool, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sid]
	s.mu.RUnlock()
	if !ok || entry.expires.Before(time.Now()) {
		return domain.SessionState{}, false, nil
	}
	var state domain.SessionState
	if err := json.Unmarshal(entry.data, &state); err != nil {
		return domain.SessionState{}, false, err
	}
	return state, true, nil
}

func (s *SessionStore) Save(_ context.Context, sid string, state domain.SessionState, expires time.Time) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sessions[sid] = sessionEntry{data: data, expires: expires}
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	delete(s.sessions, sid)
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for sid, entry := range s.sessions {
		if entry.expires.Before(now) {
			delete(s.sessions, sid)
			purged++
		}
	}
	return purged, nil
}
