package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quiz-web/internal/domain"
)

// SessionStore persists session blobs in the sessions table. Expired rows
// count as absent on read and are removed by the periodic PurgeExpired sweep.
type SessionStore struct {
	db *bun.DB
}

func NewSessionStore(db *bun.DB) *SessionStore {
	return &SessionStore{db: db}
}

func (s *SessionStore) Load(ctx context.Context, sid string) (domain.SessionState, bool, error) {
	row := new(domain.Session)
	err := s.db.NewSelect().Model(row).Where("sid = ?", sid).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SessionState{}, false, nil
	}
	if err != nil {
		return domain.SessionState{}, false, fmt.Errorf("load session: %w", err)
	}
	if row.Expires.Before(time.Now()) {
		return domain.SessionState{}, false, nil
	}
	var state domain.SessionState
	if err := json.Unmarshal(row.Data, &state); err != nil {
		return domain.SessionState{}, false, fmt.Errorf("decode session: %w", err)
	}
	return state, true, nil
}

func (s *SessionStore) Save(ctx context.Context, sid string, state domain.SessionState, expires time.Time) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	row := &domain.Session{SID: sid, Expires: expires, Data: data}
	_, err = s.db.NewInsert().Model(row).
		On("CONFLICT (sid) DO UPDATE").
		Set("expires = EXCLUDED.expires").
		Set("data = EXCLUDED.data").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, sid string) error {
	_, err := s.db.NewDelete().Model((*domain.Session)(nil)).Where("sid = ?", sid).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.NewDelete().Model((*domain.Session)(nil)).
		Where("expires < ?", now).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
