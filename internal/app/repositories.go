package app

import (
	"context"
	"time"

	"quiz-web/internal/domain"
)

// UserRepository abstracts how user accounts are stored.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByGithubID(ctx context.Context, githubID int64) (*domain.User, error)
	List(ctx context.Context, offset, limit int) ([]*domain.User, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, user *domain.User) error
	// UpdateCredential persists only the salt and password hash.
	UpdateCredential(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
}

// QuizRepository abstracts quiz catalog storage.
type QuizRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Quiz, error)
	Search(ctx context.Context, pattern string, offset, limit int) ([]*domain.Quiz, error)
	CountSearch(ctx context.Context, pattern string) (int, error)
	ListAll(ctx context.Context) ([]*domain.Quiz, error)
	Create(ctx context.Context, quiz *domain.Quiz) error
	Update(ctx context.Context, quiz *domain.Quiz) error
	Delete(ctx context.Context, id int64) error
}

// GroupRepository abstracts group catalog storage, including the quiz
// membership join rows.
type GroupRepository interface {
	FindByID(ctx context.Context, id int64) (*domain.Group, error)
	List(ctx context.Context) ([]*domain.Group, error)
	QuizIDs(ctx context.Context, groupID int64) ([]int64, error)
	Create(ctx context.Context, group *domain.Group) error
	// Update renames the group and replaces its membership with quizIDs in
	// one shot: members absent from quizIDs are detached, new ones attached.
	Update(ctx context.Context, group *domain.Group, name string, quizIDs []int64) error
	Delete(ctx context.Context, id int64) error
}

// PlayQuizSource is the read path for the random-play engine. Every call
// re-queries current group membership, so concurrent admin edits are
// tolerated without any invalidation protocol.
type PlayQuizSource interface {
	QuizByID(ctx context.Context, id int64) (*domain.Quiz, error)
	// CountRemaining reports how many group members are not in resolved.
	CountRemaining(ctx context.Context, groupID int64, resolved []int64) (int, error)
	// PickRemaining returns the quiz at offset into the id-ordered set of
	// group members not in resolved.
	PickRemaining(ctx context.Context, groupID int64, resolved []int64, offset int) (*domain.Quiz, error)
}

// SessionStore persists SessionState blobs keyed by an opaque session id.
// Load reports ok=false for a missing or expired session; the caller then
// starts from a fresh empty state. Writes are last-write-wins.
type SessionStore interface {
	Load(ctx context.Context, sid string) (domain.SessionState, bool, error)
	Save(ctx context.Context, sid string, state domain.SessionState, expires time.Time) error
	Delete(ctx context.Context, sid string) error
	// PurgeExpired removes sessions whose expiry has passed and returns how
	// many were dropped. Backends with native TTL may make this a no-op.
	PurgeExpired(ctx context.Context, now time.Time) (int, error)
}
