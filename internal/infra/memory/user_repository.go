package memory

import (
	"context"
	"sort"
	"sync"

	"quiz-web/internal/domain"
)

// UserRepository is an in-memory implementation of app.UserRepository.
type UserRepository struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]*domain.User
	quizzes *QuizRepository // for detaching authorship on delete; may be nil
}

func NewUserRepository(quizzes *QuizRepository) *UserRepository {
	return &UserRepository{
		nextID:  1,
		users:   make(map[int64]*domain.User),
		quizzes: quizzes,
	}
}

func (r *UserRepository) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Username != "" && user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) FindByGithubID(_ context.Context, githubID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.GithubID != 0 && user.GithubID == githubID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) List(_ context.Context, offset, limit int) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		clone := *user
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	return page(all, offset, limit), nil
}

func (r *UserRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if user.Username != "" && existing.Username == user.Username {
			return &domain.DuplicateError{Field: "username", Value: user.Username}
		}
		if user.GithubUsername != "" && existing.GithubUsername == user.GithubUsername {
			return &domain.DuplicateError{Field: "githubUsername", Value: user.GithubUsername}
		}
	}
	user.ID = r.nextID
	r.nextID++
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *UserRepository) UpdateCredential(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.Salt = user.Salt
	existing.PasswordHash = user.PasswordHash
	return nil
}

// SetAdmin flips the admin flag, used when seeding sample data.
func (r *UserRepository) SetAdmin(id int64, isAdmin bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		user.IsAdmin = isAdmin
	}
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	if _, ok := r.users[id]; !ok {
		r.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(r.users, id)
	r.mu.Unlock()

	if r.quizzes != nil {
		r.quizzes.detachAuthor(id)
	}
	return nil
}

// page slices like a SQL OFFSET/LIMIT: out-of-range offsets yield an empty
// result rather than an error.
func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
