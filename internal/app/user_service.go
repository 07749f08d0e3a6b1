package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"quiz-web/internal/domain"
)

// UsersPerPage is the fixed page size for the user listing.
const UsersPerPage = 10

// UserService contains the credential-store use cases.
type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

// Verify checks a local username/password pair. Unknown usernames and wrong
// passwords both yield (nil, false); neither is an error.
func (s *UserService) Verify(ctx context.Context, username, password string) (*domain.User, bool, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("find user: %w", err)
	}
	if !user.IsLocal() {
		return nil, false, nil
	}
	if !verifyPassword(password, user.Salt, user.PasswordHash) {
		return nil, false, nil
	}
	return user, true, nil
}

// FindOrCreateFederated resolves a GitHub identity to a local account,
// creating one on first login. Idempotent by githubID.
func (s *UserService) FindOrCreateFederated(ctx context.Context, githubID int64, githubUsername string) (*domain.User, bool, error) {
	user, err := s.users.FindByGithubID(ctx, githubID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("find federated user: %w", err)
	}

	user = &domain.User{
		GithubID:       githubID,
		GithubUsername: githubUsername,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create federated user: %w", err)
	}
	return user, true, nil
}

// Register creates a local account with a salted password hash.
func (s *UserService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	verr := &domain.ValidationError{}
	if strings.TrimSpace(username) == "" {
		verr.Add("username", "Username must not be empty.")
	}
	if password == "" {
		verr.Add("password", "Password must not be empty.")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	user := &domain.User{Username: username}
	if err := s.applyPassword(user, password); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword replaces a user's credential with a freshly salted hash.
func (s *UserService) SetPassword(ctx context.Context, user *domain.User, password string) error {
	if password == "" {
		verr := &domain.ValidationError{}
		return verr.Add("password", "Password must not be empty.")
	}
	if err := s.applyPassword(user, password); err != nil {
		return err
	}
	return s.users.UpdateCredential(ctx, user)
}

func (s *UserService) applyPassword(user *domain.User, password string) error {
	salt, err := newSalt()
	if err != nil {
		return err
	}
	user.Salt = salt
	user.PasswordHash = hashPassword(password, salt)
	return nil
}

// Get loads a user by id.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.FindByID(ctx, id)
}

// Index returns one page of users plus the total count. Pages are 1-indexed;
// out-of-range pages return an empty page.
func (s *UserService) Index(ctx context.Context, page int) ([]*domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	users, err := s.users.List(ctx, UsersPerPage*(page-1), UsersPerPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, count, nil
}

// Delete removes a user account. Quizzes they authored survive with a null
// author.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.users.Delete(ctx, id)
}
