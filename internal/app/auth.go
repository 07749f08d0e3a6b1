package app

import (
	"context"
	"fmt"

	"quiz-web/internal/domain"
)

// AuthMethod is the closed set of supported authentication modes.
type AuthMethod int

const (
	// AuthLocal authenticates with a username and password.
	AuthLocal AuthMethod = iota
	// AuthGithub authenticates with an already-verified GitHub identity.
	AuthGithub
)

// Credentials carries the inputs for one Authenticate call. Which fields are
// read depends on the method.
type Credentials struct {
	Username string
	Password string

	GithubID       int64
	GithubUsername string
}

// Authenticate is the single entry point for both authentication modes.
// Failed local credentials return domain.ErrAuthFailure; a federated login
// never fails here because the provider already verified the identity.
func (s *UserService) Authenticate(ctx context.Context, method AuthMethod, creds Credentials) (*domain.User, error) {
	switch method {
	case AuthLocal:
		user, ok, err := s.Verify(ctx, creds.Username, creds.Password)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, domain.ErrAuthFailure
		}
		return user, nil
	case AuthGithub:
		user, _, err := s.FindOrCreateFederated(ctx, creds.GithubID, creds.GithubUsername)
		return user, err
	default:
		return nil, fmt.Errorf("unknown auth method %d", method)
	}
}
