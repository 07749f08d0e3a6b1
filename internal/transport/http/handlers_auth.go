package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
)

const githubUserURL = "https://api.github.com/user"

// GET /login
func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "session/new", http.StatusOK, map[string]any{
		"GithubEnabled": s.oauth != nil,
	})
}

// POST /login
func (s *Server) loginCreate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, err := s.users.Authenticate(r.Context(), app.AuthLocal, app.Credentials{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
	if errors.Is(err, domain.ErrAuthFailure) {
		sess.state.AddFlash("error", "Authentication has failed. Retry it again.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.finishLogin(w, r, user)
}

// DELETE /login
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.state.Logout()
	sess.user = nil
	http.Redirect(w, r, "/goback", http.StatusFound)
}

// GET /auth/github
func (s *Server) githubAuth(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		s.handleError(w, r, fmt.Errorf("github authentication is not configured"))
		return
	}
	sess := sessionFrom(r)
	state := uuid.NewString()
	sess.state.OAuthState = state
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// githubProfile is the slice of the GitHub user API response we need.
type githubProfile struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
}

// GET /auth/github/callback
func (s *Server) githubCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		s.handleError(w, r, fmt.Errorf("github authentication is not configured"))
		return
	}
	sess := sessionFrom(r)

	wantState := sess.state.OAuthState
	sess.state.OAuthState = ""
	if wantState == "" || r.URL.Query().Get("state") != wantState {
		sess.state.AddFlash("error", "Authentication has failed. Retry it again.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	token, err := s.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		sess.state.AddFlash("error", "Authentication has failed. Retry it again.")
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	profile, err := s.fetchGithubProfile(r.Context(), token)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	user, err := s.users.Authenticate(r.Context(), app.AuthGithub, app.Credentials{
		GithubID:       profile.ID,
		GithubUsername: profile.Login,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.finishLogin(w, r, user)
}

func (s *Server) fetchGithubProfile(ctx context.Context, token *oauth2.Token) (githubProfile, error) {
	resp, err := s.oauth.Client(ctx, token).Get(githubUserURL)
	if err != nil {
		return githubProfile{}, fmt.Errorf("fetch github profile: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return githubProfile{}, fmt.Errorf("github profile request returned %s", resp.Status)
	}
	var profile githubProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return githubProfile{}, fmt.Errorf("decode github profile: %w", err)
	}
	return profile, nil
}

// finishLogin records the identity, starts the inactivity window and sends
// the browser back where it was.
func (s *Server) finishLogin(w http.ResponseWriter, r *http.Request, user *domain.User) {
	sess := sessionFrom(r)
	sess.state.Login(user.ID, time.Now(), s.sessions.idle)
	sess.user = user
	sess.state.AddFlash("success", "Welcome!")
	http.Redirect(w, r, "/goback", http.StatusFound)
}
