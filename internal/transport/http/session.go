package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
)

const sessionCookie = "quiz_session"

type sessionKeyType struct{}

var sessionKey sessionKeyType

// requestSession is the per-request view of one browser session: the opaque
// sid, the mutable state value, and the resolved login user (nil when
// anonymous).
type requestSession struct {
	sid   string
	state *domain.SessionState
	user  *domain.User
}

func sessionFrom(r *http.Request) *requestSession {
	sess, _ := r.Context().Value(sessionKey).(*requestSession)
	return sess
}

// sessionManager loads session state before each handler and persists it
// afterwards. Saves are last-write-wins on the whole blob.
type sessionManager struct {
	store  app.SessionStore
	users  *app.UserService
	idle   time.Duration
	maxAge time.Duration
}

func newSessionManager(store app.SessionStore, users *app.UserService, idle, maxAge time.Duration) *sessionManager {
	return &sessionManager{store: store, users: users, idle: idle, maxAge: maxAge}
}

func (m *sessionManager) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(sessionCookie); err == nil {
			sid = cookie.Value
		}

		var state domain.SessionState
		if sid != "" {
			loaded, ok, err := m.store.Load(r.Context(), sid)
			if err != nil {
				log.Printf("session load failed: %v", err)
			} else if ok {
				state = loaded
			}
		}
		if sid == "" {
			sid = uuid.NewString()
		}

		sess := &requestSession{sid: sid, state: &state}

		// Sliding inactivity window: an idle login is force-closed and the
		// request continues unauthenticated.
		if state.Touch(time.Now(), m.idle) {
			state.AddFlash("info", "User session has expired.")
		}

		if state.UserID != 0 {
			user, err := m.users.Get(r.Context(), state.UserID)
			switch {
			case err == nil:
				sess.user = user
			case errors.Is(err, domain.ErrNotFound):
				state.Logout()
			default:
				log.Printf("session user load failed: %v", err)
				state.Logout()
			}
		}

		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, sess)))

		if err := m.store.Save(r.Context(), sid, state, time.Now().Add(m.maxAge)); err != nil {
			log.Printf("session save failed: %v", err)
		}
	})
}

// sweep purges expired session rows on a fixed interval until ctx is done.
func (m *sessionManager) sweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			purged, err := m.store.PurgeExpired(ctx, now)
			if err != nil {
				log.Printf("session sweep failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("purged %d expired sessions", purged)
			}
		}
	}
}

// backURLPaths is the allow-list of restorable collection-root GET paths.
var backURLPaths = map[string]bool{
	"/":        true,
	"/author":  true,
	"/users":   true,
	"/quizzes": true,
	"/groups":  true,
}

// saveBackURL records the last restorable navigation URL so /goback can
// return to it.
func saveBackURL(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && backURLPaths[r.URL.Path] {
			if sess := sessionFrom(r); sess != nil {
				sess.state.SaveBackURL(r.URL.RequestURI())
			}
		}
		next.ServeHTTP(w, r)
	})
}
