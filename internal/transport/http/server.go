package http

import (
	"context"
	"embed"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
)

//go:embed static
var staticFS embed.FS

// Options wires the services and policy knobs into a Server.
type Options struct {
	Users   *app.UserService
	Quizzes *app.QuizService
	Groups  *app.GroupService
	Play    *app.RandomPlayEngine

	SessionStore app.SessionStore
	IdleTimeout  time.Duration
	SessionAge   time.Duration

	GithubClientID     string
	GithubClientSecret string
	GithubCallbackBase string

	OpenRegister bool
	Production   bool
}

// Server holds the HTTP handlers for the whole application.
type Server struct {
	users    *app.UserService
	quizzes  *app.QuizService
	groups   *app.GroupService
	play     *app.RandomPlayEngine
	sessions *sessionManager

	oauth        *oauth2.Config
	openRegister bool
	production   bool
}

func NewServer(opts Options) *Server {
	s := &Server{
		users:        opts.Users,
		quizzes:      opts.Quizzes,
		groups:       opts.Groups,
		play:         opts.Play,
		sessions:     newSessionManager(opts.SessionStore, opts.Users, opts.IdleTimeout, opts.SessionAge),
		openRegister: opts.OpenRegister,
		production:   opts.Production,
	}
	if opts.GithubClientID != "" {
		s.oauth = &oauth2.Config{
			ClientID:     opts.GithubClientID,
			ClientSecret: opts.GithubClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  opts.GithubCallbackBase + "/auth/github/callback",
			Scopes:       []string{"user"},
		}
	}
	return s
}

// Handler builds the routing table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	static, _ := fs.Sub(staticFS, "static")
	mux.Handle("GET /stylesheets/", http.FileServerFS(static))

	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /author", s.author)
	mux.HandleFunc("GET /goback", s.goBack)

	mux.HandleFunc("GET /login", s.loginForm)
	mux.HandleFunc("POST /login", s.loginCreate)
	mux.HandleFunc("DELETE /login", loginRequired(s.logout))
	mux.HandleFunc("GET /auth/github", s.githubAuth)
	mux.HandleFunc("GET /auth/github/callback", s.githubCallback)

	mux.HandleFunc("GET /users", loginRequired(s.userIndex))
	mux.HandleFunc("GET /users/{userId}", loginRequired(s.userShow))
	if s.openRegister {
		mux.HandleFunc("GET /users/new", s.userNew)
		mux.HandleFunc("POST /users", s.userCreate)
	} else {
		mux.HandleFunc("GET /users/new", loginRequired(adminRequired(s.userNew)))
		mux.HandleFunc("POST /users", loginRequired(adminRequired(s.userCreate)))
	}
	mux.HandleFunc("GET /users/{userId}/edit", loginRequired(s.userEdit))
	mux.HandleFunc("PUT /users/{userId}", loginRequired(s.userUpdate))
	mux.HandleFunc("DELETE /users/{userId}", loginRequired(s.userDestroy))

	mux.HandleFunc("GET /quizzes", s.quizIndex)
	mux.HandleFunc("GET /quizzes/new", loginRequired(s.quizNew))
	mux.HandleFunc("POST /quizzes", loginRequired(s.quizCreate))
	mux.HandleFunc("GET /quizzes/{quizId}", loginRequired(s.quizShow))
	mux.HandleFunc("GET /quizzes/{quizId}/edit", loginRequired(s.quizEdit))
	mux.HandleFunc("PUT /quizzes/{quizId}", loginRequired(s.quizUpdate))
	mux.HandleFunc("DELETE /quizzes/{quizId}", loginRequired(s.quizDestroy))
	mux.HandleFunc("GET /quizzes/{quizId}/play", s.quizPlay)
	mux.HandleFunc("GET /quizzes/{quizId}/check", s.quizCheck)

	mux.HandleFunc("GET /groups", s.groupIndex)
	mux.HandleFunc("GET /groups/new", loginRequired(adminRequired(s.groupNew)))
	mux.HandleFunc("POST /groups", loginRequired(adminRequired(s.groupCreate)))
	mux.HandleFunc("GET /groups/{groupId}/edit", loginRequired(adminRequired(s.groupEdit)))
	mux.HandleFunc("PUT /groups/{groupId}", loginRequired(adminRequired(s.groupUpdate)))
	mux.HandleFunc("DELETE /groups/{groupId}", loginRequired(adminRequired(s.groupDestroy)))
	mux.HandleFunc("GET /groups/{groupId}/randomplay", s.randomPlay)
	mux.HandleFunc("GET /groups/{groupId}/randomcheck/{quizId}", s.randomCheck)

	mux.HandleFunc("/", s.notFound)

	var handler http.Handler = mux
	handler = saveBackURL(handler)
	handler = s.sessions.middleware(handler)
	handler = methodOverride(handler)
	handler = requestLogger(handler)
	return handler
}

// SweepSessions runs the periodic expired-session purge until ctx is done.
func (s *Server) SweepSessions(ctx context.Context, interval time.Duration) error {
	return s.sessions.sweep(ctx, interval)
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "index", http.StatusOK, nil)
}

func (s *Server) author(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "author", http.StatusOK, nil)
}

func (s *Server) goBack(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	http.Redirect(w, r, sess.state.ConsumeBackURL(), http.StatusFound)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "error", http.StatusNotFound, map[string]any{
		"Message": "Not Found",
	})
}

// pathID parses a numeric path segment; 0 means absent or malformed.
func pathID(r *http.Request, name string) int64 {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// loadQuiz resolves the {quizId} path segment into a quiz, rendering the
// error page when it does not resolve.
func (s *Server) loadQuiz(w http.ResponseWriter, r *http.Request) (*domain.Quiz, bool) {
	quiz, err := s.quizzes.Get(r.Context(), pathID(r, "quizId"))
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	return quiz, true
}

func (s *Server) loadGroup(w http.ResponseWriter, r *http.Request) (*domain.Group, bool) {
	group, err := s.groups.Get(r.Context(), pathID(r, "groupId"))
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	return group, true
}

func (s *Server) loadUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, err := s.users.Get(r.Context(), pathID(r, "userId"))
	if err != nil {
		s.handleError(w, r, err)
		return nil, false
	}
	return user, true
}
