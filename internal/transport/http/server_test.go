package http

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
	"quiz-web/internal/infra/memory"
)

type testEnv struct {
	server  *Server
	users   *memory.UserRepository
	quizzes *memory.QuizRepository
	groups  *memory.GroupRepository
	userSvc *app.UserService
	quizSvc *app.QuizService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	quizzes := memory.NewQuizRepository()
	users := memory.NewUserRepository(quizzes)
	groups := memory.NewGroupRepository()

	userSvc := app.NewUserService(users)
	quizSvc := app.NewQuizService(quizzes)
	groupSvc := app.NewGroupService(groups)
	play := app.NewRandomPlayEngineWithRand(memory.NewPlaySource(quizzes, groups), rand.New(rand.NewSource(1)))

	server := NewServer(Options{
		Users:        userSvc,
		Quizzes:      quizSvc,
		Groups:       groupSvc,
		Play:         play,
		SessionStore: memory.NewSessionStore(),
		IdleTimeout:  5 * time.Minute,
		SessionAge:   4 * time.Hour,
		OpenRegister: true,
	})
	return &testEnv{
		server:  server,
		users:   users,
		quizzes: quizzes,
		groups:  groups,
		userSvc: userSvc,
		quizSvc: quizSvc,
	}
}

// client drives the full middleware chain, carrying the session cookie
// between requests like a browser would.
type client struct {
	t       *testing.T
	handler http.Handler
	sid     string
}

func (e *testEnv) client(t *testing.T) *client {
	return &client{t: t, handler: e.server.Handler()}
}

func (c *client) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if c.sid != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: c.sid})
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == sessionCookie {
			c.sid = ck.Value
		}
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil)
}

func (c *client) login(username, password string) {
	c.t.Helper()
	rec := c.do(http.MethodPost, "/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/goback" {
		c.t.Fatalf("login failed: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func registerUser(t *testing.T, env *testEnv, username, password string, admin bool) *domain.User {
	t.Helper()
	user, err := env.userSvc.Register(context.Background(), username, password)
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	if admin {
		env.users.SetAdmin(user.ID, true)
		user.IsAdmin = true
	}
	return user
}

func TestHomeAndNotFound(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	if rec := c.get("/"); rec.Code != http.StatusOK {
		t.Fatalf("home: %d", rec.Code)
	}
	if rec := c.get("/no/such/page"); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path: %d", rec.Code)
	}
}

func TestLoginRequiredRedirects(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	rec := c.get("/users")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous /users: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	// The flash shows up on the login form the browser is sent to.
	rec = c.get("/login")
	if rec.Code != http.StatusOK {
		t.Fatalf("login form: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Login required") {
		t.Fatalf("expected login-required flash in body")
	}
}

func TestLoginLogoutFlow(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice", "secret", false)
	c := env.client(t)

	c.login("alice", "secret")

	rec := c.get("/users")
	if rec.Code != http.StatusOK {
		t.Fatalf("logged-in /users: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "alice") {
		t.Fatalf("expected user listing to show alice")
	}

	// Logout rides on the method override, the way the layout's link does.
	rec = c.do(http.MethodPost, "/login?_method=DELETE", nil)
	if rec.Code != http.StatusFound {
		t.Fatalf("logout: %d", rec.Code)
	}
	rec = c.get("/users")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("after logout: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginFailure(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice", "secret", false)
	c := env.client(t)

	rec := c.do(http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("bad login: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
	rec = c.get("/login")
	if !strings.Contains(rec.Body.String(), "Authentication has failed") {
		t.Fatalf("expected auth-failure flash")
	}
}

func TestAdminGateOnGroups(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice", "secret", false)
	registerUser(t, env, "root", "secret", true)

	c := env.client(t)
	c.login("alice", "secret")
	if rec := c.get("/groups/new"); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin /groups/new: %d", rec.Code)
	}

	c = env.client(t)
	c.login("root", "secret")
	if rec := c.get("/groups/new"); rec.Code != http.StatusOK {
		t.Fatalf("admin /groups/new: %d", rec.Code)
	}
}

func TestAuthorPolicyOnQuizzes(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice", "secret", false)
	registerUser(t, env, "bob", "secret", false)
	registerUser(t, env, "root", "secret", true)

	// Alice authors a quiz through the form.
	c := env.client(t)
	c.login("alice", "secret")
	rec := c.do(http.MethodPost, "/quizzes", url.Values{
		"question": {"Capital of France"},
		"answer":   {"Paris"},
	})
	if rec.Code != http.StatusFound {
		t.Fatalf("create quiz: %d", rec.Code)
	}
	quizPath := rec.Header().Get("Location")
	if !strings.HasPrefix(quizPath, "/quizzes/") {
		t.Fatalf("create redirect = %q", quizPath)
	}
	if rec := c.get(quizPath + "/edit"); rec.Code != http.StatusOK {
		t.Fatalf("author edit: %d", rec.Code)
	}

	// Another plain user may not see or edit it.
	c = env.client(t)
	c.login("bob", "secret")
	if rec := c.get(quizPath); rec.Code != http.StatusForbidden {
		t.Fatalf("non-author show: %d", rec.Code)
	}
	if rec := c.get(quizPath + "/edit"); rec.Code != http.StatusForbidden {
		t.Fatalf("non-author edit: %d", rec.Code)
	}

	// An administrator may.
	c = env.client(t)
	c.login("root", "secret")
	if rec := c.get(quizPath + "/edit"); rec.Code != http.StatusOK {
		t.Fatalf("admin edit: %d", rec.Code)
	}
}

func TestGoBackRestoresListing(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	c.get("/quizzes?search=capital&pageno=2")
	rec := c.get("/goback")
	if rec.Code != http.StatusFound {
		t.Fatalf("goback: %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/quizzes?search=capital&pageno=2" {
		t.Fatalf("goback location = %q", got)
	}

	// Without a saved URL it falls back to the root.
	c = env.client(t)
	rec = c.get("/goback")
	if got := rec.Header().Get("Location"); got != "/" {
		t.Fatalf("default goback location = %q", got)
	}
}

func seedGroup(t *testing.T, env *testEnv, questions map[string]string) (*domain.Group, map[string]int64) {
	t.Helper()
	ctx := context.Background()

	idByQuestion := make(map[string]int64)
	var ids []int64
	for question, answer := range questions {
		quiz := &domain.Quiz{Question: question, Answer: answer}
		if err := env.quizzes.Create(ctx, quiz); err != nil {
			t.Fatalf("create quiz: %v", err)
		}
		idByQuestion[question] = quiz.ID
		ids = append(ids, quiz.ID)
	}
	group := &domain.Group{Name: "Capitals"}
	if err := env.groups.Create(ctx, group); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := env.groups.Update(ctx, group, group.Name, ids); err != nil {
		t.Fatalf("attach members: %v", err)
	}
	return group, idByQuestion
}

func TestRandomPlayRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	questions := map[string]string{
		"Capital of France": "Paris",
		"Capital of Spain":  "Madrid",
	}
	group, idByQuestion := seedGroup(t, env, questions)
	c := env.client(t)

	playURL := fmt.Sprintf("/groups/%d/randomplay", group.ID)
	for round := 0; round < len(questions); round++ {
		rec := c.get(playURL)
		if rec.Code != http.StatusOK {
			t.Fatalf("round %d: randomplay %d", round, rec.Code)
		}
		body := rec.Body.String()

		var question string
		for q := range questions {
			if strings.Contains(body, q) {
				question = q
				break
			}
		}
		if question == "" {
			t.Fatalf("round %d: no known question in body:\n%s", round, body)
		}

		checkURL := fmt.Sprintf("/groups/%d/randomcheck/%d?answer=%s",
			group.ID, idByQuestion[question], url.QueryEscape(questions[question]))
		rec = c.get(checkURL)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Right!") {
			t.Fatalf("round %d: check code=%d body:\n%s", round, rec.Code, rec.Body.String())
		}
	}

	rec := c.get(playURL)
	if !strings.Contains(rec.Body.String(), "No more quizzes. Final score: 2") {
		t.Fatalf("expected completion page, got:\n%s", rec.Body.String())
	}

	// The finished run is gone; the next visit starts fresh at score 0.
	rec = c.get(playURL)
	if !strings.Contains(rec.Body.String(), "Score: 0") {
		t.Fatalf("expected fresh run, got:\n%s", rec.Body.String())
	}
}

func TestRandomPlayRefreshKeepsQuiz(t *testing.T) {
	env := newTestEnv(t)
	group, _ := seedGroup(t, env, map[string]string{
		"Capital of France": "Paris",
		"Capital of Spain":  "Madrid",
	})
	c := env.client(t)

	playURL := fmt.Sprintf("/groups/%d/randomplay", group.ID)
	first := c.get(playURL).Body.String()
	for i := 0; i < 3; i++ {
		if again := c.get(playURL).Body.String(); again != first {
			t.Fatalf("refresh changed the presented quiz")
		}
	}
}

func TestRandomPlayWrongAnswerResets(t *testing.T) {
	env := newTestEnv(t)
	questions := map[string]string{
		"Capital of France": "Paris",
		"Capital of Spain":  "Madrid",
	}
	group, idByQuestion := seedGroup(t, env, questions)
	c := env.client(t)

	playURL := fmt.Sprintf("/groups/%d/randomplay", group.ID)
	body := c.get(playURL).Body.String()
	var quizID int64
	for q, id := range idByQuestion {
		if strings.Contains(body, q) {
			quizID = id
		}
	}
	if quizID == 0 {
		t.Fatalf("no known question in body:\n%s", body)
	}

	rec := c.get(fmt.Sprintf("/groups/%d/randomcheck/%d?answer=nope", group.ID, quizID))
	if !strings.Contains(rec.Body.String(), "Final score: 0") {
		t.Fatalf("expected wrong-answer result, got:\n%s", rec.Body.String())
	}

	// Starting over, both quizzes are candidates again.
	rec = c.get(playURL)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Score: 0") {
		t.Fatalf("expected fresh run after wrong answer, got code=%d", rec.Code)
	}
}

func TestOpenRegisterFlow(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	if rec := c.get("/users/new"); rec.Code != http.StatusOK {
		t.Fatalf("open-register form: %d", rec.Code)
	}
	rec := c.do(http.MethodPost, "/users", url.Values{
		"username": {"carol"},
		"password": {"pw"},
	})
	// Anonymous sign-up lands on the login form.
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("register: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	c.login("carol", "pw")
}

func TestClosedRegisterRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	registerUser(t, env, "alice", "secret", false)

	server := NewServer(Options{
		Users:        env.userSvc,
		Quizzes:      env.quizSvc,
		Groups:       app.NewGroupService(env.groups),
		Play:         app.NewRandomPlayEngine(memory.NewPlaySource(env.quizzes, env.groups)),
		SessionStore: memory.NewSessionStore(),
		IdleTimeout:  5 * time.Minute,
		SessionAge:   4 * time.Hour,
		OpenRegister: false,
	})
	c := &client{t: t, handler: server.Handler()}

	rec := c.get("/users/new")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("anonymous closed-register: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	c.login("alice", "secret")
	if rec := c.get("/users/new"); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin closed-register: %d", rec.Code)
	}
}

func TestSessionCookiePersistsAcrossRequests(t *testing.T) {
	env := newTestEnv(t)
	c := env.client(t)

	c.get("/")
	sid := c.sid
	if sid == "" {
		t.Fatalf("expected a session cookie")
	}
	c.get("/quizzes")
	if c.sid != sid {
		t.Fatalf("session id changed between requests: %q vs %q", sid, c.sid)
	}
}
