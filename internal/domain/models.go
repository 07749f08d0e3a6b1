package domain

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account holder. Exactly one authentication mode is populated:
// local (Username + PasswordHash + Salt) or federated (GithubID).
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	Username       string `bun:"username,nullzero" json:"username,omitempty"`
	PasswordHash   string `bun:"password_hash,nullzero" json:"-"`
	Salt           string `bun:"salt,nullzero" json:"-"`
	GithubID       int64  `bun:"github_id,nullzero" json:"githubId,omitempty"`
	GithubUsername string `bun:"github_username,nullzero" json:"githubUsername,omitempty"`
	IsAdmin        bool   `bun:"is_admin" json:"isAdmin"`
}

// IsLocal reports whether the account authenticates with a local password.
func (u *User) IsLocal() bool {
	return u.GithubID == 0
}

// DisplayName resolves a printable name: local username first, then the
// GitHub login, then a placeholder.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.GithubUsername != "" {
		return u.GithubUsername
	}
	return "Unknown"
}

// Quiz is a single question/answer pair.
type Quiz struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID       int64  `bun:"id,pk,autoincrement" json:"id"`
	Question string `bun:"question,notnull" json:"question"`
	Answer   string `bun:"answer,notnull" json:"answer"`
	AuthorID int64  `bun:"author_id,nullzero" json:"authorId,omitempty"`

	Author *User    `bun:"rel:belongs-to,join:author_id=id" json:"-"`
	Groups []*Group `bun:"m2m:group_quizzes,join:Quiz=Group" json:"-"`
}

// Group is a named collection of quizzes.
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:g"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull" json:"name"`

	Quizzes []*Quiz `bun:"m2m:group_quizzes,join:Group=Quiz" json:"-"`
}

// GroupQuiz is the membership join row between groups and quizzes.
type GroupQuiz struct {
	bun.BaseModel `bun:"table:group_quizzes,alias:gq"`

	GroupID int64  `bun:"group_id,pk"`
	QuizID  int64  `bun:"quiz_id,pk"`
	Group   *Group `bun:"rel:belongs-to,join:group_id=id"`
	Quiz    *Quiz  `bun:"rel:belongs-to,join:quiz_id=id"`
}

// Session is the durable backing row for one browser session. Data carries a
// JSON-encoded SessionState; a missing or past-Expires row invalidates it.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	SID     string    `bun:"sid,pk"`
	Expires time.Time `bun:"expires,notnull"`
	Data    []byte    `bun:"data,type:jsonb"`
}
