package domain

import "time"

// Flash is a one-shot notice attached to the next rendered response only.
type Flash struct {
	Kind    string `json:"kind"` // "success", "error" or "info"
	Message string `json:"message"`
}

// GroupPlayState is the per-browser, per-group random-play progress record.
// Resolved only grows until the whole state is discarded; LastQuizID is 0
// when no quiz is currently being shown, otherwise the id of the quiz most
// recently presented and not yet resolved.
type GroupPlayState struct {
	Resolved   []int64 `json:"resolved"`
	LastQuizID int64   `json:"lastQuizId"`
}

// Score is one point per distinct resolved quiz, not per attempt.
func (s GroupPlayState) Score() int {
	return len(s.Resolved)
}

// HasResolved reports whether quizID has already been answered correctly.
func (s GroupPlayState) HasResolved(quizID int64) bool {
	for _, id := range s.Resolved {
		if id == quizID {
			return true
		}
	}
	return false
}

// SessionState is the logical per-browser state carried inside a Session
// row's data blob. It is an explicit value passed into and out of the
// request-handling layer; nothing mutates it ambiently.
type SessionState struct {
	UserID         int64                    `json:"userId,omitempty"`
	LoginExpiresAt time.Time                `json:"loginExpiresAt,omitempty"`
	BackURL        string                   `json:"backUrl,omitempty"`
	OAuthState     string                   `json:"oauthState,omitempty"`
	Flashes        []Flash                  `json:"flashes,omitempty"`
	GroupPlay      map[int64]GroupPlayState `json:"groupPlay,omitempty"`
}

// LoggedIn reports whether the session carries an authenticated identity.
func (s *SessionState) LoggedIn() bool {
	return s.UserID != 0
}

// Login records the authenticated identity and its inactivity deadline.
func (s *SessionState) Login(userID int64, now time.Time, idle time.Duration) {
	s.UserID = userID
	s.LoginExpiresAt = now.Add(idle)
}

// Logout drops the authenticated identity and its deadline.
func (s *SessionState) Logout() {
	s.UserID = 0
	s.LoginExpiresAt = time.Time{}
}

// Touch applies the sliding inactivity window. If the deadline has passed the
// identity is invalidated and Touch reports true; otherwise a logged-in
// session has its deadline extended by idle from now.
func (s *SessionState) Touch(now time.Time, idle time.Duration) (expired bool) {
	if s.LoginExpiresAt.IsZero() {
		return false
	}
	if s.LoginExpiresAt.Before(now) {
		s.Logout()
		return true
	}
	s.LoginExpiresAt = now.Add(idle)
	return false
}

// AddFlash queues a one-shot notice for the next rendered response.
func (s *SessionState) AddFlash(kind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// TakeFlashes returns the queued notices and clears them.
func (s *SessionState) TakeFlashes() []Flash {
	flashes := s.Flashes
	s.Flashes = nil
	return flashes
}

// SaveBackURL records the restorable navigation URL.
func (s *SessionState) SaveBackURL(url string) {
	s.BackURL = url
}

// ConsumeBackURL returns the saved restoration URL exactly once, clearing it
// and defaulting to "/" if unset.
func (s *SessionState) ConsumeBackURL() string {
	url := s.BackURL
	s.BackURL = ""
	if url == "" {
		return "/"
	}
	return url
}

// PlayState returns the play record for a group, creating an empty one if
// the session has none.
func (s *SessionState) PlayState(groupID int64) GroupPlayState {
	if st, ok := s.GroupPlay[groupID]; ok {
		return st
	}
	return GroupPlayState{}
}

// SetPlayState stores the play record for a group.
func (s *SessionState) SetPlayState(groupID int64, st GroupPlayState) {
	if s.GroupPlay == nil {
		s.GroupPlay = make(map[int64]GroupPlayState)
	}
	s.GroupPlay[groupID] = st
}

// ClearPlayState discards the play record for a group, on completion or on a
// wrong answer.
func (s *SessionState) ClearPlayState(groupID int64) {
	delete(s.GroupPlay, groupID)
}
