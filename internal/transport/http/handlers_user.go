package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
)

// GET /users
func (s *Server) userIndex(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("pageno"))
	if page < 1 {
		page = 1
	}
	users, count, err := s.users.Index(r.Context(), page)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "users/index", http.StatusOK, map[string]any{
		"Users":    users,
		"Paginate": paginate(count, app.UsersPerPage, page, r.URL),
	})
}

// GET /users/{userId}
func (s *Server) userShow(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	s.render(w, r, "users/show", http.StatusOK, map[string]any{"User": user})
}

// GET /users/new
func (s *Server) userNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "users/new", http.StatusOK, map[string]any{
		"User": &domain.User{},
	})
}

// POST /users
func (s *Server) userCreate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	username := r.PostFormValue("username")

	user, err := s.users.Register(r.Context(), username, r.PostFormValue("password"))
	if err != nil {
		submitted := &domain.User{Username: username}
		var derr *domain.DuplicateError
		if errors.As(err, &derr) {
			sess.state.AddFlash("error", "User \""+username+"\" already exists.")
			s.render(w, r, "users/new", http.StatusOK, map[string]any{"User": submitted})
			return
		}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.flashValidation(sess, verr)
			s.render(w, r, "users/new", http.StatusOK, map[string]any{"User": submitted})
			return
		}
		s.handleError(w, r, err)
		return
	}

	sess.state.AddFlash("success", "User created successfully.")
	if sess.user != nil {
		http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
	} else {
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

// GET /users/{userId}/edit
func (s *Server) userEdit(w http.ResponseWriter, r *http.Request) {
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if !s.localRequired(w, user) || !s.adminOrMyself(w, r, user) {
		return
	}
	s.render(w, r, "users/edit", http.StatusOK, map[string]any{"User": user})
}

// PUT /users/{userId} — password change is the only edit.
func (s *Server) userUpdate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if !s.localRequired(w, user) || !s.adminOrMyself(w, r, user) {
		return
	}

	if password := r.PostFormValue("password"); password != "" {
		if err := s.users.SetPassword(r.Context(), user, password); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				s.flashValidation(sess, verr)
				s.render(w, r, "users/edit", http.StatusOK, map[string]any{"User": user})
				return
			}
			s.handleError(w, r, err)
			return
		}
	}
	sess.state.AddFlash("success", "User updated successfully.")
	http.Redirect(w, r, fmt.Sprintf("/users/%d", user.ID), http.StatusFound)
}

// DELETE /users/{userId}
func (s *Server) userDestroy(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	user, ok := s.loadUser(w, r)
	if !ok {
		return
	}
	if !s.adminOrMyself(w, r, user) {
		return
	}

	// Deleting yourself tears the login session down first.
	if sess.user != nil && sess.user.ID == user.ID {
		sess.state.Logout()
		sess.user = nil
	}

	if err := s.users.Delete(r.Context(), user.ID); err != nil {
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "User deleted successfully.")
	http.Redirect(w, r, "/goback", http.StatusFound)
}

// adminOrMyself gates an action to the managed user themselves or an
// administrator.
func (s *Server) adminOrMyself(w http.ResponseWriter, r *http.Request, user *domain.User) bool {
	sess := sessionFrom(r)
	if sess.user.IsAdmin || sess.user.ID == user.ID {
		return true
	}
	forbid(w, "it is not the logged-in user, nor an administrator")
	return false
}

// localRequired gates credential edits to locally-authenticated accounts.
func (s *Server) localRequired(w http.ResponseWriter, user *domain.User) bool {
	if user.IsLocal() {
		return true
	}
	forbid(w, "the user must be local")
	return false
}
