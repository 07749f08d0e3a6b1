package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"quiz-web/internal/app"
	"quiz-web/internal/domain"
)

// GET /quizzes
func (s *Server) quizIndex(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	page, _ := strconv.Atoi(r.URL.Query().Get("pageno"))
	if page < 1 {
		page = 1
	}

	quizzes, count, err := s.quizzes.Index(r.Context(), search, page)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "quizzes/index", http.StatusOK, map[string]any{
		"Quizzes":  quizzes,
		"Search":   search,
		"Paginate": paginate(count, app.QuizzesPerPage, page, r.URL),
	})
}

// GET /quizzes/{quizId}
func (s *Server) quizShow(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if !s.adminOrAuthor(w, r, quiz) {
		return
	}
	s.render(w, r, "quizzes/show", http.StatusOK, map[string]any{"Quiz": quiz})
}

// GET /quizzes/new
func (s *Server) quizNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "quizzes/new", http.StatusOK, map[string]any{
		"Quiz": &domain.Quiz{},
	})
}

// POST /quizzes
func (s *Server) quizCreate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	question := r.PostFormValue("question")
	answer := r.PostFormValue("answer")

	quiz, err := s.quizzes.Create(r.Context(), sess.user.ID, question, answer)
	if err != nil {
		submitted := &domain.Quiz{Question: question, Answer: answer}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.flashValidation(sess, verr)
			s.render(w, r, "quizzes/new", http.StatusOK, map[string]any{"Quiz": submitted})
			return
		}
		sess.state.AddFlash("error", "Error creating a new Quiz: "+err.Error())
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "Quiz created successfully.")
	http.Redirect(w, r, fmt.Sprintf("/quizzes/%d", quiz.ID), http.StatusFound)
}

// GET /quizzes/{quizId}/edit
func (s *Server) quizEdit(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if !s.adminOrAuthor(w, r, quiz) {
		return
	}
	s.render(w, r, "quizzes/edit", http.StatusOK, map[string]any{"Quiz": quiz})
}

// PUT /quizzes/{quizId}
func (s *Server) quizUpdate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if !s.adminOrAuthor(w, r, quiz) {
		return
	}

	err := s.quizzes.Update(r.Context(), quiz, r.PostFormValue("question"), r.PostFormValue("answer"))
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			s.flashValidation(sess, verr)
			s.render(w, r, "quizzes/edit", http.StatusOK, map[string]any{"Quiz": quiz})
			return
		}
		sess.state.AddFlash("error", "Error editing the Quiz: "+err.Error())
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "Quiz edited successfully.")
	http.Redirect(w, r, fmt.Sprintf("/quizzes/%d", quiz.ID), http.StatusFound)
}

// DELETE /quizzes/{quizId}
func (s *Server) quizDestroy(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	if !s.adminOrAuthor(w, r, quiz) {
		return
	}
	if err := s.quizzes.Delete(r.Context(), quiz.ID); err != nil {
		sess.state.AddFlash("error", "Error deleting the Quiz: "+err.Error())
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "Quiz deleted successfully.")
	http.Redirect(w, r, "/goback", http.StatusFound)
}

// GET /quizzes/{quizId}/play
func (s *Server) quizPlay(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	s.render(w, r, "quizzes/play", http.StatusOK, map[string]any{
		"Quiz":   quiz,
		"Answer": r.URL.Query().Get("answer"),
	})
}

// GET /quizzes/{quizId}/check?answer=
func (s *Server) quizCheck(w http.ResponseWriter, r *http.Request) {
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}
	answer := r.URL.Query().Get("answer")
	s.render(w, r, "quizzes/result", http.StatusOK, map[string]any{
		"Quiz":   quiz,
		"Answer": answer,
		"Result": app.AnswersMatch(answer, quiz.Answer),
	})
}

// adminOrAuthor gates an action to the quiz author or an administrator.
func (s *Server) adminOrAuthor(w http.ResponseWriter, r *http.Request, quiz *domain.Quiz) bool {
	sess := sessionFrom(r)
	if sess.user.IsAdmin || quiz.AuthorID == sess.user.ID {
		return true
	}
	forbid(w, "the logged-in user is not the author of the quiz, nor an administrator")
	return false
}

// flashValidation turns field-level violations into flash messages so the
// form can be re-rendered with the submitted values.
func (s *Server) flashValidation(sess *requestSession, verr *domain.ValidationError) {
	sess.state.AddFlash("error", "There are errors in the form:")
	for _, fe := range verr.Errors {
		sess.state.AddFlash("error", fe.Message)
	}
}
