package http

import (
	"errors"
	"net/http"
	"strconv"

	"quiz-web/internal/domain"
)

// GET /groups
func (s *Server) groupIndex(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.Index(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "groups/index", http.StatusOK, map[string]any{"Groups": groups})
}

// GET /groups/new
func (s *Server) groupNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "groups/new", http.StatusOK, map[string]any{
		"Group": &domain.Group{},
	})
}

// POST /groups
func (s *Server) groupCreate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	name := r.PostFormValue("name")

	_, err := s.groups.Create(r.Context(), name)
	if err != nil {
		submitted := &domain.Group{Name: name}
		if s.flashGroupError(sess, err) {
			s.render(w, r, "groups/new", http.StatusOK, map[string]any{"Group": submitted})
			return
		}
		sess.state.AddFlash("error", "Error creating a new Group: "+err.Error())
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "Group created successfully.")
	http.Redirect(w, r, "/groups", http.StatusFound)
}

// GET /groups/{groupId}/edit
func (s *Server) groupEdit(w http.ResponseWriter, r *http.Request) {
	group, ok := s.loadGroup(w, r)
	if !ok {
		return
	}
	allQuizzes, err := s.quizzes.ListAll(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	memberIDs, err := s.groups.QuizIDs(r.Context(), group.ID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.render(w, r, "groups/edit", http.StatusOK, map[string]any{
		"Group":      group,
		"AllQuizzes": allQuizzes,
		"MemberIDs":  toIDSet(memberIDs),
	})
}

// PUT /groups/{groupId}
func (s *Server) groupUpdate(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	group, ok := s.loadGroup(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		s.handleError(w, r, err)
		return
	}
	name := r.PostFormValue("name")
	quizIDs := parseIDList(r.PostForm["quizzesIds"])

	if err := s.groups.Update(r.Context(), group, name, quizIDs); err != nil {
		if s.flashGroupError(sess, err) {
			allQuizzes, lerr := s.quizzes.ListAll(r.Context())
			if lerr != nil {
				s.handleError(w, r, lerr)
				return
			}
			s.render(w, r, "groups/edit", http.StatusOK, map[string]any{
				"Group":      group,
				"AllQuizzes": allQuizzes,
				"MemberIDs":  toIDSet(quizIDs),
			})
			return
		}
		sess.state.AddFlash("error", "Error editing the Group: "+err.Error())
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "Group edited successfully.")
	http.Redirect(w, r, "/groups", http.StatusFound)
}

// DELETE /groups/{groupId}
func (s *Server) groupDestroy(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	group, ok := s.loadGroup(w, r)
	if !ok {
		return
	}
	if err := s.groups.Delete(r.Context(), group.ID); err != nil {
		sess.state.AddFlash("error", "Error deleting the Group: "+err.Error())
		s.handleError(w, r, err)
		return
	}
	sess.state.AddFlash("success", "Group deleted successfully.")
	http.Redirect(w, r, "/goback", http.StatusFound)
}

// GET /groups/{groupId}/randomplay
func (s *Server) randomPlay(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	group, ok := s.loadGroup(w, r)
	if !ok {
		return
	}

	state := sess.state.PlayState(group.ID)
	state, quiz, score, err := s.play.PresentNext(r.Context(), group.ID, state)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	if quiz == nil {
		// Run complete: the whole play state for this group goes away.
		sess.state.ClearPlayState(group.ID)
		s.render(w, r, "groups/random_nomore", http.StatusOK, map[string]any{
			"Group": group,
			"Score": score,
		})
		return
	}

	sess.state.SetPlayState(group.ID, state)
	s.render(w, r, "groups/random_play", http.StatusOK, map[string]any{
		"Group": group,
		"Quiz":  quiz,
		"Score": score,
	})
}

// GET /groups/{groupId}/randomcheck/{quizId}?answer=
func (s *Server) randomCheck(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	group, ok := s.loadGroup(w, r)
	if !ok {
		return
	}
	quiz, ok := s.loadQuiz(w, r)
	if !ok {
		return
	}

	answer := r.URL.Query().Get("answer")
	state := sess.state.PlayState(group.ID)
	state, correct, score, discard := s.play.CheckAnswer(state, quiz, answer)
	if discard {
		// A wrong answer ends the run; the reported score is what the
		// player had before the reset.
		sess.state.ClearPlayState(group.ID)
	} else {
		sess.state.SetPlayState(group.ID, state)
	}

	s.render(w, r, "groups/random_result", http.StatusOK, map[string]any{
		"Group":  group,
		"Result": correct,
		"Answer": answer,
		"Score":  score,
	})
}

// flashGroupError reports whether err was a form-level problem that has
// been flashed (validation or duplicate name).
func (s *Server) flashGroupError(sess *requestSession, err error) bool {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		s.flashValidation(sess, verr)
		return true
	}
	var derr *domain.DuplicateError
	if errors.As(err, &derr) {
		sess.state.AddFlash("error", "Group \""+derr.Value+"\" already exists.")
		return true
	}
	return false
}

func parseIDList(values []string) []int64 {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func toIDSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
