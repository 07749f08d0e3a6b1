package http

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"quiz-web/internal/domain"
)

//go:embed views
var viewsFS embed.FS

// pages lists every view rendered inside the shared layout.
var pages = []string{
	"index",
	"author",
	"error",
	"session/new",
	"users/index",
	"users/show",
	"users/new",
	"users/edit",
	"quizzes/index",
	"quizzes/show",
	"quizzes/new",
	"quizzes/edit",
	"quizzes/play",
	"quizzes/result",
	"groups/index",
	"groups/new",
	"groups/edit",
	"groups/random_play",
	"groups/random_result",
	"groups/random_nomore",
}

var templates = func() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		parsed[page] = template.Must(template.ParseFS(viewsFS,
			"views/layout.html", "views/paginate.html", "views/"+page+".html"))
	}
	return parsed
}()

// render writes a page inside the layout. The logged-in user and any queued
// flashes are injected into every view.
func (s *Server) render(w http.ResponseWriter, r *http.Request, page string, status int, data map[string]any) {
	tmpl, ok := templates[page]
	if !ok {
		log.Printf("unknown view %q", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = map[string]any{}
	}
	if sess := sessionFrom(r); sess != nil {
		data["LoginUser"] = sess.user
		data["Flashes"] = sess.state.TakeFlashes()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("render %s: %v", page, err)
	}
}

// handleError maps an error onto the generic error page with a status
// derived from its kind, defaulting to 500. Diagnostic detail is shown only
// outside production mode.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Something went wrong."
	if errors.Is(err, domain.ErrNotFound) {
		status = http.StatusNotFound
		message = "Not Found"
	}
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
	}

	detail := ""
	if !s.production {
		detail = fmt.Sprintf("%v", err)
	}
	s.render(w, r, "error", status, map[string]any{
		"Message": message,
		"Detail":  detail,
	})
}
