package http

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// methodOverride lets HTML forms issue PUT and DELETE through a _method
// value, on POST bodies or as a query parameter.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodGet {
			override := r.URL.Query().Get("_method")
			if override == "" && r.Method == http.MethodPost {
				if err := r.ParseForm(); err == nil {
					override = r.PostFormValue("_method")
				}
			}
			switch strings.ToUpper(override) {
			case http.MethodPut, http.MethodDelete:
				r.Method = strings.ToUpper(override)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%s)", r.Method, r.URL.RequestURI(), time.Since(start).Round(time.Millisecond))
	})
}

// loginRequired redirects anonymous visitors to the login form with a flash
// notice.
func loginRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess == nil || sess.user == nil {
			if sess != nil {
				sess.state.AddFlash("info", "Login required: log in and retry.")
			}
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next(w, r)
	}
}

// adminRequired terminates the request with a bare 403 unless the logged-in
// user is an administrator. It assumes loginRequired ran first.
func adminRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessionFrom(r)
		if sess == nil || sess.user == nil || !sess.user.IsAdmin {
			log.Printf("forbidden: logged-in user is not an administrator")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// forbid ends a request with a bare 403, logging why.
func forbid(w http.ResponseWriter, reason string) {
	log.Printf("forbidden: %s", reason)
	w.WriteHeader(http.StatusForbidden)
}
