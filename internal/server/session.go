package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-enrollment/internal/session"
)

// withSession loads the caller's session under its lock, creating and
// issuing a new one when the cookie is missing, malformed or expired.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, fn func(sess *session.Session)) {
	id := ""
	if c, err := r.Cookie(s.cookieName); err == nil && session.ValidID(c.Value) {
		id = c.Value
	}

	if id != "" {
		unlock := s.locks.Lock(id)
		defer unlock()

		sess, err := s.sessions.Load(r.Context(), id)
		switch {
		case err == nil:
			s.setCookie(w, id)
			fn(&sess)
			return
		case !errors.Is(err, session.ErrNotFound):
			s.fail(w, r, err)
			return
		}
	}

	sess := session.New()
	unlock := s.locks.Lock(sess.ID)
	defer unlock()
	s.setCookie(w, sess.ID)
	fn(&sess)
}

// requireSession serves next only to callers holding a live session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(s.cookieName)
		if err != nil || !session.ValidID(c.Value) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		if _, err := s.sessions.Load(r.Context(), c.Value); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, sess *session.Session) bool {
	if err := s.sessions.Save(r.Context(), *sess); err != nil {
		s.fail(w, r, err)
		return false
	}
	return true
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.cookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
