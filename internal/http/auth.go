package http

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
)

const (
	sessionCookie = "pagos_session"
	sessionTTL    = 12 * time.Hour
)

type sessionClaims struct {
	jwt.StandardClaims
}

// issueSession signs a session token valid for sessionTTL.
func (s *Server) issueSession() (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(sessionTTL).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.sessionSecret)
}

// hasValidSession reports whether the request carries a verifiable session cookie.
func (s *Server) hasValidSession(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return false
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.sessionSecret, nil
	})
	return err == nil && token.Valid
}

// requireSession gates page handlers: no session means a redirect to /login.
func (s *Server) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.hasValidSession(r) {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// requireSessionAPI gates JSON and stream handlers with a plain 401.
func (s *Server) requireSessionAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.hasValidSession(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if s.hasValidSession(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	s.renderLogin(w, r, false)
}

// handleLogin checks the submitted PIN against the configured one. The
// comparison is exact: no trimming, no hashing, four characters or nothing.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse login form error", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pin := r.Form.Get("pin")
	if subtle.ConstantTimeCompare([]byte(pin), []byte(s.accessPIN)) != 1 {
		slog.WarnContext(r.Context(), "Access PIN rejected", "client_ip", clientAddr(r))
		w.WriteHeader(http.StatusUnauthorized)
		s.renderLogin(w, r, true)
		return
	}

	token, err := s.issueSession()
	if err != nil {
		slog.ErrorContext(r.Context(), "Session signing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) renderLogin(w http.ResponseWriter, r *http.Request, failed bool) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	data := struct{ Failed bool }{Failed: failed}
	if err := s.templates.ExecuteTemplate(w, "login.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Login template execution failed", "error", err)
	}
}
