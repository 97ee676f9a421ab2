package stubapi

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

func (s *Server) setSessionCookies(w http.ResponseWriter, refresh string, exp time.Time) error {
	csrf, err := opaqueToken(32)
	if err != nil {
		return err
	}
	s.setCookie(w, s.cfg.RefreshCookieName, refresh, exp, true)
	s.setCookie(w, s.cfg.CSRFCookieName, csrf, exp, false)
	return nil
}

func (s *Server) clearSessionCookies(w http.ResponseWriter) {
	s.setCookie(w, s.cfg.RefreshCookieName, "", time.Unix(0, 0).UTC(), true)
	s.setCookie(w, s.cfg.CSRFCookieName, "", time.Unix(0, 0).UTC(), false)
}

func (s *Server) setCookie(w http.ResponseWriter, name, value string, exp time.Time, httpOnly bool) {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  exp,
		HttpOnly: httpOnly,
		Secure:   s.cfg.CookieSecure,
		SameSite: s.cfg.CookieSameSite,
	}
	if value == "" {
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}

func (s *Server) refreshFromCookie(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cfg.RefreshCookieName)
	if err != nil {
		return "", false
	}
	v := strings.TrimSpace(c.Value)
	return v, v != ""
}

// csrfValid is the double-submit check: the CSRF cookie must be echoed in the header.
func (s *Server) csrfValid(r *http.Request) bool {
	c, err := r.Cookie(s.cfg.CSRFCookieName)
	if err != nil {
		return false
	}
	return constantTimeEqual(strings.TrimSpace(c.Value), strings.TrimSpace(r.Header.Get(s.cfg.CSRFHeaderName)))
}

func opaqueToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func constantTimeEqual(a, b string) bool {
	if a == "" || b == "" || len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
