package stubapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
	User  user   `json:"user"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	ip := clientIP(r, s.cfg.TrustProxy)
	if ok, retry := s.logins.allow(ip, now); !ok {
		s.log.Info("stub.login.rate_limited", "ip", ip)
		writeRateLimited(w, retry)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	u, found := s.data.userByEmail(req.Email)
	hash := u.passwordHash
	if !found {
		// Same work for unknown users as for wrong passwords.
		hash = s.dummyHash()
	}
	ok, err := s.pw.Verify(hash, req.Password)
	if err != nil || !ok || !found {
		s.log.Info("stub.login.fail", "ip", ip, "found", found)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password")
		return
	}

	issued, err := s.sessions.IssueSession(r.Context(), now, u.ID, u.Role)
	if err != nil {
		s.log.Error("stub.login.issue.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	if err := s.setSessionCookies(w, issued.RefreshToken, issued.RefreshExp); err != nil {
		s.log.Error("stub.login.cookie.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	s.log.Info("stub.login.success", "user_id", u.ID, "role", u.Role, "session_id", issued.SessionID)
	writeJSON(w, http.StatusOK, loginResponse{Token: issued.AccessToken, Role: u.Role, User: u})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(w, r, s.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	token := strings.TrimSpace(req.RefreshToken)
	fromCookie := false
	if token == "" {
		token, fromCookie = s.refreshFromCookie(r)
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "no_session", "Session expired")
		return
	}
	if fromCookie && s.cfg.RequireCSRF && !s.csrfValid(r) {
		writeError(w, http.StatusForbidden, "csrf_invalid", "missing or invalid csrf token")
		return
	}

	issued, claims, err := s.sessions.RotateRefresh(r.Context(), s.now(), token)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrRefreshReuseDetected):
			s.log.Warn("stub.refresh.reuse", "ip", clientIP(r, s.cfg.TrustProxy))
			s.clearSessionCookies(w)
			writeError(w, http.StatusUnauthorized, "refresh_reuse_detected", "Session expired")
		case errors.Is(err, sessions.ErrSessionExpired), errors.Is(err, sessions.ErrSessionRevoked), errors.Is(err, sessions.ErrSessionNotFound):
			s.clearSessionCookies(w)
			writeError(w, http.StatusUnauthorized, "session_not_active", "Session expired")
		default:
			s.log.Error("stub.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}
	if err := s.setSessionCookies(w, issued.RefreshToken, issued.RefreshExp); err != nil {
		s.log.Error("stub.refresh.cookie.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	s.log.Info("stub.refresh.success", "user_id", claims.UserID, "session_id", issued.SessionID)
	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: issued.AccessToken, Role: claims.Role})
}

// handleLogout revokes the session named by the refresh cookie. Dashboards
// call it without a bearer, so it always succeeds.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token, ok := s.refreshFromCookie(r); ok {
		if err := s.sessions.RevokeByRefresh(r.Context(), s.now(), token); err != nil {
			s.log.Error("stub.logout.fail", "err", err)
		}
	}
	s.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	c := claimsFrom(r.Context())
	u, ok := s.data.userByID(c.UserID)
	if !ok {
		writeError(w, http.StatusUnauthorized, "token_expired", "Token expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) dummyHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.pw.Hash("dummy-password-for-timing")
		if err == nil {
			s.dummy = h
		}
	})
	return s.dummy
}
