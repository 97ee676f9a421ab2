package stubapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

const (
	roleHiringManager = "hiring_manager"
	roleInterviewer   = "interviewer"
	roleHR            = "hr"
	roleAdmin         = "admin"
)

type claimsKey struct{}

func claimsFrom(ctx context.Context) sessions.AccessClaims {
	c, _ := ctx.Value(claimsKey{}).(sessions.AccessClaims)
	return c
}

// requireAuth validates the bearer token. Failures answer 401 with "Token expired",
// the message dashboards show after a forced logout.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		claims, err := s.sessions.ValidateAccessToken(r.Context(), token, s.now())
		if err != nil {
			s.log.Debug("stub.auth.reject", "err", err)
			writeError(w, http.StatusUnauthorized, "token_expired", "Token expired")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := claimsFrom(r.Context()).Role
			for _, want := range roles {
				if strings.EqualFold(role, want) {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "forbidden", "role not permitted")
		})
	}
}

func bearerToken(r *http.Request) string {
	parts := strings.SplitN(strings.TrimSpace(r.Header.Get("Authorization")), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// ownerScope returns "" for admins and HR so they see every record.
func ownerScope(c sessions.AccessClaims) string {
	if strings.EqualFold(c.Role, roleAdmin) || strings.EqualFold(c.Role, roleHR) {
		return ""
	}
	return c.UserID
}
