package stubapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/password"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

// Server is the stub backend.
type Server struct {
	log      *slog.Logger
	cfg      Config
	sessions *sessions.Service
	pw       password.Config
	data     *data
	gateway  *realtime.Gateway
	logins   *ipLimiter

	dummyOnce sync.Once
	dummy     string

	now func() time.Time
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithGatewayConfig overrides the websocket gateway settings.
func WithGatewayConfig(gc realtime.GatewayConfig) Option {
	return func(s *Server) {
		s.gateway = realtime.NewGateway(s.log, nil, realtime.AuthenticatorFunc(s.authenticateWS), gc)
	}
}

// WithPasswordConfig overrides Argon2id cost, mainly to speed up tests.
func WithPasswordConfig(pw password.Config) Option {
	return func(s *Server) { s.pw = pw }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// New seeds the dataset and builds the server.
func New(log *slog.Logger, cfg Config, svc *sessions.Service, opts ...Option) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, errors.New("stubapi: nil session service")
	}
	cfg.Prefix = normalizePrefix(cfg.Prefix)

	s := &Server{
		log:      log,
		cfg:      cfg,
		sessions: svc,
		pw:       password.DefaultConfig(),
		logins:   newIPLimiter(cfg.LoginRate, cfg.LoginBurst),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.gateway = realtime.NewGateway(log, nil, realtime.AuthenticatorFunc(s.authenticateWS), realtime.GatewayConfig{})
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	d, err := seed(s.pw, cfg.SeedPassword, s.now())
	if err != nil {
		return nil, err
	}
	s.data = d
	return s, nil
}

// Broker exposes the notification broker so callers can publish.
func (s *Server) Broker() *realtime.Broker { return s.gateway.Broker() }

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	root.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	})
	root.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r := root
	if s.cfg.Prefix != "" {
		r = root.PathPrefix(s.cfg.Prefix).Subrouter()
	}

	r.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)
	r.Handle("/auth/profile", s.requireAuth(http.HandlerFunc(s.handleProfile))).Methods(http.MethodGet)
	r.Handle("/ws", s.gateway)

	hm := r.PathPrefix("/hiring-manager").Subrouter()
	hm.Use(s.requireAuth, requireRole(roleHiringManager, roleHR, roleAdmin))
	hm.HandleFunc("/jobs", s.handleJobs).Methods(http.MethodGet)
	hm.HandleFunc("/jobs/{id}", s.handleJob).Methods(http.MethodGet)
	hm.HandleFunc("/jobs/{id}/applications", s.handleApplications).Methods(http.MethodGet)
	hm.HandleFunc("/jobs/{id}/status", s.handleJobStatus).Methods(http.MethodPut)

	iv := r.PathPrefix("/interviewer").Subrouter()
	iv.Use(s.requireAuth, requireRole(roleInterviewer, roleAdmin))
	iv.HandleFunc("/interviews", s.handleInterviews).Methods(http.MethodGet)
	iv.HandleFunc("/interviews/{id}", s.handleInterview).Methods(http.MethodGet)
	iv.HandleFunc("/interviews/{id}/feedback", s.handleFeedback).Methods(http.MethodPost)

	return root
}

func (s *Server) authenticateWS(ctx context.Context, token string) (realtime.Identity, error) {
	claims, err := s.sessions.ValidateAccessToken(ctx, token, s.now())
	if err != nil {
		return realtime.Identity{}, err
	}
	return realtime.Identity{UserID: claims.UserID, SessionID: claims.SessionID, Role: claims.Role}, nil
}
