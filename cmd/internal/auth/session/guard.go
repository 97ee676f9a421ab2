package session

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
)

// DefaultExpiredMessage is shown on the login surface when no better reason is known.
const DefaultExpiredMessage = "Session expired. Please log in again."

// Navigator sends the user to the login surface.
type Navigator interface {
	NavigateToLogin(reason string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(reason string)

// NavigateToLogin calls f(reason).
func (f NavigatorFunc) NavigateToLogin(reason string) { f(reason) }

// LogoutObserver is notified once per issued forced logout.
type LogoutObserver interface {
	ForcedLogout()
}

// Guard performs the idempotent forced logout.
type Guard struct {
	log   *slog.Logger
	sc    *Context
	creds *credential.Store
	nav   Navigator
	obs   LogoutObserver

	// storageTimeout bounds tier writes made from ForceLogout.
	storageTimeout time.Duration
}

// GuardOption configures optional Guard dependencies.
type GuardOption func(*Guard)

// WithLogoutObserver registers a metrics hook.
func WithLogoutObserver(obs LogoutObserver) GuardOption {
	return func(g *Guard) {
		if obs != nil {
			g.obs = obs
		}
	}
}

// NewGuard constructs a Guard. nav may be nil, in which case navigation is only logged.
func NewGuard(log *slog.Logger, sc *Context, creds *credential.Store, nav Navigator, opts ...GuardOption) *Guard {
	if log == nil {
		log = slog.Default()
	}
	if sc == nil {
		sc = NewContext()
	}
	g := &Guard{
		log:            log,
		sc:             sc,
		creds:          creds,
		nav:            nav,
		storageTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Context returns the session context the guard flips.
func (g *Guard) Context() *Context { return g.sc }

// ForceLogout clears credentials, stores the one-shot reason and navigates to login.
// Only the first call in a process lifetime has any effect; it returns true for that call.
func (g *Guard) ForceLogout(message string) bool {
	if !g.sc.claimRedirect() {
		g.log.Debug("auth.force_logout.skip", "reason", "redirect_already_issued")
		return false
	}

	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultExpiredMessage
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.storageTimeout)
	defer cancel()

	if g.creds != nil {
		g.creds.Put(ctx, credential.SessionMessageKey, message)
		g.creds.Clear(ctx)
	}

	g.log.Warn("auth.force_logout", "message", message)
	if g.obs != nil {
		g.obs.ForcedLogout()
	}
	if g.nav != nil {
		g.nav.NavigateToLogin(message)
	}
	return true
}

// ConsumeSessionMessage returns and deletes the stored forced-logout reason.
func (g *Guard) ConsumeSessionMessage() (string, bool) {
	if g.creds == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.storageTimeout)
	defer cancel()
	return g.creds.Take(ctx, credential.SessionMessageKey)
}
