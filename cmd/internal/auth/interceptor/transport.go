package interceptor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
	"golang.org/x/sync/singleflight"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
)

const maxBufferedBody = 8 << 20

// Config configures a Transport.
type Config struct {
	// APIBase is the resolved API base URL, e.g. http://localhost:5000.
	APIBase string

	// RefreshPath is appended to the API prefix of the rejected request
	// for the refresh call. Default: /auth/refresh.
	RefreshPath string

	// RefreshTimeout bounds one refresh call. Default: 10s.
	RefreshTimeout time.Duration

	// CSRFCookieName and CSRFHeaderName enable double-submit on refresh when
	// the backend issues a CSRF cookie. Both empty disables it.
	CSRFCookieName string
	CSRFHeaderName string
}

// Observer receives refresh outcomes. Implementations must be safe for concurrent use.
type Observer interface {
	RefreshAttempt(outcome string)
}

// Option configures optional Transport dependencies.
type Option func(*Transport)

// WithCookieJar replaces the Transport's private cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(t *Transport) {
		if jar != nil {
			t.jar = jar
		}
	}
}

// WithObserver registers a refresh outcome hook.
func WithObserver(obs Observer) Option {
	return func(t *Transport) {
		if obs != nil {
			t.obs = obs
		}
	}
}

// Transport is the auth-aware RoundTripper.
type Transport struct {
	next     http.RoundTripper
	log      *slog.Logger
	classify Classifier
	creds    *credential.Store
	guard    *session.Guard
	jar      http.CookieJar
	obs      Observer
	cfg      Config

	refreshURL string
	group      singleflight.Group
}

// New wraps next with the auth interceptor.
func New(next http.RoundTripper, log *slog.Logger, cfg Config, creds *credential.Store, guard *session.Guard, opts ...Option) (*Transport, error) {
	if next == nil {
		next = http.DefaultTransport
	}
	if log == nil {
		log = slog.Default()
	}
	if creds == nil || guard == nil {
		return nil, errors.New("interceptor: credential store and session guard are required")
	}

	c, err := NewClassifier(cfg.APIBase)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.RefreshPath) == "" {
		cfg.RefreshPath = "/auth/refresh"
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 10 * time.Second
	}

	t := &Transport{
		next:       next,
		log:        log,
		classify:   c,
		creds:      creds,
		guard:      guard,
		cfg:        cfg,
		refreshURL: c.URL(cfg.RefreshPath),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, err
		}
		t.jar = jar
	}
	return t, nil
}

// NewMiddleware returns a Middleware that builds a Transport around whatever it wraps.
func NewMiddleware(log *slog.Logger, cfg Config, creds *credential.Store, guard *session.Guard, opts ...Option) (Middleware, error) {
	// Validate once up front so the returned Middleware cannot fail.
	if _, err := New(http.DefaultTransport, log, cfg, creds, guard, opts...); err != nil {
		return nil, err
	}
	return func(next http.RoundTripper) http.RoundTripper {
		t, _ := New(next, log, cfg, creds, guard, opts...)
		return t
	}, nil
}

// Install wraps client's transport with the interceptor.
// It succeeds at most once per session context.
func Install(client *http.Client, log *slog.Logger, cfg Config, creds *credential.Store, guard *session.Guard, opts ...Option) (*Transport, error) {
	if client == nil {
		return nil, errors.New("interceptor: nil http client")
	}
	if guard == nil {
		return nil, errors.New("interceptor: session guard is required")
	}
	if guard.Context().InterceptorInstalled() {
		return nil, ErrAlreadyInstalled
	}

	t, err := New(client.Transport, log, cfg, creds, guard, opts...)
	if err != nil {
		return nil, err
	}
	if !guard.Context().MarkInterceptorInstalled() {
		return nil, ErrAlreadyInstalled
	}
	client.Transport = t
	return t, nil
}

// Jar returns the cookie jar used for API calls.
func (t *Transport) Jar() http.CookieJar { return t.jar }

// Classifier returns the request classifier.
func (t *Transport) Classifier() Classifier { return t.classify }

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.classify.IsAPI(req.URL) {
		return t.next.RoundTrip(req)
	}
	authOnly := t.classify.IsAuthEndpoint(req.URL)

	body, err := bufferBody(req)
	if err != nil {
		return nil, err
	}

	ctx := req.Context()
	resp, err := t.dispatch(t.decorate(req, body, authOnly, t.creds.Token(ctx)))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || authOnly {
		return resp, nil
	}

	res, ok := t.refresh(ctx, t.classify.URLFor(req.URL, t.cfg.RefreshPath))
	if !ok {
		msg := expiredMessage(resp)
		t.guard.ForceLogout(msg)
		return resp, nil
	}

	drainClose(resp)
	t.log.Debug("auth.retry", "method", req.Method, "path", req.URL.Path)
	return t.dispatch(t.decorate(req, body, false, res.token))
}

func (t *Transport) decorate(orig *http.Request, body []byte, authOnly bool, token string) *http.Request {
	r := orig.Clone(orig.Context())
	if body != nil {
		r.Body = io.NopCloser(bytes.NewReader(body))
		r.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(body)), nil }
		r.ContentLength = int64(len(body))
	}

	switch {
	case authOnly:
		r.Header.Del("Authorization")
	case token != "":
		r.Header.Set("Authorization", "Bearer "+token)
	}

	for _, c := range t.jar.Cookies(r.URL) {
		if _, err := r.Cookie(c.Name); err == nil {
			continue
		}
		r.AddCookie(c)
	}
	return r
}

func (t *Transport) dispatch(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if rc := resp.Cookies(); len(rc) > 0 {
		t.jar.SetCookies(req.URL, rc)
	}
	return resp, nil
}

// bufferBody reads and closes the request body so it can be sent twice.
func bufferBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	b, err := io.ReadAll(io.LimitReader(req.Body, maxBufferedBody+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxBufferedBody {
		return nil, errors.New("interceptor: request body too large to replay")
	}
	return b, nil
}

func drainClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func detached(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), d)
}
