package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/interceptor"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
)

const maxResponseBody = 10 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the primary API base, e.g. http://localhost:5000.
	BaseURL string

	// TryAltPrefix adds a second candidate with the /api segment toggled.
	TryAltPrefix bool

	// AttemptTimeout bounds each candidate attempt. Zero disables it.
	AttemptTimeout time.Duration

	// RateLimit caps requests per second. Zero disables it.
	RateLimit float64
	Burst     int

	UserAgent string
}

// Observer receives one call per candidate attempt. Status is 0 for transport failures.
type Observer interface {
	ObserveRequest(method string, status int, elapsed time.Duration)
}

// Option configures optional Client dependencies.
type Option func(*Client)

// WithHTTPClient sets the HTTP client, normally one with the auth interceptor installed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithFallbackBases appends extra bases tried after the primary candidates.
func WithFallbackBases(bases ...string) Option {
	return func(c *Client) {
		for _, b := range bases {
			if nb := normalizeBase(b); nb != "" {
				c.fallbacks = append(c.fallbacks, nb)
			}
		}
	}
}

// WithObserver registers a metrics hook.
func WithObserver(obs Observer) Option {
	return func(c *Client) {
		if obs != nil {
			c.obs = obs
		}
	}
}

// WithRequestIDFunc replaces the X-Request-ID generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// Client is a request client bound to one API base.
type Client struct {
	http  *http.Client
	log   *slog.Logger
	creds *credential.Store
	guard *session.Guard
	cfg   Config

	base      string
	fallbacks []string
	limiter   *rate.Limiter
	obs       Observer
	newID     func() string
}

// New constructs a Client. guard may be nil, in which case 401s are only returned.
func New(log *slog.Logger, cfg Config, creds *credential.Store, guard *session.Guard, opts ...Option) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	base := normalizeBase(cfg.BaseURL)
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("apiclient: invalid base url %q", cfg.BaseURL)
	}
	if creds == nil {
		creds = credential.NewMemoryStore(log)
	}

	c := &Client{
		http:  &http.Client{},
		log:   log,
		creds: creds,
		guard: guard,
		cfg:   cfg,
		base:  base,
		newID: func() string { return uuid.NewString() },
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Base returns the primary API base.
func (c *Client) Base() string { return c.base }

// Do runs req against each candidate URL in order.
// The result is nil for empty, 204 or non-JSON success bodies.
func (c *Client) Do(ctx context.Context, req Request) (json.RawMessage, error) {
	method := req.method()

	query, err := encodeQuery(req.Query)
	if err != nil {
		return nil, err
	}

	var body []byte
	if req.Body != nil {
		body, err = marshalBody(req.Body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode body: %w", err)
		}
	}

	cands := c.Candidates(req.Path)
	if len(cands) == 0 {
		return nil, ErrNoCandidates
	}

	var recorded *Error
	for _, u := range cands {
		if u, err = withQuery(u, query); err != nil {
			return nil, fmt.Errorf("apiclient: build url: %w", err)
		}

		raw, aerr := c.attempt(ctx, method, u, body, req)
		if aerr == nil {
			return raw, nil
		}

		switch aerr.Status {
		case 0, http.StatusNotFound:
			if ctx.Err() != nil {
				return nil, aerr
			}
			recorded = prefer(recorded, aerr)
			c.log.Debug("api.candidate.miss", "method", method, "url", u, "status", aerr.Status)
		default:
			return nil, aerr
		}
	}

	c.log.Warn("api.request.fail",
		"method", method,
		"path", req.Path,
		"candidates", len(cands),
		"status", recorded.Status,
		"message", recorded.Message,
	)
	return nil, recorded
}

// Get is Do with GET.
func (c *Client) Get(ctx context.Context, path string, query map[string]any) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post is Do with POST and a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put is Do with PUT and a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (json.RawMessage, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) attempt(ctx context.Context, method, u string, body []byte, req Request) (json.RawMessage, *Error) {
	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(method, u, err)
		}
	}

	actx := ctx
	if c.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.cfg.AttemptTimeout)
		defer cancel()
	}

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	hreq, err := http.NewRequestWithContext(actx, method, u, rdr)
	if err != nil {
		return nil, transportError(method, u, err)
	}
	c.decorate(hreq, body != nil, req)

	resp, err := c.http.Do(hreq)
	if err != nil {
		c.observe(method, 0, start)
		return nil, transportError(method, u, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		c.observe(method, 0, start)
		return nil, transportError(method, u, err)
	}
	c.observe(method, resp.StatusCode, start)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return parseBody(resp.StatusCode, b), nil
	}

	msg := interceptor.MessageFromBody(b)
	// Unauthenticated calls such as login report bad credentials with 401;
	// that is not an expired session.
	if resp.StatusCode == http.StatusUnauthorized && !req.SkipAuth && c.guard != nil {
		c.guard.ForceLogout(msg)
	}
	if msg == "" {
		msg = fmt.Sprintf("%s %s failed with status %d", method, req.Path, resp.StatusCode)
	}
	return nil, &Error{Status: resp.StatusCode, Message: msg, Method: method, URL: u}
}

func (c *Client) decorate(r *http.Request, hasBody bool, req Request) {
	r.Header.Set("Accept", "application/json")
	r.Header.Set("X-Request-ID", c.newID())
	if c.cfg.UserAgent != "" {
		r.Header.Set("User-Agent", c.cfg.UserAgent)
	}
	if hasBody {
		if _, ok := req.header("Content-Type"); !ok {
			r.Header.Set("Content-Type", "application/json")
		}
	}
	if !req.SkipAuth {
		if tok := c.creds.Token(r.Context()); tok != "" {
			r.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	for k, v := range req.Headers {
		r.Header.Set(k, v)
	}
}

func (c *Client) observe(method string, status int, start time.Time) {
	if c.obs != nil {
		c.obs.ObserveRequest(method, status, time.Since(start))
	}
}

func transportError(method, u string, err error) *Error {
	return &Error{Status: 0, Message: err.Error(), Method: method, URL: u, Err: err}
}

func marshalBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(v)
	}
}

func parseBody(status int, b []byte) json.RawMessage {
	if status == http.StatusNoContent || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if !json.Valid(b) {
		return nil
	}
	return json.RawMessage(b)
}

