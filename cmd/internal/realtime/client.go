package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"

	"github.com/coder/websocket"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
)

// ErrUnauthorized is returned when the handshake stays unauthorized after one refresh.
var ErrUnauthorized = errors.New("realtime: unauthorized")

// Handler receives each notification. A non-nil error ends the subscription.
type Handler func(ctx context.Context, n v1.NotificationPayload) error

// Refresher obtains a new access token. The interceptor's Transport implements it.
type Refresher interface {
	Refresh(ctx context.Context) (string, bool)
}

// ClientConfig configures a subscriber.
type ClientConfig struct {
	BaseURL string

	// Path is appended to the websocket base. Defaults to /ws.
	Path string

	// AutoAck replies notification_read after each handled notification.
	AutoAck bool

	// HTTPClient performs the handshake. It should not carry the auth
	// interceptor; the subscriber runs its own refresh.
	HTTPClient *http.Client
}

// Client subscribes to dashboard notifications with the stored credential.
type Client struct {
	log       *slog.Logger
	url       string
	cfg       ClientConfig
	creds     *credential.Store
	guard     *session.Guard
	refresher Refresher
}

// NewClient validates the base and constructs a subscriber.
func NewClient(log *slog.Logger, cfg ClientConfig, creds *credential.Store, guard *session.Guard, refresher Refresher) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = "/ws"
	}
	u, err := WSURL(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, err
	}
	if creds == nil {
		creds = credential.NewMemoryStore(log)
	}
	return &Client{log: log, url: u, cfg: cfg, creds: creds, guard: guard, refresher: refresher}, nil
}

// URL returns the websocket endpoint.
func (c *Client) URL() string { return c.url }

// Subscribe connects and dispatches notifications to h until ctx ends, the
// server closes the stream or h fails. A 401 handshake triggers one refresh
// and one redial; if either fails the session is force-logged-out.
func (c *Client) Subscribe(ctx context.Context, h Handler) error {
	if h == nil {
		return errors.New("realtime: nil handler")
	}

	conn, status, err := c.dial(ctx, c.creds.Token(ctx))
	if status == http.StatusUnauthorized {
		conn, err = c.redialAfterRefresh(ctx)
	}
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()
	conn.SetReadLimit(maxFrameBytes)

	for {
		env, err := readEnvelope(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			switch classifyReadErr(err) {
			case readErrClose:
				c.log.Info("ws.client.closed", "status", websocket.CloseStatus(err))
				return nil
			case readErrBadJSON:
				c.log.Warn("ws.client.bad_frame", "err", err)
				continue
			default:
				return fmt.Errorf("realtime: read: %w", err)
			}
		}
		if err := env.Validate(); err != nil {
			c.log.Warn("ws.client.bad_envelope", "err", err)
			continue
		}

		switch env.Type {
		case v1.TypeHelloAck:
			var p v1.HelloAckPayload
			_ = json.Unmarshal(env.Payload, &p)
			c.log.Info("ws.client.connected", "session_id", p.SessionID, "role", p.Role)
		case v1.TypeNotification:
			var n v1.NotificationPayload
			if err := json.Unmarshal(env.Payload, &n); err != nil {
				c.log.Warn("ws.client.bad_notification", "err", err)
				continue
			}
			if err := h(ctx, n); err != nil {
				return err
			}
			if c.cfg.AutoAck && n.ID != "" {
				if err := c.ack(ctx, conn, n.ID); err != nil {
					return fmt.Errorf("realtime: ack: %w", err)
				}
			}
		case v1.TypeError:
			var p v1.ErrorPayload
			_ = json.Unmarshal(env.Payload, &p)
			c.log.Warn("ws.client.server_error", "code", p.Code, "message", p.Message)
		}
	}
}

func (c *Client) redialAfterRefresh(ctx context.Context) (*websocket.Conn, error) {
	if c.refresher == nil {
		c.forceLogout()
		return nil, ErrUnauthorized
	}
	token, ok := c.refresher.Refresh(ctx)
	if !ok {
		c.forceLogout()
		return nil, ErrUnauthorized
	}
	conn, status, err := c.dial(ctx, token)
	if status == http.StatusUnauthorized {
		c.forceLogout()
		return nil, ErrUnauthorized
	}
	return conn, err
}

func (c *Client) forceLogout() {
	if c.guard != nil {
		c.guard.ForceLogout("")
	}
}

func (c *Client) dial(ctx context.Context, token string) (*websocket.Conn, int, error) {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.Dial(ctx, c.url, &websocket.DialOptions{
		HTTPClient:   c.cfg.HTTPClient,
		HTTPHeader:   h,
		Subprotocols: []string{v1.Subprotocol},
	})
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	if err != nil {
		if status != http.StatusUnauthorized {
			c.log.Warn("ws.client.dial.fail", "url", c.url, "status", status, "err", err)
		}
		return nil, status, fmt.Errorf("realtime: dial %s: %w", c.url, err)
	}
	return conn, status, nil
}

func (c *Client) ack(ctx context.Context, conn *websocket.Conn, id string) error {
	now := time.Now().UTC()
	env, err := v1.New(v1.TypeNotificationRead, NewID(now), now, v1.NotificationReadPayload{ID: id})
	if err != nil {
		return err
	}
	return writeEnvelope(ctx, conn, env, defaultWriteTimeout)
}

// WSURL converts an HTTP API base into the websocket endpoint for path.
// A bare host[:port] is treated as ws://.
func WSURL(base, path string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", errors.New("realtime: empty base url")
	}
	if !strings.Contains(base, "://") {
		base = "ws://" + base
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("realtime: invalid base url %q", base)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("realtime: unsupported scheme %q", u.Scheme)
	}
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
