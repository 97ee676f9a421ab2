package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

// Identity is the authenticated owner of a websocket session.
type Identity struct {
	UserID    string
	SessionID string
	Role      string
}

// Authenticator validates the bearer token presented on the upgrade request.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, token string) (Identity, error)

func (f AuthenticatorFunc) Authenticate(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// ReadHook is called when a client marks a notification as read.
type ReadHook func(who Identity, notificationID string)

// GatewayConfig controls the websocket gateway.
type GatewayConfig struct {
	OriginRequired bool
	AllowedOrigins []string
	DevInsecure    bool

	WriteTimeout     time.Duration
	SendQueue        int
	HeartbeatEvery   time.Duration
	HeartbeatTimeout time.Duration

	InboundRate  float64
	InboundBurst int
}

func (c GatewayConfig) withDefaults() GatewayConfig {
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.SendQueue <= 0 {
		c.SendQueue = defaultSendQueue
	}
	if c.HeartbeatEvery <= 0 {
		c.HeartbeatEvery = heartbeatInterval
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = heartbeatTimeout
	}
	if c.InboundRate <= 0 {
		c.InboundRate = inboundRate
	}
	if c.InboundBurst <= 0 {
		c.InboundBurst = inboundBurst
	}
	return c
}

// Gateway is the websocket entrypoint for dashboard notifications.
//
// It enforces origin policy, authenticates the bearer token before upgrading,
// negotiates the notify subprotocol and pumps Broker notifications to the peer.
type Gateway struct {
	log    *slog.Logger
	broker *Broker
	auth   Authenticator
	cfg    GatewayConfig
	onRead ReadHook

	originPatterns []string
}

// NewGateway constructs a gateway. A nil broker gets a private one.
func NewGateway(log *slog.Logger, broker *Broker, auth Authenticator, cfg GatewayConfig) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	if broker == nil {
		broker = NewBroker(log)
	}
	cfg = cfg.withDefaults()
	return &Gateway{
		log:            log,
		broker:         broker,
		auth:           auth,
		cfg:            cfg,
		originPatterns: originPatterns(cfg.AllowedOrigins),
	}
}

// OnRead registers a hook for notification_read events.
func (g *Gateway) OnRead(h ReadHook) { g.onRead = h }

// Broker returns the broker feeding this gateway.
func (g *Gateway) Broker() *Broker { return g.broker }

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := enforceOrigin(r, g.cfg.OriginRequired, g.cfg.AllowedOrigins); err != nil {
		g.log.Info("ws.reject.origin", "err", err, "origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	who, err := g.authenticate(r)
	if err != nil {
		g.log.Info("ws.reject.auth", "err", err, "remote", r.RemoteAddr)
		writeUnauthorized(w)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols:       []string{v1.Subprotocol},
		OriginPatterns:     g.originPatterns,
		InsecureSkipVerify: g.cfg.DevInsecure,
	})
	if err != nil {
		g.log.Error("ws.accept.fail", "err", err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "bye") }()

	if sp := conn.Subprotocol(); sp != v1.Subprotocol {
		g.log.Info("ws.reject.subprotocol", "got", sp, "want", v1.Subprotocol)
		_ = conn.Close(websocket.StatusProtocolError, "subprotocol required")
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	g.serve(r.Context(), conn, who)
}

func (g *Gateway) authenticate(r *http.Request) (Identity, error) {
	if g.auth == nil {
		return Identity{}, errors.New("no authenticator configured")
	}
	token := bearerFrom(r)
	if token == "" {
		return Identity{}, errors.New("missing bearer token")
	}
	return g.auth.Authenticate(r.Context(), token)
}

func bearerFrom(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message": "Token expired",
		"error":   map[string]string{"code": "unauthorized", "message": "Token expired"},
	})
}

func (g *Gateway) serve(parent context.Context, conn *websocket.Conn, who Identity) {
	sessionID := NewID(time.Now().UTC())
	p := newPeer(sessionID, who, g.cfg.SendQueue)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var closeOnce sync.Once
	// shutdown never closes p.send; the broker may still hold a reference.
	shutdown := func(code websocket.StatusCode, reason string) {
		closeOnce.Do(func() {
			g.broker.unregister(sessionID)
			p.Close()
			_ = conn.Close(code, reason)
			cancel()
		})
	}

	g.broker.register(p)
	g.log.Info("ws.connect", "session_id", sessionID, "user_id", who.UserID, "role", who.Role)

	ack, err := v1.New(v1.TypeHelloAck, NewID(time.Now().UTC()), time.Now().UTC(), v1.HelloAckPayload{
		SessionID: sessionID,
		UserID:    who.UserID,
		Role:      who.Role,
	})
	if err == nil {
		p.offer(ack)
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.Done():
				return
			case env := <-p.send:
				if err := writeEnvelope(ctx, conn, env, g.cfg.WriteTimeout); err != nil {
					g.log.Info("ws.write.fail", "session_id", sessionID, "close_status", websocket.CloseStatus(err), "err", err)
					shutdown(websocket.StatusAbnormalClosure, "write failed")
					return
				}
			}
		}
	}()

	heartbeatDone := make(chan struct{})
	go func() {
		defer close(heartbeatDone)
		t := time.NewTicker(g.cfg.HeartbeatEvery)
		defer t.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.Done():
				return
			case <-t.C:
				hbCtx, hbCancel := context.WithTimeout(ctx, g.cfg.HeartbeatTimeout)
				err := conn.Ping(hbCtx)
				hbCancel()
				if err != nil {
					failures++
					g.log.Info("ws.ping.fail", "session_id", sessionID, "failures", failures, "err", err)
					if failures >= maxPingFailures {
						shutdown(websocket.StatusGoingAway, "heartbeat failed")
						return
					}
					continue
				}
				failures = 0
			}
		}
	}()

	limiter := rate.NewLimiter(rate.Limit(g.cfg.InboundRate), g.cfg.InboundBurst)

readLoop:
	for {
		// Liveness comes from the heartbeat; subscribers rarely write.
		env, err := readEnvelope(ctx, conn)

		if err != nil {
			switch classifyReadErr(err) {
			case readErrClose:
				shutdown(websocket.StatusNormalClosure, "peer closed")
				break readLoop
			case readErrCtxDone:
				shutdown(websocket.StatusNormalClosure, "context done")
				break readLoop
			case readErrConnClosed:
				shutdown(websocket.StatusAbnormalClosure, "conn closed")
				break readLoop
			case readErrBadJSON:
				g.sendError(p, "bad_json", "invalid JSON")
				continue readLoop
			default:
				g.log.Info("ws.read.fail", "session_id", sessionID, "err", err)
				shutdown(websocket.StatusAbnormalClosure, "read failed")
				break readLoop
			}
		}

		if !limiter.Allow() {
			g.sendError(p, "rate_limited", "too many events")
			shutdown(websocket.StatusPolicyViolation, "rate limited")
			break readLoop
		}

		if err := env.Validate(); err != nil {
			g.sendError(p, "bad_envelope", err.Error())
			continue readLoop
		}

		switch env.Type {
		case v1.TypeNotificationRead:
			var rp v1.NotificationReadPayload
			if err := json.Unmarshal(env.Payload, &rp); err != nil || strings.TrimSpace(rp.ID) == "" {
				g.sendError(p, "bad_payload", "notification_read requires id")
				continue readLoop
			}
			g.log.Debug("ws.notification.read", "session_id", sessionID, "notification_id", rp.ID)
			if g.onRead != nil {
				g.onRead(Identity{UserID: who.UserID, SessionID: sessionID, Role: who.Role}, rp.ID)
			}
		default:
			g.sendError(p, "unsupported", fmt.Sprintf("unsupported type: %s", env.Type))
		}
	}

	shutdown(websocket.StatusNormalClosure, "bye")
	<-writerDone

	select {
	case <-heartbeatDone:
	case <-time.After(closeGrace):
	}
	g.log.Info("ws.disconnect", "session_id", sessionID, "user_id", who.UserID)
}

func (g *Gateway) sendError(p *peer, code, msg string) {
	env, err := v1.New(v1.TypeError, "", time.Now().UTC(), v1.ErrorPayload{Code: code, Message: msg})
	if err != nil {
		return
	}
	if !p.offer(env) {
		g.log.Debug("ws.error.drop", "session_id", p.id, "code", code)
	}
}

func readEnvelope(ctx context.Context, conn *websocket.Conn) (v1.Envelope, error) {
	typ, data, err := conn.Read(ctx)
	if err != nil {
		return v1.Envelope{}, err
	}
	if typ != websocket.MessageText {
		return v1.Envelope{}, errBadJSON
	}
	var env v1.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return v1.Envelope{}, fmt.Errorf("%w: %v", errBadJSON, err)
	}
	return env, nil
}

func writeEnvelope(ctx context.Context, conn *websocket.Conn, env v1.Envelope, timeout time.Duration) error {
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return conn.Write(wctx, websocket.MessageText, b)
}

var errBadJSON = errors.New("bad json frame")

type readErrKind int

const (
	readErrUnknown readErrKind = iota
	readErrClose
	readErrCtxDone
	readErrConnClosed
	readErrBadJSON
)

func classifyReadErr(err error) readErrKind {
	if websocket.CloseStatus(err) != -1 {
		return readErrClose
	}
	if errors.Is(err, errBadJSON) {
		return readErrBadJSON
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return readErrCtxDone
	}
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.EOF) {
		return readErrConnClosed
	}
	return readErrUnknown
}
