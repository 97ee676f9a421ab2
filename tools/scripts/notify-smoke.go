// Package main provides a CI-friendly smoke test for the stub backend's
// notification gateway.
//
// It validates:
//   - password login for a hiring manager and an interviewer
//   - websocket handshake with a bearer token and subprotocol selection
//   - hello_ack session establishment
//   - feedback submission fanning out a feedback.received notification
//   - notification_read acknowledgement
//   - a handshake without a token is refused with 401
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"

	"github.com/coder/websocket"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	name      string
	conn      *websocket.Conn
	sessionID string

	inbox chan v1.Envelope
	errCh chan error
}

func main() {
	var (
		apiBase     = flag.String("api", "http://127.0.0.1:5000", "API base URL, including any route prefix")
		origin      = flag.String("origin", "", "Origin header to send (browser-like WS handshake)")
		manager     = flag.String("manager", "maya@hiring.test", "Hiring manager email")
		interviewer = flag.String("interviewer", "ravi@hiring.test", "Interviewer email")
		pass        = flag.String("password", "hire-me-please", "Password shared by both accounts")
		interview   = flag.String("interview", "i-1", "Interview ID to submit feedback for")
		timeout     = flag.Duration("timeout", 7*time.Second, "Per-step timeout")
		verbose     = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	base := strings.TrimRight(*apiBase, "/")
	wsURL, err := toWSURL(base + "/ws")
	if err != nil {
		fatalf("invalid -api: %v", err)
	}
	if err := validateOrigin(*origin); err != nil {
		fatalf("invalid -origin: %v", err)
	}

	root := context.Background()

	mustRejectAnonymous(root, wsURL, *origin, *timeout)

	hmToken := mustLogin(root, base, *manager, *pass, *timeout)
	ivToken := mustLogin(root, base, *interviewer, *pass, *timeout)

	hm := mustConnect(root, "manager", wsURL, *origin, hmToken, *timeout)
	defer closeWS(hm.conn)

	if *verbose {
		fmt.Printf("connected: manager=%s origin=%q\n", hm.sessionID, *origin)
	}

	mustSubmitFeedback(root, base, ivToken, *interview, *timeout)

	env := hm.mustReadUntilType(root, v1.TypeNotification, *timeout)
	var n v1.NotificationPayload
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		fatalf("unmarshal notification: %v", err)
	}
	if n.Kind != v1.KindFeedbackReceived || n.ResourceID != *interview {
		fatalf("unexpected notification: kind=%q resource=%q", n.Kind, n.ResourceID)
	}
	if strings.TrimSpace(n.ID) == "" {
		fatalf("notification missing id")
	}

	read, err := v1.New(v1.TypeNotificationRead, "smoke-read", time.Now(), v1.NotificationReadPayload{ID: n.ID})
	if err != nil {
		fatalf("build notification_read: %v", err)
	}
	mustWriteWithTimeout(root, hm.conn, read, *timeout)
	mustAssertNoType(root, hm, v1.TypeError, 750*time.Millisecond)

	fmt.Printf("OK: session=%s notification=%s kind=%s title=%q\n", hm.sessionID, n.ID, n.Kind, n.Title)
}

func toWSURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", errors.New("missing host")
	}
	return u.String(), nil
}

func validateOrigin(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("origin must be http/https, got: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("origin missing host")
	}
	return nil
}

func mustLogin(parent context.Context, base, email, password string, stepTimeout time.Duration) string {
	var out struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	status := mustPostJSON(parent, base+"/auth/login", "", map[string]string{"email": email, "password": password}, &out, stepTimeout)
	if status != http.StatusOK {
		fatalf("login %s: status=%d", email, status)
	}
	if strings.TrimSpace(out.Token) == "" {
		fatalf("login %s: missing token", email)
	}
	return out.Token
}

func mustSubmitFeedback(parent context.Context, base, token, interviewID string, stepTimeout time.Duration) {
	body := map[string]any{"rating": 4, "recommendation": "hire", "notes": "smoke test"}
	status := mustPostJSON(parent, base+"/interviewer/interviews/"+url.PathEscape(interviewID)+"/feedback", token, body, nil, stepTimeout)
	if status != http.StatusCreated {
		fatalf("submit feedback: status=%d", status)
	}
}

func mustPostJSON(parent context.Context, target, token string, in, out any, stepTimeout time.Duration) int {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(in)
	if err != nil {
		fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fatalf("POST %s: %v", target, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxReadBytes)).Decode(out); err != nil {
			fatalf("decode %s: %v", target, err)
		}
	}
	return resp.StatusCode
}

func mustRejectAnonymous(parent context.Context, wsURL, origin string, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	if origin != "" {
		h.Set("Origin", origin)
	}
	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{v1.Subprotocol},
		HTTPHeader:   h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err == nil {
		closeWS(conn)
		fatalf("anonymous handshake was accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		fatalf("anonymous handshake: want 401, got err=%v", err)
	}
}

func mustConnect(parent context.Context, name, wsURL, origin, token string, stepTimeout time.Duration) *smokeClient {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+token)
	if strings.TrimSpace(origin) != "" {
		h.Set("Origin", origin)
	}

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{
		Subprotocols: []string{v1.Subprotocol},
		HTTPHeader:   h,
	})
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		fatalf("connect %s: %v", name, err)
	}

	assertSubprotocol(resp, v1.Subprotocol)

	conn.SetReadLimit(maxReadBytes)

	c := &smokeClient{
		name:  name,
		conn:  conn,
		inbox: make(chan v1.Envelope, 64),
		errCh: make(chan error, 1),
	}
	c.startReadLoop()

	ack := c.mustReadUntilType(parent, v1.TypeHelloAck, stepTimeout)

	var p v1.HelloAckPayload
	if err := json.Unmarshal(ack.Payload, &p); err != nil {
		fatalf("unmarshal hello_ack payload (%s): %v", name, err)
	}
	if strings.TrimSpace(p.SessionID) == "" {
		fatalf("hello_ack missing session_id (%s)", name)
	}
	c.sessionID = p.SessionID

	return c
}

func assertSubprotocol(resp *http.Response, want string) {
	if resp == nil {
		return
	}
	got := strings.TrimSpace(resp.Header.Get("Sec-WebSocket-Protocol"))
	if got == "" {
		return
	}
	if got != want {
		fatalf("subprotocol mismatch: got=%q want=%q", got, want)
	}
}

func (c *smokeClient) startReadLoop() {
	go func() {
		defer close(c.inbox)

		for {
			mt, data, err := c.conn.Read(context.Background())
			if err != nil {
				c.fail(err)
				return
			}
			if mt != websocket.MessageText {
				c.fail(fmt.Errorf("unsupported message type: %v", mt))
				return
			}

			var env v1.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				c.fail(fmt.Errorf("bad json: %w", err))
				return
			}
			if err := env.Validate(); err != nil {
				c.fail(fmt.Errorf("bad envelope: %w", err))
				return
			}

			select {
			case c.inbox <- env:
			default:
				c.fail(errors.New("inbox overflow: consumer too slow"))
				return
			}
		}
	}()
}

func (c *smokeClient) fail(err error) {
	select {
	case c.errCh <- err:
	default:
	}
}

func (c *smokeClient) mustReadUntilType(parent context.Context, wantType string, stepTimeout time.Duration) v1.Envelope {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fatalf("timeout waiting for %q (%s): %v", wantType, c.name, ctx.Err())
		case err := <-c.errCh:
			fatalf("connection error while waiting for %q (%s): %v", wantType, c.name, err)
		case env, ok := <-c.inbox:
			if !ok {
				fatalf("connection closed while waiting for %q (%s)", wantType, c.name)
			}
			if env.Type == wantType {
				return env
			}
			if env.Type == v1.TypeError {
				var ep v1.ErrorPayload
				_ = json.Unmarshal(env.Payload, &ep)
				fatalf("server error (%s): code=%q msg=%q", c.name, ep.Code, ep.Message)
			}
		}
	}
}

func mustAssertNoType(parent context.Context, c *smokeClient, forbiddenType string, wait time.Duration) {
	ctx, cancel := context.WithTimeout(parent, wait)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-c.inbox:
			if !ok {
				return
			}
			if env.Type == forbiddenType {
				fatalf("unexpected %q (%s): %s", forbiddenType, c.name, string(env.Payload))
			}
		}
	}
}

func mustWriteWithTimeout(parent context.Context, conn *websocket.Conn, env v1.Envelope, stepTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, stepTimeout)
	defer cancel()

	b, err := json.Marshal(env)
	if err != nil {
		fatalf("marshal envelope: %v", err)
	}
	if err := conn.Write(ctx, websocket.MessageText, b); err != nil {
		fatalf("write failed: %v", err)
	}
}

func closeWS(conn *websocket.Conn) {
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
