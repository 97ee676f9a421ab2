package interceptor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
)

const maxMessageBody = 1 << 20

type refreshResult struct {
	token string
	role  string
}

// refresh runs at most one refresh call at a time; concurrent callers share its result.
func (t *Transport) refresh(ctx context.Context, refreshURL string) (refreshResult, bool) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		rctx, cancel := detached(ctx, t.cfg.RefreshTimeout)
		defer cancel()

		res, err := t.doRefresh(rctx, refreshURL)
		if err != nil {
			t.log.Warn("auth.refresh.fail", "err", err)
			t.observe("failure")
			return refreshResult{}, err
		}

		t.creds.SetToken(rctx, res.token)
		if res.role != "" {
			t.creds.SetRole(rctx, res.role)
		}
		t.log.Info("auth.refresh.success", "role", res.role)
		t.observe("success")
		return res, nil
	})
	if err != nil {
		return refreshResult{}, false
	}
	return v.(refreshResult), true
}

func (t *Transport) doRefresh(ctx context.Context, refreshURL string) (refreshResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, refreshURL, strings.NewReader("{}"))
	if err != nil {
		return refreshResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for _, c := range t.jar.Cookies(req.URL) {
		req.AddCookie(c)
		if t.cfg.CSRFCookieName != "" && c.Name == t.cfg.CSRFCookieName && t.cfg.CSRFHeaderName != "" {
			req.Header.Set(t.cfg.CSRFHeaderName, c.Value)
		}
	}

	resp, err := t.dispatch(req)
	if err != nil {
		return refreshResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return refreshResult{}, &refreshStatusError{status: resp.StatusCode}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageBody))
	if err != nil {
		return refreshResult{}, err
	}
	token, role := ParseTokenPayload(b)
	if token == "" {
		return refreshResult{}, errNoRefreshToken
	}
	return refreshResult{token: token, role: role}, nil
}

func (t *Transport) observe(outcome string) {
	if t.obs != nil {
		t.obs.RefreshAttempt(outcome)
	}
}

// ParseTokenPayload extracts the access token and optional role from a login or refresh response.
func ParseTokenPayload(b []byte) (token, role string) {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return "", ""
	}
	token = firstString(m,
		[]string{"token"},
		[]string{"accessToken"},
		[]string{"access_token"},
		[]string{"session", "access_token"},
		[]string{"data", "token"},
	)
	role = firstString(m,
		[]string{"role"},
		[]string{"userRole"},
		[]string{"user", "role"},
		[]string{"data", "role"},
	)
	return token, role
}

// expiredMessage reads the 401 body for a user-facing reason and restores the body.
func expiredMessage(resp *http.Response) string {
	if resp.Body == nil {
		return session.DefaultExpiredMessage
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageBody))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(b))
	if err != nil {
		return session.DefaultExpiredMessage
	}
	if msg := MessageFromBody(b); msg != "" {
		return msg
	}
	return session.DefaultExpiredMessage
}

// MessageFromBody returns message, error.message or a string error from a JSON body.
func MessageFromBody(b []byte) string {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return ""
	}
	if s := firstString(m, []string{"message"}, []string{"error", "message"}); s != "" {
		return s
	}
	if s, ok := m["error"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func firstString(m map[string]any, paths ...[]string) string {
	for _, p := range paths {
		if s := stringAt(m, p); s != "" {
			return s
		}
	}
	return ""
}

func stringAt(m map[string]any, path []string) string {
	var cur any = m
	for _, k := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = obj[k]
	}
	s, _ := cur.(string)
	return strings.TrimSpace(s)
}

// Refresh runs the shared refresh flow outside of a RoundTrip and returns the new access token.
func (t *Transport) Refresh(ctx context.Context) (string, bool) {
	res, ok := t.refresh(ctx, t.refreshURL)
	return res.token, ok
}
