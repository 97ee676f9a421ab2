package stubapi_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	paseto "aidanwoods.dev/go-paseto"

	v1 "github.com/jaswanth-exaze/recruitment-project-sub001/shared/contracts/notify/v1"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/interceptor"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/dashboard"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/password"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

const seedPassword = "hire-me-please"

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newServer(t *testing.T, prefix string) (*httptest.Server, *stubapi.Server, *clock) {
	t.Helper()
	clk := &clock{now: time.Now().UTC()}

	scfg := sessions.DefaultConfig()
	scfg.PasetoV4SecretKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()
	svc, err := sessions.NewServiceFromConfig(scfg)
	if err != nil {
		t.Fatalf("NewServiceFromConfig: %v", err)
	}

	cfg := stubapi.DefaultConfig()
	cfg.Prefix = prefix
	s, err := stubapi.New(discard(), cfg, svc,
		stubapi.WithPasswordConfig(password.FastConfig()),
		stubapi.WithClock(clk.Now),
	)
	if err != nil {
		t.Fatalf("stubapi.New: %v", err)
	}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv, s, clk
}

// stack is one dashboard page wired against a base URL.
type stack struct {
	creds     *credential.Store
	guard     *session.Guard
	transport *interceptor.Transport
	client    *apiclient.Client
	auth      *dashboard.Auth
	hm        *dashboard.HiringManager
	iv        *dashboard.Interviewer
	overview  *dashboard.Overview

	navs atomic.Int32
}

func newStack(t *testing.T, base string) *stack {
	t.Helper()
	log := discard()
	st := &stack{creds: credential.NewMemoryStore(log)}
	st.guard = session.NewGuard(log, session.NewContext(), st.creds, session.NavigatorFunc(func(string) {
		st.navs.Add(1)
	}))

	hc := &http.Client{Timeout: 10 * time.Second}
	tr, err := interceptor.Install(hc, log, interceptor.Config{
		APIBase:        base,
		CSRFCookieName: "hiring_csrf",
		CSRFHeaderName: "X-CSRF-Token",
	}, st.creds, st.guard)
	if err != nil {
		t.Fatalf("interceptor.Install: %v", err)
	}
	st.transport = tr

	c, err := apiclient.New(log, apiclient.Config{BaseURL: base, TryAltPrefix: true}, st.creds, st.guard, apiclient.WithHTTPClient(hc))
	if err != nil {
		t.Fatalf("apiclient.New: %v", err)
	}
	st.client = c
	st.auth = dashboard.NewAuth(log, c, st.creds, st.guard)
	st.hm = dashboard.NewHiringManager(c)
	st.iv = dashboard.NewInterviewer(c)
	st.overview = dashboard.NewOverview(st.creds, st.auth, st.hm, st.iv)
	return st
}

func (st *stack) login(t *testing.T, email string) dashboard.LoginResult {
	t.Helper()
	res, err := st.auth.Login(context.Background(), email, seedPassword)
	if err != nil {
		t.Fatalf("Login(%s): %v", email, err)
	}
	return res
}

func TestE2E_ManagerBrowsesJobs(t *testing.T) {
	srv, _, _ := newServer(t, "/api")
	st := newStack(t, srv.URL+"/api")
	ctx := context.Background()

	res := st.login(t, "maya@hiring.test")
	if res.Role != dashboard.RoleHiringManager || res.User == nil || res.User.ID != "u-hm-1" {
		t.Fatalf("login result = %+v", res)
	}
	if got := st.creds.Role(ctx); got != dashboard.RoleHiringManager {
		t.Fatalf("stored role = %q", got)
	}

	jobs, err := st.hm.Jobs(ctx, dashboard.JobFilter{})
	if err != nil {
		t.Fatalf("Jobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("jobs = %d, want 3", len(jobs))
	}

	open, err := st.hm.Jobs(ctx, dashboard.JobFilter{Status: "open"})
	if err != nil || len(open) != 1 || open[0].ID != "j-1" {
		t.Fatalf("open jobs = %+v err=%v", open, err)
	}

	job, err := st.hm.Job(ctx, "j-1")
	if err != nil || job.Title != "Backend Engineer" {
		t.Fatalf("Job = %+v err=%v", job, err)
	}

	apps, err := st.hm.Applications(ctx, "j-1")
	if err != nil || len(apps) != 3 {
		t.Fatalf("Applications = %d err=%v", len(apps), err)
	}

	updated, err := st.hm.UpdateJobStatus(ctx, "j-2", "open")
	if err != nil || updated.Status != "open" {
		t.Fatalf("UpdateJobStatus = %+v err=%v", updated, err)
	}

	_, err = st.hm.Job(ctx, "nope")
	if !apiclient.IsNotFound(err) {
		t.Fatalf("missing job err = %v, want 404", err)
	}
	if st.navs.Load() != 0 {
		t.Fatalf("navigations = %d", st.navs.Load())
	}
}

func TestE2E_ExpiredAccessTokenRefreshesOnce(t *testing.T) {
	srv, _, clk := newServer(t, "/api")
	st := newStack(t, srv.URL+"/api")
	ctx := context.Background()

	first := st.login(t, "maya@hiring.test").Token
	clk.Advance(20 * time.Minute)

	p, err := st.auth.Profile(ctx)
	if err != nil {
		t.Fatalf("Profile after expiry: %v", err)
	}
	if p.Email != "maya@hiring.test" {
		t.Fatalf("profile = %+v", p)
	}
	if got := st.creds.Token(ctx); got == "" || got == first {
		t.Fatalf("token not rotated: %q", got)
	}
	if st.navs.Load() != 0 {
		t.Fatalf("navigations = %d, want 0", st.navs.Load())
	}
}

func TestE2E_ExpiredSessionForcesSingleLogout(t *testing.T) {
	srv, _, clk := newServer(t, "/api")
	st := newStack(t, srv.URL+"/api")
	ctx := context.Background()

	st.login(t, "maya@hiring.test")
	clk.Advance(8 * 24 * time.Hour)

	_, err := st.auth.Profile(ctx)
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("Profile err = %v, want 401", err)
	}
	if st.creds.Token(ctx) != "" || st.creds.Role(ctx) != "" {
		t.Fatalf("credentials not cleared")
	}

	_, err = st.hm.Jobs(ctx, dashboard.JobFilter{})
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("Jobs err = %v, want 401", err)
	}
	if got := st.navs.Load(); got != 1 {
		t.Fatalf("navigations = %d, want 1", got)
	}

	msg, ok := st.auth.LoginNotice()
	if !ok || msg != "Token expired" {
		t.Fatalf("LoginNotice = %q, %v", msg, ok)
	}
	if _, ok := st.auth.LoginNotice(); ok {
		t.Fatalf("notice shown twice")
	}
}

func TestE2E_BadPasswordDoesNotForceLogout(t *testing.T) {
	srv, _, _ := newServer(t, "/api")
	st := newStack(t, srv.URL+"/api")

	_, err := st.auth.Login(context.Background(), "maya@hiring.test", "wrong-password")
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid email or password" {
		t.Fatalf("err = %#v", err)
	}
	if st.navs.Load() != 0 || st.guard.Context().RedirectIssued() {
		t.Fatalf("failed login consumed the redirect")
	}
}

func TestE2E_AltPrefixFallback(t *testing.T) {
	srv, _, _ := newServer(t, "")
	st := newStack(t, srv.URL+"/api")
	ctx := context.Background()

	st.login(t, "ravi@hiring.test")
	ivs, err := st.iv.Interviews(ctx, true)
	if err != nil {
		t.Fatalf("Interviews: %v", err)
	}
	if len(ivs) != 2 {
		t.Fatalf("upcoming interviews = %d, want 2", len(ivs))
	}
}

func TestE2E_InterviewerCannotReachManagerRoutes(t *testing.T) {
	srv, _, _ := newServer(t, "/api")
	st := newStack(t, srv.URL+"/api")

	st.login(t, "ravi@hiring.test")
	_, err := st.hm.Jobs(context.Background(), dashboard.JobFilter{})
	if got := apiclient.StatusOf(err); got != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 (err=%v)", got, err)
	}
	if st.navs.Load() != 0 {
		t.Fatalf("403 must not log out")
	}
}

func TestE2E_OverviewByRole(t *testing.T) {
	srv, _, _ := newServer(t, "/api")
	ctx := context.Background()

	hr := newStack(t, srv.URL+"/api")
	hr.login(t, "lena@hiring.test")
	snap, err := hr.overview.Load(ctx)
	if err != nil {
		t.Fatalf("hr overview: %v", err)
	}
	if snap.Profile.Role != dashboard.RoleHR || len(snap.Jobs) != 3 || snap.Interviews != nil {
		t.Fatalf("hr snapshot = %+v", snap)
	}

	iv := newStack(t, srv.URL+"/api")
	iv.login(t, "ravi@hiring.test")
	snap, err = iv.overview.Load(ctx)
	if err != nil {
		t.Fatalf("interviewer overview: %v", err)
	}
	if len(snap.Interviews) != 2 || snap.Jobs != nil {
		t.Fatalf("interviewer snapshot = %+v", snap)
	}
}

func TestE2E_FeedbackNotifiesManager(t *testing.T) {
	srv, s, _ := newServer(t, "/api")

	manager := newStack(t, srv.URL+"/api")
	manager.login(t, "maya@hiring.test")
	sub, err := realtime.NewClient(discard(), realtime.ClientConfig{BaseURL: srv.URL + "/api", AutoAck: true},
		manager.creds, manager.guard, manager.transport)
	if err != nil {
		t.Fatalf("realtime.NewClient: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	got := make(chan v1.NotificationPayload, 1)
	done := make(chan error, 1)
	go func() {
		done <- sub.Subscribe(ctx, func(_ context.Context, n v1.NotificationPayload) error {
			got <- n
			return errors.New("stop")
		})
	}()

	for s.Broker().Connected() == 0 {
		select {
		case <-ctx.Done():
			t.Fatalf("subscriber never connected")
		case <-time.After(10 * time.Millisecond):
		}
	}

	interviewer := newStack(t, srv.URL+"/api")
	interviewer.login(t, "ravi@hiring.test")
	err = interviewer.iv.SubmitFeedback(ctx, "i-1", dashboard.Feedback{Rating: 4, Recommendation: "hire"})
	if err != nil {
		t.Fatalf("SubmitFeedback: %v", err)
	}

	select {
	case n := <-got:
		if n.Kind != v1.KindFeedbackReceived || n.ResourceID != "i-1" || n.ID == "" {
			t.Fatalf("notification = %+v", n)
		}
	case <-ctx.Done():
		t.Fatalf("no notification")
	}
	if err := <-done; err == nil || err.Error() != "stop" {
		t.Fatalf("Subscribe = %v", err)
	}
}

func TestE2E_LogoutRevokesRefresh(t *testing.T) {
	srv, _, clk := newServer(t, "/api")
	st := newStack(t, srv.URL+"/api")
	ctx := context.Background()

	st.login(t, "maya@hiring.test")
	st.auth.Logout(ctx)
	if st.creds.Token(ctx) != "" {
		t.Fatalf("token survived logout")
	}

	// A stale token cannot be revived through the refresh cookie.
	st.creds.SetToken(ctx, "stale")
	clk.Advance(time.Minute)
	_, err := st.hm.Jobs(ctx, dashboard.JobFilter{})
	if !apiclient.IsUnauthorized(err) {
		t.Fatalf("err = %v, want 401", err)
	}
	if st.navs.Load() != 1 {
		t.Fatalf("navigations = %d, want 1", st.navs.Load())
	}
}
