package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
)

func newTestGuard(t *testing.T) (*Guard, *credential.Store, *atomic.Int32, *[]string) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	creds := credential.NewMemoryStore(log)

	var navs atomic.Int32
	var mu sync.Mutex
	reasons := []string{}
	nav := NavigatorFunc(func(reason string) {
		navs.Add(1)
		mu.Lock()
		reasons = append(reasons, reason)
		mu.Unlock()
	})
	return NewGuard(log, NewContext(), creds, nav), creds, &navs, &reasons
}

func TestForceLogout_ClearsCredentialsAndNavigatesOnce(t *testing.T) {
	g, creds, navs, reasons := newTestGuard(t)
	ctx := context.Background()
	creds.Set(ctx, credential.Credential{Token: "tok", Role: "hr"})

	if !g.ForceLogout("") {
		t.Fatalf("first ForceLogout must act")
	}
	if g.ForceLogout("second") {
		t.Fatalf("second ForceLogout must be a no-op")
	}

	if creds.Token(ctx) != "" || creds.Role(ctx) != "" {
		t.Fatalf("credentials not cleared: %+v", creds.Credential(ctx))
	}
	if navs.Load() != 1 {
		t.Fatalf("navigations=%d want 1", navs.Load())
	}
	if (*reasons)[0] != DefaultExpiredMessage {
		t.Fatalf("reason=%q", (*reasons)[0])
	}
	if !g.Context().RedirectIssued() {
		t.Fatalf("redirect flag not set")
	}
}

func TestForceLogout_ConcurrentCallersRedirectOnce(t *testing.T) {
	g, _, navs, _ := newTestGuard(t)

	const n = 32
	var wg sync.WaitGroup
	var winners atomic.Int32
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			if g.ForceLogout(fmt.Sprintf("msg-%d", i)) {
				winners.Add(1)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if winners.Load() != 1 || navs.Load() != 1 {
		t.Fatalf("winners=%d navigations=%d want 1/1", winners.Load(), navs.Load())
	}

	msg, ok := g.ConsumeSessionMessage()
	if !ok || msg == "" {
		t.Fatalf("expected one stored message")
	}
	if _, ok := g.ConsumeSessionMessage(); ok {
		t.Fatalf("message must be one-shot")
	}
}

func TestConsumeSessionMessage_FirstCallerMessageWins(t *testing.T) {
	g, _, _, _ := newTestGuard(t)

	g.ForceLogout("Your account was disabled")
	g.ForceLogout("ignored")

	msg, ok := g.ConsumeSessionMessage()
	if !ok || msg != "Your account was disabled" {
		t.Fatalf("message=%q ok=%v", msg, ok)
	}
}

type countObserver struct{ n atomic.Int32 }

func (o *countObserver) ForcedLogout() { o.n.Add(1) }

func TestForceLogout_NotifiesObserver(t *testing.T) {
	obs := &countObserver{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	g := NewGuard(log, NewContext(), credential.NewMemoryStore(log), nil, WithLogoutObserver(obs))

	g.ForceLogout("x")
	g.ForceLogout("y")

	if obs.n.Load() != 1 {
		t.Fatalf("observer calls=%d want 1", obs.n.Load())
	}
}

func TestContext_InterceptorFlag(t *testing.T) {
	sc := NewContext()
	if sc.InterceptorInstalled() {
		t.Fatalf("flag must start false")
	}
	if !sc.MarkInterceptorInstalled() {
		t.Fatalf("first mark must succeed")
	}
	if sc.MarkInterceptorInstalled() {
		t.Fatalf("second mark must fail")
	}
}
