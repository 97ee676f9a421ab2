package credential

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_SetTokenWritesEveryAliasInBothTiers(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryTier("durable")
	sess := NewMemoryTier("session")
	s := NewStore(testLogger(), durable, sess)

	s.SetToken(ctx, "tok-123")

	if got := s.Token(ctx); got != "tok-123" {
		t.Fatalf("Token()=%q want tok-123", got)
	}
	for _, tier := range []*MemoryTier{durable, sess} {
		for _, k := range TokenKeys {
			v, ok, err := tier.Get(ctx, k)
			if err != nil || !ok || v != "tok-123" {
				t.Fatalf("tier=%s key=%s got=%q ok=%v err=%v", tier.Name(), k, v, ok, err)
			}
		}
	}
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryTier("durable")
	sess := NewMemoryTier("session")
	s := NewStore(testLogger(), durable, sess)

	s.Set(ctx, Credential{Token: "tok", Role: "Interviewer"})
	s.Clear(ctx)

	if got := s.Token(ctx); got != "" {
		t.Fatalf("Token() after Clear=%q", got)
	}
	if got := s.Role(ctx); got != "" {
		t.Fatalf("Role() after Clear=%q", got)
	}
	if durable.Len() != 0 || sess.Len() != 0 {
		t.Fatalf("expected empty tiers, durable=%d session=%d", durable.Len(), sess.Len())
	}
}

func TestStore_TokenLookupOrder(t *testing.T) {
	ctx := context.Background()
	durable := NewMemoryTier("durable")
	sess := NewMemoryTier("session")
	s := NewStore(testLogger(), durable, sess)

	// Legacy alias only in the session tier.
	_ = sess.Set(ctx, "jwtToken", "legacy")
	if got := s.Token(ctx); got != "legacy" {
		t.Fatalf("Token()=%q want legacy", got)
	}

	// An earlier alias wins even when it lives in the session tier.
	_ = sess.Set(ctx, "token", "session-primary")
	_ = durable.Set(ctx, "authToken", "durable-later-alias")
	if got := s.Token(ctx); got != "session-primary" {
		t.Fatalf("Token()=%q want session-primary", got)
	}

	// For the same alias the durable tier wins.
	_ = durable.Set(ctx, "token", "durable-primary")
	if got := s.Token(ctx); got != "durable-primary" {
		t.Fatalf("Token()=%q want durable-primary", got)
	}

	// Blank values are skipped.
	_ = durable.Set(ctx, "token", "  ")
	if got := s.Token(ctx); got != "session-primary" {
		t.Fatalf("Token()=%q want session-primary", got)
	}
}

func TestStore_SetWithoutRoleDropsStaleRole(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testLogger())

	s.Set(ctx, Credential{Token: "a", Role: "hr"})
	s.Set(ctx, Credential{Token: "b"})

	if got := s.Credential(ctx); got.Token != "b" || got.Role != "" {
		t.Fatalf("Credential()=%+v", got)
	}
}

func TestStore_HasRoleIgnoresCase(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testLogger())
	s.SetRole(ctx, "Hiring_Manager")

	if !s.HasRole(ctx, "hiring_manager") {
		t.Fatalf("expected case-insensitive match")
	}
	if s.HasRole(ctx, "interviewer", "admin") {
		t.Fatalf("unexpected match")
	}
}

func TestStore_TakeIsOneShot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(testLogger())
	s.Put(ctx, SessionMessageKey, "bye")

	v, ok := s.Take(ctx, SessionMessageKey)
	if !ok || v != "bye" {
		t.Fatalf("Take()=%q,%v", v, ok)
	}
	if v, ok := s.Take(ctx, SessionMessageKey); ok || v != "" {
		t.Fatalf("second Take()=%q,%v", v, ok)
	}
}

type failingTier struct{}

func (failingTier) Name() string { return "failing" }
func (failingTier) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("boom")
}
func (failingTier) Set(context.Context, string, string) error { return errors.New("boom") }
func (failingTier) Delete(context.Context, string) error      { return errors.New("boom") }

func TestStore_TierFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	sess := NewMemoryTier("session")
	s := NewStore(testLogger(), failingTier{}, sess)

	s.SetToken(ctx, "tok")
	if got := s.Token(ctx); got != "tok" {
		t.Fatalf("Token()=%q want tok from the healthy tier", got)
	}
	s.Clear(ctx)
	if got := s.Token(ctx); got != "" {
		t.Fatalf("Token() after Clear=%q", got)
	}
}
