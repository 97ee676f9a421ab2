package credential

import (
	"context"
	"log/slog"
	"strings"
	"sync"
)

// Credential is the token/role pair issued at login.
type Credential struct {
	Token string
	Role  string
}

// Store reads and writes credentials across a durable and a session tier.
//
// Store is safe for concurrent use. Its methods never fail; tier errors are logged.
type Store struct {
	log     *slog.Logger
	durable Tier
	session Tier

	mu sync.Mutex
}

// NewStore constructs a Store over the two tiers. A nil tier is replaced by an in-memory one.
func NewStore(log *slog.Logger, durable, session Tier) *Store {
	if log == nil {
		log = slog.Default()
	}
	if durable == nil {
		durable = NewMemoryTier("durable")
	}
	if session == nil {
		session = NewMemoryTier("session")
	}
	return &Store{log: log, durable: durable, session: session}
}

// NewMemoryStore returns a Store with two in-memory tiers.
func NewMemoryStore(log *slog.Logger) *Store {
	return NewStore(log, NewMemoryTier("durable"), NewMemoryTier("session"))
}

// Token returns the first non-empty token across the alias keys, durable tier first per key.
func (s *Store) Token(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstLocked(ctx, TokenKeys)
}

// Role returns the stored role, or "".
func (s *Store) Role(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstLocked(ctx, RoleKeys)
}

// Credential returns the current token/role pair.
func (s *Store) Credential(ctx context.Context) Credential {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Credential{
		Token: s.firstLocked(ctx, TokenKeys),
		Role:  s.firstLocked(ctx, RoleKeys),
	}
}

// HasRole reports whether the stored role equals one of roles, ignoring case.
func (s *Store) HasRole(ctx context.Context, roles ...string) bool {
	role := strings.TrimSpace(s.Role(ctx))
	if role == "" {
		return false
	}
	for _, r := range roles {
		if strings.EqualFold(role, strings.TrimSpace(r)) {
			return true
		}
	}
	return false
}

// SetToken writes token under every alias in both tiers.
func (s *Store) SetToken(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeAllLocked(ctx, TokenKeys, token)
}

// SetRole writes role under every role alias in both tiers.
func (s *Store) SetRole(ctx context.Context, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeAllLocked(ctx, RoleKeys, role)
}

// Set writes token and role together. An empty role removes any stored role
// so a stale role never outlives the token it came with.
func (s *Store) Set(ctx context.Context, c Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeAllLocked(ctx, TokenKeys, c.Token)
	if strings.TrimSpace(c.Role) == "" {
		s.deleteAllLocked(ctx, RoleKeys)
		return
	}
	s.writeAllLocked(ctx, RoleKeys, c.Role)
}

// Clear removes every token and role alias from both tiers.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteAllLocked(ctx, TokenKeys)
	s.deleteAllLocked(ctx, RoleKeys)
}

// Put stores a single value in the durable tier.
func (s *Store) Put(ctx context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.durable.Set(ctx, key, value); err != nil {
		s.warn("credential.put.fail", s.durable, key, err)
	}
}

// Take reads and deletes key from both tiers, durable first.
func (s *Store) Take(ctx context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		out   string
		found bool
	)
	for _, t := range s.tiers() {
		v, ok, err := t.Get(ctx, key)
		if err != nil {
			s.warn("credential.take.read.fail", t, key, err)
			continue
		}
		if ok && !found {
			out, found = v, true
		}
		if ok {
			if err := t.Delete(ctx, key); err != nil {
				s.warn("credential.take.delete.fail", t, key, err)
			}
		}
	}
	return out, found
}

func (s *Store) tiers() []Tier {
	return []Tier{s.durable, s.session}
}

func (s *Store) firstLocked(ctx context.Context, keys []string) string {
	for _, k := range keys {
		for _, t := range s.tiers() {
			v, ok, err := t.Get(ctx, k)
			if err != nil {
				s.warn("credential.read.fail", t, k, err)
				continue
			}
			if ok && strings.TrimSpace(v) != "" {
				return v
			}
		}
	}
	return ""
}

func (s *Store) writeAllLocked(ctx context.Context, keys []string, value string) {
	for _, t := range s.tiers() {
		for _, k := range keys {
			if err := t.Set(ctx, k, value); err != nil {
				s.warn("credential.write.fail", t, k, err)
			}
		}
	}
}

func (s *Store) deleteAllLocked(ctx context.Context, keys []string) {
	for _, t := range s.tiers() {
		for _, k := range keys {
			if err := t.Delete(ctx, k); err != nil {
				s.warn("credential.delete.fail", t, k, err)
			}
		}
	}
}

func (s *Store) warn(event string, t Tier, key string, err error) {
	s.log.Warn(event, "tier", t.Name(), "key", key, "err", err)
}
