package sessions

import (
	"context"
	"sync"
	"time"
)

// Row is one stored session.
type Row struct {
	ID               string
	UserID           string
	Role             string
	RefreshTokenHash string
	CreatedAt        time.Time
	LastUsedAt       time.Time
	ExpiresAt        time.Time
	RevokedAt        *time.Time
	ReplacedBy       string
}

func (r Row) active(now time.Time) error {
	switch {
	case r.RevokedAt != nil:
		return ErrSessionRevoked
	case !r.ExpiresAt.After(now):
		return ErrSessionExpired
	}
	return nil
}

// Store persists session rows. Service serializes rotation, so implementations
// only need per-call atomicity.
type Store interface {
	Create(ctx context.Context, row Row) error
	GetByID(ctx context.Context, id string) (Row, error)
	GetByRefreshHash(ctx context.Context, hash string) (Row, error)
	MarkRotated(ctx context.Context, now time.Time, id, replacedBy string) error
	Revoke(ctx context.Context, now time.Time, id string) error
	RevokeAll(ctx context.Context, now time.Time, userID string) (int, error)
	Touch(ctx context.Context, now time.Time, id string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]Row
	byHash map[string]string
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Row), byHash: make(map[string]string)}
}

func (s *MemoryStore) Create(_ context.Context, row Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[row.ID] = row
	s.byHash[row.RefreshTokenHash] = row.ID
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.byID[id]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return row, nil
}

func (s *MemoryStore) GetByRefreshHash(_ context.Context, hash string) (Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hash]
	if !ok {
		return Row{}, ErrSessionNotFound
	}
	return s.byID[id], nil
}

func (s *MemoryStore) MarkRotated(_ context.Context, now time.Time, id, replacedBy string) error {
	return s.update(id, func(r *Row) {
		r.RevokedAt = &now
		r.ReplacedBy = replacedBy
		r.LastUsedAt = now
	})
}

func (s *MemoryStore) Revoke(_ context.Context, now time.Time, id string) error {
	return s.update(id, func(r *Row) {
		if r.RevokedAt == nil {
			r.RevokedAt = &now
		}
	})
}

func (s *MemoryStore) RevokeAll(_ context.Context, now time.Time, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, r := range s.byID {
		if r.UserID != userID || r.RevokedAt != nil {
			continue
		}
		r.RevokedAt = &now
		s.byID[id] = r
		n++
	}
	return n, nil
}

func (s *MemoryStore) Touch(_ context.Context, now time.Time, id string) error {
	return s.update(id, func(r *Row) { r.LastUsedAt = now })
}

func (s *MemoryStore) update(id string, fn func(*Row)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	fn(&r)
	s.byID[id] = r
	return nil
}
