package sessions

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Issued is the result of a login or a rotation.
type Issued struct {
	SessionID    string
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

// Service issues, validates, rotates and revokes sessions.
type Service struct {
	cfg    Config
	tokens TokenManager
	store  Store

	// rotateMu makes lookup+rotate atomic across concurrent refreshes.
	rotateMu sync.Mutex
}

// NewService wires a Service. A nil store gets a MemoryStore.
func NewService(cfg Config, store Store, tokens TokenManager) *Service {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Service{cfg: cfg, store: store, tokens: tokens}
}

// NewServiceFromConfig builds the PASETO manager and an in-memory store.
func NewServiceFromConfig(cfg Config) (*Service, error) {
	tokens, err := NewPasetoV4(cfg)
	if err != nil {
		return nil, err
	}
	return NewService(cfg, NewMemoryStore(), tokens), nil
}

func newSessionID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
}

// IssueSession creates a session for a freshly authenticated user.
func (s *Service) IssueSession(ctx context.Context, now time.Time, userID, role string) (Issued, error) {
	return s.create(ctx, now, userID, role)
}

func (s *Service) create(ctx context.Context, now time.Time, userID, role string) (Issued, error) {
	plain, hash, err := newRefreshToken(s.cfg.RefreshTokenBytes, s.cfg.RefreshHMACKey)
	if err != nil {
		return Issued{}, err
	}
	row := Row{
		ID:               newSessionID(now),
		UserID:           userID,
		Role:             role,
		RefreshTokenHash: hash,
		CreatedAt:        now,
		LastUsedAt:       now,
		ExpiresAt:        now.Add(s.cfg.RefreshTTL),
	}
	if err := s.store.Create(ctx, row); err != nil {
		return Issued{}, err
	}

	access, accessExp, err := s.tokens.Issue(userID, row.ID, role, now)
	if err != nil {
		return Issued{}, err
	}
	return Issued{
		SessionID:    row.ID,
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: plain,
		RefreshExp:   row.ExpiresAt,
	}, nil
}

// ValidateAccessToken verifies the token and that its session is still active.
func (s *Service) ValidateAccessToken(ctx context.Context, token string, now time.Time) (AccessClaims, error) {
	claims, err := s.tokens.Verify(token, now)
	if err != nil {
		return AccessClaims{}, err
	}
	row, err := s.store.GetByID(ctx, claims.SessionID)
	if err != nil {
		return AccessClaims{}, err
	}
	if row.UserID != claims.UserID {
		return AccessClaims{}, ErrInvalidToken
	}
	if err := row.active(now); err != nil {
		return AccessClaims{}, err
	}
	_ = s.store.Touch(ctx, now, row.ID)
	return claims, nil
}

// RotateRefresh exchanges a refresh token for a new session.
//
// A token whose session was already rotated is reuse: every session of that
// user is revoked and ErrRefreshReuseDetected is returned.
func (s *Service) RotateRefresh(ctx context.Context, now time.Time, refreshPlain string) (Issued, AccessClaims, error) {
	refreshPlain = strings.TrimSpace(refreshPlain)
	if refreshPlain == "" || len(refreshPlain) > 4096 {
		return Issued{}, AccessClaims{}, ErrSessionNotFound
	}

	s.rotateMu.Lock()
	defer s.rotateMu.Unlock()

	row, err := s.store.GetByRefreshHash(ctx, hashRefreshToken(refreshPlain, s.cfg.RefreshHMACKey))
	if err != nil {
		return Issued{}, AccessClaims{}, err
	}
	if row.ReplacedBy != "" {
		if _, err := s.store.RevokeAll(ctx, now, row.UserID); err != nil {
			return Issued{}, AccessClaims{}, err
		}
		return Issued{}, AccessClaims{}, ErrRefreshReuseDetected
	}
	if err := row.active(now); err != nil {
		return Issued{}, AccessClaims{}, err
	}

	issued, err := s.create(ctx, now, row.UserID, row.Role)
	if err != nil {
		return Issued{}, AccessClaims{}, err
	}
	if err := s.store.MarkRotated(ctx, now, row.ID, issued.SessionID); err != nil {
		return Issued{}, AccessClaims{}, err
	}
	return issued, AccessClaims{
		UserID:    row.UserID,
		SessionID: issued.SessionID,
		Role:      row.Role,
		ExpiresAt: issued.AccessExp,
		IssuedAt:  now,
		Issuer:    s.cfg.Issuer,
	}, nil
}

// RevokeSession ends one session.
func (s *Service) RevokeSession(ctx context.Context, now time.Time, sessionID string) error {
	return s.store.Revoke(ctx, now, sessionID)
}

// RevokeAll ends every session of a user and returns how many were active.
func (s *Service) RevokeAll(ctx context.Context, now time.Time, userID string) (int, error) {
	return s.store.RevokeAll(ctx, now, userID)
}

// RevokeByRefresh ends the session owning refreshPlain. Unknown tokens are not an error.
func (s *Service) RevokeByRefresh(ctx context.Context, now time.Time, refreshPlain string) error {
	refreshPlain = strings.TrimSpace(refreshPlain)
	if refreshPlain == "" {
		return nil
	}
	row, err := s.store.GetByRefreshHash(ctx, hashRefreshToken(refreshPlain, s.cfg.RefreshHMACKey))
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}
	return s.store.Revoke(ctx, now, row.ID)
}
