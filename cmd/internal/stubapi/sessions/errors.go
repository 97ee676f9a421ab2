package sessions

import "errors"

var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrSessionRevoked       = errors.New("session revoked")
	ErrRefreshReuseDetected = errors.New("refresh token reuse detected")
	ErrConfig               = errors.New("invalid sessions config")
)
