package app

import (
	"errors"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

const minHMACKeyBytes = 32

// ValidateSecurityConfig enforces the stub's token policy at startup.
// Fail-fast: falling back to unkeyed hashing when HMAC is required is an error.
func ValidateSecurityConfig(cfg ServerConfig, sc sessions.Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}
	switch n := len(sc.RefreshHMACKey); {
	case n == 0:
		return errors.New("security policy: STUBAPI_REQUIRE_TOKEN_HMAC=true but STUBAPI_TOKEN_HMAC_KEY is missing")
	case n < minHMACKeyBytes:
		return errors.New("security policy: STUBAPI_REQUIRE_TOKEN_HMAC=true but STUBAPI_TOKEN_HMAC_KEY is too short (min 32 bytes)")
	}
	return nil
}
