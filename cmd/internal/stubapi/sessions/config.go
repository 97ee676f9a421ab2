package sessions

import (
	"os"
	"strconv"
	"strings"
	"time"

	paseto "aidanwoods.dev/go-paseto"
)

// Config controls token lifetimes and key material.
type Config struct {
	Issuer            string
	AccessTokenTTL    time.Duration
	RefreshTTL        time.Duration
	ClockSkew         time.Duration
	RefreshTokenBytes int

	// PasetoV4SecretKeyHex is the Ed25519 secret signing access tokens.
	PasetoV4SecretKeyHex string

	// RefreshHMACKey keys refresh-token hashing. Empty falls back to SHA-256.
	RefreshHMACKey []byte
}

// DefaultConfig returns dev defaults without key material.
func DefaultConfig() Config {
	return Config{
		Issuer:            "hiring-stub",
		AccessTokenTTL:    15 * time.Minute,
		RefreshTTL:        7 * 24 * time.Hour,
		ClockSkew:         30 * time.Second,
		RefreshTokenBytes: 32,
	}
}

// LoadConfigFromEnv reads STUBAPI_AUTH_* settings. A missing signing key is
// replaced by an ephemeral one, so tokens do not survive a restart.
//
//   - STUBAPI_AUTH_ISSUER
//   - STUBAPI_AUTH_ACCESS_TTL
//   - STUBAPI_AUTH_REFRESH_TTL
//   - STUBAPI_AUTH_CLOCK_SKEW
//   - STUBAPI_AUTH_REFRESH_TOKEN_BYTES (32..64)
//   - STUBAPI_PASETO_V4_SECRET_KEY_HEX
//   - STUBAPI_TOKEN_HMAC_KEY (>= 32 bytes when set)
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := strings.TrimSpace(os.Getenv("STUBAPI_AUTH_ISSUER")); v != "" {
		cfg.Issuer = v
	}

	durations := []struct {
		key       string
		dst       *time.Duration
		allowZero bool
	}{
		{"STUBAPI_AUTH_ACCESS_TTL", &cfg.AccessTokenTTL, false},
		{"STUBAPI_AUTH_REFRESH_TTL", &cfg.RefreshTTL, false},
		{"STUBAPI_AUTH_CLOCK_SKEW", &cfg.ClockSkew, true},
	}
	for _, d := range durations {
		v := strings.TrimSpace(os.Getenv(d.key))
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil || parsed < 0 || (parsed == 0 && !d.allowZero) {
			return Config{}, ErrConfig
		}
		*d.dst = parsed
	}

	if v := strings.TrimSpace(os.Getenv("STUBAPI_AUTH_REFRESH_TOKEN_BYTES")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 32 || n > 64 {
			return Config{}, ErrConfig
		}
		cfg.RefreshTokenBytes = n
	}

	if v := strings.TrimSpace(os.Getenv("STUBAPI_TOKEN_HMAC_KEY")); v != "" {
		if len(v) < 32 {
			return Config{}, ErrConfig
		}
		cfg.RefreshHMACKey = []byte(v)
	}

	cfg.PasetoV4SecretKeyHex = strings.TrimSpace(os.Getenv("STUBAPI_PASETO_V4_SECRET_KEY_HEX"))
	if cfg.PasetoV4SecretKeyHex == "" {
		cfg.PasetoV4SecretKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()
	}

	if cfg.AccessTokenTTL >= cfg.RefreshTTL {
		return Config{}, ErrConfig
	}
	return cfg, nil
}
