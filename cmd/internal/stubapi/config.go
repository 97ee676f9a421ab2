package stubapi

import (
	"net/http"
	"os"
	"strconv"
	"strings"
)

// Config controls the stub HTTP surface.
type Config struct {
	// Prefix mounts every route under it, e.g. "/api". Empty mounts at root.
	Prefix string

	MaxBodyBytes int64

	RefreshCookieName string
	CSRFCookieName    string
	CSRFHeaderName    string
	CookieSecure      bool
	CookieSameSite    http.SameSite

	// RequireCSRF enforces the double-submit check on cookie-based refresh.
	RequireCSRF bool

	TrustProxy bool

	// LoginRate and LoginBurst throttle login attempts per client IP.
	LoginRate  float64
	LoginBurst int

	// SeedPassword is the password of every seeded user.
	SeedPassword string
}

// DefaultConfig returns dev defaults. Cookie and header names match the client defaults.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:      1 << 20,
		RefreshCookieName: "hiring_refresh",
		CSRFCookieName:    "hiring_csrf",
		CSRFHeaderName:    "X-CSRF-Token",
		CookieSameSite:    http.SameSiteLaxMode,
		RequireCSRF:       true,
		LoginRate:         1,
		LoginBurst:        10,
		SeedPassword:      "hire-me-please",
	}
}

// LoadConfigFromEnv overlays STUBAPI_* variables on DefaultConfig.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Prefix = normalizePrefix(os.Getenv("STUBAPI_PREFIX"))
	cfg.CookieSecure = envBool("STUBAPI_COOKIE_SECURE", cfg.CookieSecure)
	cfg.RequireCSRF = envBool("STUBAPI_REQUIRE_CSRF", cfg.RequireCSRF)
	cfg.TrustProxy = envBool("STUBAPI_TRUST_PROXY", cfg.TrustProxy)
	if v := strings.TrimSpace(os.Getenv("STUBAPI_LOGIN_RATE")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.LoginRate = f
		}
	}
	if v := strings.TrimSpace(os.Getenv("STUBAPI_LOGIN_BURST")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.LoginBurst = n
		}
	}
	if v := os.Getenv("STUBAPI_SEED_PASSWORD"); v != "" {
		cfg.SeedPassword = v
	}
	return cfg
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
