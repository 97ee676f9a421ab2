package app

import (
	"net"
	"net/url"
	"strings"
	"time"
)

// DefaultAPIBase is used when nothing else resolves.
const DefaultAPIBase = "http://localhost:5000"

// devPagePorts are the ports local dev servers serve dashboards from; the API
// then lives on port 5000 of the same host.
var devPagePorts = map[string]struct{}{"3000": {}, "5173": {}, "5500": {}, "5501": {}}

// Storage backends for the durable credential tier.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config contains the client runtime configuration loaded from environment variables.
type Config struct {
	APIBase       string
	TryAltPrefix  bool
	FallbackBases []string

	Storage     string
	StoragePath string

	DatabaseURL string
	DBSchema    string
	DBMaxConns  int32
	DBMinConns  int32
	AutoMigrate bool

	LogLevel  string
	LogFormat string

	HTTPTimeout    time.Duration
	RefreshTimeout time.Duration
	RateLimit      float64
	RateBurst      int

	// CSRF double-submit names shared with the backend.
	CSRFCookieName string
	CSRFHeaderName string

	WSPath string
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		APIBase: ResolveAPIBase(
			EnvString("HIRING_API_BASE", ""),
			EnvString("HIRING_API_META_BASE", ""),
			EnvString("HIRING_PAGE_ORIGIN", ""),
		),
		TryAltPrefix:  EnvBool("HIRING_TRY_ALT_PREFIX", true),
		FallbackBases: EnvCSV("HIRING_API_FALLBACKS"),

		Storage:     strings.ToLower(EnvString("HIRING_STORAGE", StorageFile)),
		StoragePath: EnvString("HIRING_STORAGE_PATH", ""),

		DatabaseURL: EnvString("HIRING_DATABASE_URL", ""),
		DBSchema:    EnvString("HIRING_DB_SCHEMA", "hiring"),
		DBMaxConns:  EnvInt32("HIRING_DB_MAX_CONNS", 4),
		DBMinConns:  EnvInt32("HIRING_DB_MIN_CONNS", 0),
		AutoMigrate: EnvBool("HIRING_DB_AUTO_MIGRATE", false),

		LogLevel:  EnvString("HIRING_LOG_LEVEL", "info"),
		LogFormat: EnvString("HIRING_LOG_FORMAT", "pretty"),

		HTTPTimeout:    EnvDuration("HIRING_HTTP_TIMEOUT", 15*time.Second),
		RefreshTimeout: EnvDuration("HIRING_REFRESH_TIMEOUT", 10*time.Second),
		RateLimit:      EnvFloat("HIRING_RATE_LIMIT", 0),
		RateBurst:      EnvInt("HIRING_RATE_BURST", 5),

		CSRFCookieName: EnvString("HIRING_CSRF_COOKIE", "hiring_csrf"),
		CSRFHeaderName: EnvString("HIRING_CSRF_HEADER", "X-CSRF-Token"),

		WSPath: EnvString("HIRING_WS_PATH", "/ws"),
	}
}

// ResolveAPIBase picks the API base URL. In priority order: an explicit
// override, a page-embedded meta value, http://<host>:5000 when the page is
// served from a known dev port, the page's own origin, DefaultAPIBase.
func ResolveAPIBase(override, meta, pageOrigin string) string {
	for _, v := range []string{override, meta} {
		if v = strings.TrimRight(strings.TrimSpace(v), "/"); v != "" {
			return v
		}
	}

	u, err := url.Parse(strings.TrimSpace(pageOrigin))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return DefaultAPIBase
	}
	if _, dev := devPagePorts[u.Port()]; dev {
		return "http://" + net.JoinHostPort(u.Hostname(), "5000")
	}
	return u.Scheme + "://" + u.Host
}

// ServerConfig configures the stub backend process.
type ServerConfig struct {
	HTTPAddr  string
	LogLevel  string
	LogFormat string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// CORS for browser dashboards served from dev ports.
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool
	CORSMaxAgeSeconds    int
	CSRFHeaderName       string

	// If true, STUBAPI_TOKEN_HMAC_KEY MUST be set (>= 32 bytes) so refresh
	// tokens are stored as HMAC digests.
	RequireTokenHMAC bool
}

// LoadServerConfig loads ServerConfig from STUBAPI_* environment variables.
func LoadServerConfig() ServerConfig {
	origins := EnvCSV("STUBAPI_CORS_ORIGINS")
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return ServerConfig{
		HTTPAddr:  EnvString("STUBAPI_HTTP_ADDR", "127.0.0.1:5000"),
		LogLevel:  EnvString("STUBAPI_LOG_LEVEL", "info"),
		LogFormat: EnvString("STUBAPI_LOG_FORMAT", "pretty"),

		ReadHeaderTimeout: EnvDuration("STUBAPI_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("STUBAPI_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("STUBAPI_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("STUBAPI_HTTP_IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    EnvInt("STUBAPI_HTTP_MAX_HEADER_BYTES", 1<<20),

		CORSAllowedOrigins:   origins,
		CORSAllowCredentials: EnvBool("STUBAPI_CORS_ALLOW_CREDENTIALS", true),
		CORSMaxAgeSeconds:    EnvInt("STUBAPI_CORS_MAX_AGE", 600),
		CSRFHeaderName:       EnvString("STUBAPI_CSRF_HEADER", "X-CSRF-Token"),

		RequireTokenHMAC: EnvBool("STUBAPI_REQUIRE_TOKEN_HMAC", false),
	}
}
