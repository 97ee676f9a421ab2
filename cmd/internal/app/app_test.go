package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/dashboard"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestRuntimeBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "explicit localhost", in: "127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v4", in: "0.0.0.0:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v6", in: "[::]:9090", want: "http://127.0.0.1:9090"},
		{name: "ipv6 host", in: "[2001:db8::1]:9090", want: "http://[2001:db8::1]:9090"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := runtimeBaseURL(tc.in)
			if got != tc.want {
				t.Fatalf("runtimeBaseURL(%q)=%q want=%q", tc.in, got, tc.want)
			}
		})
	}
}

func TestWSURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "http://127.0.0.1:5000", want: "ws://127.0.0.1:5000/ws"},
		{in: "https://hiring.example.com/api", want: "wss://hiring.example.com/api/ws"},
		{in: "127.0.0.1:5000", want: "ws://127.0.0.1:5000/ws"},
		{in: "ftp://files.example.com", want: ""},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		if got := wsURL(tc.in, "/ws"); got != tc.want {
			t.Fatalf("wsURL(%q)=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestResolveAPIBase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                   string
		override, meta, origin string
		want                   string
	}{
		{name: "override wins", override: "https://api.example.com/", meta: "https://meta.example.com", want: "https://api.example.com"},
		{name: "meta", meta: " https://meta.example.com/ ", origin: "http://localhost:3000", want: "https://meta.example.com"},
		{name: "vite dev port", origin: "http://localhost:5173", want: "http://localhost:5000"},
		{name: "live server port", origin: "http://127.0.0.1:5500", want: "http://127.0.0.1:5000"},
		{name: "same origin", origin: "https://hiring.example.com", want: "https://hiring.example.com"},
		{name: "same origin with port", origin: "http://10.0.0.4:8080", want: "http://10.0.0.4:8080"},
		{name: "file page", origin: "file:///tmp/index.html", want: DefaultAPIBase},
		{name: "nothing", want: DefaultAPIBase},
	}

	for _, tc := range cases {
		if got := ResolveAPIBase(tc.override, tc.meta, tc.origin); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("HIRING_API_BASE", "")
	t.Setenv("HIRING_API_META_BASE", "")
	t.Setenv("HIRING_PAGE_ORIGIN", "http://localhost:3000")
	t.Setenv("HIRING_TRY_ALT_PREFIX", "false")
	t.Setenv("HIRING_API_FALLBACKS", "http://a.test, ,http://b.test")
	t.Setenv("HIRING_STORAGE", "MEMORY")
	t.Setenv("HIRING_RATE_LIMIT", "2.5")
	t.Setenv("HIRING_HTTP_TIMEOUT", "bogus")

	cfg := LoadConfig()
	if cfg.APIBase != "http://localhost:5000" {
		t.Fatalf("APIBase=%q", cfg.APIBase)
	}
	if cfg.TryAltPrefix {
		t.Fatalf("TryAltPrefix should be false")
	}
	if len(cfg.FallbackBases) != 2 || cfg.FallbackBases[1] != "http://b.test" {
		t.Fatalf("FallbackBases=%v", cfg.FallbackBases)
	}
	if cfg.Storage != StorageMemory {
		t.Fatalf("Storage=%q", cfg.Storage)
	}
	if cfg.RateLimit != 2.5 {
		t.Fatalf("RateLimit=%v", cfg.RateLimit)
	}
	if cfg.HTTPTimeout.Seconds() != 15 {
		t.Fatalf("HTTPTimeout=%v, want default", cfg.HTTPTimeout)
	}
	if cfg.CSRFCookieName != "hiring_csrf" || cfg.WSPath != "/ws" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	t.Setenv("STUBAPI_HTTP_ADDR", "")
	t.Setenv("STUBAPI_CORS_ORIGINS", "")

	cfg := LoadServerConfig()
	if cfg.HTTPAddr != "127.0.0.1:5000" {
		t.Fatalf("HTTPAddr=%q", cfg.HTTPAddr)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || !cfg.CORSAllowCredentials {
		t.Fatalf("CORS defaults: %+v", cfg)
	}

	t.Setenv("STUBAPI_CORS_ORIGINS", "https://hiring.example.com")
	if got := LoadServerConfig().CORSAllowedOrigins; len(got) != 1 || got[0] != "https://hiring.example.com" {
		t.Fatalf("CORSAllowedOrigins=%v", got)
	}
}

func TestValidateSecurityConfig(t *testing.T) {
	t.Parallel()

	sc := sessions.Config{}
	if err := ValidateSecurityConfig(ServerConfig{}, sc); err != nil {
		t.Fatalf("policy off: %v", err)
	}
	required := ServerConfig{RequireTokenHMAC: true}
	if err := ValidateSecurityConfig(required, sc); err == nil {
		t.Fatalf("expected error for missing key")
	}
	sc.RefreshHMACKey = []byte("short")
	if err := ValidateSecurityConfig(required, sc); err == nil {
		t.Fatalf("expected error for short key")
	}
	sc.RefreshHMACKey = bytes.Repeat([]byte("k"), minHMACKeyBytes)
	if err := ValidateSecurityConfig(required, sc); err != nil {
		t.Fatalf("valid key: %v", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("X_FLOAT", "-1")
	if got := EnvFloat("X_FLOAT", 3); got != 3 {
		t.Fatalf("negative float should fall back, got %v", got)
	}
	t.Setenv("X_CSV", "")
	if got := EnvCSV("X_CSV"); got != nil {
		t.Fatalf("EnvCSV empty=%v", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("HIRING_DOTENV_A=from-file\nHIRING_DOTENV_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HIRING_DOTENV_A", "from-env")
	t.Setenv("HIRING_DOTENV_B", "")
	os.Unsetenv("HIRING_DOTENV_B")

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("HIRING_DOTENV_A"); got != "from-env" {
		t.Fatalf("existing var overridden: %q", got)
	}
	if got := os.Getenv("HIRING_DOTENV_B"); got != "from-file" {
		t.Fatalf("file var not loaded: %q", got)
	}
}

func TestTierJar_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	tier := credential.NewFileTier(filepath.Join(t.TempDir(), "creds.json"))
	api, _ := url.Parse("http://127.0.0.1:5000/api/auth/login")

	first, err := newTierJar(ctx, discardLogger(), tier, "http://127.0.0.1:5000")
	if err != nil {
		t.Fatalf("newTierJar: %v", err)
	}
	first.SetCookies(api, []*http.Cookie{
		{Name: "hiring_refresh", Value: "r-1", Path: "/"},
		{Name: "hiring_csrf", Value: "c-1", Path: "/"},
	})

	second, err := newTierJar(ctx, discardLogger(), tier, "http://127.0.0.1:5000")
	if err != nil {
		t.Fatalf("newTierJar: %v", err)
	}
	got := map[string]string{}
	for _, c := range second.Cookies(api) {
		got[c.Name] = c.Value
	}
	if got["hiring_refresh"] != "r-1" || got["hiring_csrf"] != "c-1" {
		t.Fatalf("cookies not restored: %v", got)
	}

	// Expiring every cookie clears the saved copy.
	second.SetCookies(api, []*http.Cookie{
		{Name: "hiring_refresh", Value: "", Path: "/", MaxAge: -1},
		{Name: "hiring_csrf", Value: "", Path: "/", MaxAge: -1},
	})
	if _, ok, _ := tier.Get(ctx, cookieKey); ok {
		t.Fatalf("expected saved cookies to be deleted")
	}
}

func TestTierJar_IgnoresOtherHosts(t *testing.T) {
	ctx := context.Background()
	tier := credential.NewMemoryTier("durable")
	j, err := newTierJar(ctx, discardLogger(), tier, "http://127.0.0.1:5000")
	if err != nil {
		t.Fatal(err)
	}
	other, _ := url.Parse("http://elsewhere.test/")
	j.SetCookies(other, []*http.Cookie{{Name: "x", Value: "y"}})
	if tier.Len() != 0 {
		t.Fatalf("foreign cookie persisted")
	}
}

func TestMetrics_Exposition(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveRequest(http.MethodGet, 200, 0)
	m.ObserveRequest(http.MethodGet, 0, 0)
	m.RefreshAttempt("ok")
	m.ForcedLogout()
	m.Notification("")
	m.ObserveServed(http.MethodPost, 401)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	for _, want := range []string{
		`hiring_client_requests_total{class="2xx",method="GET"} 1`,
		`hiring_client_requests_total{class="0xx",method="GET"} 1`,
		`hiring_auth_refresh_total{outcome="ok"} 1`,
		`hiring_auth_forced_logouts_total 1`,
		`hiring_realtime_notifications_total{kind="unknown"} 1`,
		`hiring_stub_http_requests_total{class="4xx",method="POST"} 1`,
		`go_goroutines`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q", want)
		}
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{errors.New("boom"), 1},
		{&apiclient.Error{Status: http.StatusNotFound}, 1},
		{fmt.Errorf("jobs: %w", &apiclient.Error{Status: http.StatusUnauthorized}), 2},
		{dashboard.ErrRoleDenied, 2},
	}
	for _, tc := range cases {
		if got := ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v)=%d want=%d", tc.err, got, tc.want)
		}
	}
}

func newStubApp(t *testing.T) *httptest.Server {
	t.Helper()
	t.Setenv("STUBAPI_ARGON2_MEMORY_KIB", "1024")
	t.Setenv("STUBAPI_ARGON2_ITERATIONS", "1")
	t.Setenv("STUBAPI_ARGON2_PARALLELISM", "1")
	t.Setenv("STUBAPI_PREFIX", "/api")

	a, err := New(ServerConfig{CSRFHeaderName: "X-CSRF-Token"}, discardLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	c, root := newCLI()
	defer c.close()

	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestCLI_LoginThenBrowse(t *testing.T) {
	srv := newStubApp(t)
	t.Setenv("HIRING_STORAGE", StorageFile)
	t.Setenv("HIRING_STORAGE_PATH", filepath.Join(t.TempDir(), "creds.json"))
	t.Setenv("HIRING_LOG_LEVEL", "error")
	t.Setenv("HIRING_PASSWORD", "")

	// The client base omits /api; the alternate prefix finds the routes.
	base := "--api-base=" + srv.URL

	if _, _, err := runCLI(t, base, "jobs"); ExitCode(err) != 2 {
		t.Fatalf("jobs before login: err=%v", err)
	}

	out, _, err := runCLI(t, base, "login", "--email", "maya@hiring.test", "--password", "hire-me-please")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, `"role": "hiring_manager"`) {
		t.Fatalf("login output: %s", out)
	}

	out, _, err = runCLI(t, base, "jobs", "--status", "open")
	if err != nil {
		t.Fatalf("jobs: %v", err)
	}
	if !strings.Contains(out, "Backend Engineer") || strings.Contains(out, "Product Designer") {
		t.Fatalf("jobs output: %s", out)
	}

	out, _, err = runCLI(t, base, "get", "/hiring-manager/jobs/j-1/applications")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(out, "Priya Nair") {
		t.Fatalf("get output: %s", out)
	}

	if _, _, err := runCLI(t, base, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, _, err := runCLI(t, base, "overview"); ExitCode(err) != 2 {
		t.Fatalf("overview after logout: err=%v", err)
	}
}

func TestCLI_BadPassword(t *testing.T) {
	srv := newStubApp(t)
	t.Setenv("HIRING_STORAGE", StorageMemory)
	t.Setenv("HIRING_LOG_LEVEL", "error")

	_, errOut, err := runCLI(t, "--api-base="+srv.URL, "login", "--email", "maya@hiring.test", "--password", "wrong")
	if err == nil {
		t.Fatalf("expected login failure")
	}
	if !strings.Contains(err.Error(), "Invalid email or password") {
		t.Fatalf("err=%v", err)
	}
	if strings.Contains(errOut, "signed out") {
		t.Fatalf("bad password must not sign out: %s", errOut)
	}
}
