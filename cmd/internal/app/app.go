// Package app wires the hiring runtimes: the dashboard client used by the
// hiring CLI and the local stub backend. It owns config, logging, metrics and
// process lifecycle.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/password"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/stubapi/sessions"
)

// App is the stub backend runtime: HTTP server, routes and session service.
type App struct {
	cfg     ServerConfig
	log     Logger
	metrics *Metrics
	stub    *stubapi.Server
	prefix  string
}

// New constructs a fully wired stub App from config and logger.
func New(cfg ServerConfig, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(nil, cfg.LogLevel, cfg.LogFormat)
	}

	sessCfg, err := sessions.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if err := ValidateSecurityConfig(cfg, sessCfg); err != nil {
		return nil, err
	}
	svc, err := sessions.NewServiceFromConfig(sessCfg)
	if err != nil {
		return nil, err
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	stubCfg := stubapi.LoadConfigFromEnv()
	stubCfg.CSRFHeaderName = cfg.CSRFHeaderName
	stub, err := stubapi.New(log, stubCfg, svc,
		stubapi.WithGatewayConfig(realtime.GatewayConfigFromEnv()),
		stubapi.WithPasswordConfig(pwCfg),
	)
	if err != nil {
		return nil, err
	}

	return &App{cfg: cfg, log: log, metrics: NewMetrics(), stub: stub, prefix: stubCfg.Prefix}, nil
}

// Handler returns the full middleware-wrapped handler.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.stub.Handler(), a.metrics)

	var h http.Handler = mux
	h = WithCORS(h, a.cfg, a.log)
	h = WithSecurityHeaders(h)
	return WithRequestLogging(h, a.log, a.metrics)
}

// Run starts the HTTP server and blocks until context cancellation or fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	base := runtimeBaseURL(a.cfg.HTTPAddr) + a.prefix
	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "api", base, "ws", wsURL(base, "/ws"))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
