package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/apiclient"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/credential"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/interceptor"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/auth/session"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/dashboard"
	"github.com/jaswanth-exaze/recruitment-project-sub001/cmd/internal/realtime"
)

// Runtime is one dashboard "page": a credential store, a session guard, one
// interceptor-equipped HTTP client and the modules built on it.
type Runtime struct {
	cfg Config
	log Logger

	Metrics   *Metrics
	Creds     *credential.Store
	Guard     *session.Guard
	Transport *interceptor.Transport
	API       *apiclient.Client

	Auth        *dashboard.Auth
	Manager     *dashboard.HiringManager
	Interviewer *dashboard.Interviewer
	Overview    *dashboard.Overview
	Realtime    *realtime.Client

	pool *pgxpool.Pool
}

// NewRuntime wires the client stack. nav is told when a forced logout happens.
func NewRuntime(ctx context.Context, cfg Config, log Logger, nav session.Navigator) (*Runtime, error) {
	if log == nil {
		log = NewLogger(nil, cfg.LogLevel, cfg.LogFormat)
	}
	rt := &Runtime{cfg: cfg, log: log, Metrics: NewMetrics()}

	durable, err := rt.durableTier(ctx)
	if err != nil {
		return nil, err
	}
	rt.Creds = credential.NewStore(log, durable, credential.NewMemoryTier("session"))
	rt.Guard = session.NewGuard(log, session.NewContext(), rt.Creds, nav, session.WithLogoutObserver(rt.Metrics))

	jar, err := newTierJar(ctx, log, durable, cfg.APIBase)
	if err != nil {
		rt.Close()
		return nil, err
	}

	hc := &http.Client{}
	rt.Transport, err = interceptor.Install(hc, log, interceptor.Config{
		APIBase:        cfg.APIBase,
		RefreshTimeout: cfg.RefreshTimeout,
		CSRFCookieName: cfg.CSRFCookieName,
		CSRFHeaderName: cfg.CSRFHeaderName,
	}, rt.Creds, rt.Guard, interceptor.WithCookieJar(jar), interceptor.WithObserver(rt.Metrics))
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.API, err = apiclient.New(log, apiclient.Config{
		BaseURL:        cfg.APIBase,
		TryAltPrefix:   cfg.TryAltPrefix,
		AttemptTimeout: cfg.HTTPTimeout,
		RateLimit:      cfg.RateLimit,
		Burst:          cfg.RateBurst,
		UserAgent:      "hiring-cli",
	}, rt.Creds, rt.Guard,
		apiclient.WithHTTPClient(hc),
		apiclient.WithFallbackBases(cfg.FallbackBases...),
		apiclient.WithObserver(rt.Metrics),
		apiclient.WithRequestIDFunc(uuid.NewString),
	)
	if err != nil {
		rt.Close()
		return nil, err
	}

	rt.Auth = dashboard.NewAuth(log, rt.API, rt.Creds, rt.Guard)
	rt.Manager = dashboard.NewHiringManager(rt.API)
	rt.Interviewer = dashboard.NewInterviewer(rt.API)
	rt.Overview = dashboard.NewOverview(rt.Creds, rt.Auth, rt.Manager, rt.Interviewer)

	rt.Realtime, err = realtime.NewClient(log, realtime.ClientConfig{
		BaseURL: cfg.APIBase,
		Path:    cfg.WSPath,
		AutoAck: true,
	}, rt.Creds, rt.Guard, rt.Transport)
	if err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) durableTier(ctx context.Context) (credential.Tier, error) {
	switch rt.cfg.Storage {
	case StorageMemory:
		return credential.NewMemoryTier("durable"), nil
	case StoragePostgres:
		pool, err := NewDBPool(ctx, rt.cfg)
		if err != nil {
			return nil, err
		}
		tier, err := credential.NewPostgresTier(pool, rt.cfg.DBSchema)
		if err == nil && rt.cfg.AutoMigrate {
			err = tier.EnsureTable(ctx)
		}
		if err != nil {
			pool.Close()
			return nil, err
		}
		rt.pool = pool
		rt.log.Debug("storage.postgres", "schema", rt.cfg.DBSchema)
		return tier, nil
	case StorageFile, "":
		path := rt.cfg.StoragePath
		if path == "" {
			p, err := credential.DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		rt.log.Debug("storage.file", "path", path)
		return credential.NewFileTier(path), nil
	default:
		return nil, fmt.Errorf("app: unknown HIRING_STORAGE %q", rt.cfg.Storage)
	}
}

// Close releases the database pool, if any.
func (rt *Runtime) Close() {
	if rt.pool != nil {
		rt.pool.Close()
		rt.pool = nil
	}
}
