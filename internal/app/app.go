package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/config-center/internal/data/repos"
	httpserver "github.com/yungbote/config-center/internal/http"
	"github.com/yungbote/config-center/internal/observability"
	"github.com/yungbote/config-center/internal/platform/cache"
	"github.com/yungbote/config-center/internal/platform/logger"
	"github.com/yungbote/config-center/internal/services"
)

type App struct {
	Log     *logger.Logger
	Cfg     Config
	Store   repos.Store
	Engine  *services.Engine
	Metrics *observability.Metrics
	Router  *gin.Engine

	server       *httpserver.Server
	store        storeHandle
	cache        cache.Cache
	shutdownOTel func(context.Context) error
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.NewWithOptions(logger.Options{
		Mode:     cfg.LogMode,
		Level:    cfg.LogLevel,
		Redact:   true,
		HashSalt: cfg.LogHashSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithLogger(ctx, cfg, log)
}

// NewWithLogger wires the application around an existing logger.
func NewWithLogger(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.OTelServiceName,
		Environment: cfg.AppEnv,
		Version:     cfg.AppVersion,
		Endpoint:    cfg.OTelEndpoint,
		Headers:     cfg.OTelHeaders,
		Insecure:    cfg.OTelInsecure,
		SampleRatio: cfg.OTelSampleRatio,
	})

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
	}

	store, err := resolveStore(log, cfg)
	if err != nil {
		_ = shutdownOTel(ctx)
		log.Sync()
		return nil, err
	}

	runtimeCache, err := resolveCache(log, cfg)
	if err != nil {
		_ = store.Close()
		_ = shutdownOTel(ctx)
		log.Sync()
		return nil, err
	}

	engine := wireEngine(log, cfg, store.Store, runtimeCache, metrics)
	routerCfg := wireRouterConfig(log, cfg, engine, metrics)
	server := httpserver.NewServer(routerCfg)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Store:        store.Store,
		Engine:       engine,
		Metrics:      metrics,
		Router:       server.Engine,
		server:       server,
		store:        store,
		cache:        runtimeCache,
		shutdownOTel: shutdownOTel,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("config-center listening", "addr", a.Cfg.Addr(), "store", a.Cfg.StoreDriver)
	return a.server.Run(a.Cfg.Addr())
}

// Close stops the listener and releases the store, cache and tracer.
func (a *App) Close(ctx context.Context) error {
	if a == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if a.server != nil {
		errs = append(errs, a.server.Shutdown(ctx))
	}
	errs = append(errs, a.store.Close())
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.shutdownOTel != nil {
		errs = append(errs, a.shutdownOTel(ctx))
	}
	if a.Log != nil {
		a.Log.Sync()
	}
	return errors.Join(errs...)
}
