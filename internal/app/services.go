package app

import (
	"github.com/yungbote/config-center/internal/data/repos"
	"github.com/yungbote/config-center/internal/observability"
	"github.com/yungbote/config-center/internal/platform/cache"
	"github.com/yungbote/config-center/internal/platform/logger"
	"github.com/yungbote/config-center/internal/services"
	"github.com/yungbote/config-center/pkg/domainpack"
)

var newRedisCache = func(addr, prefix string, log *logger.Logger) (cache.Cache, error) {
	return cache.NewRedis(addr, prefix, log)
}

func resolveCache(log *logger.Logger, cfg Config) (cache.Cache, error) {
	if cfg.RedisAddr == "" {
		log.Info("runtime cache disabled (REDIS_ADDR unset)")
		return cache.NewNoop(), nil
	}
	c, err := newRedisCache(cfg.RedisAddr, cfg.RedisKeyPrefix, log)
	if err != nil {
		log.Error("runtime cache bootstrap failed", "redis_addr", cfg.RedisAddr, "error", err)
		return nil, err
	}
	return c, nil
}

func wireEngine(log *logger.Logger, cfg Config, store repos.Store, runtimeCache cache.Cache, metrics *observability.Metrics) *services.Engine {
	log.Info("Wiring services...")
	opts := services.EngineOptions{
		Clock:     services.SystemClock,
		NewID:     services.NewUUID,
		Validator: domainpack.NewValidator(),
		Cache:     runtimeCache,
		CacheTTL:  cfg.RuntimeCacheTTL,
		Release: services.ReleaseOptions{
			RequireValidContent: cfg.ReleaseRequireValidContent,
		},
	}
	// A nil *Metrics inside the interface would still be non-nil.
	if metrics != nil {
		opts.Metrics = metrics
	}
	return services.NewEngine(store, log, opts)
}
