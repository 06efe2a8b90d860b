package app

import (
	httpserver "github.com/yungbote/config-center/internal/http"
	httpH "github.com/yungbote/config-center/internal/http/handlers"
	httpMW "github.com/yungbote/config-center/internal/http/middleware"
	"github.com/yungbote/config-center/internal/observability"
	"github.com/yungbote/config-center/internal/platform/logger"
	"github.com/yungbote/config-center/internal/services"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Pack     *httpH.PackHandler
	Approval *httpH.ApprovalHandler
	Release  *httpH.ReleaseHandler
	Runtime  *httpH.RuntimeHandler
}

func wireHandlers(log *logger.Logger, engine *services.Engine) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Pack:     httpH.NewPackHandler(engine.Packs),
		Approval: httpH.NewApprovalHandler(engine.Approvals, engine.Audit),
		Release:  httpH.NewReleaseHandler(engine.Releases),
		Runtime:  httpH.NewRuntimeHandler(engine.Runtime),
	}
}

func wireRouterConfig(log *logger.Logger, cfg Config, engine *services.Engine, metrics *observability.Metrics) httpserver.RouterConfig {
	handlers := wireHandlers(log, engine)
	if cfg.APIKey == "" {
		log.Warn("CONFIG_CENTER_API_KEY unset; mutating endpoints are open")
	}
	return httpserver.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      cfg.OTelServiceName,
		CORSOrigins:      cfg.CORSAllowOrigins,
		APIKeyMiddleware: httpMW.NewAPIKeyMiddleware(log, cfg.APIKey),
		HealthHandler:    handlers.Health,
		PackHandler:      handlers.Pack,
		ApprovalHandler:  handlers.Approval,
		ReleaseHandler:   handlers.Release,
		RuntimeHandler:   handlers.Runtime,
	}
}
