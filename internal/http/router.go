package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/config-center/internal/http/handlers"
	httpMW "github.com/yungbote/config-center/internal/http/middleware"
	"github.com/yungbote/config-center/internal/observability"
	"github.com/yungbote/config-center/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	APIKeyMiddleware *httpMW.APIKeyMiddleware

	PackHandler     *httpH.PackHandler
	ApprovalHandler *httpH.ApprovalHandler
	ReleaseHandler  *httpH.ReleaseHandler
	RuntimeHandler  *httpH.RuntimeHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "config-center"
	}
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/health", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Mutating routes sit behind the api key when one is configured.
	mutating := r.Group("/")
	if cfg.APIKeyMiddleware != nil {
		mutating.Use(cfg.APIKeyMiddleware.RequireKey())
	}

	// Packs
	if cfg.PackHandler != nil {
		mutating.POST("/packs", cfg.PackHandler.CreatePack)
		r.GET("/packs/:packCode", cfg.PackHandler.GetPack)
		mutating.POST("/packs/:packCode/versions", cfg.PackHandler.CreateVersion)
		r.GET("/packs/:packCode/versions", cfg.PackHandler.ListVersions)
		r.GET("/packs/:packCode/versions/:versionNo", cfg.PackHandler.GetVersion)
		mutating.POST("/packs/:packCode/versions/:versionNo/submit", cfg.PackHandler.Submit)
		r.GET("/packs/:packCode/versions/:versionNo/submission", cfg.PackHandler.GetSubmission)
	}

	// Approvals + audit
	if cfg.ApprovalHandler != nil {
		mutating.POST("/packs/:packCode/versions/:versionNo/approvals", cfg.ApprovalHandler.CreateApproval)
		r.GET("/packs/:packCode/versions/:versionNo/approvals", cfg.ApprovalHandler.ListApprovals)
		r.GET("/audit-logs", cfg.ApprovalHandler.ListAuditLogs)
	}

	// Validate + release
	if cfg.ReleaseHandler != nil {
		r.POST("/packs/:packCode/versions/:versionNo/validate", cfg.ReleaseHandler.Validate)
		mutating.POST("/packs/:packCode/versions/:versionNo/release", cfg.ReleaseHandler.Release)
		r.GET("/packs/:packCode/releases", cfg.ReleaseHandler.ListBindings)
	}

	// Runtime (SDK read path)
	if cfg.RuntimeHandler != nil {
		r.GET("/runtime/packs/:businessLine", cfg.RuntimeHandler.GetActive)
		r.GET("/runtime/packs/:businessLine/:versionNo", cfg.RuntimeHandler.GetVersion)
	}

	return r
}
