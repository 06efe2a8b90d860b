package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/config-center/internal/platform/ctxutil"
	"github.com/yungbote/config-center/internal/platform/logger"
)

func TestTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var seen *ctxutil.TraceData
	r.GET("/health", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-Id"); got != "req-1" {
		t.Fatalf("request id header: want=req-1 got=%q", got)
	}
	if seen == nil || seen.RequestID != "req-1" || seen.TraceID == "" {
		t.Fatalf("trace data: got=%+v", seen)
	}
}

func TestRequestLoggerLevelsByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(log))
	r.GET("/packs/:packCode", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/packs/delivery_ops", nil))

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	e := entries[0]
	if e.Level != zap.WarnLevel {
		t.Fatalf("level: want=warn got=%s", e.Level)
	}
	fields := e.ContextMap()
	if fields["route"] != "/packs/:packCode" || fields["pack_code"] != "delivery_ops" {
		t.Fatalf("fields: got=%v", fields)
	}
	if fields["request_id"] == nil {
		t.Fatalf("request_id missing: %v", fields)
	}
}
