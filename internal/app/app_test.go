package app

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yungbote/config-center/internal/platform/cache"
	"github.com/yungbote/config-center/internal/platform/logger"
)

func TestNewWiresMemoryApp(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{"CONFIG_CENTER_API_KEY": "secret-key"})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	a, err := NewWithLogger(t.Context(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("NewWithLogger: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(t.Context()) })

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health: want=200 got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/packs", strings.NewReader(`{"packCode":"delivery_ops","name":"Delivery Ops"}`))
	a.Router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("create pack without key: want=401 got=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: want=200 got=%d", rec.Code)
	}
}

func TestMetricsDisabledHidesEndpoint(t *testing.T) {
	cfg, err := LoadConfigFrom(map[string]string{"METRICS_ENABLED": "false"})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	a, err := NewWithLogger(t.Context(), cfg, logger.NewNop())
	if err != nil {
		t.Fatalf("NewWithLogger: %v", err)
	}
	t.Cleanup(func() { _ = a.Close(t.Context()) })

	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("metrics: want=404 got=%d", rec.Code)
	}
}

func TestRedisBootstrapFailureAborts(t *testing.T) {
	prev := newRedisCache
	t.Cleanup(func() { newRedisCache = prev })
	newRedisCache = func(string, string, *logger.Logger) (cache.Cache, error) {
		return nil, errors.New("redis ping failed")
	}

	cfg, err := LoadConfigFrom(map[string]string{"REDIS_ADDR": "127.0.0.1:1"})
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if _, err := NewWithLogger(t.Context(), cfg, logger.NewNop()); err == nil {
		t.Fatalf("expected redis bootstrap error")
	}
}
