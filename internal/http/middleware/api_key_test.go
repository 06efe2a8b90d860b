package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/config-center/internal/platform/logger"
)

func guarded(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/packs", NewAPIKeyMiddleware(logger.NewNop(), key).RequireKey(), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})
	return r
}

func post(r *gin.Engine, key string) int {
	req := httptest.NewRequest(http.MethodPost, "/packs", nil)
	if key != "" {
		req.Header.Set("x-api-key", key)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestAPIKeyRequiredWhenConfigured(t *testing.T) {
	r := guarded("secret-key")
	if got := post(r, ""); got != http.StatusUnauthorized {
		t.Fatalf("missing key: want=401 got=%d", got)
	}
	if got := post(r, "wrong"); got != http.StatusUnauthorized {
		t.Fatalf("wrong key: want=401 got=%d", got)
	}
	if got := post(r, "secret-key"); got != http.StatusCreated {
		t.Fatalf("valid key: want=201 got=%d", got)
	}
}

func TestAPIKeyOpenWhenUnset(t *testing.T) {
	if got := post(guarded(""), ""); got != http.StatusCreated {
		t.Fatalf("no key configured: want=201 got=%d", got)
	}
}
