package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/config-center/internal/http/response"
	"github.com/yungbote/config-center/internal/platform/logger"
)

const headerAPIKey = "X-Api-Key"

type APIKeyMiddleware struct {
	log *logger.Logger
	key string
}

func NewAPIKeyMiddleware(log *logger.Logger, key string) *APIKeyMiddleware {
	return &APIKeyMiddleware{log: log.With("Middleware", "APIKeyMiddleware"), key: strings.TrimSpace(key)}
}

// RequireKey guards mutating routes. With no key configured every request
// passes.
func (m *APIKeyMiddleware) RequireKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.key == "" {
			c.Next()
			return
		}
		got := strings.TrimSpace(c.GetHeader(headerAPIKey))
		if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(m.key)) != 1 {
			m.log.Warn("api key rejected", "path", c.FullPath(), "client_ip", c.ClientIP())
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid api key"))
			return
		}
		c.Next()
	}
}
