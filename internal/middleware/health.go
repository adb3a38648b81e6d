package middleware

import (
	"context"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/event-master/backend/pkg/response"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

// Health answers 200 when every check passes within timeout, 503 naming the first failing one otherwise.
func Health(checks map[string]HealthCheck, timeout time.Duration, logger *zap.Logger) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
				response.ServiceUnavailable(c, name+" unavailable")
				return
			}
		}
		response.OK(c, gin.H{"status": "ok"})
	}
}
