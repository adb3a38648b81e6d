package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/response"
)

// RateLimiter is a fixed-window counter in Redis. The window key is created with its TTL
// and incremented inside one MULTI/EXEC, so a counter never outlives its window.
type RateLimiter struct {
	redis  redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
	logger *zap.Logger
}

// NewRateLimiter allows limit hits per key per window.
func NewRateLimiter(client redis.Cmdable, prefix string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{redis: client, prefix: prefix, limit: int64(limit), window: window, logger: logger}
}

// Allow records a hit for key and reports whether it is within the limit.
// Redis failures allow the request.
func (r *RateLimiter) Allow(ctx context.Context, key string) bool {
	k := fmt.Sprintf("ratelimit:%s:%s", r.prefix, key)
	var incr *redis.IntCmd
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, r.window)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		r.logger.Warn("rate limiter unavailable", zap.Error(err), zap.String("key", k))
		return true
	}
	return incr.Val() <= r.limit
}

// Limit rejects requests over the limit per client IP with 429.
func (r *RateLimiter) Limit(t *i18n.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !r.Allow(c.Request.Context(), c.ClientIP()) {
			response.TooManyRequests(c, t.T(Locale(c), i18n.MsgTooManyAttempts, nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
