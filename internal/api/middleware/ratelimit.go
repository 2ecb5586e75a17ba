package middleware

import (
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/response"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit implements a fixed-window limiter per client IP using Redis
// INCR/EXPIRE. It fails open when rdb is nil or Redis errors.
// Key format: rl:<window_seconds>:<ip>
func RateLimit(rdb *redis.Client, maxRequests int, window time.Duration) gin.HandlerFunc {
	windowKey := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":"

	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := windowKey + c.ClientIP()

		val, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			slog.WarnContext(ctx, "Rate limiter unavailable", "error", err)
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}
		if val == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				slog.WarnContext(ctx, "Failed to set rate limit window", "error", err)
			}
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		if val > int64(maxRequests) {
			rateLimitBlocked.WithLabelValues(c.FullPath()).Inc()
			c.Header("Retry-After", strconv.FormatInt(int64(window.Seconds()), 10))
			response.Error(c, apperror.NewRateLimited())
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(int64(maxRequests)-val, 10))

		rateLimitRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
