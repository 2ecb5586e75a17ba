package middleware

import (
	"ctchen222/task-manager/internal/api/response"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger logs one line per request once the handler chain has finished.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		attrs := []any{
			"http.method", c.Request.Method,
			"http.path", c.Request.URL.Path,
			"http.status", status,
			"http.latency", time.Since(start),
			"http.client_ip", c.ClientIP(),
			"request.id", response.RequestID(c),
		}
		if id, ok := UserID(c); ok {
			attrs = append(attrs, "user.id", id)
		}
		slog.Log(c.Request.Context(), level, "HTTP request", attrs...)
	}
}
