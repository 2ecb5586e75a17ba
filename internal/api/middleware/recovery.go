package middleware

import (
	"ctchen222/task-manager/internal/api/apperror"
	"ctchen222/task-manager/internal/api/response"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// Recovery turns a panic into the standard 500 response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				slog.ErrorContext(c.Request.Context(), "Recovered from panic",
					"panic", r,
					"request.id", response.RequestID(c),
					"stack", string(debug.Stack()),
				)
				response.Error(c, apperror.Wrap(fmt.Errorf("panic: %v", r), "handler panicked"))
			}
		}()
		c.Next()
	}
}
