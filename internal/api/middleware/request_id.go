package middleware

import (
	"ctchen222/task-manager/internal/api/response"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID attaches a trace identifier to every request, reusing a
// well-formed incoming X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(response.RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		c.Set(response.RequestIDKey, id)
		c.Header(response.RequestIDHeader, id)
		c.Next()
	}
}
