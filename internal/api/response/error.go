package response

import (
	"ctchen222/task-manager/internal/api/apperror"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const genericMessage = "An unexpected error occurred"

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Message    string   `json:"message"`
	StatusCode int      `json:"statusCode"`
	Timestamp  string   `json:"timestamp"`
	RequestID  string   `json:"requestId"`
	Details    []string `json:"details,omitempty"`
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.Validation:
		return http.StatusBadRequest
	case apperror.Unauthorized, apperror.InvalidCredentials:
		return http.StatusUnauthorized
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.Conflict:
		return http.StatusConflict
	case apperror.TooLarge:
		return http.StatusRequestEntityTooLarge
	case apperror.RateLimited:
		return http.StatusTooManyRequests
	case apperror.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// Error writes err as a structured error response and aborts the chain.
// Unclassified errors are logged and reported with a generic message.
func Error(c *gin.Context, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Wrap(err, genericMessage)
	}

	status := StatusFor(appErr.Kind)
	requestID := RequestID(c)
	ctx := c.Request.Context()

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Request failed",
			"error", err,
			"request.id", requestID,
			"http.method", c.Request.Method,
			"http.path", c.Request.URL.Path,
		)
		message = genericMessage
	} else {
		slog.DebugContext(ctx, "Request rejected",
			"error.kind", appErr.Kind.String(),
			"error.message", appErr.Message,
			"request.id", requestID,
		)
	}

	c.AbortWithStatusJSON(status, ErrorBody{
		Message:    message,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  requestID,
		Details:    appErr.Details,
	})
}
