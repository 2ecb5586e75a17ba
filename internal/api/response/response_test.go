package response

import (
	"ctchen222/task-manager/internal/api/apperror"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestStatusFor(t *testing.T) {
	tests := map[apperror.Kind]int{
		apperror.Validation:         http.StatusBadRequest,
		apperror.Unauthorized:       http.StatusUnauthorized,
		apperror.InvalidCredentials: http.StatusUnauthorized,
		apperror.NotFound:           http.StatusNotFound,
		apperror.Conflict:           http.StatusConflict,
		apperror.TooLarge:           http.StatusRequestEntityTooLarge,
		apperror.RateLimited:        http.StatusTooManyRequests,
		apperror.Internal:           http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(kind), kind.String())
	}
}

func serveError(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/tasks/1", nil)
	c.Set(RequestIDKey, "req-123")

	Error(c, err)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestError_Validation(t *testing.T) {
	w, body := serveError(t, apperror.NewValidation("Task title is required"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", body.Message)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	assert.Equal(t, "req-123", body.RequestID)
	assert.Equal(t, []string{"Task title is required"}, body.Details)

	ts, err := time.Parse(time.RFC3339, body.Timestamp)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, ts.Location())
}

func TestError_InternalDoesNotLeakCause(t *testing.T) {
	w, body := serveError(t, errors.New("pq: password authentication failed for user admin"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "An unexpected error occurred", body.Message)
	assert.NotContains(t, w.Body.String(), "password authentication")
	assert.Empty(t, body.Details)
}

func TestError_WrappedAppError(t *testing.T) {
	w, body := serveError(t, errors.Join(errors.New("context"), apperror.NewNotFound("Task with ID 1 not found")))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task with ID 1 not found", body.Message)
}

func TestCreated_SetsLocation(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, "/api/tasks/5", gin.H{"id": 5})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/tasks/5", w.Header().Get("Location"))
}
