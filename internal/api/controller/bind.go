package controller

import (
	"ctchen222/task-manager/internal/api/apperror"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into dst. Oversized bodies map to 413,
// anything else that fails to decode to 400.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return apperror.NewTooLarge()
		}
		return &apperror.Error{Kind: apperror.Validation, Message: "Invalid request body", Err: err}
	}
	return nil
}

func taskID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.New(apperror.Validation, "Invalid task id")
	}
	return id, nil
}
