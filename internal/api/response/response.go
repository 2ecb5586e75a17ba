package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key holding the request's trace identifier.
const RequestIDKey = "request.id"

// RequestIDHeader carries the trace identifier on requests and responses.
const RequestIDHeader = "X-Request-Id"

// RequestID returns the trace identifier attached to c, if any.
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// OK writes body with status 200.
func OK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// Created writes body with status 201 and a Location header.
func Created(c *gin.Context, location string, body any) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, body)
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
