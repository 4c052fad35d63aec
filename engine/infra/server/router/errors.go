// Package router provides shared HTTP error handling for gin routes.
package router

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterhq/roster/pkg/logger"
)

// RequestError pairs an HTTP status code with the error that caused it.
// Handlers attach it with c.Error and ErrorHandler renders the response.
type RequestError struct {
	StatusCode int
	Reason     string
	Err        error
}

// NewRequestError creates a RequestError for the given status and reason.
func NewRequestError(statusCode int, reason string, err error) *RequestError {
	return &RequestError{
		StatusCode: statusCode,
		Reason:     reason,
		Err:        err,
	}
}

func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ErrorHandler renders errors attached to the gin context after the handler
// chain ran. Handlers that already wrote a response are left untouched;
// anything else becomes a JSON error body, with unknown errors mapped to 500
// so no internal detail leaks.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		log := logger.FromContext(c.Request.Context())
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			log.Warn("Request failed", "status", reqErr.StatusCode, "reason", reqErr.Reason, "error", reqErr.Err)
			c.JSON(reqErr.StatusCode, gin.H{"error": reqErr.Reason})
			return
		}
		log.Error("Unhandled request error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
