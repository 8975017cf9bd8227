package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// RequestIDHeader carries the request correlation id.
	RequestIDHeader = "X-Request-ID"
	ctxRequestIDKey = "requestID"

	maxRequestIDLength = 128
)

// RequestID reuses a client supplied X-Request-ID or generates a new one and
// echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}

		c.Set(ctxRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(ctxRequestIDKey)
}
