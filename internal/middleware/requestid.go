package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderXRequestID = "X-Request-ID"
	ContextRequestID = "request_id"

	// Inbound ids longer than this are replaced, not truncated; an id that
	// was clipped on our side would no longer match the caller's logs.
	maxRequestIDLen = 64
)

// RequestID tags every request with a correlation id. A well-formed inbound
// X-Request-ID is honoured so ids stay stable across service hops; anything
// missing or oversized gets a fresh UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderXRequestID)
		if rid == "" || len(rid) > maxRequestIDLen {
			rid = uuid.NewString()
		}

		c.Set(ContextRequestID, rid)
		c.Writer.Header().Set(HeaderXRequestID, rid)
		c.Next()
	}
}
