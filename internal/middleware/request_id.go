package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"microblog/internal/observability"
)

const RequestIDKey = "request_id"

// RequestID reuses the inbound X-Request-ID or mints one, echoes it on the
// response and stores it on the request context for outbound calls.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(observability.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(observability.RequestIDHeader, id)
		c.Request = c.Request.WithContext(observability.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// RequestIDFrom returns the id set by RequestID, minting one if the
// middleware did not run.
func RequestIDFrom(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	id := c.GetHeader(observability.RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(RequestIDKey, id)
	return id
}
