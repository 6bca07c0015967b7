package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// requestIDHeader is the header the request id is read from and echoed on.
const requestIDHeader = "X-Request-ID"

// RequestID attaches a request id to every request: the caller's value when
// present, a fresh UUID otherwise. The id is echoed on the response and made
// available to handlers via the gin context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
