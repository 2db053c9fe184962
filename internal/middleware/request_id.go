package middleware

import (
	"go-offboarding/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLength = 64

// RequestID accepts the caller's X-Request-ID when it is short enough to be a
// sane log field and mints a uuid otherwise. The id ends up in every outbox event.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" || len(rid) > maxRequestIDLength {
			rid = uuid.New().String()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(contextutil.WithRequestID(c.Request.Context(), rid))

		c.Header("X-Request-ID", rid)
		c.Next()
	}
}
