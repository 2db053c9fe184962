package middleware

import (
	"go-offboarding/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger puts a request-scoped logger into the request context.
// AuthMiddleware later enriches it with the tenant and actor.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Request ID biasanya sudah diisi oleh RequestID()
		rid := c.GetString("request_id")
		if rid == "" {
			rid = uuid.New().String()
			c.Header("X-Request-ID", rid)
		}

		reqLogger := logger.With(
			zap.String("request_id", rid),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
		)

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
