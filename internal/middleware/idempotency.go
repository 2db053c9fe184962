package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idempotencyTTL     = 24 * time.Hour
	idempotencyLockTTL = 30 * time.Second
)

type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response of a POST carrying the same
// Idempotency-Key for the same route and user.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	logger := zap.L().Named("middleware.idempotency")

	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), userID, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(ctx, cacheKey).Bytes()
		if err == nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", val)
			c.Abort()
			return
		}
		if err != redis.Nil {
			logger.Warn("idempotency cache read failed", zap.String("key", cacheKey), zap.Error(err))
			c.Next()
			return
		}

		// Lock pendek agar request ganda yang masih berjalan ditolak
		isNew, err := rdb.SetNX(ctx, lockKey, "locked", idempotencyLockTTL).Result()
		if err != nil {
			logger.Warn("idempotency lock failed", zap.String("key", lockKey), zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			response.Error(c, http.StatusConflict, apperror.CodeProcessing,
				"request with this Idempotency-Key is still being processed", nil)
			c.Abort()
			return
		}
		defer rdb.Del(ctx, lockKey)

		writer := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}
		if err := rdb.Set(ctx, cacheKey, writer.body.Bytes(), idempotencyTTL).Err(); err != nil {
			logger.Warn("idempotency cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}
