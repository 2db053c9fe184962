package middleware

import (
	"net/http"
	"sync"

	"go-offboarding/internal/shared/apperror"
	"go-offboarding/internal/shared/response"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type KeyRateLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	r        rate.Limit // jumlah request per detik
	b        int        // burst
}

func NewKeyRateLimiter(r rate.Limit, b int) *KeyRateLimiter {
	return &KeyRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        r,
		b:        b,
	}
}

func (k *KeyRateLimiter) GetLimiter(key string) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	limiter, exists := k.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(k.r, k.b)
		k.limiters[key] = limiter
	}

	return limiter
}

func RateLimitByIP(r rate.Limit, b int) gin.HandlerFunc {
	limiter := NewKeyRateLimiter(r, b)
	return func(c *gin.Context) {
		if !limiter.GetLimiter(c.ClientIP()).Allow() {
			response.Error(c, http.StatusTooManyRequests, apperror.CodeRateLimited, "too many requests from this IP", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
