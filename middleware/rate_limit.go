package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/luntan/utils"
)

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rateLimiter
}

// NewRateLimiter allows perMinute requests per IP with bursts of half that.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limit:    rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:    max(perMinute/2, 1),
		limiters: map[string]*rateLimiter{},
	}
}

// Middleware applies the limiter using a token bucket.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !l.allow(ctx.ClientIP()) {
			utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

func (l *RateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.cleanupExpiredLocked()

	entry, ok := l.limiters[key]
	if !ok {
		entry = &rateLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = entry
	}
	entry.expires = time.Now().Add(5 * time.Minute)
	return entry.limiter.Allow()
}

func (l *RateLimiter) cleanupExpiredLocked() {
	now := time.Now()
	for key, entry := range l.limiters {
		if now.After(entry.expires) {
			delete(l.limiters, key)
		}
	}
}
