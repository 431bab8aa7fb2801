package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter ограничивает частоту запросов по ключу
type Limiter interface {
	Allow(key string) bool
	RetryAfter(key string) time.Duration
}

// RateLimitMessage содержит текст ответа 429
const RateLimitMessage = "Too many requests. Please wait before sending another message."

// RateLimit ограничивает запросы по IP клиента.
// При превышении отвечает 429 с заголовком Retry-After (секунды) и телом {error, retryAfterMs}.
func RateLimit(limiter Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if key == "" {
			key = "unknown"
		}

		if limiter.Allow(key) {
			c.Next()
			return
		}

		wait := limiter.RetryAfter(key)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":        RateLimitMessage,
			"retryAfterMs": wait.Milliseconds(),
		})
	}
}
