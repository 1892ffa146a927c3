package ratelimit

import (
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xyz-asif/ebooks/internal/pkg/response"
)

// Middleware creates a rate limiting middleware for Gin keyed by client IP
func Middleware(limiter *RateLimiter) gin.HandlerFunc {
	return CustomKeyMiddleware(limiter, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// CustomKeyMiddleware creates a rate limiting middleware with custom key function
func CustomKeyMiddleware(limiter *RateLimiter, keyFunc func(c *gin.Context) string) gin.HandlerFunc {
	limitHeader := strconv.Itoa(limiter.Limit())

	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			key = c.ClientIP()
		}

		c.Header("X-RateLimit-Limit", limitHeader)

		if !limiter.Allow(key) {
			wait := limiter.RetryAfter(key)
			resetTime := time.Now().Add(wait)
			seconds := int(math.Ceil(wait.Seconds()))

			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", resetTime.Format(time.RFC3339))
			c.Header("Retry-After", strconv.Itoa(seconds))

			response.TooManyRequests(c, "Rate limit exceeded. Try again later.", gin.H{
				"retry_after": strconv.Itoa(seconds) + "s",
				"reset_time":  resetTime.Format(time.RFC3339),
				"limit":       limiter.Limit(),
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(limiter.GetRemaining(key)))
		c.Next()
	}
}
