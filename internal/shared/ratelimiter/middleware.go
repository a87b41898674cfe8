package ratelimiter

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware applies l to every request, keyed by client IP.
// Limiter errors let the request through.
func Middleware(l Limiter, window time.Duration) gin.HandlerFunc {
	message := fmt.Sprintf("Too many requests from this IP, please try again after %d minutes",
		int(math.Ceil(window.Minutes())))

	return func(c *gin.Context) {
		d, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Warn("rate limiter unavailable", "error", err, "remote_addr", c.ClientIP())
			c.Next()
			return
		}

		c.Header("RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			retry := int(math.Ceil(d.RetryAfter.Seconds()))
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			slog.Warn("rate limit exceeded", "remote_addr", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": message})
			return
		}
		c.Next()
	}
}
