package handlers

import (
	"net/http"
	"time"

	"github.com/formworks/formworks/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Throttle limits how often a single client IP may hit an endpoint within a
// fixed window. Used on the endpoints that accept guessable credentials.
func Throttle(limiter ratelimit.Limiter, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := name + ":" + c.ClientIP()
		result, errAllow := limiter.Allow(c.Request.Context(), key, limit, window, time.Now())
		if errAllow != nil {
			// A broken limiter backend must not take the auth endpoints down.
			log.WithError(errAllow).Warn("rate limit check failed")
			c.Next()
			return
		}
		if !result.Allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
			return
		}
		c.Next()
	}
}
