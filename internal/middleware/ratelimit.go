package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"dental-clinic-server/internal/cache"
	"dental-clinic-server/internal/utils"
)

// RateLimit allows limit requests per client IP within window. Counters live
// in provider under "ratelimit:<scope>:<ip>". Cache failures let the request
// through.
func RateLimit(provider cache.Provider, scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + scope + ":" + c.ClientIP()

		count, err := provider.Increment(c.Request.Context(), key, window)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			utils.TooManyRequests(c, "rate limit exceeded")
			c.Abort()
			return
		}

		c.Next()
	}
}
