package middleware

import (
	"net/http"
	"strconv"
	"time"

	"ignitegigs/internal/metrics"
	"ignitegigs/internal/pkg/response"
	"ignitegigs/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit gates a route with preset, keyed by preset name and caller IP.
// A locked-out key is refused before its window is counted.
func RateLimit(guard *ratelimit.Guard, preset ratelimit.Preset) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := preset.Key(ratelimit.ClientKey(c.Request))

		if remaining := guard.IsLockedOut(key); remaining > 0 {
			metrics.RateLimitRejections.WithLabelValues(preset.Name, "lockout").Inc()
			c.Header("Retry-After", retryAfter(remaining))
			response.CustomError(c, http.StatusTooManyRequests, "ACCOUNT_LOCKED",
				"Too many failed attempts, try again in "+strconv.Itoa(ceilMinutes(remaining))+" minutes")
			return
		}

		res := guard.Check(key, preset.Window, preset.Max)
		c.Header("X-RateLimit-Limit", strconv.Itoa(preset.Max))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			metrics.RateLimitRejections.WithLabelValues(preset.Name, "window").Inc()
			c.Header("Retry-After", retryAfter(res.ResetIn))
			response.CustomError(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down")
			return
		}

		c.Next()
	}
}

// retryAfter renders d in whole seconds, never less than one.
func retryAfter(d time.Duration) string {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}

func ceilMinutes(d time.Duration) int {
	return int((d + time.Minute - 1) / time.Minute)
}
