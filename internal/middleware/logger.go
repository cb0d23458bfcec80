package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"ignitegigs/internal/logging"
	"ignitegigs/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestID makes sure every request carries an id, reusing the caller's
// X-Request-ID when present, and puts it on the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := requestID(c)
		if id == "" {
			id = logging.NewRequestID()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// ErrorLogger records request latency, logs errors and 5xx responses, and
// recovers from panics.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				requestEvent(logging.Error(), c, start).
					Err(err).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal server error",
					},
				})
			}

			metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					requestEvent(logging.Error(), c, start).Msg("request failed")
				}
				return
			}
			for _, e := range c.Errors {
				ev := requestEvent(logging.Error(), c, start).Err(e.Err)
				if e.Meta != nil {
					ev = ev.Interface("meta", e.Meta)
				}
				ev.Msg("request error")
			}
		}()

		c.Next()
	}
}

func requestEvent(ev *zerolog.Event, c *gin.Context, start time.Time) *zerolog.Event {
	return ev.
		Int("status", c.Writer.Status()).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Str("client_ip", c.ClientIP()).
		Str("user_id", c.GetString("user_id")).
		Str("role", c.GetString("role")).
		Str("request_id", requestID(c)).
		Dur("latency", time.Since(start))
}

func requestID(c *gin.Context) string {
	if id := c.GetString("request_id"); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return c.GetHeader("X-Request-Id")
}
