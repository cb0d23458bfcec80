package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"ignitegigs/internal/logging"
	"ignitegigs/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// InternalTokenAuth protects operator endpoints (the refund sweep trigger)
// with a static bearer token. An empty token disables the endpoints
// entirely. allowedIPs, when non-empty, further restricts the caller.
func InternalTokenAuth(token string, allowedIPs []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowedIPs))
	for _, ip := range allowedIPs {
		if ip = strings.TrimSpace(ip); ip != "" {
			allowed[ip] = true
		}
	}

	return func(c *gin.Context) {
		if token == "" {
			internalAuthFailure(c, http.StatusForbidden, "AUTH_INVALID", "Internal endpoints are disabled", "disabled")
			return
		}
		if len(allowed) > 0 && !allowed[c.ClientIP()] {
			internalAuthFailure(c, http.StatusForbidden, "AUTH_INVALID", "IP not allowed", "ip_not_allowed")
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			internalAuthFailure(c, http.StatusUnauthorized, "AUTH_MISSING", "Authorization header is required", "missing_auth")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			internalAuthFailure(c, http.StatusUnauthorized, "AUTH_INVALID", "Authorization header must be 'Bearer <token>'", "invalid_auth_format")
			return
		}
		if subtle.ConstantTimeCompare([]byte(parts[1]), []byte(token)) != 1 {
			internalAuthFailure(c, http.StatusForbidden, "AUTH_INVALID", "Invalid internal token", "invalid_token")
			return
		}

		c.Next()
	}
}

func internalAuthFailure(c *gin.Context, status int, code, message, reason string) {
	logging.Warn().
		Str("request_id", requestID(c)).
		Str("client_ip", c.ClientIP()).
		Int("status", status).
		Str("reason", reason).
		Msg("internal auth rejected")
	response.CustomError(c, status, code, message)
}
