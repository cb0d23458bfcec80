package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ignitegigs/internal/domain"
	"ignitegigs/internal/pkg/jwt"
	"ignitegigs/internal/pkg/response"
)

// JWTAuth requires a bearer token and stores user_id and role on the context.
func JWTAuth(tokens *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			response.CustomError(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Missing Authorization header")
			return
		}

		if !strings.HasPrefix(h, "Bearer ") {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Invalid Authorization header")
			return
		}

		tokenStr := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		if tokenStr == "" {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Empty token")
			return
		}

		claims, err := tokens.ValidateToken(tokenStr)
		if err != nil {
			response.CustomError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// ActorFrom reads the caller set by JWTAuth.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		UserID: c.GetString("user_id"),
		Role:   domain.UserRole(c.GetString("role")),
	}
}
