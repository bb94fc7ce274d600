package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/jwt"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// JWTAuth validates the bearer token and stores user_id and role on the context.
func JWTAuth(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Authorization header is required")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(c, http.StatusUnauthorized, "INVALID_AUTH_FORMAT", "Authorization header must be 'Bearer <token>'")
			c.Abort()
			return
		}

		claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.Error(c, http.StatusUnauthorized, "TOKEN_EXPIRED", "Token has expired")
			} else {
				response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			}
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxRole, strings.ToUpper(claims.Role))
		c.Next()
	}
}

// ActorFrom returns the authenticated caller. It is the zero Actor when
// JWTAuth did not run.
func ActorFrom(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetInt64(ctxUserID),
		Role: domain.UserRole(c.GetString(ctxRole)),
	}
}
