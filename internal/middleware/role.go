package middleware

import (
	"net/http"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"
	"github.com/RachdianZulkarnain/final-project-api/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RequireRole ensures that the authenticated user has one of the given roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(ctxRole)
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		current, _ := role.(string)
		for _, r := range roles {
			if domain.UserRole(current) == r {
				c.Next()
				return
			}
		}

		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
		c.Abort()
	}
}

func TenantOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleTenant)
}
