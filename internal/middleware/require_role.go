// require_role.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"bottle-order-tracking/internal/model"
)

// RequireRole rejects callers whose role is not in the allowed set. Only
// valid behind AuthMiddleware.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		for _, r := range roles {
			if principal.Role == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
		c.Abort()
	}
}
