// auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bottle-order-tracking/internal/service"
)

const principalKey = "principal"

// AuthMiddleware validates the bearer token and stores the resolved Principal
// in the request context.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		principal, err := authService.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// PrincipalFrom pulls the authenticated caller out of the request context.
// Only valid behind AuthMiddleware.
func PrincipalFrom(c *gin.Context) service.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(service.Principal)
	return p
}
