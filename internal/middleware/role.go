package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/pkg/response"
)

// RequireRole returns a middleware that allows only the given roles.
// It is a coarse route guard; services still run the full permission check.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		identity, err := CurrentIdentity(c)
		if err != nil {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := allowed[identity.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
