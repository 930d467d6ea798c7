package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inkwell/backend/internal/apperr"
	"github.com/inkwell/backend/internal/models"
	"github.com/inkwell/backend/internal/policy"
	"github.com/inkwell/backend/pkg/response"
)

const (
	// ContextIdentity is the key for the policy.Identity in gin context.
	ContextIdentity = "identity"
	// ContextUserEmail is the key for user email in gin context.
	ContextUserEmail = "user_email"
)

// TokenValidator verifies a bearer token and returns the user id it was issued to.
type TokenValidator interface {
	Subject(token string) (uuid.UUID, error)
}

// UserLoader resolves the user behind a token. Returns nil, nil when the user no longer exists.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// JWT returns a middleware that validates the bearer token, reloads the user and
// stores its identity in context. Role and brand come from the stored user, not the token.
func JWT(tokens TokenValidator, users UserLoader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		userID, err := tokens.Subject(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			logger.Error("load token user", zap.String("user_id", userID.String()), zap.Error(err))
			response.Internal(c, "failed to load user")
			c.Abort()
			return
		}
		if user == nil {
			response.Unauthorized(c, "user no longer exists")
			c.Abort()
			return
		}
		c.Set(ContextIdentity, policy.IdentityFromUser(user))
		c.Set(ContextUserEmail, user.Email)
		c.Next()
	}
}

// CurrentIdentity returns the identity set by JWT.
func CurrentIdentity(c *gin.Context) (policy.Identity, error) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return policy.Identity{}, apperr.ErrUnauthenticated
	}
	identity, ok := v.(policy.Identity)
	if !ok {
		return policy.Identity{}, apperr.ErrUnauthenticated
	}
	return identity, nil
}
