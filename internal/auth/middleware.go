package auth

import (
	"context"
	"errors"
	"strings"

	"todoapi/backend/internal/apperr"
	"todoapi/backend/internal/models"
	"todoapi/backend/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const bearerPrefix = "Bearer "

// Mensagens do gate; todas resultam em 401.
const (
	MsgNoToken      = "Not authorized, no token"
	MsgTokenFailed  = "Not authorized, token failed"
	MsgUserNotFound = "Not authorized, user not found"
)

// UserLoader loads a user without its password hash.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
// It expects "Authorization: Bearer <token>", loads the referenced user and puts it
// in the request context (see UserFromContext). Failures are reported through c.Error
// and rendered by the error middleware.
func AuthMiddleware(tokens *TokenIssuer, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			abort(c, apperr.Unauthorized(MsgNoToken))
			return
		}

		userID, err := tokens.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
		if err != nil {
			abort(c, &apperr.Error{Kind: apperr.KindUnauthorized, Message: MsgTokenFailed, Err: err})
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abort(c, apperr.Unauthorized(MsgUserNotFound))
				return
			}
			abort(c, apperr.Internal("failed to load authenticated user", err))
			return
		}

		c.Request = c.Request.WithContext(ContextWithUser(c.Request.Context(), user))
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
