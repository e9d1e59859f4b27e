package auth

import (
	"context"

	"todoapi/backend/internal/models"
)

type contextKey string

// userKey holds the *models.User loaded by AuthMiddleware.
const userKey contextKey = "auth_user"

// ContextWithUser returns a copy of ctx carrying user.
func ContextWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, if the request passed AuthMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
