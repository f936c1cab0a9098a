package auth

import (
	"context"

	"github.com/snapvault/backend/internal/models"
)

// contextKey is an unexported type for context keys in this package.
type contextKey int

const (
	userKey contextKey = iota
	claimsKey
)

// WithUser stashes the authenticated user and token claims in the context.
func WithUser(ctx context.Context, user *models.User, claims *Claims) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return context.WithValue(ctx, claimsKey, claims)
}

// UserFrom returns the authenticated user attached by the protect middleware.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userKey).(*models.User)
	return u, ok
}

// ClaimsFrom returns the verified token claims attached by the protect middleware.
func ClaimsFrom(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*Claims)
	return c, ok
}
