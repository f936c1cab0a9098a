// Package middleware provides reusable HTTP middleware for the API server.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/snapvault/backend/internal/apperror"
	"github.com/snapvault/backend/internal/auth"
	"github.com/snapvault/backend/internal/models"
	"github.com/snapvault/backend/internal/response"
)

// UserLookup resolves the user referenced by a token's subject.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RevocationCheck reports whether a token ID has been revoked.
type RevocationCheck interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Protect validates the bearer token, rejects revoked or expired tokens,
// resolves the user, and attaches both to the request context.
func Protect(tokens *auth.TokenManager, revoked RevocationCheck, users UserLookup, respond *response.Writer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				respond.Error(w, r, apperror.New(apperror.Unauthorized, "You are not logged in"))
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respond.Error(w, r, apperror.New(apperror.Unauthorized, "You are not logged in"))
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				msg := "Invalid token"
				if errors.Is(err, auth.ErrTokenExpired) {
					msg = "Token expired"
				}
				respond.Error(w, r, apperror.New(apperror.Unauthorized, msg))
				return
			}

			isRevoked, err := revoked.IsRevoked(r.Context(), claims.ID)
			if err != nil {
				respond.Error(w, r, apperror.Wrap(apperror.Internal, "Something went wrong", err))
				return
			}
			if isRevoked {
				respond.Error(w, r, apperror.New(apperror.Unauthorized, "Token expired"))
				return
			}

			user, err := users.GetUserByID(r.Context(), claims.Subject)
			if err != nil {
				respond.Error(w, r, apperror.New(apperror.Unauthorized, "User belonging to this token no longer exists"))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user, claims)))
		})
	}
}
