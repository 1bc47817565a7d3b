package auth

import (
	"context"
	"net/http"
	"strings"

	pkghttp "github.com/olholv/contactbook/pkg/http"

	"github.com/olholv/contactbook/internal/models"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// UserContextKey is the key for storing the resolved user in context
	UserContextKey contextKey = "user"
)

// UserFetcher resolves a token subject to a stored user record
type UserFetcher interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

const credentialsMessage = "Could not validate credentials"

// RequireAuth validates access tokens and injects the resolved user into
// the request context. Every failure mode (missing header, bad token,
// wrong scope, unknown subject) is reported with the same generic message
// so the cause is never leaked.
func RequireAuth(tm *TokenManager, users UserFetcher) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				pkghttp.WriteUnauthorized(w, credentialsMessage)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				pkghttp.WriteUnauthorized(w, credentialsMessage)
				return
			}

			claims, err := tm.Verify(parts[1], models.ScopeAccess)
			if err != nil {
				pkghttp.WriteUnauthorized(w, credentialsMessage)
				return
			}

			user, err := users.GetByEmail(r.Context(), claims.Subject)
			if err != nil {
				// Identical response whether the subject existed or not
				pkghttp.WriteUnauthorized(w, credentialsMessage)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext extracts the resolved user from the request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
