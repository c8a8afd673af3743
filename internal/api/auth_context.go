package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/humidorapp/humidor-server/internal/auth"
	"github.com/humidorapp/humidor-server/internal/domain"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// identityKey is the context key for the authenticated caller.
const identityKey ctxKey = "identity"

// GetIdentity returns the authenticated caller from context.
// Returns 401 error if the request carried no valid token.
func GetIdentity(ctx context.Context) (domain.Identity, error) {
	id, ok := identityFrom(ctx)
	if !ok {
		return domain.Identity{}, huma.Error401Unauthorized("Authentication required")
	}
	return id, nil
}

// GetUserID returns the authenticated user ID from context.
func GetUserID(ctx context.Context) (string, error) {
	id, err := GetIdentity(ctx)
	if err != nil {
		return "", err
	}
	return id.ID, nil
}

func identityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok && id.ID != ""
}

func setIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// resolveUser adapts the request context for the event stream handler.
func resolveUser(r *http.Request) (string, bool) {
	id, ok := identityFrom(r.Context())
	return id.ID, ok
}

// authMiddleware validates Bearer tokens and stores the identity in context.
// A missing or invalid token continues without identity; handlers use
// GetIdentity to reject.
func authMiddleware(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(setIdentity(r.Context(), claims.Identity())))
		})
	}
}
