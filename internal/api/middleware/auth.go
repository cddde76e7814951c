package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/vibedraft/internal/api/apierr"
	"github.com/mcoot/vibedraft/internal/model"
	"github.com/mcoot/vibedraft/internal/services/auth"
	"github.com/mcoot/vibedraft/internal/services/identity"
)

type contextKey string

const (
	playerContextKey   contextKey = "player"
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "token"
)

// Auth creates authentication middleware. The bearer token is checked with
// the identity provider and the caller's player record is resolved, creating
// it on first use.
func Auth(authService *auth.Service, identityService *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			id, err := authService.Authenticate(token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			player, err := identityService.Resolve(r.Context(), id)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, tokenContextKey, token)
			ctx = context.WithValue(ctx, identityContextKey, id)
			ctx = context.WithValue(ctx, playerContextKey, player)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	// EventSource clients cannot set headers
	return r.URL.Query().Get("token")
}

// GetPlayer returns the authenticated player from the request context
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// GetIdentity returns the identity the request's token was issued for
func GetIdentity(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(model.Identity)
	return id, ok
}

// GetToken returns the request's bearer token
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// MustGetPlayer returns the authenticated player or panics
func MustGetPlayer(ctx context.Context) *model.Player {
	player := GetPlayer(ctx)
	if player == nil {
		panic("no player in context - auth middleware not applied?")
	}
	return player
}
