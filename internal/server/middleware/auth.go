package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fulmenhq/gofulmen/errors"

	"github.com/medfront/medfront/internal/auth"
	"github.com/medfront/medfront/internal/core"
)

type userContextKey string

const currentUserContextKey userContextKey = "current_user"

// UserLoader resolves usernames to user records. *store.Store satisfies it.
type UserLoader interface {
	GetUser(ctx context.Context, username string) (*core.User, error)
}

// Authenticator guards routes with bearer token auth. Error responses are
// written locally to keep this package free of the errors package (which
// imports middleware for request IDs).
type Authenticator struct {
	Tokens *auth.TokenManager
	Users  UserLoader
}

// Require rejects requests without a valid bearer token and loads the
// token's user into the request context.
func (a *Authenticator) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			a.unauthorized(w, r, "missing bearer token")
			return
		}

		username, err := a.Tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			a.unauthorized(w, r, "invalid or expired token")
			return
		}

		user, err := a.Users.GetUser(r.Context(), username)
		if err != nil {
			envelope := errors.NewErrorEnvelope("DATABASE_ERROR", "could not load user").
				WithCorrelationID(GetRequestID(r.Context()))
			writeErrorResponse(w, envelope, http.StatusInternalServerError)
			return
		}
		if user == nil {
			a.unauthorized(w, r, "user no longer exists")
			return
		}

		ctx := context.WithValue(r.Context(), currentUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles wraps Require and additionally rejects users outside the
// allowed roles.
func (a *Authenticator) RequireRoles(roles ...core.UserRole) func(http.Handler) http.Handler {
	allowed := make(map[core.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return a.Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := CurrentUser(r.Context())
			if user == nil {
				a.unauthorized(w, r, "missing bearer token")
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				envelope := errors.NewErrorEnvelope("FORBIDDEN", "insufficient permissions").
					WithCorrelationID(GetRequestID(r.Context()))
				writeErrorResponse(w, envelope, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

func (a *Authenticator) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	envelope := errors.NewErrorEnvelope("UNAUTHORIZED", message).
		WithCorrelationID(GetRequestID(r.Context()))
	writeErrorResponse(w, envelope, http.StatusUnauthorized)
}

// CurrentUser returns the authenticated user stored by Require, or nil.
func CurrentUser(ctx context.Context) *core.User {
	user, _ := ctx.Value(currentUserContextKey).(*core.User)
	return user
}
