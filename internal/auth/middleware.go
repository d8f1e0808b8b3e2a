package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/code-journal/internal/model"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "identity", id), ANY package that knows the string
// can read or shadow your value. A package-private type prevents collisions:
// only THIS package can create a key of type contextKey, so only this
// package can read or write identities in the context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth is a middleware that enforces authentication on protected
// routes.
//
// It reads the JWT from the "Authorization: Bearer <token>" header, validates
// it statelessly (signature + expiry only — no database lookup), and stores
// the resolved Identity in the request context. If the header is missing,
// malformed, or the token is invalid, it returns 401 Unauthorized and stops
// the request chain.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler wrapping the original. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp
//
// BEARER HEADER vs COOKIE:
// The journal client keeps its session in localStorage and attaches the
// token itself, so the server reads the standard Authorization header rather
// than a cookie.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := extractIdentity(r, tokens)
			if err != nil {
				// Not http.Error — that would stamp text/plain over the JSON body.
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthorized","message":"valid authentication required"}`))
				return
			}

			// Store the identity in context so handlers can read it
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated identity from the request
// context.
//
// Returns (Identity{}, false) if the request is anonymous.
// Returns (identity, true) if the user is authenticated.
//
// Usage in handlers:
//
//	identity, ok := auth.IdentityFromContext(r.Context())
//	if !ok {
//	    // anonymous — should not happen behind RequireAuth
//	}
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(model.Identity)
	return identity, ok && identity.UserID > 0
}

// extractIdentity reads the bearer token from the Authorization header and
// validates it.
//
// HEADER FLOW:
// 1. Client signs in, stores the token
// 2. Client sends "Authorization: Bearer <jwt>" on every protected request
// 3. We strip the "Bearer " prefix and validate what's left
func extractIdentity(r *http.Request, tokens *TokenService) (model.Identity, error) {
	header := r.Header.Get("Authorization")

	// The scheme is case-insensitive per RFC 9110, so "bearer x" must work too.
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return model.Identity{}, errMissingBearer
	}

	return tokens.Validate(strings.TrimSpace(header[len(prefix):]))
}

var errMissingBearer = errors.New("auth: missing bearer token")
