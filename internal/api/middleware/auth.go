package middleware

import (
	"context"
	"net/http"
	"strings"

	"blogcore/internal/common"
	"blogcore/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

type contextKey string

const identityCtxKey contextKey = "identity"

// TokenFromCookie pulls the session token from the auth_token cookie.
// jwtauth's stock cookie extractor is hardwired to a cookie named "jwt".
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(security.AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// Verifier verifies the token found in the Authorization header or the
// auth cookie, uniformly, and stages the result in the request context.
func Verifier(tokens *security.TokenService) func(http.Handler) http.Handler {
	return jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader, TokenFromCookie)
}

// Authenticator rejects requests that did not carry a valid token and
// exposes the verified identity to downstream handlers.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())

		if err != nil {
			if strings.Contains(err.Error(), "token not found") || token == nil {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
			} else {
				common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			}
			return
		}

		if token == nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		identity, err := security.IdentityFromClaims(claims)
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireRoles gates a route subtree on role claims. Failing the role
// check is forbidden, deliberately distinct from the unauthorized signal
// of a missing or invalid token.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				common.RespondWithError(w, http.StatusUnauthorized, "Authorization token required")
				return
			}
			if !security.Authorize(identity, roles...) {
				common.RespondWithError(w, http.StatusForbidden, "Insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithIdentity(ctx context.Context, identity security.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey, identity)
}

// IdentityFromContext returns the identity placed by Authenticator.
func IdentityFromContext(ctx context.Context) (security.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey).(security.Identity)
	return identity, ok
}
