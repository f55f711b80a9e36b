package handlers

import (
	"errors"
	"net/http"

	"github.com/kev405/toolflow-backend/internal/auth"
	"github.com/kev405/toolflow-backend/internal/services"
	"github.com/kev405/toolflow-backend/internal/store"
	"github.com/kev405/toolflow-backend/types"
)

// Authenticate runs once per request, before any authorization check. A
// missing or malformed Authorization header passes the request through
// anonymously; route-level authorization rejects later if the target
// operation requires an identity. A present-but-invalid token, or a token
// whose subject no longer resolves to an active account, terminates the
// request with 401.
func Authenticate(tokens *auth.TokenService, authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			username, err := tokens.ExtractUsername(tokenString)
			if err != nil {
				writeAPIError(w, r, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			identity, err := authService.ResolveIdentity(r.Context(), username)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					writeAPIError(w, r, http.StatusUnauthorized, "unauthorized", err)
					return
				}
				writeAPIError(w, r, http.StatusInternalServerError, "internal server error", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := identityFromContext(r.Context()); !ok {
			writeAPIError(w, r, http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRoles gates an operation on the identity holding at least one of
// the listed roles (logical OR). Anonymous requests get 401; authenticated
// requests without a matching role get 403.
func RequireRoles(roles ...types.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := identityFromContext(r.Context())
			if !ok {
				writeAPIError(w, r, http.StatusUnauthorized, "unauthorized", errors.New("authentication required"))
				return
			}
			if !identity.HasAnyRole(roles...) {
				writeAPIError(w, r, http.StatusForbidden, "access denied", errors.New("insufficient role"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
