package middleware

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/response"

	"go.uber.org/zap"
)

// TokenVerifier turns a bearer token into the identity it asserts.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// verified identity in the request context.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractAccessToken(r)
			if token == "" {
				response.Error(w, auth.ErrAuthRequired)
				return
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				logger.FromCtx(r.Context()).Info("token rejected",
					zap.String("layer", "middleware"),
					zap.Error(err),
				)
				response.Error(w, auth.ErrTokenRejected)
				return
			}

			noteUser(r.Context(), identity.UserID.String())
			ctx := auth.WithIdentity(r.Context(), identity)
			ctx = logger.WithFields(ctx,
				zap.String("user_id", identity.UserID.String()),
				zap.String("role", string(identity.Role)),
			)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles lets the request through only when the authenticated identity
// holds one of roles. It must run after Authenticate.
func RequireRoles(roles ...auth.Role) func(http.Handler) http.Handler {
	denied := auth.ErrPermissionDenied
	if len(roles) == 1 && roles[0] == auth.RoleAdmin {
		denied = denied.WithDetails("Admin access required")
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := auth.IdentityFrom(r.Context())
			if !ok {
				response.Error(w, auth.ErrNoIdentity)
				return
			}
			if !identity.HasRole(roles...) {
				response.Error(w, denied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
