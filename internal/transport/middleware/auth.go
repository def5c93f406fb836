package middleware

import (
	"context"
	"net/http"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/transport"
	"github.com/eventstaff/attendance/pkg/logger"
)

// PrincipalResolver turns a bearer token into the caller's identity.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (*internal.Principal, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved principal in the request context.
func Authenticate(resolver PrincipalResolver, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.BearerToken(r)
			if token == "" {
				base.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil {
				base.HandleServiceError(w, r, err)
				return
			}

			ctx := internal.ContextWithPrincipal(r.Context(), principal)
			ctx = logger.With(ctx, "userID", principal.UserID, "role", principal.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
