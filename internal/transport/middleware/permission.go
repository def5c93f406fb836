package middleware

import (
	"net/http"

	"github.com/eventstaff/attendance/internal"
	"github.com/eventstaff/attendance/internal/transport"
	"github.com/eventstaff/attendance/pkg/logger"
)

// RequireRoles lets the request through when the principal holds any of roles.
func RequireRoles(base *transport.BaseHandler, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := internal.PrincipalFromContext(r.Context())
			if !ok || principal == nil {
				base.WriteAppError(w, internal.NewUnauthorizedError("authentication required", internal.ErrCodeInvalidToken))
				return
			}

			if !principal.HasRole(roles...) {
				logger.From(r.Context()).Warn("access denied: role not permitted",
					"user_id", principal.UserID,
					"role", principal.Role,
					"required_roles", roles)
				base.WriteAppError(w, internal.ErrAccessDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
