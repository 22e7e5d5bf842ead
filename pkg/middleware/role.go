package middleware

import (
	"log/slog"
	"net/http"

	"coursehub/internal/metrics"
	"coursehub/pkg/claims"
)

// RequireRole lets a request through only when pred holds for the claims
// attached by Authenticate. Missing claims fail closed.
func RequireRole(pred func(*claims.Claims) bool, msg string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, _ := claims.FromContext(r.Context())
			if !pred(c) {
				reject(w, r, logger, metrics.ReasonForbidden, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func RequireStaff(logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(claims.IsStaffMember, MsgAdminOnly, logger)
}
