package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"coursehub/internal/metrics"
	"coursehub/pkg/claims"
	"coursehub/pkg/token"
)

const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid token."
	MsgAdminOnly    = "Access denied. Admin only."
)

// Authenticate verifies the bearer token and attaches its claims to the
// request context. It trusts the signed claims and never consults the
// user store, so a token stays usable until it expires.
func Authenticate(verifier token.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r.Header.Get("Authorization"))
			if raw == "" {
				reject(w, r, logger, metrics.ReasonMissing, http.StatusUnauthorized, MsgNoToken)
				return
			}

			c, err := verifier.Verify(raw)
			if err != nil {
				reject(w, r, logger, rejectionReason(err), http.StatusForbidden, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(claims.NewContext(r.Context(), c)))
		})
	}
}

// bearerToken returns the token part of "Bearer <token>", or "" when the
// header is absent, has another scheme, or carries no token.
func bearerToken(header string) string {
	fields := strings.Fields(header)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "Bearer") {
		return ""
	}
	return fields[1]
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, token.ErrExpired):
		return metrics.ReasonExpired
	case errors.Is(err, token.ErrInvalidSignature):
		return metrics.ReasonSignature
	case errors.Is(err, token.ErrMissingToken):
		return metrics.ReasonMissing
	default:
		return metrics.ReasonMalformed
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger *slog.Logger, reason string, status int, msg string) {
	metrics.AuthRejections.WithLabelValues(reason).Inc()
	logger.Debug("request rejected",
		slog.String("path", r.URL.Path),
		slog.String("reason", reason),
		slog.Int("status", status),
	)
	writeError(w, status, msg)
}
