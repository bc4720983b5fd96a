// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"cashcard-api/internal/domain"
	"cashcard-api/internal/metrics"
	"cashcard-api/internal/service"
	"cashcard-api/internal/util"
)

// BasicRealm is advertised in WWW-Authenticate challenges.
const BasicRealm = "cashcards"

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// BasicAuth authenticates every request with HTTP Basic credentials.
// Missing or bad credentials get 401 with an empty body.
func BasicAuth(auth service.AuthService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				metrics.RecordAuthFailure("missing_credentials")
				challenge(w)
				return
			}

			principal, err := auth.Authenticate(r.Context(), username, password)
			if err != nil {
				if util.IsError(err, util.ErrUnauthenticated) {
					metrics.RecordAuthFailure("bad_credentials")
					logger.Info("Authentication failed", "username", username, "request_id", GetRequestID(r.Context()))
					challenge(w)
					return
				}
				logger.Error("Credential lookup failed", "username", username, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole rejects authenticated callers lacking role with 403 and an
// empty body. It must run after BasicAuth.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				challenge(w)
				return
			}
			if !principal.HasRole(role) {
				metrics.RecordAuthFailure("forbidden")
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func challenge(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Basic realm="`+BasicRealm+`", charset="UTF-8"`)
	w.WriteHeader(http.StatusUnauthorized)
}
