package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/auth"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/httpx"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/logging"
	"github.com/Yash5429Q/Insider-ZeroTrust-Backend/internal/models"
)

// Authenticate validates the bearer token and injects the resolved user into
// the request context. Every authentication failure gets the same 401 body.
func Authenticate(guard *auth.Guard, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := guard.Authenticate(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				if errors.Is(err, auth.ErrUnauthenticated) {
					w.Header().Set("WWW-Authenticate", "Bearer")
					httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, auth.ErrUnauthenticated.Error())
					return
				}
				logger.Error(r.Context(), "authenticate failed", "error", err)
				httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "internal error")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

// RequireRole rejects requests whose authenticated user lacks role. It must
// run after Authenticate.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				httpx.WriteError(w, http.StatusUnauthorized, httpx.CodeUnauthenticated, auth.ErrUnauthenticated.Error())
				return
			}
			if err := auth.RequireRole(user, role); err != nil {
				httpx.WriteError(w, http.StatusForbidden, httpx.CodeForbidden, forbiddenMessage(role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forbiddenMessage names the missing role, e.g. "Admin access required".
func forbiddenMessage(role models.Role) string {
	r := string(role)
	if r == "" {
		return "Access denied"
	}
	return strings.ToUpper(r[:1]) + r[1:] + " access required"
}
