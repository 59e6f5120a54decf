// internal/app/system/authn/middleware.go
package authn

import (
	"net/http"

	"github.com/cardfolio/clubhouse/internal/app/system/httpapi"
	"go.uber.org/zap"
)

// Load verifies the bearer token when one is present and puts the caller's
// Identity into the request context. Requests without a token pass through
// unauthenticated; requests with a bad token are rejected so a caller never
// proceeds believing they are someone they failed to prove.
func Load(v *Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				log.Debug("bearer token rejected", zap.Error(err))
				httpapi.Error(w, http.StatusUnauthorized, "invalid or expired credentials")
				return
			}

			next.ServeHTTP(w, withIdentity(r, id))
		})
	}
}

// RequireIdentity ensures a verified caller is in context (set by Load).
// Unauthenticated requests get a 401 with a JSON error body.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentIdentity(r); !ok {
			httpapi.Error(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
