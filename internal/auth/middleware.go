package auth

import (
	"log/slog"
	"net/http"

	"github.com/ssth/ssth-inventory/internal/platform/httpx"
	"github.com/ssth/ssth-inventory/internal/shared"
)

// Middleware rejects requests without a valid bearer token and stores the
// verified actor in the request context.
type Middleware struct {
	Verifier *Verifier
	Logger   *slog.Logger
}

// RequireUser wraps next with bearer token verification.
func (m Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r.Header.Get("Authorization"))
		if err != nil {
			httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		actor, err := m.Verifier.Verify(token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("bearer token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}
