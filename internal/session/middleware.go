package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

// Store resolves session ids to principals.
type Store interface {
	Principal(ctx context.Context, id string) (*Principal, error)
}

// Middleware attaches the principal of a valid session to the request context.
// Requests without one continue anonymously; rejecting them is the policy's job.
func Middleware(manager *Manager, store Store, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := manager.SessionID(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := store.Principal(r.Context(), id)
			if err != nil {
				if !errors.Is(err, ErrSessionNotFound) {
					logger.ErrorContext(r.Context(), "failed to load session", "error", err)
				}
				manager.ClearCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
