package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/shared"
)

// PrincipalResolver maps a session user id to a principal.
type PrincipalResolver interface {
	PrincipalFor(ctx context.Context, sessionUser string) (shared.Principal, error)
}

// LoadPrincipal attaches the signed in principal to the request context.
// Sessions pointing at missing or disabled accounts are logged out.
func LoadPrincipal(resolver PrincipalResolver, sessions *shared.SessionManager, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				next.ServeHTTP(w, r)
				return
			}
			principal, err := resolver.PrincipalFor(r.Context(), sess.User())
			if err != nil {
				if !errors.Is(err, httpx.ErrUnauthorized) {
					httpx.Fail(logger, w, r, err)
					return
				}
				logger.Info("dropping stale session", slog.Any("error", err))
				sessions.Destroy(sess)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithPrincipal(r.Context(), principal)))
		})
	}
}
