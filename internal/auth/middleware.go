package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/bahikhata-erp/bahikhata/internal/platform/httpx"
	"github.com/bahikhata-erp/bahikhata/internal/shared"
)

// Middleware resolves bearer tokens into the request actor.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireActor rejects requests without a valid token and stores the
// resolved actor in the request context.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		actor, err := m.Service.ResolveToken(r.Context(), token)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Warn("token rejected", slog.String("path", r.URL.Path))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
