package auth

import (
	"net/http"
	"strings"

	"github.com/112Alex/authgate/internal/shared"
)

// Middleware resolves bearer credentials to request principals.
type Middleware struct {
	Service *Service
}

// Authenticate extracts the Authorization bearer token and, when it
// resolves to an active principal, attaches the principal to the request
// context. Missing or invalid credentials leave the request
// unauthenticated; the rbac gates downstream turn that into 401 or 403,
// so no endpoint is implicitly public by accident here.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := m.Service.Principal(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := shared.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
