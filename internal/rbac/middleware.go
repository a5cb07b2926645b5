package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/112Alex/authgate/internal/platform/httpx"
	"github.com/112Alex/authgate/internal/shared"
)

// Middleware wires authorization checks into the HTTP layer.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Require gates a route behind the given requirement: 401 without a
// principal, 403 on deny. Storage errors deny as well.
func (m Middleware) Require(req Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if err := m.Service.Authorize(r.Context(), p, req); err != nil {
				if !errors.Is(err, shared.ErrUnauthenticated) && !errors.Is(err, shared.ErrForbidden) {
					if m.Logger != nil {
						m.Logger.Error("authorize", slog.String("requirement", req.String()), slog.Any("error", err))
					}
					err = shared.ErrForbidden
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperuser gates admin routes: 401 without a principal, 403 for
// non-superusers.
func (m Middleware) RequireSuperuser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := shared.PrincipalFromContext(r.Context())
			if p == nil {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if !p.IsSuperuser {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuthenticated admits any authenticated principal.
func (m Middleware) RequireAuthenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shared.PrincipalFromContext(r.Context()) == nil {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
