package http

import (
	"net/http"

	"github.com/aussiebroadwan/leadflow/internal/intake/access"
	"github.com/aussiebroadwan/leadflow/internal/intake/domain"
	"github.com/aussiebroadwan/leadflow/internal/intake/service"
	"github.com/aussiebroadwan/leadflow/pkg/httpx"
)

// principal maps the verified bearer claims onto the caller. Requests
// without a token are anonymous; tokens with an unknown role act as clients.
func principal(r *http.Request) domain.Principal {
	c, ok := httpx.ClaimsFromContext(r.Context())
	if !ok || c.Subject == "" {
		return domain.Anonymous{}
	}
	role := domain.Role(c.Role)
	if !role.Valid() {
		role = domain.RoleClient
	}
	return domain.Authenticated{ID: c.Subject, Role: role}
}

// permit rejects callers the access policy denies outright for action on
// entity, before the handler reads the request. Record-level checks stay in
// the services.
func permit(entity access.Entity, action access.Action) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if access.Evaluate(principal(r), entity, action, "") != access.Allow {
				writeServiceError(w, r, service.ErrAccessDenied, "authorize")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
