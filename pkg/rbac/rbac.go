// Package rbac gates routes by the role carried in the caller's identity.
package rbac

import (
	"net/http"

	"github.com/kasirin/kasirin/pkg/auth"
	"github.com/kasirin/kasirin/pkg/response"
)

// HasRole returns middleware that allows access only to callers whose role
// is one of roles. Requires middleware.Authenticate to have already run.
func HasRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := auth.FromCtx(r.Context())
			if !ok || !allowed[id.Role] {
				response.Forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
