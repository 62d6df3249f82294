package middleware

import (
	"net/http"
	"strings"

	"github.com/kasirin/kasirin/pkg/auth"
	"github.com/kasirin/kasirin/pkg/response"
)

// Authenticate rejects requests without a valid bearer token and stores the
// caller's identity in the request context for downstream handlers.
func Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := auth.WithIdentity(r.Context(), auth.Identity{
			UserID: claims.UserID,
			Role:   claims.Role,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
