package middleware

import (
	"net/http"
	"slices"

	"github.com/vaughan-dsouza/fileshelf/internal/models"
	"github.com/vaughan-dsouza/fileshelf/internal/utils"
)

// RequireRole restricts a route to the given roles. It must run after Auth.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			if !slices.Contains(roles, id.Role) {
				utils.JSONError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
