package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vaughan-dsouza/fileshelf/internal/models"
	"github.com/vaughan-dsouza/fileshelf/internal/utils"
)

type ctxKey string

const ctxIdentityKey ctxKey = "identity"

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	Verify(token string) (models.Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, ctxIdentityKey, id)
}

// IdentityFrom returns the identity attached by Auth.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(ctxIdentityKey).(models.Identity)
	return id, ok
}

// Auth admits requests carrying a valid bearer token. A missing credential
// is 401 so the client knows to log in; a credential that fails verification
// is 403 so it knows to log in again.
func Auth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				utils.JSONError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			id, err := v.Verify(token)
			if err != nil {
				utils.JSONError(w, http.StatusForbidden, "token invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
