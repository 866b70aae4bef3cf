package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pltsmonitor/backend/services/telemetry-service/internal/auth"
)

type contextKey string

const identityKey contextKey = "identity"

// RequireAuthorized rejects requests the authorizer does not accept.
func RequireAuthorized(a auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := a.Authorize(r)
			switch {
			case errors.Is(err, auth.ErrForbidden):
				writeMessage(w, http.StatusForbidden, "forbidden")
				return
			case err != nil:
				writeMessage(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the identity RequireAuthorized stored.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
