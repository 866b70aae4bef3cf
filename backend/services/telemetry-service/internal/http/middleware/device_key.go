package middleware

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DeviceKeyHeader carries the shared key of sensor and tracker units.
const DeviceKeyHeader = "X-Device-Key"

// DeviceKey checks X-Device-Key against a bcrypt hash. An empty hash disables
// the check so existing units keep working.
func DeviceKey(hash string) func(http.Handler) http.Handler {
	hash = strings.TrimSpace(hash)
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(DeviceKeyHeader)
			if key == "" || bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)) != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid device key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
