package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/placementboard/backend/internal/services"
)

const CronSecretHeader = "X-Cron-Secret"

// CronSecret admits requests that carry the shared maintenance secret. An
// empty secret rejects everything.
func CronSecret(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(CronSecretHeader)
			if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
				services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
