package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

// RequestID assigns each request an id, honoring one supplied by the
// caller. Error envelopes echo it back for correlation with the logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}
