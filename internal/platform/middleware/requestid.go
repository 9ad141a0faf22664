package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Bahjat/page-speed-tool/internal/platform/requestid"
)

// RequestID assigns a correlation ID to each request and echoes it in the
// response. A well-formed incoming X-Request-ID is reused; anything else is
// replaced with a new UUID v4.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestid.Header)
		if !requestid.Valid(id) {
			id = uuid.NewString()
		}

		w.Header().Set(requestid.Header, id)
		next.ServeHTTP(w, r.WithContext(requestid.NewContext(r.Context(), id)))
	})
}
