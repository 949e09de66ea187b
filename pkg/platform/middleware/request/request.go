// Package request provides request ID middleware. Every request gets a
// correlation ID, either propagated from the X-Request-ID header or freshly
// generated, and carries it through the context for logging and audit.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"gatepass/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware injects a request ID into the context and echoes it back in the
// response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
