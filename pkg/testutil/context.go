package testutil

import (
	"net/http"
	"time"

	"gatepass/pkg/requestcontext"
)

// WithStaffID adds a staff subject to the request context, simulating what
// the auth middleware does for authenticated admin requests.
func WithStaffID(req *http.Request, staffID string) *http.Request {
	return req.WithContext(requestcontext.WithStaffID(req.Context(), staffID))
}

// WithRequestTime pins the request time so transition timestamps and expiry
// math are deterministic.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
