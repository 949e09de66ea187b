// Package httptransport assembles the HTTP router. It owns route layout and
// middleware ordering; the handlers it mounts own their own request handling.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	credentialhandler "gatepass/internal/credential/handler"
	kioskhandler "gatepass/internal/kiosk/handler"
	occupancyhandler "gatepass/internal/occupancy/handler"
	"gatepass/pkg/platform/middleware/auth"
	"gatepass/pkg/platform/middleware/request"
	"gatepass/pkg/platform/middleware/requesttime"
)

// Handlers collects the domain handlers the router mounts.
type Handlers struct {
	Credentials *credentialhandler.Handler
	Occupancy   *occupancyhandler.Handler
	Kiosk       *kioskhandler.Handler
}

// HealthChecker reports dependency health for the readiness endpoint.
type HealthChecker func(r *http.Request) error

// NewRouter wires public, kiosk, and staff endpoints. Staff routes sit behind
// JWT auth; everything shares request ID and request time middleware.
func NewRouter(h Handlers, jwtSigningKey string, health HealthChecker) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Middleware)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if health != nil {
			if err := health(req); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/metrics", promhttp.Handler())

	h.Credentials.Register(r)
	h.Occupancy.Register(r)

	r.Group(func(admin chi.Router) {
		admin.Use(auth.Middleware(jwtSigningKey))
		h.Credentials.RegisterAdmin(admin)
		h.Occupancy.RegisterAdmin(admin)
		h.Kiosk.RegisterAdmin(admin)
	})

	return r
}
