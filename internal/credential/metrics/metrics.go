package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the credential lifecycle.
type Metrics struct {
	Issued           prometheus.Counter
	AutoRenewed      prometheus.Counter
	Redirects        prometheus.Counter
	Claimed          prometheus.Counter
	DispatchFailures prometheus.Counter
}

// New creates and registers credential metrics.
func New() *Metrics {
	return &Metrics{
		Issued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_credentials_issued_total",
			Help: "Total credentials issued, including reissues and auto-renewals",
		}),
		AutoRenewed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_credentials_auto_renewed_total",
			Help: "Credentials transparently reissued during validation of an expired token",
		}),
		Redirects: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_credential_redirects_total",
			Help: "Validations answered with a redirect to a newer token",
		}),
		Claimed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_credentials_claimed_total",
			Help: "Physical badge claims recorded",
		}),
		DispatchFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_credential_dispatch_failures_total",
			Help: "Access link deliveries that failed; issuance itself still succeeded",
		}),
	}
}
