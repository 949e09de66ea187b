package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the zone transition engine.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Rejections  *prometheus.CounterVec
	Conflicts   prometheus.Counter
	DwellMins   prometheus.Counter
}

// New creates and registers occupancy metrics.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_zone_transitions_total",
			Help: "Committed zone transitions by action",
		}, []string{"action"}),
		Rejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_scan_rejections_total",
			Help: "Rejected scans by reason code",
		}, []string{"reason"}),
		Conflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_scan_conflicts_total",
			Help: "Scans that lost a concurrent conditional update",
		}),
		DwellMins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_dwell_minutes_recognized_total",
			Help: "Dwell minutes credited across all exits",
		}),
	}
}
