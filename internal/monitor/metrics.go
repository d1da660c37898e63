package monitor

import "github.com/prometheus/client_golang/prometheus"

// Prometheus monitoring metrics.
var (
	probesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitewatch_probes_total",
			Help: "Total number of probes executed.",
		},
		[]string{"kind", "result"},
	)
	transitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitewatch_status_transitions_total",
			Help: "Total number of entity status transitions.",
		},
		[]string{"kind", "new_status"},
	)
	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitewatch_notifications_total",
			Help: "Total number of notification delivery attempts.",
		},
		[]string{"channel", "status"},
	)
	cycleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitewatch_poll_cycle_duration_seconds",
			Help:    "Duration of full polling cycles in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(probesTotal)
	prometheus.MustRegister(transitionsTotal)
	prometheus.MustRegister(notificationsTotal)
	prometheus.MustRegister(cycleDuration)
}
