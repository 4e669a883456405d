package upload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ode",
		Subsystem: "upload",
		Name:      "requests_total",
		Help:      "Upload requests by kind and result status.",
	}, []string{"kind", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ode",
		Subsystem: "upload",
		Name:      "duration_seconds",
		Help:      "Time spent dispatching an upload, import included.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"kind"})

	discardedParts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ode",
		Subsystem: "upload",
		Name:      "discarded_parts_total",
		Help:      "Parts skipped during extraction, by reason.",
	}, []string{"kind", "reason"})
)
