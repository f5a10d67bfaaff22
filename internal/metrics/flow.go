package metrics

import "github.com/prometheus/client_golang/prometheus"

// Flow-level Prometheus metrics, one label value per orchestrated flow
// (ingest, search, chat, train).
var (
	FlowDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "knowsprint",
			Name:      "flow_duration_seconds",
			Help:      "End-to-end flow duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"flow"},
	)

	FlowRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "knowsprint",
			Name:      "flow_requests_total",
			Help:      "Total number of flow executions",
		},
		[]string{"flow", "status"},
	)
)

var flowMetricsRegistered bool

// RegisterFlowMetrics registers flow metrics. Must be called once from main.
func RegisterFlowMetrics() {
	if flowMetricsRegistered {
		return
	}
	prometheus.MustRegister(FlowDuration)
	prometheus.MustRegister(FlowRequestsTotal)
	flowMetricsRegistered = true
}
