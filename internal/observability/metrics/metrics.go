package metrics

import "github.com/prometheus/client_golang/prometheus"

// APIMetrics exposes counters/histograms for remote PSYCare API calls.
type APIMetrics struct {
	requestsTotal  *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	authRejects    prometheus.Counter
}

func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	m := &APIMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "psycare",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total remote API requests",
		}, []string{"endpoint", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "psycare",
			Subsystem: "api",
			Name:      "request_latency_seconds",
			Help:      "Latency of remote API requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		authRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "psycare",
			Subsystem: "session",
			Name:      "guard_rejects_total",
			Help:      "Actions blocked locally by the session token guard",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.requestLatency, m.authRejects)
	return m
}

func (m *APIMetrics) ObserveRequest(endpoint, status string, seconds float64) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(endpoint, status).Inc()
	m.requestLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *APIMetrics) ObserveGuardReject() {
	if m == nil {
		return
	}
	m.authRejects.Inc()
}
