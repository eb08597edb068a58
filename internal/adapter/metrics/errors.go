package metrics

import "github.com/prometheus/client_golang/prometheus"

// ErrorMetrics counts error responses by structured error type.
type ErrorMetrics struct {
	Total *prometheus.CounterVec
}

func NewErrorMetrics(reg prometheus.Registerer) *ErrorMetrics {
	m := &ErrorMetrics{
		Total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of error responses, by error type.",
		}, []string{"type"}),
	}
	reg.MustRegister(m.Total)
	return m
}

// Observe is nil-safe so handlers can run without metrics in tests.
func (m *ErrorMetrics) Observe(errorType string) {
	if m == nil {
		return
	}
	m.Total.WithLabelValues(errorType).Inc()
}
