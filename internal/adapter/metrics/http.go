package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// API calls are dominated by a single Postgres round trip, so the buckets
// stop well below the default 10s.
var httpBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}

type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	InFlightGauge   prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	labels := []string{"method", "route", "status_code"}
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds.",
			Buckets:   httpBuckets,
		}, labels),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "API requests by route and status.",
		}, labels),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "API requests currently being served.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.InFlightGauge)
	return m
}

// unobserved reports routes that are polled by infrastructure rather than
// used by clients.
func unobserved(route string) bool {
	return route == "/metrics" || route == "/status" || strings.HasPrefix(route, "/health/")
}

// Middleware records each request under its route pattern (/lists/:id),
// never the concrete path, so label cardinality stays bounded. It must run
// outside the error middleware to see the final status code.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			if unobserved(route) {
				return next(c)
			}
			if route == "" {
				route = "unmatched"
			}

			m.InFlightGauge.Inc()
			start := time.Now()
			defer func() {
				m.InFlightGauge.Dec()
				labels := []string{c.Request().Method, route, strconv.Itoa(c.Response().Status)}
				m.RequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
				m.RequestsTotal.WithLabelValues(labels...).Inc()
			}()

			return next(c)
		}
	}
}
