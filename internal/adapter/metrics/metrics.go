// Package metrics owns the Prometheus registry and the collectors the
// adapters report into. Every collector is registered on an injected
// registry so tests can use a fresh one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tasklists"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler returns an http.Handler that serves Prometheus metrics.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Set bundles every collector group the server wires.
type Set struct {
	HTTP   *HTTPMetrics
	Errors *ErrorMetrics
	DB     *DBMetrics
	Redis  *RedisMetrics
	Cache  *CacheMetrics
}

func NewSet(reg prometheus.Registerer) *Set {
	return &Set{
		HTTP:   NewHTTPMetrics(reg),
		Errors: NewErrorMetrics(reg),
		DB:     NewDBMetrics(reg),
		Redis:  NewRedisMetrics(reg),
		Cache:  NewCacheMetrics(reg),
	}
}
