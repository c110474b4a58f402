package app

import (
	"net/http"
	"strconv"
	"time"

	"usersvc/cmd/internal/envelope"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// knownRoutes bounds the route label; anything else is reported as "other".
var knownRoutes = map[string]struct{}{
	"/signup":                  {},
	"/signin":                  {},
	"/signout":                 {},
	"/verify-account":          {},
	"/verify-mfa":              {},
	"/forgot-password":         {},
	"/confirm-forgot-password": {},
	"/profile/save":            {},
	"/profile/get":             {},
	"/healthcheck":             {},
	"/healthz":                 {},
	"/readyz":                  {},
	"/metrics":                 {},
}

func routeLabel(path string) string {
	if _, ok := knownRoutes[path]; ok {
		return path
	}
	return "other"
}

// Metrics holds the process-local Prometheus registry and collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewMetrics creates a registry with Go/process collectors and the HTTP collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usersvc",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "usersvc",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "usersvc",
			Name:      "envelope_outcomes_total",
			Help:      "Response envelopes by route, error code and code class.",
		}, []string{"route", "code", "class"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.duration,
		m.outcomes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveOutcome counts one envelope. An empty code is a success.
func (m *Metrics) ObserveOutcome(route string, code envelope.Code) {
	if m == nil {
		return
	}
	label, class := "OK", "success"
	if code != "" {
		label, class = string(code), envelope.Class(code)
	}
	m.outcomes.WithLabelValues(routeLabel(route), label, class).Inc()
}

// Wrap records request count and latency for next.
func (m *Metrics) Wrap(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		route := routeLabel(r.URL.Path)
		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(lrw.status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
