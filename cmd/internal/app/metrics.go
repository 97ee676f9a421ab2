package app

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects client-side counters on a private registry.
// It satisfies the observer hooks of the interceptor, the session guard,
// the request client and the stub HTTP middleware.
type Metrics struct {
	reg *prometheus.Registry

	requests      *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	refreshes     *prometheus.CounterVec
	logouts       prometheus.Counter
	notifications *prometheus.CounterVec
	served        *prometheus.CounterVec
}

// NewMetrics registers every collector, plus Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiring",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "API attempts by method and status class (0xx for transport failures).",
		}, []string{"method", "class"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hiring",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "API attempt latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiring",
			Subsystem: "auth",
			Name:      "refresh_total",
			Help:      "Silent refresh attempts by outcome.",
		}, []string{"outcome"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hiring",
			Subsystem: "auth",
			Name:      "forced_logouts_total",
			Help:      "Forced logouts that issued a navigation.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiring",
			Subsystem: "realtime",
			Name:      "notifications_total",
			Help:      "Notifications received by kind.",
		}, []string{"kind"}),
		served: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hiring",
			Subsystem: "stub",
			Name:      "http_requests_total",
			Help:      "Requests served by the stub backend by status class.",
		}, []string{"method", "class"}),
	}
	m.reg.MustRegister(
		m.requests, m.latency, m.refreshes, m.logouts, m.notifications, m.served,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest implements apiclient.Observer.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, statusClass(status)).Inc()
	m.latency.WithLabelValues(method).Observe(elapsed.Seconds())
}

// RefreshAttempt implements interceptor.Observer.
func (m *Metrics) RefreshAttempt(outcome string) {
	m.refreshes.WithLabelValues(outcome).Inc()
}

// ForcedLogout implements session.LogoutObserver.
func (m *Metrics) ForcedLogout() { m.logouts.Inc() }

// Notification counts one received notification.
func (m *Metrics) Notification(kind string) {
	if kind == "" {
		kind = "unknown"
	}
	m.notifications.WithLabelValues(kind).Inc()
}

// ObserveServed counts one request answered by the stub server.
func (m *Metrics) ObserveServed(method string, status int) {
	m.served.WithLabelValues(method, statusClass(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "0xx"
	}
	return strconv.Itoa(status/100) + "xx"
}
