package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "threadly"

// Metrics holds the collectors for publish outcomes on a private registry.
type Metrics struct {
	registry  *prometheus.Registry
	publishes *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	accessLog prometheus.Counter
}

// New creates the collectors and registers them, together with the Go and
// process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_requests_total",
			Help:      "Webhook publish attempts by outcome.",
		}, []string{"reason", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "publish_duration_seconds",
			Help:      "Time spent handling a publish attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"reason"}),
		accessLog: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "access_log_failures_total",
			Help:      "Access log writes that failed after a message was stored.",
		}),
	}

	m.registry.MustRegister(
		m.publishes,
		m.duration,
		m.accessLog,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObservePublish records one finished publish attempt.
func (m *Metrics) ObservePublish(reason string, status int, d time.Duration) {
	m.publishes.WithLabelValues(reason, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(reason).Observe(d.Seconds())
}

// ObserveAccessLogFailure counts a best-effort access log write that failed.
func (m *Metrics) ObserveAccessLogFailure() {
	m.accessLog.Inc()
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
