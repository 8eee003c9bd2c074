package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "voice_translator"

// Prometheus holds the collectors scraped from /metrics.
type Prometheus struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	translations *prometheus.CounterVec
	events       *prometheus.CounterVec
}

// NewPrometheus creates a private registry with Go runtime and process
// collectors plus the service's own metrics.
func NewPrometheus() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route, and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Translation attempts by provider and outcome.",
		}, []string{"provider", "outcome"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "usage_events_total",
			Help:      "Usage events by type.",
		}, []string{"type"}),
	}

	p.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		p.httpRequests,
		p.httpDuration,
		p.translations,
		p.events,
	)

	return p
}

// Registry exposes the registry for tests and extra collectors.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// ObserveHTTP records one served request.
func (p *Prometheus) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// CountTranslation records one provider attempt. outcome is "success" or "error".
func (p *Prometheus) CountTranslation(provider, outcome string) {
	p.translations.WithLabelValues(provider, outcome).Inc()
}

// CountEvent records one usage event.
func (p *Prometheus) CountEvent(eventType string) {
	p.events.WithLabelValues(eventType).Inc()
}
