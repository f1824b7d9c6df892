// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "doclink"

// Metrics owns a private registry so tests and multiple servers do not
// collide on the global one.
type Metrics struct {
	reg *prometheus.Registry

	LinkEvents  *prometheus.CounterVec
	Jobs        *prometheus.CounterVec
	JobDuration prometheus.Histogram
	Requests    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		LinkEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "link_events_total",
			Help:      "Auto-link lifecycle events by kind (created, removed, changed).",
		}, []string{"kind"}),
		Jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Finished linkify jobs by final status.",
		}, []string{"status"}),
		JobDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time from job pickup to result.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
	}

	bootTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "boot_time",
		Help:      "Server startup time",
	})
	bootTime.Set(float64(time.Now().UnixMilli()))

	m.reg.MustRegister(
		m.LinkEvents, m.Jobs, m.JobDuration, m.Requests, bootTime,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveLinkEvent counts one link lifecycle event.
func (m *Metrics) ObserveLinkEvent(kind string) {
	m.LinkEvents.WithLabelValues(kind).Inc()
}

// ObserveJob records a finished job.
func (m *Metrics) ObserveJob(status string, d time.Duration) {
	m.Jobs.WithLabelValues(status).Inc()
	m.JobDuration.Observe(d.Seconds())
}

// ObserveRequest counts one served HTTP request.
func (m *Metrics) ObserveRequest(method string, code int) {
	m.Requests.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

// GaugeFunc exposes a value sampled at scrape time.
func (m *Metrics) GaugeFunc(name, help string, fn func() float64) error {
	return m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, fn))
}

// Registry exposes the registry for tests and extra collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
