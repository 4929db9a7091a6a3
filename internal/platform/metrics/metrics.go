package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{
	0.005, 0.01, 0.025, 0.05,
	0.1, 0.25, 0.5,
	1, 2.5, 5, 10, 30,
}

type Collector struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	webhookCalls    *prometheus.CounterVec
	webhookLatency  *prometheus.HistogramVec
	activeWorkspace prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of portal HTTP requests broken down by method and status class.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "http",
			Name:      "latency_seconds",
			Help:      "Latency distribution for portal HTTP requests.",
			Buckets:   latencyBuckets,
		}, []string{"method"}),
		webhookCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "portal",
			Subsystem: "webhook",
			Name:      "calls_total",
			Help:      "Total number of outbound webhook calls broken down by endpoint and result.",
		}, []string{"endpoint", "result"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "portal",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency distribution for outbound webhook calls.",
			Buckets:   latencyBuckets,
		}, []string{"endpoint"}),
		activeWorkspace: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "portal",
			Name:      "active_workspaces",
			Help:      "Number of signed-in sessions holding form state.",
		}),
	}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpLatency,
		c.webhookCalls,
		c.webhookLatency,
		c.activeWorkspace,
	)
	return c
}

func (c *Collector) Record(method string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(method, statusClass(status)).Inc()
	c.httpLatency.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordWebhook tracks one outbound call. result is "ok", "rejected" or "transport".
func (c *Collector) RecordWebhook(endpoint, result string, duration time.Duration) {
	if c == nil {
		return
	}
	c.webhookCalls.WithLabelValues(endpoint, result).Inc()
	c.webhookLatency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (c *Collector) SetActiveWorkspaces(n int) {
	if c == nil {
		return
	}
	c.activeWorkspace.Set(float64(n))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return strconv.Itoa(status)
	}
	return strconv.Itoa(status/100) + "xx"
}
