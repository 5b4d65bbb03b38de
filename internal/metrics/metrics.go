// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the service collectors behind a private registry so tests
// can build as many instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Uploads         *prometheus.CounterVec
	UploadBytes     *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "uploads_total",
				Help: "Upload attempts by kind and result",
			},
			[]string{"kind", "result"},
		),
		UploadBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "upload_bytes_total",
				Help: "Bytes written to disk by accepted uploads",
			},
			[]string{"kind"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Upload notifications by notifier and result",
			},
			[]string{"notifier", "result"},
		),
	}

	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDuration,
		m.Uploads,
		m.UploadBytes,
		m.Notifications,
	)
	return m
}

// ObserveUpload records the outcome of one ingestion attempt.
func (m *Metrics) ObserveUpload(kind, result string, size int64) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(kind, result).Inc()
	if result == "ok" && size > 0 {
		m.UploadBytes.WithLabelValues(kind).Add(float64(size))
	}
}

// ObserveNotification records the outcome of one notifier delivery.
func (m *Metrics) ObserveNotification(notifier string, delivered bool) {
	if m == nil {
		return
	}
	result := "failed"
	if delivered {
		result = "delivered"
	}
	m.Notifications.WithLabelValues(notifier, result).Inc()
}

// Middleware records request count and latency keyed by the matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestCounter.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the private registry together with the default gatherer,
// which carries the Go/process collectors and those registered by libraries
// such as the gorm plugin.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.Gatherers{m.registry, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError},
	)
}
