// Package metrics exposes prometheus instruments for HTTP traffic and
// webhook processing.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Config carries const labels applied to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

func (c Config) constLabels() prometheus.Labels {
	serviceName := strings.TrimSpace(c.ServiceName)
	if serviceName == "" {
		serviceName = "memberhub"
	}
	environment := strings.TrimSpace(c.Environment)
	if environment == "" {
		environment = "unknown"
	}
	return prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}
}

// HTTPMetrics instruments inbound HTTP requests.
type HTTPMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers HTTP instruments on the default registerer.
func NewHTTPMetrics(cfg Config) *HTTPMetrics {
	return newHTTPMetrics(prometheus.DefaultRegisterer, cfg)
}

func newHTTPMetrics(registerer prometheus.Registerer, cfg Config) *HTTPMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := cfg.constLabels()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "memberhub_http_requests_total",
		Help:        "HTTP requests by route and status code.",
		ConstLabels: constLabels,
	}, []string{"method", "route", "status_code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "memberhub_http_request_duration_seconds",
		Help:        "HTTP request latency by route.",
		Buckets:     []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		ConstLabels: constLabels,
	}, []string{"method", "route"})

	registerer.MustRegister(requests, duration)

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
	}
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *HTTPMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		method := c.Request.Method
		m.requests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// WebhookMetrics counts webhook events and issuance side effects.
type WebhookMetrics struct {
	events       *prometheus.CounterVec
	roleSync     *prometheus.CounterVec
	artifactJobs *prometheus.CounterVec
}

// NewWebhookMetrics registers webhook instruments on the default registerer.
func NewWebhookMetrics(cfg Config) *WebhookMetrics {
	return newWebhookMetrics(prometheus.DefaultRegisterer, cfg)
}

func newWebhookMetrics(registerer prometheus.Registerer, cfg Config) *WebhookMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	constLabels := cfg.constLabels()

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "memberhub_webhook_events_total",
		Help:        "Webhook events by event type and outcome.",
		ConstLabels: constLabels,
	}, []string{"event_type", "outcome"})
	roleSync := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "memberhub_role_sync_total",
		Help:        "Discord role sync attempts by operation and outcome.",
		ConstLabels: constLabels,
	}, []string{"operation", "outcome"})
	artifactJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "memberhub_ticket_artifact_jobs_total",
		Help:        "Ticket artifact jobs by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})

	registerer.MustRegister(events, roleSync, artifactJobs)

	return &WebhookMetrics{
		events:       events,
		roleSync:     roleSync,
		artifactJobs: artifactJobs,
	}
}

// RecordEvent increments the webhook event counter.
func (m *WebhookMetrics) RecordEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType, outcome).Inc()
}

// RecordRoleSync increments the role sync counter.
func (m *WebhookMetrics) RecordRoleSync(operation, outcome string) {
	if m == nil {
		return
	}
	m.roleSync.WithLabelValues(operation, outcome).Inc()
}

// RecordArtifactJob increments the artifact job counter.
func (m *WebhookMetrics) RecordArtifactJob(outcome string) {
	if m == nil {
		return
	}
	m.artifactJobs.WithLabelValues(outcome).Inc()
}
