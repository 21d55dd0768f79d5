package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	codesIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habicasa_verification_codes_total",
		Help: "Verification code issuance attempts by result.",
	}, []string{"result"})

	verificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habicasa_verifications_total",
		Help: "Code verification attempts by result.",
	}, []string{"result"})

	leadsCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "habicasa_leads_captured_total",
		Help: "Total leads captured by allies.",
	})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "habicasa_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "habicasa_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		requestsTotal.WithLabelValues(method, path, status).Inc()
		requestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func recordCodeIssue(result string)    { codesIssuedTotal.WithLabelValues(result).Inc() }
func recordVerification(result string) { verificationsTotal.WithLabelValues(result).Inc() }
func recordLeadCaptured()              { leadsCapturedTotal.Inc() }
