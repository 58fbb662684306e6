// Package metrics exposes Prometheus collectors for the HTTP layer and the
// CRM sync pipeline.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	syncRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_sync_records_total",
			Help: "CRM records processed by the sync endpoints",
		},
		[]string{"operation", "outcome"},
	)

	leadTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_status_transitions_total",
			Help: "Lead status transitions applied from CRM updates",
		},
		[]string{"transition"},
	)

	orderConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_cadence_order_conflicts_total",
			Help: "Order allocations retried after a concurrent insert took the same slot",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of errors calling external collaborators",
		},
		[]string{"service"},
	)
)

// Middleware records request count and latency per route template so that
// path parameters (e.g. the CRM name) don't explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordSyncRecord counts one processed CRM record. outcome is "success" or an error kind.
func RecordSyncRecord(operation, outcome string) {
	syncRecords.WithLabelValues(operation, outcome).Inc()
}

// RecordLeadTransition counts an applied lead status transition.
func RecordLeadTransition(transition string) {
	leadTransitions.WithLabelValues(transition).Inc()
}

// RecordOrderConflict counts a retried order allocation.
func RecordOrderConflict() {
	orderConflicts.Inc()
}

// RecordIntegrationError counts a failed call to an external collaborator.
func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
