package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_master_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "event_master_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_master_registrations_total",
			Help: "Registration operations by action and outcome",
		},
		[]string{"action", "status"},
	)

	Logins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_master_logins_total",
			Help: "Login attempts by role and outcome",
		},
		[]string{"role", "status"},
	)

	Feedback = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_master_feedback_total",
			Help: "Feedback submissions by outcome",
		},
		[]string{"status"},
	)

	DashboardJobs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "event_master_dashboard_jobs_total",
			Help: "Dashboard refresh jobs by outcome",
		},
		[]string{"status"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_master_queue_depth",
			Help: "Pending jobs per Redis list",
		},
		[]string{"queue"},
	)
)

// Outcome label values.
const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
	StatusRejected  = "rejected"
	StatusError     = "error"
	StatusRetried   = "retried"
)

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
