package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ApplicationsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "applications_submitted_total",
			Help: "Total applications accepted",
		},
	)

	ApplicationsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_rejected_total",
			Help: "Total submissions rejected, by reason",
		},
		[]string{"reason"},
	)

	StatusTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "application_status_transitions_total",
			Help: "Total status updates applied, by new status",
		},
		[]string{"status"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification attempts, by kind and result",
		},
		[]string{"kind", "result"},
	)

	AttachmentBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "attachments_stored_bytes",
			Help:    "Size of stored attachments in bytes",
			Buckets: prometheus.ExponentialBuckets(16*1024, 2, 10),
		},
	)

	WorkerJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_worker_jobs_total",
			Help: "Queued notifications handled by the worker, by outcome",
		},
		[]string{"outcome"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status code",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)

	registerOnce sync.Once
)

// Register registers all collectors with the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			ApplicationsSubmittedTotal,
			ApplicationsRejectedTotal,
			StatusTransitionsTotal,
			NotificationsTotal,
			AttachmentBytes,
			WorkerJobsTotal,
			RequestDuration,
		)
	})
}

// IncSubmitted counts an accepted application.
func IncSubmitted() {
	ApplicationsSubmittedTotal.Inc()
}

// IncRejected counts a rejected submission.
func IncRejected(reason string) {
	ApplicationsRejectedTotal.WithLabelValues(reason).Inc()
}

// IncStatusTransition counts a status update to status.
func IncStatusTransition(status string) {
	StatusTransitionsTotal.WithLabelValues(status).Inc()
}

// IncNotification counts a notification attempt; result is "sent" or "failed".
func IncNotification(kind, result string) {
	NotificationsTotal.WithLabelValues(kind, result).Inc()
}

// IncWorkerJob counts a worker job; outcome is received, completed, failed, or dropped.
func IncWorkerJob(outcome string) {
	WorkerJobsTotal.WithLabelValues(outcome).Inc()
}

// ObserveAttachmentBytes records the size of a stored attachment.
func ObserveAttachmentBytes(n int64) {
	if n < 0 {
		n = 0
	}
	AttachmentBytes.Observe(float64(n))
}

// ObserveRequest records request latency. Unmatched routes share one label.
func ObserveRequest(route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	RequestDuration.WithLabelValues(route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	Register()
	return gin.WrapH(promhttp.Handler())
}
