// Package metrics exposes Prometheus metrics for certificate checks,
// scheduled push runs and the HTTP service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	prometheus.MustRegister(
		ChecksTotal,
		CheckErrorsTotal,
		CheckDuration,
		CertificateDaysUntilExpiry,
		CertificateExpirySeconds,
		BatchDuration,
		NotificationsTotal,
		PushRunsTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		AgentInfo,
		DomainsWatched,
	)
}

var (
	// Check metrics

	// ChecksTotal counts completed checks by resulting state
	ChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certcheck",
		Name:      "checks_total",
		Help:      "Total number of certificate checks by resulting state",
	}, []string{"state"})

	// CheckErrorsTotal counts checks that ended without a result
	CheckErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "certcheck",
		Name:      "check_errors_total",
		Help:      "Total number of checks aborted without a result",
	})

	// CheckDuration tracks the wall-clock time of a single check
	CheckDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "certcheck",
		Name:      "check_duration_seconds",
		Help:      "Duration of a single certificate check in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// CertificateDaysUntilExpiry tracks remaining days per domain
	CertificateDaysUntilExpiry = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certcheck",
		Name:      "certificate_days_until_expiry",
		Help:      "Days until the certificate served by the domain expires",
	}, []string{"domain"})

	// CertificateExpirySeconds tracks certificate expiry as Unix timestamp
	CertificateExpirySeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certcheck",
		Name:      "certificate_expiry_seconds",
		Help:      "Unix timestamp of certificate expiry",
	}, []string{"domain"})

	// BatchDuration tracks the duration of a whole batch
	BatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "certcheck",
		Name:      "batch_duration_seconds",
		Help:      "Duration of a batch of certificate checks in seconds",
		Buckets:   prometheus.DefBuckets,
	})

	// Push metrics

	// NotificationsTotal counts push notification deliveries
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certcheck",
		Name:      "notifications_total",
		Help:      "Total number of push notifications by delivery status",
	}, []string{"status"})

	// PushRunsTotal counts scheduled runs
	PushRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certcheck",
		Name:      "push_runs_total",
		Help:      "Total number of scheduled check runs",
	}, []string{"status"})

	// DomainsWatched tracks the size of the last scheduled batch
	DomainsWatched = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "certcheck",
		Name:      "domains_watched",
		Help:      "Number of domains checked by the last scheduled run",
	})

	// HTTP metrics

	// HTTPRequestsTotal counts HTTP requests served
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "certcheck",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks HTTP request duration
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "certcheck",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// AgentInfo provides build metadata
	AgentInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "certcheck",
		Name:      "info",
		Help:      "Build information",
	}, []string{"version", "mode"})
)
