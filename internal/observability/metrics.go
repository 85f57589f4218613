package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec

	progressUpdatesTotal       *prometheus.CounterVec
	eligibilityChecksTotal     *prometheus.CounterVec
	certificatesIssuedTotal    *prometheus.CounterVec
	certificateVerifyTotal     *prometheus.CounterVec
	notificationsPublished     *prometheus.CounterVec
	sseClientsActive           prometheus.Gauge
	uploadRequestsTotal        *prometheus.CounterVec
	uploadRejectedTotal        *prometheus.CounterVec
	uploadLatencySecondsHisto  prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credentia_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		progressUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_progress_updates_total",
			Help: "Total number of module completions recorded.",
		}, []string{"policy_kind"})

		eligibilityChecksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_eligibility_checks_total",
			Help: "Total number of eligibility evaluations by policy kind and outcome.",
		}, []string{"policy_kind", "outcome"})

		certificatesIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_certificates_issued_total",
			Help: "Total number of certificates issued.",
		}, []string{"policy_kind"})

		certificateVerifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_certificate_verifications_total",
			Help: "Total number of public certificate verifications by result.",
		}, []string{"result"})

		notificationsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_notifications_published_total",
			Help: "Total number of notifications published by type.",
		}, []string{"type"})

		sseClientsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "credentia_sse_clients_active",
			Help: "Number of currently connected SSE clients.",
		})

		uploadRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_upload_requests_total",
			Help: "Total number of accepted material uploads by detected type.",
		}, []string{"type"})

		uploadRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "credentia_upload_rejected_total",
			Help: "Total number of rejected material uploads by reason.",
		}, []string{"reason"})

		uploadLatencySecondsHisto = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "credentia_upload_latency_seconds",
			Help:    "Latency distribution for material uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		prometheus.MustRegister(
			httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			progressUpdatesTotal, eligibilityChecksTotal,
			certificatesIssuedTotal, certificateVerifyTotal,
			notificationsPublished, sseClientsActive,
			uploadRequestsTotal, uploadRejectedTotal, uploadLatencySecondsHisto,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ProgressUpdates exposes the counter for recorded module completions.
func ProgressUpdates() *prometheus.CounterVec {
	RegisterMetrics()
	return progressUpdatesTotal
}

// EligibilityChecks exposes the counter for eligibility evaluations.
func EligibilityChecks() *prometheus.CounterVec {
	RegisterMetrics()
	return eligibilityChecksTotal
}

// CertificatesIssued exposes the counter for issued certificates.
func CertificatesIssued() *prometheus.CounterVec {
	RegisterMetrics()
	return certificatesIssuedTotal
}

// CertificateVerifications exposes the counter for public verifications.
func CertificateVerifications() *prometheus.CounterVec {
	RegisterMetrics()
	return certificateVerifyTotal
}

// NotificationsPublishedTotal exposes the counter for published notifications.
func NotificationsPublishedTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return notificationsPublished
}

// SSEClientsActive exposes the gauge for connected SSE clients.
func SSEClientsActive() prometheus.Gauge {
	RegisterMetrics()
	return sseClientsActive
}

// UploadRequests exposes the counter for accepted uploads.
func UploadRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRequestsTotal
}

// UploadRejected exposes the counter for rejected uploads.
func UploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadRejectedTotal
}

// UploadLatency exposes the histogram for upload latency.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySecondsHisto
}
