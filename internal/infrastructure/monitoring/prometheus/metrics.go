package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric the service exports.
type AppMetrics struct {
	// HTTP
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Uploads
	UploadFilesTotal    CounterVec
	UploadClustersTotal CounterVec
	UploadDuration      HistogramVec

	// Sessions and cases
	LoginsTotal      CounterVec
	CaseUpdatesTotal CounterVec

	// Health
	HealthCheckStatus GaugeVec
}

var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultUploadDurationBuckets = []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests")

	m.UploadFilesTotal = collector.RegisterCounter("upload_files_total", "Uploaded files by pipeline outcome", "outcome")
	m.UploadClustersTotal = collector.RegisterCounter("upload_clusters_total", "Duplicate clusters formed by uploads")
	m.UploadDuration = collector.RegisterHistogram("upload_duration_seconds", "Bulk upload processing time", DefaultUploadDurationBuckets)

	m.LoginsTotal = collector.RegisterCounter("session_logins_total", "Login attempts", "result")
	m.CaseUpdatesTotal = collector.RegisterCounter("case_updates_total", "Case record updates", "result")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	return m
}

func (m *AppMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (m *AppMetrics) RecordUploadFiles(outcome string, n int) {
	if n <= 0 {
		return
	}
	m.UploadFilesTotal.WithLabelValues(outcome).Add(float64(n))
}

func (m *AppMetrics) RecordUploadClusters(n int) {
	if n <= 0 {
		return
	}
	m.UploadClustersTotal.WithLabelValues().Add(float64(n))
}

func (m *AppMetrics) ObserveUploadDuration(d time.Duration) {
	m.UploadDuration.WithLabelValues().Observe(d.Seconds())
}

func (m *AppMetrics) RecordLogin(success bool) {
	m.LoginsTotal.WithLabelValues(result(success)).Inc()
}

func (m *AppMetrics) RecordCaseUpdate(success bool) {
	m.CaseUpdatesTotal.WithLabelValues(result(success)).Inc()
}

func (m *AppMetrics) SetHealth(component string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(v)
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
