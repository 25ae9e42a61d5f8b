package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics records metadata for report refreshes and export jobs.
type ReportMetrics struct {
	refreshSuccess *prometheus.CounterVec
	refreshFailure *prometheus.CounterVec
	exportDuration *prometheus.HistogramVec
	exportSuccess  *prometheus.CounterVec
	exportFailure  *prometheus.CounterVec
}

// NewReportMetrics registers the reporting metrics on the provided registerer.
func NewReportMetrics(reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		return &ReportMetrics{}
	}
	refreshSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_refresh_success",
		Help: "Successful report auto-refresh ticks.",
	}, []string{"report"})
	refreshFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_refresh_failure",
		Help: "Failed report auto-refresh ticks.",
	}, []string{"report"})
	exportDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "export_job_duration_seconds",
		Help:    "Duration of report export jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"format"})
	exportSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_job_success",
		Help: "Export jobs that reached completed.",
	}, []string{"format"})
	exportFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_job_failure",
		Help: "Export jobs that reached failed.",
	}, []string{"format"})
	reg.MustRegister(refreshSuccess, refreshFailure, exportDuration, exportSuccess, exportFailure)
	return &ReportMetrics{
		refreshSuccess: refreshSuccess,
		refreshFailure: refreshFailure,
		exportDuration: exportDuration,
		exportSuccess:  exportSuccess,
		exportFailure:  exportFailure,
	}
}

// IncRefreshSuccess increments the refresh success counter for the report.
func (m *ReportMetrics) IncRefreshSuccess(report string) {
	if m == nil || m.refreshSuccess == nil {
		return
	}
	m.refreshSuccess.WithLabelValues(normalizeLabel(report)).Inc()
}

// IncRefreshFailure increments the refresh failure counter for the report.
func (m *ReportMetrics) IncRefreshFailure(report string) {
	if m == nil || m.refreshFailure == nil {
		return
	}
	m.refreshFailure.WithLabelValues(normalizeLabel(report)).Inc()
}

// ObserveExportDuration records how long an export job ran.
func (m *ReportMetrics) ObserveExportDuration(format string, duration time.Duration) {
	if m == nil || m.exportDuration == nil {
		return
	}
	m.exportDuration.WithLabelValues(normalizeLabel(format)).Observe(duration.Seconds())
}

// IncExportSuccess increments the export success counter for the format.
func (m *ReportMetrics) IncExportSuccess(format string) {
	if m == nil || m.exportSuccess == nil {
		return
	}
	m.exportSuccess.WithLabelValues(normalizeLabel(format)).Inc()
}

// IncExportFailure increments the export failure counter for the format.
func (m *ReportMetrics) IncExportFailure(format string) {
	if m == nil || m.exportFailure == nil {
		return
	}
	m.exportFailure.WithLabelValues(normalizeLabel(format)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
