// prometheus.go - Prometheus metrics exporter
package server

import (
	"fmt"
	"net/http"
	"strings"
)

// PrometheusExporter converts internal metrics to Prometheus text format.
type PrometheusExporter struct {
	version string
	active  func() int // live session gauge
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(version string, activeSessions func() int) *PrometheusExporter {
	return &PrometheusExporter{version: version, active: activeSessions}
}

// Handler returns an HTTP handler for the /metrics endpoint
func (p *PrometheusExporter) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		snapshot := GetMetrics().Snapshot()

		var output strings.Builder

		output.WriteString("# HELP dd_info Application version info\n")
		output.WriteString("# TYPE dd_info gauge\n")
		output.WriteString(fmt.Sprintf("dd_info{version=%q} 1\n\n", p.version))

		writeCounter(&output, "dd_requests_total", "Total number of HTTP requests", snapshot.RequestsTotal)
		writeCounter(&output, "dd_request_errors_4xx_total", "Total client-error responses", snapshot.RequestErrors4xx)
		writeCounter(&output, "dd_request_errors_5xx_total", "Total server-error responses", snapshot.RequestErrors5xx)

		writeCounter(&output, "dd_login_attempts_total", "Total login attempts", snapshot.LoginAttemptsTotal)
		writeCounter(&output, "dd_login_success_total", "Total successful logins", snapshot.LoginSuccessTotal)
		writeCounter(&output, "dd_login_failures_total", "Total failed logins", snapshot.LoginFailuresTotal)
		writeCounter(&output, "dd_signups_total", "Total client signups", snapshot.SignupsTotal)
		writeCounter(&output, "dd_verifications_total", "Total completed email verifications", snapshot.VerificationsTotal)

		writeCounter(&output, "dd_uploads_total", "Total stored file uploads", snapshot.UploadsTotal)
		writeCounter(&output, "dd_upload_errors_total", "Total rejected or failed uploads", snapshot.UploadErrorsTotal)
		writeCounter(&output, "dd_file_lists_total", "Total file listings served", snapshot.ListsTotal)

		if p.active != nil {
			output.WriteString("# HELP dd_active_sessions Current live sessions\n")
			output.WriteString("# TYPE dd_active_sessions gauge\n")
			output.WriteString(fmt.Sprintf("dd_active_sessions %d\n", p.active()))
		}

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(output.String()))
	}
}

func writeCounter(sb *strings.Builder, name, help string, value int64) {
	sb.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	sb.WriteString(fmt.Sprintf("# TYPE %s counter\n", name))
	sb.WriteString(fmt.Sprintf("%s %d\n\n", name, value))
}
