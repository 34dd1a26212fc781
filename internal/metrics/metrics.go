// Package metrics exposes Prometheus counters for the HTTP API and the
// backup pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loteamento_http_requests_total",
		Help: "HTTP requests by method, route and status code",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "loteamento_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ActivityRecords counts audit writes by action and result (ok|error).
	ActivityRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loteamento_activity_records_total",
		Help: "Activity log writes by action and result",
	}, []string{"action", "result"})

	BackupOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "loteamento_backup_operations_total",
		Help: "Backup export, import and reset operations by result",
	}, []string{"operation", "result"})

	BackupBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "loteamento_backup_bytes_written_total",
		Help: "Bytes written to backup storage",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// Result maps an error to the result label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
