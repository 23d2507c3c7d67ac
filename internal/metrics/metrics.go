package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_http_requests_total",
		Help: "HTTP requests served, by route pattern and status code",
	}, []string{"route", "method", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "station_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ReportBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "station_report_build_duration_seconds",
		Help:    "Time spent querying and folding a report",
		Buckets: prometheus.DefBuckets,
	}, []string{"report", "view"})

	ReportErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_report_errors_total",
		Help: "Reports that failed to build",
	}, []string{"report"})

	ReportRows = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "station_report_rows",
		Help:    "Rows returned per report build",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"report"})

	PermissionDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_permission_denied_total",
		Help: "Report requests rejected by the permission check",
	}, []string{"report"})

	SettingsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "station_settings_cache_lookups_total",
		Help: "System settings cache lookups",
	}, []string{"result"})
)

// ObserveReport returns a completion func recording how long the named
// report took and whether it failed.
func ObserveReport(report, view string) func(rows int, err error) {
	start := time.Now()
	return func(rows int, err error) {
		ReportBuildDuration.WithLabelValues(report, view).Observe(time.Since(start).Seconds())
		if err != nil {
			ReportErrorsTotal.WithLabelValues(report).Inc()
			return
		}
		ReportRows.WithLabelValues(report).Observe(float64(rows))
	}
}

func ObserveHTTP(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}
