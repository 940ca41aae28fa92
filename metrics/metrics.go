// Package metrics holds the prometheus collectors shared by the resolver, the
// local service and the trim worker.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolver outcomes.
const (
	OutcomeHit         = "hit"
	OutcomeMiss        = "miss"
	OutcomeError       = "error"
	OutcomePlaceholder = "placeholder"
)

var (
	// DurationLookups counts duration lookups per source and outcome.
	DurationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trimline_duration_lookups_total",
		Help: "Duration discovery attempts by source and outcome",
	}, []string{"source", "outcome"})

	// HTTPRequests counts requests served by the local service.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trimline_http_requests_total",
		Help: "HTTP requests served by route, method and status code",
	}, []string{"route", "method", "code"})

	// ProbeDuration tracks how long ffprobe takes per asset.
	ProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trimline_probe_duration_seconds",
		Help:    "Time spent probing media duration with ffprobe",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})

	// TrimJobs counts trim jobs by final status.
	TrimJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trimline_trim_jobs_total",
		Help: "Trim jobs processed by status",
	}, []string{"status"})

	// TrimJobsQueued is the number of trim jobs waiting for the worker.
	TrimJobsQueued = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trimline_trim_jobs_queued",
		Help: "Trim jobs waiting to be processed",
	})
)

// RecordDurationLookup records one resolver source attempt.
func RecordDurationLookup(source, outcome string) {
	DurationLookups.WithLabelValues(source, outcome).Inc()
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(route, method string, code int) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

// ObserveProbeDuration records one ffprobe run.
func ObserveProbeDuration(d time.Duration) {
	ProbeDuration.Observe(d.Seconds())
}

// RecordTrimJob records a finished trim job.
func RecordTrimJob(status string) {
	TrimJobs.WithLabelValues(status).Inc()
}
