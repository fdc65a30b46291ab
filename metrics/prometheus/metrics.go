// Package prometheus exports play.ht client activity as Prometheus metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "playht"

// Status label values.
const (
	statusSuccess = "success"
	statusError   = "error"
)

var (
	// requestsInFlight counts requests that have been sent but not yet answered.
	requestsInFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Number of API requests awaiting response headers",
		},
		[]string{"operation"},
	)

	// requestDuration measures time to response headers.
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time from sending an API request to receiving its response headers",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"operation"},
	)

	// requestsTotal counts finished requests by outcome.
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"operation", "status"}, // status: HTTP code, or "error" when no response arrived
	)

	// streamChunkBytes is a histogram of chunk sizes read from response bodies.
	streamChunkBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_chunk_bytes",
			Help:      "Size of chunks read from streamed responses",
			Buckets:   prometheus.ExponentialBuckets(256, 2, 9), // 256B .. 64KiB
		},
		[]string{"operation"},
	)

	// streamBytesTotal counts bytes received over streamed responses.
	streamBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_bytes_total",
			Help:      "Total bytes received from streamed responses",
		},
		[]string{"operation"},
	)

	// streamDuration measures the full life of a streamed response.
	streamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stream_duration_seconds",
			Help:      "Time from sending a request to closing its streamed response",
			Buckets:   []float64{.25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	// streamsTotal counts closed streams by outcome.
	streamsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_total",
			Help:      "Total number of streamed responses",
		},
		[]string{"operation", "status"}, // status: success, error
	)

	// progressEventsTotal counts job progress events.
	progressEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_events_total",
			Help:      "Total number of job progress events received",
		},
		[]string{"event", "status"}, // status: success, error (undecodable frame)
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		requestsInFlight,
		requestDuration,
		requestsTotal,
		streamChunkBytes,
		streamBytesTotal,
		streamDuration,
		streamsTotal,
		progressEventsTotal,
	}
)

// RecordRequestStart marks a request as in flight.
func RecordRequestStart(operation string) {
	requestsInFlight.WithLabelValues(operation).Inc()
}

// RecordRequestEnd records a request that got its response, or failed before one arrived.
func RecordRequestEnd(operation, status string, durationSeconds float64) {
	requestsInFlight.WithLabelValues(operation).Dec()
	requestDuration.WithLabelValues(operation).Observe(durationSeconds)
	requestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordChunk records one chunk read from a streamed response.
func RecordChunk(operation string, size int) {
	streamChunkBytes.WithLabelValues(operation).Observe(float64(size))
}

// RecordStream records a closed streamed response.
func RecordStream(operation, status string, bytes int64, durationSeconds float64) {
	if bytes > 0 {
		streamBytesTotal.WithLabelValues(operation).Add(float64(bytes))
	}
	streamDuration.WithLabelValues(operation).Observe(durationSeconds)
	streamsTotal.WithLabelValues(operation, status).Inc()
}

// RecordProgressEvent records one job progress event.
func RecordProgressEvent(event, status string) {
	if event == "" {
		event = "message"
	}
	progressEventsTotal.WithLabelValues(event, status).Inc()
}
