package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PlayRequests counts participant requests by operation and outcome
	PlayRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "play_requests_total",
			Help: "Participant play requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // outcome: ok, not_eligible, credits_exhausted, invalid, not_found, error
	)

	// PlayDuration tracks the latency of participant requests
	PlayDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "play_duration_seconds",
			Help: "Duration of participant play requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
			},
		},
		[]string{"operation"},
	)

	// DroppedEvents counts live events discarded because a subscriber was too slow
	DroppedEvents = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "play_events_dropped_total",
			Help: "Live play events dropped for slow subscribers",
		},
	)
)

// RecordPlay records one participant request
func RecordPlay(operation, outcome string, duration float64) {
	PlayRequests.WithLabelValues(operation, outcome).Inc()
	PlayDuration.WithLabelValues(operation).Observe(duration)
}
