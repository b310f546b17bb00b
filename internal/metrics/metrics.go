// Package metrics exposes Prometheus collectors for the release watcher.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal            *prometheus.CounterVec
	releasesDetectedTotal  *prometheus.CounterVec
	sourceFailuresTotal    *prometheus.CounterVec
	listingRequestDuration prometheus.Histogram

	once sync.Once
)

// Cycle outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeSkipped   = "skipped"
)

// Init registers the collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		cyclesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatcher_cycles_total",
				Help: "Detection cycles run, labeled by outcome.",
			},
			[]string{"outcome"},
		)
		releasesDetectedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatcher_releases_detected_total",
				Help: "New releases detected, labeled by source.",
			},
			[]string{"source"},
		)
		sourceFailuresTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "releasewatcher_source_failures_total",
				Help: "Source checks that failed, labeled by source.",
			},
			[]string{"source"},
		)
		listingRequestDuration = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "releasewatcher_listing_request_duration_seconds",
				Help:    "Latency of build-listing API requests.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)
	})
}

// IncCycle records one detection cycle with the given outcome.
func IncCycle(outcome string) {
	if cyclesTotal != nil {
		cyclesTotal.WithLabelValues(outcome).Inc()
	}
}

// AddReleasesDetected records n new releases from a source.
func AddReleasesDetected(source string, n int) {
	if releasesDetectedTotal != nil && n > 0 {
		releasesDetectedTotal.WithLabelValues(source).Add(float64(n))
	}
}

// IncSourceFailure records a failed source check.
func IncSourceFailure(source string) {
	if sourceFailuresTotal != nil {
		sourceFailuresTotal.WithLabelValues(source).Inc()
	}
}

// ObserveListingRequest records the latency of one listing API request.
func ObserveListingRequest(d time.Duration) {
	if listingRequestDuration != nil {
		listingRequestDuration.Observe(d.Seconds())
	}
}
