package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels recorded for every bucket operation.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
	// OutcomePartial marks a listing that completed but dropped entries.
	OutcomePartial = "partial"
	// OutcomeCancelled marks an operation abandoned through its context.
	OutcomeCancelled = "cancelled"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucket_manager_operations_total",
			Help: "Total number of bucket operations by outcome",
		},
		[]string{"qualifier", "operation", "outcome"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bucket_manager_operation_duration_seconds",
			Help:    "Duration of bucket operations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"qualifier", "operation"},
	)

	registeredBuckets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bucket_manager_registered_buckets",
			Help: "Number of buckets in the active registry",
		},
	)

	listingDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bucket_manager_listing_dropped_total",
			Help: "Listing entries dropped because they could not be decoded",
		},
		[]string{"qualifier"},
	)
)

// ObserveOperation records one finished bucket operation.
func ObserveOperation(qualifier, operation, outcome string, elapsed time.Duration) {
	operationsTotal.WithLabelValues(qualifier, operation, outcome).Inc()
	operationDuration.WithLabelValues(qualifier, operation).Observe(elapsed.Seconds())
}

// SetRegisteredBuckets publishes the registry size.
func SetRegisteredBuckets(n int) {
	registeredBuckets.Set(float64(n))
}

// IncListingDropped counts one undecodable listing entry.
func IncListingDropped(qualifier string) {
	listingDropped.WithLabelValues(qualifier).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
