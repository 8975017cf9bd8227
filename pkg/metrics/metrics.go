package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthDecisions counts guard outcomes by required permission and result code
	// (authorized or one of the failure codes).
	AuthDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeshop_auth_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"permission", "result"},
	)

	// DrinkOperations counts data-access calls by operation and outcome (ok|not_found|invalid|error).
	DrinkOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coffeeshop_drink_operations_total",
			Help: "Total number of drink storage operations",
		},
		[]string{"operation", "result"},
	)

	// CatalogSize tracks the number of drinks currently on the menu.
	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coffeeshop_catalog_drinks",
			Help: "Number of drinks on the menu",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coffeeshop_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
