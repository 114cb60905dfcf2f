// Package metrics registers the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SamplesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locator_samples_received_total",
		Help: "The total number of position and heading samples received",
	}, []string{"kind"})

	SamplesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locator_samples_rejected_total",
		Help: "The total number of malformed samples rejected before the engine",
	}, []string{"kind"})

	VisibilityComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "locator_visibility_computations_total",
		Help: "The total number of visibility lists computed",
	})

	VisibleStores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "locator_visible_stores",
		Help:    "Number of stores in each computed visibility list",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
	})

	CatalogStores = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "locator_catalog_stores",
		Help: "The number of stores in the loaded catalog",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "locator_http_requests_total",
		Help: "The total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "locator_http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
