package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for BookingCart
type MetricsRegistry struct {
	// HTTP Metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight *prometheus.GaugeVec

	// Upstream (Duffel) Metrics
	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec

	// Cache Metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Business Metrics
	OffersNormalizedTotal    prometheus.Counter
	OffersDroppedTotal       *prometheus.CounterVec
	VisaClassificationsTotal *prometheus.CounterVec
	ApplicationsTotal        *prometheus.CounterVec
	ApplicationsByStatus     *prometheus.GaugeVec
	ApplicationEventsTotal   *prometheus.CounterVec
}

// NewMetricsRegistry registers every metric on reg. The server passes
// prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry().
func NewMetricsRegistry(reg prometheus.Registerer) *MetricsRegistry {
	factory := promauto.With(reg)

	return &MetricsRegistry{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookingcart_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bookingcart_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		// Upstream Metrics
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_upstream_requests_total",
				Help: "Total requests sent to the flight provider by endpoint and status code",
			},
			[]string{"endpoint", "status_code"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookingcart_upstream_request_duration_seconds",
				Help:    "Flight provider request latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
			},
			[]string{"endpoint"},
		),

		// Cache Metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_cache_hits_total",
				Help: "Total cache hits by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_cache_misses_total",
				Help: "Total cache misses by cache key pattern",
			},
			[]string{"cache_key_pattern"},
		),

		// Business Metrics
		OffersNormalizedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "bookingcart_offers_normalized_total",
				Help: "Total flight offers normalized into display records",
			},
		),
		OffersDroppedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_offers_dropped_total",
				Help: "Flight offers dropped during normalization by reason",
			},
			[]string{"reason"},
		),
		VisaClassificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_visa_classifications_total",
				Help: "Visa requirement lookups by resulting category",
			},
			[]string{"category"},
		),
		ApplicationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_visa_applications_total",
				Help: "Visa application store operations by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		ApplicationsByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "bookingcart_visa_applications_by_status",
				Help: "Stored visa applications per status, refreshed by the stats job",
			},
			[]string{"status"},
		),
		ApplicationEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookingcart_visa_application_events_total",
				Help: "Application events published and consumed by type and outcome",
			},
			[]string{"type", "outcome"},
		),
	}
}
