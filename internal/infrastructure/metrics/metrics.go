package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferDuration prometheus.Histogram
	TransferErrors   *prometheus.CounterVec

	// Query metrics
	FanOutAccounts   prometheus.Histogram
	FanOutSubQueries *prometheus.CounterVec

	// Analytics metrics
	StatsCacheOps *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Transfer metrics
		TransfersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_transfers_created_total",
			Help: "Total number of transfers committed",
		}),
		TransferDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerd_transfer_duration_seconds",
			Help:    "Duration of transfer commits",
			Buckets: prometheus.DefBuckets,
		}),
		TransferErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_transfer_errors_total",
				Help: "Total number of transfer errors by type",
			},
			[]string{"error_type"},
		),

		// Query metrics
		FanOutAccounts: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerd_fanout_accounts",
			Help:    "Number of accounts per multi-account query",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000},
		}),
		FanOutSubQueries: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_fanout_sub_queries_total",
				Help: "Per-account sub-queries by outcome",
			},
			[]string{"outcome"},
		),

		// Analytics metrics
		StatsCacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_stats_cache_ops_total",
				Help: "Analytics cache operations by outcome",
			},
			[]string{"outcome"},
		),

		// API metrics
		HTTPRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerd_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerd_http_requests_in_flight",
			Help: "In-flight HTTP requests",
		}),
	}
}
