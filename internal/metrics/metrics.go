package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the operations backend.
type MetricsRegistry struct {
	// HTTP metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Pipeline metrics
	BidsCreatedTotal       prometheus.Counter
	BidsExpiredTotal       prometheus.Counter
	PirepsAdjudicatedTotal prometheus.CounterVec
	SettlementsTotal       prometheus.CounterVec
	SettlementDuration     prometheus.Histogram
	RepairsTotal           prometheus.CounterVec
	VaultBalance           prometheus.Gauge
	AircraftGrounded       prometheus.Gauge
}

// NewMetricsRegistry initializes and returns a new MetricsRegistry
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		HTTPRequestsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "levantops_http_requests_total",
				Help: "Total HTTP requests processed by endpoint, method, and status code",
			},
			[]string{"endpoint", "method", "status_code"},
		),
		HTTPRequestDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "levantops_http_request_duration_seconds",
				Help:    "HTTP request latency distribution in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"endpoint", "method"},
		),
		HTTPRequestsInFlight: *promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "levantops_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"endpoint"},
		),

		BidsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "levantops_bids_created_total",
				Help: "Total flight bids created",
			},
		),
		BidsExpiredTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "levantops_bids_expired_total",
				Help: "Total bids transitioned to expired",
			},
		),
		PirepsAdjudicatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "levantops_pireps_adjudicated_total",
				Help: "PIREP adjudication decisions by outcome and channel",
			},
			[]string{"outcome", "channel"},
		),
		SettlementsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "levantops_settlements_total",
				Help: "Settlement attempts by result",
			},
			[]string{"result"},
		),
		SettlementDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "levantops_settlement_duration_seconds",
				Help:    "Settlement transaction duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		RepairsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "levantops_repairs_total",
				Help: "Repair actions by tier and result",
			},
			[]string{"tier", "result"},
		),
		VaultBalance: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "levantops_vault_balance_credits",
				Help: "Current airline vault balance in credits",
			},
		),
		AircraftGrounded: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "levantops_aircraft_grounded",
				Help: "Number of currently grounded aircraft",
			},
		),
	}
}
