package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for ledger operations.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomePartial = "partial"
	OutcomeSkipped = "skipped"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ledger metrics
	LedgerOperationsTotal    *prometheus.CounterVec
	LedgerOperationDuration  *prometheus.HistogramVec
	LedgerCompensationsTotal *prometheus.CounterVec

	// Reconciliation metrics
	ReconcileScannedTotal  *prometheus.CounterVec
	ReconcileRepairedTotal *prometheus.CounterVec

	// AI suggestion metrics
	AIFallbacksTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			LedgerOperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_operations_total",
					Help: "Total number of like/follow ledger operations by outcome",
				},
				[]string{"operation", "outcome"},
			),
			LedgerOperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "ledger_operation_duration_seconds",
					Help:    "Ledger operation latency in seconds",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"operation"},
			),
			LedgerCompensationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ledger_compensations_total",
					Help: "Reversals of a first write after the second write of a follow failed",
				},
				[]string{"operation", "outcome"},
			),
			ReconcileScannedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reconcile_documents_scanned_total",
					Help: "Documents inspected by counter reconciliation",
				},
				[]string{"collection"},
			),
			ReconcileRepairedTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reconcile_documents_repaired_total",
					Help: "Documents whose counters or membership sets were repaired",
				},
				[]string{"collection"},
			),
			AIFallbacksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "ai_fallbacks_total",
					Help: "AI suggestions served from hardcoded fallbacks",
				},
				[]string{"kind"},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
