// Package metrics exposes Prometheus instrumentation for ledger operations.
package metrics

import (
	"math/big"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics tracks applied and rejected ledger operations and settled payments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	OperationsApplied  *prometheus.CounterVec
	OperationsRejected *prometheus.CounterVec
	ItemsByState       *prometheus.CounterVec
	PaymentsSettled    *prometheus.CounterVec
	WeiSettled         *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		OperationsApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diamondbase_operations_applied_total",
			Help: "Total number of ledger operations that committed",
		}, []string{"operation"}),
		OperationsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diamondbase_operations_rejected_total",
			Help: "Total number of ledger operations rejected, by error kind",
		}, []string{"operation", "kind"}),
		ItemsByState: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diamondbase_item_state_entries_total",
			Help: "Total number of times an item entered each lifecycle state",
		}, []string{"state"}),
		PaymentsSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diamondbase_payments_settled_total",
			Help: "Total number of escrow settlements",
		}, []string{"operation"}),
		WeiSettled: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "diamondbase_wei_settled_total",
			Help: "Total wei forwarded to custodians by escrow settlements",
		}, []string{"operation"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "diamondbase_operation_duration_seconds",
			Help:    "Duration of ledger write operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Applied records a committed operation. State is the state the item
// entered, or empty for operations that do not move an item.
func (m *Metrics) Applied(operation string, state string) {
	if m == nil {
		return
	}
	m.OperationsApplied.WithLabelValues(operation).Inc()
	if state != "" {
		m.ItemsByState.WithLabelValues(state).Inc()
	}
}

// Rejected records an operation that failed with the given error kind.
func (m *Metrics) Rejected(operation, kind string) {
	if m == nil {
		return
	}
	m.OperationsRejected.WithLabelValues(operation, kind).Inc()
}

// Settled records an escrow settlement forwarding price wei.
func (m *Metrics) Settled(operation string, price *big.Int) {
	if m == nil {
		return
	}
	m.PaymentsSettled.WithLabelValues(operation).Inc()
	// Float precision is fine for a monitoring counter.
	f, _ := new(big.Float).SetInt(price).Float64()
	m.WeiSettled.WithLabelValues(operation).Add(f)
}

// ObserveDuration records the duration of an operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDuration(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
