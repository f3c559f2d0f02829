package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Assembly outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// OrderMetrics records checkout and delivery lifecycle activity.
type OrderMetrics struct {
	assemblies  *prometheus.CounterVec
	fees        prometheus.Histogram
	provider    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewOrderMetrics registers the order metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	assemblies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_assembly_total",
		Help: "Order assembly attempts by outcome and error code.",
	}, []string{"outcome", "code"})
	fees := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_delivery_fee",
		Help:    "Delivery fee charged on assembled orders.",
		Buckets: []float64{40, 45, 50, 60, 80, 100, 150, 200, 300},
	})
	provider := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maps_request_duration_seconds",
		Help:    "Latency of Google Maps routing requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Delivery status transitions applied.",
	}, []string{"from", "to"})
	reg.MustRegister(assemblies, fees, provider, transitions)
	return &OrderMetrics{
		assemblies:  assemblies,
		fees:        fees,
		provider:    provider,
		transitions: transitions,
	}
}

// ObserveAssembly counts one assembly attempt. code is empty on success.
func (m *OrderMetrics) ObserveAssembly(code string, err error) {
	if m == nil || m.assemblies == nil {
		return
	}
	if err == nil {
		m.assemblies.WithLabelValues(OutcomeSuccess, "").Inc()
		return
	}
	m.assemblies.WithLabelValues(OutcomeFailure, normalizeLabel(code)).Inc()
}

// ObserveFee records the delivery fee of an assembled order.
func (m *OrderMetrics) ObserveFee(fee float64) {
	if m == nil || m.fees == nil {
		return
	}
	m.fees.Observe(fee)
}

// ObserveProvider records one Maps round-trip. Its signature matches
// maps.Observer so it can be installed directly.
func (m *OrderMetrics) ObserveProvider(operation string, elapsed time.Duration, err error) {
	if m == nil || m.provider == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.provider.WithLabelValues(normalizeLabel(operation), outcome).Observe(elapsed.Seconds())
}

// IncTransition counts a delivery status change.
func (m *OrderMetrics) IncTransition(from, to string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
