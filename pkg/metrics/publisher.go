package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PublisherMetrics records outbox publisher batches.
type PublisherMetrics struct {
	duration  prometheus.Histogram
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
}

// NewPublisherMetrics registers the publisher metrics on the provided registerer.
func NewPublisherMetrics(reg prometheus.Registerer) *PublisherMetrics {
	if reg == nil {
		return &PublisherMetrics{}
	}
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events published.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_failed_total",
		Help: "Outbox publish failures.",
	}, []string{"event_type"})
	reg.MustRegister(duration, published, failed)
	return &PublisherMetrics{duration: duration, published: published, failed: failed}
}

// ObserveBatch records how long a batch took.
func (p *PublisherMetrics) ObserveBatch(elapsed time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.Observe(elapsed.Seconds())
}

// IncPublished counts a delivered event.
func (p *PublisherMetrics) IncPublished(eventType string) {
	if p == nil || p.published == nil {
		return
	}
	p.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}

// IncFailed counts a failed publish attempt.
func (p *PublisherMetrics) IncFailed(eventType string) {
	if p == nil || p.failed == nil {
		return
	}
	p.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
}
