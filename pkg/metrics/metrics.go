package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Submit outcome labels.
const (
	OutcomeApplied    = "applied"
	OutcomeRedirected = "redirected"
	OutcomeRolledBack = "rolled_back"
	OutcomeExpired    = "expired"
)

// RegisterMetrics records cart submit outcomes and upstream latency.
type RegisterMetrics struct {
	submits         *prometheus.CounterVec
	localRejections *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
}

// NewRegisterMetrics registers the gateway metrics on the provided registerer.
func NewRegisterMetrics(reg prometheus.Registerer) *RegisterMetrics {
	if reg == nil {
		return &RegisterMetrics{}
	}
	submits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "register_submits_total",
		Help: "Cart submissions by outcome.",
	}, []string{"outcome"})
	localRejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "register_local_rejections_total",
		Help: "Mutations rejected before any upstream call.",
	}, []string{"reason"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "register_upstream_duration_seconds",
		Help:    "Duration of upstream school-server calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	reg.MustRegister(submits, localRejections, upstreamLatency)
	return &RegisterMetrics{
		submits:         submits,
		localRejections: localRejections,
		upstreamLatency: upstreamLatency,
	}
}

// IncSubmit increments the submit counter for the given outcome.
func (m *RegisterMetrics) IncSubmit(outcome string) {
	if m == nil || m.submits == nil {
		return
	}
	m.submits.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncLocalRejection increments the local rejection counter for the reason.
func (m *RegisterMetrics) IncLocalRejection(reason string) {
	if m == nil || m.localRejections == nil {
		return
	}
	m.localRejections.WithLabelValues(normalizeLabel(reason)).Inc()
}

// ObserveUpstream records the duration of an upstream call.
func (m *RegisterMetrics) ObserveUpstream(endpoint string, duration time.Duration) {
	if m == nil || m.upstreamLatency == nil {
		return
	}
	m.upstreamLatency.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
