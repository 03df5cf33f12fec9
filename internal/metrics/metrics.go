package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/trustscan/internal/model"
)

// Metrics holds the Prometheus collectors for verification activity.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	verifications *prometheus.CounterVec
	citations     *prometheus.CounterVec
	claims        *prometheus.CounterVec
	trustScore    prometheus.Histogram
	linkChecks    *prometheus.HistogramVec
	judgeCalls    *prometheus.CounterVec
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscan_verifications_total",
			Help: "Document verifications by outcome",
		}, []string{"outcome"}),

		citations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscan_citations_total",
			Help: "Validated citations by final status",
		}, []string{"status"}),

		claims: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscan_claims_total",
			Help: "Analyzed claims by risk level",
		}, []string{"risk"}),

		trustScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "trustscan_trust_score",
			Help:    "Distribution of document trust scores",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		linkChecks: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trustscan_link_check_duration_seconds",
			Help:    "Citation URL reachability check latency",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		}, []string{"accessible"}),

		judgeCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "trustscan_semantic_calls_total",
			Help: "Semantic collaborator calls by capability and outcome",
		}, []string{"capability", "outcome"}),
	}
}

// ObserveReport records a completed verification
func (m *Metrics) ObserveReport(r *model.Report) {
	if m == nil || r == nil {
		return
	}
	m.verifications.WithLabelValues("ok").Inc()
	for _, c := range r.Citations {
		m.citations.WithLabelValues(string(c.Status)).Inc()
	}
	for _, c := range r.Claims {
		m.claims.WithLabelValues(string(c.RiskLevel)).Inc()
	}
	m.trustScore.Observe(r.TrustScore)
}

// ObserveFailure records a verification that produced no report
func (m *Metrics) ObserveFailure(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

// ObserveLinkCheck records one reachability check
func (m *Metrics) ObserveLinkCheck(accessible bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if accessible {
		label = "true"
	}
	m.linkChecks.WithLabelValues(label).Observe(elapsed.Seconds())
}

// ObserveSemanticCall records one collaborator call, ok reports success
func (m *Metrics) ObserveSemanticCall(capability string, ok bool) {
	if m == nil {
		return
	}
	outcome := "error"
	if ok {
		outcome = "ok"
	}
	m.judgeCalls.WithLabelValues(capability, outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
