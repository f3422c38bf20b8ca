package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes used as the "outcome" label.
const (
	OutcomeSuccess     = "success"
	OutcomeRateLimited = "rate_limited"
	OutcomeConfigError = "config_error"
	OutcomeUpstream    = "upstream_error"
	OutcomeBusy        = "busy"
)

// Metrics holds all Prometheus metrics for the generator.
type Metrics struct {
	Generations       *prometheus.CounterVec
	UpstreamDuration  *prometheus.HistogramVec
	QuotaRemaining    prometheus.Gauge
	NormalizeOutcomes *prometheus.CounterVec
}

// New creates and registers all metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Generations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegen_generations_total",
			Help: "Generation requests by terminal outcome",
		}, []string{"outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sitegen_upstream_duration_seconds",
			Help:    "Latency of completion API calls",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"result"}),
		QuotaRemaining: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sitegen_quota_remaining",
			Help: "Generations left in the current daily window",
		}),
		NormalizeOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegen_normalize_outcomes_total",
			Help: "Which fence extraction rule produced the returned HTML",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveGeneration(outcome string) {
	m.Generations.WithLabelValues(outcome).Inc()
}

// ObserveUpstream records one completion call; result is "ok" or a failure reason.
func (m *Metrics) ObserveUpstream(result string, seconds float64) {
	m.UpstreamDuration.WithLabelValues(result).Observe(seconds)
}

func (m *Metrics) SetQuotaRemaining(remaining int) {
	m.QuotaRemaining.Set(float64(remaining))
}

func (m *Metrics) ObserveNormalize(outcome string) {
	m.NormalizeOutcomes.WithLabelValues(outcome).Inc()
}
