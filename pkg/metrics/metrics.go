package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the verifier's Prometheus collectors. A nil *Registry is
// valid and records nothing.
type Registry struct {
	registry *prometheus.Registry

	Verifications      *prometheus.CounterVec
	Judgments          *prometheus.CounterVec
	OverallScore       prometheus.Histogram
	MarketDataRequests *prometheus.CounterVec
	SearchRequests     *prometheus.CounterVec
	BatchDuration      prometheus.Histogram
}

// NewRegistry creates and registers all collectors on a private registry.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		Verifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfluencer_verifications_total",
				Help: "Predictions processed by the verification pipeline, by result status",
			},
			[]string{"status"},
		),

		Judgments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfluencer_judgments_total",
				Help: "Scores produced, by mode (ai, fallback_unconfigured, fallback_error)",
			},
			[]string{"mode"},
		),

		OverallScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finfluencer_overall_score",
				Help:    "Distribution of overall accuracy scores",
				Buckets: prometheus.LinearBuckets(0, 0.1, 11),
			},
		),

		MarketDataRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfluencer_market_data_requests_total",
				Help: "Market data lookups, by result (hit, miss, no_data, error)",
			},
			[]string{"result"},
		),

		SearchRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finfluencer_search_requests_total",
				Help: "Search evidence lookups, by provider and result",
			},
			[]string{"provider", "result"},
		),

		BatchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "finfluencer_batch_duration_seconds",
				Help:    "Wall time of batch verification runs",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
			},
		),
	}

	r.registry.MustRegister(
		r.Verifications,
		r.Judgments,
		r.OverallScore,
		r.MarketDataRequests,
		r.SearchRequests,
		r.BatchDuration,
		collectors.NewGoCollector(),
	)
	return r
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) ObserveVerification(status string) {
	if r == nil {
		return
	}
	r.Verifications.WithLabelValues(status).Inc()
}

func (r *Registry) ObserveJudgment(mode string, overall float64) {
	if r == nil {
		return
	}
	r.Judgments.WithLabelValues(mode).Inc()
	r.OverallScore.Observe(overall)
}

func (r *Registry) ObserveMarketData(result string) {
	if r == nil {
		return
	}
	r.MarketDataRequests.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveSearch(provider, result string) {
	if r == nil {
		return
	}
	r.SearchRequests.WithLabelValues(provider, result).Inc()
}

func (r *Registry) ObserveBatch(d time.Duration) {
	if r == nil {
		return
	}
	r.BatchDuration.Observe(d.Seconds())
}
