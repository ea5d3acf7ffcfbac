package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	enabled  bool
	gatherer prometheus.Gatherer

	feedFetches     *prometheus.CounterVec
	registrySize    *prometheus.GaugeVec
	classified      *prometheus.CounterVec
	poolRefreshes   *prometheus.CounterVec
	aggregationTime prometheus.Histogram
}

// New registers the collectors on reg. A nil reg returns a disabled Metrics
// whose update methods are no-ops.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return &Metrics{enabled: false}
	}
	m := &Metrics{
		enabled:  true,
		gatherer: reg,
		feedFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "detox_feed_fetches_total",
				Help: "Upstream validator feed fetches by source and result",
			},
			[]string{"source", "result"},
		),
		registrySize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "detox_validator_registry_size",
				Help: "Number of validators in the last computed registry by score",
			},
			[]string{"score"},
		),
		classified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "detox_stake_accounts_classified_total",
				Help: "Stake accounts classified by score (bad, good, unknown)",
			},
			[]string{"score"},
		),
		poolRefreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "detox_pool_refresh_total",
				Help: "Stake pool refresh notifications by result",
			},
			[]string{"result"},
		),
		aggregationTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "detox_aggregation_seconds",
				Help:    "Time spent fetching feeds and aggregating the validator registry",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
	reg.MustRegister(m.feedFetches, m.registrySize, m.classified, m.poolRefreshes, m.aggregationTime)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || !m.enabled {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) FeedFetch(source string, success bool) {
	if m == nil || !m.enabled {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.feedFetches.WithLabelValues(source, result).Inc()
}

func (m *Metrics) RegistrySize(bad, good int) {
	if m == nil || !m.enabled {
		return
	}
	m.registrySize.WithLabelValues("bad").Set(float64(bad))
	m.registrySize.WithLabelValues("good").Set(float64(good))
}

func (m *Metrics) Classified(score string) {
	if m == nil || !m.enabled {
		return
	}
	if score == "" {
		score = "unknown"
	}
	m.classified.WithLabelValues(score).Inc()
}

func (m *Metrics) PoolRefresh(success bool) {
	if m == nil || !m.enabled {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	m.poolRefreshes.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveAggregation(seconds float64) {
	if m == nil || !m.enabled {
		return
	}
	m.aggregationTime.Observe(seconds)
}
