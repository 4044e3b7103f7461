package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheMetrics exports product cache events as Prometheus counters
type CacheMetrics struct {
	events        *prometheus.CounterVec
	invalidations prometheus.Counter
}

// NewCacheMetrics registers the cache counters on reg using the given prefix
func NewCacheMetrics(reg prometheus.Registerer, prefix string) *CacheMetrics {
	if prefix == "" {
		prefix = "bomcost"
	}
	factory := promauto.With(reg)

	return &CacheMetrics{
		events: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_cache_lookups_total",
				Help: "Product metrics cache lookups by result",
			},
			[]string{"result"},
		),
		invalidations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: prefix + "_product_cache_invalidations_total",
				Help: "Number of product metrics cache generation bumps",
			},
		),
	}
}

// Hit records a cache hit
func (m *CacheMetrics) Hit() {
	m.events.WithLabelValues("hit").Inc()
}

// Miss records a cache miss
func (m *CacheMetrics) Miss() {
	m.events.WithLabelValues("miss").Inc()
}

// Stale records a computed value dropped because the generation moved on
func (m *CacheMetrics) Stale() {
	m.events.WithLabelValues("stale").Inc()
}

// Invalidated records a generation bump
func (m *CacheMetrics) Invalidated() {
	m.invalidations.Inc()
}
