package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the cache layer, registered
// once at startup the way the teacher's MetricsRegistry registers its
// counters.
type Metrics struct {
	Hits    *prometheus.CounterVec
	Misses  *prometheus.CounterVec
	Errors  *prometheus.CounterVec
	Latency *prometheus.HistogramVec
}

// NewMetrics builds and registers the cache metrics against reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locatepricer_cache_hits_total",
			Help: "Cache hits by namespace.",
		}, []string{"namespace"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locatepricer_cache_misses_total",
			Help: "Cache misses by namespace.",
		}, []string{"namespace"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "locatepricer_cache_errors_total",
			Help: "Cache backend errors, swallowed and treated as misses.",
		}, []string{"namespace"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "locatepricer_cache_latency_seconds",
			Help:    "Cache operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"namespace", "op"}),
	}
	reg.MustRegister(m.Hits, m.Misses, m.Errors, m.Latency)
	return m
}
