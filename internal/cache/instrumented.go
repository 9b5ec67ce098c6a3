package cache

import (
	"context"
	"strings"
	"time"
)

// instrumentedCache decorates a Cache with Prometheus counters, extracting
// the namespace label from the key's second colon-delimited segment (the
// format Namespacer.Key produces: "prefix:namespace:...").
type instrumentedCache struct {
	Cache
	metrics *Metrics
}

// Instrument wraps c so Get records hit, miss, error, and latency metrics
// and Set records error and latency metrics, without changing cache
// semantics. Delete, Exists, and FlushPrefix pass through unrecorded.
func Instrument(c Cache, metrics *Metrics) Cache {
	if metrics == nil {
		return c
	}
	return &instrumentedCache{Cache: c, metrics: metrics}
}

func namespaceOf(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[1]
}

func (c *instrumentedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ns := namespaceOf(key)
	start := time.Now()
	val, hit, err := c.Cache.Get(ctx, key)
	c.metrics.Latency.WithLabelValues(ns, "get").Observe(time.Since(start).Seconds())
	switch {
	case err != nil:
		c.metrics.Errors.WithLabelValues(ns).Inc()
	case hit:
		c.metrics.Hits.WithLabelValues(ns).Inc()
	default:
		c.metrics.Misses.WithLabelValues(ns).Inc()
	}
	return val, hit, err
}

func (c *instrumentedCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ns := namespaceOf(key)
	start := time.Now()
	err := c.Cache.Set(ctx, key, value, ttl)
	c.metrics.Latency.WithLabelValues(ns, "set").Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.Errors.WithLabelValues(ns).Inc()
	}
	return err
}

// Stop forwards to the wrapped cache if it is stoppable, so wrapping a
// MemoryCache with Instrument does not hide its teardown method.
func (c *instrumentedCache) Stop() {
	if stopper, ok := c.Cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
