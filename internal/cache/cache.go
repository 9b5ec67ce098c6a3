// Package cache implements the read-through caching layer (C2). Its callers
// are the rate resolver (the assembled resolved rate, under borrow_rate) and
// the stock and client-config repositories (under stock and broker_config).
// The volatility, event_risk, and calculation namespaces carry configured
// TTLs but no caller reads or writes them. It follows the teacher's infrastructure packages in
// spirit: a small interface, a Redis-backed implementation, and a fallback
// implementation that keeps the service degraded-but-alive when Redis is
// unreachable.
package cache

import (
	"context"
	"time"
)

// Namespace identifies one of the six cacheable concerns, each with its own
// TTL per the pricing-engine cache table.
type Namespace string

const (
	NamespaceBorrowRate   Namespace = "borrow_rate"
	NamespaceVolatility   Namespace = "volatility"
	NamespaceEventRisk    Namespace = "event_risk"
	NamespaceBrokerConfig Namespace = "broker_config"
	NamespaceCalculation  Namespace = "calculation"
	NamespaceStock        Namespace = "stock"
)

// Stats reports point-in-time hit/miss counters for a cache instance.
type Stats struct {
	Hits   int64
	Misses int64
	Errors int64
}

// Cache is the read-through interface used by the clients and repository
// layers. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the raw bytes stored at key, or (nil, false, nil) on a
	// clean miss. A non-nil error indicates the backend itself is degraded;
	// callers should treat that as a miss and proceed without blocking.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	FlushPrefix(ctx context.Context, prefix string) error
	Healthy(ctx context.Context) bool
	Stats() Stats
}

// NewAuto returns a RedisCache when addr is non-empty and reachable, and
// falls back to MemoryCache otherwise — mirroring the teacher's
// data/cache/cache.go NewAuto() dual-mode constructor.
func NewAuto(addr string, db int) Cache {
	if addr != "" {
		if rc, err := NewRedisCache(addr, db); err == nil {
			return rc
		}
	}
	return NewMemoryCache(time.Minute)
}

// Namespacer builds fully-qualified keys and resolves the TTL for a
// namespace, keeping the prefix/TTL policy in one place instead of scattered
// across callers.
type Namespacer struct {
	prefix string
	ttls   map[Namespace]time.Duration
}

// NewNamespacer builds a Namespacer from the configured per-namespace TTLs.
func NewNamespacer(prefix string, ttls map[Namespace]time.Duration) *Namespacer {
	return &Namespacer{prefix: prefix, ttls: ttls}
}

// Key returns the fully-qualified cache key for ns and the given components,
// e.g. Key(NamespaceBorrowRate, "AAPL") -> "locatepricer:borrow_rate:AAPL".
func (n *Namespacer) Key(ns Namespace, parts ...string) string {
	key := n.prefix + ":" + string(ns)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// TTL returns the configured TTL for ns, or zero if unconfigured (caller
// should then skip caching rather than cache forever).
func (n *Namespacer) TTL(ns Namespace) time.Duration {
	return n.ttls[ns]
}
