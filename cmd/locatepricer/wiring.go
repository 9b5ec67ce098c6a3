package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/sawpanic/locatepricer/internal/audit"
	"github.com/sawpanic/locatepricer/internal/cache"
	"github.com/sawpanic/locatepricer/internal/clients"
	"github.com/sawpanic/locatepricer/internal/config"
	"github.com/sawpanic/locatepricer/internal/facade"
	"github.com/sawpanic/locatepricer/internal/infrastructure/db"
	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/pricing/resolver"
	"github.com/sawpanic/locatepricer/internal/secrets"
)

// apiKey resolves an upstream API key from the environment via the secrets
// provider, returning "" (unauthenticated) if it is not set rather than
// failing startup — the three sources are configured per-deployment.
func apiKey(provider *secrets.EnvProvider, key string) string {
	secret, err := provider.GetSecret(context.Background(), key)
	if err != nil {
		return ""
	}
	return secret.String()
}

// app bundles every wired component a subcommand needs, built once from
// config and torn down with Close().
type app struct {
	cfg     *config.Config
	cache   cache.Cache
	dbMgr   *db.Manager
	facade  *facade.Facade
	emitter *audit.Emitter
}

// buildApp loads configuration and wires C1-C9 end to end, mirroring the
// dependency order laid out in the resolver/facade constructors.
func buildApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cacheMetrics := cache.NewMetrics(prometheus.DefaultRegisterer)
	cacheBackend := cache.Instrument(cache.NewAuto(cfg.Cache.RedisAddr, cfg.Cache.RedisDB), cacheMetrics)
	ns := cache.NewNamespacer(cfg.Cache.KeyPrefix, map[cache.Namespace]time.Duration{
		cache.NamespaceBorrowRate:   cfg.Cache.TTLBorrowRate,
		cache.NamespaceVolatility:   cfg.Cache.TTLVolatility,
		cache.NamespaceEventRisk:    cfg.Cache.TTLEventRisk,
		cache.NamespaceBrokerConfig: cfg.Cache.TTLBrokerConfig,
		cache.NamespaceCalculation:  cfg.Cache.TTLCalculation,
		cache.NamespaceStock:        cfg.Cache.TTLBrokerConfig,
	})

	dbMgr, err := db.NewManager(db.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		QueryTimeout:    cfg.Database.QueryTimeout,
		Enabled:         true,
	}, cacheBackend, ns)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	secretProvider := secrets.NewEnvProvider("LOCATEPRICER")

	borrowRateClient := clients.NewBorrowRateClient(clients.Config{
		BaseURL:                 cfg.Clients.BorrowRateBaseURL,
		APIKey:                  apiKey(secretProvider, "borrow_rate_api_key"),
		RequestTimeout:          cfg.Clients.RequestTimeout,
		MaxRetries:              cfg.Clients.MaxRetries,
		BackoffBase:             cfg.Clients.BackoffBase,
		BackoffMax:              cfg.Clients.BackoffMax,
		BreakerFailureThreshold: cfg.Clients.BreakerFailureThreshold,
		BreakerCooldown:         cfg.Clients.BreakerCooldown,
		RateLimitRPS:            cfg.Clients.RateLimitRPS,
		RateLimitBurst:          cfg.Clients.RateLimitBurst,
	})
	volatilityClient := clients.NewVolatilityClient(clients.Config{
		BaseURL:                 cfg.Clients.VolatilityBaseURL,
		APIKey:                  apiKey(secretProvider, "volatility_api_key"),
		RequestTimeout:          cfg.Clients.RequestTimeout,
		MaxRetries:              cfg.Clients.MaxRetries,
		BackoffBase:             cfg.Clients.BackoffBase,
		BackoffMax:              cfg.Clients.BackoffMax,
		BreakerFailureThreshold: cfg.Clients.BreakerFailureThreshold,
		BreakerCooldown:         cfg.Clients.BreakerCooldown,
		RateLimitRPS:            cfg.Clients.RateLimitRPS,
		RateLimitBurst:          cfg.Clients.RateLimitBurst,
	})
	eventRiskClient := clients.NewEventRiskClient(clients.Config{
		BaseURL:                 cfg.Clients.EventRiskBaseURL,
		APIKey:                  apiKey(secretProvider, "event_risk_api_key"),
		RequestTimeout:          cfg.Clients.RequestTimeout,
		MaxRetries:              cfg.Clients.MaxRetries,
		BackoffBase:             cfg.Clients.BackoffBase,
		BackoffMax:              cfg.Clients.BackoffMax,
		BreakerFailureThreshold: cfg.Clients.BreakerFailureThreshold,
		BreakerCooldown:         cfg.Clients.BreakerCooldown,
		RateLimitRPS:            cfg.Clients.RateLimitRPS,
		RateLimitBurst:          cfg.Clients.RateLimitBurst,
	})

	res := resolver.New(
		dbMgr.Repository().Stocks,
		cacheBackend,
		ns,
		borrowRateClient,
		volatilityClient,
		eventRiskClient,
		resolver.Constants{
			GlobalMinRate:       money.RateFromFloat(cfg.Pricing.GlobalMinRate),
			DefaultVolatility:   decimal.NewFromFloat(cfg.Pricing.DefaultVolatility),
			VolFactor:           decimal.NewFromFloat(cfg.Pricing.VolFactor),
			HighVolThreshold:    decimal.NewFromFloat(cfg.Pricing.HighVolThreshold),
			HighVolBump:         decimal.NewFromFloat(cfg.Pricing.HighVolBump),
			ExtremeVolThreshold: decimal.NewFromFloat(cfg.Pricing.ExtremeVolThreshold),
			ExtremeVolBump:      decimal.NewFromFloat(cfg.Pricing.ExtremeVolBump),
			EventFactor:         decimal.NewFromFloat(cfg.Pricing.EventFactor),
		},
	)

	emitter := audit.NewEmitter(audit.LoggingSink{}, cfg.Audit.QueueSize, 1)
	f := facade.New(res, dbMgr.Repository().Clients, emitter, cfg.HTTP.RequestDeadline)

	return &app{cfg: cfg, cache: cacheBackend, dbMgr: dbMgr, facade: f, emitter: emitter}, nil
}

// Close releases every backing resource the app opened.
func (a *app) Close() {
	a.emitter.Stop()
	if a.dbMgr != nil {
		_ = a.dbMgr.Close()
	}
	if stopper, ok := a.cache.(interface{ Stop() }); ok {
		stopper.Stop()
	}
}
