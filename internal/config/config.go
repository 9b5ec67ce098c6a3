// Package config loads pricing-engine configuration from environment
// variables with an optional YAML overlay, following the shape of the
// teacher's internal/config/providers.go: a typed struct, per-field env
// overrides, and a Validate() method that rejects inconsistent values before
// the service starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full process configuration, loaded once at startup and
// treated as immutable during a request (spec §9).
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Cache    CacheConfig    `yaml:"cache"`
	Database DatabaseConfig `yaml:"database"`
	Clients  ClientsConfig  `yaml:"clients"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Audit    AuditConfig    `yaml:"audit"`
}

// HTTPConfig configures the mux-based HTTP surface.
type HTTPConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestDeadline time.Duration `yaml:"request_deadline"` // §5 facade deadline, default 10s
}

// CacheConfig configures the C2 cache layer.
type CacheConfig struct {
	RedisAddr   string        `yaml:"redis_addr"`   // empty => in-memory fallback
	RedisDB     int           `yaml:"redis_db"`
	KeyPrefix   string        `yaml:"key_prefix"`
	TTLBorrowRate    time.Duration `yaml:"ttl_borrow_rate"`
	TTLVolatility    time.Duration `yaml:"ttl_volatility"`
	TTLEventRisk     time.Duration `yaml:"ttl_event_risk"`
	TTLBrokerConfig  time.Duration `yaml:"ttl_broker_config"`
	TTLCalculation   time.Duration `yaml:"ttl_calculation"`
}

// DatabaseConfig configures the sqlx/lib-pq connection pool (C4).
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// ClientsConfig configures the three external data clients (C3).
type ClientsConfig struct {
	BorrowRateBaseURL string        `yaml:"borrow_rate_base_url"`
	VolatilityBaseURL string        `yaml:"volatility_base_url"`
	EventRiskBaseURL  string        `yaml:"event_risk_base_url"`
	RequestTimeout    time.Duration `yaml:"request_timeout"` // default 5s
	MaxRetries        int           `yaml:"max_retries"`     // default 3
	BackoffBase       time.Duration `yaml:"backoff_base"`    // default 100ms
	BackoffMax        time.Duration `yaml:"backoff_max"`     // default 2s
	BreakerFailureThreshold int     `yaml:"breaker_failure_threshold"` // default 5; validated, not applied to the breakers
	BreakerCooldown   time.Duration `yaml:"breaker_cooldown"`          // default 30s; not applied to the breakers
	RateLimitRPS      float64       `yaml:"rate_limit_rps"`
	RateLimitBurst    int           `yaml:"rate_limit_burst"`
}

// PricingConfig exposes the §4.5 adjustment constants and global floor as
// overridable fields (Open Question #1).
type PricingConfig struct {
	GlobalMinRate         float64 `yaml:"global_min_rate"`          // GLOBAL_MIN_RATE
	DefaultVolatility     float64 `yaml:"default_volatility"`       // DEFAULT_VOLATILITY, e.g. 20.0
	VolFactor             float64 `yaml:"vol_factor"`               // VOL_FACTOR, default 0.01
	HighVolThreshold      float64 `yaml:"high_vol_threshold"`       // default 30
	HighVolBump           float64 `yaml:"high_vol_bump"`            // default 0.05
	ExtremeVolThreshold   float64 `yaml:"extreme_vol_threshold"`    // default 40
	ExtremeVolBump        float64 `yaml:"extreme_vol_bump"`         // default 0.05
	EventFactor           float64 `yaml:"event_factor"`             // EVENT_FACTOR, default 0.05
}

// AuditConfig configures the C7 bounded async queue.
type AuditConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// Default returns the baseline configuration with spec-mandated defaults.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			RequestDeadline: 10 * time.Second,
		},
		Cache: CacheConfig{
			KeyPrefix:       "locatepricer",
			TTLBorrowRate:   300 * time.Second,
			TTLVolatility:   900 * time.Second,
			TTLEventRisk:    3600 * time.Second,
			TTLBrokerConfig: 1800 * time.Second,
			TTLCalculation:  60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    5 * time.Second,
		},
		Clients: ClientsConfig{
			RequestTimeout:          5 * time.Second,
			MaxRetries:              3,
			BackoffBase:             100 * time.Millisecond,
			BackoffMax:              2 * time.Second,
			BreakerFailureThreshold: 5,
			BreakerCooldown:         30 * time.Second,
			RateLimitRPS:            20,
			RateLimitBurst:          40,
		},
		Pricing: PricingConfig{
			GlobalMinRate:       0.0,
			DefaultVolatility:   20.0,
			VolFactor:           0.01,
			HighVolThreshold:    30,
			HighVolBump:         0.05,
			ExtremeVolThreshold: 40,
			ExtremeVolBump:      0.05,
			EventFactor:         0.05,
		},
		Audit: AuditConfig{
			QueueSize: 1024,
		},
	}
}

// Load builds a Config from Default(), an optional YAML overlay file, and
// environment variable overrides, in that precedence order (env wins). A
// local .env is loaded first via godotenv, mirroring the aristath-sentinel
// example's development workflow.
func Load(yamlPath string) (*Config, error) {
	_ = godotenv.Load() // best-effort; absence of .env is not an error

	cfg := Default()

	if yamlPath != "" {
		if _, err := os.Stat(yamlPath); err == nil {
			data, err := os.ReadFile(yamlPath)
			if err != nil {
				return nil, fmt.Errorf("read config file %s: %w", yamlPath, err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", yamlPath, err)
			}
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func applyEnvOverrides(c *Config) {
	strVar(&c.HTTP.Host, "HTTP_HOST")
	intVar(&c.HTTP.Port, "HTTP_PORT")
	durVar(&c.HTTP.RequestDeadline, "REQUEST_DEADLINE")

	strVar(&c.Cache.RedisAddr, "REDIS_ADDR")
	intVar(&c.Cache.RedisDB, "REDIS_DB")
	strVar(&c.Cache.KeyPrefix, "CACHE_KEY_PREFIX")
	durVar(&c.Cache.TTLBorrowRate, "TTL_BORROW_RATE")
	durVar(&c.Cache.TTLVolatility, "TTL_VOLATILITY")
	durVar(&c.Cache.TTLEventRisk, "TTL_EVENT_RISK")
	durVar(&c.Cache.TTLBrokerConfig, "TTL_BROKER_CONFIG")
	durVar(&c.Cache.TTLCalculation, "TTL_CALCULATION")

	strVar(&c.Database.DSN, "PG_DSN")
	intVar(&c.Database.MaxOpenConns, "PG_MAX_OPEN_CONNS")
	intVar(&c.Database.MaxIdleConns, "PG_MAX_IDLE_CONNS")
	durVar(&c.Database.ConnMaxLifetime, "PG_CONN_MAX_LIFETIME")
	durVar(&c.Database.QueryTimeout, "PG_QUERY_TIMEOUT")

	strVar(&c.Clients.BorrowRateBaseURL, "BORROW_RATE_BASE_URL")
	strVar(&c.Clients.VolatilityBaseURL, "VOLATILITY_BASE_URL")
	strVar(&c.Clients.EventRiskBaseURL, "EVENT_RISK_BASE_URL")
	durVar(&c.Clients.RequestTimeout, "CLIENT_REQUEST_TIMEOUT")
	intVar(&c.Clients.MaxRetries, "CLIENT_MAX_RETRIES")
	durVar(&c.Clients.BackoffBase, "CLIENT_BACKOFF_BASE")
	durVar(&c.Clients.BackoffMax, "CLIENT_BACKOFF_MAX")
	intVar(&c.Clients.BreakerFailureThreshold, "BREAKER_FAILURE_THRESHOLD")
	durVar(&c.Clients.BreakerCooldown, "BREAKER_COOLDOWN")
	floatVar(&c.Clients.RateLimitRPS, "CLIENT_RATE_LIMIT_RPS")
	intVar(&c.Clients.RateLimitBurst, "CLIENT_RATE_LIMIT_BURST")

	floatVar(&c.Pricing.GlobalMinRate, "GLOBAL_MIN_RATE")
	floatVar(&c.Pricing.DefaultVolatility, "DEFAULT_VOLATILITY")
	floatVar(&c.Pricing.VolFactor, "VOL_FACTOR")
	floatVar(&c.Pricing.HighVolThreshold, "HIGH_VOL_THRESHOLD")
	floatVar(&c.Pricing.HighVolBump, "HIGH_VOL_BUMP")
	floatVar(&c.Pricing.ExtremeVolThreshold, "EXTREME_VOL_THRESHOLD")
	floatVar(&c.Pricing.ExtremeVolBump, "EXTREME_VOL_BUMP")
	floatVar(&c.Pricing.EventFactor, "EVENT_FACTOR")

	intVar(&c.Audit.QueueSize, "AUDIT_QUEUE_SIZE")
}

func strVar(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func intVar(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func floatVar(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func durVar(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// Validate rejects configurations that would produce undefined pipeline
// behavior, following the teacher's ProvidersConfig.Validate pattern.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 {
		return fmt.Errorf("http.port must be positive")
	}
	if c.HTTP.RequestDeadline <= 0 {
		return fmt.Errorf("http.request_deadline must be positive")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required: stock and client lookups have no in-process fallback")
	}
	if c.Clients.MaxRetries < 0 {
		return fmt.Errorf("clients.max_retries cannot be negative")
	}
	if c.Clients.BackoffMax < c.Clients.BackoffBase {
		return fmt.Errorf("clients.backoff_max must be >= backoff_base")
	}
	if c.Clients.BreakerFailureThreshold <= 0 {
		return fmt.Errorf("clients.breaker_failure_threshold must be positive")
	}
	if c.Pricing.GlobalMinRate < 0 {
		return fmt.Errorf("pricing.global_min_rate cannot be negative")
	}
	if c.Pricing.DefaultVolatility < 0 {
		return fmt.Errorf("pricing.default_volatility cannot be negative")
	}
	if c.Audit.QueueSize <= 0 {
		return fmt.Errorf("audit.queue_size must be positive")
	}
	return nil
}
