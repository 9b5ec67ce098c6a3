// Package resolver implements the rate-resolution algorithm (C5): base rate
// plus volatility adjustment plus event-risk adjustment, floored at the
// configured minimum, with full provenance tracking.
package resolver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sawpanic/locatepricer/internal/cache"
	"github.com/sawpanic/locatepricer/internal/clients"
	"github.com/sawpanic/locatepricer/internal/fallback"
	"github.com/sawpanic/locatepricer/internal/money"
	"github.com/sawpanic/locatepricer/internal/persistence"
	"github.com/sawpanic/locatepricer/internal/pricingerr"
	"github.com/sawpanic/locatepricer/internal/repository"
)

// ResolvedRate is the transient, cacheable output of resolve_rate.
type ResolvedRate struct {
	Ticker           string               `json:"ticker"`
	CurrentRate      money.Rate           `json:"current_rate"`
	BorrowStatus     persistence.BorrowStatus `json:"borrow_status"`
	VolatilityIndex  *decimal.Decimal     `json:"volatility_index,omitempty"`
	EventRiskFactor  *int                 `json:"event_risk_factor,omitempty"`
	Provenance       fallback.Provenance  `json:"provenance"`
	ComputedAt       time.Time            `json:"computed_at"`
}

// Constants holds the tunable adjustment parameters from §4.5, sourced from
// internal/config.PricingConfig (Open Question #1: kept configurable rather
// than hardcoded).
type Constants struct {
	GlobalMinRate       money.Rate
	DefaultVolatility   decimal.Decimal
	VolFactor           decimal.Decimal
	HighVolThreshold    decimal.Decimal
	HighVolBump         decimal.Decimal
	ExtremeVolThreshold decimal.Decimal
	ExtremeVolBump      decimal.Decimal
	EventFactor         decimal.Decimal
}

// Resolver assembles ResolvedRate values, backed by C2-C4.
type Resolver struct {
	stocks      persistence.StockRepo
	cache       cache.Cache
	ns          *cache.Namespacer
	borrowRate  *clients.BorrowRateClient
	volatility  *clients.VolatilityClient
	eventRisk   *clients.EventRiskClient
	constants   Constants
}

// New builds a Resolver wired to its four leaf dependencies and adjustment
// constants.
func New(
	stocks persistence.StockRepo,
	c cache.Cache,
	ns *cache.Namespacer,
	borrowRate *clients.BorrowRateClient,
	volatility *clients.VolatilityClient,
	eventRisk *clients.EventRiskClient,
	constants Constants,
) *Resolver {
	return &Resolver{
		stocks:     stocks,
		cache:      c,
		ns:         ns,
		borrowRate: borrowRate,
		volatility: volatility,
		eventRisk:  eventRisk,
		constants:  constants,
	}
}

// ResolveRate implements the eight-step algorithm of spec §4.5.
func (r *Resolver) ResolveRate(ctx context.Context, ticker string) (*ResolvedRate, error) {
	// 1. Normalize ticker, look up stock.
	normalized, ok := repository.NormalizeTicker(ticker)
	if !ok {
		return nil, pricingerr.Validation("ticker", "must match ^[A-Z]{1,5}$")
	}

	stock, err := r.stocks.ByTicker(ctx, normalized)
	if err != nil {
		if err == persistence.ErrNotFound {
			return nil, pricingerr.TickerNotFound(normalized)
		}
		return nil, pricingerr.UnrecoverableExternal("stock lookup failed", err)
	}

	// 2. Probe cache.
	key := r.ns.Key(cache.NamespaceBorrowRate, normalized)
	if raw, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		var cached ResolvedRate
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
	}

	// 3. Fetch base rate.
	baseRate, baseTag := r.fetchBaseRate(ctx, normalized, stock)

	// 4. Fetch volatility.
	volIndex, volTag := r.fetchVolatility(ctx, normalized)

	// 5. Fetch event risk.
	eventFactor, eventTag := r.fetchEventRisk(ctx, normalized)

	// 6. Apply adjustments in fixed order.
	raw := money.NewRawRate(baseRate)

	volAdjustment := volIndex.Mul(r.constants.VolFactor)
	if volIndex.Cmp(r.constants.ExtremeVolThreshold) > 0 {
		volAdjustment = volAdjustment.Add(r.constants.HighVolBump).Add(r.constants.ExtremeVolBump)
	} else if volIndex.Cmp(r.constants.HighVolThreshold) > 0 {
		volAdjustment = volAdjustment.Add(r.constants.HighVolBump)
	}
	adjustedRate := raw.Mul(decimal.NewFromInt(1).Add(volAdjustment))

	eventAdjustment := decimal.NewFromInt(int64(eventFactor)).Div(decimal.NewFromInt(10)).Mul(r.constants.EventFactor)
	finalRaw := adjustedRate.Mul(decimal.NewFromInt(1).Add(eventAdjustment))

	// 7. Clamp to minimum.
	floor := money.NewRate(stock.MinBorrowRate).Max(r.constants.GlobalMinRate)
	finalRate := finalRaw.Finalize(floor)

	resolved := &ResolvedRate{
		Ticker:          normalized,
		CurrentRate:     finalRate,
		BorrowStatus:    stock.BorrowStatus,
		VolatilityIndex: &volIndex,
		EventRiskFactor: &eventFactor,
		Provenance: fallback.Provenance{
			Base:       baseTag,
			Volatility: volTag,
			Event:      eventTag,
		},
		ComputedAt: time.Now(),
	}

	// 8. Store in cache, return.
	if payload, err := json.Marshal(resolved); err == nil {
		if err := r.cache.Set(ctx, key, payload, r.ns.TTL(cache.NamespaceBorrowRate)); err != nil {
			log.Warn().Err(err).Str("ticker", normalized).Msg("cache set failed, continuing without cache")
		}
	}

	return resolved, nil
}

// fetchBaseRate calls the borrow-rate source, falling back to the stock's
// configured minimum on any failure or a NotFound answer (§4.3/§4.8); only
// failures are logged.
func (r *Resolver) fetchBaseRate(ctx context.Context, ticker string, stock *persistence.Stock) (decimal.Decimal, fallback.BaseTag) {
	result, err := r.borrowRate.FetchRate(ctx, ticker)
	if err == nil && !result.NotFound {
		return result.Rate, fallback.BaseLive
	}
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("borrow rate source unreachable, using stock minimum")
	}
	return stock.MinBorrowRate, fallback.BaseFallback
}

// fetchVolatility tries ticker-specific volatility, falls back to
// market-wide, then to the configured default (§4.3/§4.8).
func (r *Resolver) fetchVolatility(ctx context.Context, ticker string) (decimal.Decimal, fallback.VolatilityTag) {
	idx, found, err := r.volatility.FetchTickerVolatility(ctx, ticker)
	if err == nil && found {
		return idx, fallback.VolatilityLive
	}

	marketIdx, err := r.volatility.FetchMarketVolatility(ctx)
	if err == nil && !marketIdx.IsZero() {
		return marketIdx, fallback.VolatilityLiveMarket
	}
	if err != nil {
		log.Warn().Err(err).Msg("market volatility unreachable, using configured default")
	}
	return r.constants.DefaultVolatility, fallback.VolatilityFallback
}

// fetchEventRisk returns the maximum risk factor among upcoming events, or 0
// on an empty/missing list or an upstream failure (§4.3/§4.8).
func (r *Resolver) fetchEventRisk(ctx context.Context, ticker string) (int, fallback.EventTag) {
	events, err := r.eventRisk.FetchEvents(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Str("ticker", ticker).Msg("event source unreachable, using zero risk")
		return 0, fallback.EventFallback
	}
	if len(events) == 0 {
		return 0, fallback.EventAbsent
	}
	return clients.MaxRiskFactor(events), fallback.EventLive
}
