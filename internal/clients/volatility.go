package clients

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// VolatilityResult carries the resolved volatility index and which tier it
// came from (ticker-specific, market-wide, or the configured default).
type VolatilityResult struct {
	Index  decimal.Decimal
	Source Source
	// Tag distinguishes "live" (ticker-specific), "live_market" (market-wide
	// fallback), and "fallback" (configured default) per §4.8.
	Tag string
}

type volatilityWire struct {
	Index decimal.Decimal `json:"index"`
}

// VolatilityClient fetches ticker-specific or market-wide volatility.
type VolatilityClient struct {
	ep *endpoint
}

func NewVolatilityClient(cfg Config) *VolatilityClient {
	return &VolatilityClient{ep: newEndpoint("volatility", cfg)}
}

// FetchTickerVolatility calls GET /volatility/{ticker}. found=false on a 404
// signals the caller should fall back to market-wide.
func (c *VolatilityClient) FetchTickerVolatility(ctx context.Context, ticker string) (decimal.Decimal, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ep.url("/volatility/"+ticker), nil)
	if err != nil {
		return decimal.Zero, false, err
	}
	var wire volatilityWire
	found, err := c.ep.getJSON(req, &wire)
	if err != nil || !found {
		return decimal.Zero, false, err
	}
	return wire.Index, true, nil
}

// FetchMarketVolatility calls GET /volatility/market, the no-key-suffix
// market-wide figure.
func (c *VolatilityClient) FetchMarketVolatility(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ep.url("/volatility/market"), nil)
	if err != nil {
		return decimal.Zero, err
	}
	var wire volatilityWire
	found, err := c.ep.getJSON(req, &wire)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, nil
	}
	return wire.Index, nil
}
