package clients

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"
)

// BorrowStatus mirrors the stock's lending tier as reported by the
// borrow-rate source.
type BorrowStatus string

const (
	BorrowStatusEasy   BorrowStatus = "EASY"
	BorrowStatusMedium BorrowStatus = "MEDIUM"
	BorrowStatusHard   BorrowStatus = "HARD"
)

// BorrowRateResult is the typed response from the borrow-rate source.
type BorrowRateResult struct {
	Ticker  string
	Rate    decimal.Decimal
	Status  BorrowStatus
	Source  Source
	NotFound bool
}

type borrowRateWire struct {
	Ticker    string          `json:"ticker"`
	Rate      decimal.Decimal `json:"rate"`
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
}

// BorrowRateClient fetches the live annualized borrow rate for a ticker.
type BorrowRateClient struct {
	ep *endpoint
}

// NewBorrowRateClient builds a client bound to a single endpoint instance
// (one breaker, one limiter, one pool) for the borrow-rate source.
func NewBorrowRateClient(cfg Config) *BorrowRateClient {
	return &BorrowRateClient{ep: newEndpoint("borrow_rate", cfg)}
}

// FetchRate calls GET /rates/{ticker}. A 404 is reported via NotFound=true
// with no error, so it never counts against the breaker. The resolver only
// calls this for a ticker the stock repository already holds, and answers a
// NotFound with the stock's minimum rate, tagged as fallback.
func (c *BorrowRateClient) FetchRate(ctx context.Context, ticker string) (BorrowRateResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ep.url("/rates/"+ticker), nil)
	if err != nil {
		return BorrowRateResult{}, err
	}

	var wire borrowRateWire
	found, err := c.ep.getJSON(req, &wire)
	if err != nil {
		return BorrowRateResult{}, err
	}
	if !found {
		return BorrowRateResult{Ticker: ticker, NotFound: true}, nil
	}

	return BorrowRateResult{
		Ticker: wire.Ticker,
		Rate:   wire.Rate,
		Status: BorrowStatus(wire.Status),
		Source: SourceLive,
	}, nil
}
