package http

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sawpanic/locatepricer/internal/fallback"
	"github.com/sawpanic/locatepricer/internal/money"
)

// BorrowRateResponse is the JSON shape returned by GET /api/v1/rates/{ticker}.
type BorrowRateResponse struct {
	Status          string              `json:"status"`
	Ticker          string              `json:"ticker"`
	CurrentRate     money.Rate          `json:"current_rate"`
	BorrowStatus    string              `json:"borrow_status"`
	VolatilityIndex *float64            `json:"volatility_index,omitempty"`
	EventRiskFactor *int                `json:"event_risk_factor,omitempty"`
	Provenance      fallback.Provenance `json:"provenance"`
	LastUpdated     time.Time           `json:"last_updated"`
}

// CalculateLocateRequest is the JSON body for POST /api/v1/calculate-locate.
// PositionValue decodes straight into a decimal.Decimal (shopspring/decimal's
// own UnmarshalJSON, not a float64 round trip) so a large or fractional
// position value never loses precision crossing the wire boundary.
type CalculateLocateRequest struct {
	Ticker        string          `json:"ticker"`
	PositionValue decimal.Decimal `json:"position_value"`
	LoanDays      int             `json:"loan_days"`
	ClientID      string          `json:"client_id"`
}

// CalculateLocateResponse is the JSON shape returned by a successful
// calculate-locate call.
type CalculateLocateResponse struct {
	Status         string           `json:"status"`
	TotalFee       money.Money      `json:"total_fee"`
	Breakdown      BreakdownPayload `json:"breakdown"`
	BorrowRateUsed money.Rate       `json:"borrow_rate_used"`
}

// BreakdownPayload is the nested borrow_cost/markup/transaction_fees object
// inside CalculateLocateResponse.
type BreakdownPayload struct {
	BorrowCost      money.Money `json:"borrow_cost"`
	Markup          money.Money `json:"markup"`
	TransactionFees money.Money `json:"transaction_fees"`
}

// ErrorResponse is the standardized JSON error envelope: a stable string
// code in Error, never a nested object, so clients can switch on it
// directly.
type ErrorResponse struct {
	Status    string    `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Field     string    `json:"field,omitempty"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthResponse reports service and dependency health, grounded on the
// teacher's HealthResponse/SystemInfo/CheckResult shape.
type HealthResponse struct {
	Status    string                 `json:"status"` // healthy|degraded
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
}

// CheckResult is one dependency's health check outcome.
type CheckResult struct {
	Healthy   bool   `json:"healthy"`
	Message   string `json:"message,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}
