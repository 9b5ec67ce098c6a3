package persistence

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BorrowStatus is a stock's lending tier as maintained by the admin path.
type BorrowStatus string

const (
	BorrowStatusEasy   BorrowStatus = "EASY"
	BorrowStatusMedium BorrowStatus = "MEDIUM"
	BorrowStatusHard   BorrowStatus = "HARD"
)

// TransactionFeeType identifies which of the two fee formulas a client uses.
type TransactionFeeType string

const (
	TransactionFeeFlat       TransactionFeeType = "FLAT"
	TransactionFeePercentage TransactionFeeType = "PERCENTAGE"
)

// Stock is the persistent per-ticker lending record. The core only reads it;
// an out-of-scope admin path owns writes.
type Stock struct {
	Ticker        string          `json:"ticker" db:"ticker"`
	BorrowStatus  BorrowStatus    `json:"borrow_status" db:"borrow_status"`
	LenderAPIID   *string         `json:"lender_api_id,omitempty" db:"lender_api_id"`
	MinBorrowRate decimal.Decimal `json:"min_borrow_rate" db:"min_borrow_rate"`
	LastUpdated   time.Time       `json:"last_updated" db:"last_updated"`
}

// ClientConfig is the persistent per-client billing configuration.
type ClientConfig struct {
	ClientID           string             `json:"client_id" db:"client_id"`
	MarkupPercentage   decimal.Decimal    `json:"markup_percentage" db:"markup_percentage"`
	TransactionFeeType TransactionFeeType `json:"transaction_fee_type" db:"transaction_fee_type"`
	TransactionAmount  decimal.Decimal    `json:"transaction_amount" db:"transaction_amount"`
	Active             bool               `json:"active" db:"active"`
	LastUpdated        time.Time          `json:"last_updated" db:"last_updated"`
}

// ErrNotFound is returned by both repositories when the row does not exist.
var ErrNotFound = notFoundErr{}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

// StockRepo resolves stock metadata by ticker.
type StockRepo interface {
	ByTicker(ctx context.Context, ticker string) (*Stock, error)
}

// ClientRepo resolves client billing configuration by id.
type ClientRepo interface {
	ByID(ctx context.Context, clientID string) (*ClientConfig, error)
}

// Repository aggregates both read-through repositories.
type Repository struct {
	Stocks  StockRepo
	Clients ClientRepo
}

// HealthCheck reports repository-layer health for the HTTP health endpoint.
type HealthCheck struct {
	Healthy        bool           `json:"healthy"`
	Errors         []string       `json:"errors,omitempty"`
	ConnectionPool map[string]int `json:"connection_pool"`
	LastCheck      time.Time      `json:"last_check"`
	ResponseTimeMS int64          `json:"response_time_ms"`
}

// RepositoryHealth provides health monitoring for the persistence layer.
type RepositoryHealth interface {
	Health(ctx context.Context) HealthCheck
	Ping(ctx context.Context) error
	Stats(ctx context.Context) map[string]interface{}
}
