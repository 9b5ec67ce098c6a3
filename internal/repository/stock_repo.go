// Package repository implements the read-through stock and client-config
// repositories (C4) over sqlx/lib-pq, with each lookup cached under its own
// namespace ahead of the database round trip, grounded on the teacher's
// NewTradesRepo constructor-plus-interface shape.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/locatepricer/internal/cache"
	"github.com/sawpanic/locatepricer/internal/persistence"
)

var tickerPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)

// NormalizeTicker uppercases and validates a ticker against §4.4's
// ^[A-Z]{1,5}$ rule. Returns false if it does not conform.
func NormalizeTicker(raw string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	return t, tickerPattern.MatchString(t)
}

type stockRow struct {
	Ticker        string          `db:"ticker"`
	BorrowStatus  string          `db:"borrow_status"`
	LenderAPIID   sql.NullString  `db:"lender_api_id"`
	MinBorrowRate string          `db:"min_borrow_rate"`
	LastUpdated   time.Time       `db:"last_updated"`
}

// StockRepo is the sqlx-backed implementation of persistence.StockRepo,
// read-through over the C2 cache under the stock:* namespace.
type StockRepo struct {
	db      *sqlx.DB
	cache   cache.Cache
	ns      *cache.Namespacer
	timeout time.Duration
}

// NewStockRepo builds a StockRepo bound to db and cache, following the
// teacher's NewTradesRepo(db *sqlx.DB, timeout time.Duration) constructor
// pattern.
func NewStockRepo(db *sqlx.DB, c cache.Cache, ns *cache.Namespacer, timeout time.Duration) *StockRepo {
	return &StockRepo{db: db, cache: c, ns: ns, timeout: timeout}
}

const stockByTickerQuery = `
SELECT ticker, borrow_status, lender_api_id, min_borrow_rate::text, last_updated
FROM stocks
WHERE ticker = $1
`

// ByTicker looks up the stock by normalized ticker, checking the cache
// first and populating it on a database hit.
func (r *StockRepo) ByTicker(ctx context.Context, ticker string) (*persistence.Stock, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	key := r.ns.Key(cache.NamespaceStock, ticker)
	if raw, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		var cached persistence.Stock
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
	}

	var row stockRow
	err := r.db.GetContext(ctx, &row, stockByTickerQuery, ticker)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query stock %s: %w", ticker, err)
	}

	stock, err := rowToStock(row)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(stock); err == nil {
		_ = r.cache.Set(ctx, key, payload, r.ns.TTL(cache.NamespaceStock))
	}

	return stock, nil
}

func rowToStock(row stockRow) (*persistence.Stock, error) {
	rate, err := decimalFromText(row.MinBorrowRate)
	if err != nil {
		return nil, fmt.Errorf("parse min_borrow_rate for %s: %w", row.Ticker, err)
	}
	s := &persistence.Stock{
		Ticker:        row.Ticker,
		BorrowStatus:  persistence.BorrowStatus(row.BorrowStatus),
		MinBorrowRate: rate,
		LastUpdated:   row.LastUpdated,
	}
	if row.LenderAPIID.Valid {
		id := row.LenderAPIID.String
		s.LenderAPIID = &id
	}
	return s, nil
}
