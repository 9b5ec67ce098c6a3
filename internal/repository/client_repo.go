package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sawpanic/locatepricer/internal/cache"
	"github.com/sawpanic/locatepricer/internal/persistence"
)

type clientRow struct {
	ClientID           string    `db:"client_id"`
	MarkupPercentage   string    `db:"markup_percentage"`
	TransactionFeeType string    `db:"transaction_fee_type"`
	TransactionAmount  string    `db:"transaction_amount"`
	Active             bool      `db:"active"`
	LastUpdated        time.Time `db:"last_updated"`
}

// ClientRepo is the sqlx-backed implementation of persistence.ClientRepo,
// read-through over the C2 cache under the broker_config:* namespace.
type ClientRepo struct {
	db      *sqlx.DB
	cache   cache.Cache
	ns      *cache.Namespacer
	timeout time.Duration
}

// NewClientRepo builds a ClientRepo bound to db and cache.
func NewClientRepo(db *sqlx.DB, c cache.Cache, ns *cache.Namespacer, timeout time.Duration) *ClientRepo {
	return &ClientRepo{db: db, cache: c, ns: ns, timeout: timeout}
}

const clientByIDQuery = `
SELECT client_id, markup_percentage::text, transaction_fee_type, transaction_amount::text, active, last_updated
FROM client_configs
WHERE client_id = $1
`

// ByID looks up a client's billing configuration, checking the cache first.
// Inactive clients are still returned here; the facade is responsible for
// rejecting them (§4.4).
func (r *ClientRepo) ByID(ctx context.Context, clientID string) (*persistence.ClientConfig, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	key := r.ns.Key(cache.NamespaceBrokerConfig, clientID)
	if raw, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		var cached persistence.ClientConfig
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &cached, nil
		}
	}

	var row clientRow
	err := r.db.GetContext(ctx, &row, clientByIDQuery, clientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query client %s: %w", clientID, err)
	}

	cfg, err := rowToClientConfig(row)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(cfg); err == nil {
		_ = r.cache.Set(ctx, key, payload, r.ns.TTL(cache.NamespaceBrokerConfig))
	}

	return cfg, nil
}

func rowToClientConfig(row clientRow) (*persistence.ClientConfig, error) {
	markup, err := decimalFromText(row.MarkupPercentage)
	if err != nil {
		return nil, fmt.Errorf("parse markup_percentage for %s: %w", row.ClientID, err)
	}
	amount, err := decimalFromText(row.TransactionAmount)
	if err != nil {
		return nil, fmt.Errorf("parse transaction_amount for %s: %w", row.ClientID, err)
	}
	return &persistence.ClientConfig{
		ClientID:           row.ClientID,
		MarkupPercentage:   markup,
		TransactionFeeType: persistence.TransactionFeeType(row.TransactionFeeType),
		TransactionAmount:  amount,
		Active:             row.Active,
		LastUpdated:        row.LastUpdated,
	}, nil
}
