// Package facade implements the thin service orchestration layer (C9)
// exposed to HTTP adapters: resolve inputs, compute, emit audit, return.
package facade

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sawpanic/locatepricer/internal/audit"
	"github.com/sawpanic/locatepricer/internal/persistence"
	"github.com/sawpanic/locatepricer/internal/pricing/fees"
	"github.com/sawpanic/locatepricer/internal/pricing/resolver"
	"github.com/sawpanic/locatepricer/internal/pricingerr"
	"github.com/sawpanic/locatepricer/internal/repository"
)

// RateResolver is the subset of resolver.Resolver the facade depends on,
// narrowed to an interface so tests can substitute a fake.
type RateResolver interface {
	ResolveRate(ctx context.Context, ticker string) (*resolver.ResolvedRate, error)
}

// Facade is the single entry point used by the HTTP layer.
type Facade struct {
	resolver        RateResolver
	clients         persistence.ClientRepo
	auditEmitter    *audit.Emitter
	requestDeadline time.Duration
}

// New builds a Facade wired to the rate resolver, client repository, and
// audit emitter.
func New(res RateResolver, clients persistence.ClientRepo, emitter *audit.Emitter, requestDeadline time.Duration) *Facade {
	return &Facade{resolver: res, clients: clients, auditEmitter: emitter, requestDeadline: requestDeadline}
}

// CalculateFeeRequest carries the validated inputs for a fee calculation.
type CalculateFeeRequest struct {
	RequestID     string
	Ticker        string
	PositionValue decimal.Decimal
	LoanDays      int
	ClientID      string
}

// GetBorrowRate validates the ticker and delegates to the rate resolver.
func (f *Facade) GetBorrowRate(ctx context.Context, ticker string) (*resolver.ResolvedRate, error) {
	ctx, cancel := context.WithTimeout(ctx, f.requestDeadline)
	defer cancel()

	if _, ok := repository.NormalizeTicker(ticker); !ok {
		return nil, pricingerr.Validation("ticker", "must match ^[A-Z]{1,5}$")
	}

	resolved, err := f.resolver.ResolveRate(ctx, ticker)
	if err != nil {
		if ctx.Err() != nil {
			return nil, pricingerr.Timeout("resolve_rate")
		}
		return nil, err
	}
	return resolved, nil
}

// CalculateFee validates inputs, loads the client, delegates to the fee
// calculator, and emits an audit record before returning.
func (f *Facade) CalculateFee(ctx context.Context, req CalculateFeeRequest) (*fees.Breakdown, error) {
	ctx, cancel := context.WithTimeout(ctx, f.requestDeadline)
	defer cancel()

	if err := validate(req); err != nil {
		return nil, err
	}

	client, err := f.clients.ByID(ctx, req.ClientID)
	if err != nil {
		if err == persistence.ErrNotFound {
			return nil, pricingerr.ClientNotFound(req.ClientID)
		}
		if ctx.Err() != nil {
			return nil, pricingerr.Timeout("client lookup")
		}
		return nil, pricingerr.Internal("client lookup failed: " + err.Error())
	}
	// An inactive client is reported as ClientNotFound, the same as an
	// unknown id, rather than as a distinct error kind.
	if !client.Active {
		return nil, pricingerr.ClientNotFound(req.ClientID)
	}

	resolved, err := f.resolver.ResolveRate(ctx, req.Ticker)
	if err != nil {
		if ctx.Err() != nil {
			return nil, pricingerr.Timeout("resolve_rate")
		}
		return nil, err
	}

	breakdown := fees.Calculate(req.PositionValue, req.LoanDays, resolved.CurrentRate, client)

	f.auditEmitter.Emit(audit.Record{
		RequestID:      req.RequestID,
		ClientID:       req.ClientID,
		Ticker:         resolved.Ticker,
		PositionValue:  req.PositionValue.StringFixed(2),
		LoanDays:       req.LoanDays,
		BorrowRateUsed: breakdown.BorrowRateUsed,
		Provenance:     resolved.Provenance,
		Breakdown:      breakdown,
		FormulaVariant: string(client.TransactionFeeType),
	})

	return &breakdown, nil
}

func validate(req CalculateFeeRequest) error {
	if _, ok := repository.NormalizeTicker(req.Ticker); !ok {
		return pricingerr.Validation("ticker", "must match ^[A-Z]{1,5}$")
	}
	if req.PositionValue.Sign() <= 0 {
		return pricingerr.Validation("position_value", "must be positive")
	}
	if req.LoanDays < 1 {
		return pricingerr.Validation("loan_days", "must be at least 1")
	}
	if req.ClientID == "" {
		return pricingerr.Validation("client_id", "is required")
	}
	return nil
}
